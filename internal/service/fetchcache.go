package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/user/movieshelf/internal/model"
)

// Producer 零参数的异步数据生产函数
type Producer[T any] func(ctx context.Context) (T, error)

// FetchState 加载状态
type FetchState int

const (
	FetchIdle FetchState = iota
	FetchLoading
	FetchSuccess
	FetchFailed
)

// FetchCache 包装任意 Producer 的加载状态缓存
// 状态机：idle → loading → (success | failed)，Refetch 可在任何状态重新进入 loading。
// 只采纳最近一次发起的请求结果：每次 Refetch 递增序号并取消上一次的 context，
// 过期请求的完成一律丢弃，不会覆盖新数据。
type FetchCache[T any] struct {
	producer Producer[T]
	timeout  time.Duration

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	closed bool
	state  FetchState
	data   T
	err    error
	notify chan struct{}
}

// NewFetchCache 创建缓存并立即发起第一次加载
// timeout <= 0 表示单次请求不设超时
func NewFetchCache[T any](producer Producer[T], timeout time.Duration) *FetchCache[T] {
	f := &FetchCache[T]{
		producer: producer,
		timeout:  timeout,
		notify:   make(chan struct{}),
	}
	f.Refetch()
	return f
}

// Refetch 重新发起加载，无论当前处于何种状态
func (f *FetchCache[T]) Refetch() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	if f.cancel != nil {
		f.cancel()
	}
	f.seq++
	seq := f.seq
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.state = FetchLoading
	f.err = nil
	f.broadcastLocked()
	f.mu.Unlock()

	go f.run(ctx, seq)
}

func (f *FetchCache[T]) run(ctx context.Context, seq uint64) {
	runCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	data, err := f.producer(runCtx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		err = model.ErrTimeout
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// 过期完成：期间已有新请求发起或已关闭，结果丢弃
	if seq != f.seq || f.closed {
		return
	}

	if err != nil {
		f.state = FetchFailed
		f.err = err
	} else {
		f.state = FetchSuccess
		f.data = data
		f.err = nil
	}
	f.broadcastLocked()
}

// Snapshot 返回当前数据、是否加载中、错误
// loading 期间保留上一次成功的数据（先用旧数据）
func (f *FetchCache[T]) Snapshot() (T, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data, f.state == FetchLoading, f.err
}

// State 返回当前状态
func (f *FetchCache[T]) State() FetchState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Wait 阻塞直到当前请求落定，返回最终数据或错误
func (f *FetchCache[T]) Wait(ctx context.Context) (T, error) {
	for {
		f.mu.Lock()
		if f.state == FetchSuccess || f.state == FetchFailed {
			data, err := f.data, f.err
			f.mu.Unlock()
			return data, err
		}
		ch := f.notify
		f.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// Close 取消在途请求并停止接受新请求
// 对应界面卸载的场景：挂起中的完成不再写入已丢弃的状态
func (f *FetchCache[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	if f.cancel != nil {
		f.cancel()
	}
	f.seq++
	f.broadcastLocked()
}

// broadcastLocked 唤醒所有等待者，调用方必须持有锁
func (f *FetchCache[T]) broadcastLocked() {
	close(f.notify)
	f.notify = make(chan struct{})
}
