package service

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/movieshelf/internal/model"
)

// fakeSavedStore 内存版收藏仓库，(userID, movieID) 唯一约束与数据库一致
type fakeSavedStore struct {
	mu     sync.Mutex
	nextID int
	byKey  map[string]*model.SavedMovie
	err    error
}

func newFakeSavedStore() *fakeSavedStore {
	return &fakeSavedStore{nextID: 1, byKey: map[string]*model.SavedMovie{}}
}

func (f *fakeSavedStore) Save(userID, movieID int, title, posterURL string) (*model.SavedMovie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	key := fmt.Sprintf("%d:%d", userID, movieID)
	if existing, ok := f.byKey[key]; ok {
		return existing, nil
	}
	record := &model.SavedMovie{
		ID:        f.nextID,
		UserID:    userID,
		MovieID:   movieID,
		Title:     title,
		PosterURL: posterURL,
		CreatedAt: time.Now(),
	}
	f.nextID++
	f.byKey[key] = record
	return record, nil
}

func (f *fakeSavedStore) ListByUser(userID int) ([]*model.SavedMovie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var records []*model.SavedMovie
	for _, r := range f.byKey {
		if r.UserID == userID {
			records = append(records, r)
		}
	}
	return records, nil
}

func (f *fakeSavedStore) ListIDsByUser(userID int) ([]int, error) {
	records, err := f.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	var ids []int
	for _, r := range records {
		ids = append(ids, r.MovieID)
	}
	return ids, nil
}

func (f *fakeSavedStore) Remove(userID, recordID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for key, r := range f.byKey {
		if r.ID == recordID && r.UserID == userID {
			delete(f.byKey, key)
			return nil
		}
	}
	return errors.New("记录不存在")
}

// fakeTrendingStore 内存版热搜仓库，Record 做 upsert，Top 按 count 降序
type fakeTrendingStore struct {
	mu      sync.Mutex
	nextID  int
	records map[string]*model.TrendingMovie
	err     error
}

func newFakeTrendingStore() *fakeTrendingStore {
	return &fakeTrendingStore{nextID: 1, records: map[string]*model.TrendingMovie{}}
}

func (f *fakeTrendingStore) Record(term string, movieID int, title, posterURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if existing, ok := f.records[term]; ok {
		existing.Count++
		existing.LastSearchedAt = time.Now()
		return nil
	}
	f.records[term] = &model.TrendingMovie{
		ID:             f.nextID,
		SearchTerm:     term,
		MovieID:        movieID,
		Title:          title,
		PosterURL:      posterURL,
		Count:          1,
		LastSearchedAt: time.Now(),
	}
	f.nextID++
	return nil
}

func (f *fakeTrendingStore) Top(limit int) ([]*model.TrendingMovie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var records []*model.TrendingMovie
	for _, r := range f.records {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Count != records[j].Count {
			return records[i].Count > records[j].Count
		}
		return records[i].LastSearchedAt.After(records[j].LastSearchedAt)
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

const testImageBase = "https://image.tmdb.org/t/p/w500"

func newTestPersonalization() (*PersonalizationStore, *fakeSavedStore, *fakeTrendingStore) {
	saved := newFakeSavedStore()
	trending := newFakeTrendingStore()
	return NewPersonalizationStore(saved, trending, testImageBase), saved, trending
}

func TestSaveMovieIdempotent(t *testing.T) {
	store, saved, _ := newTestPersonalization()

	first, err := store.SaveMovie(1, 100, "Dune", "poster")
	require.NoError(t, err)
	require.NotNil(t, first)

	// 重复保存返回既有记录，不产生第二条
	second, err := store.SaveMovie(1, 100, "Dune", "poster")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, saved.byKey, 1)

	// 不同用户收藏同一部电影互不影响
	other, err := store.SaveMovie(2, 100, "Dune", "poster")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
	assert.Len(t, saved.byKey, 2)
}

func TestSaveMovieConcurrentSameKey(t *testing.T) {
	store, saved, _ := newTestPersonalization()

	var wg sync.WaitGroup
	results := make([]*model.SavedMovie, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			record, err := store.SaveMovie(1, 100, "Dune", "poster")
			assert.NoError(t, err)
			results[i] = record
		}(i)
	}
	wg.Wait()

	assert.Len(t, saved.byKey, 1, "并发保存同一部电影只能有一条记录")
	for _, record := range results {
		require.NotNil(t, record)
		assert.Equal(t, results[0].ID, record.ID, "并发保存的所有调用方拿到同一条记录")
	}
}

func TestListSavedMoviesDegradesToEmpty(t *testing.T) {
	store, saved, _ := newTestPersonalization()

	_, err := store.SaveMovie(1, 100, "Dune", "poster")
	require.NoError(t, err)

	// 远端不可用时返回空列表而不是错误
	saved.err = errors.New("连接被拒绝")
	records := store.ListSavedMovies(1)
	require.NotNil(t, records)
	assert.Empty(t, records)
	assert.Empty(t, store.ListSavedMovieIDs(1))

	// 恢复后数据还在
	saved.err = nil
	assert.Len(t, store.ListSavedMovies(1), 1)
	assert.Equal(t, []int{100}, store.ListSavedMovieIDs(1))
}

func TestRemoveSavedMovie(t *testing.T) {
	store, _, _ := newTestPersonalization()

	record, err := store.SaveMovie(1, 100, "Dune", "poster")
	require.NoError(t, err)

	require.NoError(t, store.RemoveSavedMovie(1, record.ID))
	assert.Empty(t, store.ListSavedMovies(1))

	// 再删一次失败，错误类型是 RemovalError
	err = store.RemoveSavedMovie(1, record.ID)
	require.Error(t, err)
	var removalErr *model.RemovalError
	assert.ErrorAs(t, err, &removalErr)
}

func TestRecordSearchMonotonicCount(t *testing.T) {
	store, _, trending := newTestPersonalization()
	movie := &model.Movie{ID: 100, Title: "Dune", PosterPath: "/dune.jpg"}

	for i := 1; i <= 5; i++ {
		require.NoError(t, store.RecordSearch("dune", movie))
		assert.Equal(t, i, trending.records["dune"].Count)
	}

	// 一个搜索词只有一条记录
	assert.Len(t, trending.records, 1)
	// 海报地址由 poster_path 派生
	assert.Equal(t, testImageBase+"/dune.jpg", trending.records["dune"].PosterURL)
}

func TestTopTrendingRanking(t *testing.T) {
	store, _, _ := newTestPersonalization()

	counts := map[string]int{"a": 7, "b": 3, "c": 9, "d": 1, "e": 5}
	for term, n := range counts {
		movie := &model.Movie{ID: 1, Title: term}
		for i := 0; i < n; i++ {
			require.NoError(t, store.RecordSearch(term, movie))
		}
	}

	top, err := store.TopTrending(3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []int{9, 7, 5}, []int{top[0].Count, top[1].Count, top[2].Count})
}

func TestTopTrendingDefaultLimit(t *testing.T) {
	store, _, _ := newTestPersonalization()

	for i := 0; i < 8; i++ {
		movie := &model.Movie{ID: i, Title: fmt.Sprintf("m%d", i)}
		require.NoError(t, store.RecordSearch(fmt.Sprintf("term%d", i), movie))
	}

	top, err := store.TopTrending(0)
	require.NoError(t, err)
	assert.Len(t, top, 5, "缺省取前 5 条")
}

func TestRecordSearchPropagatesError(t *testing.T) {
	store, _, trending := newTestPersonalization()
	trending.err = errors.New("写入失败")

	err := store.RecordSearch("dune", &model.Movie{ID: 1, Title: "Dune"})
	require.Error(t, err)
}
