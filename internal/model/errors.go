package model

import (
	"errors"
	"fmt"
	"strings"
)

// NetworkError 远端服务返回非成功状态
type NetworkError struct {
	Status     int
	StatusText string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("请求失败，状态码: %d (%s)", e.Status, e.StatusText)
}

// AuthError 认证失败（密码过弱、凭证错误、邮箱重复等）
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return e.Reason
}

// 常见认证错误
var (
	ErrWeakPassword   = &AuthError{Reason: "密码至少需要 6 个字符"}
	ErrEmailTaken     = &AuthError{Reason: "该邮箱已被注册"}
	ErrBadCredentials = &AuthError{Reason: "邮箱或密码错误"}
)

// RemovalError 删除收藏失败，调用方不能假定删除已生效
type RemovalError struct {
	Err error
}

func (e *RemovalError) Error() string {
	return fmt.Sprintf("删除收藏失败: %v", e.Err)
}

func (e *RemovalError) Unwrap() error {
	return e.Err
}

// ConfigurationError 启动时缺少必需配置
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "缺少必需配置: " + strings.Join(e.Missing, ", ")
}

// ErrTimeout 请求超时
var ErrTimeout = errors.New("请求超时")
