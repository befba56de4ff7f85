package service

import (
	"log"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/user/movieshelf/internal/middleware"
	"github.com/user/movieshelf/internal/model"
)

// 注册时密码的最小长度，校验在任何数据库访问之前
const minPasswordLen = 6

// UserStore 会话管理依赖的用户仓库
type UserStore interface {
	Create(email, name, password string) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByID(id int) (*model.User, error)
	CheckPassword(user *model.User, password string) bool
}

// SessionManager 会话生命周期管理
// 身份凭证是 JWT，注销过的 token 进入吊销缓存直到自然过期
type SessionManager struct {
	users   UserStore
	secret  string
	expiry  time.Duration
	revoked *cache.Cache
}

// NewSessionManager 创建会话管理器
func NewSessionManager(users UserStore, secret string, expiry time.Duration) *SessionManager {
	return &SessionManager{
		users:   users,
		secret:  secret,
		expiry:  expiry,
		revoked: cache.New(expiry, 10*time.Minute),
	}
}

// SignUp 注册新账号并建立会话
func (m *SessionManager) SignUp(email, password, name string) (*model.SessionUser, string, error) {
	if len(password) < minPasswordLen {
		return nil, "", model.ErrWeakPassword
	}

	existing, err := m.users.FindByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", model.ErrEmailTaken
	}

	// 默认截取邮箱 @ 符号前的内容作为用户名
	if name == "" {
		if parts := strings.Split(email, "@"); len(parts) > 0 {
			name = parts[0]
		}
	}

	user, err := m.users.Create(email, name, password)
	if err != nil {
		return nil, "", err
	}

	return m.establish(user)
}

// SignIn 凭证换会话
func (m *SessionManager) SignIn(email, password string) (*model.SessionUser, string, error) {
	user, err := m.users.FindByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if user == nil || !m.users.CheckPassword(user, password) {
		return nil, "", model.ErrBadCredentials
	}

	return m.establish(user)
}

// SignOut 注销会话
// 本地永远成功：token 解析失败也照常返回，只是没有可吊销的内容
func (m *SessionManager) SignOut(tokenString string) {
	if tokenString == "" {
		return
	}
	claims, err := middleware.ParseToken(tokenString, m.secret)
	if err != nil {
		log.Printf("[Session] 注销时解析 token 失败: %v", err)
		return
	}

	// 吊销期限取 token 的剩余有效期
	ttl := time.Until(claims.RegisteredClaims.ExpiresAt.Time)
	if ttl <= 0 {
		return
	}
	m.revoked.Set(tokenString, struct{}{}, ttl)
}

// CurrentUser 尽力解析当前用户
// 任何失败（token 缺失、过期、已吊销、数据库不可用、用户已删除）都返回 nil，
// 未登录是正常稳态，瞬时故障与未登录在这里不可区分，调用方不要依赖它做重试
func (m *SessionManager) CurrentUser(tokenString string) *model.SessionUser {
	if tokenString == "" {
		return nil
	}
	if _, found := m.revoked.Get(tokenString); found {
		return nil
	}

	claims, err := middleware.ParseToken(tokenString, m.secret)
	if err != nil {
		return nil
	}

	user, err := m.users.FindByID(claims.UserID)
	if err != nil {
		log.Printf("[Session] 查询当前用户失败: %v", err)
		return nil
	}
	if user == nil {
		return nil
	}

	return &model.SessionUser{ID: user.ID, Email: user.Email, Name: user.Name}
}

// establish 为用户签发 token
func (m *SessionManager) establish(user *model.User) (*model.SessionUser, string, error) {
	su := &model.SessionUser{ID: user.ID, Email: user.Email, Name: user.Name}
	token, err := middleware.GenerateToken(su, m.secret, m.expiry)
	if err != nil {
		return nil, "", err
	}
	return su, token, nil
}

// Expiry 会话有效期
func (m *SessionManager) Expiry() time.Duration {
	return m.expiry
}
