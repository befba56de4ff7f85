package model

import (
	"time"
)

// User 用户模型
type User struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email" gorm:"unique"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// SessionUser 会话中的用户信息（Session 不存在时为 nil）
type SessionUser struct {
	ID    int
	Email string
	Name  string
}

// SavedMovie 用户收藏的电影
// (user_id, movie_id) 上有唯一索引，同一部电影对同一用户至多一条记录
type SavedMovie struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id" gorm:"uniqueIndex:idx_saved_user_movie"`
	MovieID   int       `json:"movie_id" db:"movie_id" gorm:"uniqueIndex:idx_saved_user_movie"`
	Title     string    `json:"title" db:"title"`
	PosterURL string    `json:"poster_url" db:"poster_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TrendingMovie 热搜词条，每个搜索词至多一条记录，count 只增不减
type TrendingMovie struct {
	ID             int       `json:"id" db:"id"`
	SearchTerm     string    `json:"search_term" db:"search_term" gorm:"unique"`
	MovieID        int       `json:"movie_id" db:"movie_id"`
	Title          string    `json:"title" db:"title"`
	PosterURL      string    `json:"poster_url" db:"poster_url"`
	Count          int       `json:"count" db:"count"`
	LastSearchedAt time.Time `json:"last_searched_at" db:"last_searched_at"`
}
