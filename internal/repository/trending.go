package repository

import (
	"fmt"
	"time"

	"github.com/user/movieshelf/internal/model"
	"github.com/user/movieshelf/internal/utils"
	"gorm.io/gorm"
)

type TrendingRepository struct {
	db *gorm.DB
}

func NewTrendingRepository(db *gorm.DB) *TrendingRepository {
	return &TrendingRepository{db: db}
}

// Record 记录一次搜索
// 原子 upsert：同一个搜索词首次写入 count=1，之后只做 count+1，
// 并发调用不会丢增量，count 对同一搜索词单调不减
func (r *TrendingRepository) Record(term string, movieID int, title, posterURL string) error {
	return r.db.Exec(`
		INSERT INTO trending_movies (search_term, movie_id, title, poster_url, count, last_searched_at)
		VALUES ($1, $2, $3, $4, 1, NOW())
		ON CONFLICT (search_term) DO UPDATE SET
			count = trending_movies.count + 1,
			last_searched_at = EXCLUDED.last_searched_at
	`, term, movieID, title, posterURL).Error
}

// Top 获取热搜榜前 N
// count 相同时按最近搜索时间排序，保证结果确定
func (r *TrendingRepository) Top(limit int) ([]*model.TrendingMovie, error) {
	// 1. 检查缓存，热搜榜允许短暂滞后
	cacheKey := fmt.Sprintf("trending:top:%d", limit)
	if cached, found := utils.CacheGet(cacheKey); found {
		if records, ok := cached.([]*model.TrendingMovie); ok {
			return records, nil
		}
	}

	// 2. 从数据库获取
	var records []*model.TrendingMovie
	err := r.db.Order("count DESC, last_searched_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	// 3. 设置缓存
	utils.CacheSet(cacheKey, records, time.Minute)

	return records, nil
}

// DeleteStale 清理超过指定天数未搜索的热搜词条
func (r *TrendingRepository) DeleteStale(days int) (int64, error) {
	result := r.db.Exec(`
		DELETE FROM trending_movies
		WHERE last_searched_at < NOW() - INTERVAL '1 day' * $1
	`, days)
	return result.RowsAffected, result.Error
}
