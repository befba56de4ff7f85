package service

import (
	"fmt"
	"log"

	"github.com/user/movieshelf/internal/model"
	"golang.org/x/sync/singleflight"
)

// SavedStore 收藏仓库
type SavedStore interface {
	Save(userID, movieID int, title, posterURL string) (*model.SavedMovie, error)
	ListByUser(userID int) ([]*model.SavedMovie, error)
	ListIDsByUser(userID int) ([]int, error)
	Remove(userID, recordID int) error
}

// TrendingStore 热搜仓库
type TrendingStore interface {
	Record(term string, movieID int, title, posterURL string) error
	Top(limit int) ([]*model.TrendingMovie, error)
}

// PersonalizationStore 个性化数据服务：收藏与热搜统计
// 仓库自身无共享可变状态，每次调用给定输入即给定行为
type PersonalizationStore struct {
	saved        SavedStore
	trending     TrendingStore
	imageBaseURL string

	// 同一 (userID, movieID) 的并发保存合并为一次写入，键在调用结束后即释放
	saveGroup singleflight.Group
}

// NewPersonalizationStore 创建个性化数据服务
func NewPersonalizationStore(saved SavedStore, trending TrendingStore, imageBaseURL string) *PersonalizationStore {
	return &PersonalizationStore{
		saved:        saved,
		trending:     trending,
		imageBaseURL: imageBaseURL,
	}
}

// SaveMovie 收藏电影，幂等
// 已收藏过时返回既有记录，不产生第二条
func (s *PersonalizationStore) SaveMovie(userID, movieID int, title, posterURL string) (*model.SavedMovie, error) {
	key := fmt.Sprintf("%d:%d", userID, movieID)
	v, err, _ := s.saveGroup.Do(key, func() (interface{}, error) {
		return s.saved.Save(userID, movieID, title, posterURL)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.SavedMovie), nil
}

// ListSavedMovies 获取收藏列表
// 远端失败降级为空列表，收藏页宁可暂时空着也不报错
func (s *PersonalizationStore) ListSavedMovies(userID int) []*model.SavedMovie {
	records, err := s.saved.ListByUser(userID)
	if err != nil {
		log.Printf("[Personalization] 获取收藏列表失败 (UserID: %d): %v", userID, err)
		return []*model.SavedMovie{}
	}
	return records
}

// ListSavedMovieIDs 获取收藏的电影 ID，失败同样降级为空
func (s *PersonalizationStore) ListSavedMovieIDs(userID int) []int {
	ids, err := s.saved.ListIDsByUser(userID)
	if err != nil {
		log.Printf("[Personalization] 获取收藏 ID 失败 (UserID: %d): %v", userID, err)
		return []int{}
	}
	return ids
}

// RemoveSavedMovie 按记录 ID 删除收藏
// 失败返回 RemovalError，调用方负责向用户展示且不能假定删除已生效
func (s *PersonalizationStore) RemoveSavedMovie(userID, recordID int) error {
	if err := s.saved.Remove(userID, recordID); err != nil {
		return &model.RemovalError{Err: err}
	}
	return nil
}

// RecordSearch 记录一次搜索命中，按搜索词累计热度
func (s *PersonalizationStore) RecordSearch(term string, movie *model.Movie) error {
	return s.trending.Record(term, movie.ID, movie.Title, s.posterURL(movie.PosterPath))
}

// posterURL 由 poster_path 拼接完整海报地址，空路径返回空串
func (s *PersonalizationStore) posterURL(posterPath string) string {
	if posterPath == "" {
		return ""
	}
	return s.imageBaseURL + posterPath
}

// TopTrending 热搜榜，按 count 降序取前 limit 条
func (s *PersonalizationStore) TopTrending(limit int) ([]*model.TrendingMovie, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.trending.Top(limit)
}
