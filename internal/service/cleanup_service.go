package service

import (
	"log"
	"time"
)

// StaleTrendingStore 支持清理的热搜仓库
type StaleTrendingStore interface {
	DeleteStale(days int) (int64, error)
}

// CleanupService 清理服务
type CleanupService struct {
	trending StaleTrendingStore
}

// NewCleanupService 创建清理服务
func NewCleanupService(trending StaleTrendingStore) *CleanupService {
	return &CleanupService{trending: trending}
}

// Start 启动定时清理任务
func (s *CleanupService) Start() {
	ticker := time.NewTicker(24 * time.Hour)

	// 启动时先运行一次
	go s.runCleanup()

	go func() {
		for range ticker.C {
			s.runCleanup()
		}
	}()
}

func (s *CleanupService) runCleanup() {
	log.Println("[CleanupService] 开始清理过期数据...")

	// 清理超过 30 天未搜索的热搜词条
	cleaned, err := s.trending.DeleteStale(30)
	if err != nil {
		log.Printf("[CleanupService] 清理旧热搜词条失败: %v", err)
	} else if cleaned > 0 {
		log.Printf("[CleanupService] 已清理 %d 条超过 30 天未搜索的热搜词条", cleaned)
	}
}
