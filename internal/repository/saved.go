package repository

import (
	"errors"
	"time"

	"github.com/user/movieshelf/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SavedMovieRepository struct {
	db *gorm.DB
}

func NewSavedMovieRepository(db *gorm.DB) *SavedMovieRepository {
	return &SavedMovieRepository{db: db}
}

// Save 幂等保存收藏
// 唯一索引兜底并发下的先查后写：冲突时不写入，改为读回既有记录返回
func (r *SavedMovieRepository) Save(userID, movieID int, title, posterURL string) (*model.SavedMovie, error) {
	record := &model.SavedMovie{
		UserID:    userID,
		MovieID:   movieID,
		Title:     title,
		PosterURL: posterURL,
		CreatedAt: time.Now(),
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		DoNothing: true,
	}).Create(record).Error
	if err != nil {
		return nil, err
	}

	// 冲突时 Create 不回填主键，说明已收藏过，读回既有记录
	if record.ID == 0 {
		return r.Find(userID, movieID)
	}
	return record, nil
}

// Find 查找收藏记录，不存在返回 nil
func (r *SavedMovieRepository) Find(userID, movieID int) (*model.SavedMovie, error) {
	var record model.SavedMovie
	err := r.db.Where("user_id = ? AND movie_id = ?", userID, movieID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByUser 获取用户收藏列表
func (r *SavedMovieRepository) ListByUser(userID int) ([]*model.SavedMovie, error) {
	var records []*model.SavedMovie
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

// ListIDsByUser 只取用户收藏的电影 ID
func (r *SavedMovieRepository) ListIDsByUser(userID int) ([]int, error) {
	var ids []int
	err := r.db.Model(&model.SavedMovie{}).
		Where("user_id = ?", userID).
		Pluck("movie_id", &ids).Error
	return ids, err
}

// Remove 按记录 ID 删除收藏，只允许删除自己的记录
func (r *SavedMovieRepository) Remove(userID, recordID int) error {
	result := r.db.Where("id = ? AND user_id = ?", recordID, userID).Delete(&model.SavedMovie{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
