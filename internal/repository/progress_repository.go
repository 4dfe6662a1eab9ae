package repository

import (
	"context"
	"errors"

	"dreampath_backend/internal/model"
	"dreampath_backend/internal/util"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) FindByUserID(ctx context.Context, userID uint) (*model.UserProgress, error) {
	var progress model.UserProgress
	err := r.DB.WithContext(ctx).
		Preload("Badges").
		Where("user_id = ?", userID).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrProgressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// GetOrCreate 不存在时创建一条初始进度（1级、0经验）
func (r *ProgressRepository) GetOrCreate(ctx context.Context, userID uint) (*model.UserProgress, error) {
	progress, err := r.FindByUserID(ctx, userID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, util.ErrProgressNotFound) {
		return nil, err
	}

	progress = &model.UserProgress{
		UserID: userID,
		Level:  1,
	}
	if err := r.DB.WithContext(ctx).Create(progress).Error; err != nil {
		return nil, err
	}
	return progress, nil
}

// Save 在一个事务里保存进度和徽章状态
func (r *ProgressRepository) Save(ctx context.Context, progress *model.UserProgress) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveProgress(tx, progress)
	})
}

// SaveWithQuizResult 进度和测验结果在同一个事务里落库，
// 任一失败则两者都不可见
func (r *ProgressRepository) SaveWithQuizResult(ctx context.Context, progress *model.UserProgress, result *model.QuizResult) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveProgress(tx, progress); err != nil {
			return err
		}
		return tx.Create(result).Error
	})
}

func saveProgress(tx *gorm.DB, progress *model.UserProgress) error {
	if err := tx.Omit("Badges").Save(progress).Error; err != nil {
		return err
	}
	for i := range progress.Badges {
		badge := &progress.Badges[i]
		badge.ProgressID = progress.ID
		if badge.ID == 0 {
			if err := tx.Create(badge).Error; err != nil {
				return err
			}
		} else if err := tx.Save(badge).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *ProgressRepository) FindQuizResultsByUser(ctx context.Context, userID uint) ([]model.QuizResult, error) {
	var results []model.QuizResult
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
