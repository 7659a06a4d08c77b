package repository

import (
	"context"
	"encoding/json"

	"github.com/skillroad/backend-go/internal/models"
	"github.com/skillroad/backend-go/internal/similarity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// roadmapRepository 路线图仓库实现
type roadmapRepository struct {
	db *gorm.DB
}

// NewRoadmapRepository 创建路线图仓库
func NewRoadmapRepository(db *gorm.DB) RoadmapRepository {
	return &roadmapRepository{db: db}
}

// CreateWithChildren 在一个事务内创建路线图及其步骤和资源
// 路线图创建后不可变，失败时整体回滚不留部分数据
func (r *roadmapRepository) CreateWithChildren(ctx context.Context, roadmap *models.Roadmap) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := roadmap.Steps
		roadmap.Steps = nil
		if err := tx.Create(roadmap).Error; err != nil {
			return err
		}

		for i := range steps {
			step := steps[i]
			resources := step.Resources
			step.Resources = nil
			step.RoadmapID = roadmap.RoadmapID
			if err := tx.Create(&step).Error; err != nil {
				return err
			}

			for j := range resources {
				resource := resources[j]
				resource.RoadmapID = roadmap.RoadmapID
				resource.StepID = step.StepID
				if err := tx.Create(&resource).Error; err != nil {
					return err
				}
			}
			step.Resources = resources
			steps[i] = step
		}
		roadmap.Steps = steps
		return nil
	})
}

// GetByID 按ID查询路线图，预加载步骤和资源
func (r *roadmapRepository) GetByID(ctx context.Context, roadmapID uint) (*models.Roadmap, error) {
	var roadmap models.Roadmap
	err := r.db.WithContext(ctx).
		Preload("Steps.Resources").
		Preload("Steps").
		First(&roadmap, "roadmap_id = ?", roadmapID).Error
	if err != nil {
		return nil, err
	}
	return &roadmap, nil
}

// embeddedRow 只取ID和向量列，避免加载整行
type embeddedRow struct {
	RoadmapID uint
	Embedding string
}

// ListEmbedded 列出所有带非空向量的路线图候选，按ID升序
// 向量JSON损坏的行跳过，不让单行坏数据拖垮整次搜索
func (r *roadmapRepository) ListEmbedded(ctx context.Context) ([]similarity.Candidate, error) {
	var rows []embeddedRow
	err := r.db.WithContext(ctx).
		Model(&models.Roadmap{}).
		Select("roadmap_id, embedding").
		Where("embedding IS NOT NULL AND embedding <> ''").
		Order("roadmap_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	candidates := make([]similarity.Candidate, 0, len(rows))
	for _, row := range rows {
		var vec []float32
		if err := json.Unmarshal([]byte(row.Embedding), &vec); err != nil {
			continue
		}
		candidates = append(candidates, similarity.Candidate{ID: row.RoadmapID, Vector: vec})
	}
	return candidates, nil
}

// List 分页列出路线图
func (r *roadmapRepository) List(ctx context.Context, offset, limit int) ([]models.Roadmap, int64, error) {
	var roadmaps []models.Roadmap
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Roadmap{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("roadmap_id ASC").Offset(offset).Limit(limit).Find(&roadmaps).Error; err != nil {
		return nil, 0, err
	}
	return roadmaps, total, nil
}

// AddFavorite 添加收藏，重复收藏静默忽略
func (r *roadmapRepository) AddFavorite(ctx context.Context, userID, roadmapID uint) error {
	favorite := models.UserFavoriteRoadmap{UserID: userID, RoadmapID: roadmapID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&favorite).Error
}

// RemoveFavorite 取消收藏
func (r *roadmapRepository) RemoveFavorite(ctx context.Context, userID, roadmapID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND roadmap_id = ?", userID, roadmapID).
		Delete(&models.UserFavoriteRoadmap{}).Error
}

// ListFavorites 列出用户收藏的路线图
func (r *roadmapRepository) ListFavorites(ctx context.Context, userID uint) ([]models.Roadmap, error) {
	var roadmaps []models.Roadmap
	err := r.db.WithContext(ctx).
		Joins("JOIN user_favorite_roadmaps ON user_favorite_roadmaps.roadmap_id = roadmaps.roadmap_id").
		Where("user_favorite_roadmaps.user_id = ?", userID).
		Order("roadmaps.roadmap_id ASC").
		Find(&roadmaps).Error
	if err != nil {
		return nil, err
	}
	return roadmaps, nil
}

// UpsertProgress 更新或创建步骤进度
func (r *roadmapRepository) UpsertProgress(ctx context.Context, progress *models.UserStepProgress) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "roadmap_id"}, {Name: "step_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"completed", "completed_at"}),
		}).
		Create(progress).Error
}

// ListProgressByUser 列出用户全部步骤进度
func (r *roadmapRepository) ListProgressByUser(ctx context.Context, userID uint) ([]models.UserStepProgress, error) {
	var progress []models.UserStepProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&progress).Error
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// StepExists 检查步骤是否存在
func (r *roadmapRepository) StepExists(ctx context.Context, roadmapID uint, stepID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RoadmapStep{}).
		Where("roadmap_id = ? AND step_id = ?", roadmapID, stepID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountSteps 统计路线图步骤总数
func (r *roadmapRepository) CountSteps(ctx context.Context, roadmapID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RoadmapStep{}).
		Where("roadmap_id = ?", roadmapID).
		Count(&count).Error
	return count, err
}
