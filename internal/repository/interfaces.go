package repository

import (
	"context"

	"github.com/skillroad/backend-go/internal/models"
	"github.com/skillroad/backend-go/internal/similarity"
)

// RoadmapRepository 路线图仓库
// 核心流程只依赖三个操作：带子记录创建、按ID查询、列出全部带向量的记录
type RoadmapRepository interface {
	// CreateWithChildren 在一个事务内创建路线图及其步骤和资源
	CreateWithChildren(ctx context.Context, roadmap *models.Roadmap) error
	// GetByID 按ID查询路线图，预加载步骤和资源
	GetByID(ctx context.Context, roadmapID uint) (*models.Roadmap, error)
	// ListEmbedded 列出所有带非空向量的路线图候选，按ID升序保证平分可复现
	ListEmbedded(ctx context.Context) ([]similarity.Candidate, error)
	// List 分页列出路线图
	List(ctx context.Context, offset, limit int) ([]models.Roadmap, int64, error)

	AddFavorite(ctx context.Context, userID, roadmapID uint) error
	RemoveFavorite(ctx context.Context, userID, roadmapID uint) error
	ListFavorites(ctx context.Context, userID uint) ([]models.Roadmap, error)

	UpsertProgress(ctx context.Context, progress *models.UserStepProgress) error
	ListProgressByUser(ctx context.Context, userID uint) ([]models.UserStepProgress, error)
	StepExists(ctx context.Context, roadmapID uint, stepID string) (bool, error)
	CountSteps(ctx context.Context, roadmapID uint) (int64, error)
}

// UserRepository 用户仓库
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, userID uint) (*models.User, error)
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error

	CreateResetToken(ctx context.Context, token *models.PasswordResetToken) error
	GetResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	MarkResetTokenUsed(ctx context.Context, tokenID uint) error
}
