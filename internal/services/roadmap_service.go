package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/skillroad/backend-go/internal/cache"
	"github.com/skillroad/backend-go/internal/config"
	"github.com/skillroad/backend-go/internal/embedding"
	apperrors "github.com/skillroad/backend-go/internal/errors"
	"github.com/skillroad/backend-go/internal/generator"
	"github.com/skillroad/backend-go/internal/kafka"
	"github.com/skillroad/backend-go/internal/logger"
	"github.com/skillroad/backend-go/internal/metrics"
	"github.com/skillroad/backend-go/internal/models"
	"github.com/skillroad/backend-go/internal/repository"
	"github.com/skillroad/backend-go/internal/similarity"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 查询结果缓存的键前缀
const queryCachePrefix = "roadmap_query"

// RoadmapService 路线图业务服务
// Resolve是核心流程：精确缓存 -> 向量化 -> 语义匹配 -> 生成 -> 持久化
type RoadmapService struct {
	repo      repository.RoadmapRepository
	embedder  embedding.Embedder
	generator generator.Generator
	store     cache.Store
	producer  *kafka.Producer // 可为nil，事件发布是尽力而为
}

// NewRoadmapService 创建路线图服务
func NewRoadmapService(
	repo repository.RoadmapRepository,
	embedder embedding.Embedder,
	gen generator.Generator,
	store cache.Store,
	producer *kafka.Producer,
) *RoadmapService {
	return &RoadmapService{
		repo:      repo,
		embedder:  embedder,
		generator: gen,
		store:     store,
		producer:  producer,
	}
}

// Resolve 解析查询对应的路线图，优先复用已有内容，必要时才调用生成器
//
// 流程依次为：
//  1. 精确缓存命中直接返回，不向量化也不生成
//  2. 查询向量化（失败降级为哨兵向量，不中断流程）
//  3. 在已有路线图中做语义匹配，达到阈值则复用
//  4. 都未命中才生成新路线图并持久化
//  5. 结果回填精确缓存
//
// 只有生成失败、持久化失败和向量维度不一致会上抛错误，
// 缓存和向量化的任何故障都只会让流程退化为更昂贵的路径
func (s *RoadmapService) Resolve(ctx context.Context, query string) (*models.Roadmap, error) {
	timer := prometheus.NewTimer(metrics.ResolveDuration)
	defer timer.ObserveDuration()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewBadRequestError("query must not be empty")
	}

	// 第一步：精确缓存
	cacheKey := cache.Key(queryCachePrefix, query)
	if roadmap := s.lookupCached(ctx, cacheKey); roadmap != nil {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		logger.Info("Roadmap resolved from result cache",
			zap.String("query", query), zap.Uint("roadmap_id", roadmap.RoadmapID))
		return roadmap, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	// 第二步：查询向量化，失败时得到哨兵向量，后续匹配必然落空
	queryVector := s.embedder.Embed(ctx, query)

	// 第三步：语义匹配
	roadmap, err := s.findSimilar(ctx, query, queryVector)
	if err != nil {
		return nil, err
	}
	if roadmap != nil {
		metrics.SemanticMatches.WithLabelValues("reused").Inc()
		s.cacheResult(ctx, cacheKey, roadmap.RoadmapID)
		s.publishEvent(roadmap, query, "reused")
		return roadmap, nil
	}
	metrics.SemanticMatches.WithLabelValues("no_match").Inc()

	// 第四步：生成新路线图
	content, err := s.generator.Generate(ctx, query)
	if err != nil {
		metrics.Generations.WithLabelValues("failure").Inc()
		logger.Error("Roadmap generation failed", zap.String("query", query), zap.Error(err))
		return nil, apperrors.NewGenerationFailedError("failed to generate roadmap").WithCause(err)
	}
	metrics.Generations.WithLabelValues("success").Inc()

	// 第五步：持久化并回填缓存
	roadmap = contentToRoadmap(content, query)
	if err := roadmap.SetEmbedding(queryVector); err != nil {
		return nil, apperrors.NewInternalError("failed to encode query embedding").WithCause(err)
	}
	if err := s.repo.CreateWithChildren(ctx, roadmap); err != nil {
		return nil, apperrors.NewDatabaseError("failed to persist generated roadmap", err)
	}

	logger.Info("New roadmap generated and persisted",
		zap.String("query", query),
		zap.Uint("roadmap_id", roadmap.RoadmapID),
		zap.Int("steps", len(roadmap.Steps)))

	s.cacheResult(ctx, cacheKey, roadmap.RoadmapID)
	s.publishEvent(roadmap, query, "generated")
	return roadmap, nil
}

// lookupCached 从精确缓存取路线图，键悬空（指向已删除记录）视为未命中并清理
func (s *RoadmapService) lookupCached(ctx context.Context, cacheKey string) *models.Roadmap {
	value, ok := s.store.Get(ctx, cacheKey)
	if !ok {
		return nil
	}
	roadmapID, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		logger.Warn("Corrupt cache entry, discarding", zap.String("key", cacheKey), zap.String("value", value))
		_ = s.store.Delete(ctx, cacheKey)
		return nil
	}
	roadmap, err := s.repo.GetByID(ctx, uint(roadmapID))
	if err != nil {
		logger.Warn("Cached roadmap no longer exists, discarding entry",
			zap.String("key", cacheKey), zap.Uint64("roadmap_id", roadmapID), zap.Error(err))
		_ = s.store.Delete(ctx, cacheKey)
		return nil
	}
	return roadmap
}

// findSimilar 在已有路线图中按余弦相似度找可复用的一条
// 维度不一致说明库内混入了其他嵌入模型的向量，必须上抛而不是跳过
func (s *RoadmapService) findSimilar(ctx context.Context, query string, queryVector []float32) (*models.Roadmap, error) {
	candidates, err := s.repo.ListEmbedded(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("failed to load roadmap candidates", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	threshold := s.threshold()
	matchID, found, err := similarity.FindBestMatch(queryVector, candidates, threshold)
	if err != nil {
		if errors.Is(err, similarity.ErrDimensionMismatch) {
			logger.Error("Embedding dimension mismatch in stored vectors", zap.Error(err))
			return nil, apperrors.NewDimensionMismatchError("stored embeddings have inconsistent dimensions").WithCause(err)
		}
		return nil, apperrors.NewInternalError("similarity search failed").WithCause(err)
	}
	if !found {
		return nil, nil
	}

	roadmap, err := s.repo.GetByID(ctx, matchID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("failed to load matched roadmap", err)
	}
	logger.Info("Reusing semantically similar roadmap",
		zap.String("query", query),
		zap.Uint("roadmap_id", matchID),
		zap.Float64("threshold", threshold))
	return roadmap, nil
}

// cacheResult 回填精确缓存，失败只记录不影响主流程
func (s *RoadmapService) cacheResult(ctx context.Context, cacheKey string, roadmapID uint) {
	_ = s.store.Set(ctx, cacheKey, strconv.FormatUint(uint64(roadmapID), 10), s.cacheTTL())
}

// publishEvent 发布路线图事件，发布失败只记录日志
func (s *RoadmapService) publishEvent(roadmap *models.Roadmap, query, source string) {
	if s.producer == nil {
		return
	}
	event := &kafka.RoadmapEvent{
		RoadmapID: roadmap.RoadmapID,
		Name:      roadmap.Name,
		Query:     query,
		Source:    source,
		Timestamp: time.Now(),
	}
	if err := s.producer.SendEvent(event); err != nil {
		logger.Warn("Failed to publish roadmap event", zap.Error(err))
	}
}

func (s *RoadmapService) threshold() float64 {
	return config.SimilarityThreshold()
}

func (s *RoadmapService) cacheTTL() time.Duration {
	return time.Duration(config.CacheTTL()) * time.Second
}

// contentToRoadmap 将生成器输出转换为持久化模型
func contentToRoadmap(content *generator.RoadmapContent, query string) *models.Roadmap {
	roadmap := &models.Roadmap{
		Name:        content.Name,
		Description: content.Description,
		QueryText:   query,
	}
	for _, step := range content.Steps {
		modelStep := models.RoadmapStep{
			StepID:         step.ID,
			Title:          step.Title,
			Description:    step.Description,
			Icon:           step.Icon,
			IconColor:      step.IconColor,
			IconBg:         step.IconBg,
			TimeToComplete: step.TimeToComplete,
			Difficulty:     step.Difficulty,
			Tips:           step.Tips,
		}
		for _, res := range step.Resources {
			modelStep.Resources = append(modelStep.Resources, models.Resource{
				Title:       res.Title,
				URL:         res.URL,
				Source:      res.Source,
				Description: res.Description,
			})
		}
		roadmap.Steps = append(roadmap.Steps, modelStep)
	}
	return roadmap
}

// CreateManual 手工创建路线图（不经过生成器，无查询向量）
func (s *RoadmapService) CreateManual(ctx context.Context, roadmap *models.Roadmap) error {
	if strings.TrimSpace(roadmap.Name) == "" {
		return apperrors.NewValidationError("roadmap name is required")
	}
	if err := s.repo.CreateWithChildren(ctx, roadmap); err != nil {
		return apperrors.NewDatabaseError("failed to create roadmap", err)
	}
	return nil
}

// Get 按ID查询路线图
func (s *RoadmapService) Get(ctx context.Context, roadmapID uint) (*models.Roadmap, error) {
	roadmap, err := s.repo.GetByID(ctx, roadmapID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("roadmap not found")
		}
		return nil, apperrors.NewDatabaseError("failed to load roadmap", err)
	}
	return roadmap, nil
}

// List 分页列出路线图
func (s *RoadmapService) List(ctx context.Context, page, pageSize int) ([]models.Roadmap, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	roadmaps, total, err := s.repo.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("failed to list roadmaps", err)
	}
	return roadmaps, total, nil
}

// AddFavorite 收藏路线图，重复收藏幂等
func (s *RoadmapService) AddFavorite(ctx context.Context, userID, roadmapID uint) error {
	if _, err := s.Get(ctx, roadmapID); err != nil {
		return err
	}
	if err := s.repo.AddFavorite(ctx, userID, roadmapID); err != nil {
		return apperrors.NewDatabaseError("failed to add favorite", err)
	}
	return nil
}

// RemoveFavorite 取消收藏
func (s *RoadmapService) RemoveFavorite(ctx context.Context, userID, roadmapID uint) error {
	if err := s.repo.RemoveFavorite(ctx, userID, roadmapID); err != nil {
		return apperrors.NewDatabaseError("failed to remove favorite", err)
	}
	return nil
}

// ListFavorites 列出用户收藏
func (s *RoadmapService) ListFavorites(ctx context.Context, userID uint) ([]models.Roadmap, error) {
	roadmaps, err := s.repo.ListFavorites(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("failed to list favorites", err)
	}
	return roadmaps, nil
}

// UpdateProgress 更新用户步骤完成状态
func (s *RoadmapService) UpdateProgress(ctx context.Context, userID, roadmapID uint, stepID string, completed bool) error {
	exists, err := s.repo.StepExists(ctx, roadmapID, stepID)
	if err != nil {
		return apperrors.NewDatabaseError("failed to check step", err)
	}
	if !exists {
		return apperrors.NewNotFoundError("roadmap step not found")
	}

	progress := &models.UserStepProgress{
		UserID:    userID,
		RoadmapID: roadmapID,
		StepID:    stepID,
		Completed: completed,
	}
	if completed {
		now := time.Now()
		progress.CompletedAt = &now
	}
	if err := s.repo.UpsertProgress(ctx, progress); err != nil {
		return apperrors.NewDatabaseError("failed to update progress", err)
	}
	return nil
}

// ListProgress 当前用户在指定路线图上的步骤进度
func (s *RoadmapService) ListProgress(ctx context.Context, userID, roadmapID uint) ([]models.UserStepProgress, error) {
	all, err := s.repo.ListProgressByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("failed to list progress", err)
	}
	progress := make([]models.UserStepProgress, 0, len(all))
	for _, p := range all {
		if p.RoadmapID == roadmapID {
			progress = append(progress, p)
		}
	}
	return progress, nil
}

// RoadmapProgress 单个路线图的进度汇总
type RoadmapProgress struct {
	RoadmapID      uint    `json:"roadmap_id"`
	TotalSteps     int64   `json:"total_steps"`
	CompletedSteps int64   `json:"completed_steps"`
	Percent        float64 `json:"percent"`
}

// DashboardSummary 用户仪表盘数据
type DashboardSummary struct {
	Favorites []models.Roadmap  `json:"favorites"`
	Progress  []RoadmapProgress `json:"progress"`
}

// Dashboard 汇总用户收藏的路线图及各自的完成进度
// 每个收藏的路线图都有进度条目，一步未完成时计数为0
func (s *RoadmapService) Dashboard(ctx context.Context, userID uint) (*DashboardSummary, error) {
	favorites, err := s.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress, err := s.repo.ListProgressByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("failed to list progress", err)
	}

	completedByRoadmap := make(map[uint]int64)
	for _, p := range progress {
		if p.Completed {
			completedByRoadmap[p.RoadmapID]++
		}
	}

	summary := &DashboardSummary{Favorites: favorites}
	for _, roadmap := range favorites {
		total, err := s.repo.CountSteps(ctx, roadmap.RoadmapID)
		if err != nil {
			return nil, apperrors.NewDatabaseError("failed to count steps", err)
		}
		entry := RoadmapProgress{
			RoadmapID:      roadmap.RoadmapID,
			TotalSteps:     total,
			CompletedSteps: completedByRoadmap[roadmap.RoadmapID],
		}
		if total > 0 {
			entry.Percent = float64(entry.CompletedSteps) / float64(total) * 100
		}
		summary.Progress = append(summary.Progress, entry)
	}
	return summary, nil
}

// ClearQueryCache 清空全部查询结果缓存，返回清除的键数量
func (s *RoadmapService) ClearQueryCache(ctx context.Context) (int, error) {
	removed, err := s.store.ClearPrefix(ctx, queryCachePrefix)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to clear query cache").WithCause(err)
	}
	logger.Info("Query cache cleared", zap.Int("removed", removed))
	return removed, nil
}
