package controllers

import (
	"net/http"

	"github.com/skillroad/backend-go/internal/database"
	"github.com/skillroad/backend-go/internal/di"
	"github.com/skillroad/backend-go/internal/logger"
	"github.com/skillroad/backend-go/internal/metrics"
	"github.com/skillroad/backend-go/internal/services"
	"go.uber.org/zap"
)

// RootController 根路径控制器
type RootController struct {
	BaseController
}

// Index 服务信息
func (c *RootController) Index() {
	c.JSONSuccess(map[string]interface{}{
		"service": "skillroad-backend",
		"status":  "running",
	})
}

// HealthController 健康检查控制器
type HealthController struct {
	BaseController
}

// Health 报告数据库与Redis连接状态
func (c *HealthController) Health() {
	status := "healthy"
	components := map[string]string{}

	if db := database.GetDB(); db != nil {
		components["database"] = "connected"
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Ping(); err != nil {
				components["database"] = "unreachable"
				status = "degraded"
			}
		}
	} else {
		components["database"] = "not_initialized"
		status = "degraded"
	}

	if client := database.GetRedisClient(); client != nil {
		components["cache"] = "redis"
		if err := client.Ping(c.Ctx.Request.Context()).Err(); err != nil {
			components["cache"] = "redis_unreachable"
			status = "degraded"
		}
	} else {
		components["cache"] = "in_process"
	}

	httpStatus := http.StatusOK
	if status != "healthy" {
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, map[string]interface{}{
		"status":     status,
		"components": components,
	})
}

// MetricsController Prometheus指标控制器
type MetricsController struct {
	BaseController
}

// Metrics 返回Prometheus格式的指标
func (c *MetricsController) Metrics() {
	metrics.Handler().ServeHTTP(c.Ctx.ResponseWriter, c.Ctx.Request)
}

// CacheController 缓存管理控制器
type CacheController struct {
	BaseController
	roadmapService *services.RoadmapService
}

// Prepare 从DI容器解析路线图服务
func (c *CacheController) Prepare() {
	if err := di.Invoke(func(s *services.RoadmapService) { c.roadmapService = s }); err != nil {
		logger.Error("Failed to resolve roadmap service", zap.Error(err))
	}
}

// Clear 清空查询结果缓存，需要认证
func (c *CacheController) Clear() {
	if _, ok := c.RequireUser(); !ok {
		return
	}

	removed, err := c.roadmapService.ClearQueryCache(c.Ctx.Request.Context())
	if err != nil {
		c.HandleError(err)
		return
	}
	c.JSONSuccess(map[string]interface{}{"removed": removed})
}
