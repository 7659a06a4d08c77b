package controllers

import (
	"net/http"
	"strconv"

	"github.com/skillroad/backend-go/internal/di"
	"github.com/skillroad/backend-go/internal/logger"
	"github.com/skillroad/backend-go/internal/models"
	"github.com/skillroad/backend-go/internal/services"
	"go.uber.org/zap"
)

// RoadmapController 路线图控制器
type RoadmapController struct {
	BaseController
	roadmapService *services.RoadmapService
}

// Prepare 从DI容器解析路线图服务
func (c *RoadmapController) Prepare() {
	if err := di.Invoke(func(s *services.RoadmapService) { c.roadmapService = s }); err != nil {
		logger.Error("Failed to resolve roadmap service", zap.Error(err))
	}
}

// roadmapIDParam 解析路径中的路线图ID
func (c *RoadmapController) roadmapIDParam() (uint, bool) {
	raw := c.Ctx.Input.Param(":id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSONError(http.StatusBadRequest, "invalid roadmap id")
		return 0, false
	}
	return uint(id), true
}

// Generate 解析查询并返回路线图，优先复用已有内容
func (c *RoadmapController) Generate() {
	var req services.GenerateRoadmapRequest
	if err := c.BindJSON(&req); err != nil {
		c.HandleError(err)
		return
	}
	if err := services.ValidateStruct(&req); err != nil {
		c.HandleError(err)
		return
	}

	roadmap, err := c.roadmapService.Resolve(c.Ctx.Request.Context(), req.Query)
	if err != nil {
		c.HandleError(err)
		return
	}
	c.JSONSuccess(roadmap)
}

// List 分页列出路线图
func (c *RoadmapController) List() {
	page, _ := c.GetInt("page", 1)
	pageSize, _ := c.GetInt("page_size", 20)

	roadmaps, total, err := c.roadmapService.List(c.Ctx.Request.Context(), page, pageSize)
	if err != nil {
		c.HandleError(err)
		return
	}
	c.JSONSuccess(map[string]interface{}{
		"items":     roadmaps,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Get 按ID查询路线图（含步骤与资源）
func (c *RoadmapController) Get() {
	roadmapID, ok := c.roadmapIDParam()
	if !ok {
		return
	}

	roadmap, err := c.roadmapService.Get(c.Ctx.Request.Context(), roadmapID)
	if err != nil {
		c.HandleError(err)
		return
	}
	c.JSONSuccess(roadmap)
}

// Create 手工创建路线图
func (c *RoadmapController) Create() {
	if _, ok := c.RequireUser(); !ok {
		return
	}

	var roadmap models.Roadmap
	if err := c.BindJSON(&roadmap); err != nil {
		c.HandleError(err)
		return
	}

	if err := c.roadmapService.CreateManual(c.Ctx.Request.Context(), &roadmap); err != nil {
		c.HandleError(err)
		return
	}
	c.JSONCreated(roadmap)
}

// AddFavorite 收藏路线图
func (c *RoadmapController) AddFavorite() {
	userID, ok := c.RequireUser()
	if !ok {
		return
	}
	roadmapID, ok := c.roadmapIDParam()
	if !ok {
		return
	}

	if err := c.roadmapService.AddFavorite(c.Ctx.Request.Context(), userID, roadmapID); err != nil {
		c.HandleError(err)
		return
	}
	c.JSONSuccess(map[string]interface{}{"roadmap_id": roadmapID, "favorited": true})
}

// RemoveFavorite 取消收藏
func (c *RoadmapController) RemoveFavorite() {
	userID, ok := c.RequireUser()
	if !ok {
		return
	}
	roadmapID, ok := c.roadmapIDParam()
	if !ok {
		return
	}

	if err := c.roadmapService.RemoveFavorite(c.Ctx.Request.Context(), userID, roadmapID); err != nil {
		c.HandleError(err)
		return
	}
	c.JSONSuccess(map[string]interface{}{"roadmap_id": roadmapID, "favorited": false})
}

// ListFavorites 列出当前用户收藏
func (c *RoadmapController) ListFavorites() {
	userID, ok := c.RequireUser()
	if !ok {
		return
	}

	roadmaps, err := c.roadmapService.ListFavorites(c.Ctx.Request.Context(), userID)
	if err != nil {
		c.HandleError(err)
		return
	}
	c.JSONSuccess(roadmaps)
}

// UpdateProgress 更新当前用户的步骤完成状态
func (c *RoadmapController) UpdateProgress() {
	userID, ok := c.RequireUser()
	if !ok {
		return
	}
	roadmapID, ok := c.roadmapIDParam()
	if !ok {
		return
	}
	stepID := c.Ctx.Input.Param(":step_id")
	if stepID == "" {
		c.JSONError(http.StatusBadRequest, "invalid step id")
		return
	}

	var req services.UpdateProgressRequest
	if err := c.BindJSON(&req); err != nil {
		c.HandleError(err)
		return
	}

	if err := c.roadmapService.UpdateProgress(c.Ctx.Request.Context(), userID, roadmapID, stepID, req.Completed); err != nil {
		c.HandleError(err)
		return
	}
	c.JSONSuccess(map[string]interface{}{
		"roadmap_id": roadmapID,
		"step_id":    stepID,
		"completed":  req.Completed,
	})
}

// ListProgress 当前用户在指定路线图上的步骤进度
func (c *RoadmapController) ListProgress() {
	userID, ok := c.RequireUser()
	if !ok {
		return
	}
	roadmapID, ok := c.roadmapIDParam()
	if !ok {
		return
	}

	progress, err := c.roadmapService.ListProgress(c.Ctx.Request.Context(), userID, roadmapID)
	if err != nil {
		c.HandleError(err)
		return
	}
	c.JSONSuccess(progress)
}

// Dashboard 当前用户的收藏与进度汇总
func (c *RoadmapController) Dashboard() {
	userID, ok := c.RequireUser()
	if !ok {
		return
	}

	summary, err := c.roadmapService.Dashboard(c.Ctx.Request.Context(), userID)
	if err != nil {
		c.HandleError(err)
		return
	}
	c.JSONSuccess(summary)
}
