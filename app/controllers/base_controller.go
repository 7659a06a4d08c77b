package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/beego/beego/v2/server/web"
	"github.com/skillroad/backend-go/internal/auth"
	"github.com/skillroad/backend-go/internal/di"
	apperrors "github.com/skillroad/backend-go/internal/errors"
	"github.com/skillroad/backend-go/internal/logger"
	"go.uber.org/zap"
)

// BaseController provides helpers for consistent JSON responses.
type BaseController struct {
	web.Controller
}

// JSON writes a JSON response with the supplied HTTP status code.
func (c *BaseController) JSON(status int, payload interface{}) {
	c.Ctx.Output.SetStatus(status)
	c.Data["json"] = payload
	c.ServeJSON()
}

// JSONSuccess writes a standard success envelope.
func (c *BaseController) JSONSuccess(data interface{}) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// JSONCreated writes a success envelope with 201 status.
func (c *BaseController) JSONCreated(data interface{}) {
	c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// JSONError writes an error envelope with message.
func (c *BaseController) JSONError(status int, message string) {
	c.JSON(status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// HandleError 将服务层错误转换为HTTP响应
// AppError按其携带的状态码返回，其余错误一律500并记录日志
func (c *BaseController) HandleError(err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		payload := map[string]interface{}{
			"success": false,
			"code":    appErr.Code,
			"error":   appErr.Message,
		}
		if appErr.Details != nil {
			payload["details"] = appErr.Details
		}
		c.JSON(appErr.HTTPCode, payload)
		return
	}

	logger.Error("Unhandled error in controller",
		zap.String("path", c.Ctx.Request.RequestURI),
		zap.Error(err))
	c.JSONError(http.StatusInternalServerError, "Internal server error")
}

// BindJSON 解析请求体JSON
func (c *BaseController) BindJSON(v interface{}) error {
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, v); err != nil {
		return apperrors.NewBadRequestError("invalid JSON payload").WithCause(err)
	}
	return nil
}

// getAuthenticatedUserID 从Authorization头解析JWT，返回用户ID
func (c *BaseController) getAuthenticatedUserID() (uint, bool) {
	authHeader := c.Ctx.Input.Header("Authorization")
	if authHeader == "" {
		return 0, false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return 0, false
	}

	var jwtService *auth.JWTService
	if err := di.Invoke(func(j *auth.JWTService) { jwtService = j }); err != nil {
		logger.Error("Failed to resolve JWT service", zap.Error(err))
		return 0, false
	}

	claims, err := jwtService.ValidateToken(parts[1])
	if err != nil {
		logger.Debug("Token validation failed", zap.Error(err))
		return 0, false
	}
	return claims.UserID, true
}

// RequireUser 要求已认证用户，未认证时直接写401响应
func (c *BaseController) RequireUser() (uint, bool) {
	userID, ok := c.getAuthenticatedUserID()
	if !ok {
		c.JSONError(http.StatusUnauthorized, "Authentication required")
		return 0, false
	}
	return userID, true
}
