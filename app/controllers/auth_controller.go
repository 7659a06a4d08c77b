package controllers

import (
	"net/http"

	"github.com/skillroad/backend-go/internal/di"
	"github.com/skillroad/backend-go/internal/logger"
	"github.com/skillroad/backend-go/internal/services"
	"go.uber.org/zap"
)

// AuthController 认证控制器
type AuthController struct {
	BaseController
	authService *services.AuthService
}

// Prepare 从DI容器解析认证服务
func (c *AuthController) Prepare() {
	if err := di.Invoke(func(s *services.AuthService) { c.authService = s }); err != nil {
		logger.Error("Failed to resolve auth service", zap.Error(err))
	}
}

// Register 用户注册
func (c *AuthController) Register() {
	var req services.RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		c.HandleError(err)
		return
	}
	if err := services.ValidateStruct(&req); err != nil {
		c.HandleError(err)
		return
	}

	result, err := c.authService.Register(c.Ctx.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		c.HandleError(err)
		return
	}
	c.JSONCreated(map[string]interface{}{
		"token": result.Token,
		"user": map[string]interface{}{
			"user_id": result.User.UserID,
			"name":    result.User.Name,
			"email":   result.User.Email,
		},
	})
}

// Login 用户登录
func (c *AuthController) Login() {
	var req services.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.HandleError(err)
		return
	}
	if err := services.ValidateStruct(&req); err != nil {
		c.HandleError(err)
		return
	}

	result, err := c.authService.Login(c.Ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.HandleError(err)
		return
	}
	c.JSONSuccess(map[string]interface{}{
		"token": result.Token,
		"user": map[string]interface{}{
			"user_id": result.User.UserID,
			"name":    result.User.Name,
			"email":   result.User.Email,
		},
	})
}

// Me 返回当前用户信息
func (c *AuthController) Me() {
	userID, ok := c.RequireUser()
	if !ok {
		return
	}

	user, err := c.authService.GetProfile(c.Ctx.Request.Context(), userID)
	if err != nil {
		c.HandleError(err)
		return
	}
	c.JSONSuccess(map[string]interface{}{
		"user_id":     user.UserID,
		"name":        user.Name,
		"email":       user.Email,
		"create_time": user.CreateTime,
	})
}

// ForgotPassword 请求密码重置
func (c *AuthController) ForgotPassword() {
	var req services.ForgotPasswordRequest
	if err := c.BindJSON(&req); err != nil {
		c.HandleError(err)
		return
	}
	if err := services.ValidateStruct(&req); err != nil {
		c.HandleError(err)
		return
	}

	if err := c.authService.RequestPasswordReset(c.Ctx.Request.Context(), req.Email); err != nil {
		c.HandleError(err)
		return
	}
	// 无论邮箱是否存在都返回同一响应
	c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "If the email is registered, a reset token has been sent",
	})
}

// ResetPassword 执行密码重置
func (c *AuthController) ResetPassword() {
	var req services.ResetPasswordRequest
	if err := c.BindJSON(&req); err != nil {
		c.HandleError(err)
		return
	}
	if err := services.ValidateStruct(&req); err != nil {
		c.HandleError(err)
		return
	}

	if err := c.authService.ResetPassword(c.Ctx.Request.Context(), req.Token, req.NewPassword); err != nil {
		c.HandleError(err)
		return
	}
	c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Password has been reset",
	})
}
