package services

import (
	"github.com/go-playground/validator/v10"
	apperrors "github.com/skillroad/backend-go/internal/errors"
)

// 请求DTO与统一校验入口，controller层绑定后调用ValidateStruct

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest 请求密码重置
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest 执行密码重置
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required,len=64"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// GenerateRoadmapRequest 生成/解析路线图请求
type GenerateRoadmapRequest struct {
	Query string `json:"query" validate:"required,min=2,max=500"`
}

// UpdateProgressRequest 更新步骤进度请求
type UpdateProgressRequest struct {
	Completed bool `json:"completed"`
}

var validate = validator.New()

// ValidateStruct 校验请求结构体，失败时返回带字段详情的验证错误
func ValidateStruct(s interface{}) *apperrors.AppError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError("invalid request payload")
	}

	details := make([]map[string]interface{}, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		details = append(details, map[string]interface{}{
			"field":   fieldError.Field(),
			"tag":     fieldError.Tag(),
			"message": validationMessage(fieldError),
		})
	}
	return apperrors.NewValidationError("Validation failed").
		WithDetails(map[string]interface{}{"errors": details})
}

// validationMessage 生成可读的字段错误消息
func validationMessage(fieldError validator.FieldError) string {
	field := fieldError.Field()
	switch fieldError.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return field + " must be at least " + fieldError.Param()
	case "max":
		return field + " must be at most " + fieldError.Param()
	case "len":
		return field + " must be exactly " + fieldError.Param() + " characters long"
	default:
		return field + " is invalid"
	}
}
