package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/skillroad/backend-go/internal/auth"
	apperrors "github.com/skillroad/backend-go/internal/errors"
	"github.com/skillroad/backend-go/internal/logger"
	"github.com/skillroad/backend-go/internal/mailer"
	"github.com/skillroad/backend-go/internal/models"
	"github.com/skillroad/backend-go/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 重置令牌有效期
const resetTokenTTL = time.Hour

// AuthService 认证服务：注册、登录、密码重置
type AuthService struct {
	users repository.UserRepository
	jwt   *auth.JWTService
	mail  mailer.Mailer
}

// NewAuthService 创建认证服务
func NewAuthService(users repository.UserRepository, jwtService *auth.JWTService, mail mailer.Mailer) *AuthService {
	return &AuthService{
		users: users,
		jwt:   jwtService,
		mail:  mail,
	}
}

// AuthResult 认证结果
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register 注册新用户，邮箱唯一
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflictError("email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewDatabaseError("failed to check existing user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password").WithCause(err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.NewDatabaseError("failed to create user", err)
	}

	token, err := s.jwt.GenerateToken(user.UserID, user.Email)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue token").WithCause(err)
	}

	logger.Info("User registered", zap.Uint("user_id", user.UserID), zap.String("email", email))
	return &AuthResult{Token: token, User: user}, nil
}

// Login 校验邮箱密码并签发token
// 用户不存在与密码错误返回同一个错误，不泄露账号是否注册过
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewUnauthorizedError("invalid email or password")
		}
		return nil, apperrors.NewDatabaseError("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid email or password")
	}

	token, err := s.jwt.GenerateToken(user.UserID, user.Email)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue token").WithCause(err)
	}

	logger.Info("User logged in", zap.Uint("user_id", user.UserID))
	return &AuthResult{Token: token, User: user}, nil
}

// RequestPasswordReset 签发重置令牌并发送邮件
// 无论邮箱是否存在都返回成功，不泄露账号信息
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info("Password reset requested for unknown email", zap.String("email", email))
			return nil
		}
		return apperrors.NewDatabaseError("failed to load user", err)
	}

	token, err := generateResetToken()
	if err != nil {
		return apperrors.NewInternalError("failed to generate reset token").WithCause(err)
	}

	record := &models.PasswordResetToken{
		UserID:    user.UserID,
		Token:     token,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.users.CreateResetToken(ctx, record); err != nil {
		return apperrors.NewDatabaseError("failed to store reset token", err)
	}

	if err := s.mail.SendPasswordReset(user.Email, token); err != nil {
		// 邮件发送失败不回滚令牌，用户可以重试请求
		return apperrors.NewInternalError("failed to send reset mail").WithCause(err)
	}

	logger.Info("Password reset token issued", zap.Uint("user_id", user.UserID))
	return nil
}

// ResetPassword 校验重置令牌并更新密码，令牌一次性使用
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	record, err := s.users.GetResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewBadRequestError("invalid or expired reset token")
		}
		return apperrors.NewDatabaseError("failed to load reset token", err)
	}
	if record.Used || time.Now().After(record.ExpiresAt) {
		return apperrors.NewBadRequestError("invalid or expired reset token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.NewInternalError("failed to hash password").WithCause(err)
	}

	if err := s.users.UpdatePassword(ctx, record.UserID, string(hash)); err != nil {
		return apperrors.NewDatabaseError("failed to update password", err)
	}
	if err := s.users.MarkResetTokenUsed(ctx, record.TokenID); err != nil {
		return apperrors.NewDatabaseError("failed to invalidate reset token", err)
	}

	logger.Info("Password reset completed", zap.Uint("user_id", record.UserID))
	return nil
}

// GetProfile 查询用户信息
func (s *AuthService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("user not found")
		}
		return nil, apperrors.NewDatabaseError("failed to load user", err)
	}
	return user, nil
}

// generateResetToken 生成32字节随机十六进制令牌
func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
