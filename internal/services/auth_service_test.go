package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/skillroad/backend-go/internal/auth"
	apperrors "github.com/skillroad/backend-go/internal/errors"
	"github.com/skillroad/backend-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubUserRepo 内存版用户仓库
type stubUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[string]*models.User
	tokens map[string]*models.PasswordResetToken
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		nextID: 1,
		users:  make(map[string]*models.User),
		tokens: make(map[string]*models.PasswordResetToken),
	}
}

func (r *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.UserID = r.nextID
	r.nextID++
	r.users[user.Email] = user
	return nil
}

func (r *stubUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *stubUserRepo) GetByID(ctx context.Context, userID uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.UserID == userID {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.UserID == userID {
			user.PasswordHash = passwordHash
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubUserRepo) CreateResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.TokenID = uint(len(r.tokens) + 1)
	r.tokens[token.Token] = token
	return nil
}

func (r *stubUserRepo) GetResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.tokens[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (r *stubUserRepo) MarkResetTokenUsed(ctx context.Context, tokenID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.tokens {
		if record.TokenID == tokenID {
			record.Used = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// captureMailer 记录发出的重置邮件
type captureMailer struct {
	to    string
	token string
}

func (m *captureMailer) SendPasswordReset(to, token string) error {
	m.to = to
	m.token = token
	return nil
}

func (m *captureMailer) Ready() bool { return true }

func newTestAuthService() (*AuthService, *stubUserRepo, *captureMailer) {
	repo := newStubUserRepo()
	mail := &captureMailer{}
	jwtService := auth.NewJWTService("test-secret", "skillroad-test", time.Hour)
	return NewAuthService(repo, jwtService, mail), repo, mail
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newTestAuthService()

	result, err := svc.Register(context.Background(), "Alice", "Alice@Example.com", "s3cret-password")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	// 邮箱统一小写存储
	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.NotEqual(t, "s3cret-password", result.User.PasswordHash)

	login, err := svc.Login(context.Background(), "alice@example.com", "s3cret-password")
	require.NoError(t, err)
	assert.Equal(t, result.User.UserID, login.User.UserID)
}

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret-password")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Alice Again", "alice@example.com", "another-password")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeConflict, appErr.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret-password")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "alice@example.com", "wrong-password")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, appErr.Code)
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	// 与密码错误同一个错误码，不暴露账号是否存在
	assert.Equal(t, apperrors.ErrCodeUnauthorized, appErr.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, repo, mail := newTestAuthService()

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "old-password-1")
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "alice@example.com"))
	require.NotEmpty(t, mail.token)
	assert.Equal(t, "alice@example.com", mail.to)
	assert.Len(t, mail.token, 64)

	require.NoError(t, svc.ResetPassword(context.Background(), mail.token, "new-password-1"))

	// 旧密码失效，新密码生效
	_, err = svc.Login(context.Background(), "alice@example.com", "old-password-1")
	require.Error(t, err)
	_, err = svc.Login(context.Background(), "alice@example.com", "new-password-1")
	require.NoError(t, err)

	// 令牌一次性使用
	err = svc.ResetPassword(context.Background(), mail.token, "third-password")
	require.Error(t, err)

	record, err := repo.GetResetToken(context.Background(), mail.token)
	require.NoError(t, err)
	assert.True(t, record.Used)
}

func TestRequestPasswordReset_UnknownEmailSilent(t *testing.T) {
	svc, _, mail := newTestAuthService()

	// 未注册邮箱也返回成功，且不发邮件
	require.NoError(t, svc.RequestPasswordReset(context.Background(), "nobody@example.com"))
	assert.Empty(t, mail.token)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	svc, repo, _ := newTestAuthService()

	result, err := svc.Register(context.Background(), "Alice", "alice@example.com", "old-password-1")
	require.NoError(t, err)

	expired := &models.PasswordResetToken{
		UserID:    result.User.UserID,
		Token:     "expired-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, repo.CreateResetToken(context.Background(), expired))

	err = svc.ResetPassword(context.Background(), "expired-token", "new-password-1")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeBadRequest, appErr.Code)
}

func TestValidateStruct(t *testing.T) {
	err := ValidateStruct(&RegisterRequest{Name: "A", Email: "not-an-email", Password: "short"})
	require.NotNil(t, err)
	assert.Equal(t, apperrors.ErrCodeValidationFailed, err.Code)

	assert.Nil(t, ValidateStruct(&RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "long-enough-password",
	}))
}
