package models

import (
	"time"
)

// User 用户表
type User struct {
	UserID       uint      `gorm:"primaryKey;column:user_id" json:"user_id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:200;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;column:password_hash;not null" json:"-"`
	CreateTime   time.Time `gorm:"column:create_time;autoCreateTime" json:"create_time"`
}

func (User) TableName() string {
	return "users"
}

// PasswordResetToken 密码重置令牌表
type PasswordResetToken struct {
	TokenID    uint      `gorm:"primaryKey;column:token_id" json:"token_id"`
	UserID     uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	Token      string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	ExpiresAt  time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
	Used       bool      `gorm:"default:false" json:"used"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime" json:"create_time"`

	User User `gorm:"foreignKey:UserID"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
