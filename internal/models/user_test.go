package models

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 重置令牌为32字节随机数的hex编码，固定64个字符，
// 模型列宽必须与migrations里的VARCHAR(64)一致
func TestPasswordResetTokenColumnWidth(t *testing.T) {
	field, ok := reflect.TypeOf(PasswordResetToken{}).FieldByName("Token")
	require.True(t, ok)
	assert.Contains(t, field.Tag.Get("gorm"), "size:64")
}
