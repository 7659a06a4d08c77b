package cache

import (
	"context"
	"strings"
	"time"
)

// Store 结果缓存抽象
// 缓存永远是尽力而为的：任何后端故障都在实现内部记录日志并降级为未命中或空操作，
// 绝不向调用方传播错误导致请求失败
type Store interface {
	// Get 读取缓存，未命中或后端故障返回("", false)
	Get(ctx context.Context, key string) (string, bool)
	// Set 写入缓存并设置过期时间，失败只记录日志
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete 删除指定键
	Delete(ctx context.Context, key string) error
	// ClearPrefix 删除指定前缀的所有键，返回删除数量
	ClearPrefix(ctx context.Context, prefix string) (int, error)
}

// Key 构造标准缓存键：prefix:arg1:arg2...
func Key(prefix string, args ...string) string {
	if len(args) == 0 {
		return prefix
	}
	return prefix + ":" + strings.Join(args, ":")
}
