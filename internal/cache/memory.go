package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore 进程内缓存，未配置Redis时的退化实现
// 过期条目惰性清除：只在下次读取或前缀清理时真正删除
// 进程级状态，水平扩展部署下各实例命中率独立，这是退化路径可接受的代价
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]string
	expiry map[string]time.Time
	now    func() time.Time
}

// NewMemoryStore 创建进程内缓存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:   make(map[string]string),
		expiry: make(map[string]time.Time),
		now:    time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.data[key]
	if !ok {
		return "", false
	}
	if deadline, hasDeadline := s.expiry[key]; hasDeadline && !deadline.After(s.now()) {
		// 惰性清除过期条目
		delete(s.data, key)
		delete(s.expiry, key)
		return "", false
	}
	return value, true
}

func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	if ttl > 0 {
		s.expiry[key] = s.now().Add(ttl)
	} else {
		delete(s.expiry, key)
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	delete(s.expiry, key)
	return nil
}

func (s *MemoryStore) ClearPrefix(ctx context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	full := prefix + ":"
	count := 0
	for key := range s.data {
		if strings.HasPrefix(key, full) {
			delete(s.data, key)
			delete(s.expiry, key)
			count++
		}
	}
	return count, nil
}
