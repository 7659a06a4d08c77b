package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	require.NoError(t, LoadConfig())
	require.NotNil(t, AppConfig)

	// 语义去重与缓存的关键默认值
	assert.Equal(t, 0.85, AppConfig.Similarity.Threshold)
	assert.Equal(t, 86400, AppConfig.Cache.TTL)
	assert.Equal(t, 1536, AppConfig.AI.EmbeddingDimensions)

	assert.Equal(t, "8000", AppConfig.Server.Port)
	assert.False(t, AppConfig.Redis.Enabled)
	assert.False(t, AppConfig.Kafka.Enabled)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("PORT", "9000")

	require.NoError(t, LoadConfig())
	assert.True(t, AppConfig.Redis.Enabled)
	assert.Equal(t, "9000", AppConfig.Server.Port)
}

// 热加载回调在fsnotify的goroutine里写阈值和TTL，请求goroutine并发读，
// 两侧都必须经过锁保护的访问器（go test -race 守护此路径）
func TestDynamicFieldsConcurrentReload(t *testing.T) {
	require.NoError(t, LoadConfig())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			setDynamic(0.5, 120)
			setDynamic(0.85, 86400)
		}
	}()
	for i := 0; i < 1000; i++ {
		_ = SimilarityThreshold()
		_ = CacheTTL()
	}
	<-done

	setDynamic(0.9, 300)
	assert.Equal(t, 0.9, SimilarityThreshold())
	assert.Equal(t, 300, CacheTTL())
}

func TestDynamicAccessorDefaults(t *testing.T) {
	saved := AppConfig
	defer func() {
		hotMu.Lock()
		AppConfig = saved
		hotMu.Unlock()
	}()

	hotMu.Lock()
	AppConfig = nil
	hotMu.Unlock()

	assert.Equal(t, 0.85, SimilarityThreshold())
	assert.Equal(t, 86400, CacheTTL())
}
