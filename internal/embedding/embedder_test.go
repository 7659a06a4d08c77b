package embedding

import (
	"context"
	"testing"

	"github.com/skillroad/backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "learn backend development", Normalize("  learn\nbackend\ndevelopment "))
	assert.Equal(t, "", Normalize(" \n \n "))
	assert.Equal(t, "plain", Normalize("plain"))
}

func TestSentinel(t *testing.T) {
	vec := Sentinel(1536)
	require.Len(t, vec, 1536)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestNewEmbedder_WithoutAPIKey(t *testing.T) {
	embedder := NewEmbedder(config.AIConfig{EmbeddingDimensions: 1536})

	_, ok := embedder.(*NullEmbedder)
	assert.True(t, ok)
	assert.False(t, embedder.Ready())
	assert.Equal(t, 1536, embedder.Dimensions())
}

func TestNewEmbedder_WithAPIKey(t *testing.T) {
	embedder := NewEmbedder(config.AIConfig{
		APIKey:              "test-key",
		EmbeddingModel:      "text-embedding-ada-002",
		EmbeddingDimensions: 1536,
	})

	_, ok := embedder.(*OpenAIEmbedder)
	assert.True(t, ok)
	assert.True(t, embedder.Ready())
	assert.Equal(t, 1536, embedder.Dimensions())
}

func TestNullEmbedder_ReturnsSentinel(t *testing.T) {
	embedder := &NullEmbedder{dimensions: 8}

	vec := embedder.Embed(context.Background(), "anything")
	require.Len(t, vec, 8)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}
