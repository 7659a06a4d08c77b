package embedding

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/skillroad/backend-go/internal/config"
	"github.com/skillroad/backend-go/internal/logger"
	"go.uber.org/zap"
)

// Embedder 文本向量化接口
// Embed保证不失败：嵌入服务未配置、不可达或出错时返回全零哨兵向量，
// 调用方不需要对嵌入失败分支处理，但必须遵守哨兵向量永不匹配的约定
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
	Dimensions() int
	Ready() bool
}

// Sentinel 返回指定维度的全零哨兵向量
func Sentinel(dimensions int) []float32 {
	return make([]float32, dimensions)
}

// NewEmbedder 根据配置选择实现：有API Key用OpenAI，否则退化为Null实现
func NewEmbedder(cfg config.AIConfig) Embedder {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		logger.Warn("Embedding credentials not found, embeddings will be disabled")
		return &NullEmbedder{dimensions: cfg.EmbeddingDimensions}
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.Endpoint != "" {
		// Azure OpenAI部署
		clientCfg = openai.DefaultAzureConfig(apiKey, cfg.Endpoint)
		if cfg.APIVersion != "" {
			clientCfg.APIVersion = cfg.APIVersion
		}
	}

	dims := cfg.EmbeddingDimensions
	if dims == 0 {
		dims = 1536
	}
	model := cfg.EmbeddingModel
	if model == "" {
		model = string(openai.AdaEmbeddingV2)
	}

	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      model,
		dimensions: dims,
	}
}

// OpenAIEmbedder 使用OpenAI Embedding API
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) []float32 {
	text = Normalize(text)
	if text == "" {
		logger.Warn("Embedding requested for empty text, returning sentinel vector")
		return Sentinel(e.dimensions)
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		logger.Warn("Failed to generate embedding, returning sentinel vector", zap.Error(err))
		return Sentinel(e.dimensions)
	}
	if len(resp.Data) == 0 {
		logger.Warn("Embedding response empty, returning sentinel vector")
		return Sentinel(e.dimensions)
	}

	embedding := resp.Data[0].Embedding
	if len(embedding) != e.dimensions {
		// 维度与配置不一致说明模型配置错了，宁可降级也不让错误维度进入比较
		logger.Warn("Embedding dimensions do not match configuration, returning sentinel vector",
			zap.Int("got", len(embedding)), zap.Int("want", e.dimensions))
		return Sentinel(e.dimensions)
	}

	result := make([]float32, len(embedding))
	copy(result, embedding)
	return result
}

func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

func (e *OpenAIEmbedder) Ready() bool {
	return e.client != nil
}

// NullEmbedder 嵌入服务未配置时的占位实现，恒返回哨兵向量
type NullEmbedder struct {
	dimensions int
}

func (n *NullEmbedder) Embed(ctx context.Context, text string) []float32 {
	logger.Warn("Embeddings are not supported, returning sentinel vector")
	return Sentinel(n.dimensions)
}

func (n *NullEmbedder) Dimensions() int {
	return n.dimensions
}

func (n *NullEmbedder) Ready() bool {
	return false
}

// Normalize 预处理嵌入输入：换行折叠为空格并去除首尾空白
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.TrimSpace(text)
}
