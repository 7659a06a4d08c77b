package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/skillroad/backend-go/internal/config"
	"github.com/skillroad/backend-go/internal/logger"
	"go.uber.org/zap"
)

// ErrGenerationFailed 生成失败：服务未配置、调用出错或返回内容不可用
// 统一上抛给调用方处理，不自动重试，不拼凑部分内容
var ErrGenerationFailed = errors.New("roadmap generation failed")

// RoadmapContent 生成器返回的结构化路线图
type RoadmapContent struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Steps       []StepContent `json:"steps"`
}

// StepContent 路线图步骤
type StepContent struct {
	ID             string            `json:"id"` // 形如"1-1"
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Icon           string            `json:"icon"`
	IconColor      string            `json:"iconColor"`
	IconBg         string            `json:"iconBg"`
	TimeToComplete string            `json:"timeToComplete"`
	Difficulty     int               `json:"difficulty"` // 1=入门 2=进阶 3=高级
	Tips           string            `json:"tips"`
	Resources      []ResourceContent `json:"resources"`
}

// ResourceContent 步骤学习资源
type ResourceContent struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	Description string `json:"description"`
}

// Generator 路线图生成接口
type Generator interface {
	Generate(ctx context.Context, query string) (*RoadmapContent, error)
	Ready() bool
}

const systemPrompt = `You are an expert in creating educational roadmaps for various fields.
Generate a comprehensive learning roadmap in JSON format based on the user's query.

The roadmap should follow this structure:
{
    "name": "Title of the roadmap",
    "description": "Description of what this roadmap covers",
    "steps": [
        {
            "id": "1-1",
            "title": "Step title",
            "description": "Detailed description of this step",
            "icon": "Icon name",
            "iconColor": "text-blue-600",
            "iconBg": "bg-blue-100",
            "timeToComplete": "Estimated time (e.g., 2-4 weeks)",
            "difficulty": 1,
            "resources": [
                {
                    "title": "Resource title",
                    "url": "URL to the resource",
                    "source": "Source name",
                    "description": "Brief description of the resource"
                }
            ],
            "tips": "Helpful tips for completing this step"
        }
    ]
}

Include 3-5 steps per section, with each step having 2-3 resources.
For icons, select from this list: Code, Server, Database, Globe, Terminal, Cpu, Cloud, Lock
Make sure all JSON is properly formatted and valid.
Only return the JSON object, with no additional text or comments.`

// NewGenerator 根据配置选择实现：有API Key用OpenAI，否则退化为Null实现
func NewGenerator(cfg config.AIConfig) Generator {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		logger.Warn("Generation credentials not found, AI generation will be disabled")
		return &NullGenerator{}
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.Endpoint != "" {
		clientCfg = openai.DefaultAzureConfig(apiKey, cfg.Endpoint)
		if cfg.APIVersion != "" {
			clientCfg.APIVersion = cfg.APIVersion
		}
	}

	model := cfg.ChatModel
	if model == "" {
		model = openai.GPT4
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 3000
	}

	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: float32(cfg.Temperature),
	}
}

// OpenAIGenerator 使用OpenAI Chat Completion API生成路线图
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func (g *OpenAIGenerator) Generate(ctx context.Context, query string) (*RoadmapContent, error) {
	logger.Info("Generating roadmap", zap.String("query", query))

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		logger.Error("Chat completion request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion response", ErrGenerationFailed)
	}

	content, err := ParseContent(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	logger.Info("Successfully generated roadmap",
		zap.String("name", content.Name), zap.Int("steps", len(content.Steps)))
	return content, nil
}

func (g *OpenAIGenerator) Ready() bool {
	return g.client != nil
}

// NullGenerator 生成服务未配置时的占位实现
type NullGenerator struct{}

func (n *NullGenerator) Generate(ctx context.Context, query string) (*RoadmapContent, error) {
	return nil, fmt.Errorf("%w: generation provider not configured", ErrGenerationFailed)
}

func (n *NullGenerator) Ready() bool {
	return false
}

// ParseContent 解析模型返回的JSON并校验结构
// 任何形状不符（JSON损坏、缺少名称、没有步骤）都视为生成失败
func ParseContent(raw string) (*RoadmapContent, error) {
	raw = strings.TrimSpace(raw)
	// 剥离模型偶尔附带的Markdown代码块围栏
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var content RoadmapContent
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		logger.Error("Failed to parse generated roadmap JSON", zap.Error(err))
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrGenerationFailed, err)
	}
	if content.Name == "" {
		return nil, fmt.Errorf("%w: roadmap name missing", ErrGenerationFailed)
	}
	if len(content.Steps) == 0 {
		return nil, fmt.Errorf("%w: roadmap has no steps", ErrGenerationFailed)
	}
	return &content, nil
}
