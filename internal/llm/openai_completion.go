package llm

import (
	"context"
	"fmt"
	"strings"

	"querywise/internal/config"
	"querywise/internal/models"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAICompletion 使用旧式 Completions 接口和单字符串提示词。
type OpenAICompletion struct {
	client *openai.Client
	model  string
}

// NewOpenAICompletion 创建一个旧式补全客户端。
func NewOpenAICompletion(cfg config.OpenAIConfig) *OpenAICompletion {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAICompletion{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

// Complete 发起一次补全请求，返回第一个候选文本。
func (o *OpenAICompletion) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	resp, err := o.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:     o.model,
		Prompt:    LegacyPrompt(req),
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Text), nil
}
