package llm

import (
	"context"
	"fmt"
	"strings"

	"querywise/internal/config"
	"querywise/internal/models"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAIChat 通过 Chat Completions 接口回答问题：上下文作为 system 消息，
// 问题作为 user 消息。同一类型也服务于 Azure OpenAI 部署。
type OpenAIChat struct {
	client *openai.Client // OpenAI 客户端实例。
	model  string         // 要使用的模型名称，Azure 下为部署名。
}

// NewOpenAIChat 创建一个连接 OpenAI (或兼容接口) 的聊天客户端。
func NewOpenAIChat(cfg config.OpenAIConfig) *OpenAIChat {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAIChat{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

// NewAzureChat 创建一个连接 Azure OpenAI 部署的聊天客户端。
// 请求路径中的模型名始终映射为配置的部署名。
func NewAzureChat(cfg config.AzureConfig) *OpenAIChat {
	clientConfig := openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
	if cfg.APIVersion != "" {
		clientConfig.APIVersion = cfg.APIVersion
	}
	deployment := cfg.Deployment
	clientConfig.AzureModelMapperFunc = func(string) string {
		return deployment
	}
	return &OpenAIChat{
		client: openai.NewClientWithConfig(clientConfig),
		model:  deployment,
	}
}

// Complete 发起一次非流式聊天补全。
func (o *OpenAIChat) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, o.toChatRequest(req))
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (o *OpenAIChat) toChatRequest(req models.CompletionRequest) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemContext},
			{Role: openai.ChatMessageRoleUser, Content: req.UserQuestion},
		},
		MaxTokens: req.MaxTokens,
	}
}
