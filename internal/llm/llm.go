package llm

import (
	"context"
	"errors"
	"fmt"

	"querywise/internal/config"
	"querywise/internal/models"
)

// ErrEmptyCompletion 表示提供商返回成功但没有任何候选结果。
var ErrEmptyCompletion = errors.New("completion returned no choices")

// Completer 定义了所有补全客户端必须实现的通用接口。
// 每次调用只向提供商发起一次请求，不做重试。
type Completer interface {
	Complete(ctx context.Context, req models.CompletionRequest) (string, error)
}

// NewClient 是一个工厂函数，根据 llm.provider 创建对应的补全客户端。
func NewClient(ctx context.Context, cfg config.LLMConfig) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAIChat:
		return NewOpenAIChat(cfg.OpenAI), nil
	case config.ProviderAzureChat:
		return NewAzureChat(cfg.Azure), nil
	case config.ProviderOpenAICompletion:
		return NewOpenAICompletion(cfg.OpenAI), nil
	case config.ProviderOllama:
		return NewOllama(cfg.Ollama.Model, cfg.Ollama.Host)
	case config.ProviderGemini:
		return NewGemini(ctx, cfg.Gemini.Model, cfg.Gemini.APIKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// LegacyPrompt 拼接旧式单字符串提示词：上下文、问题和答案引导词。
func LegacyPrompt(req models.CompletionRequest) string {
	return req.SystemContext + "\nPregunta: " + req.UserQuestion + "\nRespuesta:"
}
