package llm

import (
	"context"
	"fmt"
	"strings"

	"querywise/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// contentGenerator 是 Complete 用到的 *genai.GenerativeModel 方法。
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini 通过 generative-ai-go 调用 Gemini 模型。上下文作为系统指令传入，
// 每次调用都是独立的单轮请求，不保留会话历史。
type Gemini struct {
	client   *genai.Client                                       // GenAI 客户端实例，进程退出时关闭。
	model    string                                              // 要使用的 Gemini 模型名称。
	newModel func(req models.CompletionRequest) contentGenerator // 为单次请求创建已配置的模型。
}

// NewGemini 使用 API 密钥创建一个新的 Gemini 客户端。
func NewGemini(ctx context.Context, model, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	g := &Gemini{client: client, model: model}
	g.newModel = func(req models.CompletionRequest) contentGenerator {
		// GenerativeModel 带有可变配置，每次请求单独创建以免并发请求互相影响。
		return configureModel(g.client.GenerativeModel(g.model), req)
	}
	return g, nil
}

// configureModel 把上下文设为系统指令，并设置最大输出 token 数。
func configureModel(model *genai.GenerativeModel, req models.CompletionRequest) *genai.GenerativeModel {
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(req.SystemContext)},
	}
	model.SetMaxOutputTokens(int32(req.MaxTokens))
	return model
}

// Complete 发送一次 GenerateContent 请求并返回合并后的文本。
func (g *Gemini) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	resp, err := g.newModel(req).GenerateContent(ctx, genai.Text(req.UserQuestion))
	if err != nil {
		return "", fmt.Errorf("failed to generate content with gemini: %w", err)
	}

	text, ok := responseText(resp)
	if !ok {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(text), nil
}

// Close 释放底层 gRPC 连接。
func (g *Gemini) Close() error {
	return g.client.Close()
}

// responseText 拼接第一个候选结果中的所有文本片段。
func responseText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return "", false
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), true
}
