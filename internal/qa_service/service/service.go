package service

import (
	"context"
	"errors"
	"time"

	"querywise/internal/models"
	"querywise/internal/qa_service/store"
	"querywise/pkg/logger"
)

// Retriever 为已校验的请求构建上下文文本。
type Retriever interface {
	Retrieve(ctx context.Context, req models.IncomingRequest) (string, error)
}

// Completer 向推理服务请求答案。
type Completer interface {
	Complete(ctx context.Context, req models.CompletionRequest) (string, error)
}

// QAService 依次执行校验、检索和补全来回答问题。
// 它只持有只读的依赖，可以并发使用。
type QAService struct {
	retriever    Retriever
	completer    Completer
	maxTokens    int
	queryTimeout time.Duration
	logger       *logger.Logger
}

// NewQAService 创建一个新的 QAService。queryTimeout 为 0 时，数据库查询只受请求上下文约束。
func NewQAService(retriever Retriever, completer Completer, maxTokens int, queryTimeout time.Duration, logger *logger.Logger) *QAService {
	return &QAService{
		retriever:    retriever,
		completer:    completer,
		maxTokens:    maxTokens,
		queryTimeout: queryTimeout,
		logger:       logger,
	}
}

// Answer 对原始请求正文执行完整流程。返回的错误都是 *Error，
// 其底层原因在这里记录日志，不能展示给调用方。
func (s *QAService) Answer(ctx context.Context, body []byte) (string, error) {
	log := logger.FromContext(ctx, s.logger)

	req, err := ParseRequest(body)
	if err != nil {
		log.WithError(errorInfo(err)).Warn("Rejected question payload")
		return "", err
	}

	contextBlob, err := s.retrieve(ctx, req)
	if err != nil {
		s.logFailure(log, err, "Context retrieval failed")
		return "", err
	}

	answer, err := s.completer.Complete(ctx, models.CompletionRequest{
		SystemContext: contextBlob,
		UserQuestion:  req.Question,
		MaxTokens:     s.maxTokens,
	})
	if err != nil {
		failure := Fail(KindCompletionProviderError, err)
		s.logFailure(log, failure, "Completion provider call failed")
		return "", failure
	}

	log.WithPayload(map[string]interface{}{
		"context_length": len(contextBlob),
		"answer_length":  len(answer),
		"date_filter":    req.DateFilter,
	}).Info("Question answered")
	return answer, nil
}

func (s *QAService) retrieve(ctx context.Context, req models.IncomingRequest) (string, error) {
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	contextBlob, err := s.retriever.Retrieve(ctx, req)
	switch {
	case err == nil:
		return contextBlob, nil
	case errors.Is(err, store.ErrNoContextFound):
		return "", Fail(KindNoContextFound, err)
	default:
		return "", Fail(KindStoreUnavailable, err)
	}
}

func (s *QAService) logFailure(log *logger.Logger, err error, message string) {
	entry := log.WithError(errorInfo(err))
	if KindOf(err) == KindNoContextFound {
		entry.Warn(message)
		return
	}
	entry.Error(message)
}

func errorInfo(err error) models.ErrorInfo {
	status, _ := Respond("", err)
	return models.ErrorInfo{
		Message:    err.Error(),
		Type:       KindOf(err).String(),
		StatusCode: status,
	}
}
