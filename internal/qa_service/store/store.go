package store

import (
	"context"

	"querywise/internal/models"
)

// ContextStore 定义了上下文检索后端必须实现的接口。
type ContextStore interface {
	Retrieve(ctx context.Context, req models.IncomingRequest) (string, error)
	Ping(ctx context.Context) error
}

var (
	_ ContextStore = (*DatedStore)(nil)
	_ ContextStore = (*FAQStore)(nil)
)
