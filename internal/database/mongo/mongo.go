package mongo

import (
	"context"
	"fmt"

	"querywise/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ClientOptions 根据配置构建 MongoDB 客户端选项。
func ClientOptions(cfg config.MongoConfig) *options.ClientOptions {
	clientOptions := options.Client().ApplyURI(cfg.Address)
	// 如果配置了用户名和密码，则设置认证信息；否则使用 URI 中的凭据。
	if cfg.Username != "" && cfg.Password != "" {
		clientOptions.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}
	return clientOptions
}

// Connect 创建 MongoDB 客户端。驱动按需建立连接，这里不做 Ping，
// 数据库暂时不可达时服务仍可启动，由每次请求各自报告存储错误。
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	opts := ClientOptions(cfg)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("无效的 MongoDB 配置: %w", err)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("无法连接到 MongoDB: %w", err)
	}
	return client, nil
}
