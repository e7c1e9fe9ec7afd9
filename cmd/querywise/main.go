package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"querywise/internal/config"
	"querywise/internal/database/mongo"
	"querywise/internal/database/mysql"
	"querywise/internal/database/redis"
	"querywise/internal/llm"
	"querywise/internal/qa_service/api"
	"querywise/internal/qa_service/service"
	"querywise/internal/qa_service/store"
	httpserver "querywise/pkg/http"
	"querywise/pkg/logger"
	"querywise/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Initialize logger
	level, err := logrus.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	var hooks []logrus.Hook
	var kafkaHook *logger.KafkaHook
	if len(cfg.Logger.Kafka.Brokers) > 0 {
		kafkaHook = logger.NewKafkaHook(cfg.Logger.Kafka.Brokers, cfg.Logger.Kafka.Topic, cfg.App.Name)
		hooks = append(hooks, kafkaHook)
	}
	logger.Init(level, hooks...)
	appLogger := logger.New(cfg.App.Name, "", "")
	appLogger.Info("Logger initialized")

	err = run(cfg, appLogger)
	if err != nil {
		appLogger.Error(err.Error())
	} else {
		appLogger.Info("Server stopped")
	}
	// 刷新异步写入的 Kafka 日志。
	if kafkaHook != nil {
		_ = kafkaHook.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, appLogger *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies (Store -> Completer -> Service -> Handler)
	contextStore, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	pingStore(ctx, contextStore, appLogger)

	completer, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	if closer, ok := completer.(io.Closer); ok {
		defer closer.Close()
	}

	queryTimeout, err := cfg.QueryTimeout()
	if err != nil {
		return err
	}
	qaService := service.NewQAService(contextStore, completer, cfg.LLM.MaxTokens, queryTimeout, appLogger)
	handler := api.NewHandler(qaService, contextStore, appLogger)

	limiter, closeLimiter, err := openLimiter(cfg)
	if err != nil {
		return err
	}
	defer closeLimiter()

	if cfg.App.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.SetupRouter(handler, appLogger, limiter)
	appLogger.WithPayload(map[string]interface{}{
		"retrieval_mode": cfg.Retrieval.Mode,
		"llm_provider":   cfg.LLM.Provider,
		"max_tokens":     cfg.LLM.MaxTokens,
		"rate_limited":   limiter != nil,
	}).Info("Dependencies injected")

	srv, err := newServer(cfg, router)
	if err != nil {
		return err
	}
	appLogger.Info("Starting server on " + srv.Addr())
	return srv.Run(ctx)
}

// openStore 按检索模式打开对应的上下文存储。
func openStore(ctx context.Context, cfg *config.AppConfig) (store.ContextStore, func(), error) {
	switch cfg.Retrieval.Mode {
	case config.ModeFAQ:
		db, err := mysql.Open(cfg.Databases.MySQL)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() { _ = mysql.Close(db) }
		return store.NewFAQStore(db, cfg.Databases.MySQL.Table, cfg.Databases.MySQL.Column), closeDB, nil
	case config.ModeDated:
		client, err := mongo.Connect(ctx, cfg.Databases.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		closeClient := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}
		mc := cfg.Databases.MongoDB
		return store.NewDatedStore(client.Database(mc.Database), mc.Collection, cfg.Retrieval.RecentLimit), closeClient, nil
	default:
		return nil, nil, fmt.Errorf("unknown retrieval mode: %s", cfg.Retrieval.Mode)
	}
}

// pingStore 只记录启动时数据库是否可达，不可达时服务照常启动。
func pingStore(ctx context.Context, s store.ContextStore, appLogger *logger.Logger) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		appLogger.Warn("Context store not reachable at startup: " + err.Error())
		return
	}
	appLogger.Info("Context store connection established")
}

// openLimiter 在启用限流时创建限流器，未启用时返回 nil。
func openLimiter(cfg *config.AppConfig) (ratelimiter.RateLimiter, func(), error) {
	rl := cfg.Middleware.RateLimiter
	if !rl.Enabled {
		return nil, func() {}, nil
	}
	if rl.Algorithm != ratelimiter.AlgorithmRedisFixedWindow {
		limiter, err := ratelimiter.New(rl, nil)
		return limiter, func() {}, err
	}

	rdb := redis.NewClient(cfg.Databases.Redis)
	limiter, err := ratelimiter.New(rl, rdb)
	if err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	return limiter, func() { _ = rdb.Close() }, nil
}

func newServer(cfg *config.AppConfig, router *gin.Engine) (*httpserver.Server, error) {
	readTimeout, err := config.ParseDuration(cfg.Server.ReadTimeout, 0)
	if err != nil {
		return nil, fmt.Errorf("invalid server.readTimeout: %w", err)
	}
	writeTimeout, err := config.ParseDuration(cfg.Server.WriteTimeout, 0)
	if err != nil {
		return nil, fmt.Errorf("invalid server.writeTimeout: %w", err)
	}
	shutdownTimeout, err := config.ParseDuration(cfg.Server.ShutdownTimeout, 0)
	if err != nil {
		return nil, fmt.Errorf("invalid server.shutdownTimeout: %w", err)
	}

	return httpserver.NewServer(router,
		httpserver.WithAddress(cfg.ListenAddress()),
		httpserver.WithTimeouts(readTimeout, writeTimeout),
		httpserver.WithShutdownTimeout(shutdownTimeout),
	), nil
}
