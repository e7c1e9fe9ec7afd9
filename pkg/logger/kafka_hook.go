package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"querywise/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// messageWriter 是 kafka.Writer 中被钩子使用的部分。
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaHook 是一个 logrus 钩子，把 WARN 及以上级别的日志以 models.LogEntry 的
// JSON 格式投递到 Kafka，供集中式日志系统消费。
type KafkaHook struct {
	writer  messageWriter
	service string
	timeout time.Duration
}

// NewKafkaHook 创建一个投递到指定主题的 KafkaHook。写入是异步的，不会阻塞请求。
func NewKafkaHook(brokers []string, topic, service string) *KafkaHook {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
		Async:        true,
	})
	return &KafkaHook{writer: writer, service: service, timeout: 2 * time.Second}
}

// Levels 实现 logrus.Hook。
func (h *KafkaHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
	}
}

// Fire 实现 logrus.Hook。
func (h *KafkaHook) Fire(entry *logrus.Entry) error {
	logEntry := toLogEntry(h.service, entry)

	jsonData, err := json.Marshal(logEntry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	err = h.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(logEntry.TraceID),
		Value: jsonData,
	})
	if err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

// Close 关闭底层的 writer 连接，并刷新尚未发送的日志。
func (h *KafkaHook) Close() error {
	return h.writer.Close()
}

func toLogEntry(service string, entry *logrus.Entry) *models.LogEntry {
	logEntry := &models.LogEntry{
		ServiceName: service,
		Level:       entry.Level.String(),
		Message:     entry.Message,
		Timestamp:   entry.Time,
	}
	if name, ok := entry.Data["service_name"].(string); ok && name != "" {
		logEntry.ServiceName = name
	}
	if traceID, ok := entry.Data["trace_id"].(string); ok {
		logEntry.TraceID = traceID
	}
	if req, ok := entry.Data["request_info"].(models.RequestInfo); ok {
		logEntry.RequestInfo = &req
	}
	if errInfo, ok := entry.Data["error"].(models.ErrorInfo); ok {
		logEntry.Error = &errInfo
	}
	if payload, ok := entry.Data["payload"].(map[string]interface{}); ok {
		logEntry.Payload = payload
	}
	return logEntry
}
