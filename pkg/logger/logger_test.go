package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"querywise/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestWithMethodsDoNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithOutput("QueryWise", &buf)

	child := base.WithTraceID("abc").WithError(models.ErrorInfo{Message: "boom"})
	child.Error("child")
	base.Info("parent")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))

	assert.Equal(t, "abc", first["trace_id"])
	assert.Contains(t, first, "error")
	assert.NotContains(t, second, "trace_id")
	assert.NotContains(t, second, "error")
}

func TestKafkaHookFire(t *testing.T) {
	writer := &fakeWriter{}
	hook := &KafkaHook{writer: writer, service: "QueryWise"}

	entry := logrus.NewEntry(logrus.New()).WithFields(logrus.Fields{
		"trace_id":     "req-1",
		"request_info": models.RequestInfo{Method: "POST", Path: "/api/querywisemanagerhttp"},
		"error":        models.ErrorInfo{Message: "dial tcp: refused", Type: "StoreUnavailable", StatusCode: 500},
	})
	entry.Level = logrus.ErrorLevel
	entry.Message = "context retrieval failed"

	require.NoError(t, hook.Fire(entry))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "req-1", string(msg.Key))

	var logEntry models.LogEntry
	require.NoError(t, json.Unmarshal(msg.Value, &logEntry))
	assert.Equal(t, "QueryWise", logEntry.ServiceName)
	assert.Equal(t, "error", logEntry.Level)
	assert.Equal(t, "context retrieval failed", logEntry.Message)
	require.NotNil(t, logEntry.Error)
	assert.Equal(t, "StoreUnavailable", logEntry.Error.Type)
	require.NotNil(t, logEntry.RequestInfo)
	assert.Equal(t, "POST", logEntry.RequestInfo.Method)
}

func TestKafkaHookFireError(t *testing.T) {
	hook := &KafkaHook{writer: &fakeWriter{err: errors.New("broker down")}, service: "QueryWise"}

	entry := logrus.NewEntry(logrus.New())
	entry.Level = logrus.WarnLevel

	assert.Error(t, hook.Fire(entry))
}

func TestKafkaHookLevels(t *testing.T) {
	hook := &KafkaHook{}
	assert.Contains(t, hook.Levels(), logrus.WarnLevel)
	assert.NotContains(t, hook.Levels(), logrus.InfoLevel)
}
