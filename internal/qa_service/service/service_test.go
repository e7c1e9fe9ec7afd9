package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"querywise/internal/models"
	"querywise/internal/qa_service/store"
	"querywise/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRetriever struct {
	blob  string
	err   error
	calls []models.IncomingRequest
}

func (r *stubRetriever) Retrieve(ctx context.Context, req models.IncomingRequest) (string, error) {
	r.calls = append(r.calls, req)
	if r.err != nil {
		return "", r.err
	}
	return r.blob, nil
}

// slowRetriever blocks until its context ends.
type slowRetriever struct{}

func (slowRetriever) Retrieve(ctx context.Context, _ models.IncomingRequest) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type stubCompleter struct {
	answer string
	err    error
	calls  []models.CompletionRequest
}

func (c *stubCompleter) Complete(_ context.Context, req models.CompletionRequest) (string, error) {
	c.calls = append(c.calls, req)
	if c.err != nil {
		return "", c.err
	}
	return c.answer, nil
}

func newTestService(r Retriever, c Completer) (*QAService, *bytes.Buffer) {
	var logs bytes.Buffer
	return NewQAService(r, c, 500, time.Second, logger.NewWithOutput("QueryWise", &logs)), &logs
}

func TestAnswer_Success(t *testing.T) {
	retriever := &stubRetriever{blob: "id: 1, Prop_0: 2024-01-01"}
	completer := &stubCompleter{answer: "El horario es de 9 a 18."}
	svc, _ := newTestService(retriever, completer)

	answer, err := svc.Answer(context.Background(), []byte(`{"question": "¿Cuál es el horario?", "fecha": "2024-01-01"}`))
	require.NoError(t, err)
	assert.Equal(t, "El horario es de 9 a 18.", answer)

	require.Len(t, retriever.calls, 1)
	assert.Equal(t, "2024-01-01", retriever.calls[0].DateFilter)

	require.Len(t, completer.calls, 1)
	assert.Equal(t, models.CompletionRequest{
		SystemContext: "id: 1, Prop_0: 2024-01-01",
		UserQuestion:  "¿Cuál es el horario?",
		MaxTokens:     500,
	}, completer.calls[0])
}

func TestAnswer_InvalidInputSkipsDownstream(t *testing.T) {
	retriever := &stubRetriever{blob: "ctx"}
	completer := &stubCompleter{answer: "a"}
	svc, _ := newTestService(retriever, completer)

	for _, body := range []string{`nope`, `{"question": " "}`, `{"question": "q", "fecha": "mañana"}`} {
		_, err := svc.Answer(context.Background(), []byte(body))
		require.Error(t, err)
	}
	assert.Empty(t, retriever.calls)
	assert.Empty(t, completer.calls)
}

func TestAnswer_NoContextFound(t *testing.T) {
	for _, body := range []string{`{"question": "q"}`, `{"question": "q", "fecha": "2030-01-01"}`} {
		completer := &stubCompleter{answer: "a"}
		svc, _ := newTestService(&stubRetriever{err: store.ErrNoContextFound}, completer)

		_, err := svc.Answer(context.Background(), []byte(body))
		assert.Equal(t, KindNoContextFound, KindOf(err))
		assert.Empty(t, completer.calls)

		status, _ := Respond("", err)
		assert.Equal(t, http.StatusNotFound, status)
	}
}

func TestAnswer_EmptyContextStillCompletes(t *testing.T) {
	completer := &stubCompleter{answer: "No lo sé."}
	svc, _ := newTestService(&stubRetriever{blob: ""}, completer)

	answer, err := svc.Answer(context.Background(), []byte(`{"question": "q"}`))
	require.NoError(t, err)
	assert.Equal(t, "No lo sé.", answer)
	require.Len(t, completer.calls, 1)
	assert.Empty(t, completer.calls[0].SystemContext)
}

func TestAnswer_StoreUnavailable(t *testing.T) {
	driverErr := errors.New("server selection error: dial tcp 10.1.2.3:10255: i/o timeout")
	completer := &stubCompleter{answer: "a"}
	svc, logs := newTestService(&stubRetriever{err: fmt.Errorf("find context records: %w", driverErr)}, completer)

	_, err := svc.Answer(context.Background(), []byte(`{"question": "q"}`))
	assert.Equal(t, KindStoreUnavailable, KindOf(err))
	assert.Empty(t, completer.calls)

	status, body := Respond("", err)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, MsgStoreUnavailable, body)
	assert.NotContains(t, body, "10.1.2.3")
	assert.Contains(t, logs.String(), "10.1.2.3")
}

func TestAnswer_QueryTimeout(t *testing.T) {
	var logs bytes.Buffer
	svc := NewQAService(slowRetriever{}, &stubCompleter{answer: "a"}, 100, 10*time.Millisecond, logger.NewWithOutput("QueryWise", &logs))

	_, err := svc.Answer(context.Background(), []byte(`{"question": "q"}`))
	assert.Equal(t, KindStoreUnavailable, KindOf(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestAnswer_CompletionProviderError(t *testing.T) {
	providerErr := errors.New("status code: 429, message: Rate limit reached for org-abc")
	svc, logs := newTestService(&stubRetriever{blob: "ctx"}, &stubCompleter{err: providerErr})

	_, err := svc.Answer(context.Background(), []byte(`{"question": "q"}`))
	assert.Equal(t, KindCompletionProviderError, KindOf(err))

	_, body := Respond("", err)
	assert.Equal(t, MsgCompletionFailed, body)
	assert.NotContains(t, body, "org-abc")
	assert.Contains(t, logs.String(), "org-abc")
}

func TestAnswer_Idempotent(t *testing.T) {
	svc, _ := newTestService(&stubRetriever{blob: "ctx"}, &stubCompleter{answer: "respuesta"})
	body := []byte(`{"question": "¿Cuál es el horario?", "fecha": "2024-01-01"}`)

	first, err1 := svc.Answer(context.Background(), body)
	second, err2 := svc.Answer(context.Background(), body)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
}

func TestAnswer_UsesRequestLogger(t *testing.T) {
	var requestLogs bytes.Buffer
	svc, serviceLogs := newTestService(&stubRetriever{blob: "ctx"}, &stubCompleter{answer: "a"})

	ctx := logger.IntoContext(context.Background(), logger.NewWithOutput("QueryWise", &requestLogs).WithTraceID("req-42"))
	_, err := svc.Answer(ctx, []byte(`{"question": "q"}`))
	require.NoError(t, err)

	assert.Contains(t, requestLogs.String(), "req-42")
	assert.Empty(t, serviceLogs.String())
}
