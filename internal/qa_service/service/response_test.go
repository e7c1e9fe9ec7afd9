package service

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRespond(t *testing.T) {
	cause := errors.New("secret driver detail: password=hunter2")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"malformed", Fail(KindMalformedInput, cause), http.StatusBadRequest, MsgMalformedInput},
		{"missing question", Fail(KindMissingQuestion, cause), http.StatusBadRequest, MsgMissingQuestion},
		{"invalid date", Fail(KindInvalidDateFormat, cause), http.StatusBadRequest, MsgInvalidDateFormat},
		{"no context", Fail(KindNoContextFound, cause), http.StatusNotFound, MsgNoContextFound},
		{"store", Fail(KindStoreUnavailable, cause), http.StatusInternalServerError, MsgStoreUnavailable},
		{"provider", Fail(KindCompletionProviderError, cause), http.StatusInternalServerError, MsgCompletionFailed},
		{"internal", Fail(KindInternal, cause), http.StatusInternalServerError, MsgInternal},
		{"unclassified error", cause, http.StatusInternalServerError, MsgInternal},
		{"wrapped kind", fmt.Errorf("outer: %w", Fail(KindNoContextFound, cause)), http.StatusNotFound, MsgNoContextFound},
		{"unknown kind value", Fail(Kind(99), cause), http.StatusInternalServerError, MsgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := Respond("ignored", tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBody, body)
			assert.NotContains(t, body, "hunter2")
		})
	}
}

func TestRespond_Success(t *testing.T) {
	status, body := Respond("El horario es de 9 a 18.", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "El horario es de 9 a 18.", body)
}

func TestRespond_EveryKindMapped(t *testing.T) {
	for k := KindInternal; k <= KindCompletionProviderError; k++ {
		_, ok := responses[k]
		assert.True(t, ok, "kind %s has no response", k)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Fail(KindStoreUnavailable, cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "StoreUnavailable: boom", err.Error())
	assert.Equal(t, "MissingQuestion", (&Error{Kind: KindMissingQuestion}).Error())
}
