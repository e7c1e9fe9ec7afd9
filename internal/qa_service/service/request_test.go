package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantKind   Kind
		wantOK     bool
		wantQ      string
		wantFilter string
	}{
		{name: "question only", body: `{"question": "¿Cuál es el horario?"}`, wantOK: true, wantQ: "¿Cuál es el horario?"},
		{name: "question and fecha", body: `{"question": "q", "fecha": "2024-06-01"}`, wantOK: true, wantQ: "q", wantFilter: "2024-06-01"},
		{name: "null fecha is absent", body: `{"question": "q", "fecha": null}`, wantOK: true, wantQ: "q"},
		{name: "empty fecha is absent", body: `{"question": "q", "fecha": ""}`, wantOK: true, wantQ: "q"},
		{name: "unknown fields ignored", body: ` {"question": "q", "extra": 1} `, wantOK: true, wantQ: "q"},
		{name: "duplicate question last wins when valid", body: `{"question": "", "question": "q2"}`, wantOK: true, wantQ: "q2"},
		{name: "fecha key is case sensitive", body: `{"question": "q", "Fecha": "ayer"}`, wantOK: true, wantQ: "q"},

		{name: "empty body", body: ``, wantKind: KindMalformedInput},
		{name: "not json", body: `question=hola`, wantKind: KindMalformedInput},
		{name: "truncated json", body: `{"question": "q"`, wantKind: KindMalformedInput},
		{name: "json array", body: `["q"]`, wantKind: KindMalformedInput},
		{name: "json string", body: `"q"`, wantKind: KindMalformedInput},
		{name: "json null", body: `null`, wantKind: KindMalformedInput},
		{name: "question wrong type", body: `{"question": 5}`, wantKind: KindMalformedInput},
		{name: "trailing garbage", body: `{"question": "q"} x`, wantKind: KindMalformedInput},

		{name: "missing question", body: `{}`, wantKind: KindMissingQuestion},
		{name: "empty question", body: `{"question": ""}`, wantKind: KindMissingQuestion},
		{name: "blank question", body: `{"question": "  \t\n "}`, wantKind: KindMissingQuestion},
		{name: "null question", body: `{"question": null}`, wantKind: KindMissingQuestion},
		{name: "missing question wins over bad fecha", body: `{"fecha": "ayer"}`, wantKind: KindMissingQuestion},
		{name: "question key is case sensitive", body: `{"QUESTION": "q"}`, wantKind: KindMissingQuestion},
		{name: "duplicate question last wins", body: `{"question": "q", "question": ""}`, wantKind: KindMissingQuestion},

		{name: "fecha not a date", body: `{"question": "q", "fecha": "ayer"}`, wantKind: KindInvalidDateFormat},
		{name: "fecha impossible day", body: `{"question": "q", "fecha": "2024-02-30"}`, wantKind: KindInvalidDateFormat},
		{name: "fecha wrong layout", body: `{"question": "q", "fecha": "01/06/2024"}`, wantKind: KindInvalidDateFormat},
		{name: "fecha with time", body: `{"question": "q", "fecha": "2024-06-01T10:00:00Z"}`, wantKind: KindInvalidDateFormat},
		{name: "fecha unpadded", body: `{"question": "q", "fecha": "2024-6-1"}`, wantKind: KindInvalidDateFormat},
		{name: "fecha with surrounding spaces", body: `{"question": "q", "fecha": " 2024-01-01 "}`, wantKind: KindInvalidDateFormat},
		{name: "fecha wrong type", body: `{"question": "q", "fecha": 20240101}`, wantKind: KindMalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRequest([]byte(tt.body))
			if tt.wantOK {
				require.NoError(t, err)
				assert.Equal(t, tt.wantQ, req.Question)
				assert.Equal(t, tt.wantFilter, req.DateFilter)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err), "error: %v", err)
		})
	}
}

func TestParseRequest_LeapDay(t *testing.T) {
	req, err := ParseRequest([]byte(`{"question": "q", "fecha": "2024-02-29"}`))
	require.NoError(t, err)
	assert.True(t, req.HasDateFilter())
}
