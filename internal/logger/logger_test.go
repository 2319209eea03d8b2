package logger

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTestLoggerWritesPlainLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewTestLogger(&buf)

	l.Info("import", "fetched 3 events")
	l.Error("database", "boom")

	out := buf.String()
	assert.Contains(t, out, "INFO  [IMPORT    ] fetched 3 events")
	assert.Contains(t, out, "ERROR [DATABASE  ] boom")
}

func TestSetLevelDropsLowerEntries(t *testing.T) {
	var buf bytes.Buffer
	l := NewTestLogger(&buf)
	l.SetLevel(WARN)

	l.Debug("x", "hidden")
	l.Info("x", "hidden too")
	l.Warn("x", "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestMiddlewareLogsStatus(t *testing.T) {
	var buf bytes.Buffer
	l := NewTestLogger(&buf)

	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schedule.json", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), "GET /schedule.json - 418")
}
