package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"curalink/internal/metrics"
	"curalink/internal/tracing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.DebugLevel)
	return logger
}

func TestObservabilityMiddleware(t *testing.T) {
	metrics.GetRegistry().Reset()
	var logBuffer bytes.Buffer
	logger := newTestLogger(&logBuffer)

	var seenID string
	router := mux.NewRouter()
	router.Use(ObservabilityMiddleware(logger))
	router.HandleFunc("/api/invoke/{channel}/{action}", func(w http.ResponseWriter, r *http.Request) {
		seenID = tracing.GetRequestID(r.Context())
		assert.False(t, tracing.GetStartTime(r.Context()).IsZero())
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodPost)

	req := httptest.NewRequest(http.MethodPost, "/api/invoke/contacts/getAll", nil)
	req.Header.Set("User-Agent", "test-agent")
	req.RemoteAddr = "192.168.1.100:12345"
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, seenID)
	assert.True(t, strings.HasPrefix(seenID, "req_"))
	assert.Equal(t, seenID, w.Header().Get(tracing.RequestIDHeader))

	snap := metrics.GetSnapshot()
	counter, ok := snap.Counters["http_requests_total_endpoint:/api/invoke/{channel}/{action}_method:POST_status_code:200"]
	require.True(t, ok, "request counter keyed by route template")
	assert.Equal(t, float64(1), counter.Value)

	timer, ok := snap.Timers["http_request_duration_endpoint:/api/invoke/{channel}/{action}_method:POST"]
	require.True(t, ok)
	assert.Equal(t, int64(1), timer.Count)
	assert.Equal(t, float64(0), snap.Gauges[metrics.HTTPRequestsActive].Value)

	logOutput := logBuffer.String()
	assert.Contains(t, logOutput, "HTTP request started")
	assert.Contains(t, logOutput, "HTTP request completed")
	assert.Contains(t, logOutput, `"request_id":"`+seenID+`"`)
	assert.Contains(t, logOutput, `"response_size":2`)
	assert.Contains(t, logOutput, `"remote_ip":"192.168.1.100"`)
}

func TestObservabilityMiddleware_PropagatesRequestID(t *testing.T) {
	var logBuffer bytes.Buffer
	handler := ObservabilityMiddleware(newTestLogger(&logBuffer))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req_from_client", tracing.GetRequestID(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(tracing.RequestIDHeader, "req_from_client")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "req_from_client", w.Header().Get(tracing.RequestIDHeader))
}

func TestObservabilityMiddleware_ReplacesOversizedRequestID(t *testing.T) {
	var logBuffer bytes.Buffer
	handler := ObservabilityMiddleware(newTestLogger(&logBuffer))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(tracing.RequestIDHeader, strings.Repeat("x", 200))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	got := w.Header().Get(tracing.RequestIDHeader)
	assert.True(t, strings.HasPrefix(got, "req_"))
	assert.Len(t, got, 20)
}

func TestObservabilityMiddleware_LogLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, `"level":"info"`},
		{http.StatusBadRequest, `"level":"warning"`},
		{http.StatusInternalServerError, `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var logBuffer bytes.Buffer
			handler := ObservabilityMiddleware(newTestLogger(&logBuffer))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/error", nil))

			assert.Equal(t, tt.status, w.Code)
			lines := strings.Split(strings.TrimSpace(logBuffer.String()), "\n")
			last := lines[len(lines)-1]
			assert.Contains(t, last, "HTTP request completed")
			assert.Contains(t, last, tt.level)
		})
	}
}

func TestRouteTemplate_OutsideRouter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/plain/path", nil)
	assert.Equal(t, "/plain/path", routeTemplate(req))
}

func TestResponseWrapper(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWrapper{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusCreated)
	n, err := rw.Write([]byte("hello"))
	require.NoError(t, err)
	rw.Flush()

	assert.Equal(t, 5, n)
	assert.Equal(t, http.StatusCreated, rw.statusCode)
	assert.Equal(t, int64(5), rw.responseSize)
	assert.True(t, rec.Flushed)
	assert.Same(t, rec, rw.Unwrap())

	_, _, err = rw.Hijack()
	assert.Error(t, err, "recorder cannot be hijacked")
}
