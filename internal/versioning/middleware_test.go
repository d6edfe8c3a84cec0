package versioning

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"curalink/internal/errors"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T, seen *APIVersion) http.Handler {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, ok := GetVersionFromContext(r.Context())
		require.True(t, ok)
		*seen = v
		w.WriteHeader(http.StatusOK)
	}))
}

func TestMiddleware_Accepts(t *testing.T) {
	tests := []struct {
		name   string
		header string
		value  string
		want   APIVersion
	}{
		{"no header defaults to current", "", "", CurrentVersion},
		{"accept version", AcceptVersionHeader, "1.0.0", V1_0_0},
		{"api version fallback", APIVersionHeader, "1.1.0", V1_1_0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen APIVersion
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			newHandler(t, &seen).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, seen)
			assert.Equal(t, CurrentVersion.String(), rec.Header().Get(CurrentVersionHeader))
			assert.Equal(t, SupportedRange(), rec.Header().Get(SupportedVersionsHeader))
		})
	}
}

func TestMiddleware_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		status int
		code   errors.ErrorCode
	}{
		{"newer major", "2.0.0", http.StatusUpgradeRequired, errors.ErrCodeVersionMismatch},
		{"too old", "0.9.0", http.StatusUpgradeRequired, errors.ErrCodeVersionMismatch},
		{"malformed", "latest", http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen APIVersion
			req := httptest.NewRequest(http.MethodGet, "/bridge", nil)
			req.Header.Set(AcceptVersionHeader, tt.value)
			rec := httptest.NewRecorder()
			newHandler(t, &seen).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, APIVersion{}, seen)

			var resp errors.HTTPErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}
