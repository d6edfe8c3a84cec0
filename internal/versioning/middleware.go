package versioning

import (
	"context"
	"encoding/json"
	"net/http"

	"curalink/internal/errors"
	"curalink/internal/tracing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type contextKey string

const versionContextKey contextKey = "api_version"

// Version headers
const (
	AcceptVersionHeader     = "Accept-Version" // client's protocol version
	APIVersionHeader        = "X-API-Version"  // fallback for clients that cannot set Accept-Version
	CurrentVersionHeader    = "X-Current-Version"
	SupportedVersionsHeader = "X-Supported-Versions"
)

// Middleware advertises the host protocol version on every response and
// rejects requests that ask for a version the host cannot serve. Requests
// without a version header are treated as CurrentVersion.
func Middleware(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(CurrentVersionHeader, CurrentVersion.String())
			w.Header().Set(SupportedVersionsHeader, SupportedRange())

			requested, err := requestedVersion(r)
			if err != nil {
				reject(w, r, logger, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid version header"))
				return
			}

			compat := CheckCompatibility(requested)
			if !compat.Compatible {
				reject(w, r, logger, errors.New(errors.ErrCodeVersionMismatch, compat.Reason).
					WithContext("requested_version", requested.String()).
					WithContext("current_version", CurrentVersion.String()))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithVersion(r.Context(), requested)))
		})
	}
}

func requestedVersion(r *http.Request) (APIVersion, error) {
	for _, header := range []string{AcceptVersionHeader, APIVersionHeader} {
		if v := r.Header.Get(header); v != "" {
			return ParseVersion(v)
		}
	}
	return CurrentVersion, nil
}

func reject(w http.ResponseWriter, r *http.Request, logger *logrus.Logger, err error) {
	requestID := tracing.GetRequestID(r.Context())
	logger.WithError(err).WithFields(logrus.Fields{
		"request_id": requestID,
		"path":       r.URL.Path,
		"user_agent": r.UserAgent(),
	}).Warn("Rejected request for unsupported protocol version")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errors.HTTPStatusCode(err))
	if encErr := json.NewEncoder(w).Encode(errors.ToHTTPResponse(err, requestID)); encErr != nil {
		logger.WithError(encErr).Error("Failed to encode version error response")
	}
}

// WithVersion stores the negotiated version in ctx
func WithVersion(ctx context.Context, v APIVersion) context.Context {
	return context.WithValue(ctx, versionContextKey, v)
}

// GetVersionFromContext returns the negotiated version, if any
func GetVersionFromContext(ctx context.Context) (APIVersion, bool) {
	v, ok := ctx.Value(versionContextKey).(APIVersion)
	return v, ok
}
