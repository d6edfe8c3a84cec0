package main

import (
	"encoding/json"
	"net/http"

	"curalink/internal/httputil"
	"curalink/internal/metrics"
	"curalink/internal/service"
	"curalink/internal/tracing"

	"github.com/sirupsen/logrus"
)

// handleMetrics returns current application metrics. Only local peers may read them.
func (s *Server) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := tracing.GetRequestID(r.Context())

		if !httputil.IsLoopbackRequest(r) {
			s.logger.WithFields(logrus.Fields{
				service.LogFieldRequestID: requestID,
				service.LogFieldRemoteIP:  httputil.GetClientIP(r),
			}).Warn("Rejected metrics request from non-local peer")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		snapshot := metrics.GetSnapshot()

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(snapshot); err != nil {
			s.logger.WithFields(logrus.Fields{
				service.LogFieldRequestID: requestID,
				"error":                   err,
			}).Error("Failed to encode metrics response")

			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		s.logger.WithField(service.LogFieldRequestID, requestID).Debug("Metrics endpoint served successfully")
	}
}
