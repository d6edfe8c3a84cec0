package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"curalink/internal/calendar"
	"curalink/internal/constants"
	"curalink/internal/errors"
	"curalink/internal/facade"
	"curalink/internal/middleware"
	"curalink/internal/models"
	"curalink/internal/service"
	"curalink/internal/tracing"
	"curalink/internal/versioning"
	"curalink/pkg/whatsapp"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// UpcomingSource serves the latest reminder snapshot
type UpcomingSource interface {
	Latest() (service.Snapshot, bool)
	Refresh(ctx context.Context) (service.Snapshot, error)
}

type Server struct {
	router   *mux.Router
	logger   *logrus.Logger
	cfg      *models.Config
	svc      *service.Services
	invoker  facade.Invoker
	upcoming UpcomingSource
	links    *whatsapp.LinkBuilder
	now      func() time.Time
	server   *http.Server
}

func NewServer(cfg *models.Config, svc *service.Services, invoker facade.Invoker, upcoming UpcomingSource, logger *logrus.Logger) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		logger:   logger,
		cfg:      cfg,
		svc:      svc,
		invoker:  invoker,
		upcoming: upcoming,
		links:    whatsapp.NewLinkBuilder(cfg.Messaging.ChatDomain, cfg.Messaging.DefaultCountryCode),
		now:      time.Now,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.ObservabilityMiddleware(s.logger))
	s.router.Use(versioning.Middleware(s.logger))

	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)

	// Host bridge for facade clients
	s.router.Handle(constants.DefaultBridgePath, facade.NewBridgeHandler(s.invoker, s.logger)).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/invoke/{channel}/{action}", s.handleInvoke()).Methods(http.MethodPost)
	api.HandleFunc("/upcoming", s.handleUpcoming()).Methods(http.MethodGet)
	api.HandleFunc("/calendar/{year:[0-9]{4}}/{month:[0-9]{1,2}}", s.handleCalendar()).Methods(http.MethodGet)
	api.HandleFunc("/link", s.handleLink()).Methods(http.MethodPost)
}

func (s *Server) Start() error {
	addr := net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.Port))

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.Server.IdleTimeoutSec) * time.Second,
	}

	s.logger.WithField(service.LogFieldURL, addr).Info("Starting server")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// handleInvoke mirrors the bridge over plain HTTP. The body is the call payload.
func (s *Server) handleInvoke() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.DefaultBridgeMaxMessageBytes))
		if err != nil {
			s.writeError(w, r, errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to read request body"))
			return
		}

		result, err := s.invoker.Invoke(r.Context(), vars["channel"], vars["action"], body)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(result)
	}
}

// handleUpcoming returns the latest reminder snapshot, refreshing first if there is none yet
func (s *Server) handleUpcoming() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := s.upcoming.Latest()
		if !ok {
			var err error
			snap, err = s.upcoming.Refresh(r.Context())
			if err != nil {
				s.writeError(w, r, err)
				return
			}
		}
		s.writeJSON(w, r, http.StatusOK, snap)
	}
}

func (s *Server) handleCalendar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		year, _ := strconv.Atoi(vars["year"])
		month, _ := strconv.Atoi(vars["month"])
		if month < 1 || month > 12 {
			s.writeError(w, r, errors.NewValidationError("month", vars["month"], "month must be between 1 and 12"))
			return
		}

		today := s.now()
		var selected time.Time
		if key := r.URL.Query().Get("selected"); key != "" {
			t, err := calendar.ParseDateKey(key, today.Location())
			if err != nil {
				s.writeError(w, r, errors.NewValidationError("selected", key, "selected must be a YYYY-MM-DD date"))
				return
			}
			selected = t
		}

		s.writeJSON(w, r, http.StatusOK, calendar.MonthGrid(year, time.Month(month), today, selected))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).WithField(service.LogFieldRequestID, tracing.GetRequestID(r.Context())).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := tracing.GetRequestID(r.Context())
	status := errors.HTTPStatusCode(err)

	entry := s.logger.WithError(err).WithFields(logrus.Fields{
		service.LogFieldRequestID:  requestID,
		service.LogFieldErrorCode:  errors.GetCode(err),
		service.LogFieldStatusCode: status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error(fmt.Sprintf("Request failed: %s", r.URL.Path))
	} else {
		entry.Debug(fmt.Sprintf("Request rejected: %s", r.URL.Path))
	}

	s.writeJSON(w, r, status, errors.ToHTTPResponse(err, requestID))
}
