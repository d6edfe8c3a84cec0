package facade

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"curalink/internal/constants"
	"curalink/internal/errors"
	"curalink/internal/metrics"
	"curalink/internal/service"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"
)

// Invoker executes one facade call. *Dispatcher implements it.
type Invoker interface {
	Invoke(ctx context.Context, channel, action string, payload json.RawMessage) (json.RawMessage, error)
}

// BridgeHandler serves the host side of the bridge: it upgrades the request
// to a websocket and answers Request frames concurrently.
type BridgeHandler struct {
	invoker        Invoker
	logger         *logrus.Logger
	originPatterns []string
}

// NewBridgeHandler accepts websocket origins from localhost only
func NewBridgeHandler(invoker Invoker, logger *logrus.Logger) *BridgeHandler {
	return &BridgeHandler{
		invoker:        invoker,
		logger:         logger,
		originPatterns: []string{"localhost", "localhost:*", "127.0.0.1", "127.0.0.1:*"},
	}
}

func (h *BridgeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		h.logger.WithError(err).WithField(service.LogFieldRemoteIP, r.RemoteAddr).Warn("Failed to accept bridge connection")
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(constants.DefaultBridgeMaxMessageBytes)

	metrics.AddToGauge(metrics.BridgeConnections, 1, nil, "Open bridge connections")
	defer metrics.AddToGauge(metrics.BridgeConnections, -1, nil, "Open bridge connections")

	h.logger.WithField(service.LogFieldRemoteIP, r.RemoteAddr).Info("Bridge client connected")

	ctx := r.Context()
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		var req Request
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				h.logger.WithField(service.LogFieldRemoteIP, r.RemoteAddr).Info("Bridge client disconnected")
			} else {
				h.logger.WithError(err).Warn("Bridge connection ended")
			}
			return
		}

		wg.Add(1)
		go func(req Request) {
			defer wg.Done()
			resp := h.handle(ctx, req)
			if err := wsjson.Write(ctx, conn, resp); err != nil {
				h.logger.WithError(err).WithField(service.LogFieldRequestID, req.ID).Debug("Failed to write bridge response")
			}
		}(req)
	}
}

func (h *BridgeHandler) handle(ctx context.Context, req Request) Response {
	if req.ID == "" {
		return Response{Error: toWireError(errors.NewValidationError("id", "", "request id is required"))}
	}

	result, err := h.invoker.Invoke(ctx, req.Channel, req.Action, req.Payload)
	if err != nil {
		return Response{ID: req.ID, Error: toWireError(err)}
	}
	return Response{ID: req.ID, Result: result}
}
