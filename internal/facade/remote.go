package facade

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"curalink/internal/constants"
	"curalink/internal/errors"
	"curalink/internal/metrics"
	"curalink/internal/models"
	"curalink/internal/service"
	"curalink/internal/versioning"
	"curalink/pkg/circuitbreaker"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RemoteServiceClient forwards facade calls to the host bridge over one
// websocket. Calls may overlap; responses are matched to callers by id.
// After repeated timeouts further calls fail fast until the host answers a probe.
type RemoteServiceClient struct {
	conn        *websocket.Conn
	url         string
	callTimeout time.Duration
	breaker     *circuitbreaker.Breaker
	logger      *logrus.Logger

	mu      sync.Mutex
	pending map[string]chan Response

	closed    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// DialRemote connects to the bridge at url, giving up after the configured dial timeout
func DialRemote(ctx context.Context, url string, cfg models.BridgeConfig, logger *logrus.Logger) (*RemoteServiceClient, error) {
	dialTimeout := time.Duration(cfg.DialTimeoutMs) * time.Millisecond
	if dialTimeout <= 0 {
		dialTimeout = time.Duration(constants.DefaultBridgeDialTimeoutMs) * time.Millisecond
	}
	callTimeout := time.Duration(cfg.CallTimeoutSec) * time.Second
	if callTimeout <= 0 {
		callTimeout = time.Duration(constants.DefaultBridgeCallTimeoutSec) * time.Second
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, url, &websocket.DialOptions{
		HTTPHeader: http.Header{versioning.AcceptVersionHeader: {versioning.CurrentVersion.String()}},
	})
	if err != nil {
		return nil, errors.NewBridgeError("dial", err).WithContext(service.LogFieldURL, url)
	}
	conn.SetReadLimit(constants.DefaultBridgeMaxMessageBytes)

	breaker := circuitbreaker.New("bridge", constants.DefaultBridgeBreakerFailures,
		time.Duration(constants.DefaultBridgeBreakerCooldownSec)*time.Second, logger).
		OnStateChange(func(s circuitbreaker.State) {
			open := 0.0
			if s == circuitbreaker.StateOpen {
				open = 1
			}
			metrics.SetGauge(metrics.BridgeBreakerState, open, nil, "Whether the bridge circuit breaker is open")
		})

	c := &RemoteServiceClient{
		conn:        conn,
		url:         url,
		callTimeout: callTimeout,
		breaker:     breaker,
		logger:      logger,
		pending:     make(map[string]chan Response),
		closed:      make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *RemoteServiceClient) readLoop() {
	for {
		var resp Response
		if err := wsjson.Read(context.Background(), c.conn, &resp); err != nil {
			c.shutdown(err)
			return
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()

		if !ok {
			c.logger.WithField(service.LogFieldRequestID, resp.ID).Warn("Dropping bridge response with no waiting caller")
			continue
		}
		ch <- resp
	}
}

func (c *RemoteServiceClient) shutdown(err error) {
	c.closeOnce.Do(func() {
		c.closeErr = err
		close(c.closed)

		status := websocket.CloseStatus(err)
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			c.logger.WithField(service.LogFieldURL, c.url).Debug("Bridge connection closed")
			return
		}
		c.logger.WithError(err).WithField(service.LogFieldURL, c.url).Warn("Bridge connection lost")
	})
}

// Invoke sends one call and waits for its response, the call timeout, or ctx
func (c *RemoteServiceClient) Invoke(ctx context.Context, channel, action string, payload json.RawMessage) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		out, err = c.call(ctx, channel, action, payload)
		return err
	}, isTransportFailure)
	if circuitbreaker.IsOpenError(err) {
		return nil, errors.NewBridgeError("invoke", err).
			WithContext(service.LogFieldChannel, channel).
			WithContext(service.LogFieldAction, action)
	}
	return out, err
}

// isTransportFailure is true when the host did not answer. Domain errors are answers.
func isTransportFailure(err error) bool {
	code := errors.GetCode(err)
	return code == errors.ErrCodeTimeout || code == errors.ErrCodeBridgeUnavailable
}

func (c *RemoteServiceClient) call(ctx context.Context, channel, action string, payload json.RawMessage) (json.RawMessage, error) {
	select {
	case <-c.closed:
		return nil, errors.NewBridgeError("invoke", c.closeErr)
	default:
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	req := Request{ID: uuid.NewString(), Channel: channel, Action: action, Payload: payload}
	ch := make(chan Response, 1)

	c.mu.Lock()
	c.pending[req.ID] = ch
	c.mu.Unlock()

	if err := wsjson.Write(ctx, c.conn, req); err != nil {
		c.forget(req.ID)
		return nil, errors.NewBridgeError("send", err)
	}

	select {
	case resp := <-ch:
		if resp.Error != nil {
			return nil, resp.Error.toError()
		}
		if len(resp.Result) == 0 {
			return json.RawMessage("null"), nil
		}
		return resp.Result, nil
	case <-c.closed:
		return nil, errors.NewBridgeError("receive", c.closeErr)
	case <-ctx.Done():
		c.forget(req.ID)
		return nil, errors.Wrap(ctx.Err(), errors.ErrCodeTimeout, "bridge call timed out").
			WithContext(service.LogFieldChannel, channel).
			WithContext(service.LogFieldAction, action)
	}
}

func (c *RemoteServiceClient) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *RemoteServiceClient) Mode() string { return ModeRemote }

// Close ends the connection; calls still waiting fail with BRIDGE_UNAVAILABLE
func (c *RemoteServiceClient) Close() error {
	err := c.conn.Close(websocket.StatusNormalClosure, "client closing")
	<-c.closed
	return err
}
