package facade

import (
	"context"
	"encoding/json"
	"time"

	"curalink/internal/service"

	"github.com/sirupsen/logrus"
)

// LocalOptions configures the local emulation
type LocalOptions struct {
	// Samples seeds the sample templates and contacts into empty channels
	Samples bool
	Now     func() time.Time
}

// LocalEmulatedClient serves facade calls without a host process. It runs the
// same domain services as the host, backed by a LocalStore.
type LocalEmulatedClient struct {
	store      *LocalStore
	dispatcher *Dispatcher
}

func NewLocalEmulatedClient(storage Storage, opts LocalOptions, logger *logrus.Logger) *LocalEmulatedClient {
	store := NewLocalStore(storage, opts.Samples, opts.Now)
	svc := service.NewServices(store, logger, service.Options{Now: opts.Now, NewID: store.NextID})
	return &LocalEmulatedClient{
		store:      store,
		dispatcher: NewDispatcher(svc, ModeLocal, logger),
	}
}

func (c *LocalEmulatedClient) Invoke(ctx context.Context, channel, action string, payload json.RawMessage) (json.RawMessage, error) {
	return c.dispatcher.Invoke(ctx, channel, action, payload)
}

func (c *LocalEmulatedClient) Mode() string { return ModeLocal }

func (c *LocalEmulatedClient) Close() error { return nil }
