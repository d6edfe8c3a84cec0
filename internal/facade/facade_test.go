package facade

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"curalink/internal/constants"
	"curalink/internal/errors"
	"curalink/internal/models"
	"curalink/pkg/circuitbreaker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_CopiesValues(t *testing.T) {
	s := NewMemoryStorage()

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte(`[1,2]`)
	require.NoError(t, s.Set("k", value))
	value[0] = 'x'

	got, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[1,2]`, string(got))
}

func TestDirStorage_PersistsDocuments(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	s, err := NewDirStorage(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set("curalink-contacts", []byte(`[]`)))
	got, ok, err := s.Get("curalink-contacts")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[]`, string(got))

	info, err := os.Stat(filepath.Join(dir, "curalink-contacts.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = os.Stat(filepath.Join(dir, "curalink-contacts.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestDirStorage_RejectsNestedKeys(t *testing.T) {
	s, err := NewDirStorage(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../escape", "a/b", "nested/../../x"} {
		assert.Error(t, s.Set(key, []byte(`{}`)), key)
		_, _, err := s.Get(key)
		assert.Error(t, err, key)
	}
}

func TestLocalEmulatedClient_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	storage, err := NewDirStorage(dir)
	require.NoError(t, err)
	first := NewService(NewLocalEmulatedClient(storage, LocalOptions{}, quietLogger()))

	contacts, err := first.GetContacts(ctx)
	require.NoError(t, err)
	assert.Empty(t, contacts)

	created, err := first.CreateContact(ctx, models.Contact{Name: "Lena Ortiz"})
	require.NoError(t, err)

	storage, err = NewDirStorage(dir)
	require.NoError(t, err)
	second := NewService(NewLocalEmulatedClient(storage, LocalOptions{Samples: true}, quietLogger()))

	contacts, err = second.GetContacts(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, created.ID, contacts[0].ID)
}

func TestLocalStore_NextIDIncreases(t *testing.T) {
	fixed := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	store := NewLocalStore(NewMemoryStorage(), false, func() time.Time { return fixed })

	a := store.NextID()
	b := store.NextID()
	c := store.NextID()

	assert.Equal(t, "1792404000000", a)
	assert.Equal(t, "1792404000001", b)
	assert.Equal(t, "1792404000002", c)
}

func TestLocalStore_CorruptDocument(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(keyContacts, []byte(`{not json`)))
	svc := NewService(NewLocalEmulatedClient(storage, LocalOptions{}, quietLogger()))

	_, err := svc.GetContacts(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDatabaseQuery, errors.GetCode(err))
}

func TestDispatcher_DeleteReturnsSuccess(t *testing.T) {
	client := NewLocalEmulatedClient(NewMemoryStorage(), LocalOptions{Samples: true}, quietLogger())

	raw, err := client.Invoke(context.Background(), ChannelEvents, ActionDelete, json.RawMessage(`"no-such-event"`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": true}`, string(raw))
}

func TestDispatcher_UpcomingDefaultsToOneDay(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.Local)
	svc := NewService(NewLocalEmulatedClient(NewMemoryStorage(), LocalOptions{Now: func() time.Time { return now }}, quietLogger()))
	ctx := context.Background()

	for _, date := range []string{"2026-10-19", "2026-10-20", "2026-10-21"} {
		_, err := svc.CreateEvent(ctx, models.Event{EventType: models.EventTypeReminder, EventDate: date, Notes: date})
		require.NoError(t, err)
	}

	raw, err := svc.client.Invoke(ctx, ChannelEvents, ActionGetUpcoming, nil)
	require.NoError(t, err)
	var events []models.Event
	require.NoError(t, json.Unmarshal(raw, &events))
	assert.Equal(t, []string{"2026-10-19", "2026-10-20"}, eventNotes(events))
}

func TestDispatcher_SearchWithoutPayload(t *testing.T) {
	svc := NewService(NewLocalEmulatedClient(NewMemoryStorage(), LocalOptions{Samples: true}, quietLogger()))

	raw, err := svc.client.Invoke(context.Background(), ChannelContacts, ActionSearch, nil)
	require.NoError(t, err)
	var contacts []models.Contact
	require.NoError(t, json.Unmarshal(raw, &contacts))

	all, err := svc.GetContacts(context.Background())
	require.NoError(t, err)
	assert.Len(t, contacts, len(all))
}

type blockingInvoker struct {
	release chan struct{}
}

func (b *blockingInvoker) Invoke(ctx context.Context, _, _ string, _ json.RawMessage) (json.RawMessage, error) {
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return json.RawMessage(`null`), nil
}

func dialTestBridge(t *testing.T, invoker Invoker) (*RemoteServiceClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(NewBridgeHandler(invoker, quietLogger()))
	client, err := DialRemote(context.Background(), "ws"+strings.TrimPrefix(server.URL, "http"), models.BridgeConfig{}, quietLogger())
	require.NoError(t, err)
	return client, server
}

func TestRemoteServiceClient_CallTimeout(t *testing.T) {
	invoker := &blockingInvoker{release: make(chan struct{})}
	client, server := dialTestBridge(t, invoker)
	defer server.Close()
	defer client.Close()
	defer close(invoker.release)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := client.Invoke(ctx, ChannelContacts, ActionGetAll, nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeTimeout, errors.GetCode(err))
}

func TestRemoteServiceClient_BreakerOpensAfterTimeouts(t *testing.T) {
	invoker := &blockingInvoker{release: make(chan struct{})}
	client, server := dialTestBridge(t, invoker)
	defer server.Close()
	defer client.Close()
	defer close(invoker.release)

	for i := 0; i < constants.DefaultBridgeBreakerFailures; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		_, err := client.Invoke(ctx, ChannelContacts, ActionGetAll, nil)
		cancel()
		require.Equal(t, errors.ErrCodeTimeout, errors.GetCode(err))
	}
	assert.Equal(t, circuitbreaker.StateOpen, client.breaker.State())

	_, err := client.Invoke(context.Background(), ChannelContacts, ActionGetAll, nil)
	assert.Equal(t, errors.ErrCodeBridgeUnavailable, errors.GetCode(err))
}

func TestRemoteServiceClient_DomainErrorsKeepBreakerClosed(t *testing.T) {
	client := NewLocalEmulatedClient(NewMemoryStorage(), LocalOptions{}, quietLogger())
	remote, server := dialTestBridge(t, client)
	defer server.Close()
	defer remote.Close()

	for i := 0; i < constants.DefaultBridgeBreakerFailures+1; i++ {
		_, err := remote.Invoke(context.Background(), ChannelContacts, "explode", nil)
		assert.Equal(t, errors.ErrCodeUnknownAction, errors.GetCode(err))
	}
	assert.Equal(t, circuitbreaker.StateClosed, remote.breaker.State())
}

func TestRemoteServiceClient_ConcurrentCalls(t *testing.T) {
	client := NewLocalEmulatedClient(NewMemoryStorage(), LocalOptions{Samples: true}, quietLogger())
	remote, server := dialTestBridge(t, client)
	defer server.Close()
	defer remote.Close()

	svc := NewService(remote)
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_, err := svc.GetTemplates(context.Background())
			errs <- err
		}()
	}
	for i := 0; i < 10; i++ {
		assert.NoError(t, <-errs)
	}
}

func TestRemoteServiceClient_FailsAfterClose(t *testing.T) {
	client := NewLocalEmulatedClient(NewMemoryStorage(), LocalOptions{}, quietLogger())
	remote, server := dialTestBridge(t, client)
	defer server.Close()

	require.NoError(t, remote.Close())

	_, err := remote.Invoke(context.Background(), ChannelSettings, ActionGetAll, nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeBridgeUnavailable, errors.GetCode(err))
}

func TestConnect_FallsBackToLocal(t *testing.T) {
	server := httptest.NewServer(nil)
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	server.Close()

	dir := filepath.Join(t.TempDir(), "local")
	client, err := Connect(context.Background(), models.BridgeConfig{
		URL:             url,
		DialTimeoutMs:   200,
		LocalStorageDir: dir,
	}, true, quietLogger())
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, ModeLocal, client.Mode())

	templates, err := NewService(client).GetTemplates(context.Background())
	require.NoError(t, err)
	assert.Len(t, templates, 4)

	_, err = os.Stat(filepath.Join(dir, keyTemplates+".json"))
	assert.NoError(t, err)
}

func TestConnect_UsesBridgeWhenAvailable(t *testing.T) {
	local := NewLocalEmulatedClient(NewMemoryStorage(), LocalOptions{}, quietLogger())
	server := httptest.NewServer(NewBridgeHandler(local, quietLogger()))
	defer server.Close()

	client, err := Connect(context.Background(), models.BridgeConfig{
		URL: "ws" + strings.TrimPrefix(server.URL, "http"),
	}, false, quietLogger())
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, ModeRemote, client.Mode())
}

func TestConnect_NoURLMeansLocal(t *testing.T) {
	client, err := Connect(context.Background(), models.BridgeConfig{}, false, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, ModeLocal, client.Mode())
}
