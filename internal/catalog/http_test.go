package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/portscout/portscout/internal/events"
	"github.com/portscout/portscout/internal/models"
)

// fakeAgent is a scriptable scan agent.
type fakeAgent struct {
	mu      sync.Mutex
	columns []models.GridColumn
	devices []models.Device
	version string
	broken  bool
}

func (a *fakeAgent) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/catalog", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.broken {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"agentVersion": a.version,
			"columns":      a.columns,
		})
	})
	mux.HandleFunc("/api/v1/devices", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.broken {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"devices": a.devices})
	})
	return mux
}

func (a *fakeAgent) setBroken(broken bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.broken = broken
}

func newAgentFixture() *fakeAgent {
	return &fakeAgent{
		version: "1.4.0",
		columns: []models.GridColumn{
			{ID: "Device Name", Label: "Device Name", Enabled: true},
			{ID: "IP Address", Label: "IP Address", Enabled: true},
		},
		devices: []models.Device{
			{ID: "sw-approw-01", Fields: map[string]string{"Device Name": "sw-approw-01", "IP Address": "10.0.4.2"}},
		},
	}
}

func newFakeAgent(t *testing.T) (*fakeAgent, *HTTPSource) {
	t.Helper()
	agent := newAgentFixture()
	srv := httptest.NewServer(agent.handler())
	t.Cleanup(srv.Close)

	source, err := NewHTTPSource(srv.URL)
	require.NoError(t, err)
	return agent, source
}

func TestHTTPSourceRefreshAndSnapshot(t *testing.T) {
	_, source := newFakeAgent(t)

	require.False(t, source.Snapshot().Resolved())

	require.NoError(t, source.Refresh(context.Background()))

	snap := source.Snapshot()
	require.True(t, snap.Resolved())
	require.Equal(t, "1.4.0", snap.AgentVersion)
	require.Len(t, snap.Columns, 2)
	require.Len(t, snap.Devices, 1)
	require.Equal(t, "10.0.4.2", snap.Devices[0].Field("IP Address"))
}

func TestHTTPSourceKeepsLastGoodSnapshot(t *testing.T) {
	agent, source := newFakeAgent(t)
	ctx := context.Background()

	require.NoError(t, source.Refresh(ctx))
	good := source.Snapshot()

	agent.setBroken(true)
	err := source.Refresh(ctx)
	require.ErrorIs(t, err, ErrAgentUnreachable)

	require.Equal(t, good, source.Snapshot(), "failed refresh must not clear the cache")
}

func TestHTTPSourceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	source, err := NewHTTPSource(url)
	require.NoError(t, err)

	err = source.Refresh(context.Background())
	require.ErrorIs(t, err, ErrAgentUnreachable)
	require.False(t, source.Snapshot().Resolved())
}

func TestHTTPSourceSubscribe(t *testing.T) {
	_, source := newFakeAgent(t)
	ctx := context.Background()

	updates, cancel := source.Subscribe()

	require.NoError(t, source.Refresh(ctx))
	select {
	case snap := <-updates:
		require.Len(t, snap.Columns, 2)
	default:
		t.Fatal("expected a snapshot on the subscription channel")
	}

	cancel()
	require.NoError(t, source.Refresh(ctx))
	select {
	case <-updates:
		t.Fatal("cancelled subscription still receiving")
	default:
	}
}

func TestHTTPSourceEmitsEvents(t *testing.T) {
	agent := newAgentFixture()
	srv := httptest.NewServer(agent.handler())
	t.Cleanup(srv.Close)

	pub := events.NewInMemoryPublisher()
	var mu sync.Mutex
	var seen []events.Type
	require.NoError(t, pub.Subscribe("t", events.Filter{Prefix: "catalog."}, func(e *events.Event) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, e.Type)
	}))

	source, err := NewHTTPSource(srv.URL, WithPublisher(pub))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, source.Refresh(ctx))
	agent.setBroken(true)
	require.Error(t, source.Refresh(ctx))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []events.Type{events.TypeCatalogRefreshed, events.TypeCatalogUnreachable}, seen)
}

func TestHTTPSourceDecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	t.Cleanup(srv.Close)

	source, err := NewHTTPSource(srv.URL)
	require.NoError(t, err)

	err = source.Refresh(context.Background())
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrAgentUnreachable), "a decode failure is a contract problem, not a transport one")
	require.False(t, source.Snapshot().Resolved())
}

func TestNewHTTPSourceValidation(t *testing.T) {
	_, err := NewHTTPSource("   ")
	require.Error(t, err)

	source, err := NewHTTPSource("http://127.0.0.1:8731/")
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8731", source.AgentURL())
}
