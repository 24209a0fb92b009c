package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/portscout/portscout/internal/events"
	"github.com/portscout/portscout/internal/logging"
	"github.com/portscout/portscout/internal/models"
)

const defaultAgentTimeout = 10 * time.Second

// catalogResponse mirrors GET /api/v1/catalog.
type catalogResponse struct {
	AgentVersion string              `json:"agentVersion"`
	Columns      []models.GridColumn `json:"columns"`
}

// devicesResponse mirrors GET /api/v1/devices.
type devicesResponse struct {
	Devices []models.Device `json:"devices"`
}

// HTTPSource talks to a scan agent over its HTTP JSON API and caches the
// last good snapshot.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
	pub     events.Publisher

	mu      sync.RWMutex
	snap    models.CatalogSnapshot
	subs    map[int]chan models.CatalogSnapshot
	nextSub int
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient overrides the HTTP client (and with it the timeout).
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.client = client
	}
}

// WithLogger overrides the source's logger.
func WithLogger(logger zerolog.Logger) HTTPOption {
	return func(s *HTTPSource) {
		s.logger = logger
	}
}

// WithPublisher attaches an event publisher for catalog.* events.
func WithPublisher(pub events.Publisher) HTTPOption {
	return func(s *HTTPSource) {
		s.pub = pub
	}
}

// NewHTTPSource creates a source for the agent at baseURL, e.g.
// "http://127.0.0.1:8731".
func NewHTTPSource(baseURL string, opts ...HTTPOption) (*HTTPSource, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("agent URL required")
	}

	s := &HTTPSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultAgentTimeout},
		logger:  logging.Component("catalog"),
		subs:    make(map[int]chan models.CatalogSnapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AgentURL returns the configured agent base URL.
func (s *HTTPSource) AgentURL() string { return s.baseURL }

// Snapshot returns the last good snapshot, unresolved before the first
// successful Refresh.
func (s *HTTPSource) Snapshot() models.CatalogSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Refresh fetches the catalog and device list. On any failure the cached
// snapshot is kept so consumers keep rendering the last known state.
func (s *HTTPSource) Refresh(ctx context.Context) error {
	var cat catalogResponse
	if err := s.getJSON(ctx, "/api/v1/catalog", &cat); err != nil {
		return s.refreshFailed(ctx, err)
	}
	var dev devicesResponse
	if err := s.getJSON(ctx, "/api/v1/devices", &dev); err != nil {
		return s.refreshFailed(ctx, err)
	}

	snap := models.CatalogSnapshot{
		Columns:      cat.Columns,
		Devices:      dev.Devices,
		AgentVersion: cat.AgentVersion,
		FetchedAt:    time.Now(),
	}

	s.mu.Lock()
	s.snap = snap
	subs := make([]chan models.CatalogSnapshot, 0, len(s.subs))
	for _, ch := range s.subs {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	// Non-blocking fan-out; laggards catch up via Snapshot.
	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
		}
	}

	s.logger.Debug().
		Int("columns", len(snap.Columns)).
		Int("devices", len(snap.Devices)).
		Str("agent_version", snap.AgentVersion).
		Msg("catalog refreshed")
	s.publish(ctx, events.TypeCatalogRefreshed, map[string]string{
		"columns": strconv.Itoa(len(snap.Columns)),
		"devices": strconv.Itoa(len(snap.Devices)),
	})
	return nil
}

func (s *HTTPSource) refreshFailed(ctx context.Context, err error) error {
	// Error strings may embed the agent URL, which can carry userinfo.
	msg := logging.Redact(err.Error())
	s.logger.Warn().Str("error", msg).Msg("catalog refresh failed, keeping last snapshot")
	s.publish(ctx, events.TypeCatalogUnreachable, map[string]string{"error": msg})
	return err
}

// Subscribe registers for snapshot updates.
func (s *HTTPSource) Subscribe() (<-chan models.CatalogSnapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan models.CatalogSnapshot, 1)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *HTTPSource) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAgentUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: GET %s returned %s", ErrAgentUnreachable, path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (s *HTTPSource) publish(ctx context.Context, eventType events.Type, payload map[string]string) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(ctx, events.New(eventType, payload))
}
