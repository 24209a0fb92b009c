// Package events provides in-process pub/sub for preference and catalog changes.
package events

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type identifies what happened. Types are dot-separated so filters can
// match on a prefix ("prefs." catches every preference mutation).
type Type string

const (
	TypeColumnToggled      Type = "prefs.column.toggled"
	TypeColumnMoved        Type = "prefs.column.moved"
	TypeColumnsSaved       Type = "prefs.columns.saved"
	TypeColumnsReset       Type = "prefs.columns.reset"
	TypeSSHUsernameUpdated Type = "prefs.ssh_username.updated"

	TypeCatalogRefreshed   Type = "catalog.refreshed"
	TypeCatalogUnreachable Type = "catalog.unreachable"
)

// Event is a single published occurrence.
type Event struct {
	ID        string            `json:"id"`
	Type      Type              `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   map[string]string `json:"payload,omitempty"`
}

// New creates an event with a fresh ID and the current UTC timestamp.
func New(eventType Type, payload map[string]string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// Handler is a callback function invoked when an event matches a subscription.
type Handler func(event *Event)

// Filter defines criteria for matching events.
type Filter struct {
	// Types filters by exact event type (nil = all types).
	Types []Type

	// Prefix filters by event type prefix (empty = all). Applied in
	// addition to Types when both are set.
	Prefix string
}

// Matches returns true if the event matches the filter criteria.
func (f *Filter) Matches(event *Event) bool {
	if event == nil {
		return false
	}

	if len(f.Types) > 0 {
		matched := false
		for _, t := range f.Types {
			if event.Type == t {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if f.Prefix != "" && !strings.HasPrefix(string(event.Type), f.Prefix) {
		return false
	}

	return true
}

// subscription represents an active event subscription.
type subscription struct {
	id      string
	filter  Filter
	handler Handler
}

// Publisher defines the interface for event publishing and subscription.
type Publisher interface {
	// Publish sends an event to all matching subscribers.
	Publish(ctx context.Context, event *Event)

	// Subscribe registers a handler to receive events matching the filter.
	// The id is chosen by the caller and used for later unsubscription.
	Subscribe(id string, filter Filter, handler Handler) error

	// Unsubscribe removes a subscription by ID.
	Unsubscribe(id string) error

	// SubscriberCount returns the number of active subscribers.
	SubscriberCount() int
}

// InMemoryPublisher implements Publisher using in-process pub/sub.
type InMemoryPublisher struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
}

// NewInMemoryPublisher creates a new in-memory event publisher.
func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{
		subscriptions: make(map[string]*subscription),
	}
}

// Publish sends an event to all matching subscribers.
func (p *InMemoryPublisher) Publish(ctx context.Context, event *Event) {
	if event == nil {
		return
	}

	// Collect matching handlers under the read lock, invoke them outside
	// it so a handler may subscribe or unsubscribe without deadlocking.
	p.mu.RLock()
	var handlers []Handler
	for _, sub := range p.subscriptions {
		if sub.filter.Matches(event) {
			handlers = append(handlers, sub.handler)
		}
	}
	p.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// Subscribe registers a handler to receive events matching the filter.
func (p *InMemoryPublisher) Subscribe(id string, filter Filter, handler Handler) error {
	if id == "" {
		return ErrInvalidSubscriptionID
	}
	if handler == nil {
		return ErrNilHandler
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.subscriptions[id]; exists {
		return ErrSubscriptionExists
	}

	p.subscriptions[id] = &subscription{
		id:      id,
		filter:  filter,
		handler: handler,
	}

	return nil
}

// Unsubscribe removes a subscription by ID.
func (p *InMemoryPublisher) Unsubscribe(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.subscriptions[id]; !exists {
		return ErrSubscriptionNotFound
	}

	delete(p.subscriptions, id)
	return nil
}

// SubscriberCount returns the number of active subscribers.
func (p *InMemoryPublisher) SubscriberCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subscriptions)
}

// Close removes all subscriptions.
func (p *InMemoryPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscriptions = make(map[string]*subscription)
}

// Errors for publisher operations.
var (
	ErrInvalidSubscriptionID = &PublisherError{Message: "subscription ID is required"}
	ErrNilHandler            = &PublisherError{Message: "handler cannot be nil"}
	ErrSubscriptionExists    = &PublisherError{Message: "subscription with this ID already exists"}
	ErrSubscriptionNotFound  = &PublisherError{Message: "subscription not found"}
)

// PublisherError represents an error from publisher operations.
type PublisherError struct {
	Message string
}

func (e *PublisherError) Error() string {
	return e.Message
}
