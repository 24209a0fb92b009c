package events

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFilter_Matches(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		event  *Event
		want   bool
	}{
		{
			name:   "empty filter matches any event",
			filter: Filter{},
			event:  New(TypeColumnToggled, nil),
			want:   true,
		},
		{
			name:   "nil event returns false",
			filter: Filter{},
			event:  nil,
			want:   false,
		},
		{
			name:   "type filter matches",
			filter: Filter{Types: []Type{TypeColumnToggled}},
			event:  New(TypeColumnToggled, nil),
			want:   true,
		},
		{
			name:   "type filter rejects non-matching",
			filter: Filter{Types: []Type{TypeColumnToggled}},
			event:  New(TypeColumnsReset, nil),
			want:   false,
		},
		{
			name:   "multiple types match any",
			filter: Filter{Types: []Type{TypeColumnToggled, TypeColumnMoved}},
			event:  New(TypeColumnMoved, nil),
			want:   true,
		},
		{
			name:   "prefix filter matches preference events",
			filter: Filter{Prefix: "prefs."},
			event:  New(TypeSSHUsernameUpdated, nil),
			want:   true,
		},
		{
			name:   "prefix filter rejects catalog events",
			filter: Filter{Prefix: "prefs."},
			event:  New(TypeCatalogRefreshed, nil),
			want:   false,
		},
		{
			name:   "type and prefix must both match",
			filter: Filter{Types: []Type{TypeCatalogRefreshed}, Prefix: "prefs."},
			event:  New(TypeCatalogRefreshed, nil),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tt.event); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInMemoryPublisher_PublishDelivery(t *testing.T) {
	pub := NewInMemoryPublisher()

	var mu sync.Mutex
	var received []Type
	err := pub.Subscribe("grid", Filter{Prefix: "prefs."}, func(event *Event) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, event.Type)
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	ctx := context.Background()
	pub.Publish(ctx, New(TypeColumnToggled, map[string]string{"column": "IP Address"}))
	pub.Publish(ctx, New(TypeCatalogRefreshed, nil))
	pub.Publish(ctx, New(TypeColumnsReset, nil))

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("received %d events, want 2: %v", len(received), received)
	}
	if received[0] != TypeColumnToggled || received[1] != TypeColumnsReset {
		t.Errorf("received = %v, want [%s %s]", received, TypeColumnToggled, TypeColumnsReset)
	}
}

func TestInMemoryPublisher_SubscribeValidation(t *testing.T) {
	pub := NewInMemoryPublisher()
	handler := func(*Event) {}

	if err := pub.Subscribe("", Filter{}, handler); err != ErrInvalidSubscriptionID {
		t.Errorf("empty id: error = %v, want ErrInvalidSubscriptionID", err)
	}
	if err := pub.Subscribe("a", Filter{}, nil); err != ErrNilHandler {
		t.Errorf("nil handler: error = %v, want ErrNilHandler", err)
	}
	if err := pub.Subscribe("a", Filter{}, handler); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if err := pub.Subscribe("a", Filter{}, handler); err != ErrSubscriptionExists {
		t.Errorf("duplicate id: error = %v, want ErrSubscriptionExists", err)
	}
	if got := pub.SubscriberCount(); got != 1 {
		t.Errorf("SubscriberCount() = %d, want 1", got)
	}
}

func TestInMemoryPublisher_Unsubscribe(t *testing.T) {
	pub := NewInMemoryPublisher()

	if err := pub.Unsubscribe("missing"); err != ErrSubscriptionNotFound {
		t.Errorf("error = %v, want ErrSubscriptionNotFound", err)
	}

	calls := 0
	if err := pub.Subscribe("a", Filter{}, func(*Event) { calls++ }); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if err := pub.Unsubscribe("a"); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}

	pub.Publish(context.Background(), New(TypeColumnToggled, nil))
	if calls != 0 {
		t.Errorf("handler invoked %d times after unsubscribe", calls)
	}
}

func TestInMemoryPublisher_HandlerMayUnsubscribe(t *testing.T) {
	pub := NewInMemoryPublisher()

	// Unsubscribing from inside a handler must not deadlock.
	err := pub.Subscribe("once", Filter{}, func(*Event) {
		_ = pub.Unsubscribe("once")
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	pub.Publish(context.Background(), New(TypeColumnsSaved, nil))
	if got := pub.SubscriberCount(); got != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", got)
	}
}
