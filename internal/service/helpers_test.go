package service

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/authkit-labs/auth-portal/internal/auth"
	"github.com/authkit-labs/auth-portal/internal/domain"
	"github.com/authkit-labs/auth-portal/internal/events"
	"github.com/authkit-labs/auth-portal/internal/identity"
	"github.com/authkit-labs/auth-portal/internal/session"
	"github.com/authkit-labs/auth-portal/internal/testutil"
)

type recordingNav struct {
	mu    sync.Mutex
	dests []domain.Destination
}

func (n *recordingNav) Navigate(_ context.Context, dest domain.Destination) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dests = append(n.dests, dest)
	return nil
}

func (n *recordingNav) all() []domain.Destination {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Destination(nil), n.dests...)
}

func (n *recordingNav) last() domain.Destination {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.dests) == 0 {
		return ""
	}
	return n.dests[len(n.dests)-1]
}

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) of(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func recordEvents(d events.Dispatcher) *recordedEvents {
	rec := &recordedEvents{}
	for _, t := range []events.EventType{
		events.EventSessionStarted, events.EventSessionEnded,
		events.EventLoginFailed, events.EventResetCompleted,
	} {
		d.Subscribe(t, func(_ context.Context, ev events.Event) error {
			rec.mu.Lock()
			rec.events = append(rec.events, ev)
			rec.mu.Unlock()
			return nil
		})
	}
	return rec
}

type harness struct {
	id         *testutil.Identity
	client     *identity.Client
	store      *session.MemoryStore
	dispatcher events.Dispatcher
	events     *recordedEvents
	sessions   *SessionService
	nav        *recordingNav
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	id := testutil.NewIdentity()
	dispatcher := events.NewInMemoryDispatcher()
	store := session.NewMemoryStore()
	return &harness{
		id:         id,
		client:     identity.NewClient(testutil.Config().Identity, id.Client(), zap.NewNop(), nil),
		store:      store,
		dispatcher: dispatcher,
		events:     recordEvents(dispatcher),
		sessions:   NewSessionService(store, auth.NewDecoder(), dispatcher, zap.NewNop(), SessionOptions{ProactiveExpiry: true}),
		nav:        &recordingNav{},
	}
}

func (h *harness) stored(t *testing.T) string {
	t.Helper()
	cred, err := h.store.Load(context.Background())
	if err != nil {
		return ""
	}
	return cred
}
