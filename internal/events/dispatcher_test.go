package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authkit-labs/auth-portal/internal/domain"
)

func TestDispatcherDeliversToAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var seen []string
	d.Subscribe(EventSessionStarted, func(_ context.Context, ev Event) error {
		seen = append(seen, "first:"+ev.Subject)
		return errors.New("first failed")
	})
	d.Subscribe(EventSessionStarted, func(_ context.Context, ev Event) error {
		seen = append(seen, "second:"+ev.Subject)
		return nil
	})
	d.Subscribe(EventSessionEnded, func(context.Context, Event) error {
		t.Fatal("wrong event type delivered")
		return nil
	})

	ev := SessionEvent(EventSessionStarted, &domain.Session{Subject: "a@b.com", Role: domain.RoleAdmin})
	err := d.Publish(context.Background(), ev)

	require.EqualError(t, err, "first failed")
	assert.Equal(t, []string{"first:a@b.com", "second:a@b.com"}, seen)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, domain.RoleAdmin, ev.Role)
}

func TestDispatcherUnsubscribe(t *testing.T) {
	d := NewInMemoryDispatcher()

	var calls []string
	stopA := d.Subscribe(EventLoginFailed, func(context.Context, Event) error {
		calls = append(calls, "a")
		return nil
	})
	d.Subscribe(EventLoginFailed, func(context.Context, Event) error {
		calls = append(calls, "b")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventLoginFailed}))
	stopA()
	stopA()
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventLoginFailed}))

	assert.Equal(t, []string{"a", "b", "b"}, calls)
}

func TestDispatcherJoinsHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	first, second := errors.New("first"), errors.New("second")
	d.Subscribe(EventSessionEnded, func(context.Context, Event) error { return first })
	d.Subscribe(EventSessionEnded, func(context.Context, Event) error { return second })

	err := d.Publish(context.Background(), Event{Type: EventSessionEnded})
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}
