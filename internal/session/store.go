// Package session persists the single session credential between page loads.
//
// Every backend holds at most one credential under a fixed name. Nothing here
// decodes or expires credentials; that is the session service's job.
package session

import (
	"context"
	"errors"
)

// ErrNoSession is returned by Load when no credential is stored.
var ErrNoSession = errors.New("no session stored")

// Store is the single-slot credential store.
type Store interface {
	// Save replaces the stored credential.
	Save(ctx context.Context, credential string) error
	// Load returns the stored credential or ErrNoSession.
	Load(ctx context.Context) (string, error)
	// Clear removes the credential. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
	// Ping reports whether the backend is usable.
	Ping(ctx context.Context) error
}

func validCredential(credential string) error {
	if credential == "" {
		return errors.New("refusing to store empty credential")
	}
	return nil
}
