package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the slice of pgxpool.Pool the store needs.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore keeps the credential as one row of portal_sessions.
type PostgresStore struct {
	db   Querier
	name string
}

// NewPostgresStore stores the credential in the row keyed by name.
func NewPostgresStore(db Querier, name string) *PostgresStore {
	return &PostgresStore{db: db, name: name}
}

func (s *PostgresStore) Save(ctx context.Context, credential string) error {
	if err := validCredential(credential); err != nil {
		return err
	}
	const query = `
        INSERT INTO portal_sessions (name, credential, updated_at)
        VALUES ($1,$2,NOW())
        ON CONFLICT (name) DO UPDATE SET credential=EXCLUDED.credential, updated_at=NOW()`
	if _, err := s.db.Exec(ctx, query, s.name, credential); err != nil {
		return fmt.Errorf("postgres save session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (string, error) {
	const query = `
        SELECT credential FROM portal_sessions WHERE name=$1`
	var credential string
	if err := s.db.QueryRow(ctx, query, s.name).Scan(&credential); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNoSession
		}
		return "", fmt.Errorf("postgres load session: %w", err)
	}
	if credential == "" {
		return "", ErrNoSession
	}
	return credential, nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	const query = `
        DELETE FROM portal_sessions WHERE name=$1`
	if _, err := s.db.Exec(ctx, query, s.name); err != nil {
		return fmt.Errorf("postgres clear session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
