package session

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using PostgreSQL (calldex.sessions).
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// StoreOption configures PostgresStore.
type StoreOption func(*PostgresStore) error

// WithSchema sets the DB schema used by the store (default: "calldex").
func WithSchema(schema string) StoreOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return ErrInvalidInput
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore creates a Postgres-backed session store.
func NewPostgresStore(pool *pgxpool.Pool, opts ...StoreOption) (*PostgresStore, error) {
	st := &PostgresStore{pool: pool, schema: "calldex"}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, ErrInvalidInput
	}
	return st, nil
}

// Create inserts a new session row.
func (s *PostgresStore) Create(ctx context.Context, in Session) error {
	if s == nil || s.pool == nil {
		return ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(in.Token) == "" || strings.TrimSpace(in.UserID) == "" {
		return ErrInvalidInput
	}

	sessions := pgx.Identifier{s.schema, "sessions"}.Sanitize()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+sessions+` (token, user_id, created_at, expires_at)
		 VALUES ($1, $2, $3, $4)`,
		in.Token, in.UserID, in.CreatedAt, in.ExpiresAt,
	)
	return err
}

// GetByToken loads a session row by its opaque identifier.
func (s *PostgresStore) GetByToken(ctx context.Context, token string) (Session, error) {
	if s == nil || s.pool == nil {
		return Session{}, ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrSessionNotFound
	}

	sessions := pgx.Identifier{s.schema, "sessions"}.Sanitize()
	var out Session
	err := s.pool.QueryRow(ctx,
		`SELECT token, user_id, created_at, expires_at
		   FROM `+sessions+`
		  WHERE token = $1`,
		token,
	).Scan(&out.Token, &out.UserID, &out.CreatedAt, &out.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	return out, nil
}
