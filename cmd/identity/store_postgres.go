package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements identity persistence over PostgreSQL.
//
// The pgx pool is owned by the caller; this store must NOT close it.
// Schema identifiers are validated to avoid SQL injection via identifiers.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the identity store (default "calldex").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore with secure defaults.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "calldex",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

// GetByEmail resolves a user by normalized email.
func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (User, error) {
	if s == nil || s.pool == nil {
		return User{}, ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	email = NormalizeEmail(email)
	if email == "" {
		return User{}, ErrInvalidInput
	}

	users := pgx.Identifier{s.schema, "users"}.Sanitize()
	var out User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, display_name, created_at
		   FROM `+users+`
		  WHERE email = $1`,
		email,
	).Scan(&out.ID, &out.Email, &out.DisplayName, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return out, nil
}

// GetByID loads a user by id.
func (s *PostgresStore) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.pool == nil {
		return User{}, ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return User{}, ErrInvalidInput
	}

	users := pgx.Identifier{s.schema, "users"}.Sanitize()
	var out User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, display_name, created_at
		   FROM `+users+`
		  WHERE id = $1`,
		userID,
	).Scan(&out.ID, &out.Email, &out.DisplayName, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return out, nil
}
