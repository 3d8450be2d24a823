package directory

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore reads contacts from PostgreSQL.
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

// NewPostgresStore constructs a PostgresStore.
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

// FindByPhoneFragment finds the first contact owned by userID whose stored
// phone's digit form contains fragment anywhere. The broad substring match
// is policy, not an accident; see the package comment on resolver.go.
func (s *PostgresStore) FindByPhoneFragment(ctx context.Context, userID, fragment string) (ContactSummary, error) {
	if s == nil || s.pool == nil {
		return ContactSummary{}, ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return ContactSummary{}, err
	}
	userID = strings.TrimSpace(userID)
	fragment = strings.TrimSpace(fragment)
	if userID == "" || fragment == "" {
		return ContactSummary{}, ErrInvalidInput
	}

	contacts := pgx.Identifier{s.schema, "contacts"}.Sanitize()
	var out ContactSummary
	err := s.pool.QueryRow(ctx,
		`SELECT id, display_name, company, primary_image_url
		   FROM `+contacts+`
		  WHERE user_id = $1
		    AND regexp_replace(coalesce(primary_phone, ''), '[^0-9]', '', 'g') LIKE '%' || $2 || '%'
		  ORDER BY id
		  LIMIT 1`,
		userID, fragment,
	).Scan(&out.ID, &out.DisplayName, &out.Company, &out.ImageURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ContactSummary{}, ErrNoMatch
		}
		return ContactSummary{}, err
	}
	return out, nil
}
