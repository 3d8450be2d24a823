package handoff

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists handoff codes in PostgreSQL.
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

// Create inserts a new unused code row.
func (s *PostgresStore) Create(ctx context.Context, in CreateRecord) error {
	if s == nil || s.pool == nil {
		return ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(in.Code) == "" || strings.TrimSpace(in.UserID) == "" {
		return ErrInvalidInput
	}

	codes := pgIdent(s.schema, "handoff_codes")
	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+codes+` (code, user_id, created_at, expires_at, used)
		 VALUES ($1, $2, $3, $4, FALSE)`,
		in.Code, in.UserID, in.CreatedAt, in.ExpiresAt,
	)
	return err
}

// Redeem flips used=true for an unused, unexpired code in one conditional
// update. Losing a race or presenting a spent/expired code yields the
// precise sentinel via a follow-up read.
func (s *PostgresStore) Redeem(ctx context.Context, now time.Time, code string) (string, error) {
	if s == nil || s.pool == nil {
		return "", ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return "", ErrCodeNotFound
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	codes := pgIdent(s.schema, "handoff_codes")
	var userID string
	err := s.pool.QueryRow(ctx,
		`UPDATE `+codes+`
		    SET used = TRUE
		  WHERE code = $1
		    AND used = FALSE
		    AND expires_at > $2
		RETURNING user_id`,
		code, now,
	).Scan(&userID)
	if err == nil {
		return userID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	// Distinguish not-found vs used vs expired.
	var used bool
	var expiresAt time.Time
	selErr := s.pool.QueryRow(ctx,
		`SELECT used, expires_at FROM `+codes+` WHERE code = $1`,
		code,
	).Scan(&used, &expiresAt)
	if selErr != nil {
		if errors.Is(selErr, pgx.ErrNoRows) {
			return "", ErrCodeNotFound
		}
		return "", selErr
	}
	if used {
		return "", ErrCodeUsed
	}
	if !expiresAt.After(now) {
		return "", ErrCodeExpired
	}
	// The conditional update lost to a concurrent writer that has not
	// committed from our snapshot's point of view; report it as used.
	return "", ErrCodeUsed
}

// DeleteSpent removes this user's used or expired codes.
func (s *PostgresStore) DeleteSpent(ctx context.Context, now time.Time, userID string) (int64, error) {
	if s == nil || s.pool == nil {
		return 0, ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, ErrInvalidInput
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	codes := pgIdent(s.schema, "handoff_codes")
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM `+codes+`
		  WHERE user_id = $1
		    AND (used = TRUE OR expires_at <= $2)`,
		userID, now,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func pgIdent(schema, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}
