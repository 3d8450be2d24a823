package devicetoken

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists device tokens in PostgreSQL.
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

// Create inserts a new token row.
func (s *PostgresStore) Create(ctx context.Context, in CreateRecord) error {
	if s == nil || s.pool == nil {
		return ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(in.ID) == "" || strings.TrimSpace(in.UserID) == "" || strings.TrimSpace(in.TokenHash) == "" {
		return ErrInvalidInput
	}

	tokens := pgIdent(s.schema, "device_tokens")
	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+tokens+` (
		     id, user_id, token_hash, device_name, platform, created_at, last_used_at, expires_at
		   ) VALUES ($1, $2, $3, $4, $5, $6, NULL, $7)`,
		in.ID, in.UserID, in.TokenHash, in.DeviceName, string(in.Platform), in.CreatedAt, in.ExpiresAt,
	)
	return err
}

// GetByHash loads a token by its secret hash.
func (s *PostgresStore) GetByHash(ctx context.Context, tokenHash string) (Token, error) {
	if s == nil || s.pool == nil {
		return Token{}, ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return Token{}, err
	}
	tokenHash = strings.TrimSpace(tokenHash)
	if tokenHash == "" {
		return Token{}, ErrInvalidInput
	}

	tokens := pgIdent(s.schema, "device_tokens")
	var out Token
	var platform string
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, device_name, platform, created_at, last_used_at, expires_at
		   FROM `+tokens+`
		  WHERE token_hash = $1`,
		tokenHash,
	).Scan(&out.ID, &out.UserID, &out.DeviceName, &platform, &out.CreatedAt, &out.LastUsedAt, &out.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Token{}, ErrNotFound
		}
		return Token{}, err
	}
	out.Platform = Platform(platform)
	return out, nil
}

// Touch updates last_used_at for a token.
func (s *PostgresStore) Touch(ctx context.Context, now time.Time, tokenID string) error {
	if s == nil || s.pool == nil {
		return ErrInvalidInput
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	tokens := pgIdent(s.schema, "device_tokens")
	_, err := s.pool.Exec(ctx,
		`UPDATE `+tokens+` SET last_used_at = $2 WHERE id = $1`,
		tokenID, now,
	)
	return err
}

// ListByUser returns the user's tokens ordered by last_used_at DESC.
// NULL last_used_at (never-used tokens) sorts last.
func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Token, error) {
	if s == nil || s.pool == nil {
		return nil, ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}

	tokens := pgIdent(s.schema, "device_tokens")
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, device_name, platform, created_at, last_used_at, expires_at
		   FROM `+tokens+`
		  WHERE user_id = $1
		  ORDER BY last_used_at DESC NULLS LAST, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Token
	for rows.Next() {
		var t Token
		var platform string
		if err := rows.Scan(&t.ID, &t.UserID, &t.DeviceName, &platform, &t.CreatedAt, &t.LastUsedAt, &t.ExpiresAt); err != nil {
			return nil, err
		}
		t.Platform = Platform(platform)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Delete removes a token scoped to its owner.
func (s *PostgresStore) Delete(ctx context.Context, userID, tokenID string) (bool, error) {
	if s == nil || s.pool == nil {
		return false, ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	userID = strings.TrimSpace(userID)
	tokenID = strings.TrimSpace(tokenID)
	if userID == "" || tokenID == "" {
		return false, ErrInvalidInput
	}

	tokens := pgIdent(s.schema, "device_tokens")
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM `+tokens+` WHERE id = $1 AND user_id = $2`,
		tokenID, userID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func pgIdent(schema, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}
