package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores one row per session in cart_blobs. Session keys must be
// uuids, matching the guest session ids issued by the storefront.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Read(c context.Context, key string) ([]byte, error) {
	sessionID, err := uuid.Parse(key)
	if err != nil {
		return nil, fmt.Errorf("failed parsing cart key=%s with error=%w", key, err)
	}
	var blob []byte
	err = p.pool.
		QueryRow(c, "SELECT blob FROM cart_blobs WHERE session_id = $1", sessionID).
		Scan(&blob)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed reading cart blob from postgres with error=%w", err)
	}
	return blob, nil
}

func (p *Postgres) Write(c context.Context, key string, blob []byte) error {
	sessionID, err := uuid.Parse(key)
	if err != nil {
		return fmt.Errorf("failed parsing cart key=%s with error=%w", key, err)
	}
	_, err = p.pool.Exec(
		c,
		`INSERT INTO cart_blobs (session_id, blob, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (session_id) DO UPDATE SET blob = $2, updated_at = now()`,
		sessionID,
		blob,
	)
	if err != nil {
		return fmt.Errorf("failed writing cart blob to postgres with error=%w", err)
	}
	return nil
}

func (p *Postgres) Delete(c context.Context, key string) error {
	sessionID, err := uuid.Parse(key)
	if err != nil {
		return fmt.Errorf("failed parsing cart key=%s with error=%w", key, err)
	}
	_, err = p.pool.Exec(c, "DELETE FROM cart_blobs WHERE session_id = $1", sessionID)
	if err != nil {
		return fmt.Errorf("failed deleting cart blob from postgres with error=%w", err)
	}
	return nil
}
