package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS dispatch_providers (
	contact_key TEXT PRIMARY KEY,
	id          TEXT NOT NULL,
	name        TEXT NOT NULL,
	skills      TEXT[] NOT NULL DEFAULT '{}',
	lat         DOUBLE PRECISION NOT NULL,
	lng         DOUBLE PRECISION NOT NULL,
	online      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS dispatch_jobs (
	seq                  BIGSERIAL UNIQUE,
	id                   TEXT PRIMARY KEY,
	title                TEXT NOT NULL,
	description          TEXT NOT NULL DEFAULT '',
	lat                  DOUBLE PRECISION NOT NULL,
	lng                  DOUBLE PRECISION NOT NULL,
	when_token           TEXT NOT NULL,
	price                BIGINT NOT NULL,
	status               TEXT NOT NULL,
	assigned_contact_key TEXT,
	requested_by         TEXT,
	created_at           TIMESTAMPTZ NOT NULL,
	accepted_at          TIMESTAMPTZ,
	CHECK ((assigned_contact_key IS NULL) = (status = 'Requested'))
);

CREATE INDEX IF NOT EXISTS dispatch_jobs_assignee_idx ON dispatch_jobs (assigned_contact_key);
`

// Migrate creates the dispatch tables when they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}
