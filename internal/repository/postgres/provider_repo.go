package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Harsh-BH/dispatch/internal/domain"
	"github.com/Harsh-BH/dispatch/internal/repository"
)

var _ repository.ProviderRepository = (*pgProviderRepo)(nil)

const providerColumns = `id, contact_key, name, skills, lat, lng, online, created_at`

type pgProviderRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresProviderRepository creates a new PostgreSQL-backed provider repository.
func NewPostgresProviderRepository(pool *pgxpool.Pool) repository.ProviderRepository {
	return &pgProviderRepo{pool: pool}
}

func scanProvider(row pgx.Row) (*domain.Provider, error) {
	p := &domain.Provider{}
	if err := row.Scan(&p.ID, &p.ContactKey, &p.Name, &p.Skills, &p.Lat, &p.Lng, &p.Online, &p.CreatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgProviderRepo) Upsert(ctx context.Context, p *domain.Provider) error {
	query := `
		INSERT INTO dispatch_providers (` + providerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (contact_key) DO UPDATE
		SET id = EXCLUDED.id, name = EXCLUDED.name, skills = EXCLUDED.skills,
		    lat = EXCLUDED.lat, lng = EXCLUDED.lng, online = EXCLUDED.online,
		    created_at = EXCLUDED.created_at`

	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	_, err := r.pool.Exec(ctx, query, p.ID, p.ContactKey, p.Name, skills, p.Lat, p.Lng, p.Online, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: upsert provider: %w", err)
	}
	return nil
}

func (r *pgProviderRepo) Update(ctx context.Context, contactKey string, upd domain.ProviderStatusUpdate) (*domain.Provider, error) {
	query := `
		UPDATE dispatch_providers
		SET online = COALESCE($2, online), lat = COALESCE($3, lat), lng = COALESCE($4, lng)
		WHERE contact_key = $1
		RETURNING ` + providerColumns

	p, err := scanProvider(r.pool.QueryRow(ctx, query, contactKey, upd.Online, upd.Lat, upd.Lng))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotRegistered
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: update provider: %w", err)
	}
	return p, nil
}

func (r *pgProviderRepo) Get(ctx context.Context, contactKey string) (*domain.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM dispatch_providers WHERE contact_key = $1`

	p, err := scanProvider(r.pool.QueryRow(ctx, query, contactKey))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotRegistered
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get provider: %w", err)
	}
	return p, nil
}

func (r *pgProviderRepo) CountOnline(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM dispatch_providers WHERE online`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count online: %w", err)
	}
	return n, nil
}
