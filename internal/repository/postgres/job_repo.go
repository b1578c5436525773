package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Harsh-BH/dispatch/internal/domain"
	"github.com/Harsh-BH/dispatch/internal/repository"
)

// Ensure pgJobRepo implements repository.JobRepository.
var _ repository.JobRepository = (*pgJobRepo)(nil)

const jobColumns = `id, title, description, lat, lng, when_token, price, status,
	       COALESCE(assigned_contact_key, ''), COALESCE(requested_by, ''), created_at, accepted_at`

type pgJobRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresJobRepository creates a new PostgreSQL-backed job repository.
func NewPostgresJobRepository(pool *pgxpool.Pool) repository.JobRepository {
	return &pgJobRepo{pool: pool}
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	job := &domain.Job{}
	err := row.Scan(
		&job.ID, &job.Title, &job.Description, &job.Lat, &job.Lng,
		&job.When, &job.Price, &job.Status,
		&job.AssignedContactKey, &job.RequestedBy, &job.CreatedAt, &job.AcceptedAt,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *pgJobRepo) Create(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO dispatch_jobs (id, title, description, lat, lng, when_token, price, status, requested_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10)`

	_, err := r.pool.Exec(ctx, query,
		job.ID, job.Title, job.Description, job.Lat, job.Lng,
		job.When, job.Price, job.Status, job.RequestedBy, job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create job: %w", err)
	}
	return nil
}

func (r *pgJobRepo) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM dispatch_jobs WHERE id = $1`

	job, err := scanJob(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get job by id: %w", err)
	}
	return job, nil
}

func (r *pgJobRepo) List(ctx context.Context) ([]*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM dispatch_jobs ORDER BY seq DESC`
	return r.query(ctx, query)
}

func (r *pgJobRepo) ListAssignedTo(ctx context.Context, contactKey string) ([]*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM dispatch_jobs WHERE assigned_contact_key = $1 ORDER BY seq DESC`
	return r.query(ctx, query, contactKey)
}

// Assign relies on the row lock taken by the conditional UPDATE: of several
// concurrent statements only the first sees assigned_contact_key IS NULL.
func (r *pgJobRepo) Assign(ctx context.Context, id, contactKey string, at time.Time) (*domain.Job, error) {
	query := `
		UPDATE dispatch_jobs
		SET assigned_contact_key = $2, status = $3, accepted_at = $4
		WHERE id = $1 AND assigned_contact_key IS NULL AND status = $5
		RETURNING ` + jobColumns

	job, err := scanJob(r.pool.QueryRow(ctx, query, id, contactKey, domain.JobAccepted, at, domain.JobRequested))
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("postgres: assign job: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM dispatch_jobs WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("postgres: check job: %w", err)
	}
	if !exists {
		return nil, domain.ErrJobNotFound
	}
	return nil, domain.ErrAlreadyAssigned
}

func (r *pgJobRepo) query(ctx context.Context, query string, args ...any) ([]*domain.Job, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*domain.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list jobs: %w", err)
	}
	return jobs, nil
}
