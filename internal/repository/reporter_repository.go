package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cleantownship/cleantown-service/internal/domain"
)

// ReporterRepository defines keyed persistence for reporter accounts.
// Every method is atomic for its key.
type ReporterRepository interface {
	// Create inserts the reporter if the email is free, ErrAlreadyExists otherwise.
	Create(ctx context.Context, reporter *domain.Reporter) error
	// Upsert writes the reporter whether or not the email exists.
	Upsert(ctx context.Context, reporter *domain.Reporter) error
	// GetByEmail returns ErrNotFound when absent and a storage error on failure.
	GetByEmail(ctx context.Context, email string) (*domain.Reporter, error)
	// List returns every reporter ordered by email.
	List(ctx context.Context) ([]domain.Reporter, error)
}

type reporterRepository struct {
	pool *pgxpool.Pool
}

// NewReporterRepository returns a Postgres-backed implementation.
func NewReporterRepository(pool *pgxpool.Pool) ReporterRepository {
	return &reporterRepository{pool: pool}
}

func (r *reporterRepository) Create(ctx context.Context, reporter *domain.Reporter) error {
	const query = `
        INSERT INTO reporters (email, password_hash, name, phone, role)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (email) DO NOTHING
        RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		reporter.Email,
		reporter.Password,
		reporter.Name,
		reporter.Phone,
		reporter.Role,
	).Scan(&reporter.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert reporter: %w", err)
	}
	return nil
}

func (r *reporterRepository) Upsert(ctx context.Context, reporter *domain.Reporter) error {
	const query = `
        INSERT INTO reporters (email, password_hash, name, phone, role)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (email) DO UPDATE
            SET password_hash=EXCLUDED.password_hash, name=EXCLUDED.name,
                phone=EXCLUDED.phone, role=EXCLUDED.role
        RETURNING created_at`

	if err := r.pool.QueryRow(ctx, query,
		reporter.Email,
		reporter.Password,
		reporter.Name,
		reporter.Phone,
		reporter.Role,
	).Scan(&reporter.CreatedAt); err != nil {
		return fmt.Errorf("upsert reporter: %w", err)
	}
	return nil
}

func (r *reporterRepository) GetByEmail(ctx context.Context, email string) (*domain.Reporter, error) {
	const query = `
        SELECT email, password_hash, name, phone, role, created_at
        FROM reporters WHERE email=$1`

	var reporter domain.Reporter
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&reporter.Email,
		&reporter.Password,
		&reporter.Name,
		&reporter.Phone,
		&reporter.Role,
		&reporter.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select reporter: %w", err)
	}
	return &reporter, nil
}

func (r *reporterRepository) List(ctx context.Context) ([]domain.Reporter, error) {
	const query = `
        SELECT email, password_hash, name, phone, role, created_at
        FROM reporters ORDER BY email`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list reporters: %w", err)
	}
	defer rows.Close()

	var result []domain.Reporter
	for rows.Next() {
		var reporter domain.Reporter
		if err := rows.Scan(
			&reporter.Email,
			&reporter.Password,
			&reporter.Name,
			&reporter.Phone,
			&reporter.Role,
			&reporter.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, reporter)
	}
	return result, rows.Err()
}
