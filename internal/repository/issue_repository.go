package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cleantownship/cleantown-service/internal/domain"
)

// IssueRepository stores issue lists keyed by owner email.
type IssueRepository interface {
	// Append adds the issue to the end of its owner's list.
	Append(ctx context.Context, issue *domain.Issue) error
	ListByOwner(ctx context.Context, owner string) ([]domain.Issue, error)
	// ListAll returns every owner's list. Owners without issues are absent.
	ListAll(ctx context.Context) (map[string][]domain.Issue, error)
}

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository instantiates a Postgres-backed repository.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

func (r *issueRepository) Append(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (id, owner_email, address, description, image_uri, datetime, coords)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at`

	var imageURI *string
	if issue.Image != nil {
		imageURI = &issue.Image.URI
	}
	if err := r.pool.QueryRow(ctx, query,
		issue.ID,
		issue.Owner,
		issue.Address,
		issue.Desc,
		imageURI,
		issue.Datetime,
		issue.Coords,
	).Scan(&issue.CreatedAt); err != nil {
		return fmt.Errorf("insert issue: %w", err)
	}
	return nil
}

func (r *issueRepository) ListByOwner(ctx context.Context, owner string) ([]domain.Issue, error) {
	const query = `
        SELECT id, owner_email, address, description, image_uri, datetime, coords, created_at
        FROM issues WHERE owner_email=$1
        ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("list issues by owner: %w", err)
	}
	defer rows.Close()
	return scanIssues(rows)
}

func (r *issueRepository) ListAll(ctx context.Context) (map[string][]domain.Issue, error) {
	const query = `
        SELECT id, owner_email, address, description, image_uri, datetime, coords, created_at
        FROM issues
        ORDER BY owner_email, created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()

	issues, err := scanIssues(rows)
	if err != nil {
		return nil, err
	}
	byOwner := make(map[string][]domain.Issue)
	for _, issue := range issues {
		byOwner[issue.Owner] = append(byOwner[issue.Owner], issue)
	}
	return byOwner, nil
}

func scanIssues(rows pgx.Rows) ([]domain.Issue, error) {
	var result []domain.Issue
	for rows.Next() {
		var (
			issue    domain.Issue
			imageURI *string
		)
		if err := rows.Scan(
			&issue.ID,
			&issue.Owner,
			&issue.Address,
			&issue.Desc,
			&imageURI,
			&issue.Datetime,
			&issue.Coords,
			&issue.CreatedAt,
		); err != nil {
			return nil, err
		}
		if imageURI != nil {
			issue.Image = &domain.IssueImage{URI: *imageURI}
		}
		result = append(result, issue)
	}
	return result, rows.Err()
}
