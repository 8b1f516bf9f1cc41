package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cleantownship/cleantown-service/internal/domain"
)

// Compile-time checks that the memory stores satisfy the repository contracts.
var (
	_ ReporterRepository = (*MemoryReporterRepository)(nil)
	_ IssueRepository    = (*MemoryIssueRepository)(nil)
)

// MemoryReporterRepository keeps reporters in process memory.
type MemoryReporterRepository struct {
	mu        sync.RWMutex
	reporters map[string]domain.Reporter
	now       func() time.Time
}

// NewMemoryReporterRepository returns an empty in-memory reporter store.
func NewMemoryReporterRepository() *MemoryReporterRepository {
	return &MemoryReporterRepository{
		reporters: make(map[string]domain.Reporter),
		now:       time.Now,
	}
}

func (r *MemoryReporterRepository) Create(ctx context.Context, reporter *domain.Reporter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reporters[reporter.Email]; exists {
		return ErrAlreadyExists
	}
	reporter.CreatedAt = r.now().UTC()
	r.reporters[reporter.Email] = *reporter
	return nil
}

func (r *MemoryReporterRepository) Upsert(ctx context.Context, reporter *domain.Reporter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.reporters[reporter.Email]; exists {
		reporter.CreatedAt = existing.CreatedAt
	} else {
		reporter.CreatedAt = r.now().UTC()
	}
	r.reporters[reporter.Email] = *reporter
	return nil
}

func (r *MemoryReporterRepository) GetByEmail(ctx context.Context, email string) (*domain.Reporter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	reporter, ok := r.reporters[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &reporter, nil
}

func (r *MemoryReporterRepository) List(ctx context.Context) ([]domain.Reporter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Reporter, 0, len(r.reporters))
	for _, reporter := range r.reporters {
		result = append(result, reporter)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	return result, nil
}

// Ping always succeeds.
func (r *MemoryReporterRepository) Ping(context.Context) error {
	return nil
}

// MemoryIssueRepository keeps issue lists in process memory.
type MemoryIssueRepository struct {
	mu     sync.RWMutex
	issues map[string][]domain.Issue
	now    func() time.Time
}

// NewMemoryIssueRepository returns an empty in-memory issue store.
func NewMemoryIssueRepository() *MemoryIssueRepository {
	return &MemoryIssueRepository{
		issues: make(map[string][]domain.Issue),
		now:    time.Now,
	}
}

func (r *MemoryIssueRepository) Append(ctx context.Context, issue *domain.Issue) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	issue.CreatedAt = r.now().UTC()
	r.issues[issue.Owner] = append(r.issues[issue.Owner], cloneIssue(*issue))
	return nil
}

func (r *MemoryIssueRepository) ListByOwner(ctx context.Context, owner string) ([]domain.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	return cloneIssues(r.issues[owner]), nil
}

func (r *MemoryIssueRepository) ListAll(ctx context.Context) (map[string][]domain.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string][]domain.Issue, len(r.issues))
	for owner, issues := range r.issues {
		if len(issues) == 0 {
			continue
		}
		result[owner] = cloneIssues(issues)
	}
	return result, nil
}

func cloneIssues(issues []domain.Issue) []domain.Issue {
	if len(issues) == 0 {
		return nil
	}
	out := make([]domain.Issue, len(issues))
	for i, issue := range issues {
		out[i] = cloneIssue(issue)
	}
	return out
}

func cloneIssue(issue domain.Issue) domain.Issue {
	if issue.Image != nil {
		img := *issue.Image
		issue.Image = &img
	}
	return issue
}
