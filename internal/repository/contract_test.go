package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cleantownship/cleantown-service/internal/domain"
)

// runReporterContract checks behavior every ReporterRepository backend must share.
func runReporterContract(t *testing.T, newRepo func(t *testing.T) ReporterRepository) {
	t.Run("round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		in := &domain.Reporter{Email: "a@x.com", Password: "p1", Name: "Asha", Phone: "555", Role: domain.RoleReporter}
		if err := repo.Create(ctx, in); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		got, err := repo.GetByEmail(ctx, "a@x.com")
		if err != nil {
			t.Fatalf("GetByEmail failed: %v", err)
		}
		if got.Password != "p1" || got.Name != "Asha" || got.Phone != "555" || got.Role != domain.RoleReporter {
			t.Errorf("unexpected reporter: %+v", got)
		}
		if got.CreatedAt.IsZero() {
			t.Error("CreatedAt should be set")
		}

		if _, err := repo.GetByEmail(ctx, "b@x.com"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for missing key, got %v", err)
		}
	})

	t.Run("email keys are case sensitive", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		if err := repo.Create(ctx, &domain.Reporter{Email: "Case@x.com", Role: domain.RoleReporter}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if _, err := repo.GetByEmail(ctx, "case@x.com"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for differently cased key, got %v", err)
		}
	})

	t.Run("duplicate create keeps original", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		if err := repo.Create(ctx, &domain.Reporter{Email: "dup@x.com", Password: "first", Name: "First", Role: domain.RoleReporter}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		err := repo.Create(ctx, &domain.Reporter{Email: "dup@x.com", Password: "second", Name: "Second", Role: domain.RoleAdmin})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}

		got, err := repo.GetByEmail(ctx, "dup@x.com")
		if err != nil {
			t.Fatalf("GetByEmail failed: %v", err)
		}
		if got.Password != "first" || got.Name != "First" || got.Role != domain.RoleReporter {
			t.Errorf("existing record was mutated: %+v", got)
		}
	})

	t.Run("concurrent creates admit exactly one", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		const writers = 16
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created int
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := repo.Create(ctx, &domain.Reporter{Email: "race@x.com", Role: domain.RoleReporter})
				if err == nil {
					mu.Lock()
					created++
					mu.Unlock()
				} else if !errors.Is(err, ErrAlreadyExists) {
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		if created != 1 {
			t.Errorf("expected exactly one successful create, got %d", created)
		}
	})

	t.Run("upsert overwrites", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		if err := repo.Upsert(ctx, &domain.Reporter{Email: "up@x.com", Name: "Old", Role: domain.RoleReporter}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		if err := repo.Upsert(ctx, &domain.Reporter{Email: "up@x.com", Name: "New", Role: domain.RoleAdmin}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		got, err := repo.GetByEmail(ctx, "up@x.com")
		if err != nil {
			t.Fatalf("GetByEmail failed: %v", err)
		}
		if got.Name != "New" || got.Role != domain.RoleAdmin {
			t.Errorf("unexpected reporter after upsert: %+v", got)
		}

		all, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(all) != 1 {
			t.Errorf("expected 1 reporter, got %d", len(all))
		}
	})
}

// runIssueContract checks behavior every IssueRepository backend must share.
func runIssueContract(t *testing.T, newRepo func(t *testing.T) IssueRepository) {
	t.Run("append keeps order per owner", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, issue := range []*domain.Issue{
			{ID: "01", Owner: "a@x.com", Address: "Main St", Desc: "litter", Image: &domain.IssueImage{URI: "file:///1.jpg"}},
			{ID: "02", Owner: "b@x.com", Address: "Park Rd", Desc: "bins"},
			{ID: "03", Owner: "a@x.com", Address: "Hill Ave", Desc: "drain"},
		} {
			if err := repo.Append(ctx, issue); err != nil {
				t.Fatalf("Append failed: %v", err)
			}
		}

		mine, err := repo.ListByOwner(ctx, "a@x.com")
		if err != nil {
			t.Fatalf("ListByOwner failed: %v", err)
		}
		if len(mine) != 2 || mine[0].ID != "01" || mine[1].ID != "03" {
			t.Fatalf("unexpected issues for a@x.com: %+v", mine)
		}
		if mine[0].Image == nil || mine[0].Image.URI != "file:///1.jpg" {
			t.Errorf("image not preserved: %+v", mine[0].Image)
		}
		if mine[1].Image != nil {
			t.Errorf("expected no image, got %+v", mine[1].Image)
		}

		all, err := repo.ListAll(ctx)
		if err != nil {
			t.Fatalf("ListAll failed: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("expected 2 owners, got %d", len(all))
		}
		if len(all["b@x.com"]) != 1 {
			t.Errorf("expected 1 issue for b@x.com, got %d", len(all["b@x.com"]))
		}
	})

	t.Run("empty store", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		all, err := repo.ListAll(ctx)
		if err != nil {
			t.Fatalf("ListAll failed: %v", err)
		}
		if len(all) != 0 {
			t.Errorf("expected no owners, got %d", len(all))
		}
		mine, err := repo.ListByOwner(ctx, "nobody@x.com")
		if err != nil {
			t.Fatalf("ListByOwner failed: %v", err)
		}
		if len(mine) != 0 {
			t.Errorf("expected no issues, got %d", len(mine))
		}
	})

	t.Run("concurrent appends are not lost", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		const writers = 20
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				issue := &domain.Issue{ID: string(rune('a' + i)), Owner: "busy@x.com", Address: "x", Desc: "y"}
				if err := repo.Append(ctx, issue); err != nil {
					t.Errorf("Append failed: %v", err)
				}
			}(i)
		}
		wg.Wait()

		mine, err := repo.ListByOwner(ctx, "busy@x.com")
		if err != nil {
			t.Fatalf("ListByOwner failed: %v", err)
		}
		if len(mine) != writers {
			t.Errorf("expected %d issues, got %d", writers, len(mine))
		}
	})
}
