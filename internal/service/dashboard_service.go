package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cleantownship/cleantown-service/internal/domain"
	"github.com/cleantownship/cleantown-service/internal/repository"
)

// UnknownOwnerName is shown when an owner's display name cannot be resolved.
const UnknownOwnerName = "Unknown User"

// DashboardVariant names the view the dashboard renders.
type DashboardVariant string

const (
	VariantAdminOwners     DashboardVariant = "admin_owners"
	VariantAdminEmpty      DashboardVariant = "admin_empty"
	VariantReporterTickets DashboardVariant = "reporter_tickets"
	VariantReporterEmpty   DashboardVariant = "reporter_empty"
)

// TicketEntry is one numbered ticket in a list.
type TicketEntry struct {
	Label string
	Issue domain.Issue
}

// OwnerGroup is one owner's tickets on the admin dashboard.
type OwnerGroup struct {
	Email     string
	Name      string
	NameError error
	Tickets   []TicketEntry
}

// DashboardView is the shaped dashboard for one session.
type DashboardView struct {
	Variant      DashboardVariant
	Title        string
	EmptyMessage string
	OwnerCount   int
	TicketCount  int
	Groups       []OwnerGroup
	Tickets      []TicketEntry
}

// NameResult is a resolved display name, or the placeholder and the reason.
type NameResult struct {
	Name string
	Err  error
}

// NameLookup fetches the reporter for an owner email.
type NameLookup func(ctx context.Context, email string) (*domain.Reporter, error)

// ResolveNames looks up every email with at most limit lookups in flight.
// Each email gets a result; a failed or missing lookup yields
// UnknownOwnerName with Err set. Cancelling ctx fails the remaining lookups.
func ResolveNames(ctx context.Context, lookup NameLookup, emails []string, limit int) map[string]NameResult {
	if limit <= 0 {
		limit = 1
	}
	results := make([]NameResult, len(emails))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, email := range emails {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = NameResult{Name: UnknownOwnerName, Err: err}
				return nil
			}
			reporter, err := lookup(ctx, email)
			switch {
			case err != nil:
				results[i] = NameResult{Name: UnknownOwnerName, Err: err}
			case reporter == nil:
				results[i] = NameResult{Name: UnknownOwnerName, Err: repository.ErrNotFound}
			case strings.TrimSpace(reporter.Name) == "":
				results[i] = NameResult{Name: UnknownOwnerName}
			default:
				results[i] = NameResult{Name: reporter.Name}
			}
			return nil
		})
	}
	_ = g.Wait()

	byEmail := make(map[string]NameResult, len(emails))
	for i, email := range emails {
		byEmail[email] = results[i]
	}
	return byEmail
}

// ShapeDashboard builds the view for sess from the owner-keyed ticket mapping.
// Admins see every owner; anyone else sees only byOwner[sess.Email].
func ShapeDashboard(sess domain.Session, byOwner map[string][]domain.Issue, names map[string]NameResult) DashboardView {
	if !sess.IsAdmin() {
		tickets := numberTickets(byOwner[sess.Email])
		if len(tickets) == 0 {
			return DashboardView{Variant: VariantReporterEmpty, EmptyMessage: "No tickets found"}
		}
		return DashboardView{
			Variant:     VariantReporterTickets,
			Title:       fmt.Sprintf("Total No of tickets - %d", len(tickets)),
			TicketCount: len(tickets),
			Tickets:     tickets,
		}
	}

	if len(byOwner) == 0 {
		return DashboardView{Variant: VariantAdminEmpty, EmptyMessage: "No users found"}
	}

	owners := sortedOwners(byOwner)
	view := DashboardView{
		Variant:    VariantAdminOwners,
		Title:      fmt.Sprintf("Total No of users - %d", len(owners)),
		OwnerCount: len(owners),
		Groups:     make([]OwnerGroup, 0, len(owners)),
	}
	for _, owner := range owners {
		name, ok := names[owner]
		if !ok {
			name = NameResult{Name: UnknownOwnerName}
		}
		tickets := numberTickets(byOwner[owner])
		view.TicketCount += len(tickets)
		view.Groups = append(view.Groups, OwnerGroup{
			Email:     owner,
			Name:      name.Name,
			NameError: name.Err,
			Tickets:   tickets,
		})
	}
	return view
}

func sortedOwners(byOwner map[string][]domain.Issue) []string {
	owners := make([]string, 0, len(byOwner))
	for owner := range byOwner {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners
}

func numberTickets(issues []domain.Issue) []TicketEntry {
	if len(issues) == 0 {
		return nil
	}
	entries := make([]TicketEntry, len(issues))
	for i, issue := range issues {
		entries[i] = TicketEntry{Label: fmt.Sprintf("Ticket No # %d", i+1), Issue: issue}
	}
	return entries
}

// DashboardService loads tickets and shapes the dashboard per session.
type DashboardService struct {
	reporters   repository.ReporterRepository
	issues      repository.IssueRepository
	logger      *zap.Logger
	concurrency int
}

// NewDashboardService constructs the service. concurrency bounds the number
// of name lookups in flight.
func NewDashboardService(reporters repository.ReporterRepository, issues repository.IssueRepository, logger *zap.Logger, concurrency int) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{reporters: reporters, issues: issues, logger: logger, concurrency: concurrency}
}

// Build returns the dashboard for sess. A failed ticket load is returned as
// an error, never rendered as an empty dashboard.
func (s *DashboardService) Build(ctx context.Context, sess domain.Session) (DashboardView, error) {
	if !sess.IsAdmin() {
		own, err := s.issues.ListByOwner(ctx, sess.Email)
		if err != nil {
			return DashboardView{}, fmt.Errorf("load own issues: %w", err)
		}
		return ShapeDashboard(sess, map[string][]domain.Issue{sess.Email: own}, nil), nil
	}

	byOwner, err := s.issues.ListAll(ctx)
	if err != nil {
		return DashboardView{}, fmt.Errorf("load issues: %w", err)
	}
	names := ResolveNames(ctx, s.reporters.GetByEmail, sortedOwners(byOwner), s.concurrency)
	for email, result := range names {
		if result.Err != nil && !errors.Is(result.Err, repository.ErrNotFound) {
			s.logger.Warn("owner name lookup failed", zap.String("email", email), zap.Error(result.Err))
		}
	}
	return ShapeDashboard(sess, byOwner, names), nil
}
