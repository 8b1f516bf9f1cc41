package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cleantownship/cleantown-service/internal/auth"
	"github.com/cleantownship/cleantown-service/internal/domain"
	"github.com/cleantownship/cleantown-service/internal/repository"
	"github.com/cleantownship/cleantown-service/internal/slot"
)

// ImportReport summarizes a legacy slot import.
type ImportReport struct {
	Reporters        int
	SkippedReporters []string
	Issues           int
	// SkippedOwners already had issues in the keyed store; their slot list was not appended.
	SkippedOwners []string
}

// Snapshot is the keyed store rendered in the client's slot layout.
type Snapshot struct {
	Reporters map[string]slot.LegacyReporter `json:"reporters" yaml:"reporters"`
	Issues    map[string][]slot.LegacyIssue  `json:"issues" yaml:"issues"`
}

// LegacyService moves data between client slots and the keyed store.
type LegacyService struct {
	reporters  repository.ReporterRepository
	issues     repository.IssueRepository
	logger     *zap.Logger
	bcryptCost int
}

// NewLegacyService constructs the service.
func NewLegacyService(reporters repository.ReporterRepository, issues repository.IssueRepository, logger *zap.Logger, bcryptCost int) *LegacyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LegacyService{reporters: reporters, issues: issues, logger: logger, bcryptCost: bcryptCost}
}

// Import copies the reporters and issues slots into the keyed store. Either
// slot may be nil. Reporters already present are kept and reported as skipped,
// as are owners whose issue list is not empty, so a re-run adds nothing.
// Plaintext passwords are hashed on the way in.
func (s *LegacyService) Import(ctx context.Context, reportersSlot, issuesSlot *slot.Slot) (ImportReport, error) {
	var report ImportReport

	if reportersSlot != nil {
		mapping, err := reportersSlot.Load()
		if err != nil {
			return report, err
		}
		for _, email := range sortedKeys(mapping) {
			var legacy slot.LegacyReporter
			if err := json.Unmarshal(mapping[email], &legacy); err != nil {
				return report, fmt.Errorf("decode reporter %s: %w", email, err)
			}
			password, err := s.hashLegacyPassword(legacy.Password)
			if err != nil {
				return report, fmt.Errorf("hash password for %s: %w", email, err)
			}
			reporter := &domain.Reporter{
				Email:    email,
				Password: password,
				Name:     legacy.Name,
				Phone:    legacy.Phone,
				Role:     domain.RoleReporter,
			}
			if err := s.reporters.Create(ctx, reporter); err != nil {
				if errors.Is(err, repository.ErrAlreadyExists) {
					report.SkippedReporters = append(report.SkippedReporters, email)
					continue
				}
				return report, err
			}
			report.Reporters++
		}
	}

	if issuesSlot != nil {
		mapping, err := issuesSlot.Load()
		if err != nil {
			return report, err
		}
		for _, owner := range sortedKeys(mapping) {
			existing, err := s.issues.ListByOwner(ctx, owner)
			if err != nil {
				return report, err
			}
			if len(existing) > 0 {
				report.SkippedOwners = append(report.SkippedOwners, owner)
				continue
			}
			var legacy []slot.LegacyIssue
			if err := json.Unmarshal(mapping[owner], &legacy); err != nil {
				return report, fmt.Errorf("decode issues for %s: %w", owner, err)
			}
			for _, entry := range legacy {
				issue := entry.ToDomain(owner)
				issue.ID = ulid.Make().String()
				if err := s.issues.Append(ctx, &issue); err != nil {
					return report, err
				}
				report.Issues++
			}
		}
	}

	s.logger.Info("legacy import finished",
		zap.Int("reporters", report.Reporters),
		zap.Int("skipped_reporters", len(report.SkippedReporters)),
		zap.Int("issues", report.Issues),
		zap.Int("skipped_owners", len(report.SkippedOwners)))
	return report, nil
}

// Export renders the keyed store in the client's slot layout. Password
// hashes are exported as stored.
func (s *LegacyService) Export(ctx context.Context) (Snapshot, error) {
	reporters, err := s.reporters.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	byOwner, err := s.issues.ListAll(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Reporters: make(map[string]slot.LegacyReporter, len(reporters)),
		Issues:    make(map[string][]slot.LegacyIssue, len(byOwner)),
	}
	for _, r := range reporters {
		snap.Reporters[r.Email] = slot.LegacyReporter{Password: r.Password, Name: r.Name, Phone: r.Phone}
	}
	for owner, issues := range byOwner {
		legacy := make([]slot.LegacyIssue, 0, len(issues))
		for _, issue := range issues {
			legacy = append(legacy, slot.LegacyIssueFromDomain(issue))
		}
		snap.Issues[owner] = legacy
	}
	return snap, nil
}

func (s *LegacyService) hashLegacyPassword(password string) (string, error) {
	if strings.HasPrefix(password, "$2") {
		if _, err := bcrypt.Cost([]byte(password)); err == nil {
			return password, nil
		}
	}
	return auth.HashPassword(password, s.bcryptCost)
}

func sortedKeys(mapping map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(mapping))
	for key := range mapping {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
