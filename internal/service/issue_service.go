package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/cleantownship/cleantown-service/internal/domain"
	"github.com/cleantownship/cleantown-service/internal/events"
	"github.com/cleantownship/cleantown-service/internal/repository"
)

// IssueDatetimeLayout is used when the client omits the report time.
const IssueDatetimeLayout = "2006-01-02 15:04"

// IssueInput is the issue-submission form.
type IssueInput struct {
	Address  string
	Desc     string
	ImageURI string
	Datetime string
	Coords   string
}

// IssueService handles ticket submission and the owner's own listing.
type IssueService struct {
	issues     repository.IssueRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewIssueService constructs the service.
func NewIssueService(issues repository.IssueRepository, dispatcher events.Dispatcher, logger *zap.Logger) *IssueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueService{issues: issues, dispatcher: dispatcher, logger: logger, now: time.Now}
}

// Submit files a new issue owned by the session's email.
func (s *IssueService) Submit(ctx context.Context, sess domain.Session, input IssueInput) (*domain.Issue, error) {
	errs := fieldErrors{}
	if strings.TrimSpace(input.Address) == "" {
		errs.add("address", "Address is required")
	}
	if strings.TrimSpace(input.Desc) == "" {
		errs.add("desc", "Description is required")
	}
	if err := errs.err("invalid issue form"); err != nil {
		return nil, err
	}

	issue := &domain.Issue{
		ID:       ulid.Make().String(),
		Owner:    sess.Email,
		Address:  strings.TrimSpace(input.Address),
		Desc:     strings.TrimSpace(input.Desc),
		Datetime: strings.TrimSpace(input.Datetime),
		Coords:   strings.TrimSpace(input.Coords),
	}
	if issue.Datetime == "" {
		issue.Datetime = s.now().Format(IssueDatetimeLayout)
	}
	if uri := strings.TrimSpace(input.ImageURI); uri != "" {
		issue.Image = &domain.IssueImage{URI: uri}
	}

	if err := s.issues.Append(ctx, issue); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		err := s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventIssueSubmitted,
			Email:     issue.Owner,
			Timestamp: s.now().UTC(),
			Payload: events.IssueSubmittedPayload{
				IssueID:  issue.ID,
				Address:  issue.Address,
				Coords:   issue.Coords,
				HasImage: issue.Image != nil,
			},
		})
		if err != nil {
			s.logger.Warn("event handler failed", zap.String("issue_id", issue.ID), zap.Error(err))
		}
	}
	return issue, nil
}

// ListOwn returns the session owner's issues in submission order.
func (s *IssueService) ListOwn(ctx context.Context, sess domain.Session) ([]domain.Issue, error) {
	return s.issues.ListByOwner(ctx, sess.Email)
}
