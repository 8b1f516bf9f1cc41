package dto

import (
	"errors"
	"time"

	"github.com/cleantownship/cleantown-service/internal/domain"
	"github.com/cleantownship/cleantown-service/internal/repository"
	"github.com/cleantownship/cleantown-service/internal/service"
)

// CreateIssueRequest payload.
type CreateIssueRequest struct {
	Address  string `json:"address"`
	Desc     string `json:"desc"`
	ImageURI string `json:"image_uri"`
	Datetime string `json:"datetime"`
	Coords   string `json:"coords"`
}

// IssueResponse is one ticket.
type IssueResponse struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Address   string    `json:"address"`
	Desc      string    `json:"desc"`
	ImageURI  string    `json:"image_uri,omitempty"`
	Datetime  string    `json:"datetime"`
	Coords    string    `json:"coords"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketEntryResponse is a numbered ticket on the dashboard.
type TicketEntryResponse struct {
	Label string        `json:"label"`
	Issue IssueResponse `json:"issue"`
}

// OwnerGroupResponse is one owner's section of the admin dashboard.
type OwnerGroupResponse struct {
	Email     string                `json:"email"`
	Name      string                `json:"name"`
	NameError string                `json:"name_error,omitempty"`
	Tickets   []TicketEntryResponse `json:"tickets"`
}

// DashboardResponse is the rendered dashboard.
type DashboardResponse struct {
	Variant      service.DashboardVariant `json:"variant"`
	Title        string                   `json:"title,omitempty"`
	EmptyMessage string                   `json:"empty_message,omitempty"`
	OwnerCount   int                      `json:"owner_count"`
	TicketCount  int                      `json:"ticket_count"`
	Groups       []OwnerGroupResponse     `json:"groups,omitempty"`
	Tickets      []TicketEntryResponse    `json:"tickets,omitempty"`
}

// NewIssueResponse maps an issue for output.
func NewIssueResponse(issue domain.Issue) IssueResponse {
	resp := IssueResponse{
		ID:        issue.ID,
		Owner:     issue.Owner,
		Address:   issue.Address,
		Desc:      issue.Desc,
		Datetime:  issue.Datetime,
		Coords:    issue.Coords,
		CreatedAt: issue.CreatedAt,
	}
	if issue.Image != nil {
		resp.ImageURI = issue.Image.URI
	}
	return resp
}

// NewDashboardResponse maps a dashboard view for output.
func NewDashboardResponse(view service.DashboardView) DashboardResponse {
	resp := DashboardResponse{
		Variant:      view.Variant,
		Title:        view.Title,
		EmptyMessage: view.EmptyMessage,
		OwnerCount:   view.OwnerCount,
		TicketCount:  view.TicketCount,
		Tickets:      ticketEntries(view.Tickets),
	}
	for _, g := range view.Groups {
		group := OwnerGroupResponse{Email: g.Email, Name: g.Name, Tickets: ticketEntries(g.Tickets)}
		switch {
		case errors.Is(g.NameError, repository.ErrNotFound):
			group.NameError = "reporter not registered"
		case g.NameError != nil:
			group.NameError = "name lookup failed"
		}
		resp.Groups = append(resp.Groups, group)
	}
	return resp
}

func ticketEntries(entries []service.TicketEntry) []TicketEntryResponse {
	if len(entries) == 0 {
		return nil
	}
	out := make([]TicketEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = TicketEntryResponse{Label: e.Label, Issue: NewIssueResponse(e.Issue)}
	}
	return out
}
