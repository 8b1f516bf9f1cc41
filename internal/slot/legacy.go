package slot

import (
	"github.com/cleantownship/cleantown-service/internal/domain"
)

// LegacyReporter is a reporters slot entry as the client writes it.
type LegacyReporter struct {
	Password string `json:"password" yaml:"password"`
	Name     string `json:"name" yaml:"name"`
	Phone    string `json:"phone" yaml:"phone"`
}

// LegacyImage mirrors the picker result the client stores with an issue.
type LegacyImage struct {
	Raw *LegacyImageRaw `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// LegacyImageRaw carries the local image location.
type LegacyImageRaw struct {
	URI string `json:"uri" yaml:"uri"`
}

// LegacyIssue is one issues slot entry.
type LegacyIssue struct {
	Address  string       `json:"address" yaml:"address"`
	Desc     string       `json:"desc" yaml:"desc"`
	Image    *LegacyImage `json:"image,omitempty" yaml:"image,omitempty"`
	Datetime string       `json:"datetime" yaml:"datetime"`
	Coords   string       `json:"coords" yaml:"coords"`
}

// ToDomain converts the entry into an issue owned by owner. ID is left empty.
func (l LegacyIssue) ToDomain(owner string) domain.Issue {
	issue := domain.Issue{
		Owner:    owner,
		Address:  l.Address,
		Desc:     l.Desc,
		Datetime: l.Datetime,
		Coords:   l.Coords,
	}
	if l.Image != nil && l.Image.Raw != nil && l.Image.Raw.URI != "" {
		issue.Image = &domain.IssueImage{URI: l.Image.Raw.URI}
	}
	return issue
}

// LegacyIssueFromDomain converts an issue back into the client's shape.
func LegacyIssueFromDomain(issue domain.Issue) LegacyIssue {
	legacy := LegacyIssue{
		Address:  issue.Address,
		Desc:     issue.Desc,
		Datetime: issue.Datetime,
		Coords:   issue.Coords,
	}
	if issue.Image != nil {
		legacy.Image = &LegacyImage{Raw: &LegacyImageRaw{URI: issue.Image.URI}}
	}
	return legacy
}
