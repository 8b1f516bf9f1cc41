package domain

import "time"

// IssueImage references a photo attached by the client.
type IssueImage struct {
	URI string `json:"uri"`
}

// Issue is a cleanliness ticket submitted by its owner.
type Issue struct {
	ID        string      `json:"id"`
	Owner     string      `json:"owner"`
	Address   string      `json:"address"`
	Desc      string      `json:"desc"`
	Image     *IssueImage `json:"image,omitempty"`
	Datetime  string      `json:"datetime"`
	Coords    string      `json:"coords"`
	CreatedAt time.Time   `json:"created_at"`
}
