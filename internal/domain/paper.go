// Package domain contains the core business entities for the paper-manager service.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status describes the reading progress of a paper.
type Status string

// The three reading states. A paper always has exactly one of these.
const (
	StatusUnread  Status = "UNREAD"
	StatusReading Status = "READING"
	StatusDone    Status = "DONE"
)

// Statuses lists the allowed status values in display order.
var Statuses = []Status{StatusUnread, StatusReading, StatusDone}

// ParseStatus converts user input into a Status.
// Input is trimmed and matched case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusUnread:
		return StatusUnread, nil
	case StatusReading:
		return StatusReading, nil
	case StatusDone:
		return StatusDone, nil
	default:
		return "", fmt.Errorf("status must be one of {UNREAD, READING, DONE}")
	}
}

// Field length limits, enforced at the API boundary.
const (
	MaxTitleLen   = 400
	MaxAuthorsLen = 800
	MaxURLLen     = 500
	MinPubYear    = 1900
	MaxPubYear    = 2100
)

// Paper is a tracked bibliographic record with reading status and tags.
type Paper struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Authors   string    `json:"authors,omitempty"`
	PubYear   *int      `json:"pub_year,omitempty"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Status    Status    `json:"status"`
	Tags      []string  `json:"tags"` // tag names, sorted ascending
}

// HasTag reports whether the paper carries the given (already normalized) tag name.
func (p *Paper) HasTag(name string) bool {
	for _, t := range p.Tags {
		if t == name {
			return true
		}
	}
	return false
}
