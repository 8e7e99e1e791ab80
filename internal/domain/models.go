package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Candidate is an author or tag eligible for selection, identified by a
// unique slug. Candidates are re-fetched from the backend on every load or
// search; only the selection lists persist.
type Candidate struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Slugs returns the slug of every candidate, preserving order.
func Slugs(candidates []Candidate) []string {
	slugs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		slugs = append(slugs, c.Slug)
	}
	return slugs
}

// Styles holds the card colors as free-form color values.
type Styles struct {
	BgColor   string `json:"bg_color"`
	TextColor string `json:"text_color"`
}

// SelectionKind identifies which selection list an event refers to.
type SelectionKind string

const (
	SelectionAuthors SelectionKind = "authors"
	SelectionTags    SelectionKind = "tags"
)

// CardConfig is the full configuration of one Quotable card: the target
// entity, both selection lists, the update interval and the colors. It is
// round-tripped to and from the backend entity's stored attributes.
type CardConfig struct {
	EntityID        string
	SelectedAuthors []Candidate
	SelectedTags    []Candidate
	UpdateMinutes   string
	Styles          Styles
}

// UpdateFrequencySeconds converts the interval control value to the seconds
// the backend expects. Non-numeric input yields 0 rather than an error.
func (c CardConfig) UpdateFrequencySeconds() int {
	minutes, err := strconv.Atoi(strings.TrimSpace(c.UpdateMinutes))
	if err != nil {
		return 0
	}
	return minutes * 60
}

// Quote is one quote produced by the backend, kept for the preview line and
// the history pager.
type Quote struct {
	Content   string
	Author    string
	FetchedAt time.Time
}

// EntityState is a snapshot of one entity from the Home Assistant state
// store. Attributes stay raw until a caller knows their shape.
type EntityState struct {
	EntityID   string          `json:"entity_id"`
	State      string          `json:"state"`
	Attributes json.RawMessage `json:"attributes"`
}
