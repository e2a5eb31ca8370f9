// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"
)

// SessionStatus tracks a recorded class session through review.
type SessionStatus string

const (
	SessionSubmitted   SessionStatus = "submitted"
	SessionUnderReview SessionStatus = "under_review"
	SessionReviewed    SessionStatus = "reviewed"
)

// ParseSessionStatus normalises a status reported by the session feed. The
// empty string parses to the empty status, meaning "not reported".
func ParseSessionStatus(s string) (SessionStatus, error) {
	key := strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.TrimSpace(s)))
	switch key {
	case "":
		return "", nil
	case "submitted", "enviado", "pendiente":
		return SessionSubmitted, nil
	case "underreview", "enrevision", "enrevisión":
		return SessionUnderReview, nil
	case "reviewed", "revisado", "evaluado":
		return SessionReviewed, nil
	}
	return "", fmt.Errorf("unknown session status %q", s)
}

// ResultsAvailable reports whether the session's result set may be
// consumed. Only a reviewed session carries final results; a session whose
// feed does not report a status is taken at face value.
func (s SessionStatus) ResultsAvailable() bool {
	return s == "" || s == SessionReviewed
}

// Session is a recorded class session as served by the session detail feed.
type Session struct {
	// ID is the session identifier used in the feed URL.
	ID string `json:"id" yaml:"id"`

	// Title is the class title.
	Title string `json:"title" yaml:"title"`

	// Summary is the narrative summary of the class (start, development, close).
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// Purpose states the session's learning purpose.
	Purpose string `json:"purpose,omitempty" yaml:"purpose,omitempty"`

	// Feedback is the reviewer's overall feedback to the planner.
	Feedback string `json:"feedback,omitempty" yaml:"feedback,omitempty"`

	// Status is the review status; empty when the feed does not report one.
	Status SessionStatus `json:"status,omitempty" yaml:"status,omitempty"`

	// Results are the per-criterion outcomes in feed order.
	Results []EvaluationResult `json:"results" yaml:"results"`

	// FetchedAt records when the session was read from the feed.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}
