package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Proof statuses. A record starts pending; every accepted decision
// overwrites the status, so the last decision wins.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ErrInvalidDecision is returned when a submitted decision is neither
// "approved" nor "rejected".
var ErrInvalidDecision = errors.New("invalid decision")

// ErrCommentRequired is returned when a rejection carries no comment.
var ErrCommentRequired = errors.New("comment required when rejecting")

// ResponseEvent is one reviewer decision. Events are append-only.
type ResponseEvent struct {
	TsUTC       string `json:"ts_utc"`
	Decision    string `json:"decision"`
	Comment     string `json:"comment"`
	ViewerName  string `json:"viewer_name"`
	ViewerEmail string `json:"viewer_email"`
	IP          string `json:"ip"`
}

// Record is the persisted state of one upload/review thread, keyed by token.
type Record struct {
	Token        string          `json:"token"`
	OriginalName string          `json:"original_name"`
	StoredName   string          `json:"stored_name"`
	CreatedUTC   string          `json:"created_utc"`
	Status       string          `json:"status"`
	Responses    []ResponseEvent `json:"responses"`
}

// NewRecord creates a pending record for a freshly uploaded file.
func NewRecord(token, originalName, storedName string) *Record {
	return &Record{
		Token:        token,
		OriginalName: originalName,
		StoredName:   storedName,
		CreatedUTC:   NowUTC(),
		Status:       StatusPending,
		Responses:    []ResponseEvent{},
	}
}

// ApplyDecision validates the event, appends it and updates the status.
// The record is left untouched when validation fails.
func (r *Record) ApplyDecision(ev ResponseEvent) error {
	decision := strings.ToLower(strings.TrimSpace(ev.Decision))
	if decision != StatusApproved && decision != StatusRejected {
		return ErrInvalidDecision
	}
	if decision == StatusRejected && strings.TrimSpace(ev.Comment) == "" {
		return ErrCommentRequired
	}

	ev.Decision = decision
	r.Status = decision
	r.Responses = append(r.Responses, ev)
	return nil
}

// NewToken returns an opaque 12-character token naming one upload.
func NewToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// NowUTC formats the current time the way records store timestamps.
func NowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
