package model

import (
	"tenderdocs/internal/apperr"
)

// Status is the processing lifecycle state of a document.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// transitions lists the legal forward moves. Terminal states have no entry.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusFailed},
	StatusProcessing: {StatusCompleted, StatusFailed},
}

// ParseStatus validates a client-supplied status value.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", apperr.Validation("model.ParseStatus", "status", "status must be one of pending, processing, completed, failed")
	}
	return st, nil
}

// Valid reports whether s is one of the enumerated states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether moving from s to next is legal.
// Re-asserting the current state is accepted as a no-op.
func (s Status) CanTransitionTo(next Status) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CheckTransition returns an INVALID_TRANSITION error when moving from s to next is illegal.
func CheckTransition(from, to Status) error {
	if from.CanTransitionTo(to) {
		return nil
	}
	if from.Terminal() {
		return apperr.New(apperr.KindInvalidTransition, "model.CheckTransition",
			"status "+string(from)+" is final and cannot change to "+string(to))
	}
	return apperr.New(apperr.KindInvalidTransition, "model.CheckTransition",
		"cannot change status from "+string(from)+" to "+string(to))
}
