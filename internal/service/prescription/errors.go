package prescription

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPartialFailure   = errors.New("prescription partially failed")
	ErrValidationFailed = errors.New("prescription validation failed")
	ErrNotFound         = errors.New("appointment not found")
	ErrForbidden        = errors.New("appointment belongs to another user")
	ErrNotDoctor        = errors.New("only doctors can prescribe")
)

const (
	StagePersist = "persist"
	StageNotify  = "notify"
)

// ItemFailure is one item that did not complete.
type ItemFailure struct {
	Index    int    `json:"index"`
	Medicine string `json:"medicine"`
	Stage    string `json:"stage"`
	Err      error  `json:"-"`
}

// PartialFailureError reports which items failed and how far the
// prescription got. Rows persisted before the failure are kept.
type PartialFailureError struct {
	AppointmentID string
	Persisted     int
	Notified      int
	Failures      []ItemFailure
}

func (e *PartialFailureError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("item %d (%s) %s: %v", f.Index, f.Medicine, f.Stage, f.Err))
	}
	return fmt.Sprintf("%s: appointment %s, persisted %d, notified %d: %s",
		ErrPartialFailure, e.AppointmentID, e.Persisted, e.Notified, strings.Join(parts, "; "))
}

func (e *PartialFailureError) Is(target error) bool { return target == ErrPartialFailure }

func (e *PartialFailureError) Unwrap() []error {
	out := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		out = append(out, f.Err)
	}
	return out
}
