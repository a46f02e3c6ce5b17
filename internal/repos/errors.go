package repos

import (
    "errors"
    "fmt"
    "strings"

    "gorm.io/gorm"
)

// Reason says why a store operation failed.
type Reason int

const (
    ReasonUnknown Reason = iota
    // ReasonUnavailable covers a locked, full, missing or unreadable file.
    ReasonUnavailable
    // ReasonConstraint is a unique index violation, i.e. a (chat_id, timestamp) collision.
    ReasonConstraint
    // ReasonInvalid is rejected input that never reached the database.
    ReasonInvalid
)

func (r Reason) String() string {
    switch r {
    case ReasonUnavailable:
        return "unavailable"
    case ReasonConstraint:
        return "constraint"
    case ReasonInvalid:
        return "invalid"
    default:
        return "unknown"
    }
}

type StoreError struct {
    Op      string
    Reason  Reason
    Err     error
}

func (e *StoreError) Error() string {
    if e.Err == nil {
        return fmt.Sprintf("%s: %s", e.Op, e.Reason)
    }
    return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
}

func (e *StoreError) Unwrap() error {
    return e.Err
}

// Is matches another StoreError by Reason, so errors.Is(err, ErrConstraint) works.
func (e *StoreError) Is(target error) bool {
    t, ok := target.(*StoreError)
    if !ok {
        return false
    }
    return t.Op == "" && t.Reason == e.Reason
}

var (
    ErrUnavailable    = &StoreError{Reason: ReasonUnavailable}
    ErrConstraint     = &StoreError{Reason: ReasonConstraint}
    ErrInvalid        = &StoreError{Reason: ReasonInvalid}
    ErrEmptyQuestion  = errors.New("question must not be empty")
)

// ReasonOf returns the Reason carried by err, or ReasonUnknown.
func ReasonOf(err error) Reason {
    var se *StoreError
    if errors.As(err, &se) {
        return se.Reason
    }
    return ReasonUnknown
}

func wrapErr(op string, err error) error {
    if err == nil {
        return nil
    }
    return &StoreError{Op: op, Reason: classify(err), Err: err}
}

func classify(err error) Reason {
    if errors.Is(err, gorm.ErrDuplicatedKey) {
        return ReasonConstraint
    }
    if strings.Contains(err.Error(), "UNIQUE constraint failed") {
        return ReasonConstraint
    }
    return ReasonUnavailable
}
