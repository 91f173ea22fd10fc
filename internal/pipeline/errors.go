package pipeline

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrorKind classifies a stage-level failure.
type ErrorKind string

// Stage failure kinds.
const (
	KindData            ErrorKind = "data"
	KindResolution      ErrorKind = "resolution"
	KindContactNotFound ErrorKind = "contact_not_found"
	KindSelection       ErrorKind = "selection"
	KindExternalService ErrorKind = "external_service"
	KindUnknown         ErrorKind = "unknown"
	KindInvalidPipeline ErrorKind = "invalid_pipeline"
)

// StageError is the failure value returned by a stage. Stage is filled in by
// the engine when the error crosses a stage boundary.
type StageError struct {
	Kind  ErrorKind
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	if e.Stage == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Err.Error())
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Failf builds a StageError of the given kind with a formatted message.
func Failf(kind ErrorKind, format string, args ...any) *StageError {
	return &StageError{Kind: kind, Err: eris.Errorf(format, args...)}
}

// External wraps a collaborator failure (HTTP status, decode, validation) as
// an external_service StageError. Returns nil when err is nil.
func External(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Kind: KindExternalService, Err: eris.Wrapf(err, format, args...)}
}

// KindOf reports the kind of a stage failure. Errors that never passed
// through Failf or External are KindUnknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is a StageError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
