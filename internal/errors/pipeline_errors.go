package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	KindUnknown Kind = iota
	MissingArtifact
	WriteFailure
	LaunchFailure
	CommandFailed
	CalibrationUnavailable
	BasisNotFound
	MeasurementFailed
	ExtractionFailure
)

var kindNames = map[Kind]string{
	KindUnknown:            "Unknown",
	MissingArtifact:        "MissingArtifact",
	WriteFailure:           "WriteFailure",
	LaunchFailure:          "LaunchFailure",
	CommandFailed:          "CommandFailed",
	CalibrationUnavailable: "CalibrationUnavailable",
	BasisNotFound:          "BasisNotFound",
	MeasurementFailed:      "MeasurementFailed",
	ExtractionFailure:      "ExtractionFailure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a classified failure raised by one pipeline operation.
type Error struct {
	Kind   Kind
	Op     string // operation that failed, e.g. "paramfile.rewrite"
	Detail string // captured stderr, offending text, stage name
	Err    error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error.
func New(kind Kind, op, detail string, err error) *Error {
	return &Error{Kind: kind, Op: op, Detail: detail, Err: err}
}

// KindOf returns the kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// Is reports whether any classified error in err's chain has the given kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		var pe *Error
		if !errors.As(err, &pe) {
			return false
		}
		if pe.Kind == kind {
			return true
		}
		err = pe.Err
	}
	return false
}
