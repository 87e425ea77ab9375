// Package validation holds the error taxonomy shared by every schema model
// in this module, plus the struct-tag and CEL rule checks applied to option
// and parameter records.
//
// Every concrete failure is a *FieldError whose Kind is one of the sentinel
// errors below, so callers can classify failures with errors.Is regardless of
// how deeply the offending field was nested.
package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds.
var (
	ErrUnsupportedDtype       = errors.New("unsupported dtype")
	ErrMalformedTensor        = errors.New("malformed tensor")
	ErrVersionOutOfRange      = errors.New("version out of range")
	ErrUnexpectedProgramCount = errors.New("unexpected program count")
	ErrVersionMismatch        = errors.New("version mismatch")
	ErrVersionTokenMissing    = errors.New("version token missing")
	ErrParameterCountMismatch = errors.New("parameter count mismatch")
	ErrInconsistentChunking   = errors.New("inconsistent chunking")

	// ErrMalformedPayload covers undecodable base64, corrupt compressed
	// streams and truncated binary headers.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrInvalidField covers plain field constraints (ranges, literals,
	// required values) and cross-field option rules.
	ErrInvalidField = errors.New("invalid field")
	// ErrUnknownProgram is returned by registries asked for a program or
	// schema version they do not know.
	ErrUnknownProgram = errors.New("unknown program")
	// ErrCodecUnavailable is returned when a program must be decoded but no
	// external codec has been registered.
	ErrCodecUnavailable = errors.New("codec unavailable")
)

// FieldError is a validation failure located at a dotted field path.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Kind    error  `json:"-"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return e.Kind }

// Code returns the failure kind as a short string, for reports.
func (e *FieldError) Code() string {
	if e.Kind == nil {
		return ""
	}
	return strings.ReplaceAll(e.Kind.Error(), " ", "_")
}

// Errorf builds a *FieldError of the given kind.
func Errorf(kind error, field, format string, args ...any) error {
	return &FieldError{Field: field, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// At prefixes the location of err with field. A *FieldError keeps its kind;
// any other error is wrapped as ErrInvalidField unless it already carries one
// of the kinds above. Joined field errors are re-rooted one by one.
func At(field string, err error) error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := joined.Unwrap(); allFieldErrors(errs) {
			out := make([]error, len(errs))
			for i, e := range errs {
				out[i] = At(field, e)
			}
			return errors.Join(out...)
		}
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		return &FieldError{Field: join(field, fe.Field), Kind: fe.Kind, Message: fe.Message}
	}
	return &FieldError{Field: field, Kind: kindOf(err), Message: err.Error()}
}

func allFieldErrors(errs []error) bool {
	for _, e := range errs {
		var fe *FieldError
		if !errors.As(e, &fe) {
			return false
		}
	}
	return len(errs) > 0
}

// AtIndex is At for a list element.
func AtIndex(field string, i int, err error) error {
	return At(fmt.Sprintf("%s.%d", field, i), err)
}

func join(prefix, field string) string {
	switch {
	case prefix == "":
		return field
	case field == "":
		return prefix
	default:
		return prefix + "." + field
	}
}

var kinds = []error{
	ErrUnsupportedDtype,
	ErrMalformedTensor,
	ErrVersionOutOfRange,
	ErrUnexpectedProgramCount,
	ErrVersionMismatch,
	ErrVersionTokenMissing,
	ErrParameterCountMismatch,
	ErrInconsistentChunking,
	ErrMalformedPayload,
	ErrUnknownProgram,
	ErrCodecUnavailable,
}

func kindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInvalidField
}
