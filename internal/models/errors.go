// ABOUTME: Error taxonomy shared by repositories, the dashboard, and the CLI.
// ABOUTME: Validation errors carry the offending field for inline display.

package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotFound         = errors.New("not found")
)

// ValidationError reports a single invalid form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every invalid field of one submission.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Field returns the message for field, or "" if the field is valid.
func (v ValidationErrors) Field(field string) string {
	for _, e := range v {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// orNil keeps the nil-interface contract when nothing failed.
func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// FieldError extracts the inline message for field from err, if any.
func FieldError(err error, field string) string {
	var many ValidationErrors
	if errors.As(err, &many) {
		return many.Field(field)
	}
	var one *ValidationError
	if errors.As(err, &one) && one.Field == field {
		return one.Message
	}
	return ""
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var many ValidationErrors
	var one *ValidationError
	return errors.As(err, &many) || errors.As(err, &one)
}

// RemoteWriteError wraps a rejected or timed-out create/update/delete.
type RemoteWriteError struct {
	Op   string
	Path string
	Err  error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *RemoteWriteError) Unwrap() error {
	return e.Err
}
