package credentials

import (
	"errors"
	"fmt"
)

// Kind classifies credential errors.
type Kind int

const (
	// KindMalformedRequest covers bodies that cannot be parsed or decoded.
	KindMalformedRequest Kind = iota
	// KindValidation covers decoded values that break a field rule.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindMalformedRequest:
		return "MalformedRequest"
	case KindValidation:
		return "ValidationError"
	default:
		return "Unknown"
	}
}

// Error is returned by the decoder, the form parser and the Check functions.
type Error struct {
	Kind    Kind
	Field   Field // zero for errors not tied to a field
	Message string
	Err     error
}

func (e *Error) Error() string {
	var msg string
	if e.Field != FieldNone {
		msg = fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (%v)", e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newMalformed(message string, err error) *Error {
	return &Error{Kind: KindMalformedRequest, Message: message, Err: err}
}

func newValidation(field Field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// IsMalformed reports whether err is a malformed request error.
func IsMalformed(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == KindMalformedRequest
}

// IsValidation reports whether err is a field validation error.
func IsValidation(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == KindValidation
}

// FieldOf returns the field a validation error refers to.
func FieldOf(err error) (Field, bool) {
	var ce *Error
	if errors.As(err, &ce) && ce.Field != FieldNone {
		return ce.Field, true
	}
	return FieldNone, false
}
