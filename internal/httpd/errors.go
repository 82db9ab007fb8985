package httpd

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMethod is returned for requests that are neither GET nor POST.
	// No response is sent for them.
	ErrUnknownMethod = errors.New("httpd: unknown request method")
	// ErrRequestTooLarge is returned when a request exceeds the size limit.
	ErrRequestTooLarge = errors.New("httpd: request too large")
	// ErrBadContentLength is returned for an unparseable Content-Length header.
	ErrBadContentLength = errors.New("httpd: bad Content-Length")
	// ErrIncompleteRequest is returned when the peer closes before a full request arrived.
	ErrIncompleteRequest = errors.New("httpd: connection closed mid-request")
)

// TransportError wraps a receive or write failure. The exchange is torn
// down and nothing is retried.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("httpd: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is or wraps a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
