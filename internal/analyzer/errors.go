package analyzer

import (
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-analyzer/internal/config"
)

// ErrEmptyInput is returned when a page has no text to analyze.
var ErrEmptyInput = eris.New("analyzer: page has no text content")

// MalformedResponseError is returned in strict mode when the model output is
// not a JSON object.
type MalformedResponseError struct {
	Raw   string
	Cause error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause == nil {
		return "analyzer: malformed model response"
	}
	return "analyzer: malformed model response: " + e.Cause.Error()
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

// ErrorKind classifies analysis failures for callers that map them to
// user-facing responses.
type ErrorKind string

const (
	KindEmptyInput           ErrorKind = "empty_input"
	KindMalformedResponse    ErrorKind = "malformed_response"
	KindInvalidConfiguration ErrorKind = "invalid_configuration"
	KindUnknown              ErrorKind = "unknown"
)

// KindOf returns the ErrorKind of err, or KindUnknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, ErrEmptyInput) {
		return KindEmptyInput
	}
	var mre *MalformedResponseError
	if errors.As(err, &mre) {
		return KindMalformedResponse
	}
	var ve *config.ValidationError
	if errors.As(err, &ve) {
		return KindInvalidConfiguration
	}
	return KindUnknown
}
