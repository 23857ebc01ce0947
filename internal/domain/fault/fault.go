package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a guard failure for callers that need to map it onto a
// transport surface (HTTP status, socket error event).
type Kind string

const (
	KindNotFound  Kind = "NOT_FOUND"
	KindForbidden Kind = "FORBIDDEN"
	KindConflict  Kind = "CONFLICT"
	KindInvalid   Kind = "INVALID_PARAM"
)

// Error is a classified domain error. Code defaults to the kind; guards
// that need a more specific machine-readable code (e.g. CHAT_ENDED) set it
// explicitly so clients never have to sniff message text.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// ErrorCode returns the machine-readable code for the error.
func (e *Error) ErrorCode() string {
	if e.Code != "" {
		return e.Code
	}
	return string(e.Kind)
}

// New builds a classified error.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds a classified error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithCode builds a classified error carrying a specific code.
func WithCode(kind Kind, code, message string) error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// KindOf extracts the kind from err, or "" if err is not classified.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// CodeOf extracts the machine-readable code from err, or "" if unclassified.
func CodeOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.ErrorCode()
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
