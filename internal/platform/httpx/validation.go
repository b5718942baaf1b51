package httpx

import "fmt"

// ValidationError marks a failure caused by bad client input. Domain
// handlers map it to 400; any other error escaping a handler reaches the
// global error handler and is rendered as an opaque 500.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// Invalidf builds a ValidationError with a formatted message.
func Invalidf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}
