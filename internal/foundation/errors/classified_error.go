package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
)

// ClassifiedError is a structured error with category, severity and context.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	context  ErrorContext
}

// Error renders "message (path): cause", leaving out the parts that are unset.
func (e *ClassifiedError) Error() string {
	msg := e.message
	if p := e.Path(); p != "" {
		msg = fmt.Sprintf("%s (%s)", msg, p)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *ClassifiedError) Unwrap() error { return e.cause }

func (e *ClassifiedError) Category() ErrorCategory { return e.category }
func (e *ClassifiedError) Severity() ErrorSeverity { return e.severity }
func (e *ClassifiedError) Context() ErrorContext   { return e.context }

// Message returns the message without path or cause.
func (e *ClassifiedError) Message() string { return e.message }

// Path returns the site path recorded with WithPath, if any.
func (e *ClassifiedError) Path() string {
	p, _ := e.context[KeyPath].(string)
	return p
}

// WithContext returns a copy of the error with an extra context value.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	c := *e
	c.context = maps.Clone(e.context).Set(key, value)
	return &c
}

// IsFatal reports whether the error should stop execution.
func (e *ClassifiedError) IsFatal() bool {
	return e.severity == SeverityFatal
}

// Attrs returns the category and context as log attributes, context keys in
// sorted order.
func (e *ClassifiedError) Attrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("category", string(e.category))}
	for _, k := range slices.Sorted(maps.Keys(e.context)) {
		attrs = append(attrs, slog.Any(k, e.context[k]))
	}
	return attrs
}

// AsClassified finds the first ClassifiedError in err's chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// HasCategory checks if the outermost classified error in the chain has category.
func HasCategory(err error, category ErrorCategory) bool {
	if classified, ok := AsClassified(err); ok {
		return classified.category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal.
func GetCategory(err error) ErrorCategory {
	if classified, ok := AsClassified(err); ok {
		return classified.category
	}
	return CategoryInternal
}
