package errors

// ErrorCategory is the broad class of an error, used for exit codes and
// HTTP statuses.
type ErrorCategory string

const (
	// User-facing input problems.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"

	// Site processing.
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryParse      ErrorCategory = "parse"
	CategoryRender     ErrorCategory = "render"
	CategoryBuild      ErrorCategory = "build"

	// Process level.
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // stops the build or command
	SeverityError   ErrorSeverity = "error"   // fails the current request or item
	SeverityWarning ErrorSeverity = "warning" // continues degraded
)

// KeyPath is the context key set by WithPath.
const KeyPath = "path"

// ErrorContext holds structured values attached to an error.
type ErrorContext map[string]any

// Set adds or updates a value, allocating the map on first use.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get retrieves a value.
func (c ErrorContext) Get(key string) (any, bool) {
	value, ok := c[key]
	return value, ok
}
