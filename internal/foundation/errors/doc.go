// Package errors provides classified error primitives shared by the build
// pipeline, the dev server and the CLI.
//
// A ClassifiedError carries a category, a severity and a small context map.
// Adapters translate those into process exit codes (CLIErrorAdapter) and HTTP
// responses (HTTPErrorAdapter).
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryParse, "malformed front matter").
//		WithPath(rel).
//		Build()
package errors
