package build

import "errors"

// Sentinel errors for build failures. They are wrapped with the offending
// paths at the call site.
var (
	// ErrURLCollision indicates two outputs resolve to the same file.
	ErrURLCollision = errors.New("url collision")
)
