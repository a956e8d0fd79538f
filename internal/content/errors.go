package content

import "errors"

// Sentinel errors for content resolution. Call sites wrap them with the
// offending path.
var (
	// ErrUndatedPost indicates a post in _posts/ has neither a filename date
	// prefix nor a front matter date.
	ErrUndatedPost = errors.New("post has no resolvable date")

	// ErrInvalidDate indicates a front matter date could not be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrEmptyURL indicates an item reached rendering without a URL.
	ErrEmptyURL = errors.New("content item has an empty url")
)
