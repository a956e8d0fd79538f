package content

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the front matter date formats accepted, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 -07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// DateFromFilename parses the leading YYYY-MM-DD of a post filename. It
// reports false when the name has fewer than four dash separated segments or
// the prefix is not a valid calendar date.
func DateFromFilename(name string) (time.Time, bool) {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	parts := strings.Split(stem, "-")
	if len(parts) < 4 {
		return time.Time{}, false
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out of range values; a round trip mismatch means
	// the input was not a real date (2024-02-30).
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// SlugFromFilename returns the post slug: the filename stem with its first
// three dash separated segments dropped. Stems with fewer than four segments
// are returned whole.
func SlugFromFilename(name string) string {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	parts := strings.SplitN(stem, "-", 4)
	if len(parts) < 4 {
		return stem
	}
	return parts[3]
}

// pageStem returns the filename stem with a valid date prefix removed.
func pageStem(name string) string {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if _, ok := DateFromFilename(name); !ok {
		return stem
	}
	return strings.SplitN(stem, "-", 4)[3]
}

// ParseDate parses a front matter date value.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// ResolveDate picks the publication date of a post: the front matter date
// when present, otherwise the filename prefix. ok is false when neither
// yields a date.
func ResolveDate(frontMatterDate, filename string) (t time.Time, ok bool, err error) {
	if strings.TrimSpace(frontMatterDate) != "" {
		t, err := ParseDate(frontMatterDate)
		if err != nil {
			return time.Time{}, false, err
		}
		return t, true, nil
	}
	t, ok = DateFromFilename(filename)
	return t, ok, nil
}
