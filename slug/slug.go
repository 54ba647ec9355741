// Package slug derives URL-safe identifiers from post titles.
package slug

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// Fallback is the base used when a title has no letters or digits.
const Fallback = "post"

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// ExistsFunc reports whether a candidate slug is already taken.
// Callers bind any exclusion (the post being updated) into the closure.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Slugify lower-cases title, collapses every run of characters outside
// [a-z0-9] into a single hyphen and trims hyphens from both ends.
func Slugify(title string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

// Unique returns the first of base, base-1, base-2, ... for which exists
// reports false. The result is only free at the moment of the check.
func Unique(ctx context.Context, title string, exists ExistsFunc) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = Fallback
	}

	candidate := base
	for i := 1; ; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
}
