package domain

import "strings"

// MaxTagNameLen bounds the stored tag name.
const MaxTagNameLen = 64

// Tag is a short, case-insensitive, globally unique label attachable to papers.
// Name is the source of truth and is always stored lowercase.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NormalizeTagName canonicalizes a raw tag string: trim then lowercase.
// Returns "" for input that is blank after trimming; callers treat that as
// an invalid tag.
func NormalizeTagName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
