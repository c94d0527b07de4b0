// Package record implements the field, tag and checksum encoding used by
// note rows. The byte-level output is part of the host's file format, so
// every function here is compatibility-critical: quirks included.
package record

import "strings"

// FieldSeparator separates note fields inside the flds column.
const FieldSeparator = "\x1f"

// JoinFields encodes fields into a single flds value.
func JoinFields(fields []string) string {
	return strings.Join(fields, FieldSeparator)
}

// SplitFields decodes a flds value. Trailing empty fields are dropped,
// interior empty fields are preserved.
func SplitFields(flds string) []string {
	parts := strings.Split(flds, FieldSeparator)
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// JoinTags encodes tags into the space-separated tags column value.
//
// The host's own implementation computes a space-to-underscore rewrite per
// tag and discards the result, so tags containing spaces are written
// unchanged. That behavior is load-bearing for file compatibility and is
// kept here.
func JoinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return strings.Join(tags, " ")
}

// SplitTags decodes a tags column value, splitting on runs of whitespace.
func SplitTags(tags string) []string {
	return strings.Fields(tags)
}
