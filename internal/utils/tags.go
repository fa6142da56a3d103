package utils

import "strings"

// NormalizeTags parses comma separated tag input: segments are trimmed and
// lowercased, empty ones dropped, and duplicates collapsed keeping the first
// occurrence. The result is never nil.
func NormalizeTags(raw string) []string {
	tags := make([]string, 0)
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// JoinTags renders tags back into the form an edit field is pre-filled with.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
