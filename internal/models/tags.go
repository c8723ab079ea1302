package models

import "strings"

const TagSeparator = ", "

func JoinTags(tags []string) string {
	return strings.Join(tags, TagSeparator)
}

// SplitTags reverses JoinTags for tags drawn from catalog. Labels may contain the
// separator themselves, so the longest catalog label matching at each position wins.
func SplitTags(flattened string, catalog []string) []string {
	remaining := flattened
	tags := make([]string, 0)
	for remaining != "" {
		match := ""
		for _, label := range catalog {
			if len(label) <= len(match) || !strings.HasPrefix(remaining, label) {
				continue
			}
			rest := remaining[len(label):]
			if rest == "" || strings.HasPrefix(rest, TagSeparator) {
				match = label
			}
		}
		if match == "" {
			head, tail, _ := strings.Cut(remaining, TagSeparator)
			tags = append(tags, head)
			remaining = tail
			continue
		}

		tags = append(tags, match)
		remaining = strings.TrimPrefix(remaining[len(match):], TagSeparator)
	}
	return tags
}
