package vrchat

import (
	"encoding/json"
	"strings"
)

const authorTagPrefix = "author_tag_"

// Tags decodes the world tag list leniently: anything other than an array of
// strings is treated as no tags, and non-string entries are skipped.
type Tags []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tags) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*t = nil
		return nil
	}
	tags := make([]string, 0, len(raw))
	for _, item := range raw {
		var tag string
		if err := json.Unmarshal(item, &tag); err == nil {
			tags = append(tags, tag)
		}
	}
	*t = tags
	return nil
}

// AuthorTags keeps the tags a world author chose, stripped of their
// author_tag_ prefix. System and admin tags are dropped.
func AuthorTags(tags []string) []string {
	out := []string{}
	for _, tag := range tags {
		if name, ok := strings.CutPrefix(tag, authorTagPrefix); ok {
			out = append(out, name)
		}
	}
	return out
}
