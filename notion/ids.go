package notion

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// trailingIDPattern matches a dashed or undashed id at the end of a URL slug.
var trailingIDPattern = regexp.MustCompile(`[0-9a-fA-F]{8}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{12}$`)

// NormalizeID returns the canonical dashed form of a Notion id. It accepts
// dashed and undashed ids and page URLs such as
// https://www.notion.so/workspace/My-Page-0123456789abcdef0123456789abcdef.
func NormalizeID(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if i := strings.IndexAny(value, "?#"); i >= 0 {
		value = value[:i]
	}
	value = strings.TrimRight(value, "/")
	if i := strings.LastIndex(value, "/"); i >= 0 {
		value = value[i+1:]
	}

	match := trailingIDPattern.FindString(value)
	if match == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}

	id, err := uuid.Parse(match)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidID, raw, err)
	}
	return id.String(), nil
}
