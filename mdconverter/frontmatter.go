package mdconverter

import (
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/rgonek/notion-md/converter"
)

// extractFrontMatter splits a leading YAML (---) or TOML (+++) block from the
// document. Unparseable front matter stays in the body.
func (s *state) extractFrontMatter(markdown string) (string, map[string]any) {
	if s.config.FrontMatter == FrontMatterKeep || !hasFrontMatter(markdown) {
		return markdown, nil
	}

	var meta map[string]any
	rest, err := frontmatter.Parse(strings.NewReader(markdown), &meta)
	if err != nil {
		s.addWarning(
			converter.WarningInvalidFrontMatter,
			"frontMatter",
			fmt.Sprintf("Front matter could not be parsed and was kept as content: %v", err),
		)
		return markdown, nil
	}

	if len(meta) == 0 {
		meta = nil
	}
	return string(rest), meta
}

// hasFrontMatter reports whether the first line opens a front matter block
// that a later line closes. A lone leading "---" is a thematic break.
func hasFrontMatter(markdown string) bool {
	lines := strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return false
	}

	delimiter := strings.TrimSpace(lines[0])
	if delimiter != "---" && delimiter != "+++" {
		return false
	}
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == delimiter {
			return true
		}
	}
	return false
}
