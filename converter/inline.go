package converter

import (
	"strings"

	"github.com/rgonek/notion-md/blocks"
)

// renderRichText concatenates runs, writing linked runs as [text](url).
func (s *state) renderRichText(runs []blocks.TextRun) string {
	var sb strings.Builder
	for _, run := range runs {
		if run.Link == nil || strings.TrimSpace(run.Link.URL) == "" {
			sb.WriteString(run.Content)
			continue
		}

		text := run.Content
		if strings.TrimSpace(text) == "" {
			text = run.Link.URL
		}
		sb.WriteString("[")
		sb.WriteString(escapeBrackets(text))
		sb.WriteString("](")
		sb.WriteString(run.Link.URL)
		sb.WriteString(")")
	}
	return sb.String()
}

func escapeBrackets(text string) string {
	text = strings.ReplaceAll(text, "[", `\[`)
	return strings.ReplaceAll(text, "]", `\]`)
}
