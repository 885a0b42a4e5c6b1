package converter

import (
	"strings"

	"github.com/rgonek/notion-md/blocks"
)

// renderListItem writes marker and text, then the children indented under
// the marker.
func (s *state) renderListItem(marker string, runs []blocks.TextRun, children []blocks.Block) (string, error) {
	text := s.renderRichText(runs)
	pad := strings.Repeat(" ", len(marker))

	var sb strings.Builder
	sb.WriteString(indent(marker+text, pad))
	sb.WriteString("\n")

	if len(children) == 0 {
		return sb.String(), nil
	}

	nested, err := s.renderBlocks(children)
	if err != nil {
		return "", err
	}
	nested = strings.TrimRight(nested, "\n")
	if nested == "" {
		return sb.String(), nil
	}

	// Non-list children need a blank line or they continue the item's text.
	if !isListBlock(children[0]) {
		sb.WriteString("\n")
	}
	sb.WriteString(pad + indent(nested, pad))
	sb.WriteString("\n")

	return sb.String(), nil
}

func (s *state) renderToDo(todo blocks.ToDo) (string, error) {
	marker := string(s.config.BulletMarker) + " [ ] "
	if todo.Checked {
		marker = string(s.config.BulletMarker) + " [x] "
	}
	return s.renderListItem(marker, todo.RichText, nil)
}

// indent prefixes every line but the first with pad. Blank lines stay blank.
func indent(text, pad string) string {
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] == "" {
			continue
		}
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}
