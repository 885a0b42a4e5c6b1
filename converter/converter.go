// Package converter renders Notion block trees as GFM Markdown.
package converter

import (
	"fmt"
	"strings"

	"github.com/rgonek/notion-md/blocks"
)

// Converter converts blocks to GFM
type Converter struct {
	config Config
}

type state struct {
	config   Config
	warnings []Warning
}

// New creates a new Converter with the given config
func New(config Config) (*Converter, error) {
	cfg := config.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Converter{
		config: cfg,
	}, nil
}

// Convert renders a block sequence as GFM markdown
func (c *Converter) Convert(list []blocks.Block) (Result, error) {
	s := &state{config: c.config}

	markdown, err := s.renderBlocks(list)
	if err != nil {
		return Result{}, err
	}

	// Trim right to avoid excessive newlines at the end of file, then ensure exactly one.
	markdown = strings.TrimRight(markdown, "\n")
	if markdown != "" {
		markdown += "\n"
	}

	return Result{
		Markdown: markdown,
		Warnings: s.warnings,
	}, nil
}

func (s *state) addWarning(warnType WarningType, nodeType, message string) {
	s.warnings = append(s.warnings, Warning{
		Type:     warnType,
		NodeType: nodeType,
		Message:  message,
	})
}

// renderBlocks renders siblings. Consecutive list items form one list; any
// other block is separated by a blank line.
func (s *state) renderBlocks(list []blocks.Block) (string, error) {
	var sb strings.Builder
	number := 0
	inList := false

	for _, block := range list {
		item := isListBlock(block)
		if inList && !item {
			sb.WriteString("\n")
		}

		if _, ok := block.(blocks.NumberedListItem); ok {
			number++
		} else {
			number = 0
		}

		out, err := s.renderBlock(block, number)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
		inList = item
	}
	if inList {
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

func (s *state) renderBlock(block blocks.Block, number int) (string, error) {
	switch typed := block.(type) {
	case blocks.Paragraph:
		return s.renderParagraph(typed), nil
	case blocks.Heading:
		return s.renderHeading(typed), nil
	case blocks.BulletedListItem:
		return s.renderListItem(string(s.config.BulletMarker)+" ", typed.RichText, typed.Children)
	case blocks.NumberedListItem:
		if s.config.OrderedListStyle == OrderedLazy {
			number = 1
		}
		return s.renderListItem(fmt.Sprintf("%d. ", number), typed.RichText, typed.Children)
	case blocks.ToDo:
		return s.renderToDo(typed)
	case blocks.Code:
		return renderCode(typed), nil
	case blocks.Quote:
		return s.renderQuote(typed), nil
	case blocks.Divider:
		return "---\n\n", nil
	case blocks.Image:
		return renderImage(typed), nil
	case blocks.Unsupported:
		return s.renderUnsupported(typed)
	default:
		return s.renderUnsupported(blocks.Unsupported{Type: string(block.Kind())})
	}
}

func (s *state) renderParagraph(paragraph blocks.Paragraph) string {
	text := s.renderRichText(paragraph.RichText)
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return text + "\n\n"
}

func (s *state) renderHeading(heading blocks.Heading) string {
	text := strings.ReplaceAll(s.renderRichText(heading.RichText), "\n", " ")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	level := heading.Level
	if level < 1 {
		level = 1
	}
	if level > blocks.MaxHeadingLevel {
		level = blocks.MaxHeadingLevel
	}
	return strings.Repeat("#", level) + " " + text + "\n\n"
}

func (s *state) renderQuote(quote blocks.Quote) string {
	text := strings.TrimRight(s.renderRichText(quote.RichText), "\n")
	lines := strings.Split(text, "\n")

	quoted := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			quoted = append(quoted, ">")
			continue
		}
		quoted = append(quoted, "> "+line)
	}
	return strings.Join(quoted, "\n") + "\n\n"
}

func renderCode(code blocks.Code) string {
	source := blocks.PlainText(code.RichText)
	fence := codeFence(source)

	language := code.Language
	if language == blocks.DefaultLanguage {
		language = ""
	}

	var sb strings.Builder
	sb.WriteString(fence)
	sb.WriteString(strings.ReplaceAll(language, " ", "-"))
	sb.WriteString("\n")
	sb.WriteString(source)
	if !strings.HasSuffix(source, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString(fence)
	sb.WriteString("\n\n")
	return sb.String()
}

// codeFence picks a backtick fence longer than any run inside the source.
func codeFence(source string) string {
	longest, current := 0, 0
	for _, r := range source {
		if r == '`' {
			current++
			if current > longest {
				longest = current
			}
			continue
		}
		current = 0
	}

	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}

func renderImage(image blocks.Image) string {
	caption := strings.ReplaceAll(blocks.PlainText(image.Caption), "\n", " ")
	return "![" + escapeBrackets(caption) + "](" + image.URL + ")\n\n"
}

func (s *state) renderUnsupported(block blocks.Unsupported) (string, error) {
	switch s.config.UnknownBlocks {
	case UnknownError:
		return "", fmt.Errorf("unsupported block type: %s", block.Type)
	case UnknownSkip:
		s.addWarning(WarningUnknownNode, block.Type, fmt.Sprintf("unsupported block type skipped: %s", block.Type))
		return "", nil
	default:
		s.addWarning(WarningUnknownNode, block.Type, fmt.Sprintf("unsupported block type rendered as placeholder: %s", block.Type))
		placeholder := fmt.Sprintf("[Unsupported block: %s]", block.Type)
		if text := strings.TrimSpace(s.renderRichText(block.RichText)); text != "" {
			placeholder += " " + text
		}
		return placeholder + "\n\n", nil
	}
}

func isListBlock(block blocks.Block) bool {
	switch block.(type) {
	case blocks.BulletedListItem, blocks.NumberedListItem, blocks.ToDo:
		return true
	default:
		return false
	}
}
