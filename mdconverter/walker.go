package mdconverter

import (
	"fmt"
	"strings"

	"github.com/rgonek/notion-md/blocks"
	"github.com/rgonek/notion-md/converter"
	"github.com/yuin/goldmark/ast"
)

func (s *state) convertDocument(root ast.Node) ([]blocks.Block, error) {
	if err := s.checkContext(); err != nil {
		return nil, err
	}
	return s.convertNodeSequence(root)
}

// convertBlockNode returns every block produced by node, in document order.
func (s *state) convertBlockNode(node ast.Node) ([]blocks.Block, error) {
	switch typed := node.(type) {
	case *ast.Paragraph:
		return s.convertParagraphNode(typed), nil
	case *ast.TextBlock:
		return s.convertParagraphNode(typed), nil
	case *ast.Heading:
		return s.convertHeadingNode(typed), nil
	case *ast.Blockquote:
		return s.convertBlockquoteNode(typed)
	case *ast.ThematicBreak:
		return []blocks.Block{blocks.NewDivider()}, nil
	case *ast.FencedCodeBlock:
		return s.convertFencedCodeBlockNode(typed), nil
	case *ast.CodeBlock:
		return s.convertCodeBlockNode(typed), nil
	case *ast.List:
		ordered := typed.IsOrdered()
		if s.listDepth > 0 {
			ordered = s.listOrdered
		}
		return s.convertListItems(typed, ordered, s.listDepth+1)
	case *ast.HTMLBlock:
		return s.convertHTMLBlockNode(typed), nil
	default:
		nodeKind := node.Kind().String()
		s.addWarning(
			converter.WarningUnknownNode,
			nodeKind,
			fmt.Sprintf("Unknown token type: %s", nodeKind),
		)
		return nil, nil
	}
}

func (s *state) convertNodeSequence(parent ast.Node) ([]blocks.Block, error) {
	var content []blocks.Block

	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		if err := s.checkContext(); err != nil {
			return nil, err
		}

		converted, err := s.convertBlockNode(child)
		if err != nil {
			return nil, err
		}
		content = append(content, converted...)
	}

	return content, nil
}

// rawLines returns the source lines of a block node with line endings and
// surrounding blanks removed. Hard line break markers (a trailing backslash
// or two spaces) are dropped so every break becomes a plain newline.
func (s *state) rawLines(node ast.Node) []string {
	lines := node.Lines()
	out := make([]string, 0, lines.Len())

	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		line := strings.TrimRight(string(segment.Value(s.source)), "\r\n")
		if i < lines.Len()-1 && strings.HasSuffix(line, `\`) && !strings.HasSuffix(line, `\\`) {
			line = strings.TrimSuffix(line, `\`)
		}
		out = append(out, strings.Trim(line, " \t"))
	}

	return out
}

// rawText is the verbatim source of a literal block such as code or HTML.
func (s *state) rawText(node ast.Node) string {
	var sb strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		sb.Write(segment.Value(s.source))
	}
	return sb.String()
}
