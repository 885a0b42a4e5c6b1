package mdconverter

import (
	"strings"

	"github.com/rgonek/notion-md/blocks"
	"github.com/yuin/goldmark/ast"
)

func (s *state) convertParagraphNode(node ast.Node) []blocks.Block {
	raw := strings.Join(s.rawLines(node), "\n")
	if containsImage(node) {
		return s.splitImages(node, raw)
	}
	if isBlankText(raw) {
		return nil
	}
	return []blocks.Block{blocks.NewParagraph(raw)}
}

func (s *state) convertHeadingNode(node *ast.Heading) []blocks.Block {
	level := node.Level + s.config.HeadingOffset
	if level < 1 {
		level = 1
	}
	return []blocks.Block{
		blocks.NewHeading(level, strings.Join(s.rawLines(node), " ")),
	}
}

func (s *state) convertBlockquoteNode(node *ast.Blockquote) ([]blocks.Block, error) {
	var content []blocks.Block

	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if err := s.checkContext(); err != nil {
			return nil, err
		}

		switch child.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			if !containsImage(child) {
				// One quote per source line: consecutive "> " lines share a
				// paragraph in the AST.
				for _, line := range s.rawLines(child) {
					if isBlankText(line) {
						continue
					}
					content = append(content, blocks.NewQuote(line))
				}
				continue
			}
		}

		converted, err := s.convertBlockNode(child)
		if err != nil {
			return nil, err
		}
		for _, block := range converted {
			content = append(content, quoteParagraph(block))
		}
	}

	return content, nil
}

// quoteParagraph turns a paragraph produced inside a blockquote into a quote
// carrying the paragraph's first run. Other blocks pass through.
func quoteParagraph(block blocks.Block) blocks.Block {
	paragraph, ok := block.(blocks.Paragraph)
	if !ok {
		return block
	}

	quote := blocks.Quote{RichText: []blocks.TextRun{{Content: ""}}}
	if len(paragraph.RichText) > 0 {
		quote.RichText = paragraph.RichText[:1]
	}
	return quote
}

func (s *state) convertFencedCodeBlockNode(node *ast.FencedCodeBlock) []blocks.Block {
	language := strings.TrimSpace(string(node.Language(s.source)))
	if mapped, ok := s.config.LanguageMap[strings.ToLower(language)]; ok {
		language = mapped
	}

	source := strings.TrimRight(s.rawText(node), "\n")
	return []blocks.Block{blocks.NewCode(source, language)}
}

func (s *state) convertCodeBlockNode(node *ast.CodeBlock) []blocks.Block {
	source := strings.TrimRight(s.rawText(node), "\n")
	return []blocks.Block{blocks.NewCode(source, "")}
}

func (s *state) convertHTMLBlockNode(node *ast.HTMLBlock) []blocks.Block {
	raw := s.rawText(node)
	if node.HasClosure() {
		raw += string(node.ClosureLine.Value(s.source))
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return []blocks.Block{blocks.NewParagraph(raw)}
}

func isBlankText(text string) bool {
	return strings.TrimSpace(blocks.Strip(text)) == ""
}
