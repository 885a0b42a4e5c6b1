package mdconverter

import (
	"regexp"
	"strings"

	"github.com/rgonek/notion-md/blocks"
	"github.com/yuin/goldmark/ast"
)

// imageSyntaxRe matches an inline image, optionally wrapped in a link.
// Groups 1-2 hold alt and destination of the linked form, 3-4 of the bare form.
var imageSyntaxRe = regexp.MustCompile(
	`\[!\[([^\]]*)\]\(\s*<?([^)\s>]*)>?(?:\s+"[^"]*")?\s*\)\]\([^)]*\)` +
		`|!\[([^\]]*)\]\(\s*<?([^)\s>]*)>?(?:\s+"[^"]*")?\s*\)`,
)

type inlineImage struct {
	url string
	alt string
}

func containsImage(node ast.Node) bool {
	found := false
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if _, ok := n.(*ast.Image); ok {
			found = true
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return found
}

// splitImages emits the text before each image as a paragraph, the image as
// its own block, and any trailing text last.
func (s *state) splitImages(node ast.Node, raw string) []blocks.Block {
	matches := imageSyntaxRe.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		// Reference-style images only exist in the AST.
		return s.appendASTImages(node, raw)
	}

	var content []blocks.Block
	flush := func(text string) {
		text = strings.TrimSpace(text)
		if isBlankText(text) {
			return
		}
		content = append(content, blocks.NewParagraph(text))
	}

	prev := 0
	for _, match := range matches {
		flush(raw[prev:match[0]])

		alt, dest := submatch(raw, match, 1), submatch(raw, match, 2)
		if match[6] >= 0 {
			alt, dest = submatch(raw, match, 3), submatch(raw, match, 4)
		}
		content = append(content, blocks.NewImage(dest, alt))
		prev = match[1]
	}
	flush(raw[prev:])

	return content
}

func (s *state) appendASTImages(node ast.Node, raw string) []blocks.Block {
	var content []blocks.Block
	if !isBlankText(raw) {
		content = append(content, blocks.NewParagraph(raw))
	}

	for _, image := range s.collectImages(node) {
		content = append(content, blocks.NewImage(image.url, image.alt))
	}
	return content
}

func (s *state) collectImages(node ast.Node) []inlineImage {
	var images []inlineImage
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		image, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}
		images = append(images, inlineImage{
			url: string(image.Destination),
			alt: s.inlineText(image),
		})
		return ast.WalkSkipChildren, nil
	})
	return images
}

// inlineText concatenates the literal text below an inline node.
func (s *state) inlineText(node ast.Node) string {
	var sb strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch typed := n.(type) {
		case *ast.Text:
			sb.Write(typed.Segment.Value(s.source))
		case *ast.String:
			sb.Write(typed.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

func submatch(raw string, match []int, group int) string {
	start, end := match[2*group], match[2*group+1]
	if start < 0 {
		return ""
	}
	return raw[start:end]
}
