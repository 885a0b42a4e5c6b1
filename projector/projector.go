// Package projector renders remote pages and blocks as bounded Markdown.
package projector

import (
	"context"
	"fmt"
)

const (
	// DefaultMaxChars bounds a projection when the caller gives no limit.
	DefaultMaxChars = 20000

	// newlineWindow is how far back from the limit a line break is preferred.
	newlineWindow = 500
)

// MarkdownSource fetches remote content as Markdown.
type MarkdownSource interface {
	PageToMarkdown(ctx context.Context, pageID string) (string, error)
	BlockToMarkdown(ctx context.Context, blockID string) (string, error)
}

// Projection is the Markdown of one page or block.
type Projection struct {
	ID         string `json:"id"`
	Markdown   string `json:"markdown"`
	Truncated  bool   `json:"truncated"`
	TotalChars int    `json:"totalChars"`
	// Error is set by Enrich when the content could not be fetched.
	Error string `json:"error,omitempty"`
}

// Projector wraps a MarkdownSource with truncation.
type Projector struct {
	source MarkdownSource
}

// New creates a Projector.
func New(source MarkdownSource) *Projector {
	return &Projector{source: source}
}

// Page returns the Markdown of a page. Fetch errors are returned as is.
func (p *Projector) Page(ctx context.Context, pageID string, maxChars int) (Projection, error) {
	markdown, err := p.source.PageToMarkdown(ctx, pageID)
	if err != nil {
		return Projection{}, err
	}
	return project(pageID, markdown, maxChars), nil
}

// Block returns the Markdown of a block and its children.
func (p *Projector) Block(ctx context.Context, blockID string, maxChars int) (Projection, error) {
	markdown, err := p.source.BlockToMarkdown(ctx, blockID)
	if err != nil {
		return Projection{}, err
	}
	return project(blockID, markdown, maxChars), nil
}

// Enrich projects each page in order. A failed fetch yields a placeholder
// projection instead of an error.
func (p *Projector) Enrich(ctx context.Context, pageIDs []string, maxChars int) []Projection {
	out := make([]Projection, 0, len(pageIDs))
	for _, id := range pageIDs {
		markdown, err := p.source.PageToMarkdown(ctx, id)
		if err != nil {
			out = append(out, Projection{
				ID:       id,
				Markdown: fmt.Sprintf("[Content unavailable: %v]", err),
				Error:    err.Error(),
			})
			continue
		}
		out = append(out, project(id, markdown, maxChars))
	}
	return out
}

func project(id, markdown string, maxChars int) Projection {
	text, truncated, total := Truncate(markdown, maxChars)
	return Projection{
		ID:         id,
		Markdown:   text,
		Truncated:  truncated,
		TotalChars: total,
	}
}

// Truncate cuts markdown to at most maxChars runes, preferring a line break
// near the limit, and appends a notice. maxChars <= 0 means DefaultMaxChars.
func Truncate(markdown string, maxChars int) (string, bool, int) {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	runes := []rune(markdown)
	total := len(runes)
	if total <= maxChars {
		return markdown, false, total
	}

	cut := maxChars
	windowStart := max(0, maxChars-newlineWindow)
	if i := lastIndex(runes[windowStart:maxChars], '\n'); i >= 0 && windowStart+i > 0 {
		cut = windowStart + i
	}

	text := string(runes[:cut]) + fmt.Sprintf("\n\n[... truncated, %d of %d characters shown]", cut, total)
	return text, true, total
}

func lastIndex(runes []rune, target rune) int {
	for j := len(runes) - 1; j >= 0; j-- {
		if runes[j] == target {
			return j
		}
	}
	return -1
}
