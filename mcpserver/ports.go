package mcpserver

import (
	"context"

	"github.com/rgonek/notion-md/batch"
	"github.com/rgonek/notion-md/notion"
	"github.com/rgonek/notion-md/projector"
)

// Searcher finds pages by title.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]notion.PageRef, error)
}

// Ports aggregates the services the tools call.
type Ports struct {
	// Writer receives appended and deleted blocks.
	Writer batch.BlockAPI

	// Reader renders pages and blocks as Markdown.
	Reader projector.MarkdownSource

	// Searcher backs search_pages. Optional; the tool is not registered without it.
	Searcher Searcher
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Writer == nil {
		return ErrMissingWriter
	}
	if p.Reader == nil {
		return ErrMissingReader
	}
	return nil
}
