package mdconverter

import "github.com/rgonek/notion-md/blocks"

// Result holds the output of a Markdown to block conversion.
type Result struct {
	Blocks      []blocks.Block `json:"blocks"`
	Warnings    []Warning      `json:"warnings,omitempty"`
	FrontMatter map[string]any `json:"frontMatter,omitempty"`
}
