// Package mcpserver exposes the Markdown and Notion tools over the Model
// Context Protocol.
package mcpserver

import "errors"

var (
	// ErrMissingWriter is returned when no block writer is provided.
	ErrMissingWriter = errors.New("mcpserver: block writer is required")

	// ErrMissingReader is returned when no Markdown reader is provided.
	ErrMissingReader = errors.New("mcpserver: markdown reader is required")
)
