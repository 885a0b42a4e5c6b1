// Package mdconverter converts GFM Markdown into Notion block trees.
package mdconverter

import (
	"context"
	"strings"
	"sync"

	"github.com/rgonek/notion-md/converter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Warning is shared with the block renderer so callers handle both directions
// the same way.
type Warning = converter.Warning

// Converter converts GFM markdown to Notion blocks. It is safe for concurrent
// use; warnings are collected per call.
type Converter struct {
	config Config
	parser goldmark.Markdown

	mu   sync.Mutex
	last []Warning
}

type state struct {
	ctx      context.Context
	config   Config
	source   []byte
	warnings []Warning

	// listDepth is the depth of the list item enclosing the current node.
	listDepth int
	// listOrdered is the ordered flag of the outermost enclosing list.
	listOrdered bool
}

// New creates a new Converter with the given config.
func New(config Config) (*Converter, error) {
	cfg := config.applyDefaults().clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Converter{
		config: cfg,
		parser: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.Strikethrough,
				extension.TaskList,
			),
		),
	}, nil
}

// Convert takes a markdown document and returns the equivalent block sequence.
func (c *Converter) Convert(markdown string) (Result, error) {
	return c.ConvertWithContext(context.Background(), markdown)
}

// ConvertWithContext is Convert with cancellation checked between blocks.
func (c *Converter) ConvertWithContext(ctx context.Context, markdown string) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	s := &state{
		ctx:    ctx,
		config: c.config,
	}

	result, err := c.convert(s, markdown)
	c.remember(s.warnings)
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

func (c *Converter) convert(s *state, markdown string) (Result, error) {
	if strings.TrimSpace(markdown) == "" {
		return Result{}, nil
	}

	body, meta := s.extractFrontMatter(markdown)
	if strings.TrimSpace(body) == "" {
		return Result{FrontMatter: meta}, nil
	}

	s.source = []byte(body)
	root := c.parser.Parser().Parse(text.NewReader(s.source))
	content, err := s.convertDocument(root)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Blocks:      content,
		Warnings:    s.warnings,
		FrontMatter: meta,
	}, nil
}

// LastWarnings returns a copy of the warnings recorded by the most recent
// conversion. Calls are not cumulative.
func (c *Converter) LastWarnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.last) == 0 {
		return nil
	}
	out := make([]Warning, len(c.last))
	copy(out, c.last)
	return out
}

func (c *Converter) remember(warnings []Warning) {
	snapshot := make([]Warning, len(warnings))
	copy(snapshot, warnings)

	c.mu.Lock()
	c.last = snapshot
	c.mu.Unlock()
}

func (s *state) addWarning(warnType converter.WarningType, nodeType, message string) {
	s.warnings = append(s.warnings, Warning{
		Type:     warnType,
		NodeType: nodeType,
		Message:  message,
	})
}

func (s *state) checkContext() error {
	if s.ctx == nil {
		return nil
	}
	return s.ctx.Err()
}
