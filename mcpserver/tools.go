package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/rgonek/notion-md/batch"
	"github.com/rgonek/notion-md/blocks"
	"github.com/rgonek/notion-md/mdconverter"
	"github.com/rgonek/notion-md/notion"
	"github.com/rgonek/notion-md/projector"
	"github.com/rgonek/notion-md/rewrite"
)

// MutationOutput reports an append or replace.
type MutationOutput struct {
	PageID           string   `json:"page_id"`
	BlocksAdded      int      `json:"blocks_added"`
	BlocksDeleted    int      `json:"blocks_deleted"`
	BatchCount       int      `json:"batch_count"`
	FailedBatches    []string `json:"failed_batches,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
	DeleteErrors     []string `json:"delete_errors,omitempty"`
	MoreDeleteErrors int      `json:"more_delete_errors,omitempty"`
	Message          string   `json:"message"`
}

// MarkdownOutput is a page or block rendered as Markdown.
type MarkdownOutput struct {
	ID         string `json:"id"`
	Markdown   string `json:"markdown"`
	Truncated  bool   `json:"truncated"`
	TotalChars int    `json:"total_chars"`
}

// SearchOutput lists matching pages.
type SearchOutput struct {
	Results []PageResult `json:"results"`
	Count   int          `json:"count"`
}

// PageResult is one search hit.
type PageResult struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	URL              string `json:"url"`
	Preview          string `json:"preview,omitempty"`
	PreviewTruncated bool   `json:"preview_truncated,omitempty"`
}

// WarningOutput is one conversion warning.
type WarningOutput struct {
	Type     string `json:"type"`
	NodeType string `json:"node_type,omitempty"`
	Message  string `json:"message"`
}

// ConvertOutput is the dry-run result of convert_markdown.
type ConvertOutput struct {
	BlockCount int             `json:"block_count"`
	TotalCount int             `json:"total_count"`
	Batches    int             `json:"batches"`
	BlocksJSON string          `json:"blocks_json"`
	Warnings   []WarningOutput `json:"warnings,omitempty"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "append_markdown",
		Description: "Convert Markdown to Notion blocks and append them to a page",
	}, s.handleAppend)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "replace_page_content",
		Description: "Replace a page's content with converted Markdown. New content is written before old content is removed",
	}, s.handleReplace)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_page_markdown",
		Description: "Read a Notion page as Markdown",
	}, s.handleGetPage)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_block_markdown",
		Description: "Read a Notion block and its children as Markdown",
	}, s.handleGetBlock)

	if s.ports.Searcher != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "search_pages",
			Description: "Search Notion pages by title, optionally with Markdown previews",
		}, s.handleSearch)
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "convert_markdown",
		Description: "Convert Markdown to Notion block JSON without writing anything",
	}, s.handleConvert)
}

func (s *Server) handleAppend(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MarkdownInput,
) (*mcp.CallToolResult, MutationOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, MutationOutput{}, err
	}

	summary, err := s.rewriter.Append(ctx, input.PageID, input.Markdown)
	if err != nil {
		return nil, MutationOutput{}, toolError(err)
	}
	return nil, mutationOutput(input.PageID, summary), nil
}

func (s *Server) handleReplace(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReplaceInput,
) (*mcp.CallToolResult, MutationOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, MutationOutput{}, err
	}

	opts := rewrite.Options{ValidateBeforeDelete: s.opts.ValidateBeforeDelete}
	if input.ValidateBeforeDelete != nil {
		opts.ValidateBeforeDelete = *input.ValidateBeforeDelete
	}

	summary, err := s.rewriter.Rewrite(ctx, input.PageID, input.Markdown, opts)
	if err != nil {
		s.logger.Warn("replace_page_content failed", zap.String("page_id", input.PageID), zap.Error(err))
		return nil, MutationOutput{}, toolError(err)
	}
	return nil, mutationOutput(input.PageID, summary), nil
}

func (s *Server) handleGetPage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReadInput,
) (*mcp.CallToolResult, MarkdownOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, MarkdownOutput{}, err
	}

	projection, err := s.projector.Page(ctx, input.ID, s.maxChars(input.MaxChars))
	if err != nil {
		return nil, MarkdownOutput{}, fmt.Errorf("read page: %w", err)
	}
	return nil, markdownOutput(projection), nil
}

func (s *Server) handleGetBlock(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReadInput,
) (*mcp.CallToolResult, MarkdownOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, MarkdownOutput{}, err
	}

	projection, err := s.projector.Block(ctx, input.ID, s.maxChars(input.MaxChars))
	if err != nil {
		return nil, MarkdownOutput{}, fmt.Errorf("read block: %w", err)
	}
	return nil, markdownOutput(projection), nil
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, SearchOutput{}, err
	}

	refs, err := s.ports.Searcher.Search(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, SearchOutput{}, fmt.Errorf("search pages: %w", err)
	}

	output := SearchOutput{
		Results: make([]PageResult, len(refs)),
		Count:   len(refs),
	}
	for i, ref := range refs {
		output.Results[i] = PageResult{ID: ref.ID, Title: ref.Title, URL: ref.URL}
	}

	if input.IncludePreview && len(refs) > 0 {
		ids := make([]string, len(refs))
		for i, ref := range refs {
			ids[i] = ref.ID
		}
		for i, preview := range s.projector.Enrich(ctx, ids, s.opts.PreviewChars) {
			output.Results[i].Preview = preview.Markdown
			output.Results[i].PreviewTruncated = preview.Truncated
		}
	}

	return nil, output, nil
}

func (s *Server) handleConvert(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConvertInput,
) (*mcp.CallToolResult, ConvertOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, ConvertOutput{}, err
	}

	result, err := s.converter.ConvertWithContext(ctx, input.Markdown)
	if err != nil {
		return nil, ConvertOutput{}, fmt.Errorf("convert markdown: %w", err)
	}

	payload, err := json.MarshalIndent(notion.ToNotion(result.Blocks), "", "  ")
	if err != nil {
		return nil, ConvertOutput{}, fmt.Errorf("encode blocks: %w", err)
	}

	return nil, ConvertOutput{
		BlockCount: len(result.Blocks),
		TotalCount: blocks.Count(result.Blocks),
		Batches:    len(batch.Partition(result.Blocks, batch.DefaultBatchSize)),
		BlocksJSON: string(payload),
		Warnings:   warningOutputs(result.Warnings),
	}, nil
}

func (s *Server) maxChars(requested int) int {
	if requested > 0 {
		return requested
	}
	return s.opts.MaxChars
}

// toolError keeps the sentinel text readable for the calling model.
func toolError(err error) error {
	switch {
	case errors.Is(err, rewrite.ErrConversionEmpty):
		return fmt.Errorf("nothing to write: %w", err)
	case errors.Is(err, rewrite.ErrAppendFailed):
		return err
	default:
		return fmt.Errorf("notion request failed: %w", err)
	}
}

func mutationOutput(pageID string, summary rewrite.Summary) MutationOutput {
	return MutationOutput{
		PageID:           pageID,
		BlocksAdded:      summary.BlocksAdded,
		BlocksDeleted:    summary.BlocksDeleted,
		BatchCount:       summary.BatchCount,
		FailedBatches:    summary.FailedBatches,
		Warnings:         summary.Warnings,
		DeleteErrors:     summary.DeleteErrors,
		MoreDeleteErrors: summary.MoreDeleteErrors,
		Message:          summary.String(),
	}
}

func markdownOutput(p projector.Projection) MarkdownOutput {
	return MarkdownOutput{
		ID:         p.ID,
		Markdown:   p.Markdown,
		Truncated:  p.Truncated,
		TotalChars: p.TotalChars,
	}
}

func warningOutputs(warnings []mdconverter.Warning) []WarningOutput {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]WarningOutput, len(warnings))
	for i, w := range warnings {
		out[i] = WarningOutput{Type: string(w.Type), NodeType: w.NodeType, Message: w.Message}
	}
	return out
}
