package mcpserver

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/rgonek/notion-md/notion"
)

const (
	defaultPreviewChars = 500
	maxSearchLimit      = 100
)

// notionID accepts anything NormalizeID understands.
var notionID = validation.By(func(value any) error {
	raw, _ := value.(string)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if _, err := notion.NormalizeID(raw); err != nil {
		return validation.NewError("validation_notion_id", "must be a Notion id or page URL")
	}
	return nil
})

var nonBlank = validation.By(func(value any) error {
	raw, _ := value.(string)
	if strings.TrimSpace(raw) == "" {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
})

// MarkdownInput is shared by append_markdown and replace_page_content.
type MarkdownInput struct {
	PageID   string `json:"page_id" jsonschema:"Notion page or block id, or page URL"`
	Markdown string `json:"markdown" jsonschema:"GitHub flavored Markdown to write"`
}

func (in MarkdownInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.PageID, validation.Required, notionID),
		validation.Field(&in.Markdown, nonBlank),
	)
}

// ReplaceInput is the input of replace_page_content.
type ReplaceInput struct {
	PageID               string `json:"page_id" jsonschema:"Notion page or block id, or page URL"`
	Markdown             string `json:"markdown" jsonschema:"GitHub flavored Markdown that replaces the current content"`
	ValidateBeforeDelete *bool  `json:"validate_before_delete,omitempty" jsonschema:"re-check the page before deleting old content"`
}

func (in ReplaceInput) Validate() error {
	return MarkdownInput{PageID: in.PageID, Markdown: in.Markdown}.Validate()
}

// ReadInput is the input of get_page_markdown and get_block_markdown.
type ReadInput struct {
	ID       string `json:"id" jsonschema:"Notion page or block id, or page URL"`
	MaxChars int    `json:"max_chars,omitempty" jsonschema:"maximum characters to return (default 20000)"`
}

func (in ReadInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.ID, validation.Required, notionID),
		validation.Field(&in.MaxChars, validation.Min(0)),
	)
}

// SearchInput is the input of search_pages.
type SearchInput struct {
	Query          string `json:"query" jsonschema:"text to match against page titles"`
	Limit          int    `json:"limit,omitempty" jsonschema:"maximum number of pages (default 10, max 100)"`
	IncludePreview bool   `json:"include_preview,omitempty" jsonschema:"attach a short Markdown preview of each page"`
}

func (in SearchInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Limit, validation.Min(0), validation.Max(maxSearchLimit)),
	)
}

// ConvertInput is the input of convert_markdown.
type ConvertInput struct {
	Markdown string `json:"markdown" jsonschema:"Markdown to convert without touching Notion"`
}

func (in ConvertInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Markdown, nonBlank),
	)
}
