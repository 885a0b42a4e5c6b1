// Package blocks defines the Notion block model shared by the Markdown
// converters, the batch mutation engine and the Notion adapter.
package blocks

// Kind identifies a block variant. Values are the Notion wire type names.
type Kind string

const (
	KindParagraph        Kind = "paragraph"
	KindHeading1         Kind = "heading_1"
	KindHeading2         Kind = "heading_2"
	KindHeading3         Kind = "heading_3"
	KindBulletedListItem Kind = "bulleted_list_item"
	KindNumberedListItem Kind = "numbered_list_item"
	KindToDo             Kind = "to_do"
	KindCode             Kind = "code"
	KindQuote            Kind = "quote"
	KindDivider          Kind = "divider"
	KindImage            Kind = "image"
	KindUnsupported      Kind = "unsupported"
)

// MaxDepth is the deepest list nesting the API accepts in one request.
const MaxDepth = 3

// MaxHeadingLevel is the deepest heading kind, heading_3.
const MaxHeadingLevel = 3

// Block is a closed set of block variants. Only types in this package
// implement it.
type Block interface {
	Kind() Kind
	sealed()
}

// Link is the target of a linked text run.
type Link struct {
	URL string `json:"url"`
}

// TextRun is one plain-text rich text segment of at most MaxTextLength runes.
type TextRun struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

// Paragraph is a plain text block.
type Paragraph struct {
	RichText []TextRun `json:"rich_text"`
}

// Heading is a heading block. Level is always 1, 2 or 3.
type Heading struct {
	Level    int       `json:"level"`
	RichText []TextRun `json:"rich_text"`
}

// BulletedListItem is an unordered list item. Children is nil when the item
// has no nested content, never an empty slice.
type BulletedListItem struct {
	RichText []TextRun `json:"rich_text"`
	Children []Block   `json:"children,omitempty"`
}

// NumberedListItem is an ordered list item. Children follows the same rule as
// BulletedListItem.
type NumberedListItem struct {
	RichText []TextRun `json:"rich_text"`
	Children []Block   `json:"children,omitempty"`
}

// ToDo is a checklist item. It never carries children.
type ToDo struct {
	RichText []TextRun `json:"rich_text"`
	Checked  bool      `json:"checked"`
}

// Code is a code block. RichText holds the literal source, unnormalized.
type Code struct {
	RichText []TextRun `json:"rich_text"`
	Language string    `json:"language"`
}

// Quote is a quote block.
type Quote struct {
	RichText []TextRun `json:"rich_text"`
}

// Divider is a horizontal rule.
type Divider struct{}

// Image is an externally hosted image.
type Image struct {
	URL     string    `json:"url"`
	Caption []TextRun `json:"caption,omitempty"`
}

// Unsupported stands in for remote block types this model does not cover.
// It is only produced on the read path.
type Unsupported struct {
	Type     string    `json:"type"`
	RichText []TextRun `json:"rich_text,omitempty"`
}

func (Paragraph) Kind() Kind        { return KindParagraph }
func (BulletedListItem) Kind() Kind { return KindBulletedListItem }
func (NumberedListItem) Kind() Kind { return KindNumberedListItem }
func (ToDo) Kind() Kind             { return KindToDo }
func (Code) Kind() Kind             { return KindCode }
func (Quote) Kind() Kind            { return KindQuote }
func (Divider) Kind() Kind          { return KindDivider }
func (Image) Kind() Kind            { return KindImage }
func (Unsupported) Kind() Kind      { return KindUnsupported }

// Kind maps the heading level onto heading_1..heading_3.
func (h Heading) Kind() Kind {
	switch {
	case h.Level <= 1:
		return KindHeading1
	case h.Level == 2:
		return KindHeading2
	default:
		return KindHeading3
	}
}

func (Paragraph) sealed()        {}
func (Heading) sealed()          {}
func (BulletedListItem) sealed() {}
func (NumberedListItem) sealed() {}
func (ToDo) sealed()             {}
func (Code) sealed()             {}
func (Quote) sealed()            {}
func (Divider) sealed()          {}
func (Image) sealed()            {}
func (Unsupported) sealed()      {}

// RichTextOf returns the text runs of b, or nil for blocks without text.
func RichTextOf(b Block) []TextRun {
	switch typed := b.(type) {
	case Paragraph:
		return typed.RichText
	case Heading:
		return typed.RichText
	case BulletedListItem:
		return typed.RichText
	case NumberedListItem:
		return typed.RichText
	case ToDo:
		return typed.RichText
	case Code:
		return typed.RichText
	case Quote:
		return typed.RichText
	case Image:
		return typed.Caption
	case Unsupported:
		return typed.RichText
	default:
		return nil
	}
}

// ChildrenOf returns the nested blocks of a list item, or nil.
func ChildrenOf(b Block) []Block {
	switch typed := b.(type) {
	case BulletedListItem:
		return typed.Children
	case NumberedListItem:
		return typed.Children
	default:
		return nil
	}
}

// PlainText concatenates the content of runs.
func PlainText(runs []TextRun) string {
	switch len(runs) {
	case 0:
		return ""
	case 1:
		return runs[0].Content
	}

	size := 0
	for _, run := range runs {
		size += len(run.Content)
	}
	buf := make([]byte, 0, size)
	for _, run := range runs {
		buf = append(buf, run.Content...)
	}
	return string(buf)
}

// Count returns the number of blocks in the forest, nested children included.
func Count(list []Block) int {
	total := 0
	for _, b := range list {
		total++
		total += Count(ChildrenOf(b))
	}
	return total
}
