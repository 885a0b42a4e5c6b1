package notion

import (
	"github.com/jomei/notionapi"

	"github.com/rgonek/notion-md/blocks"
)

// ToNotion maps blocks onto notionapi request payloads, children included.
func ToNotion(list []blocks.Block) []notionapi.Block {
	if len(list) == 0 {
		return nil
	}

	out := make([]notionapi.Block, 0, len(list))
	for _, b := range list {
		if converted := toNotionBlock(b); converted != nil {
			out = append(out, converted)
		}
	}
	return out
}

func basic(kind blocks.Kind) notionapi.BasicBlock {
	return notionapi.BasicBlock{
		Object: notionapi.ObjectTypeBlock,
		Type:   notionapi.BlockType(kind),
	}
}

func toNotionBlock(b blocks.Block) notionapi.Block {
	switch typed := b.(type) {
	case blocks.Paragraph:
		return &notionapi.ParagraphBlock{
			BasicBlock: basic(blocks.KindParagraph),
			Paragraph:  notionapi.Paragraph{RichText: toRichText(typed.RichText)},
		}
	case blocks.Heading:
		heading := notionapi.Heading{RichText: toRichText(typed.RichText)}
		switch typed.Kind() {
		case blocks.KindHeading1:
			return &notionapi.Heading1Block{BasicBlock: basic(blocks.KindHeading1), Heading1: heading}
		case blocks.KindHeading2:
			return &notionapi.Heading2Block{BasicBlock: basic(blocks.KindHeading2), Heading2: heading}
		default:
			return &notionapi.Heading3Block{BasicBlock: basic(blocks.KindHeading3), Heading3: heading}
		}
	case blocks.BulletedListItem:
		return &notionapi.BulletedListItemBlock{
			BasicBlock:       basic(blocks.KindBulletedListItem),
			BulletedListItem: notionapi.ListItem{RichText: toRichText(typed.RichText), Children: ToNotion(typed.Children)},
		}
	case blocks.NumberedListItem:
		return &notionapi.NumberedListItemBlock{
			BasicBlock:       basic(blocks.KindNumberedListItem),
			NumberedListItem: notionapi.ListItem{RichText: toRichText(typed.RichText), Children: ToNotion(typed.Children)},
		}
	case blocks.ToDo:
		return &notionapi.ToDoBlock{
			BasicBlock: basic(blocks.KindToDo),
			ToDo:       notionapi.ToDo{RichText: toRichText(typed.RichText), Checked: typed.Checked},
		}
	case blocks.Code:
		return &notionapi.CodeBlock{
			BasicBlock: basic(blocks.KindCode),
			Code:       notionapi.Code{RichText: toRichText(typed.RichText), Language: typed.Language},
		}
	case blocks.Quote:
		return &notionapi.QuoteBlock{
			BasicBlock: basic(blocks.KindQuote),
			Quote:      notionapi.Quote{RichText: toRichText(typed.RichText)},
		}
	case blocks.Divider:
		return &notionapi.DividerBlock{
			BasicBlock: basic(blocks.KindDivider),
			Divider:    notionapi.Divider{},
		}
	case blocks.Image:
		return &notionapi.ImageBlock{
			BasicBlock: basic(blocks.KindImage),
			Image: notionapi.Image{
				Caption:  toRichText(typed.Caption),
				Type:     notionapi.FileTypeExternal,
				External: &notionapi.FileObject{URL: typed.URL},
			},
		}
	default:
		// Unsupported blocks only come from reads and cannot be written back.
		return nil
	}
}

func toRichText(runs []blocks.TextRun) []notionapi.RichText {
	out := make([]notionapi.RichText, 0, len(runs))
	for _, run := range runs {
		text := &notionapi.Text{Content: run.Content}
		if run.Link != nil {
			text.Link = &notionapi.Link{Url: run.Link.URL}
		}
		out = append(out, notionapi.RichText{Type: notionapi.ObjectTypeText, Text: text})
	}
	return out
}

// FromNotion maps a fetched block onto the local model. Types outside the
// model become blocks.Unsupported carrying any text they have. Nested
// children are attached separately by the client.
func FromNotion(b notionapi.Block) blocks.Block {
	switch typed := b.(type) {
	case *notionapi.ParagraphBlock:
		return blocks.Paragraph{RichText: fromRichText(typed.Paragraph.RichText)}
	case *notionapi.Heading1Block:
		return blocks.Heading{Level: 1, RichText: fromRichText(typed.Heading1.RichText)}
	case *notionapi.Heading2Block:
		return blocks.Heading{Level: 2, RichText: fromRichText(typed.Heading2.RichText)}
	case *notionapi.Heading3Block:
		return blocks.Heading{Level: 3, RichText: fromRichText(typed.Heading3.RichText)}
	case *notionapi.BulletedListItemBlock:
		return blocks.BulletedListItem{RichText: fromRichText(typed.BulletedListItem.RichText)}
	case *notionapi.NumberedListItemBlock:
		return blocks.NumberedListItem{RichText: fromRichText(typed.NumberedListItem.RichText)}
	case *notionapi.ToDoBlock:
		return blocks.ToDo{RichText: fromRichText(typed.ToDo.RichText), Checked: typed.ToDo.Checked}
	case *notionapi.CodeBlock:
		return blocks.Code{RichText: fromRichText(typed.Code.RichText), Language: typed.Code.Language}
	case *notionapi.QuoteBlock:
		return blocks.Quote{RichText: fromRichText(typed.Quote.RichText)}
	case *notionapi.DividerBlock:
		return blocks.Divider{}
	case *notionapi.ImageBlock:
		return fromImage(typed)
	case *notionapi.ToggleBlock:
		return blocks.Unsupported{Type: string(typed.GetType()), RichText: fromRichText(typed.Toggle.RichText)}
	case *notionapi.CalloutBlock:
		return blocks.Unsupported{Type: string(typed.GetType()), RichText: fromRichText(typed.Callout.RichText)}
	case nil:
		return blocks.Unsupported{Type: string(blocks.KindUnsupported)}
	default:
		return blocks.Unsupported{Type: string(b.GetType())}
	}
}

func fromImage(image *notionapi.ImageBlock) blocks.Block {
	var url string
	switch {
	case image.Image.External != nil:
		url = image.Image.External.URL
	case image.Image.File != nil:
		url = image.Image.File.URL
	}
	if url == "" {
		return blocks.Unsupported{Type: string(blocks.KindImage), RichText: fromRichText(image.Image.Caption)}
	}
	return blocks.Image{URL: url, Caption: fromRichText(image.Image.Caption)}
}

func fromRichText(rich []notionapi.RichText) []blocks.TextRun {
	if len(rich) == 0 {
		return nil
	}

	out := make([]blocks.TextRun, 0, len(rich))
	for _, rt := range rich {
		run := blocks.TextRun{Content: rt.PlainText}
		if rt.Text != nil {
			if run.Content == "" {
				run.Content = rt.Text.Content
			}
			if rt.Text.Link != nil && rt.Text.Link.Url != "" {
				run.Link = &blocks.Link{URL: rt.Text.Link.Url}
			}
		}
		if run.Link == nil && rt.Href != "" {
			run.Link = &blocks.Link{URL: rt.Href}
		}
		out = append(out, run)
	}
	return out
}

// withChildren attaches fetched children to a list item. Other blocks return
// the children as trailing siblings instead.
func withChildren(b blocks.Block, children []blocks.Block) (blocks.Block, []blocks.Block) {
	if len(children) == 0 {
		return b, nil
	}
	switch typed := b.(type) {
	case blocks.BulletedListItem:
		typed.Children = children
		return typed, nil
	case blocks.NumberedListItem:
		typed.Children = children
		return typed, nil
	default:
		return b, children
	}
}

// FromNotionBlocks maps a payload whose children are embedded inline, such
// as an append request body.
func FromNotionBlocks(list []notionapi.Block) []blocks.Block {
	if len(list) == 0 {
		return nil
	}

	out := make([]blocks.Block, 0, len(list))
	for _, b := range list {
		converted, trailing := withChildren(FromNotion(b), FromNotionBlocks(embeddedChildren(b)))
		out = append(out, converted)
		out = append(out, trailing...)
	}
	return out
}

func embeddedChildren(b notionapi.Block) []notionapi.Block {
	switch typed := b.(type) {
	case *notionapi.BulletedListItemBlock:
		return typed.BulletedListItem.Children
	case *notionapi.NumberedListItemBlock:
		return typed.NumberedListItem.Children
	case *notionapi.ParagraphBlock:
		return typed.Paragraph.Children
	case *notionapi.ToggleBlock:
		return typed.Toggle.Children
	default:
		return nil
	}
}
