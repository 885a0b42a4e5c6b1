package mdconverter

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rgonek/notion-md/blocks"
	"github.com/rgonek/notion-md/converter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConverter(t testing.TB, cfg Config) *Converter {
	t.Helper()
	conv, err := New(cfg)
	require.NoError(t, err)
	return conv
}

func convert(t *testing.T, markdown string) Result {
	t.Helper()
	result, err := newTestConverter(t, Config{}).Convert(markdown)
	require.NoError(t, err)
	return result
}

func textOf(t *testing.T, block blocks.Block) string {
	t.Helper()
	return blocks.PlainText(blocks.RichTextOf(block))
}

func TestConvertEmptyDocument(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n\t\n"} {
		result := convert(t, input)
		assert.Empty(t, result.Blocks)
		assert.Empty(t, result.Warnings)
	}
}

func TestConvertHeading(t *testing.T) {
	result := convert(t, "# Title")

	require.Len(t, result.Blocks, 1)
	heading, ok := result.Blocks[0].(blocks.Heading)
	require.True(t, ok)
	assert.Equal(t, blocks.KindHeading1, heading.Kind())
	assert.Equal(t, []blocks.TextRun{{Content: "Title"}}, heading.RichText)
}

func TestConvertHeadingLevelsClamp(t *testing.T) {
	expected := []blocks.Kind{
		blocks.KindHeading1,
		blocks.KindHeading2,
		blocks.KindHeading3,
		blocks.KindHeading3,
		blocks.KindHeading3,
		blocks.KindHeading3,
	}

	for level := 1; level <= 6; level++ {
		t.Run(fmt.Sprintf("h%d", level), func(t *testing.T) {
			result := convert(t, strings.Repeat("#", level)+" Heading")
			require.Len(t, result.Blocks, 1)
			assert.Equal(t, expected[level-1], result.Blocks[0].Kind())
		})
	}
}

func TestConvertHeadingOffset(t *testing.T) {
	conv := newTestConverter(t, Config{HeadingOffset: 1})

	result, err := conv.Convert("# Shifted")
	require.NoError(t, err)
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, blocks.KindHeading2, result.Blocks[0].Kind())
}

func TestConvertTaskItems(t *testing.T) {
	result := convert(t, "- [ ] Task\n- [x] Done")

	require.Len(t, result.Blocks, 2)

	open, ok := result.Blocks[0].(blocks.ToDo)
	require.True(t, ok)
	assert.False(t, open.Checked)
	assert.Equal(t, "Task", blocks.PlainText(open.RichText))

	done, ok := result.Blocks[1].(blocks.ToDo)
	require.True(t, ok)
	assert.True(t, done.Checked)
	assert.Equal(t, "Done", blocks.PlainText(done.RichText))
}

func TestConvertTaskItemNestedListFlattens(t *testing.T) {
	result := convert(t, "- [ ] Parent\n  - child")

	require.Len(t, result.Blocks, 2)
	assert.Equal(t, blocks.KindToDo, result.Blocks[0].Kind())
	assert.Equal(t, blocks.KindBulletedListItem, result.Blocks[1].Kind())
	assert.Equal(t, "child", textOf(t, result.Blocks[1]))

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, converter.WarningDroppedFeature, result.Warnings[0].Type)
}

func TestConvertMalformedImageFallsBack(t *testing.T) {
	result := convert(t, "![alt](not-a-url)")

	require.Len(t, result.Blocks, 1)
	paragraph, ok := result.Blocks[0].(blocks.Paragraph)
	require.True(t, ok)
	assert.Contains(t, blocks.PlainText(paragraph.RichText), "[Image: alt]")
}

func TestConvertParagraphSplitsAroundImages(t *testing.T) {
	result := convert(t, "Before ![pic](https://x.test/p.png) after")

	require.Len(t, result.Blocks, 3)
	assert.Equal(t, "Before", textOf(t, result.Blocks[0]))

	image, ok := result.Blocks[1].(blocks.Image)
	require.True(t, ok)
	assert.Equal(t, "https://x.test/p.png", image.URL)
	assert.Equal(t, "pic", blocks.PlainText(image.Caption))

	assert.Equal(t, "after", textOf(t, result.Blocks[2]))
}

func TestConvertImageOnlyParagraph(t *testing.T) {
	result := convert(t, "![](https://x.test/only.png)")

	require.Len(t, result.Blocks, 1)
	image, ok := result.Blocks[0].(blocks.Image)
	require.True(t, ok)
	assert.Nil(t, image.Caption)
}

func TestConvertBlockquoteLines(t *testing.T) {
	result := convert(t, "> Line 1\n> Line 2")

	require.Len(t, result.Blocks, 2)
	for i, expected := range []string{"Line 1", "Line 2"} {
		quote, ok := result.Blocks[i].(blocks.Quote)
		require.True(t, ok)
		assert.Equal(t, expected, blocks.PlainText(quote.RichText))
	}
}

func TestConvertBlockquoteParagraphs(t *testing.T) {
	result := convert(t, "> First\n>\n> **Second**")

	require.Len(t, result.Blocks, 2)
	assert.Equal(t, "First", textOf(t, result.Blocks[0]))
	assert.Equal(t, "Second", textOf(t, result.Blocks[1]))
}

func TestConvertBlockquoteWithList(t *testing.T) {
	result := convert(t, "> - item\n> - other")

	require.Len(t, result.Blocks, 2)
	assert.Equal(t, blocks.KindBulletedListItem, result.Blocks[0].Kind())
	assert.Equal(t, "other", textOf(t, result.Blocks[1]))
}

func TestConvertInlineFormattingIsStripped(t *testing.T) {
	result := convert(t, "Some **bold**, _italic_, ~~gone~~ and `code` with [a link](https://x.test).")

	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "Some bold, italic, gone and code with a link.", textOf(t, result.Blocks[0]))
}

func TestConvertSoftAndHardBreaks(t *testing.T) {
	result := convert(t, "one\ntwo  \nthree\\\nfour")

	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "one\ntwo\nthree\nfour", textOf(t, result.Blocks[0]))
}

func TestConvertCodeBlocks(t *testing.T) {
	result := convert(t, "```js\nconst a = **1**;\n```\n\n    indented code\n")

	require.Len(t, result.Blocks, 2)

	fenced, ok := result.Blocks[0].(blocks.Code)
	require.True(t, ok)
	assert.Equal(t, "javascript", fenced.Language)
	assert.Equal(t, "const a = **1**;", blocks.PlainText(fenced.RichText))

	indented, ok := result.Blocks[1].(blocks.Code)
	require.True(t, ok)
	assert.Equal(t, blocks.DefaultLanguage, indented.Language)
	assert.Equal(t, "indented code", blocks.PlainText(indented.RichText))
}

func TestConvertCodeLanguageMap(t *testing.T) {
	conv := newTestConverter(t, Config{LanguageMap: map[string]string{"GQL": "graphql"}})

	result, err := conv.Convert("```gql\n{ me }\n```")
	require.NoError(t, err)
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "graphql", result.Blocks[0].(blocks.Code).Language)
}

func TestConvertDividerAndHTML(t *testing.T) {
	result := convert(t, "Intro\n\n---\n\n<div>raw</div>\n")

	require.Len(t, result.Blocks, 3)
	assert.Equal(t, blocks.KindParagraph, result.Blocks[0].Kind())
	assert.Equal(t, blocks.KindDivider, result.Blocks[1].Kind())
	assert.Equal(t, "<div>raw</div>", textOf(t, result.Blocks[2]))
}

func TestConvertUnknownNodeWarns(t *testing.T) {
	result := convert(t, "Before\n\n| A | B |\n| --- | --- |\n| 1 | 2 |\n\nAfter")

	require.Len(t, result.Blocks, 2)
	assert.Equal(t, "Before", textOf(t, result.Blocks[0]))
	assert.Equal(t, "After", textOf(t, result.Blocks[1]))

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, converter.WarningUnknownNode, result.Warnings[0].Type)
	assert.Equal(t, "Unknown token type: Table", result.Warnings[0].Message)
}

func TestConvertNestedLists(t *testing.T) {
	result := convert(t, "1. one\n   - inner\n2. two")

	require.Len(t, result.Blocks, 2)
	first, ok := result.Blocks[0].(blocks.NumberedListItem)
	require.True(t, ok)
	assert.Equal(t, "one", blocks.PlainText(first.RichText))
	require.Len(t, first.Children, 1)
	assert.Equal(t, blocks.KindNumberedListItem, first.Children[0].Kind())
	assert.Equal(t, "inner", textOf(t, first.Children[0]))

	second, ok := result.Blocks[1].(blocks.NumberedListItem)
	require.True(t, ok)
	assert.Nil(t, second.Children)
}

func TestConvertNestedListKindFollowsOuterList(t *testing.T) {
	result := convert(t, "- outer\n  1. nested\n     - deeper")

	require.Len(t, result.Blocks, 1)
	outer, ok := result.Blocks[0].(blocks.BulletedListItem)
	require.True(t, ok)
	require.Len(t, outer.Children, 1)

	nested, ok := outer.Children[0].(blocks.BulletedListItem)
	require.True(t, ok)
	assert.Equal(t, "nested", blocks.PlainText(nested.RichText))
	require.Len(t, nested.Children, 1)
	assert.Equal(t, blocks.KindBulletedListItem, nested.Children[0].Kind())
}

func TestConvertListItemWithInlineImage(t *testing.T) {
	result := convert(t, "- see ![a](http://x.io/a.png) here")

	require.Len(t, result.Blocks, 1)
	item, ok := result.Blocks[0].(blocks.BulletedListItem)
	require.True(t, ok)
	assert.Equal(t, "see a here", blocks.PlainText(item.RichText))

	require.Len(t, item.Children, 1)
	image, ok := item.Children[0].(blocks.Image)
	require.True(t, ok)
	assert.Equal(t, "http://x.io/a.png", image.URL)
}

func TestConvertReferenceLinkText(t *testing.T) {
	result := convert(t, "Text with [ref link][r]\n\n[r]: https://x.test/ref")

	require.NotEmpty(t, result.Blocks)
	assert.Equal(t, "Text with ref link", textOf(t, result.Blocks[0]))
}

func TestConvertDeepListFlattensToSiblings(t *testing.T) {
	result := convert(t, "- l1\n  - l2\n    - l3\n      - l4")

	require.Len(t, result.Blocks, 1)
	l1 := result.Blocks[0].(blocks.BulletedListItem)
	assert.Equal(t, "l1", blocks.PlainText(l1.RichText))

	require.Len(t, l1.Children, 1)
	l2 := l1.Children[0].(blocks.BulletedListItem)
	assert.Equal(t, "l2", blocks.PlainText(l2.RichText))

	require.Len(t, l2.Children, 2)
	l3 := l2.Children[0].(blocks.BulletedListItem)
	l4 := l2.Children[1].(blocks.BulletedListItem)
	assert.Equal(t, "l3", blocks.PlainText(l3.RichText))
	assert.Nil(t, l3.Children)
	assert.Equal(t, "l4", blocks.PlainText(l4.RichText))

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, converter.WarningDepthExceeded, result.Warnings[0].Type)
	assert.Equal(t,
		"Nested list at depth 4 exceeds maximum depth of 3. Flattening to siblings.",
		result.Warnings[0].Message,
	)
}

func TestConvertDeepListKeepsAllContent(t *testing.T) {
	input := "- a\n  - b\n    - c\n      - d\n        - e\n      - f\n- g"
	result := convert(t, input)

	var texts []string
	var walk func([]blocks.Block, int)
	walk = func(list []blocks.Block, depth int) {
		for _, block := range list {
			assert.LessOrEqual(t, depth, blocks.MaxDepth)
			texts = append(texts, textOf(t, block))
			walk(blocks.ChildrenOf(block), depth+1)
		}
	}
	walk(result.Blocks, 1)

	assert.ElementsMatch(t, []string{"a", "b", "c", "d", "e", "f", "g"}, texts)
	assert.NotEmpty(t, result.Warnings)
}

func TestConvertListItemWithCodeChild(t *testing.T) {
	result := convert(t, "- step\n\n  ```sh\n  make\n  ```")

	require.Len(t, result.Blocks, 1)
	item := result.Blocks[0].(blocks.BulletedListItem)
	require.Len(t, item.Children, 1)
	code, ok := item.Children[0].(blocks.Code)
	require.True(t, ok)
	assert.Equal(t, "shell", code.Language)
}

func TestConvertFrontMatter(t *testing.T) {
	result := convert(t, "---\ntitle: Hello\n---\n# Body")

	assert.Equal(t, "Hello", result.FrontMatter["title"])
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "Body", textOf(t, result.Blocks[0]))
}

func TestConvertFrontMatterKept(t *testing.T) {
	conv := newTestConverter(t, Config{FrontMatter: FrontMatterKeep})

	result, err := conv.Convert("---\ntitle: Hello\n---\n# Body")
	require.NoError(t, err)
	assert.Nil(t, result.FrontMatter)
	assert.Greater(t, len(result.Blocks), 1)
}

func TestConvertInvalidFrontMatterWarns(t *testing.T) {
	result := convert(t, "---\ntitle: [unclosed\n---\nBody")

	assert.Nil(t, result.FrontMatter)
	assert.NotEmpty(t, result.Blocks)
	require.NotEmpty(t, result.Warnings)
	assert.Equal(t, converter.WarningInvalidFrontMatter, result.Warnings[0].Type)
}

func TestLastWarningsIsLastCallOnly(t *testing.T) {
	conv := newTestConverter(t, Config{})

	_, err := conv.Convert("| A |\n| --- |\n| 1 |")
	require.NoError(t, err)
	require.Len(t, conv.LastWarnings(), 1)

	_, err = conv.Convert("plain")
	require.NoError(t, err)
	assert.Empty(t, conv.LastWarnings())
}

func TestLastWarningsReturnsCopy(t *testing.T) {
	conv := newTestConverter(t, Config{})

	_, err := conv.Convert("| A |\n| --- |\n| 1 |")
	require.NoError(t, err)

	snapshot := conv.LastWarnings()
	snapshot[0].Message = "mutated"
	assert.Equal(t, "Unknown token type: Table", conv.LastWarnings()[0].Message)
}

func TestConcurrentConversionsKeepWarningsSeparate(t *testing.T) {
	conv := newTestConverter(t, Config{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				result, err := conv.Convert("| A |\n| --- |\n| 1 |")
				assert.NoError(t, err)
				assert.Len(t, result.Warnings, 1)
				return
			}
			result, err := conv.Convert("clean paragraph")
			assert.NoError(t, err)
			assert.Empty(t, result.Warnings)
		}(i)
	}
	wg.Wait()
}

func TestConvertWithContextCancelled(t *testing.T) {
	conv := newTestConverter(t, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conv.ConvertWithContext(ctx, "# Title\n\nBody")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConvertLongParagraphIsChunked(t *testing.T) {
	result := convert(t, strings.Repeat("word ", 900))

	require.Len(t, result.Blocks, 1)
	runs := blocks.RichTextOf(result.Blocks[0])
	assert.Len(t, runs, 3)
	assert.Equal(t, strings.TrimSpace(strings.Repeat("word ", 900)), blocks.PlainText(runs))
}
