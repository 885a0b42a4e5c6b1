package notion

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgonek/notion-md/batch"
	"github.com/rgonek/notion-md/blocks"
)

const (
	pageID  = "0123456789abcdef0123456789abcdef"
	pageIDD = "01234567-89ab-cdef-0123-456789abcdef"
)

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{pageID, pageIDD},
		{pageIDD, pageIDD},
		{"  " + pageIDD + "  ", pageIDD},
		{"0123456789ABCDEF0123456789ABCDEF", pageIDD},
		{"https://www.notion.so/acme/My-Page-" + pageID, pageIDD},
		{"https://www.notion.so/acme/My-Page-" + pageID + "?pvs=4", pageIDD},
		{"https://www.notion.so/" + pageID + "#heading", pageIDD},
		{"https://www.notion.so/acme/Page-" + pageID + "/", pageIDD},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeID(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeIDInvalid(t *testing.T) {
	for _, in := range []string{"", "page", "https://www.notion.so/acme/My-Page", "0123456789abcdef"} {
		_, err := NormalizeID(in)
		require.ErrorIs(t, err, ErrInvalidID, in)
	}
}

func TestToNotion(t *testing.T) {
	out := ToNotion([]blocks.Block{
		blocks.NewHeading(2, "Title"),
		blocks.NewBulletedListItem("parent", blocks.NewBulletedListItem("child")),
		blocks.NewToDo("task", true),
		blocks.NewCode("x := 1", "go"),
		blocks.NewDivider(),
		blocks.NewImage("https://x.test/a.png", "alt"),
		blocks.Paragraph{RichText: []blocks.TextRun{{Content: "docs", Link: &blocks.Link{URL: "https://x.test"}}}},
		blocks.Unsupported{Type: "toggle"},
	})
	require.Len(t, out, 7)

	heading, ok := out[0].(*notionapi.Heading2Block)
	require.True(t, ok)
	assert.Equal(t, notionapi.BlockType("heading_2"), heading.Type)
	assert.Equal(t, notionapi.ObjectTypeBlock, heading.Object)
	assert.Equal(t, "Title", heading.Heading2.RichText[0].Text.Content)

	list, ok := out[1].(*notionapi.BulletedListItemBlock)
	require.True(t, ok)
	require.Len(t, list.BulletedListItem.Children, 1)
	_, ok = list.BulletedListItem.Children[0].(*notionapi.BulletedListItemBlock)
	assert.True(t, ok)

	todo, ok := out[2].(*notionapi.ToDoBlock)
	require.True(t, ok)
	assert.True(t, todo.ToDo.Checked)

	code, ok := out[3].(*notionapi.CodeBlock)
	require.True(t, ok)
	assert.Equal(t, "go", code.Code.Language)

	_, ok = out[4].(*notionapi.DividerBlock)
	assert.True(t, ok)

	image, ok := out[5].(*notionapi.ImageBlock)
	require.True(t, ok)
	assert.Equal(t, notionapi.FileTypeExternal, image.Image.Type)
	assert.Equal(t, "https://x.test/a.png", image.Image.External.URL)

	para, ok := out[6].(*notionapi.ParagraphBlock)
	require.True(t, ok)
	require.NotNil(t, para.Paragraph.RichText[0].Text.Link)
	assert.Equal(t, "https://x.test", para.Paragraph.RichText[0].Text.Link.Url)
}

func TestToNotionLeafListItemHasNoChildren(t *testing.T) {
	out := ToNotion([]blocks.Block{blocks.NewNumberedListItem("leaf")})
	item := out[0].(*notionapi.NumberedListItemBlock)
	assert.Nil(t, item.NumberedListItem.Children)
}

func richText(text string) []notionapi.RichText {
	return []notionapi.RichText{{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: text}, PlainText: text}}
}

func TestFromNotion(t *testing.T) {
	tests := []struct {
		name string
		in   notionapi.Block
		want blocks.Block
	}{
		{"paragraph", &notionapi.ParagraphBlock{Paragraph: notionapi.Paragraph{RichText: richText("p")}}, blocks.Paragraph{RichText: []blocks.TextRun{{Content: "p"}}}},
		{"heading", &notionapi.Heading3Block{Heading3: notionapi.Heading{RichText: richText("h")}}, blocks.Heading{Level: 3, RichText: []blocks.TextRun{{Content: "h"}}}},
		{"todo", &notionapi.ToDoBlock{ToDo: notionapi.ToDo{RichText: richText("t"), Checked: true}}, blocks.ToDo{RichText: []blocks.TextRun{{Content: "t"}}, Checked: true}},
		{"code", &notionapi.CodeBlock{Code: notionapi.Code{RichText: richText("x"), Language: "go"}}, blocks.Code{RichText: []blocks.TextRun{{Content: "x"}}, Language: "go"}},
		{"divider", &notionapi.DividerBlock{}, blocks.Divider{}},
		{
			"image",
			&notionapi.ImageBlock{Image: notionapi.Image{Type: notionapi.FileTypeExternal, External: &notionapi.FileObject{URL: "https://x.test/i.png"}}},
			blocks.Image{URL: "https://x.test/i.png"},
		},
		{
			"toggle",
			&notionapi.ToggleBlock{BasicBlock: notionapi.BasicBlock{Type: notionapi.BlockType("toggle")}, Toggle: notionapi.Toggle{RichText: richText("more")}},
			blocks.Unsupported{Type: "toggle", RichText: []blocks.TextRun{{Content: "more"}}},
		},
		{
			"embed",
			&notionapi.EmbedBlock{BasicBlock: notionapi.BasicBlock{Type: notionapi.BlockType("embed")}},
			blocks.Unsupported{Type: "embed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromNotion(tt.in))
		})
	}
}

func TestFromNotionLinks(t *testing.T) {
	got := FromNotion(&notionapi.ParagraphBlock{Paragraph: notionapi.Paragraph{RichText: []notionapi.RichText{
		{Text: &notionapi.Text{Content: "a", Link: &notionapi.Link{Url: "https://a.test"}}, PlainText: "a", Href: "https://a.test"},
		{PlainText: "b", Href: "https://b.test"},
	}}})

	assert.Equal(t, blocks.Paragraph{RichText: []blocks.TextRun{
		{Content: "a", Link: &blocks.Link{URL: "https://a.test"}},
		{Content: "b", Link: &blocks.Link{URL: "https://b.test"}},
	}}, got)
}

type fakeBlocks struct {
	children  map[string][]notionapi.Block
	byID      map[string]notionapi.Block
	appended  [][]notionapi.Block
	deleted   []string
	err       error
	pageSizes []int
}

func (f *fakeBlocks) AppendChildren(_ context.Context, id notionapi.BlockID, req *notionapi.AppendBlockChildrenRequest) (*notionapi.AppendBlockChildrenResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.appended = append(f.appended, req.Children)
	resp := &notionapi.AppendBlockChildrenResponse{}
	for i := range req.Children {
		resp.Results = append(resp.Results, &notionapi.ParagraphBlock{
			BasicBlock: notionapi.BasicBlock{ID: notionapi.BlockID(string(id) + "-" + strconv.Itoa(i))},
		})
	}
	return resp, nil
}

func (f *fakeBlocks) GetChildren(_ context.Context, id notionapi.BlockID, pagination *notionapi.Pagination) (*notionapi.GetChildrenResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.pageSizes = append(f.pageSizes, pagination.PageSize)

	all := f.children[string(id)]
	start := 0
	if pagination.StartCursor != "" {
		start, _ = strconv.Atoi(string(pagination.StartCursor))
	}
	end := min(start+pagination.PageSize, len(all))

	resp := &notionapi.GetChildrenResponse{Results: all[start:end]}
	if end < len(all) {
		resp.HasMore = true
		setNextCursor(resp, strconv.Itoa(end))
	}
	return resp, nil
}

func (f *fakeBlocks) Get(_ context.Context, id notionapi.BlockID) (notionapi.Block, error) {
	if b, ok := f.byID[string(id)]; ok {
		return b, nil
	}
	return nil, &notionapi.Error{Status: http.StatusNotFound, Code: "object_not_found", Message: "missing"}
}

func (f *fakeBlocks) Delete(_ context.Context, id notionapi.BlockID) (notionapi.Block, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, string(id))
	return &notionapi.ParagraphBlock{}, nil
}

// setNextCursor fills NextCursor whatever string type the response declares.
func setNextCursor(resp *notionapi.GetChildrenResponse, cursor string) {
	reflect.ValueOf(resp).Elem().FieldByName("NextCursor").SetString(cursor)
}

type fakePages map[string]*notionapi.Page

func (f fakePages) Get(_ context.Context, id notionapi.PageID) (*notionapi.Page, error) {
	if page, ok := f[string(id)]; ok {
		return page, nil
	}
	return nil, &notionapi.Error{Status: http.StatusNotFound, Code: "object_not_found"}
}

type fakeSearch struct {
	results []notionapi.Object
	req     *notionapi.SearchRequest
}

func (f *fakeSearch) Do(_ context.Context, req *notionapi.SearchRequest) (*notionapi.SearchResponse, error) {
	f.req = req
	return &notionapi.SearchResponse{Results: f.results}, nil
}

func fastOptions() Options {
	return Options{RateLimit: RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 1000}}
}

func newTestClient(t testing.TB, fb *fakeBlocks, pages fakePages, search *fakeSearch) *Client {
	t.Helper()
	if search == nil {
		search = &fakeSearch{}
	}
	c, err := newClient(fb, pages, search, fastOptions())
	require.NoError(t, err)
	return c
}

func paragraphWithID(id, text string, hasChildren bool) *notionapi.ParagraphBlock {
	return &notionapi.ParagraphBlock{
		BasicBlock: notionapi.BasicBlock{ID: notionapi.BlockID(id), Type: notionapi.BlockType("paragraph"), HasChildren: hasChildren},
		Paragraph:  notionapi.Paragraph{RichText: richText(text)},
	}
}

func TestClientAppendChildren(t *testing.T) {
	fb := &fakeBlocks{}
	c := newTestClient(t, fb, nil, nil)

	ids, err := c.AppendChildren(context.Background(), pageID, []blocks.Block{blocks.NewParagraph("a"), blocks.NewParagraph("b")})
	require.NoError(t, err)
	assert.Equal(t, []string{pageIDD + "-0", pageIDD + "-1"}, ids)
	require.Len(t, fb.appended, 1)
	assert.Len(t, fb.appended[0], 2)

	_, err = c.AppendChildren(context.Background(), "not-an-id", nil)
	require.ErrorIs(t, err, ErrInvalidID)
}

func TestClientListChildrenWithEngine(t *testing.T) {
	var children []notionapi.Block
	for i := range 150 {
		children = append(children, paragraphWithID("b"+strconv.Itoa(i), "x", false))
	}
	fb := &fakeBlocks{children: map[string][]notionapi.Block{pageIDD: children}}
	c := newTestClient(t, fb, nil, nil)

	ids, err := batch.New(c).FetchAllChildIDs(context.Background(), pageID)
	require.NoError(t, err)
	assert.Len(t, ids, 150)
	assert.Equal(t, "b149", ids[149])
	assert.Equal(t, []int{100, 100}, fb.pageSizes)
}

func TestClientDeleteBlock(t *testing.T) {
	fb := &fakeBlocks{}
	c := newTestClient(t, fb, nil, nil)

	require.NoError(t, c.DeleteBlock(context.Background(), pageID))
	assert.Equal(t, []string{pageIDD}, fb.deleted)
}

func TestClientRateLimitErrorOpensBackoff(t *testing.T) {
	fb := &fakeBlocks{err: &notionapi.Error{Status: http.StatusTooManyRequests, Code: "rate_limited", Message: "slow down"}}
	c := newTestClient(t, fb, nil, nil)

	err := c.DeleteBlock(context.Background(), pageID)
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	require.ErrorIs(t, err, ErrRateLimited)
	assert.False(t, c.limiter.Allow())
}

func TestClientPageToMarkdown(t *testing.T) {
	const (
		listID   = "11111111-1111-1111-1111-111111111111"
		toggleID = "22222222-2222-2222-2222-222222222222"
	)
	parent := &notionapi.BulletedListItemBlock{
		BasicBlock:       notionapi.BasicBlock{ID: listID, Type: notionapi.BlockType("bulleted_list_item"), HasChildren: true},
		BulletedListItem: notionapi.ListItem{RichText: richText("parent")},
	}
	child := &notionapi.BulletedListItemBlock{
		BasicBlock:       notionapi.BasicBlock{ID: "33333333-3333-3333-3333-333333333333", Type: notionapi.BlockType("bulleted_list_item")},
		BulletedListItem: notionapi.ListItem{RichText: richText("child")},
	}
	toggle := &notionapi.ToggleBlock{
		BasicBlock: notionapi.BasicBlock{ID: toggleID, Type: notionapi.BlockType("toggle"), HasChildren: true},
		Toggle:     notionapi.Toggle{RichText: richText("more")},
	}

	fb := &fakeBlocks{children: map[string][]notionapi.Block{
		pageIDD:  {paragraphWithID("44444444-4444-4444-4444-444444444444", "intro", false), parent, toggle},
		listID:   {child},
		toggleID: {paragraphWithID("55555555-5555-5555-5555-555555555555", "hidden", false)},
	}}
	pages := fakePages{pageIDD: &notionapi.Page{
		ID:         notionapi.ObjectID(pageIDD),
		Properties: notionapi.Properties{"Name": &notionapi.TitleProperty{Title: richText("Doc")}},
	}}
	c := newTestClient(t, fb, pages, nil)

	md, err := c.PageToMarkdown(context.Background(), "https://www.notion.so/Doc-"+pageID)
	require.NoError(t, err)
	assert.Equal(t, "# Doc\n\nintro\n\n- parent\n  - child\n\n[Unsupported block: toggle] more\n\nhidden\n", md)

	_, err = c.PageToMarkdown(context.Background(), "99999999-9999-9999-9999-999999999999")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestClientReadDepth(t *testing.T) {
	const listID = "11111111-1111-1111-1111-111111111111"
	parent := &notionapi.BulletedListItemBlock{
		BasicBlock:       notionapi.BasicBlock{ID: listID, Type: notionapi.BlockType("bulleted_list_item"), HasChildren: true},
		BulletedListItem: notionapi.ListItem{RichText: richText("parent")},
	}
	fb := &fakeBlocks{children: map[string][]notionapi.Block{
		pageIDD: {parent},
		listID:  {paragraphWithID("22222222-2222-2222-2222-222222222222", "deep", false)},
	}}
	opts := fastOptions()
	opts.ReadDepth = 1
	c, err := newClient(fb, fakePages{}, &fakeSearch{}, opts)
	require.NoError(t, err)

	tree, err := c.FetchTree(context.Background(), pageID)
	require.NoError(t, err)
	assert.Equal(t, []blocks.Block{blocks.BulletedListItem{RichText: []blocks.TextRun{{Content: "parent"}}}}, tree)
}

func TestClientBlockToMarkdown(t *testing.T) {
	fb := &fakeBlocks{byID: map[string]notionapi.Block{
		pageIDD: &notionapi.CodeBlock{
			BasicBlock: notionapi.BasicBlock{ID: pageIDD, Type: notionapi.BlockType("code")},
			Code:       notionapi.Code{RichText: richText("fmt.Println()"), Language: "go"},
		},
	}}
	c := newTestClient(t, fb, nil, nil)

	md, err := c.BlockToMarkdown(context.Background(), pageID)
	require.NoError(t, err)
	assert.Equal(t, "```go\nfmt.Println()\n```\n", md)
}

func TestClientSearch(t *testing.T) {
	search := &fakeSearch{results: []notionapi.Object{
		&notionapi.Page{
			ID:         notionapi.ObjectID(pageIDD),
			URL:        "https://www.notion.so/Doc-" + pageID,
			Properties: notionapi.Properties{"title": &notionapi.TitleProperty{Title: richText("Doc")}},
		},
		&notionapi.Database{ID: "db"},
	}}
	c := newTestClient(t, &fakeBlocks{}, nil, search)

	refs, err := c.Search(context.Background(), "doc", 0)
	require.NoError(t, err)
	assert.Equal(t, []PageRef{{ID: pageIDD, Title: "Doc", URL: "https://www.notion.so/Doc-" + pageID}}, refs)
	assert.Equal(t, "doc", search.req.Query)
	assert.Equal(t, DefaultSearchLimit, search.req.PageSize)
}

func TestRateLimiterBackoff(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 10})
	assert.True(t, limiter.Allow())

	limiter.RecordRateLimitError(time.Hour)
	assert.False(t, limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, limiter.Wait(ctx), context.DeadlineExceeded)
}

func TestRateLimiterDefaults(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{})
	assert.Equal(t, 3, limiter.limiter.Burst())
	require.NoError(t, limiter.Wait(context.Background()))
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsRateLimited(&notionapi.Error{Status: http.StatusTooManyRequests}))
	assert.True(t, IsNotFound(&notionapi.Error{Code: "object_not_found"}))
	assert.False(t, IsRateLimited(errors.New("boom")))
	assert.False(t, IsNotFound(nil))
}

func TestFromNotionBlocksInvertsToNotion(t *testing.T) {
	in := []blocks.Block{
		blocks.NewHeading(1, "Title"),
		blocks.NewParagraph("body"),
		blocks.NewNumberedListItem("one", blocks.NewNumberedListItem("nested", blocks.NewBulletedListItem("deep"))),
		blocks.NewToDo("task", false),
		blocks.NewCode("echo hi", "shell"),
		blocks.NewQuote("quoted"),
		blocks.NewDivider(),
		blocks.Image{URL: "https://x.test/i.png", Caption: []blocks.TextRun{{Content: "cap"}}},
	}

	assert.Equal(t, in, FromNotionBlocks(ToNotion(in)))
}
