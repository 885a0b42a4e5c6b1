// Package notion adapts the Notion REST API (via jomei/notionapi) to the
// batch engine and the Markdown projector.
package notion

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jomei/notionapi"
	"go.uber.org/zap"

	"github.com/rgonek/notion-md/batch"
	"github.com/rgonek/notion-md/blocks"
	"github.com/rgonek/notion-md/converter"
	"github.com/rgonek/notion-md/projector"
)

const (
	// DefaultReadDepth is how many levels of children the read path follows.
	DefaultReadDepth = 5

	// DefaultSearchLimit is used when Search is called without a limit.
	DefaultSearchLimit = 10

	maxPageSize = 100
)

type blockService interface {
	AppendChildren(ctx context.Context, id notionapi.BlockID, req *notionapi.AppendBlockChildrenRequest) (*notionapi.AppendBlockChildrenResponse, error)
	GetChildren(ctx context.Context, id notionapi.BlockID, pagination *notionapi.Pagination) (*notionapi.GetChildrenResponse, error)
	Get(ctx context.Context, id notionapi.BlockID) (notionapi.Block, error)
	Delete(ctx context.Context, id notionapi.BlockID) (notionapi.Block, error)
}

type pageService interface {
	Get(ctx context.Context, id notionapi.PageID) (*notionapi.Page, error)
}

type searchService interface {
	Do(ctx context.Context, req *notionapi.SearchRequest) (*notionapi.SearchResponse, error)
}

// Options configures a Client.
type Options struct {
	RateLimit RateLimitConfig
	// Retries is passed to notionapi for transient failures. Zero disables
	// retries.
	Retries int
	// ReadDepth bounds recursive child fetches. Zero means DefaultReadDepth.
	ReadDepth  int
	HTTPClient *http.Client
	Logger     *zap.Logger
	// Renderer turns fetched blocks into Markdown. Nil uses converter defaults.
	Renderer *converter.Converter
}

// PageRef identifies a page returned by Search.
type PageRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Client is a rate limited Notion client speaking the local block model.
type Client struct {
	blocks    blockService
	pages     pageService
	search    searchService
	limiter   *RateLimiter
	renderer  *converter.Converter
	readDepth int
	logger    *zap.Logger
}

var (
	_ batch.BlockAPI           = (*Client)(nil)
	_ projector.MarkdownSource = (*Client)(nil)
)

// NewClient creates a Client authenticated with an integration token.
func NewClient(token string, opts Options) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("notion: token is required")
	}

	var clientOpts []notionapi.ClientOption
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, notionapi.WithHTTPClient(opts.HTTPClient))
	}
	clientOpts = append(clientOpts, notionapi.WithRetry(max(opts.Retries, 0)))
	api := notionapi.NewClient(notionapi.Token(token), clientOpts...)

	return newClient(api.Block, api.Page, api.Search, opts)
}

func newClient(blockSvc blockService, pageSvc pageService, searchSvc searchService, opts Options) (*Client, error) {
	renderer := opts.Renderer
	if renderer == nil {
		var err error
		renderer, err = converter.New(converter.Config{})
		if err != nil {
			return nil, err
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	readDepth := opts.ReadDepth
	if readDepth <= 0 {
		readDepth = DefaultReadDepth
	}

	return &Client{
		blocks:    blockSvc,
		pages:     pageSvc,
		search:    searchSvc,
		limiter:   NewRateLimiter(opts.RateLimit),
		renderer:  renderer,
		readDepth: readDepth,
		logger:    logger,
	}, nil
}

// call waits for the limiter, runs fn and classifies its error.
func (c *Client) call(ctx context.Context, op string, fn func() error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	err := fn()
	if err == nil {
		return nil
	}
	if IsRateLimited(err) {
		c.limiter.RecordRateLimitError(0)
		c.logger.Warn("notion rate limit hit", zap.String("op", op))
		return fmt.Errorf("%s: %w: %w", op, ErrRateLimited, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// AppendChildren appends blocks to a page or block and returns the ids of
// the created top-level blocks.
func (c *Client) AppendChildren(ctx context.Context, containerID string, children []blocks.Block) ([]string, error) {
	id, err := NormalizeID(containerID)
	if err != nil {
		return nil, err
	}

	req := &notionapi.AppendBlockChildrenRequest{Children: ToNotion(children)}
	var resp *notionapi.AppendBlockChildrenResponse
	err = c.call(ctx, "append children", func() error {
		var callErr error
		resp, callErr = c.blocks.AppendChildren(ctx, notionapi.BlockID(id), req)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Results))
	for _, created := range resp.Results {
		ids = append(ids, string(created.GetID()))
	}
	return ids, nil
}

// ListChildren returns one page of child ids.
func (c *Client) ListChildren(ctx context.Context, containerID, cursor string, pageSize int) (batch.ChildPage, error) {
	results, next, err := c.children(ctx, containerID, cursor, pageSize)
	if err != nil {
		return batch.ChildPage{}, err
	}

	page := batch.ChildPage{IDs: make([]string, 0, len(results)), NextCursor: next}
	for _, child := range results {
		page.IDs = append(page.IDs, string(child.GetID()))
	}
	return page, nil
}

func (c *Client) children(ctx context.Context, containerID, cursor string, pageSize int) ([]notionapi.Block, string, error) {
	id, err := NormalizeID(containerID)
	if err != nil {
		return nil, "", err
	}
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	var resp *notionapi.GetChildrenResponse
	err = c.call(ctx, "list children", func() error {
		var callErr error
		resp, callErr = c.blocks.GetChildren(ctx, notionapi.BlockID(id), &notionapi.Pagination{
			StartCursor: notionapi.Cursor(cursor),
			PageSize:    pageSize,
		})
		return callErr
	})
	if err != nil {
		return nil, "", err
	}

	next := ""
	if resp.HasMore {
		next = string(resp.NextCursor)
	}
	return resp.Results, next, nil
}

// DeleteBlock archives a block.
func (c *Client) DeleteBlock(ctx context.Context, blockID string) error {
	id, err := NormalizeID(blockID)
	if err != nil {
		return err
	}

	return c.call(ctx, "delete block", func() error {
		_, callErr := c.blocks.Delete(ctx, notionapi.BlockID(id))
		return callErr
	})
}

// FetchTree reads the children of a page or block, following nested
// children up to the configured depth.
func (c *Client) FetchTree(ctx context.Context, containerID string) ([]blocks.Block, error) {
	return c.fetchTree(ctx, containerID, 1)
}

func (c *Client) fetchTree(ctx context.Context, containerID string, depth int) ([]blocks.Block, error) {
	var out []blocks.Block
	cursor := ""

	for {
		results, next, err := c.children(ctx, containerID, cursor, maxPageSize)
		if err != nil {
			return nil, err
		}

		for _, child := range results {
			converted, trailing, err := c.expand(ctx, child, depth)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
			out = append(out, trailing...)
		}

		if next == "" {
			return out, nil
		}
		cursor = next
	}
}

// expand converts one fetched block and, within the depth limit, its children.
func (c *Client) expand(ctx context.Context, child notionapi.Block, depth int) (blocks.Block, []blocks.Block, error) {
	converted := FromNotion(child)
	if !child.GetHasChildren() {
		return converted, nil, nil
	}
	if depth >= c.readDepth {
		c.logger.Debug("read depth reached, children skipped",
			zap.String("block_id", string(child.GetID())),
			zap.Int("depth", depth),
		)
		return converted, nil, nil
	}

	nested, err := c.fetchTree(ctx, string(child.GetID()), depth+1)
	if err != nil {
		return nil, nil, err
	}
	converted, trailing := withChildren(converted, nested)
	return converted, trailing, nil
}

// PageToMarkdown renders a page title and its content.
func (c *Client) PageToMarkdown(ctx context.Context, pageID string) (string, error) {
	id, err := NormalizeID(pageID)
	if err != nil {
		return "", err
	}

	var page *notionapi.Page
	err = c.call(ctx, "get page", func() error {
		var callErr error
		page, callErr = c.pages.Get(ctx, notionapi.PageID(id))
		return callErr
	})
	if err != nil {
		return "", err
	}

	tree, err := c.fetchTree(ctx, id, 1)
	if err != nil {
		return "", err
	}

	body, err := c.render(tree)
	if err != nil {
		return "", err
	}

	if title := pageTitle(page); title != "" {
		if body == "" {
			return "# " + title + "\n", nil
		}
		return "# " + title + "\n\n" + body, nil
	}
	return body, nil
}

// BlockToMarkdown renders a single block and its children.
func (c *Client) BlockToMarkdown(ctx context.Context, blockID string) (string, error) {
	id, err := NormalizeID(blockID)
	if err != nil {
		return "", err
	}

	var fetched notionapi.Block
	err = c.call(ctx, "get block", func() error {
		var callErr error
		fetched, callErr = c.blocks.Get(ctx, notionapi.BlockID(id))
		return callErr
	})
	if err != nil {
		return "", err
	}

	root, trailing, err := c.expand(ctx, fetched, 1)
	if err != nil {
		return "", err
	}
	return c.render(append([]blocks.Block{root}, trailing...))
}

func (c *Client) render(tree []blocks.Block) (string, error) {
	result, err := c.renderer.Convert(tree)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	for _, warning := range result.Warnings {
		c.logger.Debug("render warning",
			zap.String("type", string(warning.Type)),
			zap.String("node_type", warning.NodeType),
			zap.String("message", warning.Message),
		)
	}
	return result.Markdown, nil
}

// Search finds pages whose title matches query. limit is capped at 100.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]PageRef, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	var resp *notionapi.SearchResponse
	err := c.call(ctx, "search", func() error {
		var callErr error
		resp, callErr = c.search.Do(ctx, &notionapi.SearchRequest{Query: query, PageSize: limit})
		return callErr
	})
	if err != nil {
		return nil, err
	}

	refs := make([]PageRef, 0, len(resp.Results))
	for _, result := range resp.Results {
		page, ok := result.(*notionapi.Page)
		if !ok {
			continue
		}
		refs = append(refs, PageRef{
			ID:    string(page.ID),
			Title: pageTitle(page),
			URL:   page.URL,
		})
		if len(refs) == limit {
			break
		}
	}
	return refs, nil
}

func pageTitle(page *notionapi.Page) string {
	if page == nil {
		return ""
	}
	for _, prop := range page.Properties {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			return strings.TrimSpace(blocks.PlainText(fromRichText(title.Title)))
		}
	}
	return ""
}
