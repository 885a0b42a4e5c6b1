// Package batch submits block mutations to a remote container in ordered,
// size-limited requests.
package batch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rgonek/notion-md/blocks"
)

// DefaultBatchSize is the remote API's per-request children limit.
const DefaultBatchSize = 100

// DefaultPageSize is the page size used when listing children.
const DefaultPageSize = 100

// BlockAPI is the subset of the remote block service the engine needs.
type BlockAPI interface {
	AppendChildren(ctx context.Context, containerID string, children []blocks.Block) ([]string, error)
	ListChildren(ctx context.Context, containerID, cursor string, pageSize int) (ChildPage, error)
	DeleteBlock(ctx context.Context, blockID string) error
}

// ChildPage is one page of a child listing. NextCursor is empty on the last page.
type ChildPage struct {
	IDs        []string
	NextCursor string
}

// BatchOutcome records a chunk that was appended.
type BatchOutcome struct {
	BatchIndex int      `json:"batchIndex"`
	Size       int      `json:"size"`
	BlockIDs   []string `json:"blockIds,omitempty"`
}

// BatchError records a failed chunk.
type BatchError struct {
	BatchIndex int    `json:"batchIndex"`
	Error      string `json:"error"`
}

// Result summarizes an AppendInBatches call.
type Result struct {
	Success           bool         `json:"success"`
	TotalBlocks       int          `json:"totalBlocks"`
	BatchCount        int          `json:"batchCount"`
	SuccessfulBatches int            `json:"successfulBatches"`
	Results           []BatchOutcome `json:"results,omitempty"`
	Errors            []BatchError   `json:"errors,omitempty"`
	// CreatedIDs holds the ids of the top-level blocks created, in order.
	CreatedIDs []string `json:"createdIds,omitempty"`
}

// DeleteError records a block that could not be deleted.
type DeleteError struct {
	BlockID string
	Err     error
}

func (e DeleteError) Error() string {
	return fmt.Sprintf("delete %s: %v", e.BlockID, e.Err)
}

// DeleteResult is the fold of a best-effort delete run.
type DeleteResult struct {
	Deleted int
	Errors  []DeleteError
}

// Engine runs sequential batch mutations against one BlockAPI.
type Engine struct {
	api       BlockAPI
	batchSize int
	pageSize  int
	logger    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-item failures.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithBatchSize overrides the chunk size. Values outside 1..100 are ignored.
func WithBatchSize(size int) Option {
	return func(e *Engine) {
		if size > 0 && size <= DefaultBatchSize {
			e.batchSize = size
		}
	}
}

// WithPageSize overrides the listing page size. Values outside 1..100 are ignored.
func WithPageSize(size int) Option {
	return func(e *Engine) {
		if size > 0 && size <= DefaultPageSize {
			e.pageSize = size
		}
	}
}

// New creates an Engine over api.
func New(api BlockAPI, opts ...Option) *Engine {
	e := &Engine{
		api:       api,
		batchSize: DefaultBatchSize,
		pageSize:  DefaultPageSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BatchSize reports the chunk size in use.
func (e *Engine) BatchSize() int {
	return e.batchSize
}

// Partition splits list into ordered chunks of at most size blocks.
// Concatenating the chunks yields list again.
func Partition(list []blocks.Block, size int) [][]blocks.Block {
	if len(list) == 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultBatchSize
	}

	chunks := make([][]blocks.Block, 0, (len(list)+size-1)/size)
	for start := 0; start < len(list); start += size {
		end := min(start+size, len(list))
		chunks = append(chunks, list[start:end])
	}
	return chunks
}

// AppendInBatches appends list to the container one chunk at a time. A failed
// chunk is recorded and the remaining chunks are still submitted. Once ctx is
// done every remaining chunk records the context error.
func (e *Engine) AppendInBatches(ctx context.Context, containerID string, list []blocks.Block) Result {
	if len(list) == 0 {
		return Result{Success: true}
	}

	chunks := Partition(list, e.batchSize)
	result := Result{
		TotalBlocks: len(list),
		BatchCount:  len(chunks),
	}

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, BatchError{BatchIndex: i, Error: err.Error()})
			continue
		}

		ids, err := e.api.AppendChildren(ctx, containerID, chunk)
		if err != nil {
			e.logger.Warn("append batch failed",
				zap.String("container_id", containerID),
				zap.Int("batch_index", i),
				zap.Int("batch_size", len(chunk)),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, BatchError{BatchIndex: i, Error: err.Error()})
			continue
		}

		result.SuccessfulBatches++
		result.Results = append(result.Results, BatchOutcome{BatchIndex: i, Size: len(chunk), BlockIDs: ids})
		result.CreatedIDs = append(result.CreatedIDs, ids...)
		e.logger.Debug("append batch succeeded",
			zap.String("container_id", containerID),
			zap.Int("batch_index", i),
			zap.Int("batch_size", len(chunk)),
		)
	}

	result.Success = len(result.Errors) == 0
	return result
}

// FetchAllChildIDs lists every child of the container in page order.
func (e *Engine) FetchAllChildIDs(ctx context.Context, containerID string) ([]string, error) {
	var ids []string
	cursor := ""

	for {
		page, err := e.api.ListChildren(ctx, containerID, cursor, e.pageSize)
		if err != nil {
			return nil, fmt.Errorf("list children of %s: %w", containerID, err)
		}
		ids = append(ids, page.IDs...)

		if page.NextCursor == "" || page.NextCursor == cursor {
			return ids, nil
		}
		cursor = page.NextCursor
	}
}

// DeleteBlocks deletes ids in order. Failures are logged and skipped.
func (e *Engine) DeleteBlocks(ctx context.Context, ids []string) DeleteResult {
	var result DeleteResult

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, DeleteError{BlockID: id, Err: err})
			continue
		}

		if err := e.api.DeleteBlock(ctx, id); err != nil {
			e.logger.Warn("delete block failed", zap.String("block_id", id), zap.Error(err))
			result.Errors = append(result.Errors, DeleteError{BlockID: id, Err: err})
			continue
		}
		result.Deleted++
	}

	return result
}

// DeleteAllChildren removes every child of the container, best effort, and
// returns how many were deleted.
func (e *Engine) DeleteAllChildren(ctx context.Context, containerID string) (int, error) {
	ids, err := e.FetchAllChildIDs(ctx, containerID)
	if err != nil {
		return 0, err
	}

	result := e.DeleteBlocks(ctx, ids)
	if len(result.Errors) > 0 {
		e.logger.Info("some children were not deleted",
			zap.String("container_id", containerID),
			zap.Int("deleted", result.Deleted),
			zap.Int("failed", len(result.Errors)),
		)
	}
	return result.Deleted, nil
}
