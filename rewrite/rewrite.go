// Package rewrite replaces the content of a container with converted
// Markdown. New content is always appended before old content is removed.
package rewrite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rgonek/notion-md/batch"
	"github.com/rgonek/notion-md/mdconverter"
)

var (
	// ErrConversionEmpty is returned when the Markdown yields no blocks.
	// Nothing has been sent to the container.
	ErrConversionEmpty = errors.New("markdown produced no blocks")

	// ErrAppendFailed is returned when any chunk of a rewrite append fails.
	// Old content is left in place.
	ErrAppendFailed = errors.New("append failed")
)

// deleteErrorPreview caps how many delete failures a Summary lists.
const deleteErrorPreview = 5

// MarkdownConverter turns Markdown into blocks.
type MarkdownConverter interface {
	ConvertWithContext(ctx context.Context, markdown string) (mdconverter.Result, error)
}

// Options tunes a single rewrite.
type Options struct {
	// ValidateBeforeDelete re-lists the container after the append and only
	// deletes when every old and new block is present.
	ValidateBeforeDelete bool
}

// Summary reports what a rewrite or append did.
type Summary struct {
	BlocksAdded      int      `json:"blocksAdded"`
	BlocksDeleted    int      `json:"blocksDeleted"`
	BatchCount       int      `json:"batchCount"`
	FailedBatches    []string `json:"failedBatches,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
	DeleteErrors     []string `json:"deleteErrors,omitempty"`
	MoreDeleteErrors int      `json:"moreDeleteErrors,omitempty"`
}

// String renders the summary for people.
func (s Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Added %d %s in %d %s", s.BlocksAdded, plural(s.BlocksAdded, "block"), s.BatchCount, plural(s.BatchCount, "batch"))
	if s.BlocksDeleted > 0 {
		fmt.Fprintf(&sb, ", deleted %d old %s", s.BlocksDeleted, plural(s.BlocksDeleted, "block"))
	}
	sb.WriteString(".")

	if len(s.FailedBatches) > 0 {
		fmt.Fprintf(&sb, "\n%d %s failed:", len(s.FailedBatches), plural(len(s.FailedBatches), "batch"))
		for _, msg := range s.FailedBatches {
			sb.WriteString("\n- " + msg)
		}
	}
	if len(s.Warnings) > 0 {
		sb.WriteString("\nWarnings:")
		for _, msg := range s.Warnings {
			sb.WriteString("\n- " + msg)
		}
	}
	if len(s.DeleteErrors) > 0 {
		failed := len(s.DeleteErrors) + s.MoreDeleteErrors
		fmt.Fprintf(&sb, "\nFailed to delete %d old %s:", failed, plural(failed, "block"))
		for _, msg := range s.DeleteErrors {
			sb.WriteString("\n- " + msg)
		}
		if s.MoreDeleteErrors > 0 {
			fmt.Fprintf(&sb, "\n- ... and %d more", s.MoreDeleteErrors)
		}
	}
	return sb.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	if strings.HasSuffix(word, "ch") {
		return word + "es"
	}
	return word + "s"
}

// Rewriter drives conversion and batch mutation for one block service.
type Rewriter struct {
	converter MarkdownConverter
	engine    *batch.Engine
	logger    *zap.Logger
}

// New creates a Rewriter. A nil logger disables logging.
func New(converter MarkdownConverter, engine *batch.Engine, logger *zap.Logger) *Rewriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rewriter{converter: converter, engine: engine, logger: logger}
}

// Append converts markdown and appends it after the existing children.
// Failed chunks are reported in the summary, not as an error.
func (r *Rewriter) Append(ctx context.Context, containerID, markdown string) (Summary, error) {
	converted, summary, err := r.convert(ctx, markdown)
	if err != nil {
		return summary, err
	}

	result := r.engine.AppendInBatches(ctx, containerID, converted.Blocks)
	applyBatchResult(&summary, result)
	r.logger.Info("markdown appended",
		zap.String("container_id", containerID),
		zap.Int("blocks_added", summary.BlocksAdded),
		zap.Int("failed_batches", len(summary.FailedBatches)),
	)
	return summary, nil
}

// Rewrite replaces the container's children with the converted markdown.
// The old children are only deleted after every new chunk is written.
func (r *Rewriter) Rewrite(ctx context.Context, containerID, markdown string, opts Options) (Summary, error) {
	converted, summary, err := r.convert(ctx, markdown)
	if err != nil {
		return summary, err
	}

	oldIDs, err := r.engine.FetchAllChildIDs(ctx, containerID)
	if err != nil {
		return summary, fmt.Errorf("capture existing content: %w", err)
	}

	result := r.engine.AppendInBatches(ctx, containerID, converted.Blocks)
	applyBatchResult(&summary, result)
	if !result.Success {
		r.logger.Warn("rewrite append failed, keeping original content",
			zap.String("container_id", containerID),
			zap.Int("failed_batches", len(result.Errors)),
			zap.Int("batch_count", result.BatchCount),
		)
		return summary, fmt.Errorf(
			"%w: %d of %d batches failed (%d of %d blocks added); original content was preserved: %s",
			ErrAppendFailed,
			len(result.Errors),
			result.BatchCount,
			summary.BlocksAdded,
			result.TotalBlocks,
			result.Errors[0].Error,
		)
	}

	if opts.ValidateBeforeDelete {
		if reason := r.validate(ctx, containerID, oldIDs, result.CreatedIDs); reason != "" {
			summary.Warnings = append(summary.Warnings, "Old content was not deleted: "+reason)
			return summary, nil
		}
	}

	deleted := r.engine.DeleteBlocks(ctx, oldIDs)
	summary.BlocksDeleted = deleted.Deleted
	for i, deleteErr := range deleted.Errors {
		if i >= deleteErrorPreview {
			summary.MoreDeleteErrors = len(deleted.Errors) - deleteErrorPreview
			break
		}
		summary.DeleteErrors = append(summary.DeleteErrors, deleteErr.Error())
	}

	r.logger.Info("content rewritten",
		zap.String("container_id", containerID),
		zap.Int("blocks_added", summary.BlocksAdded),
		zap.Int("blocks_deleted", summary.BlocksDeleted),
		zap.Int("delete_errors", len(deleted.Errors)),
	)
	return summary, nil
}

func (r *Rewriter) convert(ctx context.Context, markdown string) (mdconverter.Result, Summary, error) {
	var summary Summary

	converted, err := r.converter.ConvertWithContext(ctx, markdown)
	if err != nil {
		return converted, summary, fmt.Errorf("convert markdown: %w", err)
	}
	for _, warning := range converted.Warnings {
		summary.Warnings = append(summary.Warnings, warning.Message)
	}
	if len(converted.Blocks) == 0 {
		return converted, summary, ErrConversionEmpty
	}
	return converted, summary, nil
}

// validate re-lists the container and returns a reason when an old or a new
// block is missing, or "" when deletion may proceed.
func (r *Rewriter) validate(ctx context.Context, containerID string, oldIDs, newIDs []string) string {
	current, err := r.engine.FetchAllChildIDs(ctx, containerID)
	if err != nil {
		return fmt.Sprintf("could not re-list children: %v", err)
	}

	present := make(map[string]struct{}, len(current))
	for _, id := range current {
		present[id] = struct{}{}
	}

	missing := func(ids []string) int {
		n := 0
		for _, id := range ids {
			if _, ok := present[id]; !ok {
				n++
			}
		}
		return n
	}

	if n := missing(oldIDs); n > 0 {
		return fmt.Sprintf("%d previously listed %s changed during the rewrite", n, plural(n, "block"))
	}
	if n := missing(newIDs); n > 0 {
		return fmt.Sprintf("%d new %s not found after append", n, plural(n, "block"))
	}
	return ""
}

func applyBatchResult(summary *Summary, result batch.Result) {
	summary.BatchCount = result.BatchCount
	summary.BlocksAdded = len(result.CreatedIDs)
	for _, batchErr := range result.Errors {
		summary.FailedBatches = append(summary.FailedBatches, fmt.Sprintf("batch %d: %s", batchErr.BatchIndex, batchErr.Error))
	}
}
