// Package batchtest provides an in-memory batch.BlockAPI for tests.
package batchtest

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/rgonek/notion-md/batch"
	"github.com/rgonek/notion-md/blocks"
)

// FakeAPI keeps ordered children per container in memory.
// The hook fields, when set, can fail individual calls.
type FakeAPI struct {
	mu       sync.Mutex
	children map[string][]string
	content  map[string]blocks.Block
	nextID   int

	// FailAppend is consulted before each append with the zero-based call index.
	FailAppend func(call int) error
	// FailDelete is consulted before each delete.
	FailDelete func(blockID string) error

	AppendCalls []int
	DeleteCalls []string
	ListCalls   int
}

// NewFakeAPI returns a FakeAPI whose containers hold the given child ids.
func NewFakeAPI(initial map[string][]string) *FakeAPI {
	f := &FakeAPI{
		children: make(map[string][]string),
		content:  make(map[string]blocks.Block),
	}
	for container, ids := range initial {
		f.children[container] = slices.Clone(ids)
	}
	return f
}

var _ batch.BlockAPI = (*FakeAPI)(nil)

func (f *FakeAPI) AppendChildren(_ context.Context, containerID string, children []blocks.Block) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := len(f.AppendCalls)
	f.AppendCalls = append(f.AppendCalls, len(children))
	if f.FailAppend != nil {
		if err := f.FailAppend(call); err != nil {
			return nil, err
		}
	}
	if len(children) > batch.DefaultBatchSize {
		return nil, fmt.Errorf("too many children: %d", len(children))
	}

	ids := make([]string, 0, len(children))
	for _, child := range children {
		f.nextID++
		id := "new-" + strconv.Itoa(f.nextID)
		f.content[id] = child
		ids = append(ids, id)
	}
	f.children[containerID] = append(f.children[containerID], ids...)
	return ids, nil
}

func (f *FakeAPI) ListChildren(_ context.Context, containerID, cursor string, pageSize int) (batch.ChildPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ListCalls++
	ids := f.children[containerID]

	start := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return batch.ChildPage{}, fmt.Errorf("bad cursor %q", cursor)
		}
		start = n
	}
	if pageSize <= 0 {
		pageSize = batch.DefaultPageSize
	}

	end := min(start+pageSize, len(ids))
	page := batch.ChildPage{IDs: slices.Clone(ids[start:end])}
	if end < len(ids) {
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

func (f *FakeAPI) DeleteBlock(_ context.Context, blockID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.DeleteCalls = append(f.DeleteCalls, blockID)
	if f.FailDelete != nil {
		if err := f.FailDelete(blockID); err != nil {
			return err
		}
	}

	for container, ids := range f.children {
		if i := slices.Index(ids, blockID); i >= 0 {
			f.children[container] = slices.Delete(ids, i, i+1)
			delete(f.content, blockID)
			return nil
		}
	}
	return fmt.Errorf("block %s not found", blockID)
}

// Children returns a copy of the container's child ids.
func (f *FakeAPI) Children(containerID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.children[containerID])
}

// Block returns the block stored under an id created by AppendChildren.
func (f *FakeAPI) Block(id string) (blocks.Block, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.content[id]
	return b, ok
}

// Remove drops an id from a container without recording a delete call.
func (f *FakeAPI) Remove(containerID, blockID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := f.children[containerID]
	if i := slices.Index(ids, blockID); i >= 0 {
		f.children[containerID] = slices.Delete(ids, i, i+1)
	}
}
