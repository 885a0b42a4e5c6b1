package mcpserver

import (
	"context"
	"errors"

	"github.com/rgonek/notion-md/notion"
)

type mockReader struct {
	pages  map[string]string
	blocks map[string]string
}

func (m *mockReader) PageToMarkdown(_ context.Context, id string) (string, error) {
	if md, ok := m.pages[id]; ok {
		return md, nil
	}
	return "", errors.New("object_not_found")
}

func (m *mockReader) BlockToMarkdown(_ context.Context, id string) (string, error) {
	if md, ok := m.blocks[id]; ok {
		return md, nil
	}
	return "", errors.New("object_not_found")
}

type mockSearcher struct {
	refs  []notion.PageRef
	err   error
	query string
	limit int
}

func (m *mockSearcher) Search(_ context.Context, query string, limit int) ([]notion.PageRef, error) {
	m.query = query
	m.limit = limit
	return m.refs, m.err
}
