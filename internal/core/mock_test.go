package core

import (
	"context"

	"github.com/agenthands/rhymenet/internal/core/model"
)

type MockStore struct {
	Edges      []model.RhymeEdge
	SongList   []model.SongLyrics
	FacetSet   model.Facets
	Err        error
	FailAfter  int // FetchEdges calls that succeed before Err is returned
	FetchCalls int
	LastFilter model.SongFilter
}

func (m *MockStore) FetchEdges(ctx context.Context, frontier []string, filter model.EdgeFilter) ([]model.RhymeEdge, error) {
	m.FetchCalls++
	if m.Err != nil && m.FetchCalls > m.FailAfter {
		return nil, m.Err
	}

	in := make(map[string]bool, len(frontier))
	for _, w := range frontier {
		in[w] = true
	}
	var out []model.RhymeEdge
	for _, e := range m.Edges {
		if in[e.Word] || in[e.RhymesWith] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockStore) Lyrics(ctx context.Context, songID string) (string, bool, error) {
	if m.Err != nil {
		return "", false, m.Err
	}
	for _, s := range m.SongList {
		if s.ID == songID {
			return s.Lyrics, true, nil
		}
	}
	return "", false, nil
}

func (m *MockStore) Songs(ctx context.Context, filter model.SongFilter) ([]model.SongLyrics, error) {
	m.LastFilter = filter
	if m.Err != nil {
		return nil, m.Err
	}
	return m.SongList, nil
}

func (m *MockStore) Facets(ctx context.Context) (model.Facets, error) {
	if m.Err != nil {
		return model.Facets{}, m.Err
	}
	return m.FacetSet, nil
}

type MockLLM struct {
	Response      string
	ResponseQueue []string
	Err           error
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}
