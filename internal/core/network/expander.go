package network

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/agenthands/rhymenet/internal/core/model"
	"github.com/agenthands/rhymenet/internal/driver"
)

var (
	ErrInvalidSeed  = errors.New("network: invalid seed")
	ErrInvalidDepth = errors.New("network: max depth must be at least 1")
)

// Expander walks the rhyme graph breadth first, one store query per depth.
type Expander struct {
	store  driver.EdgeStore
	logger *zap.Logger
}

func NewExpander(store driver.EdgeStore, logger *zap.Logger) *Expander {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Expander{store: store, logger: logger}
}

// Expand discovers the words reachable from seed within maxDepth hops.
//
// A store failure does not fail the call: the layers gathered before it are
// returned with Failure set, and MaxDepthReached tells how far the walk got.
func (e *Expander) Expand(ctx context.Context, seed string, maxDepth int, filter model.EdgeFilter) (*model.NetworkResult, error) {
	seed = model.Normalize(seed)
	if seed == "" {
		return nil, ErrInvalidSeed
	}
	if maxDepth < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDepth, maxDepth)
	}

	result := &model.NetworkResult{SeedWord: seed, Layers: []model.DepthLayer{}}

	a := newArena()
	seedID := a.intern(seed)
	a.discover(seedID, 0, []int{seedID})
	frontier := []int{seedID}

	for depth := 1; depth <= maxDepth; depth++ {
		if len(frontier) == 0 {
			break
		}

		// frontier in word order so connections do not depend on row order
		sort.Slice(frontier, func(i, j int) bool { return a.words[frontier[i]] < a.words[frontier[j]] })
		inFrontier := make(map[int]bool, len(frontier))
		words := make([]string, len(frontier))
		for i, id := range frontier {
			inFrontier[id] = true
			words[i] = a.words[id]
		}

		edges, err := e.fetch(ctx, words, filter)
		if err != nil {
			e.logger.Warn("expansion stopped by store failure",
				zap.String("seed", seed),
				zap.Int("depth", depth),
				zap.Error(err))
			result.Failure = &model.ExpansionFailure{Depth: depth, Message: err.Error()}
			break
		}

		for _, edge := range edges {
			conn, from, to, ok := orient(a, inFrontier, edge)
			// rhymes back into the seed, and self rhymes, add nothing
			if !ok || to == seedID || to == from {
				continue
			}
			a.link(from, to, conn)
		}

		layer := model.DepthLayer{Depth: depth, Connections: []model.Connection{}}
		var next []int

		for _, from := range frontier {
			for _, l := range a.adj[from] {
				conn := l.conn
				conn.Path = a.extend(from, l.to)
				layer.Connections = append(layer.Connections, conn)

				if a.discover(l.to, depth, a.extendIDs(from, l.to)) {
					next = append(next, l.to)
				}
			}
		}

		if len(next) == 0 {
			break
		}

		layer.DiscoveredWords = make([]string, len(next))
		for i, id := range next {
			layer.DiscoveredWords[i] = a.words[id]
		}
		sort.Strings(layer.DiscoveredWords)

		result.Layers = append(result.Layers, layer)
		result.TotalWords += len(layer.DiscoveredWords)
		result.TotalConnections += len(layer.Connections)
		result.MaxDepthReached = depth

		frontier = next
	}

	return result, nil
}

func (e *Expander) fetch(ctx context.Context, words []string, filter model.EdgeFilter) ([]model.RhymeEdge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.store.FetchEdges(ctx, words, filter)
}

// orient turns a stored pair into a connection leaving the frontier. When
// both ends are in the frontier the lexicographically smaller word is the
// source, so the result does not depend on row order.
func orient(a *arena, inFrontier map[int]bool, edge model.RhymeEdge) (model.Connection, int, int, bool) {
	w := a.intern(model.Normalize(edge.Word))
	r := a.intern(model.Normalize(edge.RhymesWith))

	wIn, rIn := inFrontier[w], inFrontier[r]
	if wIn && rIn {
		wIn = a.words[w] <= a.words[r]
		rIn = !wIn
	}

	conn := model.Connection{RhymeType: edge.RhymeType, Song: edge.Song}
	if conn.Song.ID == "" {
		conn.Song.ID = edge.SongID
	}

	switch {
	case wIn:
		conn.FromWord, conn.ToWord = a.words[w], a.words[r]
		conn.FromLine, conn.ToLine = edge.WordLine, edge.RhymesWithLine
		return conn, w, r, true
	case rIn:
		conn.FromWord, conn.ToWord = a.words[r], a.words[w]
		conn.FromLine, conn.ToLine = edge.RhymesWithLine, edge.WordLine
		return conn, r, w, true
	}
	return conn, 0, 0, false
}
