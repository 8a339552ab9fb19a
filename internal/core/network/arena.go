package network

import "github.com/agenthands/rhymenet/internal/core/model"

// arena interns words so the walk works on integer ids.
type arena struct {
	index map[string]int
	words []string
	depth []int    // -1 until discovered
	paths [][]int  // seed-to-word path, first write wins
	adj   [][]link // outgoing connections, keyed by source id
}

// link is one oriented connection leaving a frontier word.
type link struct {
	to   int
	conn model.Connection
}

func newArena() *arena {
	return &arena{index: make(map[string]int)}
}

func (a *arena) intern(word string) int {
	if id, ok := a.index[word]; ok {
		return id
	}
	id := len(a.words)
	a.index[word] = id
	a.words = append(a.words, word)
	a.depth = append(a.depth, -1)
	a.paths = append(a.paths, nil)
	a.adj = append(a.adj, nil)
	return id
}

func (a *arena) discovered(id int) bool {
	return a.depth[id] >= 0
}

// discover marks id as found at depth via path. It reports false if id was
// already discovered, leaving its first path untouched.
func (a *arena) discover(id, depth int, path []int) bool {
	if a.discovered(id) {
		return false
	}
	a.depth[id] = depth
	a.paths[id] = path
	return true
}

// link records a connection from -> to. A word only sources links during
// the single layer in which it is on the frontier.
func (a *arena) link(from, to int, conn model.Connection) {
	a.adj[from] = append(a.adj[from], link{to: to, conn: conn})
}

// extend returns the path to from followed by to, as words.
func (a *arena) extend(from, to int) []string {
	p := a.paths[from]
	out := make([]string, 0, len(p)+1)
	for _, id := range p {
		out = append(out, a.words[id])
	}
	return append(out, a.words[to])
}

func (a *arena) extendIDs(from, to int) []int {
	p := a.paths[from]
	out := make([]int, len(p), len(p)+1)
	copy(out, p)
	return append(out, to)
}
