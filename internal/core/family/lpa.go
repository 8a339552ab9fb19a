// Package family groups the words of a rhyme network into families using
// label propagation.
package family

import (
	"sort"

	"github.com/agenthands/rhymenet/internal/core/model"
)

// Detector runs label propagation over connections between discovered words.
// The seed is left out since every word hangs off it.
type Detector struct {
	MaxIterations int
}

func NewDetector() *Detector {
	return &Detector{
		MaxIterations: 20,
	}
}

// Detect returns families of two or more words, largest first.
func (d *Detector) Detect(result *model.NetworkResult) []model.Family {
	families := []model.Family{}
	if result == nil {
		return families
	}

	// index words in sorted order so every pass visits them the same way
	var words []string
	for _, layer := range result.Layers {
		words = append(words, layer.DiscoveredWords...)
	}
	if len(words) < 2 {
		return families
	}
	sort.Strings(words)

	index := make(map[string]int, len(words))
	for i, w := range words {
		index[w] = i
	}

	// weighted undirected adjacency, repeated connections count more
	adj := make([]map[int]int, len(words))
	for i := range adj {
		adj[i] = make(map[int]int)
	}
	for _, layer := range result.Layers {
		for _, c := range layer.Connections {
			u, okU := index[c.FromWord]
			v, okV := index[c.ToWord]
			if !okU || !okV || u == v {
				continue
			}
			adj[u][v]++
			adj[v][u]++
		}
	}

	labels := make([]int, len(words))
	for i := range labels {
		labels[i] = i
	}

	for iter := 0; iter < d.MaxIterations; iter++ {
		changed := 0
		for u := range words {
			if len(adj[u]) == 0 {
				continue
			}

			counts := make(map[int]int)
			best := 0
			for v, weight := range adj[u] {
				counts[labels[v]] += weight
				if counts[labels[v]] > best {
					best = counts[labels[v]]
				}
			}

			// ties go to the lexicographically largest label
			chosen := -1
			for label, n := range counts {
				if n == best && label > chosen {
					chosen = label
				}
			}

			if labels[u] != chosen {
				labels[u] = chosen
				changed++
			}
		}
		if changed == 0 {
			break
		}
	}

	groups := make(map[int][]string)
	for i, label := range labels {
		groups[label] = append(groups[label], words[i])
	}

	for label, members := range groups {
		if len(members) < 2 {
			continue
		}
		families = append(families, model.Family{Label: words[label], Words: members})
	}

	sort.Slice(families, func(i, j int) bool {
		if len(families[i].Words) != len(families[j].Words) {
			return len(families[i].Words) > len(families[j].Words)
		}
		return families[i].Label < families[j].Label
	})
	return families
}
