package family

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/rhymenet/internal/core/model"
)

func c(from, to string) model.Connection {
	return model.Connection{FromWord: from, ToWord: to, RhymeType: model.Perfect}
}

func TestDetect_GroupsBranches(t *testing.T) {
	// seed -> tone -> {stone, bone}, seed -> go -> {flow, slow}, seed -> alone
	network := &model.NetworkResult{
		SeedWord: "phone",
		Layers: []model.DepthLayer{
			{Depth: 1, DiscoveredWords: []string{"alone", "go", "tone"}, Connections: []model.Connection{
				c("phone", "tone"), c("phone", "go"), c("phone", "alone"),
			}},
			{Depth: 2, DiscoveredWords: []string{"bone", "flow", "slow", "stone"}, Connections: []model.Connection{
				c("tone", "stone"), c("tone", "bone"), c("go", "flow"), c("go", "slow"),
			}},
		},
	}

	families := NewDetector().Detect(network)
	require.Len(t, families, 2)

	for _, f := range families {
		assert.Len(t, f.Words, 3)
		assert.Contains(t, f.Words, f.Label)
	}
	assert.ElementsMatch(t, []string{"bone", "stone", "tone"}, familyOf(families, "tone"))
	assert.ElementsMatch(t, []string{"flow", "go", "slow"}, familyOf(families, "go"))
	assert.Nil(t, familyOf(families, "alone"))
}

func TestDetect_Deterministic(t *testing.T) {
	network := &model.NetworkResult{
		SeedWord: "day",
		Layers: []model.DepthLayer{
			{Depth: 1, DiscoveredWords: []string{"say", "way"}, Connections: []model.Connection{c("day", "way"), c("day", "say")}},
			{Depth: 2, DiscoveredWords: []string{"play"}, Connections: []model.Connection{c("way", "play"), c("say", "play")}},
		},
	}

	first := NewDetector().Detect(network)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, NewDetector().Detect(network))
	}
}

func TestDetect_Empty(t *testing.T) {
	assert.Empty(t, NewDetector().Detect(nil))
	assert.Empty(t, NewDetector().Detect(&model.NetworkResult{SeedWord: "x"}))
}

func familyOf(families []model.Family, word string) []string {
	for _, f := range families {
		for _, w := range f.Words {
			if w == word {
				return f.Words
			}
		}
	}
	return nil
}
