package model

type DepthLayer struct {
	Depth           int          `json:"depth"`
	DiscoveredWords []string     `json:"words_discovered"`
	Connections     []Connection `json:"connections"`
}

// ExpansionFailure records where a store error cut an expansion short.
type ExpansionFailure struct {
	Depth   int    `json:"depth"`
	Message string `json:"message"`
}

type NetworkResult struct {
	SeedWord         string            `json:"seed_word"`
	TotalWords       int               `json:"total_words"`
	TotalConnections int               `json:"total_connections"`
	MaxDepthReached  int               `json:"max_depth_reached"`
	Layers           []DepthLayer      `json:"layers"`
	Failure          *ExpansionFailure `json:"failure,omitempty"`
}

// Partial reports whether the expansion stopped because the store failed.
func (n *NetworkResult) Partial() bool {
	return n != nil && n.Failure != nil
}

// SortableRecord is the flattened view of one discovered word.
type SortableRecord struct {
	Word        string       `json:"word"`
	Depth       int          `json:"depth"`
	RhymeType   RhymeType    `json:"rhyme_type"`
	Frequency   int          `json:"frequency"`
	Connections []Connection `json:"connections"`
}

// Family is a cluster of discovered words that rhyme mostly among themselves.
type Family struct {
	Label string   `json:"label"`
	Words []string `json:"words"`
}
