package search

import (
	"github.com/soukdata/souq/core"
)

// Monitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type Monitor interface {
	Start(query string)
	AfterEncode(vector []float32)
	AfterIndexSearch(matches []core.SimilarityMatch)
	AfterFilter(results []*core.SearchResult)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                            {}
func (n *noopMonitor) AfterEncode(_ []float32)                   {}
func (n *noopMonitor) AfterIndexSearch(_ []core.SimilarityMatch) {}
func (n *noopMonitor) AfterFilter(_ []*core.SearchResult)        {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)             {}
