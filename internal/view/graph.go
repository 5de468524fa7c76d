package view

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// KindGraph is the kind of the Jira graph view.
const KindGraph Kind = "jira-graph-view"

// GraphTitle is the display text of the graph view.
const GraphTitle = "Jira Graph"

// StatusCounts returns the number of known issues per status.
type StatusCounts func() map[string]int

// GraphView summarizes the cached issues by status.
type GraphView struct {
	handle Handle
	counts StatusCounts

	mu   sync.Mutex
	open bool
}

// NewGraphView returns a graph view. counts may be nil.
func NewGraphView(h Handle, counts StatusCounts) *GraphView {
	return &GraphView{handle: h, counts: counts}
}

// GraphFactory returns a Factory for KindGraph views.
func GraphFactory(counts StatusCounts) Factory {
	return func(h Handle) View { return NewGraphView(h, counts) }
}

// Kind returns KindGraph.
func (g *GraphView) Kind() Kind { return KindGraph }

// DisplayText returns GraphTitle.
func (g *GraphView) DisplayText() string { return GraphTitle }

// Open marks the view open.
func (g *GraphView) Open(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = true
	return nil
}

// Close marks the view closed.
func (g *GraphView) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = false
	return nil
}

// IsOpen reports whether the view is open.
func (g *GraphView) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

// Render draws a bar per status, scaled to width.
func (g *GraphView) Render(width int) string {
	var b strings.Builder
	b.WriteString(GraphTitle)
	b.WriteString("\n")

	var counts map[string]int
	if g.counts != nil {
		counts = g.counts()
	}
	if len(counts) == 0 {
		b.WriteString("No issues cached")
		return b.String()
	}

	statuses := make([]string, 0, len(counts))
	labelWidth, maxCount := 0, 0
	for status, n := range counts {
		statuses = append(statuses, status)
		labelWidth = max(labelWidth, len(status))
		maxCount = max(maxCount, n)
	}
	slices.Sort(statuses)
	maxCount = max(maxCount, 1)

	barSpace := max(width-labelWidth-8, 1)
	for _, status := range statuses {
		n := counts[status]
		bar := max(n*barSpace/maxCount, 1)
		fmt.Fprintf(&b, "%-*s %s %d\n", labelWidth, status, strings.Repeat("█", bar), n)
	}
	return strings.TrimRight(b.String(), "\n")
}
