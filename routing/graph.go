package routing

import (
	"fmt"

	"github.com/22388o/eclair/lnwire"
	"github.com/22388o/eclair/routing/route"
)

// edgeWeightAmount is the fixed reference amount used to project a fee
// schedule onto a single scalar edge weight. Exact per-amount weighting is
// delegated to higher layers.
const edgeWeightAmount lnwire.MilliSatoshi = 10_000_000

// ChannelDesc is the key of one directed edge of a channel: the channel's
// short id together with the originating node A of a directional update and
// its counterpart B. Every channel has two descs, one per direction.
type ChannelDesc struct {
	// ShortChannelID is the channel the edge belongs to.
	ShortChannelID lnwire.ShortChannelID

	// A is the node whose update governs this direction.
	A route.Vertex

	// B is the counterpart the edge points at.
	B route.Vertex
}

// String returns a human readable rendering of the desc.
func (d ChannelDesc) String() string {
	return fmt.Sprintf("%v: %v -> %v", d.ShortChannelID, d.A, d.B)
}

// edge is one directed, weighted edge of the channel graph, carrying the desc
// it was derived from along with the update whose fee schedule determined its
// weight.
type edge struct {
	desc   ChannelDesc
	update *lnwire.ChannelUpdate
	weight int64
}

// edgeWeight computes the cost of forwarding the fixed reference amount under
// the update's fee schedule.
func edgeWeight(update *lnwire.ChannelUpdate) int64 {
	proportional := uint64(update.FeeRate) * uint64(edgeWeightAmount) /
		1_000_000

	return int64(update.BaseFee) + int64(proportional)
}

// channelGraph is a directed weighted multigraph over node public keys. One
// edge exists per currently known enabled directional update, public or
// private. The graph is owned by the router's event loop and is never mutated
// concurrently; route queries that need overlays work on a clone.
type channelGraph struct {
	// adjacency maps each vertex to its outgoing edges. Both endpoints of
	// every edge are present as keys, so vertex existence checks cover
	// sink-only nodes as well.
	adjacency map[route.Vertex][]*edge
}

// newChannelGraph returns an empty graph.
func newChannelGraph() *channelGraph {
	return &channelGraph{
		adjacency: make(map[route.Vertex][]*edge),
	}
}

// addEdge inserts a fresh directed edge for the given desc if the update is
// enabled. Disabled updates add no edge. Both endpoint vertices are created
// if they do not yet exist.
func (g *channelGraph) addEdge(desc ChannelDesc, update *lnwire.ChannelUpdate) {
	if update.ChannelFlags.IsDisabled() {
		return
	}

	if _, ok := g.adjacency[desc.B]; !ok {
		g.adjacency[desc.B] = nil
	}

	g.adjacency[desc.A] = append(g.adjacency[desc.A], &edge{
		desc:   desc,
		update: update,
		weight: edgeWeight(update),
	})
}

// removeEdge removes the edge carrying exactly the given desc, if present.
// Vertices are not reclaimed.
func (g *channelGraph) removeEdge(desc ChannelDesc) {
	edges, ok := g.adjacency[desc.A]
	if !ok {
		return
	}

	for i, e := range edges {
		if e.desc != desc {
			continue
		}

		g.adjacency[desc.A] = append(edges[:i:i], edges[i+1:]...)
		return
	}
}

// hasVertex reports whether the vertex is referenced by the graph.
func (g *channelGraph) hasVertex(v route.Vertex) bool {
	_, ok := g.adjacency[v]
	return ok
}

// outgoing returns the outgoing edges of the given vertex.
func (g *channelGraph) outgoing(v route.Vertex) []*edge {
	return g.adjacency[v]
}

// numEdges returns the total number of directed edges in the graph.
func (g *channelGraph) numEdges() int {
	var n int
	for _, edges := range g.adjacency {
		n += len(edges)
	}
	return n
}

// clone returns a copy of the graph that can be mutated freely without
// affecting the original. Edges are immutable once created, so the copy
// shares them.
func (g *channelGraph) clone() *channelGraph {
	adjacency := make(map[route.Vertex][]*edge, len(g.adjacency))
	for v, edges := range g.adjacency {
		cloned := make([]*edge, len(edges))
		copy(cloned, edges)
		adjacency[v] = cloned
	}

	return &channelGraph{adjacency: adjacency}
}
