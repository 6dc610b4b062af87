package routing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/22388o/eclair/lnwire"
)

// TestGraphEdgeWeight projects a fee schedule onto the reference amount.
func TestGraphEdgeWeight(t *testing.T) {
	t.Parallel()

	update := testChannelUpdate(scid(1, 1, 0), true, 0, 1000, 100)
	require.EqualValues(t, 2000, edgeWeight(update))

	update = testChannelUpdate(scid(1, 1, 0), true, 0, 0, 0)
	require.Zero(t, edgeWeight(update))
}

// TestGraphAddRemoveEdge covers the multigraph edge lifecycle.
func TestGraphAddRemoveEdge(t *testing.T) {
	t.Parallel()

	g := newChannelGraph()
	nodeA, nodeB := vertex(1), vertex(2)

	desc1 := ChannelDesc{ShortChannelID: scid(1, 1, 0), A: nodeA, B: nodeB}
	desc2 := ChannelDesc{ShortChannelID: scid(2, 1, 0), A: nodeA, B: nodeB}

	g.addEdge(desc1, testChannelUpdate(desc1.ShortChannelID, true, 0, 1, 0))
	g.addEdge(desc2, testChannelUpdate(desc2.ShortChannelID, true, 0, 2, 0))

	// Two parallel edges between the same pair, and both endpoints are
	// known vertices.
	require.Equal(t, 2, g.numEdges())
	require.Len(t, g.outgoing(nodeA), 2)
	require.True(t, g.hasVertex(nodeB))

	// Removing one desc leaves the parallel edge alone.
	g.removeEdge(desc1)
	require.Equal(t, 1, g.numEdges())
	require.Equal(t, desc2, g.outgoing(nodeA)[0].desc)

	// Removing an absent desc is a no-op.
	g.removeEdge(desc1)
	require.Equal(t, 1, g.numEdges())
}

// TestGraphDisabledUpdateAddsNoEdge asserts a disabled update never creates
// an edge.
func TestGraphDisabledUpdateAddsNoEdge(t *testing.T) {
	t.Parallel()

	g := newChannelGraph()
	desc := ChannelDesc{
		ShortChannelID: scid(1, 1, 0),
		A:              vertex(1),
		B:              vertex(2),
	}

	update := testChannelUpdate(desc.ShortChannelID, true, 0, 1, 0)
	update.ChannelFlags |= lnwire.ChanUpdateDisabled

	g.addEdge(desc, update)
	require.Zero(t, g.numEdges())
}

// TestGraphClone asserts clone isolation: mutating the copy leaves the
// original untouched.
func TestGraphClone(t *testing.T) {
	t.Parallel()

	g := newChannelGraph()
	desc := ChannelDesc{
		ShortChannelID: scid(1, 1, 0),
		A:              vertex(1),
		B:              vertex(2),
	}
	g.addEdge(desc, testChannelUpdate(desc.ShortChannelID, true, 0, 1, 0))

	cloned := g.clone()
	cloned.removeEdge(desc)
	cloned.addEdge(ChannelDesc{
		ShortChannelID: scid(9, 1, 0),
		A:              vertex(8),
		B:              vertex(9),
	}, testChannelUpdate(scid(9, 1, 0), true, 0, 1, 0))

	require.Equal(t, 1, g.numEdges())
	require.Len(t, g.outgoing(vertex(1)), 1)
	require.False(t, g.hasVertex(vertex(8)))
}

// TestFindPathDirect runs plain Dijkstra over a hand-built graph.
func TestFindPathDirect(t *testing.T) {
	t.Parallel()

	g := newChannelGraph()
	nodeA, nodeB, nodeC := vertex(1), vertex(2), vertex(3)

	ab := ChannelDesc{ShortChannelID: scid(1, 1, 0), A: nodeA, B: nodeB}
	bc := ChannelDesc{ShortChannelID: scid(2, 1, 0), A: nodeB, B: nodeC}
	ac := ChannelDesc{ShortChannelID: scid(3, 1, 0), A: nodeA, B: nodeC}

	g.addEdge(ab, testChannelUpdate(ab.ShortChannelID, true, 0, 10, 0))
	g.addEdge(bc, testChannelUpdate(bc.ShortChannelID, true, 0, 10, 0))
	g.addEdge(ac, testChannelUpdate(ac.ShortChannelID, true, 0, 100, 0))

	// The two-hop path is cheaper than the direct channel.
	hops, err := findPath(g, nodeA, nodeC)
	require.NoError(t, err)
	require.Len(t, hops, 2)
	require.Equal(t, ab.ShortChannelID, hops[0].ShortChannelID)
	require.Equal(t, bc.ShortChannelID, hops[1].ShortChannelID)

	_, err = findPath(g, nodeC, nodeA)
	require.ErrorIs(t, err, ErrRouteNotFound)

	_, err = findPath(g, nodeA, nodeA)
	require.ErrorIs(t, err, ErrCannotRouteToSelf)

	_, err = findPath(g, nodeA, vertex(42))
	require.ErrorIs(t, err, ErrRouteNotFound)
}
