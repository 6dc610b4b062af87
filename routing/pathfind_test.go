package routing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/22388o/eclair/lnwire"
	"github.com/22388o/eclair/routing/route"
)

// buildTestGraph ingests a chain of public channels A -> B -> C with the
// given fee bases and returns the involved vertices.
func buildTestGraph(ctx *testContext) (route.Vertex, route.Vertex,
	route.Vertex) {

	peer := newMockPeer(9)
	nodeA, nodeB, nodeC := vertex(1), vertex(2), vertex(3)

	chanAB := scid(100, 1, 0)
	ctx.router.ProcessChannelAnnouncement(
		peer, testChannelAnn(chanAB, nodeA, nodeB),
	)
	chanBC := scid(200, 1, 0)
	ctx.router.ProcessChannelAnnouncement(
		peer, testChannelAnn(chanBC, nodeB, nodeC),
	)
	ctx.waitForChannels(2)

	ctx.router.ProcessChannelUpdate(
		peer, testChannelUpdate(chanAB, true, 1000, 5000, 0),
	)
	ctx.router.ProcessChannelUpdate(
		peer, testChannelUpdate(chanBC, true, 1000, 3000, 0),
	)
	ctx.waitForUpdates(2)

	return nodeA, nodeB, nodeC
}

// TestFindRouteSimple finds the only route in a two-hop chain.
func TestFindRouteSimple(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	nodeA, nodeB, nodeC := buildTestGraph(ctx)

	resp, err := ctx.router.FindRoute(nodeA, nodeC, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, resp.Route.Hops, 2)
	require.Equal(t, nodeA, resp.Route.Hops[0].From)
	require.Equal(t, nodeB, resp.Route.Hops[0].To)
	require.Equal(t, nodeB, resp.Route.Hops[1].From)
	require.Equal(t, nodeC, resp.Route.Hops[1].To)
}

// TestFindRouteCheapest picks the cheaper of two parallel channels.
func TestFindRouteCheapest(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	peer := newMockPeer(9)
	nodeA, nodeB := vertex(1), vertex(2)

	cheap := scid(100, 1, 0)
	expensive := scid(100, 2, 0)
	ctx.router.ProcessChannelAnnouncement(
		peer, testChannelAnn(cheap, nodeA, nodeB),
	)
	ctx.router.ProcessChannelAnnouncement(
		peer, testChannelAnn(expensive, nodeA, nodeB),
	)
	ctx.waitForChannels(2)

	ctx.router.ProcessChannelUpdate(
		peer, testChannelUpdate(cheap, true, 1000, 10, 0),
	)
	ctx.router.ProcessChannelUpdate(
		peer, testChannelUpdate(expensive, true, 1000, 10_000, 0),
	)
	ctx.waitForUpdates(2)

	resp, err := ctx.router.FindRoute(nodeA, nodeB, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, resp.Route.Hops, 1)
	require.Equal(t, cheap, resp.Route.Hops[0].ShortChannelID)
}

// TestFindRouteWithHints overlays an assisted route past the public graph's
// edge and expects the full A -> B -> C -> D path, leaving the base graph
// untouched.
func TestFindRouteWithHints(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	nodeA, _, nodeC := buildTestGraph(ctx)
	nodeD := vertex(4)

	hints := [][]HopHint{{{
		NodeID:          nodeC,
		ChannelID:       scid(900, 1, 0),
		FeeBaseMsat:     2,
		CLTVExpiryDelta: 9,
	}}}

	resp, err := ctx.router.FindRoute(nodeA, nodeD, hints, nil, nil)
	require.NoError(t, err)
	require.Len(t, resp.Route.Hops, 3)
	require.Equal(t, nodeD, resp.Route.Hops[2].To)
	require.Equal(t, scid(900, 1, 0), resp.Route.Hops[2].ShortChannelID)

	// Without the hint the target is unreachable: the overlay never
	// leaked into the base graph.
	_, err = ctx.router.FindRoute(nodeA, nodeD, nil, nil, nil)
	require.ErrorIs(t, err, ErrRouteNotFound)

	require.NoError(t, ctx.router.Stop())
	require.False(t, ctx.router.graph.hasVertex(nodeD))
	require.Equal(t, 2, ctx.router.graph.numEdges())
}

// TestFindRouteIgnoreNodes blacklists the middle node of the only path.
func TestFindRouteIgnoreNodes(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	nodeA, nodeB, nodeC := buildTestGraph(ctx)

	resp, err := ctx.router.FindRoute(
		nodeA, nodeC, nil, []route.Vertex{nodeB}, nil,
	)
	require.Nil(t, resp)
	require.ErrorIs(t, err, ErrRouteNotFound)
}

// TestFindRouteIgnoreChannels blacklists the only channel towards the
// target, and expects the ignored channel to be forgotten afterwards.
func TestFindRouteIgnoreChannels(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	nodeA, _, nodeC := buildTestGraph(ctx)

	ignored := []lnwire.ShortChannelID{scid(200, 1, 0)}
	resp, err := ctx.router.FindRoute(nodeA, nodeC, nil, nil, ignored)
	require.Nil(t, resp)
	require.ErrorIs(t, err, ErrRouteNotFound)

	// The ignore list doubles as a death sentence: the channel is removed
	// from the graph entirely.
	ctx.waitForChannels(1)
}

// TestFindRouteResponseEchoesBlacklists asserts the retry bookkeeping
// fields are passed through.
func TestFindRouteResponseEchoesBlacklists(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	nodeA, nodeB, _ := buildTestGraph(ctx)

	ignoreNodes := []route.Vertex{vertex(99)}
	ignoreChannels := []lnwire.ShortChannelID{scid(999, 1, 0)}

	resp, err := ctx.router.FindRoute(
		nodeA, nodeB, nil, ignoreNodes, ignoreChannels,
	)
	require.NoError(t, err)
	require.Equal(t, ignoreNodes, resp.IgnoreNodes)
	require.Equal(t, ignoreChannels, resp.IgnoreChannels)
}

// TestFindRouteToSelf fails fast.
func TestFindRouteToSelf(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	nodeA, _, _ := buildTestGraph(ctx)

	_, err := ctx.router.FindRoute(nodeA, nodeA, nil, nil, nil)
	require.ErrorIs(t, err, ErrCannotRouteToSelf)
}

// TestFindRouteUnknownEndpoint fails when either endpoint is missing from
// the graph.
func TestFindRouteUnknownEndpoint(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	nodeA, _, _ := buildTestGraph(ctx)

	_, err := ctx.router.FindRoute(nodeA, vertex(42), nil, nil, nil)
	require.ErrorIs(t, err, ErrRouteNotFound)

	_, err = ctx.router.FindRoute(vertex(42), nodeA, nil, nil, nil)
	require.ErrorIs(t, err, ErrRouteNotFound)

	// A self-route to a vertex missing from the graph fails on the
	// endpoint check, not the self check.
	_, err = ctx.router.FindRoute(vertex(42), vertex(42), nil, nil, nil)
	require.ErrorIs(t, err, ErrRouteNotFound)
}

// TestExcludeChannelLifts bans a directional channel and expects routing to
// recover once the exclusion expires.
func TestExcludeChannelLifts(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t, withExcludeDuration(25*time.Millisecond))
	nodeA, nodeB, nodeC := buildTestGraph(ctx)

	desc := ChannelDesc{
		ShortChannelID: scid(200, 1, 0),
		A:              nodeB,
		B:              nodeC,
	}
	require.NoError(t, ctx.router.ExcludeChannel(desc))

	require.Eventually(t, func() bool {
		_, err := ctx.router.FindRoute(nodeA, nodeC, nil, nil, nil)
		return err == ErrRouteNotFound
	}, testTimeout, testPollingStep)

	// Once the ban duration elapses the lift re-admits the channel.
	require.Eventually(t, func() bool {
		resp, err := ctx.router.FindRoute(nodeA, nodeC, nil, nil, nil)
		return err == nil && len(resp.Route.Hops) == 2
	}, testTimeout, testPollingStep)
}
