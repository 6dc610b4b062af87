package routing

import (
	"container/heap"
	"math"

	"github.com/22388o/eclair/lnwire"
	"github.com/22388o/eclair/routing/route"
)

// HopHint is a single hop of an assisted route: the policy a payment
// recipient advertised for reaching it across a channel the public graph
// does not carry.
type HopHint struct {
	// NodeID is the node the hop departs from.
	NodeID route.Vertex

	// ChannelID is the channel the hint refers to.
	ChannelID lnwire.ShortChannelID

	// FeeBaseMsat is the hinted base fee in millisatoshi.
	FeeBaseMsat uint32

	// FeeProportionalMillionths is the hinted proportional fee.
	FeeProportionalMillionths uint32

	// CLTVExpiryDelta is the hinted timelock delta.
	CLTVExpiryDelta uint16
}

// assistedUpdates converts the given assisted routes into synthetic
// desc/update pairs: each hop is paired with the node of the next hop, the
// final hop with the target. The synthetic updates are unsigned and enabled.
func assistedUpdates(assistedRoutes [][]HopHint,
	target route.Vertex) map[ChannelDesc]*lnwire.ChannelUpdate {

	overlays := make(map[ChannelDesc]*lnwire.ChannelUpdate)
	for _, hints := range assistedRoutes {
		for i, hop := range hints {
			nextNode := target
			if i+1 < len(hints) {
				nextNode = hints[i+1].NodeID
			}

			desc := ChannelDesc{
				ShortChannelID: hop.ChannelID,
				A:              hop.NodeID,
				B:              nextNode,
			}
			overlays[desc] = &lnwire.ChannelUpdate{
				ShortChannelID: hop.ChannelID,
				TimeLockDelta:  hop.CLTVExpiryDelta,
				BaseFee:        hop.FeeBaseMsat,
				FeeRate:        hop.FeeProportionalMillionths,
			}
		}
	}

	return overlays
}

// findPath runs a single-source shortest path search over the working graph,
// returning the ordered hops from source to target. Edge weights are
// non-negative by construction, so plain Dijkstra applies.
func findPath(g *channelGraph, source, target route.Vertex) ([]*route.Hop,
	error) {

	if !g.hasVertex(source) || !g.hasVertex(target) {
		return nil, ErrRouteNotFound
	}
	if source == target {
		return nil, ErrCannotRouteToSelf
	}

	// prev holds, for each visited vertex, the edge it was reached
	// through on the currently cheapest path.
	distance := make(map[route.Vertex]int64, len(g.adjacency))
	prev := make(map[route.Vertex]*edge)

	for vertex := range g.adjacency {
		distance[vertex] = math.MaxInt64
	}
	distance[source] = 0

	nodeHeap := newDistanceHeap()
	heap.Push(&nodeHeap, nodeWithDist{dist: 0, node: source})

	for nodeHeap.Len() != 0 {
		pivot := heap.Pop(&nodeHeap).(nodeWithDist)
		if pivot.node == target {
			break
		}

		// A stale heap entry: a shorter distance was already settled.
		if pivot.dist > distance[pivot.node] {
			continue
		}

		for _, e := range g.outgoing(pivot.node) {
			tempDist := pivot.dist + e.weight
			if tempDist >= distance[e.desc.B] {
				continue
			}

			distance[e.desc.B] = tempDist
			prev[e.desc.B] = e
			nodeHeap.PushOrFix(nodeWithDist{
				dist: tempDist,
				node: e.desc.B,
			})
		}
	}

	if _, ok := prev[target]; !ok {
		return nil, ErrRouteNotFound
	}

	// Walk the prev chain backwards from the target to materialize the
	// hops in forward order.
	var hops []*route.Hop
	for vertex := target; vertex != source; vertex = prev[vertex].desc.A {
		e := prev[vertex]
		hops = append([]*route.Hop{{
			From:           e.desc.A,
			To:             e.desc.B,
			ShortChannelID: e.desc.ShortChannelID,
			Update:         e.update,
		}}, hops...)
	}

	return hops, nil
}
