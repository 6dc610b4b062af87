package routing

import (
	"sync/atomic"

	"github.com/22388o/eclair/lnwire"
	"github.com/22388o/eclair/routing/route"
)

// topologyClientBufferSize is the number of undelivered topology events
// buffered per client before further events are dropped for that client.
const topologyClientBufferSize = 20

// TopologyEvent is implemented by all graph topology notifications published
// by the router.
type TopologyEvent interface {
	topologyEvent()
}

// ChannelUpdateReceived is published whenever a channel update, public or
// private, replaces the routing policy of a channel direction.
type ChannelUpdateReceived struct {
	// Update is the newly applied channel update.
	Update *lnwire.ChannelUpdate
}

// ChannelLost is published when a channel leaves the graph, either through
// stale pruning or a spent funding output.
type ChannelLost struct {
	// ShortChannelID identifies the channel that was removed.
	ShortChannelID lnwire.ShortChannelID
}

// NodeDiscovered is published when a node announcement is accepted for a node
// not previously known.
type NodeDiscovered struct {
	// Node is the accepted announcement.
	Node *lnwire.NodeAnnouncement
}

// NodeUpdated is published when a fresher announcement replaces a known
// node's metadata.
type NodeUpdated struct {
	// Node is the replacing announcement.
	Node *lnwire.NodeAnnouncement
}

// NodeLost is published when a node's last channel departs and the node entry
// is dropped.
type NodeLost struct {
	// NodeID identifies the dropped node.
	NodeID route.Vertex
}

func (ChannelUpdateReceived) topologyEvent() {}
func (ChannelLost) topologyEvent()           {}
func (NodeDiscovered) topologyEvent()        {}
func (NodeUpdated) topologyEvent()           {}
func (NodeLost) topologyEvent()              {}

// TopologyClient represents an intent to receive notifications from the
// router regarding changes to the topology of the channel graph.
type TopologyClient struct {
	// TopologyChanges is a receive only channel that new topology events
	// will be sent over.
	TopologyChanges <-chan TopologyEvent

	// Cancel is a function closure that should be executed when the
	// client wishes to cancel their notification intent. Doing so allows
	// the router to free up resources.
	Cancel func()
}

// topologyClientUpdate is a message sent to the router to either register a
// new topology client or cancel an existing one.
type topologyClientUpdate struct {
	// cancel indicates if the update to the client is cancelling an
	// existing client's notifications. If not then this update will be to
	// register a new set of notifications.
	cancel bool

	// clientID is the unique identifier for this client.
	clientID uint64

	// ntfnChan is a *send-only* channel in which notifications should be
	// sent over from router -> client.
	ntfnChan chan<- TopologyEvent
}

// SubscribeTopology returns a new topology client which can be used by the
// caller to receive notifications whenever a change in the channel graph
// topology occurs.
func (r *ChannelRouter) SubscribeTopology() (*TopologyClient, error) {
	clientID := atomic.AddUint64(&r.ntfnClientCounter, 1)

	log.Debugf("New graph topology client subscription, client %v",
		clientID)

	ntfnChan := make(chan TopologyEvent, topologyClientBufferSize)

	select {
	case r.ntfnClientUpdates <- &topologyClientUpdate{
		cancel:   false,
		clientID: clientID,
		ntfnChan: ntfnChan,
	}:
	case <-r.quit:
		return nil, ErrRouterShuttingDown
	}

	return &TopologyClient{
		TopologyChanges: ntfnChan,
		Cancel: func() {
			select {
			case r.ntfnClientUpdates <- &topologyClientUpdate{
				cancel:   true,
				clientID: clientID,
			}:
			case <-r.quit:
			}
		},
	}, nil
}

// notifyTopologyChange dispatches the given event to all registered topology
// clients. A client that has fallen behind its buffer loses the event.
//
// NOTE: Must only be called from within the event loop.
func (r *ChannelRouter) notifyTopologyChange(event TopologyEvent) {
	for clientID, ntfnChan := range r.topologyClients {
		select {
		case ntfnChan <- event:
		default:
			log.Warnf("Unable to deliver topology notification "+
				"to client=%v, buffer full", clientID)
		}
	}
}
