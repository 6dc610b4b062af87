// Package routing maintains this node's view of the public channel graph,
// keeps it consistent with the chain, and computes cheapest source routes
// for outgoing payments. All mutable state is owned by a single event loop:
// every input is a typed event processed to completion before the next one
// is considered.
package routing

import (
	"bytes"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/davecgh/go-spew/spew"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lightningnetwork/lnd/queue"
	"github.com/lightningnetwork/lnd/ticker"

	"github.com/22388o/eclair/lnwire"
	"github.com/22388o/eclair/routing/route"
)

const (
	// DefaultBroadcastInterval is the default period of the gossip
	// rebroadcast tick.
	DefaultBroadcastInterval = time.Minute

	// DefaultPruneInterval is the default period of the stale channel
	// pruning tick.
	DefaultPruneInterval = time.Hour

	// DefaultChannelExcludeDuration is the default lifetime of a
	// directional channel exclusion.
	DefaultChannelExcludeDuration = 60 * time.Second

	// staleChannelBlocks is the number of blocks after which a channel's
	// funding height alone qualifies it as old. Roughly two weeks at 144
	// blocks per day.
	staleChannelBlocks = 2016

	// staleUpdateAge is the age after which a channel update no longer
	// keeps its channel alive.
	staleUpdateAge = 14 * 24 * time.Hour
)

// GossipPeer is the subset of a peer connection the router interacts with:
// it acknowledges every ingested message for flow control and can be sent
// protocol messages directly.
type GossipPeer interface {
	// PubKey returns the peer's identity key.
	PubKey() route.Vertex

	// SendMessage delivers a message to the remote peer.
	SendMessage(msg lnwire.Message) error

	// AckMessage acknowledges receipt of a previously delivered message
	// so the transport's flow control is never stalled.
	AckMessage(msg lnwire.Message)
}

// GraphStore is the persistence contract of the router. The backing store
// survives restarts; node announcements are persisted but intentionally not
// restored at startup.
type GraphStore interface {
	// ListChannels returns all persisted channel announcements.
	ListChannels() (map[lnwire.ShortChannelID]*lnwire.ChannelAnnouncement,
		error)

	// ListChannelUpdates returns all persisted channel updates.
	ListChannelUpdates() ([]*lnwire.ChannelUpdate, error)

	// AddChannel persists an accepted channel announcement.
	AddChannel(ann *lnwire.ChannelAnnouncement) error

	// RemoveChannel removes a channel and cascades to its updates.
	RemoveChannel(chanID lnwire.ShortChannelID) error

	// AddChannelUpdate persists a directional update seen for the first
	// time.
	AddChannelUpdate(update *lnwire.ChannelUpdate) error

	// UpdateChannelUpdate replaces a persisted directional update.
	UpdateChannelUpdate(update *lnwire.ChannelUpdate) error

	// AddNode persists a node announcement seen for the first time.
	AddNode(node *lnwire.NodeAnnouncement) error

	// UpdateNode replaces a persisted node announcement.
	UpdateNode(node *lnwire.NodeAnnouncement) error

	// RemoveNode removes the record stored for a node, if any.
	RemoveNode(nodeID [33]byte) error
}

// Config houses the set of dependencies and tunables of the router.
type Config struct {
	// ChainHash is the genesis hash of the chain this router serves.
	// Messages referencing another chain are rejected.
	ChainHash chainhash.Hash

	// SelfNode is this node's identity, used to orient private channel
	// updates.
	SelfNode route.Vertex

	// Store is the persistence layer backing the graph.
	Store GraphStore

	// Validator performs the signature checks on incoming gossip.
	Validator AnnouncementValidator

	// FundingValidator, if set, performs chain-side validation of fresh
	// channel announcements. Announcements park in the awaiting set until
	// its verdict arrives. When nil, announcements are accepted as soon
	// as their signatures check out.
	FundingValidator FundingValidator

	// Clock is the time source used for update staleness decisions.
	Clock clock.Clock

	// BestBlockHeight reports the current chain tip height, used for
	// funding-height staleness decisions.
	BestBlockHeight func() uint32

	// BroadcastTicker drives the periodic gossip rebroadcast tick.
	BroadcastTicker ticker.Ticker

	// PruneTicker drives the periodic stale channel sweep.
	PruneTicker ticker.Ticker

	// ChannelExcludeDuration is the lifetime of a directional channel
	// exclusion.
	ChannelExcludeDuration time.Duration
}

// networkMsg couples a gossip or query message with the peer that delivered
// it.
type networkMsg struct {
	peer GossipPeer
	msg  lnwire.Message
}

// localChannelUpdate describes a policy change on one of our own channels.
// If the channel is not yet known it is registered as a private channel.
type localChannelUpdate struct {
	shortChanID  lnwire.ShortChannelID
	remoteNodeID route.Vertex
	announcement fn.Option[*lnwire.ChannelAnnouncement]
	update       *lnwire.ChannelUpdate
}

// localChannelDown signals that one of our own channels closed.
type localChannelDown struct {
	shortChanID lnwire.ShortChannelID
}

// fundingSpent signals that a channel's funding output was spent on chain.
type fundingSpent struct {
	shortChanID lnwire.ShortChannelID
}

// validationResult carries a funding validator verdict back onto the event
// loop.
type validationResult struct {
	shortChanID lnwire.ShortChannelID
	err         error
}

// excludeChannel asks for a directional channel to be kept out of path
// finding for the configured ban duration.
type excludeChannel struct {
	desc ChannelDesc
}

// liftChannelExclusion re-admits a previously excluded directional channel.
type liftChannelExclusion struct {
	desc ChannelDesc
}

// sendChannelQuery kicks off the synchronization handshake with a peer.
type sendChannelQuery struct {
	peer GossipPeer
}

// routeRequest asks for a cheapest path between two nodes, subject to the
// given hints and blacklists.
type routeRequest struct {
	source         route.Vertex
	target         route.Vertex
	assistedRoutes [][]HopHint
	ignoreNodes    []route.Vertex
	ignoreChannels []lnwire.ShortChannelID

	resp chan *routeResult
}

// routeResult is the terminal outcome of a route request.
type routeResult struct {
	resp *RouteResponse
	err  error
}

// RouteResponse is the reply to a successful route request. The caller's
// blacklist inputs are echoed for retry bookkeeping.
type RouteResponse struct {
	// Route is the found route, cheapest first hop to last.
	Route *route.Route

	// IgnoreNodes echoes the request's node blacklist.
	IgnoreNodes []route.Vertex

	// IgnoreChannels echoes the request's channel blacklist.
	IgnoreChannels []lnwire.ShortChannelID
}

// RoutingState is a snapshot of the router's current view of the network.
type RoutingState struct {
	// Nodes holds the currently known node announcements.
	Nodes []*lnwire.NodeAnnouncement

	// Channels holds the accepted channel announcements in ascending
	// channel id order.
	Channels []*lnwire.ChannelAnnouncement

	// Updates holds the latest update per known channel direction.
	Updates []*lnwire.ChannelUpdate
}

// stateQueryKind enumerates the introspection queries served by the loop.
type stateQueryKind uint8

const (
	queryNodes stateQueryKind = iota
	queryChannels
	queryUpdates
	queryUpdatesMap
	queryRoutingState
)

// stateQuery asks the loop for a copy of part of its state.
type stateQuery struct {
	kind stateQueryKind
	resp chan interface{}
}

// awaitingChannel is a channel announcement parked while its chain-side
// validation is pending, along with the peers that delivered it in arrival
// order. The first origin is the peer that delivered it first.
type awaitingChannel struct {
	ann     *lnwire.ChannelAnnouncement
	origins []GossipPeer
}

// stashedUpdate is a channel update whose parent channel is still awaiting
// validation.
type stashedUpdate struct {
	update  *lnwire.ChannelUpdate
	origins []GossipPeer
}

// stashedNode is a node announcement whose only related channel is still
// awaiting validation.
type stashedNode struct {
	node    *lnwire.NodeAnnouncement
	origins []GossipPeer
}

// ChannelRouter is the layer 3 router of the daemon: it ingests authenticated
// gossip from many peers, reconciles it against the persisted snapshot and
// against locally owned channels, prunes stale entries, and services
// cheapest-path queries.
type ChannelRouter struct {
	started uint32 // to be used atomically
	stopped uint32 // to be used atomically

	ntfnClientCounter uint64 // to be used atomically

	cfg *Config

	// nodes holds the metadata of every announced node currently related
	// to at least one accepted channel.
	nodes map[route.Vertex]*lnwire.NodeAnnouncement

	// channels is the ordered set of accepted public channels.
	channels *channelMap

	// updates holds the freshest update per public channel direction.
	updates map[ChannelDesc]*lnwire.ChannelUpdate

	// awaiting holds announcements under chain-side validation, keyed by
	// compact channel id. Its key set is disjoint from channels.
	awaiting map[uint64]*awaitingChannel

	// stashedUpdates and stashedNodes buffer gossip whose parent channel
	// is in awaiting. stashedUpdates keeps arrival order; stashedNodes is
	// keyed by node and keeps no order.
	stashedUpdates []*stashedUpdate
	stashedNodes   map[route.Vertex]*stashedNode

	// privateChannels maps locally owned, unannounced channels to the
	// remote peer on the other end.
	privateChannels map[lnwire.ShortChannelID]route.Vertex

	// privateUpdates holds the freshest update per private channel
	// direction.
	privateUpdates map[ChannelDesc]*lnwire.ChannelUpdate

	// excludedChannels is the set of directional channels temporarily
	// banned from path finding.
	excludedChannels map[ChannelDesc]struct{}

	// graph carries one edge per enabled directional update, public or
	// private.
	graph *channelGraph

	// networkMsgs feeds gossip and query messages into the loop without
	// ever blocking the producing peers.
	networkMsgs *queue.ConcurrentQueue

	localMsgs         chan interface{}
	routeRequests     chan *routeRequest
	stateQueries      chan *stateQuery
	validationResults chan *validationResult
	ntfnClientUpdates chan *topologyClientUpdate

	// topologyClients maps client ids to their notification channels.
	// Owned by the event loop.
	topologyClients map[uint64]chan<- TopologyEvent

	wg   sync.WaitGroup
	quit chan struct{}
}

// New creates a channel router with the given dependencies.
func New(cfg Config) (*ChannelRouter, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("router requires a graph store")
	}
	if cfg.Validator == nil {
		return nil, fmt.Errorf("router requires a validator")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewDefaultClock()
	}
	if cfg.BroadcastTicker == nil {
		cfg.BroadcastTicker = ticker.New(DefaultBroadcastInterval)
	}
	if cfg.PruneTicker == nil {
		cfg.PruneTicker = ticker.New(DefaultPruneInterval)
	}
	if cfg.ChannelExcludeDuration == 0 {
		cfg.ChannelExcludeDuration = DefaultChannelExcludeDuration
	}
	if cfg.BestBlockHeight == nil {
		return nil, fmt.Errorf("router requires a best height source")
	}

	return &ChannelRouter{
		cfg:               &cfg,
		nodes:             make(map[route.Vertex]*lnwire.NodeAnnouncement),
		channels:          newChannelMap(),
		updates:           make(map[ChannelDesc]*lnwire.ChannelUpdate),
		awaiting:          make(map[uint64]*awaitingChannel),
		stashedNodes:      make(map[route.Vertex]*stashedNode),
		privateChannels:   make(map[lnwire.ShortChannelID]route.Vertex),
		privateUpdates:    make(map[ChannelDesc]*lnwire.ChannelUpdate),
		excludedChannels:  make(map[ChannelDesc]struct{}),
		graph:             newChannelGraph(),
		networkMsgs:       queue.NewConcurrentQueue(10),
		localMsgs:         make(chan interface{}),
		routeRequests:     make(chan *routeRequest),
		stateQueries:      make(chan *stateQuery),
		validationResults: make(chan *validationResult, 4),
		ntfnClientUpdates: make(chan *topologyClientUpdate),
		topologyClients:   make(map[uint64]chan<- TopologyEvent),
		quit:              make(chan struct{}),
	}, nil
}

// Start loads the persisted snapshot, rebuilds the in-memory graph, and
// launches the event loop.
func (r *ChannelRouter) Start() error {
	if !atomic.CompareAndSwapUint32(&r.started, 0, 1) {
		return nil
	}

	log.Infof("ChannelRouter starting")

	// Restore channels and updates from the snapshot. Node announcements
	// are intentionally not restored.
	channels, err := r.cfg.Store.ListChannels()
	if err != nil {
		return err
	}
	for _, ann := range channels {
		r.channels.Put(ann)
	}

	updates, err := r.cfg.Store.ListChannelUpdates()
	if err != nil {
		return err
	}
	for _, update := range updates {
		ann, ok := r.channels.Get(update.ShortChannelID)
		if !ok {
			log.Warnf("Dropping persisted update for unknown "+
				"channel %v", update.ShortChannelID)
			continue
		}

		desc := descFromAnnouncement(update, ann)
		r.updates[desc] = update
		r.graph.addEdge(desc, update)
	}

	log.Infof("Loaded %v channels and %v updates from the graph snapshot",
		r.channels.Len(), len(r.updates))

	r.networkMsgs.Start()
	r.cfg.BroadcastTicker.Resume()
	r.cfg.PruneTicker.Resume()

	r.wg.Add(1)
	go r.eventLoop()

	return nil
}

// Stop signals the event loop to exit and waits for it to drain.
func (r *ChannelRouter) Stop() error {
	if !atomic.CompareAndSwapUint32(&r.stopped, 0, 1) {
		return nil
	}

	log.Infof("ChannelRouter shutting down")

	close(r.quit)
	r.wg.Wait()

	r.networkMsgs.Stop()
	r.cfg.BroadcastTicker.Stop()
	r.cfg.PruneTicker.Stop()

	return nil
}

// eventLoop is the single consumer of every router event. It owns all
// mutable state, so no locking is needed anywhere in the package.
func (r *ChannelRouter) eventLoop() {
	defer r.wg.Done()

	for {
		select {
		case item := <-r.networkMsgs.ChanOut():
			msg := item.(*networkMsg)
			r.handleNetworkMessage(msg.peer, msg.msg)

		case msg := <-r.localMsgs:
			switch m := msg.(type) {
			case *localChannelUpdate:
				r.handleLocalChannelUpdate(m)
			case *localChannelDown:
				r.handleLocalChannelDown(m.shortChanID)
			case *fundingSpent:
				r.handleFundingSpent(m.shortChanID)
			case *excludeChannel:
				r.handleExcludeChannel(m.desc)
			case *liftChannelExclusion:
				delete(r.excludedChannels, m.desc)
				log.Debugf("Lifted exclusion of %v", m.desc)
			case *sendChannelQuery:
				r.handleSendChannelQuery(m.peer)
			}

		case result := <-r.validationResults:
			r.handleValidationResult(result)

		case req := <-r.routeRequests:
			r.handleRouteRequest(req)

		case q := <-r.stateQueries:
			r.handleStateQuery(q)

		case update := <-r.ntfnClientUpdates:
			if update.cancel {
				delete(r.topologyClients, update.clientID)
				continue
			}
			r.topologyClients[update.clientID] = update.ntfnChan

		case <-r.cfg.BroadcastTicker.Ticks():
			// Rebroadcast batching is not part of this profile;
			// the tick is accepted and dropped.
			log.Tracef("Broadcast tick")

		case <-r.cfg.PruneTicker.Ticks():
			r.pruneStaleChannels()

		case <-r.quit:
			return
		}
	}
}

// deliverLocal enqueues a local event, failing if the router is shutting
// down.
func (r *ChannelRouter) deliverLocal(msg interface{}) error {
	select {
	case r.localMsgs <- msg:
		return nil
	case <-r.quit:
		return ErrRouterShuttingDown
	}
}

// deliverNetwork enqueues a peer message. The queue never blocks the
// producing peer; the send only fails once the router is shutting down.
func (r *ChannelRouter) deliverNetwork(peer GossipPeer, msg lnwire.Message) {
	select {
	case r.networkMsgs.ChanIn() <- &networkMsg{peer: peer, msg: msg}:
	case <-r.quit:
	}
}

// ProcessChannelAnnouncement feeds a peer's channel announcement into the
// router.
func (r *ChannelRouter) ProcessChannelAnnouncement(peer GossipPeer,
	ann *lnwire.ChannelAnnouncement) {

	r.deliverNetwork(peer, ann)
}

// ProcessChannelUpdate feeds a peer's channel update into the router.
func (r *ChannelRouter) ProcessChannelUpdate(peer GossipPeer,
	update *lnwire.ChannelUpdate) {

	r.deliverNetwork(peer, update)
}

// ProcessNodeAnnouncement feeds a peer's node announcement into the router.
func (r *ChannelRouter) ProcessNodeAnnouncement(peer GossipPeer,
	node *lnwire.NodeAnnouncement) {

	r.deliverNetwork(peer, node)
}

// ProcessReplyChannelRange feeds a peer's range reply into the router.
func (r *ChannelRouter) ProcessReplyChannelRange(peer GossipPeer,
	msg *lnwire.ReplyChannelRange) {

	r.deliverNetwork(peer, msg)
}

// ProcessQueryChannelRange feeds an inbound range query into the router. The
// query is acknowledged but not served by this profile.
func (r *ChannelRouter) ProcessQueryChannelRange(peer GossipPeer,
	msg *lnwire.QueryChannelRange) {

	r.deliverNetwork(peer, msg)
}

// ProcessQueryShortChanIDs feeds an inbound id query into the router. The
// query is acknowledged but not served by this profile.
func (r *ChannelRouter) ProcessQueryShortChanIDs(peer GossipPeer,
	msg *lnwire.QueryShortChanIDs) {

	r.deliverNetwork(peer, msg)
}

// ProcessLocalChannelUpdate registers a policy change on one of our own
// channels, creating a private channel entry if the channel is unknown.
func (r *ChannelRouter) ProcessLocalChannelUpdate(
	shortChanID lnwire.ShortChannelID, remoteNodeID route.Vertex,
	announcement fn.Option[*lnwire.ChannelAnnouncement],
	update *lnwire.ChannelUpdate) error {

	return r.deliverLocal(&localChannelUpdate{
		shortChanID:  shortChanID,
		remoteNodeID: remoteNodeID,
		announcement: announcement,
		update:       update,
	})
}

// ProcessLocalChannelDown removes one of our own channels along with its
// private updates.
func (r *ChannelRouter) ProcessLocalChannelDown(
	shortChanID lnwire.ShortChannelID) error {

	return r.deliverLocal(&localChannelDown{shortChanID: shortChanID})
}

// ProcessFundingSpent reports that the funding output of a channel was spent
// on chain; a known channel is treated as lost.
func (r *ChannelRouter) ProcessFundingSpent(
	shortChanID lnwire.ShortChannelID) error {

	return r.deliverLocal(&fundingSpent{shortChanID: shortChanID})
}

// ExcludeChannel bans the directional channel from path finding for the
// configured exclusion duration.
func (r *ChannelRouter) ExcludeChannel(desc ChannelDesc) error {
	return r.deliverLocal(&excludeChannel{desc: desc})
}

// SyncWithPeer queries the peer for the full range of channel ids it knows,
// backfilling the ones we miss.
func (r *ChannelRouter) SyncWithPeer(peer GossipPeer) error {
	return r.deliverLocal(&sendChannelQuery{peer: peer})
}

// FindRoute computes the cheapest route from source to target, applying the
// given routing hints and excluding the given nodes and channels. The
// request's blacklists are echoed in the response for retry bookkeeping.
func (r *ChannelRouter) FindRoute(source, target route.Vertex,
	assistedRoutes [][]HopHint, ignoreNodes []route.Vertex,
	ignoreChannels []lnwire.ShortChannelID) (*RouteResponse, error) {

	req := &routeRequest{
		source:         source,
		target:         target,
		assistedRoutes: assistedRoutes,
		ignoreNodes:    ignoreNodes,
		ignoreChannels: ignoreChannels,
		resp:           make(chan *routeResult, 1),
	}

	select {
	case r.routeRequests <- req:
	case <-r.quit:
		return nil, ErrRouterShuttingDown
	}

	select {
	case result := <-req.resp:
		return result.resp, result.err
	case <-r.quit:
		return nil, ErrRouterShuttingDown
	}
}

// queryState asks the event loop for a copy of part of its state.
func (r *ChannelRouter) queryState(kind stateQueryKind) (interface{}, error) {
	q := &stateQuery{
		kind: kind,
		resp: make(chan interface{}, 1),
	}

	select {
	case r.stateQueries <- q:
	case <-r.quit:
		return nil, ErrRouterShuttingDown
	}

	select {
	case resp := <-q.resp:
		return resp, nil
	case <-r.quit:
		return nil, ErrRouterShuttingDown
	}
}

// Nodes returns the currently known node announcements.
func (r *ChannelRouter) Nodes() ([]*lnwire.NodeAnnouncement, error) {
	resp, err := r.queryState(queryNodes)
	if err != nil {
		return nil, err
	}
	return resp.([]*lnwire.NodeAnnouncement), nil
}

// Channels returns the accepted channel announcements in ascending id order.
func (r *ChannelRouter) Channels() ([]*lnwire.ChannelAnnouncement, error) {
	resp, err := r.queryState(queryChannels)
	if err != nil {
		return nil, err
	}
	return resp.([]*lnwire.ChannelAnnouncement), nil
}

// Updates returns the latest update per known public channel direction.
func (r *ChannelRouter) Updates() ([]*lnwire.ChannelUpdate, error) {
	resp, err := r.queryState(queryUpdates)
	if err != nil {
		return nil, err
	}
	return resp.([]*lnwire.ChannelUpdate), nil
}

// UpdatesMap returns a copy of the desc-keyed public update table.
func (r *ChannelRouter) UpdatesMap() (map[ChannelDesc]*lnwire.ChannelUpdate,
	error) {

	resp, err := r.queryState(queryUpdatesMap)
	if err != nil {
		return nil, err
	}
	return resp.(map[ChannelDesc]*lnwire.ChannelUpdate), nil
}

// GetRoutingState returns a snapshot of nodes, channels, and updates.
func (r *ChannelRouter) GetRoutingState() (*RoutingState, error) {
	resp, err := r.queryState(queryRoutingState)
	if err != nil {
		return nil, err
	}
	return resp.(*RoutingState), nil
}

// handleStateQuery serves one introspection query from loop-owned state.
func (r *ChannelRouter) handleStateQuery(q *stateQuery) {
	switch q.kind {
	case queryNodes:
		nodes := make([]*lnwire.NodeAnnouncement, 0, len(r.nodes))
		for _, node := range r.nodes {
			nodes = append(nodes, node)
		}
		q.resp <- nodes

	case queryChannels:
		q.resp <- r.channelList()

	case queryUpdates:
		q.resp <- r.updateList()

	case queryUpdatesMap:
		updates := make(
			map[ChannelDesc]*lnwire.ChannelUpdate, len(r.updates),
		)
		for desc, update := range r.updates {
			updates[desc] = update
		}
		q.resp <- updates

	case queryRoutingState:
		nodes := make([]*lnwire.NodeAnnouncement, 0, len(r.nodes))
		for _, node := range r.nodes {
			nodes = append(nodes, node)
		}
		q.resp <- &RoutingState{
			Nodes:    nodes,
			Channels: r.channelList(),
			Updates:  r.updateList(),
		}
	}
}

func (r *ChannelRouter) channelList() []*lnwire.ChannelAnnouncement {
	channels := make([]*lnwire.ChannelAnnouncement, 0, r.channels.Len())
	r.channels.ForEach(func(_ lnwire.ShortChannelID,
		ann *lnwire.ChannelAnnouncement) bool {

		channels = append(channels, ann)
		return true
	})
	return channels
}

func (r *ChannelRouter) updateList() []*lnwire.ChannelUpdate {
	updates := make([]*lnwire.ChannelUpdate, 0, len(r.updates))
	for _, update := range r.updates {
		updates = append(updates, update)
	}
	return updates
}

// handleNetworkMessage acknowledges and dispatches one peer message. Every
// message is acknowledged regardless of the processing outcome so peer flow
// control never stalls.
func (r *ChannelRouter) handleNetworkMessage(peer GossipPeer,
	msg lnwire.Message) {

	peer.AckMessage(msg)

	switch m := msg.(type) {
	case *lnwire.ChannelAnnouncement:
		if m.ChainHash != r.cfg.ChainHash {
			r.sendPeerError(peer, "announcement of %v: %v",
				m.ShortChannelID, ErrUnknownChainHash)
			return
		}
		r.processChannelAnnouncement(peer, m)

	case *lnwire.ChannelUpdate:
		if m.ChainHash != r.cfg.ChainHash {
			r.sendPeerError(peer, "update for %v: %v",
				m.ShortChannelID, ErrUnknownChainHash)
			return
		}
		r.processChannelUpdate(peer, m)

	case *lnwire.NodeAnnouncement:
		r.processNodeAnnouncement(peer, m)

	case *lnwire.ReplyChannelRange:
		if err := r.handleReplyChannelRange(peer, m); err != nil {
			log.Warnf("Ignoring channel range reply from %v: %v",
				peer.PubKey(), err)
		}

	case *lnwire.QueryChannelRange, *lnwire.QueryShortChanIDs:
		// Serving inbound channel queries is not part of this
		// profile.
		log.Debugf("Ignoring inbound %v from %v", msg.MsgType(),
			peer.PubKey())

	default:
		log.Warnf("Unhandled message %v from %v", msg.MsgType(),
			peer.PubKey())
	}
}

// sendPeerError reports a protocol violation back to the offending peer.
func (r *ChannelRouter) sendPeerError(peer GossipPeer, format string,
	args ...interface{}) {

	if peer == nil {
		return
	}

	reason := fmt.Sprintf(format, args...)
	log.Errorf("Peer %v: %v", peer.PubKey(), reason)

	err := peer.SendMessage(&lnwire.Error{Data: lnwire.ErrorData(reason)})
	if err != nil {
		log.Warnf("Unable to send error to peer %v: %v", peer.PubKey(),
			err)
	}
}

// processChannelAnnouncement classifies one channel announcement against the
// current state: duplicate, already awaiting, invalid, or fresh.
func (r *ChannelRouter) processChannelAnnouncement(peer GossipPeer,
	ann *lnwire.ChannelAnnouncement) {

	chanID := ann.ShortChannelID

	// Duplicate of an accepted channel.
	if r.channels.Has(chanID) {
		log.Debugf("Ignoring duplicate announcement of %v", chanID)
		return
	}

	// Already under validation: record the extra origin so the channel is
	// not echoed back to this peer later.
	if waiting, ok := r.awaiting[chanID.ToUint64()]; ok {
		waiting.origins = append(waiting.origins, peer)
		log.Debugf("Channel %v already awaiting validation, recorded "+
			"origin %v", chanID, peer.PubKey())
		return
	}

	if err := r.cfg.Validator.ValidateChannelAnn(ann); err != nil {
		r.sendPeerError(peer, "invalid announcement of %v: %v", chanID,
			err)
		return
	}

	// With signatures verified, either park the announcement for
	// chain-side validation or accept it outright.
	if r.cfg.FundingValidator != nil {
		r.awaiting[chanID.ToUint64()] = &awaitingChannel{
			ann:     ann,
			origins: []GossipPeer{peer},
		}

		r.wg.Add(1)
		go func() {
			defer r.wg.Done()

			err := r.cfg.FundingValidator.ValidateChannel(ann)
			select {
			case r.validationResults <- &validationResult{
				shortChanID: chanID,
				err:         err,
			}:
			case <-r.quit:
			}
		}()
		return
	}

	r.acceptChannel(ann)
}

// handleValidationResult graduates or discards an awaiting announcement based
// on the funding validator's verdict, draining any gossip stashed behind it.
func (r *ChannelRouter) handleValidationResult(result *validationResult) {
	waiting, ok := r.awaiting[result.shortChanID.ToUint64()]
	if !ok {
		return
	}
	delete(r.awaiting, result.shortChanID.ToUint64())

	if result.err != nil {
		log.Warnf("Channel %v failed chain validation: %v",
			result.shortChanID, result.err)
		r.dropStashed(result.shortChanID, waiting.ann)
		return
	}

	r.acceptChannel(waiting.ann)
	r.drainStash(result.shortChanID, waiting.ann)
}

// acceptChannel installs a validated announcement: persists it, inserts it
// into the ordered channel set, and retires any private entry for the same
// id.
func (r *ChannelRouter) acceptChannel(ann *lnwire.ChannelAnnouncement) {
	chanID := ann.ShortChannelID

	if err := r.cfg.Store.AddChannel(ann); err != nil {
		log.Criticalf("Unable to persist channel %v: %v", chanID, err)
		return
	}

	r.channels.Put(ann)

	// A public announcement supersedes a private view of the same
	// channel.
	if _, ok := r.privateChannels[chanID]; ok {
		r.forgetPrivateChannel(chanID)
	}

	log.Debugf("Accepted channel %v: %x <-> %x", chanID, ann.NodeID1,
		ann.NodeID2)
}

// drainStash re-processes the updates (in arrival order) and then the node
// announcements of the channel's two endpoints (node1 first) that were
// stashed while the channel was awaiting validation.
func (r *ChannelRouter) drainStash(chanID lnwire.ShortChannelID,
	ann *lnwire.ChannelAnnouncement) {

	remaining := r.stashedUpdates[:0]
	for _, stashed := range r.stashedUpdates {
		if stashed.update.ShortChannelID != chanID {
			remaining = append(remaining, stashed)
			continue
		}

		origin := GossipPeer(nil)
		if len(stashed.origins) > 0 {
			origin = stashed.origins[0]
		}
		r.applyPublicChannelUpdate(origin, stashed.update, ann)
	}
	r.stashedUpdates = remaining

	for _, nodeID := range [][33]byte{ann.NodeID1, ann.NodeID2} {
		vertex := route.Vertex(nodeID)
		stashed, ok := r.stashedNodes[vertex]
		if !ok {
			continue
		}
		delete(r.stashedNodes, vertex)

		origin := GossipPeer(nil)
		if len(stashed.origins) > 0 {
			origin = stashed.origins[0]
		}
		r.processNodeAnnouncement(origin, stashed.node)
	}
}

// dropStashed discards stash entries whose parent channel failed validation.
func (r *ChannelRouter) dropStashed(chanID lnwire.ShortChannelID,
	ann *lnwire.ChannelAnnouncement) {

	remaining := r.stashedUpdates[:0]
	for _, stashed := range r.stashedUpdates {
		if stashed.update.ShortChannelID != chanID {
			remaining = append(remaining, stashed)
		}
	}
	r.stashedUpdates = remaining

	for _, nodeID := range [][33]byte{ann.NodeID1, ann.NodeID2} {
		vertex := route.Vertex(nodeID)
		if _, ok := r.stashedNodes[vertex]; !ok {
			continue
		}
		if r.isRelatedToKnownChannel(vertex) ||
			r.isRelatedToAwaitingChannel(vertex) {

			continue
		}
		delete(r.stashedNodes, vertex)
	}
}

// descFromAnnouncement derives the directed edge key of a public update: the
// direction bit selects which announced node originates the update.
func descFromAnnouncement(update *lnwire.ChannelUpdate,
	ann *lnwire.ChannelAnnouncement) ChannelDesc {

	if update.IsNode1() {
		return ChannelDesc{
			ShortChannelID: update.ShortChannelID,
			A:              route.Vertex(ann.NodeID1),
			B:              route.Vertex(ann.NodeID2),
		}
	}

	return ChannelDesc{
		ShortChannelID: update.ShortChannelID,
		A:              route.Vertex(ann.NodeID2),
		B:              route.Vertex(ann.NodeID1),
	}
}

// privateDesc derives the directed edge key of a private update. The
// canonical node1 of a private channel is the lexicographically lesser of
// our key and the remote's.
func (r *ChannelRouter) privateDesc(update *lnwire.ChannelUpdate,
	remote route.Vertex) ChannelDesc {

	node1, node2 := r.cfg.SelfNode, remote
	if bytes.Compare(node2[:], node1[:]) < 0 {
		node1, node2 = node2, node1
	}

	if update.IsNode1() {
		return ChannelDesc{
			ShortChannelID: update.ShortChannelID,
			A:              node1,
			B:              node2,
		}
	}

	return ChannelDesc{
		ShortChannelID: update.ShortChannelID,
		A:              node2,
		B:              node1,
	}
}

// processChannelUpdate classifies one channel update: known public channel,
// awaiting channel (stash), private channel, or unknown (dropped).
func (r *ChannelRouter) processChannelUpdate(peer GossipPeer,
	update *lnwire.ChannelUpdate) {

	chanID := update.ShortChannelID

	// Known public channel.
	if ann, ok := r.channels.Get(chanID); ok {
		r.applyPublicChannelUpdate(peer, update, ann)
		return
	}

	// Parent channel still under validation: stash.
	if _, ok := r.awaiting[chanID.ToUint64()]; ok {
		r.stashChannelUpdate(peer, update)
		return
	}

	// Locally owned private channel.
	if remote, ok := r.privateChannels[chanID]; ok {
		r.applyPrivateChannelUpdate(peer, update, remote)
		return
	}

	log.Debugf("Ignoring update for unknown channel %v", chanID)
}

// stashChannelUpdate buffers an update behind its awaiting parent channel,
// recording every peer that independently delivered it.
func (r *ChannelRouter) stashChannelUpdate(peer GossipPeer,
	update *lnwire.ChannelUpdate) {

	for _, stashed := range r.stashedUpdates {
		s := stashed.update
		if s.ShortChannelID == update.ShortChannelID &&
			s.ChannelFlags == update.ChannelFlags &&
			s.Timestamp == update.Timestamp {

			stashed.origins = append(stashed.origins, peer)
			return
		}
	}

	r.stashedUpdates = append(r.stashedUpdates, &stashedUpdate{
		update:  update,
		origins: []GossipPeer{peer},
	})
}

// applyPublicChannelUpdate runs the timestamp / signature / replace logic of
// a public update and maintains the corresponding graph edge.
func (r *ChannelRouter) applyPublicChannelUpdate(peer GossipPeer,
	update *lnwire.ChannelUpdate, ann *lnwire.ChannelAnnouncement) {

	desc := descFromAnnouncement(update, ann)

	existing, haveExisting := r.updates[desc]
	if haveExisting && existing.Timestamp >= update.Timestamp {
		log.Debugf("Ignoring outdated update for %v (ts=%v)", desc,
			update.Timestamp)
		return
	}

	err := r.cfg.Validator.ValidateChannelUpdate(desc.A, update)
	if err != nil {
		r.sendPeerError(peer, "invalid update for %v: %v",
			update.ShortChannelID, err)
		return
	}

	if haveExisting {
		err = r.cfg.Store.UpdateChannelUpdate(update)
	} else {
		err = r.cfg.Store.AddChannelUpdate(update)
	}
	if err != nil {
		log.Criticalf("Unable to persist update for %v: %v", desc, err)
		return
	}

	r.updates[desc] = update
	r.graph.removeEdge(desc)
	r.graph.addEdge(desc, update)

	r.notifyTopologyChange(ChannelUpdateReceived{Update: update})
}

// applyPrivateChannelUpdate mirrors applyPublicChannelUpdate for a locally
// owned unannounced channel. Private updates are not persisted.
func (r *ChannelRouter) applyPrivateChannelUpdate(peer GossipPeer,
	update *lnwire.ChannelUpdate, remote route.Vertex) {

	desc := r.privateDesc(update, remote)

	existing, haveExisting := r.privateUpdates[desc]
	if haveExisting && existing.Timestamp >= update.Timestamp {
		log.Debugf("Ignoring outdated private update for %v", desc)
		return
	}

	err := r.cfg.Validator.ValidateChannelUpdate(desc.A, update)
	if err != nil {
		r.sendPeerError(peer, "invalid update for %v: %v",
			update.ShortChannelID, err)
		return
	}

	r.privateUpdates[desc] = update
	r.graph.removeEdge(desc)
	r.graph.addEdge(desc, update)

	r.notifyTopologyChange(ChannelUpdateReceived{Update: update})
}

// isRelatedToKnownChannel reports whether any accepted channel references the
// node.
func (r *ChannelRouter) isRelatedToKnownChannel(nodeID route.Vertex) bool {
	related := false
	r.channels.ForEach(func(_ lnwire.ShortChannelID,
		ann *lnwire.ChannelAnnouncement) bool {

		if route.Vertex(ann.NodeID1) == nodeID ||
			route.Vertex(ann.NodeID2) == nodeID {

			related = true
			return false
		}
		return true
	})
	return related
}

// isRelatedToAwaitingChannel reports whether any awaiting channel references
// the node.
func (r *ChannelRouter) isRelatedToAwaitingChannel(nodeID route.Vertex) bool {
	for _, waiting := range r.awaiting {
		if route.Vertex(waiting.ann.NodeID1) == nodeID ||
			route.Vertex(waiting.ann.NodeID2) == nodeID {

			return true
		}
	}
	return false
}

// processNodeAnnouncement classifies one node announcement: stashed
// duplicate, outdated, invalid, replacement, fresh, stash, or unrelated.
func (r *ChannelRouter) processNodeAnnouncement(peer GossipPeer,
	node *lnwire.NodeAnnouncement) {

	nodeID := route.Vertex(node.NodeID)

	// Already stashed: just record the extra origin.
	if stashed, ok := r.stashedNodes[nodeID]; ok {
		stashed.origins = append(stashed.origins, peer)
		return
	}

	if existing, ok := r.nodes[nodeID]; ok &&
		existing.Timestamp >= node.Timestamp {

		log.Debugf("Ignoring outdated announcement of node %v", nodeID)
		return
	}

	if err := r.cfg.Validator.ValidateNodeAnn(node); err != nil {
		r.sendPeerError(peer, "invalid announcement of node %v: %v",
			nodeID, err)
		return
	}

	if _, ok := r.nodes[nodeID]; ok {
		r.nodes[nodeID] = node
		if err := r.cfg.Store.UpdateNode(node); err != nil {
			log.Criticalf("Unable to persist node %v: %v", nodeID,
				err)
		}
		r.notifyTopologyChange(NodeUpdated{Node: node})
		return
	}

	if r.isRelatedToKnownChannel(nodeID) {
		r.nodes[nodeID] = node
		if err := r.cfg.Store.AddNode(node); err != nil {
			log.Criticalf("Unable to persist node %v: %v", nodeID,
				err)
		}
		r.notifyTopologyChange(NodeDiscovered{Node: node})
		return
	}

	if r.isRelatedToAwaitingChannel(nodeID) {
		r.stashedNodes[nodeID] = &stashedNode{
			node:    node,
			origins: []GossipPeer{peer},
		}
		return
	}

	// Unrelated to any channel we know: drop it, along with any stale
	// persisted record.
	log.Debugf("Ignoring announcement of unrelated node %v", nodeID)
	if err := r.cfg.Store.RemoveNode(node.NodeID); err != nil {
		log.Warnf("Unable to remove stale node record %v: %v", nodeID,
			err)
	}
}

// handleLocalChannelUpdate routes a local policy change to the right update
// path, registering a fresh private channel when needed.
func (r *ChannelRouter) handleLocalChannelUpdate(msg *localChannelUpdate) {
	// The channel is already public: regular public processing.
	if ann, ok := r.channels.Get(msg.shortChanID); ok {
		r.applyPublicChannelUpdate(nil, msg.update, ann)
		return
	}

	// A fresh announcement rides along: accept it first, then apply the
	// update as public gossip.
	if ann := msg.announcement.UnwrapOr(nil); ann != nil {
		chanID := ann.ShortChannelID
		if _, awaited := r.awaiting[chanID.ToUint64()]; awaited {
			r.stashChannelUpdate(nil, msg.update)
			return
		}

		if !r.channels.Has(chanID) {
			err := r.cfg.Validator.ValidateChannelAnn(ann)
			if err != nil {
				log.Errorf("Invalid local announcement of "+
					"%v: %v", chanID, err)
				return
			}
			r.acceptChannel(ann)
		}

		r.applyPublicChannelUpdate(nil, msg.update, ann)
		return
	}

	if remote, ok := r.privateChannels[msg.shortChanID]; ok {
		r.applyPrivateChannelUpdate(nil, msg.update, remote)
		return
	}

	// First sighting of this channel: register it as private.
	log.Debugf("Registering private channel %v with %v", msg.shortChanID,
		msg.remoteNodeID)
	r.privateChannels[msg.shortChanID] = msg.remoteNodeID
	r.applyPrivateChannelUpdate(nil, msg.update, msg.remoteNodeID)
}

// forgetPrivateChannel drops a private channel along with its updates and
// graph edges.
func (r *ChannelRouter) forgetPrivateChannel(chanID lnwire.ShortChannelID) {
	delete(r.privateChannels, chanID)

	for desc := range r.privateUpdates {
		if desc.ShortChannelID != chanID {
			continue
		}
		delete(r.privateUpdates, desc)
		r.graph.removeEdge(desc)
	}
}

// handleLocalChannelDown removes a closed local channel.
func (r *ChannelRouter) handleLocalChannelDown(chanID lnwire.ShortChannelID) {
	log.Debugf("Local channel %v went down", chanID)
	r.forgetPrivateChannel(chanID)
}

// handleFundingSpent treats a spent funding output as the loss of the
// channel: the channel, its updates, and its edges all go, along with any
// node orphaned by the removal.
func (r *ChannelRouter) handleFundingSpent(chanID lnwire.ShortChannelID) {
	ann, ok := r.channels.Get(chanID)
	if !ok {
		return
	}

	log.Infof("Channel %v was spent, removing from graph", chanID)

	r.removeChannel(ann)
	r.removeOrphanedNodes([]*lnwire.ChannelAnnouncement{ann})
}

// removeChannel removes one accepted channel: both update rows, both graph
// edges, the ordered map entry, and the persisted record (which cascades to
// updates). A ChannelLost event is published.
func (r *ChannelRouter) removeChannel(ann *lnwire.ChannelAnnouncement) {
	chanID := ann.ShortChannelID

	descs := []ChannelDesc{
		{
			ShortChannelID: chanID,
			A:              route.Vertex(ann.NodeID1),
			B:              route.Vertex(ann.NodeID2),
		},
		{
			ShortChannelID: chanID,
			A:              route.Vertex(ann.NodeID2),
			B:              route.Vertex(ann.NodeID1),
		},
	}
	for _, desc := range descs {
		delete(r.updates, desc)
		r.graph.removeEdge(desc)
	}

	r.channels.Delete(chanID)

	if err := r.cfg.Store.RemoveChannel(chanID); err != nil {
		log.Criticalf("Unable to remove channel %v from store: %v",
			chanID, err)
	}

	r.notifyTopologyChange(ChannelLost{ShortChannelID: chanID})
}

// removeOrphanedNodes drops every endpoint of the removed channels that no
// longer appears in any remaining public channel.
func (r *ChannelRouter) removeOrphanedNodes(
	removed []*lnwire.ChannelAnnouncement) {

	endpoints := make(map[route.Vertex]struct{})
	for _, ann := range removed {
		endpoints[route.Vertex(ann.NodeID1)] = struct{}{}
		endpoints[route.Vertex(ann.NodeID2)] = struct{}{}
	}

	for nodeID := range endpoints {
		if r.isRelatedToKnownChannel(nodeID) {
			continue
		}

		if _, ok := r.nodes[nodeID]; !ok {
			continue
		}
		delete(r.nodes, nodeID)

		if err := r.cfg.Store.RemoveNode(nodeID); err != nil {
			log.Criticalf("Unable to remove node %v from store: "+
				"%v", nodeID, err)
		}

		r.notifyTopologyChange(NodeLost{NodeID: nodeID})
	}
}

// isStaleChannel reports whether the channel is both old by funding height
// and old by latest update. A brand-new channel with no updates stays valid
// until both clocks expire.
func (r *ChannelRouter) isStaleChannel(ann *lnwire.ChannelAnnouncement,
	bestHeight uint32, now time.Time) bool {

	fundingHeight := int64(ann.ShortChannelID.BlockHeight)
	if fundingHeight >= int64(bestHeight)-staleChannelBlocks {
		return false
	}

	cutoff := now.Add(-staleUpdateAge).Unix()
	for _, desc := range bothDescs(ann) {
		update, ok := r.updates[desc]
		if ok && int64(update.Timestamp) >= cutoff {
			return false
		}
	}

	return true
}

// bothDescs returns the two directed edge keys of a channel.
func bothDescs(ann *lnwire.ChannelAnnouncement) [2]ChannelDesc {
	return [2]ChannelDesc{
		{
			ShortChannelID: ann.ShortChannelID,
			A:              route.Vertex(ann.NodeID1),
			B:              route.Vertex(ann.NodeID2),
		},
		{
			ShortChannelID: ann.ShortChannelID,
			A:              route.Vertex(ann.NodeID2),
			B:              route.Vertex(ann.NodeID1),
		},
	}
}

// pruneStaleChannels sweeps the public channel set, removing every channel
// that is stale by both the funding-height and the update-age clock, then
// dropping any node orphaned by the sweep.
func (r *ChannelRouter) pruneStaleChannels() {
	bestHeight := r.cfg.BestBlockHeight()
	now := r.cfg.Clock.Now()

	var stale []*lnwire.ChannelAnnouncement
	r.channels.ForEach(func(_ lnwire.ShortChannelID,
		ann *lnwire.ChannelAnnouncement) bool {

		if r.isStaleChannel(ann, bestHeight, now) {
			stale = append(stale, ann)
		}
		return true
	})

	if len(stale) == 0 {
		return
	}

	log.Infof("Pruning %v stale channels at height %v", len(stale),
		bestHeight)

	for _, ann := range stale {
		r.removeChannel(ann)
	}
	r.removeOrphanedNodes(stale)
}

// handleExcludeChannel bans the desc from path finding and schedules the
// lift. The lift is fire and forget: exclusions do not survive a restart.
func (r *ChannelRouter) handleExcludeChannel(desc ChannelDesc) {
	r.excludedChannels[desc] = struct{}{}

	log.Debugf("Excluding %v from path finding for %v", desc,
		r.cfg.ChannelExcludeDuration)

	time.AfterFunc(r.cfg.ChannelExcludeDuration, func() {
		select {
		case r.localMsgs <- &liftChannelExclusion{desc: desc}:
		case <-r.quit:
		}
	})
}

// handleSendChannelQuery opens the synchronization handshake by asking the
// peer for every channel id it knows across the full block range.
func (r *ChannelRouter) handleSendChannelQuery(peer GossipPeer) {
	log.Debugf("Sending channel range query to %v", peer.PubKey())

	err := peer.SendMessage(&lnwire.QueryChannelRange{
		ChainHash:        r.cfg.ChainHash,
		FirstBlockHeight: 0,
		NumBlocks:        math.MaxUint32,
	})
	if err != nil {
		log.Warnf("Unable to query peer %v: %v", peer.PubKey(), err)
	}
}

// keepChannelID admits ids whose funding height lies within the queried
// block window and whose channel is not stale.
func (r *ChannelRouter) keepChannelID(firstBlock, numBlocks uint32,
	ann *lnwire.ChannelAnnouncement, bestHeight uint32,
	now time.Time) bool {

	height := ann.ShortChannelID.BlockHeight
	if height < firstBlock {
		return false
	}
	if uint64(height) > uint64(firstBlock)+uint64(numBlocks) {
		return false
	}

	return !r.isStaleChannel(ann, bestHeight, now)
}

// handleReplyChannelRange diffs the peer's id list against our own ids in
// the same block window and queries back the ids we miss, preserving the
// peer's ordering.
func (r *ChannelRouter) handleReplyChannelRange(peer GossipPeer,
	msg *lnwire.ReplyChannelRange) error {

	if msg.ChainHash != r.cfg.ChainHash {
		return fmt.Errorf("%w: %v", ErrUnknownChainHash, msg.ChainHash)
	}

	bestHeight := r.cfg.BestBlockHeight()
	now := r.cfg.Clock.Now()

	ours := make(map[uint64]struct{}, r.channels.Len())
	r.channels.ForEach(func(chanID lnwire.ShortChannelID,
		ann *lnwire.ChannelAnnouncement) bool {

		if r.keepChannelID(msg.FirstBlockHeight, msg.NumBlocks, ann,
			bestHeight, now) {

			ours[chanID.ToUint64()] = struct{}{}
		}
		return true
	})

	var missing []lnwire.ShortChannelID
	for _, chanID := range msg.ShortChanIDs {
		if _, ok := ours[chanID.ToUint64()]; !ok {
			missing = append(missing, chanID)
		}
	}

	log.Debugf("Peer %v knows %v channels in window, we miss %v",
		peer.PubKey(), len(msg.ShortChanIDs), len(missing))

	if len(missing) == 0 {
		return nil
	}

	err := peer.SendMessage(lnwire.NewQueryShortChanIDs(
		r.cfg.ChainHash, lnwire.EncodingSortedPlain, missing,
	))
	if err != nil {
		log.Warnf("Unable to query peer %v: %v", peer.PubKey(), err)
	}

	return nil
}

// handleRouteRequest services one shortest-path query against a transient
// view of the graph that overlays the request's hints and removes its
// blacklists.
func (r *ChannelRouter) handleRouteRequest(req *routeRequest) {
	overlays := assistedUpdates(req.assistedRoutes, req.target)
	banned := r.assembleBlacklist(req.ignoreNodes, req.ignoreChannels)

	log.Debugf("Finding route %v -> %v (%v overlays, %v banned)",
		req.source, req.target, len(overlays), len(banned))
	log.Tracef("Request blacklist: %v",
		newLogClosure(func() string { return spew.Sdump(banned) }))

	// Only take the cost of a copy when the query actually changes the
	// view.
	working := r.graph
	if len(overlays) > 0 || len(banned) > 0 {
		working = r.graph.clone()

		// Overlays beat existing edges for the same desc.
		for desc, update := range overlays {
			working.removeEdge(desc)
			working.addEdge(desc, update)
		}
		for desc := range banned {
			working.removeEdge(desc)
		}
	}

	hops, err := findPath(working, req.source, req.target)
	if err != nil {
		req.resp <- &routeResult{err: err}
	} else {
		req.resp <- &routeResult{resp: &RouteResponse{
			Route: &route.Route{
				SourcePubKey: req.source,
				TargetPubKey: req.target,
				Hops:         hops,
			},
			IgnoreNodes:    req.ignoreNodes,
			IgnoreChannels: req.ignoreChannels,
		}}
	}

	// The payment layer has concluded the ignored channels are dead:
	// synthesize a spend for each so they are forgotten entirely.
	for _, chanID := range req.ignoreChannels {
		r.handleFundingSpent(chanID)
	}
}

// assembleBlacklist unions the time-expiring exclusions with the request's
// node and channel blacklists, expressed as directed edge keys.
func (r *ChannelRouter) assembleBlacklist(ignoreNodes []route.Vertex,
	ignoreChannels []lnwire.ShortChannelID) map[ChannelDesc]struct{} {

	banned := make(map[ChannelDesc]struct{}, len(r.excludedChannels))
	for desc := range r.excludedChannels {
		banned[desc] = struct{}{}
	}

	if len(ignoreNodes) > 0 {
		ignored := make(map[route.Vertex]struct{}, len(ignoreNodes))
		for _, nodeID := range ignoreNodes {
			ignored[nodeID] = struct{}{}
		}

		for desc := range r.updates {
			if _, ok := ignored[desc.A]; ok {
				banned[desc] = struct{}{}
				continue
			}
			if _, ok := ignored[desc.B]; ok {
				banned[desc] = struct{}{}
			}
		}
		for desc := range r.privateUpdates {
			if _, ok := ignored[desc.A]; ok {
				banned[desc] = struct{}{}
				continue
			}
			if _, ok := ignored[desc.B]; ok {
				banned[desc] = struct{}{}
			}
		}
	}

	for _, chanID := range ignoreChannels {
		if ann, ok := r.channels.Get(chanID); ok {
			for _, desc := range bothDescs(ann) {
				banned[desc] = struct{}{}
			}
			continue
		}

		if remote, ok := r.privateChannels[chanID]; ok {
			node1, node2 := r.cfg.SelfNode, remote
			if bytes.Compare(node2[:], node1[:]) < 0 {
				node1, node2 = node2, node1
			}
			banned[ChannelDesc{
				ShortChannelID: chanID,
				A:              node1,
				B:              node2,
			}] = struct{}{}
			banned[ChannelDesc{
				ShortChannelID: chanID,
				A:              node2,
				B:              node1,
			}] = struct{}{}
		}
	}

	return banned
}
