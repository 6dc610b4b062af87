package routing

import (
	"fmt"
	"sync"

	"github.com/22388o/eclair/lnwire"
	"github.com/22388o/eclair/routing/route"
)

// mockPeer records every message the router sends or acknowledges.
type mockPeer struct {
	pubKey route.Vertex

	mu    sync.Mutex
	sent  []lnwire.Message
	acked []lnwire.Message
}

var _ GossipPeer = (*mockPeer)(nil)

func newMockPeer(id byte) *mockPeer {
	var pubKey route.Vertex
	pubKey[0] = 0x02
	pubKey[32] = id
	return &mockPeer{pubKey: pubKey}
}

func (m *mockPeer) PubKey() route.Vertex {
	return m.pubKey
}

func (m *mockPeer) SendMessage(msg lnwire.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockPeer) AckMessage(msg lnwire.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, msg)
}

func (m *mockPeer) sentMessages() []lnwire.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := make([]lnwire.Message, len(m.sent))
	copy(msgs, m.sent)
	return msgs
}

func (m *mockPeer) numAcked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.acked)
}

// mockStore is an in-memory GraphStore that counts removals so tests can
// assert cascades happened.
type mockStore struct {
	mu sync.Mutex

	channels map[lnwire.ShortChannelID]*lnwire.ChannelAnnouncement
	updates  map[string]*lnwire.ChannelUpdate
	nodes    map[[33]byte]*lnwire.NodeAnnouncement

	removedChannels []lnwire.ShortChannelID
	removedNodes    [][33]byte
}

var _ GraphStore = (*mockStore)(nil)

func newMockStore() *mockStore {
	return &mockStore{
		channels: make(map[lnwire.ShortChannelID]*lnwire.ChannelAnnouncement),
		updates:  make(map[string]*lnwire.ChannelUpdate),
		nodes:    make(map[[33]byte]*lnwire.NodeAnnouncement),
	}
}

func updateStoreKey(update *lnwire.ChannelUpdate) string {
	return fmt.Sprintf("%v/%v", update.ShortChannelID,
		update.ChannelFlags&lnwire.ChanUpdateDirection)
}

func (m *mockStore) ListChannels() (
	map[lnwire.ShortChannelID]*lnwire.ChannelAnnouncement, error) {

	m.mu.Lock()
	defer m.mu.Unlock()
	channels := make(map[lnwire.ShortChannelID]*lnwire.ChannelAnnouncement)
	for chanID, ann := range m.channels {
		channels[chanID] = ann
	}
	return channels, nil
}

func (m *mockStore) ListChannelUpdates() ([]*lnwire.ChannelUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var updates []*lnwire.ChannelUpdate
	for _, update := range m.updates {
		updates = append(updates, update)
	}
	return updates, nil
}

func (m *mockStore) AddChannel(ann *lnwire.ChannelAnnouncement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[ann.ShortChannelID] = ann
	return nil
}

func (m *mockStore) RemoveChannel(chanID lnwire.ShortChannelID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.channels, chanID)
	for key, update := range m.updates {
		if update.ShortChannelID == chanID {
			delete(m.updates, key)
		}
	}
	m.removedChannels = append(m.removedChannels, chanID)
	return nil
}

func (m *mockStore) AddChannelUpdate(update *lnwire.ChannelUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates[updateStoreKey(update)] = update
	return nil
}

func (m *mockStore) UpdateChannelUpdate(update *lnwire.ChannelUpdate) error {
	return m.AddChannelUpdate(update)
}

func (m *mockStore) AddNode(node *lnwire.NodeAnnouncement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[node.NodeID] = node
	return nil
}

func (m *mockStore) UpdateNode(node *lnwire.NodeAnnouncement) error {
	return m.AddNode(node)
}

func (m *mockStore) RemoveNode(nodeID [33]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.nodes, nodeID)
	m.removedNodes = append(m.removedNodes, nodeID)
	return nil
}

func (m *mockStore) numChannels() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.channels)
}

func (m *mockStore) numRemovedChannels() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.removedChannels)
}

// mockValidator accepts everything unless told to reject specific channels
// or nodes.
type mockValidator struct {
	mu            sync.Mutex
	rejectAll     bool
	rejectedChans map[lnwire.ShortChannelID]struct{}
}

var _ AnnouncementValidator = (*mockValidator)(nil)

func newMockValidator() *mockValidator {
	return &mockValidator{
		rejectedChans: make(map[lnwire.ShortChannelID]struct{}),
	}
}

func (m *mockValidator) rejectChannel(chanID lnwire.ShortChannelID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejectedChans[chanID] = struct{}{}
}

func (m *mockValidator) check(chanID lnwire.ShortChannelID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rejectAll {
		return ErrInvalidSignature
	}
	if _, ok := m.rejectedChans[chanID]; ok {
		return ErrInvalidSignature
	}
	return nil
}

func (m *mockValidator) ValidateChannelAnn(
	ann *lnwire.ChannelAnnouncement) error {

	return m.check(ann.ShortChannelID)
}

func (m *mockValidator) ValidateChannelUpdate(_ route.Vertex,
	update *lnwire.ChannelUpdate) error {

	return m.check(update.ShortChannelID)
}

func (m *mockValidator) ValidateNodeAnn(*lnwire.NodeAnnouncement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rejectAll {
		return ErrInvalidSignature
	}
	return nil
}

// mockFundingValidator parks announcements until the test releases a
// verdict.
type mockFundingValidator struct {
	verdicts chan error
}

var _ FundingValidator = (*mockFundingValidator)(nil)

func newMockFundingValidator() *mockFundingValidator {
	return &mockFundingValidator{
		verdicts: make(chan error, 4),
	}
}

func (m *mockFundingValidator) ValidateChannel(
	*lnwire.ChannelAnnouncement) error {

	return <-m.verdicts
}
