package routing

import (
	"sort"

	"github.com/22388o/eclair/lnwire"
)

// channelMap is a mapping from short channel id to channel announcement that
// iterates in ascending unsigned 64-bit id order. The ordering is load
// bearing: the sync handshake diffs a peer's id list against our own within
// a block window and relies on order-preserved iteration.
type channelMap struct {
	channels map[uint64]*lnwire.ChannelAnnouncement

	// ids is kept sorted ascending and mirrors the key set of channels.
	ids []uint64
}

// newChannelMap returns an empty channel map.
func newChannelMap() *channelMap {
	return &channelMap{
		channels: make(map[uint64]*lnwire.ChannelAnnouncement),
	}
}

// Len returns the number of channels in the map.
func (m *channelMap) Len() int {
	return len(m.ids)
}

// Has reports whether the given channel is present.
func (m *channelMap) Has(chanID lnwire.ShortChannelID) bool {
	_, ok := m.channels[chanID.ToUint64()]
	return ok
}

// Get returns the announcement stored for the given channel.
func (m *channelMap) Get(chanID lnwire.ShortChannelID) (
	*lnwire.ChannelAnnouncement, bool) {

	ann, ok := m.channels[chanID.ToUint64()]
	return ann, ok
}

// Put inserts or replaces the announcement for its channel id.
func (m *channelMap) Put(ann *lnwire.ChannelAnnouncement) {
	key := ann.ShortChannelID.ToUint64()
	if _, ok := m.channels[key]; !ok {
		i := sort.Search(len(m.ids), func(i int) bool {
			return m.ids[i] >= key
		})
		m.ids = append(m.ids, 0)
		copy(m.ids[i+1:], m.ids[i:])
		m.ids[i] = key
	}
	m.channels[key] = ann
}

// Delete removes the given channel, if present.
func (m *channelMap) Delete(chanID lnwire.ShortChannelID) {
	key := chanID.ToUint64()
	if _, ok := m.channels[key]; !ok {
		return
	}
	delete(m.channels, key)

	i := sort.Search(len(m.ids), func(i int) bool {
		return m.ids[i] >= key
	})
	m.ids = append(m.ids[:i], m.ids[i+1:]...)
}

// ForEach walks the channels in ascending id order. Returning false from the
// callback stops the walk. The map must not be mutated during the walk.
func (m *channelMap) ForEach(cb func(lnwire.ShortChannelID,
	*lnwire.ChannelAnnouncement) bool) {

	for _, key := range m.ids {
		chanID := lnwire.NewShortChanIDFromInt(key)
		if !cb(chanID, m.channels[key]) {
			return
		}
	}
}
