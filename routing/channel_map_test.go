package routing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/22388o/eclair/lnwire"
)

// TestChannelMapOrdering inserts ids out of order and expects ascending
// unsigned iteration, stable through deletions and replacements.
func TestChannelMapOrdering(t *testing.T) {
	t.Parallel()

	m := newChannelMap()
	ids := []lnwire.ShortChannelID{
		scid(500, 0, 0),
		scid(1, 0, 0),
		scid(0xFFFFFF, 0xFFFFFF, 0xFFFF),
		scid(42, 7, 1),
	}
	for _, chanID := range ids {
		m.Put(testChannelAnn(chanID, vertex(1), vertex(2)))
	}
	require.Equal(t, len(ids), m.Len())

	// Replacement does not duplicate the key.
	m.Put(testChannelAnn(scid(42, 7, 1), vertex(1), vertex(2)))
	require.Equal(t, len(ids), m.Len())

	var walked []uint64
	m.ForEach(func(chanID lnwire.ShortChannelID,
		_ *lnwire.ChannelAnnouncement) bool {

		walked = append(walked, chanID.ToUint64())
		return true
	})
	require.Len(t, walked, len(ids))
	for i := 1; i < len(walked); i++ {
		require.Less(t, walked[i-1], walked[i])
	}

	// The largest id sorts last despite the high bit pattern.
	require.Equal(t,
		scid(0xFFFFFF, 0xFFFFFF, 0xFFFF).ToUint64(),
		walked[len(walked)-1])

	m.Delete(scid(1, 0, 0))
	require.Equal(t, len(ids)-1, m.Len())
	require.False(t, m.Has(scid(1, 0, 0)))

	// Deleting an absent id is a no-op.
	m.Delete(scid(1, 0, 0))
	require.Equal(t, len(ids)-1, m.Len())
}

// TestChannelMapEarlyStop stops the walk when the callback returns false.
func TestChannelMapEarlyStop(t *testing.T) {
	t.Parallel()

	m := newChannelMap()
	for height := uint32(1); height <= 5; height++ {
		m.Put(testChannelAnn(
			scid(height, 0, 0), vertex(1), vertex(2),
		))
	}

	var walked int
	m.ForEach(func(lnwire.ShortChannelID,
		*lnwire.ChannelAnnouncement) bool {

		walked++
		return walked < 2
	})
	require.Equal(t, 2, walked)
}
