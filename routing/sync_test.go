package routing

import (
	"math"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/22388o/eclair/lnwire"
)

// TestSendChannelQuery opens the handshake with a full-range query.
func TestSendChannelQuery(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	peer := newMockPeer(1)

	require.NoError(t, ctx.router.SyncWithPeer(peer))

	require.Eventually(t, func() bool {
		return len(peer.sentMessages()) == 1
	}, testTimeout, testPollingStep)

	query, ok := peer.sentMessages()[0].(*lnwire.QueryChannelRange)
	require.True(t, ok)
	require.Equal(t, *chaincfg.MainNetParams.GenesisHash, query.ChainHash)
	require.EqualValues(t, 0, query.FirstBlockHeight)
	require.EqualValues(t, math.MaxUint32, query.NumBlocks)
}

// TestReplyChannelRangeDiff diffs the peer's id list {2,4,5,7} against our
// {1,2,3,5} and queries back {4,7}, preserving the peer's ordering.
func TestReplyChannelRangeDiff(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	peer := newMockPeer(1)

	for _, height := range []uint32{1, 2, 3, 5} {
		// Funding heights near the tip so none of the channels is
		// stale.
		ctx.router.ProcessChannelAnnouncement(peer, testChannelAnn(
			scid(testBestHeight-height, 1, 0),
			vertex(1), vertex(2),
		))
	}
	ctx.waitForChannels(4)

	theirs := []lnwire.ShortChannelID{
		scid(testBestHeight-2, 1, 0),
		scid(testBestHeight-4, 1, 0),
		scid(testBestHeight-5, 1, 0),
		scid(testBestHeight-7, 1, 0),
	}
	ctx.router.ProcessReplyChannelRange(peer, &lnwire.ReplyChannelRange{
		QueryChannelRange: lnwire.QueryChannelRange{
			ChainHash:        *chaincfg.MainNetParams.GenesisHash,
			FirstBlockHeight: 0,
			NumBlocks:        math.MaxUint32,
		},
		Complete:     1,
		EncodingType: lnwire.EncodingSortedPlain,
		ShortChanIDs: theirs,
	})

	require.Eventually(t, func() bool {
		return len(peer.sentMessages()) == 1
	}, testTimeout, testPollingStep)

	query, ok := peer.sentMessages()[0].(*lnwire.QueryShortChanIDs)
	require.True(t, ok)
	require.Equal(t, []lnwire.ShortChannelID{
		scid(testBestHeight-4, 1, 0),
		scid(testBestHeight-7, 1, 0),
	}, query.ShortChanIDs)
}

// TestReplyChannelRangeWindowFilter keeps only our ids inside the queried
// block window when diffing.
func TestReplyChannelRangeWindowFilter(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	peer := newMockPeer(1)

	inWindow := scid(testBestHeight-50, 1, 0)
	outOfWindow := scid(testBestHeight-500, 1, 0)
	ctx.router.ProcessChannelAnnouncement(
		peer, testChannelAnn(inWindow, vertex(1), vertex(2)),
	)
	ctx.router.ProcessChannelAnnouncement(
		peer, testChannelAnn(outOfWindow, vertex(3), vertex(4)),
	)
	ctx.waitForChannels(2)

	// The peer lists the out-of-window id. Our copy of it does not count
	// as known inside this window, so it is queried back.
	ctx.router.ProcessReplyChannelRange(peer, &lnwire.ReplyChannelRange{
		QueryChannelRange: lnwire.QueryChannelRange{
			ChainHash:        *chaincfg.MainNetParams.GenesisHash,
			FirstBlockHeight: testBestHeight - 100,
			NumBlocks:        100,
		},
		Complete:     1,
		EncodingType: lnwire.EncodingSortedPlain,
		ShortChanIDs: []lnwire.ShortChannelID{inWindow, outOfWindow},
	})

	require.Eventually(t, func() bool {
		return len(peer.sentMessages()) == 1
	}, testTimeout, testPollingStep)

	query, ok := peer.sentMessages()[0].(*lnwire.QueryShortChanIDs)
	require.True(t, ok)
	require.Equal(t, []lnwire.ShortChannelID{outOfWindow},
		query.ShortChanIDs)
}

// TestReplyChannelRangeWrongChain ignores replies for a different chain.
func TestReplyChannelRangeWrongChain(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	peer := newMockPeer(1)

	var otherChain chainhash.Hash
	otherChain[0] = 0xAA

	ctx.router.ProcessReplyChannelRange(peer, &lnwire.ReplyChannelRange{
		QueryChannelRange: lnwire.QueryChannelRange{
			ChainHash: otherChain,
			NumBlocks: math.MaxUint32,
		},
		Complete:     1,
		EncodingType: lnwire.EncodingSortedPlain,
		ShortChanIDs: []lnwire.ShortChannelID{scid(1, 1, 0)},
	})

	require.Eventually(t, func() bool {
		return peer.numAcked() == 1
	}, testTimeout, testPollingStep)
	require.Empty(t, peer.sentMessages())
}

// TestInboundQueriesAcknowledged accepts and drops inbound channel queries.
func TestInboundQueriesAcknowledged(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	peer := newMockPeer(1)

	ctx.router.ProcessQueryChannelRange(peer, &lnwire.QueryChannelRange{
		ChainHash: *chaincfg.MainNetParams.GenesisHash,
		NumBlocks: 100,
	})
	ctx.router.ProcessQueryShortChanIDs(peer, &lnwire.QueryShortChanIDs{
		ChainHash:    *chaincfg.MainNetParams.GenesisHash,
		EncodingType: lnwire.EncodingSortedPlain,
	})

	require.Eventually(t, func() bool {
		return peer.numAcked() == 2
	}, testTimeout, testPollingStep)
	require.Empty(t, peer.sentMessages())
}
