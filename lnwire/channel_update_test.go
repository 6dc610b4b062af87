package lnwire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestChannelUpdateMaxHtlcEncoding asserts the optional htlc maximum is
// only written when its message flag is set, and that the signed data
// reflects the same rule.
func TestChannelUpdateMaxHtlcEncoding(t *testing.T) {
	t.Parallel()

	update := &ChannelUpdate{
		ShortChannelID:  ShortChannelID{BlockHeight: 1, TxIndex: 2},
		Timestamp:       1000,
		ChannelFlags:    ChanUpdateDirection,
		TimeLockDelta:   40,
		HtlcMinimumMsat: 1000,
		BaseFee:         10,
		FeeRate:         100,
	}

	var withoutMax bytes.Buffer
	require.NoError(t, update.Encode(&withoutMax))

	update.MessageFlags = ChanUpdateRequiredMaxHtlc
	update.HtlcMaximumMsat = 21_000_000

	var withMax bytes.Buffer
	require.NoError(t, update.Encode(&withMax))
	require.Equal(t, withoutMax.Len()+8, withMax.Len())

	decoded := &ChannelUpdate{}
	require.NoError(t, decoded.Decode(bytes.NewReader(withMax.Bytes())))
	require.Equal(t, update, decoded)
	require.True(t, decoded.MessageFlags.HasMaxHtlc())
	require.False(t, decoded.IsNode1())
}

// TestChannelFlags covers the direction and disabled bit helpers.
func TestChannelFlags(t *testing.T) {
	t.Parallel()

	update := &ChannelUpdate{}
	require.True(t, update.IsNode1())
	require.False(t, update.ChannelFlags.IsDisabled())

	update.ChannelFlags = ChanUpdateDirection | ChanUpdateDisabled
	require.False(t, update.IsNode1())
	require.True(t, update.ChannelFlags.IsDisabled())
}
