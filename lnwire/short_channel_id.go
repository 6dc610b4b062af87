package lnwire

import (
	"fmt"
	"strconv"
	"strings"
)

// scidPeerIDMarker is the value of the most significant byte of a synthetic
// "peer id" short channel id. Such ids stand in for a direct peer rather than
// a confirmed funding transaction and must never enter the channel graph.
const scidPeerIDMarker uint64 = 0xFF

// ShortChannelID represents the set of data which is needed to retrieve all
// necessary data to validate the channel existence.
type ShortChannelID struct {
	// BlockHeight is the height of the block where funding transaction
	// located.
	//
	// NOTE: This field is limited to 3 bytes.
	BlockHeight uint32

	// TxIndex is a position of funding transaction within a block.
	//
	// NOTE: This field is limited to 3 bytes.
	TxIndex uint32

	// TxPosition indicating transaction output which pays to the channel.
	TxPosition uint16
}

// NewShortChanIDFromInt returns a new ShortChannelID which is the decoded
// version of the compact channel ID encoded within the uint64. The format of
// the compact channel ID is as follows: 3 bytes for the block height, 3 bytes
// for the transaction index, and 2 bytes for the output index.
func NewShortChanIDFromInt(chanID uint64) ShortChannelID {
	return ShortChannelID{
		BlockHeight: uint32(chanID >> 40),
		TxIndex:     uint32(chanID>>16) & 0xFFFFFF,
		TxPosition:  uint16(chanID),
	}
}

// NewShortChanIDFromString parses the "<height>x<txIndex>x<outputIndex>"
// textual form of a short channel id.
func NewShortChanIDFromString(s string) (ShortChannelID, error) {
	var c ShortChannelID

	parts := strings.Split(s, "x")
	if len(parts) != 3 {
		return c, fmt.Errorf("invalid short channel id %q: expected "+
			"3 parts, got %d", s, len(parts))
	}

	height, err := strconv.ParseUint(parts[0], 10, 24)
	if err != nil {
		return c, fmt.Errorf("invalid block height %q: %w", parts[0],
			err)
	}
	txIndex, err := strconv.ParseUint(parts[1], 10, 24)
	if err != nil {
		return c, fmt.Errorf("invalid tx index %q: %w", parts[1], err)
	}
	txPosition, err := strconv.ParseUint(parts[2], 10, 16)
	if err != nil {
		return c, fmt.Errorf("invalid output index %q: %w", parts[2],
			err)
	}

	return ShortChannelID{
		BlockHeight: uint32(height),
		TxIndex:     uint32(txIndex),
		TxPosition:  uint16(txPosition),
	}, nil
}

// NewPeerChanIDFromPubKey derives the synthetic "peer id" for a direct peer
// from the trailing bytes of its serialized public key. The top byte is set
// to the reserved marker so the id can never collide with a real funding
// outpoint.
func NewPeerChanIDFromPubKey(pubKey [33]byte) ShortChannelID {
	var compact uint64
	for _, b := range pubKey[33-7:] {
		compact = compact<<8 | uint64(b)
	}
	compact |= scidPeerIDMarker << 56

	return NewShortChanIDFromInt(compact)
}

// ToUint64 converts the ShortChannelID into a compact format encoded within a
// uint64 (8 bytes).
func (c ShortChannelID) ToUint64() uint64 {
	return ((uint64(c.BlockHeight) << 40) | (uint64(c.TxIndex) << 16) |
		(uint64(c.TxPosition)))
}

// IsPeerID returns true if this id is a synthetic peer id rather than the
// compact encoding of a funding outpoint. Peer ids never appear in the
// channel graph.
func (c ShortChannelID) IsPeerID() bool {
	return c.ToUint64()>>56 == scidPeerIDMarker
}

// String generates a human-readable representation of the channel ID.
func (c ShortChannelID) String() string {
	return fmt.Sprintf("%dx%dx%d", c.BlockHeight, c.TxIndex, c.TxPosition)
}
