package lnwire

import (
	"bytes"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// ChanUpdateMsgFlags is a bitfield that signals whether optional fields are
// present in the ChannelUpdate.
type ChanUpdateMsgFlags uint8

const (
	// ChanUpdateRequiredMaxHtlc is a bit that indicates whether the
	// required HtlcMaximumMsat field is present in this ChannelUpdate.
	ChanUpdateRequiredMaxHtlc ChanUpdateMsgFlags = 1 << 0
)

// HasMaxHtlc returns true if the htlc_maximum_msat option bit is set in the
// message flags.
func (c ChanUpdateMsgFlags) HasMaxHtlc() bool {
	return c&ChanUpdateRequiredMaxHtlc != 0
}

// ChanUpdateChanFlags is a bitfield that signals various options concerning a
// particular channel edge. Each bit is to be examined in order to determine
// how the ChannelUpdate message is to be interpreted.
type ChanUpdateChanFlags uint8

const (
	// ChanUpdateDirection indicates the direction of a channel update. If
	// this bit is set to 0 if Node1 (the node with the "smaller" Node ID)
	// is updating the channel, and to 1 otherwise.
	ChanUpdateDirection ChanUpdateChanFlags = 1 << 0

	// ChanUpdateDisabled is a bit that indicates if the channel flagged as
	// disabled.
	ChanUpdateDisabled ChanUpdateChanFlags = 1 << 1
)

// IsDisabled determines if the channel flags has the disabled bit set.
func (c ChanUpdateChanFlags) IsDisabled() bool {
	return c&ChanUpdateDisabled == ChanUpdateDisabled
}

// ChannelUpdate message is used after channel has been initially announced.
// Each side independently announces its fees and minimum expiry for HTLCs and
// other parameters. Per channel direction, at most the update with the
// highest timestamp is retained.
type ChannelUpdate struct {
	// Signature is used to validate the announced data and prove the
	// ownership of node id.
	Signature Sig

	// ChainHash denotes the target chain that this channel was opened
	// within. This value should be the genesis hash of the target chain.
	ChainHash chainhash.Hash

	// ShortChannelID is the unique description of the funding transaction.
	ShortChannelID ShortChannelID

	// Timestamp allows ordering in the case of multiple announcements. We
	// should ignore the message if timestamp is not greater than
	// the last-received.
	Timestamp uint32

	// MessageFlags is a bitfield that describes whether optional fields
	// are present in this update. Currently, the least-significant bit
	// must be set to 1 if the optional field MaxHtlc is present.
	MessageFlags ChanUpdateMsgFlags

	// ChannelFlags is a bitfield that describes additional meta-data
	// concerning how the update is to be interpreted. Currently, the
	// least-significant bit must be set to 0 if the creating node
	// corresponds to the first node in the previously sent channel
	// announcement and 1 otherwise. If the second bit is set, then the
	// channel is set to be disabled.
	ChannelFlags ChanUpdateChanFlags

	// TimeLockDelta is the minimum number of blocks this node requires to
	// be added to the expiry of HTLCs. This is a security parameter
	// determined by the node operator. This value represents the required
	// gap between the time locks of the incoming and outgoing HTLC's set
	// to this node.
	TimeLockDelta uint16

	// HtlcMinimumMsat is the minimum HTLC value which will be accepted.
	HtlcMinimumMsat MilliSatoshi

	// BaseFee is the base fee that must be used for incoming HTLC's to
	// this particular channel. This value will be tacked onto the required
	// for a payment independent of the size of the payment.
	BaseFee uint32

	// FeeRate is the proportional fee, in millionths of the forwarded
	// amount.
	FeeRate uint32

	// HtlcMaximumMsat is the maximum HTLC value which will be accepted.
	// It is only present if the ChanUpdateRequiredMaxHtlc message flag is
	// set.
	HtlcMaximumMsat MilliSatoshi
}

// A compile time check to ensure ChannelUpdate implements the lnwire.Message
// interface.
var _ Message = (*ChannelUpdate)(nil)

// Decode deserializes a serialized ChannelUpdate stored in the passed
// io.Reader.
//
// This is part of the lnwire.Message interface.
func (a *ChannelUpdate) Decode(r io.Reader) error {
	err := readElements(r,
		&a.Signature,
		a.ChainHash[:],
		&a.ShortChannelID,
		&a.Timestamp,
		&a.MessageFlags,
		&a.ChannelFlags,
		&a.TimeLockDelta,
		&a.HtlcMinimumMsat,
		&a.BaseFee,
		&a.FeeRate,
	)
	if err != nil {
		return err
	}

	// The optional htlc_maximum_msat field follows only when its message
	// flag is set.
	if a.MessageFlags.HasMaxHtlc() {
		if err := ReadElement(r, &a.HtlcMaximumMsat); err != nil {
			return err
		}
	}

	return nil
}

// Encode serializes the target ChannelUpdate into the passed io.Writer.
//
// This is part of the lnwire.Message interface.
func (a *ChannelUpdate) Encode(w io.Writer) error {
	err := WriteElements(w,
		a.Signature,
		a.ChainHash[:],
		a.ShortChannelID,
		a.Timestamp,
		a.MessageFlags,
		a.ChannelFlags,
		a.TimeLockDelta,
		a.HtlcMinimumMsat,
		a.BaseFee,
		a.FeeRate,
	)
	if err != nil {
		return err
	}

	if a.MessageFlags.HasMaxHtlc() {
		if err := WriteElement(w, a.HtlcMaximumMsat); err != nil {
			return err
		}
	}

	return nil
}

// MsgType returns the integer uniquely identifying this message type on the
// wire.
//
// This is part of the lnwire.Message interface.
func (a *ChannelUpdate) MsgType() MessageType {
	return MsgChannelUpdate
}

// DataToSign is used to retrieve part of the announcement message which
// should be signed.
func (a *ChannelUpdate) DataToSign() ([]byte, error) {
	var b bytes.Buffer
	err := WriteElements(&b,
		a.ChainHash[:],
		a.ShortChannelID,
		a.Timestamp,
		a.MessageFlags,
		a.ChannelFlags,
		a.TimeLockDelta,
		a.HtlcMinimumMsat,
		a.BaseFee,
		a.FeeRate,
	)
	if err != nil {
		return nil, err
	}

	if a.MessageFlags.HasMaxHtlc() {
		if err := WriteElement(&b, a.HtlcMaximumMsat); err != nil {
			return nil, err
		}
	}

	return b.Bytes(), nil
}

// IsNode1 returns true if the update applies to the direction originating at
// the first node of the channel announcement, i.e. the direction bit of the
// channel flags is unset.
func (a *ChannelUpdate) IsNode1() bool {
	return a.ChannelFlags&ChanUpdateDirection == 0
}
