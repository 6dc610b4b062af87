package channeldb

import (
	"bytes"
	"io"

	"github.com/lightningnetwork/lnd/tlv"

	"github.com/22388o/eclair/lnwire"
)

// maxHtlcType is the tlv type of the optional htlc_maximum_msat record that
// trails the fixed part of a stored channel update.
const maxHtlcType tlv.Type = 0

// serializeChannelAnnouncement writes the database record of an accepted
// channel announcement.
func serializeChannelAnnouncement(w io.Writer,
	ann *lnwire.ChannelAnnouncement) error {

	return ann.Encode(w)
}

// deserializeChannelAnnouncement reads a channel announcement database
// record.
func deserializeChannelAnnouncement(r io.Reader) (*lnwire.ChannelAnnouncement,
	error) {

	ann := &lnwire.ChannelAnnouncement{}
	if err := ann.Decode(r); err != nil {
		return nil, err
	}
	return ann, nil
}

// serializeChannelUpdate writes the database record of a channel update: the
// fixed witness fields followed by a tlv stream holding the optional
// htlc_maximum_msat.
func serializeChannelUpdate(w io.Writer, update *lnwire.ChannelUpdate) error {
	err := lnwire.WriteElements(w,
		update.Signature,
		update.ChainHash[:],
		update.ShortChannelID,
		update.Timestamp,
		update.MessageFlags,
		update.ChannelFlags,
		update.TimeLockDelta,
		update.HtlcMinimumMsat,
		update.BaseFee,
		update.FeeRate,
	)
	if err != nil {
		return err
	}

	if !update.MessageFlags.HasMaxHtlc() {
		return nil
	}

	maxHtlc := uint64(update.HtlcMaximumMsat)
	stream, err := tlv.NewStream(
		tlv.MakePrimitiveRecord(maxHtlcType, &maxHtlc),
	)
	if err != nil {
		return err
	}

	return stream.Encode(w)
}

// deserializeChannelUpdate reads a channel update database record.
func deserializeChannelUpdate(r io.Reader) (*lnwire.ChannelUpdate, error) {
	update := &lnwire.ChannelUpdate{}
	err := lnwire.ReadElements(r,
		&update.Signature,
		update.ChainHash[:],
		&update.ShortChannelID,
		&update.Timestamp,
		&update.MessageFlags,
		&update.ChannelFlags,
		&update.TimeLockDelta,
		&update.HtlcMinimumMsat,
		&update.BaseFee,
		&update.FeeRate,
	)
	if err != nil {
		return nil, err
	}

	if !update.MessageFlags.HasMaxHtlc() {
		return update, nil
	}

	var maxHtlc uint64
	stream, err := tlv.NewStream(
		tlv.MakePrimitiveRecord(maxHtlcType, &maxHtlc),
	)
	if err != nil {
		return nil, err
	}
	if err := stream.Decode(r); err != nil {
		return nil, err
	}
	update.HtlcMaximumMsat = lnwire.MilliSatoshi(maxHtlc)

	return update, nil
}

// serializeNodeAnnouncement writes the database record of a node
// announcement.
func serializeNodeAnnouncement(w io.Writer,
	node *lnwire.NodeAnnouncement) error {

	return node.Encode(w)
}

// deserializeNodeAnnouncement reads a node announcement database record.
func deserializeNodeAnnouncement(r io.Reader) (*lnwire.NodeAnnouncement,
	error) {

	node := &lnwire.NodeAnnouncement{}
	if err := node.Decode(r); err != nil {
		return nil, err
	}
	return node, nil
}

// encodeRecord renders a record through the passed serializer into a fresh
// byte slice ready to be put into a bucket.
func encodeRecord(serialize func(io.Writer) error) ([]byte, error) {
	var b bytes.Buffer
	if err := serialize(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
