package lnwire

import (
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// QueryEncoding is an enum-like type that represents exactly how a set of
// short channel ID's is encoded within a query or reply.
type QueryEncoding uint8

const (
	// EncodingSortedPlain signals that the set of short channel ID's is
	// encoded using the regular encoding, in a sorted order.
	EncodingSortedPlain QueryEncoding = 0
)

// ErrUnknownQueryEncoding is a parametrized error that indicates that we came
// across an unknown short channel ID encoding, and therefore were unable to
// continue parsing.
func ErrUnknownQueryEncoding(encoding QueryEncoding) error {
	return fmt.Errorf("unknown short chan id encoding: %v", encoding)
}

// QueryShortChanIDs is a message that allows the sender to query a set of
// channel announcement and channel update messages that correspond to the set
// of encoded short channel ID's. The receiver should respond with a series of
// channel announcement and channel updates.
type QueryShortChanIDs struct {
	// ChainHash denotes the target chain that we're querying for the
	// channel ID's of.
	ChainHash chainhash.Hash

	// EncodingType is a signal to the receiver of the message that
	// indicates exactly how the set of short channel ID's that follow have
	// been encoded.
	EncodingType QueryEncoding

	// ShortChanIDs is a slice of decoded short channel ID's.
	ShortChanIDs []ShortChannelID
}

// NewQueryShortChanIDs creates a new QueryShortChanIDs message.
func NewQueryShortChanIDs(h chainhash.Hash, e QueryEncoding,
	s []ShortChannelID) *QueryShortChanIDs {

	return &QueryShortChanIDs{
		ChainHash:    h,
		EncodingType: e,
		ShortChanIDs: s,
	}
}

// A compile time check to ensure QueryShortChanIDs implements the
// lnwire.Message interface.
var _ Message = (*QueryShortChanIDs)(nil)

// Decode deserializes a serialized QueryShortChanIDs message stored in the
// passed io.Reader.
//
// This is part of the lnwire.Message interface.
func (q *QueryShortChanIDs) Decode(r io.Reader) error {
	err := readElements(r, q.ChainHash[:], &q.EncodingType)
	if err != nil {
		return err
	}

	if q.EncodingType != EncodingSortedPlain {
		return ErrUnknownQueryEncoding(q.EncodingType)
	}

	return ReadElement(r, &q.ShortChanIDs)
}

// Encode serializes the target QueryShortChanIDs into the passed io.Writer.
//
// This is part of the lnwire.Message interface.
func (q *QueryShortChanIDs) Encode(w io.Writer) error {
	err := WriteElements(w, q.ChainHash[:], q.EncodingType)
	if err != nil {
		return err
	}

	return WriteElement(w, q.ShortChanIDs)
}

// MsgType returns the integer uniquely identifying this message type on the
// wire.
//
// This is part of the lnwire.Message interface.
func (q *QueryShortChanIDs) MsgType() MessageType {
	return MsgQueryShortChanIDs
}
