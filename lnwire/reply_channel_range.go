package lnwire

import "io"

// ReplyChannelRange is the response to the QueryChannelRange message. It
// includes the original query, and the set of encoded short channel ID's
// known to the replying node within the queried block range. The ordering of
// the id list is preserved through decoding so the receiver can diff it
// against its own ordered view.
type ReplyChannelRange struct {
	// QueryChannelRange is the corresponding query to this response.
	QueryChannelRange

	// Complete denotes if this is the conclusion of the set of streaming
	// responses to the original query.
	Complete uint8

	// EncodingType is a signal to the receiver of the message that
	// indicates exactly how the set of short channel ID's that follow have
	// been encoded.
	EncodingType QueryEncoding

	// ShortChanIDs is a slice of decoded short channel ID's.
	ShortChanIDs []ShortChannelID
}

// NewReplyChannelRange creates a new empty ReplyChannelRange message.
func NewReplyChannelRange() *ReplyChannelRange {
	return &ReplyChannelRange{}
}

// A compile time check to ensure ReplyChannelRange implements the
// lnwire.Message interface.
var _ Message = (*ReplyChannelRange)(nil)

// Decode deserializes a serialized ReplyChannelRange message stored in the
// passed io.Reader.
//
// This is part of the lnwire.Message interface.
func (c *ReplyChannelRange) Decode(r io.Reader) error {
	err := c.QueryChannelRange.Decode(r)
	if err != nil {
		return err
	}

	if err := readElements(r, &c.Complete, &c.EncodingType); err != nil {
		return err
	}

	if c.EncodingType != EncodingSortedPlain {
		return ErrUnknownQueryEncoding(c.EncodingType)
	}

	return ReadElement(r, &c.ShortChanIDs)
}

// Encode serializes the target ReplyChannelRange into the passed io.Writer.
//
// This is part of the lnwire.Message interface.
func (c *ReplyChannelRange) Encode(w io.Writer) error {
	if err := c.QueryChannelRange.Encode(w); err != nil {
		return err
	}

	if err := WriteElements(w, c.Complete, c.EncodingType); err != nil {
		return err
	}

	return WriteElement(w, c.ShortChanIDs)
}

// MsgType returns the integer uniquely identifying this message type on the
// wire.
//
// This is part of the lnwire.Message interface.
func (c *ReplyChannelRange) MsgType() MessageType {
	return MsgReplyChannelRange
}
