// Package lnwire contains the message types exchanged by the gossip and
// channel-query subsystems, along with the element codec used to serialize
// them for persistence and for signature digests. Transport framing of these
// messages is handled by the wire layer and is not part of this package.
package lnwire

import "io"

// MessageType is the unique 2 byte big-endian number that identifies the type
// of message on the wire.
type MessageType uint16

const (
	// MsgError identifies an error message.
	MsgError MessageType = 17

	// MsgChannelAnnouncement identifies a channel announcement message.
	MsgChannelAnnouncement MessageType = 256

	// MsgNodeAnnouncement identifies a node announcement message.
	MsgNodeAnnouncement MessageType = 257

	// MsgChannelUpdate identifies a channel update message.
	MsgChannelUpdate MessageType = 258

	// MsgQueryShortChanIDs identifies a query for channels by id.
	MsgQueryShortChanIDs MessageType = 261

	// MsgQueryChannelRange identifies a query for a block range.
	MsgQueryChannelRange MessageType = 263

	// MsgReplyChannelRange identifies the response to a range query.
	MsgReplyChannelRange MessageType = 264
)

// String returns a human readable description of the message type.
func (t MessageType) String() string {
	switch t {
	case MsgError:
		return "Error"
	case MsgChannelAnnouncement:
		return "ChannelAnnouncement"
	case MsgNodeAnnouncement:
		return "NodeAnnouncement"
	case MsgChannelUpdate:
		return "ChannelUpdate"
	case MsgQueryShortChanIDs:
		return "QueryShortChanIDs"
	case MsgQueryChannelRange:
		return "QueryChannelRange"
	case MsgReplyChannelRange:
		return "ReplyChannelRange"
	default:
		return "<unknown>"
	}
}

// Message is an interface implemented by the gossip and query messages
// processed by the router. The Encode/Decode pair produces the canonical
// serialization used for database records and signature digests.
type Message interface {
	// MsgType returns the type identifying this message on the wire.
	MsgType() MessageType

	// Encode serializes the message into the passed io.Writer.
	Encode(w io.Writer) error

	// Decode deserializes the message from the passed io.Reader.
	Decode(r io.Reader) error
}
