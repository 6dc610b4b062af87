// Package route defines the identity and hop types shared by path finding
// and its callers.
package route

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/22388o/eclair/lnwire"
)

// VertexSize is the size of the array to store a vertex.
const VertexSize = 33

// Vertex is a simple alias for the serialization of a compressed Bitcoin
// public key.
type Vertex [VertexSize]byte

// NewVertex returns a new Vertex given a public key.
func NewVertex(pub *btcec.PublicKey) Vertex {
	var v Vertex
	copy(v[:], pub.SerializeCompressed())
	return v
}

// NewVertexFromBytes returns a new Vertex based on a serialized pubkey in a
// byte slice.
func NewVertexFromBytes(b []byte) (Vertex, error) {
	vertexLen := len(b)
	if vertexLen != VertexSize {
		return Vertex{}, fmt.Errorf("invalid vertex length of %v, "+
			"want %v", vertexLen, VertexSize)
	}

	var v Vertex
	copy(v[:], b)
	return v, nil
}

// NewVertexFromStr returns a new Vertex given its hex-encoded string format.
func NewVertexFromStr(v string) (Vertex, error) {
	// Return error if hex string is of incorrect length.
	if len(v) != VertexSize*2 {
		return Vertex{}, fmt.Errorf("invalid vertex string length of "+
			"%v, want %v", len(v), VertexSize*2)
	}

	vertex, err := hex.DecodeString(v)
	if err != nil {
		return Vertex{}, err
	}

	return NewVertexFromBytes(vertex)
}

// String returns a human readable version of the Vertex which is the
// hex-encoding of the serialized compressed public key.
func (v Vertex) String() string {
	return fmt.Sprintf("%x", v[:])
}

// Hop represents one directed edge of a finished route: an update-bearing
// channel traversed from node A to node B.
type Hop struct {
	// From is the node the payment leaves on this hop.
	From Vertex

	// To is the node the payment arrives at on this hop.
	To Vertex

	// ShortChannelID is the channel traversed by this hop.
	ShortChannelID lnwire.ShortChannelID

	// Update is the channel update whose forwarding policy applies to
	// this hop. For hops materialized from routing hints the update is
	// synthetic and unsigned.
	Update *lnwire.ChannelUpdate
}

// Route is an ordered sequence of hops connecting a source to a target.
type Route struct {
	// SourcePubKey is the node the route departs from.
	SourcePubKey Vertex

	// TargetPubKey is the node the route arrives at.
	TargetPubKey Vertex

	// Hops are the directed edges traversed in order.
	Hops []*Hop
}

// String returns a compact textual rendering of the route's channel ids.
func (r *Route) String() string {
	s := ""
	for i, hop := range r.Hops {
		if i > 0 {
			s += " -> "
		}
		s += hop.ShortChannelID.String()
	}
	return s
}
