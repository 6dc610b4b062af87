package routing

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/22388o/eclair/lnwire"
	"github.com/22388o/eclair/routing/route"
)

// AnnouncementValidator abstracts the signature checks performed on incoming
// gossip. A failing check must leave router state untouched; the router
// replies to the offending peer with a protocol error.
type AnnouncementValidator interface {
	// ValidateChannelAnn checks the four signatures of a channel
	// announcement against the node and bitcoin keys it carries.
	ValidateChannelAnn(ann *lnwire.ChannelAnnouncement) error

	// ValidateChannelUpdate checks the update's signature against the
	// node it claims to originate from.
	ValidateChannelUpdate(nodeID route.Vertex,
		update *lnwire.ChannelUpdate) error

	// ValidateNodeAnn checks a node announcement's signature against its
	// own node id.
	ValidateNodeAnn(node *lnwire.NodeAnnouncement) error
}

// FundingValidator abstracts the chain-side validation of a freshly announced
// channel: that its funding output exists, is unspent, and matches the
// announced bitcoin keys. Validation may be slow; the router parks the
// announcement while a verdict is pending and processes the verdict as a
// regular event.
type FundingValidator interface {
	// ValidateChannel blocks until the funding output of the announced
	// channel has been checked, returning nil if the channel is valid on
	// chain.
	ValidateChannel(ann *lnwire.ChannelAnnouncement) error
}

// SigValidator is the production AnnouncementValidator. It verifies ECDSA
// signatures over the double-SHA256 of each message's witness fields.
type SigValidator struct{}

// A compile time check to ensure SigValidator implements the
// AnnouncementValidator interface.
var _ AnnouncementValidator = (*SigValidator)(nil)

// ValidateChannelAnn validates the channel announcement message and checks
// that the two node signatures and the two bitcoin signatures all cover the
// announcement's witness fields, under the node keys and the bitcoin keys
// respectively.
func (v *SigValidator) ValidateChannelAnn(ann *lnwire.ChannelAnnouncement) error {
	data, err := ann.DataToSign()
	if err != nil {
		return err
	}
	dataHash := chainhash.DoubleHashB(data)

	if err := verifySig(ann.NodeSig1, dataHash, ann.NodeID1); err != nil {
		return fmt.Errorf("can't verify first node signature: %w", err)
	}
	if err := verifySig(ann.NodeSig2, dataHash, ann.NodeID2); err != nil {
		return fmt.Errorf("can't verify second node signature: %w", err)
	}
	if err := verifySig(ann.BitcoinSig1, dataHash, ann.BitcoinKey1); err != nil {
		return fmt.Errorf("can't verify first bitcoin signature: %w",
			err)
	}
	if err := verifySig(ann.BitcoinSig2, dataHash, ann.BitcoinKey2); err != nil {
		return fmt.Errorf("can't verify second bitcoin signature: %w",
			err)
	}

	return nil
}

// ValidateChannelUpdate validates the channel update announcement by checking
// the update's signature against the originating node's key.
func (v *SigValidator) ValidateChannelUpdate(nodeID route.Vertex,
	update *lnwire.ChannelUpdate) error {

	data, err := update.DataToSign()
	if err != nil {
		return err
	}
	dataHash := chainhash.DoubleHashB(data)

	return verifySig(update.Signature, dataHash, nodeID)
}

// ValidateNodeAnn validates the node announcement by ensuring that the
// attached signature is needed a signature of the node announcement under the
// specified node public key.
func (v *SigValidator) ValidateNodeAnn(node *lnwire.NodeAnnouncement) error {
	data, err := node.DataToSign()
	if err != nil {
		return err
	}
	dataHash := chainhash.DoubleHashB(data)

	return verifySig(node.Signature, dataHash, node.NodeID)
}

// verifySig checks a single compact signature over the given digest against
// the given serialized public key.
func verifySig(sig lnwire.Sig, digest []byte, pubKey [33]byte) error {
	key, err := btcec.ParsePubKey(pubKey[:])
	if err != nil {
		return fmt.Errorf("invalid public key: %w", err)
	}

	ecdsaSig, err := sig.ToSignature()
	if err != nil {
		return err
	}

	if !ecdsaSig.Verify(digest, key) {
		return ErrInvalidSignature
	}

	return nil
}
