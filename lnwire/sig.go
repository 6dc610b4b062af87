package lnwire

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// Sig is a fixed-sized ECDSA signature. Unlike Bitcoin, we use fixed sized
// signatures on the wire, instead of DER encoded signatures. This type
// provides several methods to convert to/from the regular Golang types within
// the btcec package.
type Sig [64]byte

// NewSigFromSignature creates a new Sig from the r and s components of an
// ecdsa signature.
func NewSigFromSignature(sig *ecdsa.Signature) (Sig, error) {
	var s Sig
	if sig == nil {
		return s, fmt.Errorf("cannot decode empty signature")
	}

	r := sig.R()
	sComp := sig.S()
	rBytes := r.Bytes()
	sBytes := sComp.Bytes()
	copy(s[:32], rBytes[:])
	copy(s[32:], sBytes[:])

	return s, nil
}

// ToSignature converts the fixed-sized signature to a btcec ecdsa signature
// which can be used for signature validation checks.
func (s Sig) ToSignature() (*ecdsa.Signature, error) {
	var r, sScalar btcec.ModNScalar
	if overflow := r.SetByteSlice(s[:32]); overflow {
		return nil, fmt.Errorf("invalid signature: r >= group order")
	}
	if overflow := sScalar.SetByteSlice(s[32:]); overflow {
		return nil, fmt.Errorf("invalid signature: s >= group order")
	}

	return ecdsa.NewSignature(&r, &sScalar), nil
}
