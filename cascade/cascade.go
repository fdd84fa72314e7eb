// Package cascade implements the revocation cascade (spec.md component
// C6): fid transfer and signer removal unconditionally discard dependent
// messages from the non-signer CRDTs, bypassing conflict resolution and
// leaving no tombstone (spec.md §4.3).
//
// Grounded on sysaction's dispatch style (a small set of triggers, each
// an exported function operating directly on store
// handles) rather than an event-bus abstraction, since the cascade is a
// synchronous, one-pass operation invoked from a known call site (the
// fid indexer's Transfer hook, or a Signer-CRDT eviction), not a
// decoupled pub/sub flow.
package cascade

import (
	"bytes"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/farcaster-hub/hub/common"
	"github.com/farcaster-hub/hub/crdt"
	"github.com/farcaster-hub/hub/message"
)

// Discarder is the subset of *crdt.Engine the cascade needs: unconditional
// discard by predicate, no tombstone. *crdt.Engine satisfies this.
type Discarder interface {
	DiscardIf(predicate func(m *message.Message) bool) []crdt.Entry
}

// Stores bundles the Signer CRDT and the four C5 (non-signer) CRDTs a
// cascade can prune for a single fid namespace.
type Stores struct {
	Signer       Discarder
	UserData     Discarder
	Cast         Discarder
	Reaction     Discarder
	Verification Discarder
}

func (s Stores) nonSigner() []Discarder {
	return []Discarder{s.UserData, s.Cast, s.Reaction, s.Verification}
}

// discardBySignerC5 discards, from every C5 CRDT, every message with the
// given fid and Ed25519 signer (spec.md §4.3, second trigger).
func (s Stores) discardBySignerC5(fid common.FID, signer []byte) []crdt.Entry {
	var all []crdt.Entry
	pred := func(m *message.Message) bool {
		return m.FID == fid && bytes.Equal(m.Signer, signer)
	}
	for _, store := range s.nonSigner() {
		all = append(all, store.DiscardIf(pred)...)
	}
	return all
}

// FidTransfer implements spec.md §4.3's first trigger: an on-chain event
// changes custody of fid from oldCustody to a new address. Every
// Signer-scheme message (SignerAdd/SignerRemove) in the Signer CRDT
// signed by oldCustody for fid is discarded; for every SignerAdd among
// them, the Ed25519 key it had authorized (body.Signer) is cascaded into
// every C5 CRDT per the second trigger, since that key has now left the
// add-set.
func (s Stores) FidTransfer(fid common.FID, oldCustody ethcommon.Address) []crdt.Entry {
	discardedSigner := s.Signer.DiscardIf(func(m *message.Message) bool {
		return m.FID == fid && bytes.Equal(m.Signer, oldCustody.Bytes())
	})

	all := append([]crdt.Entry{}, discardedSigner...)
	for _, entry := range discardedSigner {
		if entry.Message.Type != message.TypeSignerAdd {
			continue
		}
		body := entry.Message.Body.(message.SignerBody)
		all = append(all, s.discardBySignerC5(fid, body.Signer[:])...)
	}
	return all
}

// SignerRemoved implements spec.md §4.3's second trigger directly: signer
// s for fid f has left the Signer CRDT's add-set (by losing a merge
// conflict to a SignerRemove, or by capacity/TTL eviction). Every message
// in C5 with that (fid, signer) is discarded.
func (s Stores) SignerRemoved(fid common.FID, signer []byte) []crdt.Entry {
	return s.discardBySignerC5(fid, signer)
}
