// Package fcrypto is the crypto-primitives facade (spec.md component C1):
// hashing and signature verification are invoked as opaque functions by
// the rest of the module, exactly as spec.md §1 scopes them ("Cryptographic
// primitives ... are invoked as opaque functions").
package fcrypto

import (
	"github.com/farcaster-hub/hub/common"
	"lukechampine.com/blake3"
)

// Hash20 returns the 20-byte BLAKE3 digest of data, used for both message
// hashing and sync-trie node hashing (spec.md §3, §4.4: "H is the same
// hash used for messages (BLAKE3 20-byte)").
func Hash20(data []byte) common.Hash {
	h := blake3.New(common.HashLength, nil)
	h.Write(data)
	var out common.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// ZeroHash is H(empty) — the adopted convention for exclusion-set hashing
// when a trie level has no left siblings (spec.md §9 open question).
var ZeroHash = common.Hash{}
