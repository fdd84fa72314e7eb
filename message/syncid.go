package message

import (
	"encoding/binary"

	"github.com/farcaster-hub/hub/common"
)

// SyncIDLength is the fixed byte length of a Sync ID (spec.md §3).
const SyncIDLength = 36

// storageKeyLength is the length of the per-CRDT deterministic suffix.
const storageKeyLength = 26

// SyncID is the 36-byte chronologically-sortable identifier used as the
// sync-trie leaf key for a message (spec.md §3, §4.4).
type SyncID [SyncIDLength]byte

// Bytes returns the raw bytes of id.
func (id SyncID) Bytes() []byte { return id[:] }

// Discriminator identifies which CRDT a message belongs to, used as one
// input to the storage-key function so that two different CRDTs never
// collide on (fid, hash) alone.
type Discriminator byte

const (
	DiscriminatorSigner Discriminator = iota + 1
	DiscriminatorUserData
	DiscriminatorCast
	DiscriminatorReaction
	DiscriminatorVerification
)

// DiscriminatorForType maps a message Type to its CRDT discriminator.
func DiscriminatorForType(t Type) Discriminator {
	switch t {
	case TypeSignerAdd, TypeSignerRemove:
		return DiscriminatorSigner
	case TypeUserDataAdd:
		return DiscriminatorUserData
	case TypeCastAdd, TypeCastRemove:
		return DiscriminatorCast
	case TypeReactionAdd, TypeReactionRemove:
		return DiscriminatorReaction
	case TypeVerificationAddEthAddress, TypeVerificationRemove:
		return DiscriminatorVerification
	default:
		return 0
	}
}

// StorageKey computes the 26-byte deterministic suffix for a message keyed
// by (fid, CRDT discriminator, hash): 8 bytes of big-endian fid, 1 byte of
// discriminator, and the last 17 bytes of the message hash. spec.md §3
// requires only that the function be "unique, stable" per message; this
// layout satisfies that without needing the full 20-byte hash, since fid
// and discriminator already partition the space the hash must disambiguate
// within.
func StorageKey(fid common.FID, d Discriminator, hash common.Hash) [storageKeyLength]byte {
	var out [storageKeyLength]byte
	binary.BigEndian.PutUint64(out[0:8], uint64(fid))
	out[8] = byte(d)
	copy(out[9:], hash[len(hash)-17:])
	return out
}

// NewSyncID builds the Sync ID for a message given its timestamp, fid and
// hash, dispatching the CRDT discriminator from the message type.
func NewSyncID(t Type, fid common.FID, ts common.Timestamp, hash common.Hash) SyncID {
	var id SyncID
	prefix := ts.PaddedASCII()
	copy(id[:10], prefix[:])
	key := StorageKey(fid, DiscriminatorForType(t), hash)
	copy(id[10:], key[:])
	return id
}

// Discriminator returns the CRDT discriminator byte embedded in id's
// storage-key segment, letting a caller holding only a SyncID route
// straight to the owning CRDT without a separate lookup table.
func (id SyncID) Discriminator() Discriminator {
	return Discriminator(id[18])
}

// Less reports whether id sorts strictly before other — byte order equals
// chronological order because the timestamp prefix is fixed-width ASCII
// decimal (spec.md §3).
func (id SyncID) Less(other SyncID) bool {
	for i := range id {
		if id[i] != other[i] {
			return id[i] < other[i]
		}
	}
	return false
}
