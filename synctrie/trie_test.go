package synctrie

import (
	"testing"

	"github.com/farcaster-hub/hub/common"
	"github.com/farcaster-hub/hub/fcrypto"
	"github.com/farcaster-hub/hub/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syncID(fid common.FID, ts common.Timestamp, hashByte byte) message.SyncID {
	h := common.Hash{hashByte}
	return message.NewSyncID(message.TypeCastAdd, fid, ts, h)
}

func TestTrie_EmptyRootHashIsZero(t *testing.T) {
	tr := New()
	assert.Equal(t, fcrypto.ZeroHash, tr.RootHash())
	assert.Equal(t, 0, tr.Len())
}

func TestTrie_InsertChangesRootHashAndLen(t *testing.T) {
	tr := New()
	before := tr.RootHash()
	id := syncID(1, 1000, 0xAA)
	tr.Insert(id)
	assert.NotEqual(t, before, tr.RootHash())
	assert.Equal(t, 1, tr.Len())
}

func TestTrie_InsertIsIdempotent(t *testing.T) {
	tr := New()
	id := syncID(1, 1000, 0xAA)
	tr.Insert(id)
	h1 := tr.RootHash()
	tr.Insert(id)
	assert.Equal(t, h1, tr.RootHash())
	assert.Equal(t, 1, tr.Len())
}

func TestTrie_RemoveRestoresEmptyRootHash(t *testing.T) {
	tr := New()
	id := syncID(1, 1000, 0xAA)
	tr.Insert(id)
	tr.Remove(id)
	assert.Equal(t, fcrypto.ZeroHash, tr.RootHash())
	assert.Equal(t, 0, tr.Len())
}

func TestTrie_RemoveUnknownIsNoOp(t *testing.T) {
	tr := New()
	id := syncID(1, 1000, 0xAA)
	tr.Insert(id)
	before := tr.RootHash()
	tr.Remove(syncID(2, 2000, 0xBB))
	assert.Equal(t, before, tr.RootHash())
	assert.Equal(t, 1, tr.Len())
}

// TestTrie_InsertionOrderDoesNotAffectRootHash covers spec.md §8's
// merge-commutativity property projected onto the trie: two tries
// populated with the same Sync IDs in different orders converge to the
// same root hash.
func TestTrie_InsertionOrderDoesNotAffectRootHash(t *testing.T) {
	a, b := New(), New()
	ids := []message.SyncID{
		syncID(1, 1000, 0x01),
		syncID(1, 2000, 0x02),
		syncID(2, 1500, 0x03),
	}
	a.Insert(ids[0])
	a.Insert(ids[1])
	a.Insert(ids[2])

	b.Insert(ids[2])
	b.Insert(ids[0])
	b.Insert(ids[1])

	assert.Equal(t, a.RootHash(), b.RootHash())
}

func TestTrie_LeavesUnderPrefixChronologicalOrder(t *testing.T) {
	tr := New()
	early := syncID(1, 1000, 0x01)
	late := syncID(1, 9000, 0x02)
	tr.Insert(late)
	tr.Insert(early)

	leaves := tr.LeavesUnderPrefix(nil)
	require.Len(t, leaves, 2)
	assert.True(t, leaves[0].Less(leaves[1]))
	assert.Equal(t, early, leaves[0])
	assert.Equal(t, late, leaves[1])
}

func TestTrie_MetadataUnknownPrefixIsZeroValue(t *testing.T) {
	tr := New()
	tr.Insert(syncID(1, 1000, 0x01))

	md := tr.Metadata([]byte{0xFF})
	assert.Equal(t, 0, md.NumMessages)
	assert.Equal(t, fcrypto.ZeroHash, md.Hash)
	assert.Nil(t, md.Children)
}

func TestTrie_SnapshotExcludedHashesZeroWhenNoSiblings(t *testing.T) {
	tr := New()
	// A single Sync ID has no siblings at any level, so every
	// excluded_hashes entry must be the zero-hash convention.
	tr.Insert(syncID(1, 1000, 0x01))

	snap := tr.Snapshot(nil)
	require.NotEmpty(t, snap.ExcludedHashes)
	for _, h := range snap.ExcludedHashes {
		assert.Equal(t, fcrypto.ZeroHash, h)
	}
	assert.Equal(t, 1, snap.NumMessages)
	assert.Equal(t, tr.RootHash(), snap.RootHash)
}

func TestTrie_SnapshotDivergesWhenTriesDiffer(t *testing.T) {
	a, b := New(), New()
	shared := syncID(1, 1000, 0x01)
	a.Insert(shared)
	b.Insert(shared)
	b.Insert(syncID(1, 1000, 0x02))

	snapA := a.Snapshot(nil)
	snapB := b.Snapshot(nil)
	assert.NotEqual(t, snapA.ExcludedHashes, snapB.ExcludedHashes)
}
