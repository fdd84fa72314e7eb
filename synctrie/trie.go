// Package synctrie implements the sync trie (spec.md component C7): a
// byte-keyed radix trie over 36-byte Sync IDs with aggregated subtree
// hashing, used by the diff-sync protocol (C8) to locate the symmetric
// difference between two Hubs' message sets without transferring the
// full leaf set.
//
// Grounded on the trie/ package for the general shape of a node-oriented
// trie type guarded by a single mutex (this package has no on-disk node
// database — spec.md scopes the trie as an in-memory index rebuilt from
// storage at startup — so it omits trie/'s MissingNodeError/database
// layer entirely).
package synctrie

import (
	"sort"
	"sync"

	"github.com/farcaster-hub/hub/common"
	"github.com/farcaster-hub/hub/fcrypto"
	"github.com/farcaster-hub/hub/message"
)

// node is one byte-level step of the trie. A node at depth
// message.SyncIDLength is a leaf (children is always empty); every other
// node is internal.
type node struct {
	children map[byte]*node
	count    int
	hash     common.Hash
}

func newNode() *node { return &node{children: make(map[byte]*node)} }

// Trie is the sync trie for one Hub instance. Safe for concurrent use.
type Trie struct {
	mu   sync.RWMutex
	root *node
}

// New returns an empty Trie. An empty trie's root hash is
// fcrypto.ZeroHash (spec.md §9's H(empty) convention).
func New() *Trie {
	return &Trie{root: newNode()}
}

// Insert adds sync_id's leaf to the trie and rebalances aggregated
// hashes from leaf to root (spec.md §4.4). Idempotent: inserting an
// already-present Sync ID is a no-op.
func (t *Trie) Insert(id message.SyncID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	path := make([]*node, 0, message.SyncIDLength+1)
	path = append(path, t.root)
	cur := t.root
	for _, b := range id.Bytes() {
		child, ok := cur.children[b]
		if !ok {
			child = newNode()
			cur.children[b] = child
		}
		cur = child
		path = append(path, cur)
	}

	if cur.count == 0 {
		cur.hash = fcrypto.Hash20(id.Bytes())
		cur.count = 1
	}

	for i := len(path) - 2; i >= 0; i-- {
		recomputeNode(path[i])
	}
}

// Remove deletes sync_id's leaf, pruning now-empty internal nodes and
// rebalancing aggregated hashes from leaf to root. A Sync ID not present
// is a no-op.
func (t *Trie) Remove(id message.SyncID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	type step struct {
		n     *node
		label byte
	}
	path := make([]step, 0, message.SyncIDLength+1)
	path = append(path, step{t.root, 0})
	cur := t.root
	for _, b := range id.Bytes() {
		child, ok := cur.children[b]
		if !ok {
			return
		}
		path = append(path, step{child, b})
		cur = child
	}
	if cur.count == 0 {
		return
	}

	for i := len(path) - 1; i >= 1; i-- {
		parent := path[i-1].n
		label := path[i].label
		child := path[i].n
		if i == len(path)-1 || len(child.children) == 0 {
			delete(parent.children, label)
			continue
		}
		recomputeNode(child)
	}
	recomputeNode(t.root)
}

// recomputeNode recalculates n's count and aggregated hash from its
// current children: H( concat_sorted_by_byte( child_label || child_hash ) )
// (spec.md §4.4), or fcrypto.ZeroHash when n has no children.
func recomputeNode(n *node) {
	labels := sortedLabels(n)
	if len(labels) == 0 {
		n.count = 0
		n.hash = fcrypto.ZeroHash
		return
	}
	n.count = 0
	buf := make([]byte, 0, len(labels)*(1+common.HashLength))
	for _, l := range labels {
		c := n.children[l]
		n.count += c.count
		buf = append(buf, l)
		buf = append(buf, c.hash.Bytes()...)
	}
	n.hash = fcrypto.Hash20(buf)
}

func sortedLabels(n *node) []byte {
	labels := make([]byte, 0, len(n.children))
	for l := range n.children {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

// RootHash returns H(empty) for an empty trie, or the root node's
// aggregated hash otherwise.
func (t *Trie) RootHash() common.Hash {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root.hash
}

// Len returns the total number of Sync IDs indexed.
func (t *Trie) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root.count
}

func (t *Trie) locate(prefix []byte) (*node, bool) {
	cur := t.root
	for _, b := range prefix {
		child, ok := cur.children[b]
		if !ok {
			return nil, false
		}
		cur = child
	}
	return cur, true
}

// ChildSummary is one immediate child of a queried prefix, as returned by
// Metadata.
type ChildSummary struct {
	Label byte
	Hash  common.Hash
	Count int
}

// Metadata is the (prefix, num_messages, hash, children[]) tuple of
// spec.md §4.4's metadata(p) operation.
type Metadata struct {
	Prefix      []byte
	NumMessages int
	Hash        common.Hash
	Children    []ChildSummary
}

// Metadata implements spec.md §4.4's metadata(p) operation. A prefix
// with no corresponding node (neither side of a diff has indexed
// anything under it) yields a zero-valued Metadata rather than an error,
// since diff-sync must be able to compare "nothing here" against a
// populated subtree on the peer.
func (t *Trie) Metadata(prefix []byte) Metadata {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := Metadata{Prefix: clone(prefix)}
	n, ok := t.locate(prefix)
	if !ok {
		out.Hash = fcrypto.ZeroHash
		return out
	}
	out.NumMessages = n.count
	out.Hash = n.hash
	for _, l := range sortedLabels(n) {
		c := n.children[l]
		out.Children = append(out.Children, ChildSummary{Label: l, Hash: c.hash, Count: c.count})
	}
	return out
}

// Snapshot is the (prefix, excluded_hashes[], num_messages, root_hash)
// tuple of spec.md §4.4's snapshot(p) operation.
type Snapshot struct {
	Prefix         []byte
	ExcludedHashes []common.Hash
	NumMessages    int
	RootHash       common.Hash
}

// Snapshot implements spec.md §4.4's exclusion-set computation: walking
// from the node at prefix down the rightmost edge to its leaf, each
// internal node along the way contributes one excluded_hashes entry — the
// combined hash of its children other than the one on the rightmost
// path (fcrypto.ZeroHash when there are no such siblings). RootHash is
// always the whole trie's root hash, so a peer's partial snapshot can be
// tied back to its advertised GetInfo root (spec.md §4.5 step 2a).
func (t *Trie) Snapshot(prefix []byte) Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := Snapshot{Prefix: clone(prefix), RootHash: t.root.hash}
	n, ok := t.locate(prefix)
	if !ok {
		return out
	}
	out.NumMessages = n.count

	cur := n
	for len(cur.children) > 0 {
		labels := sortedLabels(cur)
		rightmost := labels[len(labels)-1]
		siblings := labels[:len(labels)-1]
		if len(siblings) == 0 {
			out.ExcludedHashes = append(out.ExcludedHashes, fcrypto.ZeroHash)
		} else {
			buf := make([]byte, 0, len(siblings)*(1+common.HashLength))
			for _, l := range siblings {
				c := cur.children[l]
				buf = append(buf, l)
				buf = append(buf, c.hash.Bytes()...)
			}
			out.ExcludedHashes = append(out.ExcludedHashes, fcrypto.Hash20(buf))
		}
		cur = cur.children[rightmost]
	}
	return out
}

// RightmostPath returns the sequence of byte labels followed when
// descending from the node at prefix to its rightmost (chronologically
// newest) leaf — the same path Snapshot walks to build excluded_hashes.
// Exposed so diffsync can extend a divergence-search prefix by the exact
// number of levels Snapshot's comparison indicates (spec.md §4.5 step 2c).
func (t *Trie) RightmostPath(prefix []byte) []byte {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.locate(prefix)
	if !ok {
		return nil
	}
	var path []byte
	cur := n
	for len(cur.children) > 0 {
		labels := sortedLabels(cur)
		rightmost := labels[len(labels)-1]
		path = append(path, rightmost)
		cur = cur.children[rightmost]
	}
	return path
}

// LeavesUnderPrefix returns every Sync ID indexed under prefix, in
// chronological (ascending byte) order — the full-subtree walk of
// spec.md §4.5 step 3, and the backing implementation of the
// GetAllSyncIdsByPrefix RPC.
func (t *Trie) LeavesUnderPrefix(prefix []byte) []message.SyncID {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.locate(prefix)
	if !ok {
		return nil
	}
	var out []message.SyncID
	collectLeaves(n, clone(prefix), &out)
	return out
}

func collectLeaves(n *node, path []byte, out *[]message.SyncID) {
	if len(path) == message.SyncIDLength {
		var id message.SyncID
		copy(id[:], path)
		*out = append(*out, id)
		return
	}
	for _, l := range sortedLabels(n) {
		childPath := make([]byte, len(path)+1)
		copy(childPath, path)
		childPath[len(path)] = l
		collectLeaves(n.children[l], childPath, out)
	}
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
