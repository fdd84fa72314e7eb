package rpcapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcaster-hub/hub/common"
	"github.com/farcaster-hub/hub/fidreg"
	"github.com/farcaster-hub/hub/hub"
	"github.com/farcaster-hub/hub/message"
	"github.com/farcaster-hub/hub/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	h, err := hub.New(hub.DefaultConfig(common.NetworkMainnet), storage.NewMemStore(), fidreg.New(), "rpc-test")
	require.NoError(t, err)
	return New(h)
}

func TestServer_GetInfoReflectsHub(t *testing.T) {
	s := newTestServer(t)
	info, err := s.GetInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, hub.Version, info.Version)
	assert.Equal(t, "rpc-test", info.Nickname)
	assert.False(t, info.IsSynced)
}

func TestServer_GetAllSyncIdsByPrefixEmptyTrie(t *testing.T) {
	s := newTestServer(t)
	ids, err := s.GetAllSyncIdsByPrefix(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestServer_GetAllMessagesBySyncIdsOmitsMissing(t *testing.T) {
	s := newTestServer(t)
	unknown := message.NewSyncID(message.TypeCastAdd, 1, 1000, common.Hash{0x01})
	msgs, err := s.GetAllMessagesBySyncIds(context.Background(), []message.SyncID{unknown})
	require.NoError(t, err)
	assert.Empty(t, msgs, "an id absent from the hub must be silently omitted, not errored")
}

func TestServer_GetSyncMetadataByPrefixEmptyTrie(t *testing.T) {
	s := newTestServer(t)
	md, err := s.GetSyncMetadataByPrefix(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, md.NumMessages)
	assert.Empty(t, md.Children)
}

func TestServer_GetSyncSnapshotByPrefixEmptyTrie(t *testing.T) {
	s := newTestServer(t)
	snap, err := s.GetSyncSnapshotByPrefix(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.NumMessages)
	assert.Empty(t, snap.ExcludedHashes)
}
