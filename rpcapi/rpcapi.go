// Copyright 2024 The gtos Authors
// This file is part of the gtos library.
//
// The gtos library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gtos library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gtos library. If not, see <http://www.gnu.org/licenses/>.

// Package rpcapi defines the five sync RPC methods of spec.md §6 as a Go
// interface, and an in-process Server implementing it directly over a
// hub.Hub. The real gRPC binding is out of scope (spec.md §1); this is
// the contract that binding would sit behind, and it is also exactly the
// diffsync.Peer shape a local-process test needs to drive a sync cycle
// without a network.
package rpcapi

import (
	"context"

	"github.com/farcaster-hub/hub/diffsync"
	"github.com/farcaster-hub/hub/hub"
	"github.com/farcaster-hub/hub/message"
	"github.com/farcaster-hub/hub/synctrie"
)

// API is the five RPC methods of spec.md §6, the contract a gRPC service
// definition would bind to. It reuses diffsync.Info/synctrie.Metadata/
// synctrie.Snapshot as its response types rather than redefining
// parallel wire structs, so an API implementation is, by construction,
// also a diffsync.Peer — the shape diffsync already drives a sync cycle
// through. Every method takes a context so a real network binding can
// enforce spec.md §5's per-RPC deadline (default 15s).
type API interface {
	GetInfo(ctx context.Context) (diffsync.Info, error)
	GetAllSyncIdsByPrefix(ctx context.Context, prefix []byte) ([]message.SyncID, error)
	GetAllMessagesBySyncIds(ctx context.Context, syncIDs []message.SyncID) ([]*message.Message, error)
	GetSyncMetadataByPrefix(ctx context.Context, prefix []byte) (synctrie.Metadata, error)
	GetSyncSnapshotByPrefix(ctx context.Context, prefix []byte) (synctrie.Snapshot, error)
}

// Server implements API directly over a *hub.Hub, with no transport in
// between. Because its method set matches diffsync.Peer exactly, a
// *Server can be passed straight into diffsync.Syncer.Sync for
// same-process sync tests, and is otherwise the shape a gRPC server
// would wrap.
type Server struct {
	h *hub.Hub
}

// New returns a Server backed by h.
func New(h *hub.Hub) *Server {
	return &Server{h: h}
}

func (s *Server) GetInfo(_ context.Context) (diffsync.Info, error) {
	return diffsync.Info{
		Version:  hub.Version,
		IsSynced: s.h.IsSynced(),
		Nickname: s.h.Nickname(),
		RootHash: s.h.RootHash(),
	}, nil
}

func (s *Server) GetAllSyncIdsByPrefix(_ context.Context, prefix []byte) ([]message.SyncID, error) {
	return s.h.Trie().LeavesUnderPrefix(prefix), nil
}

// GetAllMessagesBySyncIds resolves every id it can and silently omits
// the rest — the caller (diffsync.Syncer) treats a short result as a
// SyncIdNotFound integrity error on its own, by comparing result length
// against the request (spec.md §7).
func (s *Server) GetAllMessagesBySyncIds(_ context.Context, syncIDs []message.SyncID) ([]*message.Message, error) {
	out := make([]*message.Message, 0, len(syncIDs))
	for _, id := range syncIDs {
		if m, ok := s.h.MessageBySyncID(id); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Server) GetSyncMetadataByPrefix(_ context.Context, prefix []byte) (synctrie.Metadata, error) {
	return s.h.Trie().Metadata(prefix), nil
}

func (s *Server) GetSyncSnapshotByPrefix(_ context.Context, prefix []byte) (synctrie.Snapshot, error) {
	return s.h.Trie().Snapshot(prefix), nil
}
