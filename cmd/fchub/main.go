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

// Command fchub is the node entrypoint: it wires hub.Hub, rpcapi.Server
// and gossip's in-process buses into a runnable process, the way
// cmd/gtos wires node.Node and cmd/toskey wires accountsigner. Real
// gRPC/libp2p binding is out of scope (spec.md §1); this entrypoint
// stops at constructing the in-process collaborators and logging their
// addresses, which is as far as a caller without a transport can go.
package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/farcaster-hub/hub/common"
	"github.com/farcaster-hub/hub/fidreg"
	"github.com/farcaster-hub/hub/gossip"
	"github.com/farcaster-hub/hub/hub"
	"github.com/farcaster-hub/hub/rpcapi"
	"github.com/farcaster-hub/hub/storage"
)

var gitCommit = ""
var gitDate = ""

var (
	dataDirFlag = &cli.StringFlag{
		Name:  "datadir",
		Usage: "data directory for the persisted crdt/trie/fid store (empty uses an in-memory store)",
	}
	networkFlag = &cli.StringFlag{
		Name:  "network",
		Usage: "farcaster network: mainnet, testnet or devnet",
		Value: "mainnet",
	}
	nicknameFlag = &cli.StringFlag{
		Name:  "nickname",
		Usage: "display name reported by GetInfo",
		Value: "fchub",
	}
	rpcAddrFlag = &cli.StringFlag{
		Name:  "rpc-addr",
		Usage: "address the sync RPC service would listen on (recorded, not bound)",
		Value: "127.0.0.1:2281",
	}
	gossipAddrFlag = &cli.StringFlag{
		Name:  "gossip-addr",
		Usage: "address the gossip transport would listen on (recorded, not bound)",
		Value: "127.0.0.1:2282",
	}
)

var commandStart = &cli.Command{
	Name:  "start",
	Usage: "construct a Hub and its in-process RPC/gossip collaborators",
	Flags: []cli.Flag{dataDirFlag, networkFlag, nicknameFlag, rpcAddrFlag, gossipAddrFlag},
	Action: func(ctx *cli.Context) error {
		network, err := parseNetwork(ctx.String(networkFlag.Name))
		if err != nil {
			return err
		}

		store, err := openStore(ctx.String(dataDirFlag.Name))
		if err != nil {
			return fmt.Errorf("fchub: opening store: %w", err)
		}
		defer store.Close()

		cfg := hub.DefaultConfig(network)
		cfg.RPCListenAddr = ctx.String(rpcAddrFlag.Name)
		cfg.GossipListenAddr = ctx.String(gossipAddrFlag.Name)

		registry := fidreg.New()
		h, err := hub.New(cfg, store, registry, ctx.String(nicknameFlag.Name))
		if err != nil {
			return fmt.Errorf("fchub: constructing hub: %w", err)
		}

		server := rpcapi.New(h)
		messages := gossip.NewMessageBus()
		contacts := gossip.NewContactBus()

		info, _ := server.GetInfo(ctx.Context)
		log.Info("fchub started",
			"nickname", info.Nickname,
			"network", network,
			"rootHash", info.RootHash.Hex(),
			"rpcAddr", cfg.RPCListenAddr,
			"gossipAddr", cfg.GossipListenAddr,
		)

		// Real service binding (gRPC listener, libp2p pubsub transport)
		// is out of scope; messages/contacts are kept alive here only so
		// an embedder can call Subscribe before wiring a transport.
		_ = messages
		_ = contacts
		return nil
	},
}

var commandVersion = &cli.Command{
	Name:  "version",
	Usage: "print version information",
	Action: func(ctx *cli.Context) error {
		fmt.Println("fchub", hub.Version)
		if gitCommit != "" {
			fmt.Println("Git Commit:", gitCommit)
		}
		if gitDate != "" {
			fmt.Println("Git Commit Date:", gitDate)
		}
		return nil
	},
}

func parseNetwork(s string) (common.Network, error) {
	switch s {
	case "mainnet":
		return common.NetworkMainnet, nil
	case "testnet":
		return common.NetworkTestnet, nil
	case "devnet":
		return common.NetworkDevnet, nil
	default:
		return common.NetworkUnspecified, fmt.Errorf("fchub: unknown network %q", s)
	}
}

func openStore(dataDir string) (storage.Store, error) {
	if dataDir == "" {
		return storage.NewMemStore(), nil
	}
	return storage.OpenLevelDB(dataDir)
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "fchub",
		Usage:   "a Farcaster Hub core node",
		Version: hub.Version,
		Commands: []*cli.Command{
			commandStart,
			commandVersion,
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
