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

// Package common holds the primitive value types shared across the hub:
// the 20-byte message/trie-node hash, the fid, the farcaster-epoch
// timestamp and the network enum. Ethereum custody addresses are not
// redefined here — callers use go-ethereum's common.Address directly,
// since a custody address is an Ethereum address, not a hub-native type.
package common

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// HashLength is the byte length of a message hash and sync-trie node hash.
const HashLength = 20

// Hash is a BLAKE3 digest truncated to 20 bytes, used as message identity
// (spec.md §3) and as sync-trie node/leaf hash (spec.md §4.4).
type Hash [HashLength]byte

// BytesToHash sets the last HashLength bytes of b into a Hash, left-padding
// with zero if b is shorter and truncating the leading bytes if longer —
// mirroring go-ethereum's common.BytesToHash big-endian convention.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// HexToHash decodes a hex string (with or without 0x prefix) into a Hash.
func HexToHash(s string) Hash {
	return BytesToHash(FromHex(s))
}

// Bytes returns a copy of h as a byte slice.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the 0x-prefixed lowercase hex encoding, matching the wire
// format required by the RPC surface in spec.md §6 ("hex-lowercase strings").
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

// IsZero reports whether h is the all-zero hash — the adopted convention
// for H(empty) in exclusion-set hashing (spec.md §9).
func (h Hash) IsZero() bool { return h == Hash{} }

// Cmp performs unsigned byte-wise comparison, used for the total
// lexicographic order on message hashes (spec.md §3) and the "higher hash"
// tie-break rule (spec.md §4.2).
func (h Hash) Cmp(other Hash) int { return bytes.Compare(h[:], other[:]) }

// Less reports whether h sorts strictly before other under Cmp.
func (h Hash) Less(other Hash) bool { return h.Cmp(other) < 0 }

// CopyBytes returns an independent copy of b.
func CopyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// FromHex decodes s, tolerating an optional 0x/0X prefix and an odd
// number of hex digits (left-padded with a zero nibble, as hexutil does).
func FromHex(s string) []byte {
	if len(s) >= 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}

// FID is a Farcaster ID: an unsigned 64-bit user identifier (GLOSSARY).
type FID uint64

func (f FID) String() string { return fmt.Sprintf("%d", uint64(f)) }

// Network identifies the Farcaster network a message was signed for
// (spec.md §3, §4.1 step 4).
type Network uint8

const (
	NetworkUnspecified Network = iota
	NetworkMainnet
	NetworkTestnet
	NetworkDevnet
)

func (n Network) String() string {
	switch n {
	case NetworkMainnet:
		return "mainnet"
	case NetworkTestnet:
		return "testnet"
	case NetworkDevnet:
		return "devnet"
	default:
		return "unspecified"
	}
}

// Valid reports whether n is one of the three networks a Hub may be
// configured for (spec.md §4.1 step 4: "network ∈ {MAINNET, TESTNET, DEVNET}").
func (n Network) Valid() bool {
	switch n {
	case NetworkMainnet, NetworkTestnet, NetworkDevnet:
		return true
	default:
		return false
	}
}
