package message

import "github.com/farcaster-hub/hub/common"

// Message is the immutable signed record described in spec.md §3.
// Identity is Hash; messages are compared for total order by unsigned
// byte-wise comparison on Hash (common.Hash.Cmp).
type Message struct {
	FID             common.FID
	Type            Type
	Body            Body
	Timestamp       common.Timestamp
	Network         common.Network
	Hash            common.Hash
	HashScheme      HashScheme
	Signature       []byte // 64B Ed25519 or 65B EIP-712
	SignatureScheme SignatureScheme
	Signer          []byte // 32B Ed25519 pubkey or 20B Ethereum address
}

// IsEip712 reports whether m is signed with the EIP-712/Ethereum scheme
// (SignerAdd/SignerRemove — spec.md §3 table).
func (m *Message) IsEip712() bool {
	return m.SignatureScheme == SignatureSchemeEip712
}

// SignerFixedLength returns the expected byte length of m.Signer given its
// declared signature scheme (spec.md §4.1 step 1).
func (m *Message) SignerFixedLength() int {
	switch m.SignatureScheme {
	case SignatureSchemeEip712:
		return 20
	case SignatureSchemeEd25519:
		return 32
	default:
		return 0
	}
}

// SignatureFixedLength returns the expected byte length of m.Signature
// given its declared signature scheme.
func (m *Message) SignatureFixedLength() int {
	switch m.SignatureScheme {
	case SignatureSchemeEip712:
		return 65
	case SignatureSchemeEd25519:
		return 64
	default:
		return 0
	}
}
