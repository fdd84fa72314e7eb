// Package message defines the wire-level Message envelope and its nine
// body variants (spec.md §3), the tagged-variant model referenced in
// spec.md §9 ("no inheritance is required").
package message

import (
	"errors"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/farcaster-hub/hub/common"
)

// Type is the MessageType discriminator (spec.md §3 table).
type Type uint8

const (
	TypeUnspecified Type = iota
	TypeSignerAdd
	TypeSignerRemove
	TypeUserDataAdd
	TypeCastAdd
	TypeCastRemove
	TypeReactionAdd
	TypeReactionRemove
	TypeVerificationAddEthAddress
	TypeVerificationRemove
)

func (t Type) String() string {
	switch t {
	case TypeSignerAdd:
		return "SignerAdd"
	case TypeSignerRemove:
		return "SignerRemove"
	case TypeUserDataAdd:
		return "UserDataAdd"
	case TypeCastAdd:
		return "CastAdd"
	case TypeCastRemove:
		return "CastRemove"
	case TypeReactionAdd:
		return "ReactionAdd"
	case TypeReactionRemove:
		return "ReactionRemove"
	case TypeVerificationAddEthAddress:
		return "VerificationAddEthAddress"
	case TypeVerificationRemove:
		return "VerificationRemove"
	default:
		return "Unspecified"
	}
}

// SignatureScheme identifies the signature algorithm over m.hash.
type SignatureScheme uint8

const (
	SignatureSchemeUnspecified SignatureScheme = iota
	SignatureSchemeEd25519
	SignatureSchemeEip712
)

// HashScheme identifies the hash function applied to m.data.
type HashScheme uint8

const (
	HashSchemeUnspecified HashScheme = iota
	HashSchemeBlake3
)

// RequiredSignatureScheme returns the signature scheme mandated for t by
// the table in spec.md §3, or false if t is not a recognized type.
func RequiredSignatureScheme(t Type) (SignatureScheme, bool) {
	switch t {
	case TypeSignerAdd, TypeSignerRemove:
		return SignatureSchemeEip712, true
	case TypeUserDataAdd, TypeCastAdd, TypeCastRemove, TypeReactionAdd, TypeReactionRemove,
		TypeVerificationAddEthAddress, TypeVerificationRemove:
		return SignatureSchemeEd25519, true
	default:
		return SignatureSchemeUnspecified, false
	}
}

// Body is implemented by every message body variant. Dispatch is on the
// enclosing Message's Type field, not on Go's type system, because the
// wire encoding (codec package) needs the declared type to pick the
// field-tag table independent of which concrete struct is in play.
type Body interface {
	bodyMarker()
}

// CastID identifies a cast by its author fid and message hash.
type CastID struct {
	FID  common.FID
	Hash common.Hash
}

// Valid reports whether c is a structurally valid CastId (spec.md §6:
// "fid>0, hash=20B" — Hash is always 20 bytes by type, so only fid is
// checked here).
func (c CastID) Valid() bool { return c.FID > 0 }

// SignerBody is the body of SignerAdd/SignerRemove (spec.md §6).
type SignerBody struct {
	Signer [32]byte // Ed25519 public key being authorized/revoked
	Name   string   // optional, SignerAdd only, ≤32B UTF-8
}

func (SignerBody) bodyMarker() {}

// UserDataType enumerates the UserDataAdd value kinds (spec.md §6).
type UserDataType uint8

const (
	UserDataTypeUnspecified UserDataType = iota
	UserDataTypePfp
	UserDataTypeDisplay
	UserDataTypeBio
	UserDataTypeURL
	UserDataTypeFname
)

// MaxLen returns the maximum byte length for values of type t, or -1 if
// unbounded (spec.md §6: FNAME has no declared cap other than fname
// registry resolution).
func (t UserDataType) MaxLen() int {
	switch t {
	case UserDataTypePfp:
		return 256
	case UserDataTypeDisplay:
		return 32
	case UserDataTypeBio:
		return 256
	case UserDataTypeURL:
		return 256
	case UserDataTypeFname:
		return -1
	default:
		return 0
	}
}

func (t UserDataType) Valid() bool {
	switch t {
	case UserDataTypePfp, UserDataTypeDisplay, UserDataTypeBio, UserDataTypeURL, UserDataTypeFname:
		return true
	default:
		return false
	}
}

// UserDataBody is the body of UserDataAdd.
type UserDataBody struct {
	Type  UserDataType
	Value string
}

func (UserDataBody) bodyMarker() {}

// CastAddBody is the body of CastAdd (spec.md §6).
type CastAddBody struct {
	Text              string
	Embeds            []string
	Mentions          []common.FID
	MentionsPositions []uint32
	Parent            *CastID // optional
}

func (CastAddBody) bodyMarker() {}

// CastRemoveBody is the body of CastRemove.
type CastRemoveBody struct {
	TargetHash common.Hash
}

func (CastRemoveBody) bodyMarker() {}

// ReactionType enumerates the Reaction kinds (spec.md §6).
type ReactionType uint8

const (
	ReactionTypeUnspecified ReactionType = iota
	ReactionTypeLike
	ReactionTypeRecast
)

func (t ReactionType) Valid() bool {
	return t == ReactionTypeLike || t == ReactionTypeRecast
}

// ReactionBody is the body of ReactionAdd/ReactionRemove.
type ReactionBody struct {
	Type   ReactionType
	Target CastID
}

func (ReactionBody) bodyMarker() {}

// VerificationAddBody is the body of VerificationAddEthAddress (spec.md §6).
type VerificationAddBody struct {
	Address      ethcommon.Address
	BlockHash    [32]byte
	EthSignature []byte // 65B EIP-712 signature over VerificationClaim
}

func (VerificationAddBody) bodyMarker() {}

// VerificationRemoveBody is the body of VerificationRemove.
type VerificationRemoveBody struct {
	Address ethcommon.Address
}

func (VerificationRemoveBody) bodyMarker() {}

// ErrUnknownBodyType is returned when a Message's declared Type does not
// match the concrete type of its Body.
var ErrUnknownBodyType = errors.New("message: body does not match declared type")

// BodyMatchesType reports whether body's concrete type is the one
// required for t.
func BodyMatchesType(t Type, body Body) bool {
	switch t {
	case TypeSignerAdd, TypeSignerRemove:
		_, ok := body.(SignerBody)
		return ok
	case TypeUserDataAdd:
		_, ok := body.(UserDataBody)
		return ok
	case TypeCastAdd:
		_, ok := body.(CastAddBody)
		return ok
	case TypeCastRemove:
		_, ok := body.(CastRemoveBody)
		return ok
	case TypeReactionAdd, TypeReactionRemove:
		_, ok := body.(ReactionBody)
		return ok
	case TypeVerificationAddEthAddress:
		_, ok := body.(VerificationAddBody)
		return ok
	case TypeVerificationRemove:
		_, ok := body.(VerificationRemoveBody)
		return ok
	default:
		return false
	}
}
