package validator

import (
	"bytes"
	"fmt"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/farcaster-hub/hub/codec"
	"github.com/farcaster-hub/hub/common"
	"github.com/farcaster-hub/hub/fcrypto"
	"github.com/farcaster-hub/hub/message"
)

// FutureTolerance is the maximum amount a message's timestamp may lead the
// validator's clock (spec.md §4.1 step 4).
const FutureTolerance = 600 * time.Second

// CustodyResolver resolves the current Ethereum custody address of a fid
// (spec.md component C3). Satisfied by fidreg.Registry.
type CustodyResolver interface {
	CustodyOf(fid common.FID) (ethcommon.Address, bool)
}

// SignerAuthority reports whether signer is a currently-authorized Ed25519
// signer for fid (spec.md component C4, the Signer CRDT's add-set).
type SignerAuthority interface {
	IsAuthorized(fid common.FID, signer []byte) bool
}

// FnameResolver resolves whether fname currently belongs to fid's custody
// address, per the external fname registry (spec.md §6: UserDataAdd's
// type=FNAME body constraint, "the external fname registry resolves to
// fid's custody" — a mandatory semantic check, not the on-chain ID
// Registry ingestion spec.md §1 scopes out). Satisfied by a client for
// that registry; the Hub wires a concrete implementation in, but this
// package only depends on the interface.
type FnameResolver interface {
	ResolvesTo(fname string, fid common.FID) bool
}

// Deps bundles the collaborators the semantic and authorization-binding
// steps (spec.md §4.1 steps 4-5) need.
type Deps struct {
	Custody CustodyResolver
	Signers SignerAuthority
	Fnames  FnameResolver
}

// Validate runs the five-step pipeline of spec.md §4.1 against m for the
// given network and current time, returning nil on success or a *Failure.
func Validate(m *message.Message, network common.Network, now common.Timestamp, deps Deps) error {
	if err := validateStructural(m); err != nil {
		return err
	}
	if err := validateEncoding(m); err != nil {
		return err
	}
	if err := validateSignature(m); err != nil {
		return err
	}
	if err := validateSemantic(m, network, now, deps); err != nil {
		return err
	}
	if err := validateAuthorization(m, deps); err != nil {
		return err
	}
	return nil
}

// validateStructural checks step 1: required fields present, byte lengths
// match the declared schemes.
func validateStructural(m *message.Message) error {
	if m.Body == nil {
		return newFailure(KindMalformedBytes, fmt.Errorf("missing body"))
	}
	if !message.BodyMatchesType(m.Type, m.Body) {
		return newFailure(KindMalformedBytes, message.ErrUnknownBodyType)
	}
	if len(m.Hash) != common.HashLength {
		return newFailure(KindMalformedBytes, fmt.Errorf("hash must be %dB", common.HashLength))
	}
	wantSigner := m.SignerFixedLength()
	if wantSigner == 0 {
		return newFailure(KindMalformedBytes, fmt.Errorf("unknown signature scheme"))
	}
	if len(m.Signer) != wantSigner {
		return newFailure(KindMalformedBytes, fmt.Errorf("signer must be %dB for scheme", wantSigner))
	}
	wantSig := m.SignatureFixedLength()
	if len(m.Signature) != wantSig {
		return newFailure(KindMalformedBytes, fmt.Errorf("signature must be %dB for scheme", wantSig))
	}
	required, ok := message.RequiredSignatureScheme(m.Type)
	if !ok {
		return newFailure(KindMalformedBytes, fmt.Errorf("unknown message type"))
	}
	if required != m.SignatureScheme {
		return newFailure(KindMalformedBytes, fmt.Errorf("type %v requires signature scheme, got mismatch", m.Type))
	}
	if m.HashScheme != message.HashSchemeBlake3 {
		return newFailure(KindMalformedBytes, fmt.Errorf("unsupported hash scheme"))
	}
	return nil
}

// validateEncoding checks step 2: re-serialize m's data with the canonical
// encoder and assert the declared hash scheme of those bytes equals m.Hash.
func validateEncoding(m *message.Message) error {
	data, err := codec.EncodeMessageData(m.Type, m.FID, m.Timestamp, m.Network, m.Body)
	if err != nil {
		return newFailure(KindMalformedBytes, err)
	}
	got := fcrypto.Hash20(data)
	if !bytes.Equal(got[:], m.Hash[:]) {
		return newFailure(KindHashMismatch, fmt.Errorf("computed %x, declared %x", got, m.Hash))
	}
	return nil
}

// validateSignature checks step 3: verify m.Signature over m.Hash under
// m.Signer using m.SignatureScheme.
func validateSignature(m *message.Message) error {
	switch m.SignatureScheme {
	case message.SignatureSchemeEd25519:
		if !fcrypto.VerifyEd25519(m.Signer, m.Signature, m.Hash[:]) {
			return newFailure(KindBadSignature, fmt.Errorf("ed25519 verification failed"))
		}
	case message.SignatureSchemeEip712:
		signer := ethcommon.BytesToAddress(m.Signer)
		if !fcrypto.VerifyEip712MessageHash(signer, m.Hash, m.Signature) {
			return newFailure(KindBadSignature, fmt.Errorf("eip-712 verification failed"))
		}
	default:
		return newFailure(KindBadSignature, fmt.Errorf("unknown signature scheme"))
	}
	return nil
}

// validateSemantic checks step 4: network match, future-timestamp bound,
// and per-type body constraints (spec.md §6 table).
func validateSemantic(m *message.Message, network common.Network, now common.Timestamp, deps Deps) error {
	if !m.Network.Valid() {
		return newFailure(KindWrongNetwork, fmt.Errorf("invalid network %v", m.Network))
	}
	if m.Network != network {
		return newFailure(KindWrongNetwork, fmt.Errorf("message network %v does not match node network %v", m.Network, network))
	}
	maxTs := now + common.Timestamp(FutureTolerance.Milliseconds())
	if m.Timestamp > maxTs {
		return newFailure(KindFutureTimestamp, fmt.Errorf("timestamp %v exceeds now+%v", m.Timestamp, FutureTolerance))
	}
	if err := validateBodyConstraints(m, deps); err != nil {
		return err
	}
	return nil
}

// validateAuthorization checks step 5: for EIP-712, m.Signer must equal
// the current custody address of m.FID; for Ed25519, m.Signer must be a
// currently-authorized Signer for m.FID.
func validateAuthorization(m *message.Message, deps Deps) error {
	switch m.SignatureScheme {
	case message.SignatureSchemeEip712:
		if deps.Custody == nil {
			return newFailure(KindUnknownFid, fmt.Errorf("no custody resolver configured"))
		}
		custody, ok := deps.Custody.CustodyOf(m.FID)
		if !ok {
			return newFailure(KindUnknownFid, fmt.Errorf("fid %v has no registered custody address", m.FID))
		}
		if !bytes.Equal(custody.Bytes(), m.Signer) {
			return newFailure(KindUnauthorizedSigner, fmt.Errorf("signer is not the custody address of fid %v", m.FID))
		}
	case message.SignatureSchemeEd25519:
		if deps.Signers == nil || !deps.Signers.IsAuthorized(m.FID, m.Signer) {
			return newFailure(KindUnauthorizedSigner, fmt.Errorf("signer is not an authorized signer of fid %v", m.FID))
		}
	default:
		return newFailure(KindUnauthorizedSigner, fmt.Errorf("unknown signature scheme"))
	}
	return nil
}
