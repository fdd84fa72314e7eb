package validator

import (
	"crypto/ed25519"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/farcaster-hub/hub/codec"
	"github.com/farcaster-hub/hub/common"
	"github.com/farcaster-hub/hub/fcrypto"
	"github.com/farcaster-hub/hub/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSigners struct {
	authorized map[string]bool
}

func (f *fakeSigners) IsAuthorized(fid common.FID, signer []byte) bool {
	return f.authorized[string(signer)]
}

type fakeCustody struct {
	addrs map[common.FID]ethcommon.Address
}

func (f *fakeCustody) CustodyOf(fid common.FID) (ethcommon.Address, bool) {
	a, ok := f.addrs[fid]
	return a, ok
}

type fakeFnames struct {
	owner map[string]common.FID
}

func (f *fakeFnames) ResolvesTo(fname string, fid common.FID) bool {
	owner, ok := f.owner[fname]
	return ok && owner == fid
}

func signCastAdd(t *testing.T, fid common.FID, pub ed25519.PublicKey, priv ed25519.PrivateKey, body message.CastAddBody, ts common.Timestamp, network common.Network) *message.Message {
	t.Helper()
	data, err := codec.EncodeMessageData(message.TypeCastAdd, fid, ts, network, body)
	require.NoError(t, err)
	hash := fcrypto.Hash20(data)
	sig := ed25519.Sign(priv, hash[:])
	return &message.Message{
		FID:             fid,
		Type:            message.TypeCastAdd,
		Body:            body,
		Timestamp:       ts,
		Network:         network,
		Hash:            hash,
		HashScheme:      message.HashSchemeBlake3,
		Signature:       sig,
		SignatureScheme: message.SignatureSchemeEd25519,
		Signer:          []byte(pub),
	}
}

func TestValidate_HappyPath(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	fid := common.FID(1)
	body := message.CastAddBody{Text: "hello farcaster"}
	now := common.Timestamp(1_000_000)
	m := signCastAdd(t, fid, pub, priv, body, now, common.NetworkMainnet)

	deps := Deps{Signers: &fakeSigners{authorized: map[string]bool{string(pub): true}}}
	err = Validate(m, common.NetworkMainnet, now, deps)
	assert.NoError(t, err)
}

func TestValidate_HashMismatch(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	fid := common.FID(1)
	now := common.Timestamp(1_000_000)
	m := signCastAdd(t, fid, pub, priv, message.CastAddBody{Text: "hi"}, now, common.NetworkMainnet)
	m.Hash[0] ^= 0xFF // corrupt the declared hash without re-signing

	deps := Deps{Signers: &fakeSigners{authorized: map[string]bool{string(pub): true}}}
	err = Validate(m, common.NetworkMainnet, now, deps)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindHashMismatch))
}

func TestValidate_BadSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	_, otherPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	fid := common.FID(1)
	now := common.Timestamp(1_000_000)
	m := signCastAdd(t, fid, pub, priv, message.CastAddBody{Text: "hi"}, now, common.NetworkMainnet)
	m.Signature = ed25519.Sign(otherPriv, m.Hash[:])

	deps := Deps{Signers: &fakeSigners{authorized: map[string]bool{string(pub): true}}}
	err = Validate(m, common.NetworkMainnet, now, deps)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindBadSignature))
}

func TestValidate_UnauthorizedSigner(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	fid := common.FID(1)
	now := common.Timestamp(1_000_000)
	m := signCastAdd(t, fid, pub, priv, message.CastAddBody{Text: "hi"}, now, common.NetworkMainnet)

	deps := Deps{Signers: &fakeSigners{authorized: map[string]bool{}}}
	err = Validate(m, common.NetworkMainnet, now, deps)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUnauthorizedSigner))
}

func TestValidate_WrongNetwork(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	fid := common.FID(1)
	now := common.Timestamp(1_000_000)
	m := signCastAdd(t, fid, pub, priv, message.CastAddBody{Text: "hi"}, now, common.NetworkTestnet)

	deps := Deps{Signers: &fakeSigners{authorized: map[string]bool{string(pub): true}}}
	err = Validate(m, common.NetworkMainnet, now, deps)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindWrongNetwork))
}

func TestValidate_FutureTimestamp(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	fid := common.FID(1)
	now := common.Timestamp(1_000_000)
	future := now + common.Timestamp(FutureTolerance.Milliseconds()) + 1000
	m := signCastAdd(t, fid, pub, priv, message.CastAddBody{Text: "hi"}, future, common.NetworkMainnet)

	deps := Deps{Signers: &fakeSigners{authorized: map[string]bool{string(pub): true}}}
	err = Validate(m, common.NetworkMainnet, now, deps)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindFutureTimestamp))
}

func TestValidateBodyConstraints_CastAddTooLong(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	fid := common.FID(1)
	now := common.Timestamp(1_000_000)
	longText := make([]byte, maxCastTextBytes+1)
	for i := range longText {
		longText[i] = 'a'
	}
	m := signCastAdd(t, fid, pub, priv, message.CastAddBody{Text: string(longText)}, now, common.NetworkMainnet)

	deps := Deps{Signers: &fakeSigners{authorized: map[string]bool{string(pub): true}}}
	err = Validate(m, common.NetworkMainnet, now, deps)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindBodyConstraintViolated))
}

func TestValidateBodyConstraints_MentionsPositionsNotAscending(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	fid := common.FID(1)
	now := common.Timestamp(1_000_000)
	body := message.CastAddBody{
		Text:              "hi @a @b",
		Mentions:          []common.FID{2, 3},
		MentionsPositions: []uint32{5, 3},
	}
	m := signCastAdd(t, fid, pub, priv, body, now, common.NetworkMainnet)

	deps := Deps{Signers: &fakeSigners{authorized: map[string]bool{string(pub): true}}}
	err = Validate(m, common.NetworkMainnet, now, deps)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindBodyConstraintViolated))
}

func TestValidateBodyConstraints_UserDataValueTooLong(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	fid := common.FID(1)
	now := common.Timestamp(1_000_000)
	body := message.UserDataBody{Type: message.UserDataTypeDisplay, Value: string(make([]byte, 64))}

	data, err := codec.EncodeMessageData(message.TypeUserDataAdd, fid, now, common.NetworkMainnet, body)
	require.NoError(t, err)
	hash := fcrypto.Hash20(data)
	sig := ed25519.Sign(priv, hash[:])
	m := &message.Message{
		FID: fid, Type: message.TypeUserDataAdd, Body: body, Timestamp: now, Network: common.NetworkMainnet,
		Hash: hash, HashScheme: message.HashSchemeBlake3, Signature: sig,
		SignatureScheme: message.SignatureSchemeEd25519, Signer: []byte(pub),
	}

	deps := Deps{Signers: &fakeSigners{authorized: map[string]bool{string(pub): true}}}
	err = Validate(m, common.NetworkMainnet, now, deps)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindBodyConstraintViolated))
}

func newUserDataFnameMessage(t *testing.T, fid common.FID, pub ed25519.PublicKey, priv ed25519.PrivateKey, fname string, now common.Timestamp) *message.Message {
	t.Helper()
	body := message.UserDataBody{Type: message.UserDataTypeFname, Value: fname}
	data, err := codec.EncodeMessageData(message.TypeUserDataAdd, fid, now, common.NetworkMainnet, body)
	require.NoError(t, err)
	hash := fcrypto.Hash20(data)
	sig := ed25519.Sign(priv, hash[:])
	return &message.Message{
		FID: fid, Type: message.TypeUserDataAdd, Body: body, Timestamp: now, Network: common.NetworkMainnet,
		Hash: hash, HashScheme: message.HashSchemeBlake3, Signature: sig,
		SignatureScheme: message.SignatureSchemeEd25519, Signer: []byte(pub),
	}
}

func TestValidateBodyConstraints_UserDataFnameResolvesToCustody(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	fid := common.FID(1)
	now := common.Timestamp(1_000_000)
	m := newUserDataFnameMessage(t, fid, pub, priv, "alice", now)

	deps := Deps{
		Signers: &fakeSigners{authorized: map[string]bool{string(pub): true}},
		Fnames:  &fakeFnames{owner: map[string]common.FID{"alice": fid}},
	}
	require.NoError(t, Validate(m, common.NetworkMainnet, now, deps))
}

func TestValidateBodyConstraints_UserDataFnameDoesNotResolveToCustody(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	fid := common.FID(1)
	now := common.Timestamp(1_000_000)
	m := newUserDataFnameMessage(t, fid, pub, priv, "alice", now)

	deps := Deps{
		Signers: &fakeSigners{authorized: map[string]bool{string(pub): true}},
		Fnames:  &fakeFnames{owner: map[string]common.FID{"alice": fid + 1}},
	}
	err = Validate(m, common.NetworkMainnet, now, deps)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindBodyConstraintViolated))
}

func TestValidateBodyConstraints_UserDataFnameWithNoResolverConfigured(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	fid := common.FID(1)
	now := common.Timestamp(1_000_000)
	m := newUserDataFnameMessage(t, fid, pub, priv, "alice", now)

	deps := Deps{Signers: &fakeSigners{authorized: map[string]bool{string(pub): true}}}
	err = Validate(m, common.NetworkMainnet, now, deps)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindBodyConstraintViolated))
}

func TestValidate_Eip712CustodyMismatch(t *testing.T) {
	fid := common.FID(42)
	now := common.Timestamp(1_000_000)
	body := message.SignerBody{Signer: [32]byte{1, 2, 3}, Name: "test-signer"}

	data, err := codec.EncodeMessageData(message.TypeSignerAdd, fid, now, common.NetworkMainnet, body)
	require.NoError(t, err)
	hash := fcrypto.Hash20(data)

	m := &message.Message{
		FID: fid, Type: message.TypeSignerAdd, Body: body, Timestamp: now, Network: common.NetworkMainnet,
		Hash: hash, HashScheme: message.HashSchemeBlake3,
		Signature:       make([]byte, 65),
		SignatureScheme: message.SignatureSchemeEip712,
		Signer:          ethcommon.HexToAddress("0x1111111111111111111111111111111111111111").Bytes(),
	}

	deps := Deps{Custody: &fakeCustody{addrs: map[common.FID]ethcommon.Address{
		fid: ethcommon.HexToAddress("0x2222222222222222222222222222222222222222"),
	}}}
	err = Validate(m, common.NetworkMainnet, now, deps)
	require.Error(t, err)
	// Signature is garbage too, so the pipeline rejects at the signature step
	// before ever reaching the custody-authorization step.
	assert.True(t, IsKind(err, KindBadSignature))
}
