package hub

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"fmt"
	"testing"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcaster-hub/hub/codec"
	"github.com/farcaster-hub/hub/common"
	"github.com/farcaster-hub/hub/fcrypto"
	"github.com/farcaster-hub/hub/fidreg"
	"github.com/farcaster-hub/hub/message"
	"github.com/farcaster-hub/hub/storage"
	"github.com/farcaster-hub/hub/validator"
)

// signEip712Hash reproduces fcrypto's MessageData digest (domain +
// "hash" field) and signs it with priv, for constructing real
// SignerAdd/SignerRemove test messages end to end.
func signEip712Hash(t *testing.T, priv *ecdsa.PrivateKey, hash common.Hash) []byte {
	t.Helper()
	domain := apitypes.TypedDataDomain{
		Name:    "Farcaster Verify Ethereum Address",
		Version: "2.0.0",
		Salt:    "0xf2d857f4a3edcb9b78b4d503bfe733db1e3f6cdc2b7971ee739626c97e86a558",
	}
	types := apitypes.Types{
		"EIP712Domain": {
			{Name: "name", Type: "string"},
			{Name: "version", Type: "string"},
			{Name: "salt", Type: "bytes32"},
		},
		"MessageData": {
			{Name: "hash", Type: "bytes32"},
		},
	}
	td := apitypes.TypedData{
		Types:       types,
		PrimaryType: "MessageData",
		Domain:      domain,
		Message: apitypes.TypedDataMessage{
			"hash": ethcommon.BytesToHash(hash[:]).Hex(),
		},
	}
	domainSeparator, err := td.HashStruct("EIP712Domain", td.Domain.Map())
	require.NoError(t, err)
	structHash, err := td.HashStruct("MessageData", td.Message)
	require.NoError(t, err)

	rawData := append([]byte{0x19, 0x01}, domainSeparator...)
	rawData = append(rawData, structHash...)
	digest := ethcrypto.Keccak256(rawData)

	sig, err := ethcrypto.Sign(digest, priv)
	require.NoError(t, err)
	return sig
}

func signSignerAdd(t *testing.T, fid common.FID, custodyPriv *ecdsa.PrivateKey, signerPub ed25519.PublicKey, name string, ts common.Timestamp, network common.Network) *message.Message {
	t.Helper()
	var sigBody [32]byte
	copy(sigBody[:], signerPub)
	body := message.SignerBody{Signer: sigBody, Name: name}
	data, err := codec.EncodeMessageData(message.TypeSignerAdd, fid, ts, network, body)
	require.NoError(t, err)
	hash := fcrypto.Hash20(data)
	sig := signEip712Hash(t, custodyPriv, hash)
	custody := ethcrypto.PubkeyToAddress(custodyPriv.PublicKey)
	return &message.Message{
		FID: fid, Type: message.TypeSignerAdd, Body: body, Timestamp: ts, Network: network,
		Hash: hash, HashScheme: message.HashSchemeBlake3,
		Signature: sig, SignatureScheme: message.SignatureSchemeEip712,
		Signer: custody.Bytes(),
	}
}

func signSignerRemove(t *testing.T, fid common.FID, custodyPriv *ecdsa.PrivateKey, signerPub ed25519.PublicKey, ts common.Timestamp, network common.Network) *message.Message {
	t.Helper()
	var sigBody [32]byte
	copy(sigBody[:], signerPub)
	body := message.SignerBody{Signer: sigBody}
	data, err := codec.EncodeMessageData(message.TypeSignerRemove, fid, ts, network, body)
	require.NoError(t, err)
	hash := fcrypto.Hash20(data)
	sig := signEip712Hash(t, custodyPriv, hash)
	custody := ethcrypto.PubkeyToAddress(custodyPriv.PublicKey)
	return &message.Message{
		FID: fid, Type: message.TypeSignerRemove, Body: body, Timestamp: ts, Network: network,
		Hash: hash, HashScheme: message.HashSchemeBlake3,
		Signature: sig, SignatureScheme: message.SignatureSchemeEip712,
		Signer: custody.Bytes(),
	}
}

func signCastAdd(t *testing.T, fid common.FID, pub ed25519.PublicKey, priv ed25519.PrivateKey, body message.CastAddBody, ts common.Timestamp, network common.Network) *message.Message {
	t.Helper()
	data, err := codec.EncodeMessageData(message.TypeCastAdd, fid, ts, network, body)
	require.NoError(t, err)
	hash := fcrypto.Hash20(data)
	sig := ed25519.Sign(priv, hash[:])
	return &message.Message{
		FID: fid, Type: message.TypeCastAdd, Body: body, Timestamp: ts, Network: network,
		Hash: hash, HashScheme: message.HashSchemeBlake3,
		Signature: sig, SignatureScheme: message.SignatureSchemeEd25519,
		Signer: []byte(pub),
	}
}

func signUserDataAdd(t *testing.T, fid common.FID, pub ed25519.PublicKey, priv ed25519.PrivateKey, body message.UserDataBody, ts common.Timestamp, network common.Network) *message.Message {
	t.Helper()
	data, err := codec.EncodeMessageData(message.TypeUserDataAdd, fid, ts, network, body)
	require.NoError(t, err)
	hash := fcrypto.Hash20(data)
	sig := ed25519.Sign(priv, hash[:])
	return &message.Message{
		FID: fid, Type: message.TypeUserDataAdd, Body: body, Timestamp: ts, Network: network,
		Hash: hash, HashScheme: message.HashSchemeBlake3,
		Signature: sig, SignatureScheme: message.SignatureSchemeEd25519,
		Signer: []byte(pub),
	}
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h, err := New(DefaultConfig(common.NetworkMainnet), storage.NewMemStore(), fidreg.New(), "test-hub")
	require.NoError(t, err)
	// Pin the merge clock near the test timestamps so the Cast TTL does
	// not prune the test's casts on insert.
	h.nowFunc = func() time.Time { return common.FarcasterEpoch.Add(10 * time.Second) }
	return h
}

func TestHub_SignerAuthorizationLifecycleThroughCastAdd(t *testing.T) {
	h := newTestHub(t)
	custodyPriv, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	custody := ethcrypto.PubkeyToAddress(custodyPriv.PublicKey)
	fid := common.FID(1)
	require.True(t, h.registry.Register(fid, custody, 1))

	signerPub, signerPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	signerAdd := signSignerAdd(t, fid, custodyPriv, signerPub, "alice", 1000, common.NetworkMainnet)
	require.NoError(t, h.Submit(signerAdd))

	before := h.RootHash()
	castAdd := signCastAdd(t, fid, signerPub, signerPriv, message.CastAddBody{Text: "gm farcaster"}, 1001, common.NetworkMainnet)
	require.NoError(t, h.Submit(castAdd))
	assert.NotEqual(t, before, h.RootHash())

	syncID := message.NewSyncID(message.TypeCastAdd, fid, castAdd.Timestamp, castAdd.Hash)
	got, ok := h.MessageBySyncID(syncID)
	require.True(t, ok)
	assert.Equal(t, castAdd.Hash, got.Hash)
}

func TestHub_CastFromUnauthorizedSignerRejected(t *testing.T) {
	h := newTestHub(t)
	fid := common.FID(2)
	signerPub, signerPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	castAdd := signCastAdd(t, fid, signerPub, signerPriv, message.CastAddBody{Text: "no signer registered"}, 1000, common.NetworkMainnet)
	err = h.Submit(castAdd)
	require.Error(t, err)
	assert.True(t, validator.IsKind(err, validator.KindUnauthorizedSigner))
}

func TestHub_FidTransferCascadesSignerAndDependentCasts(t *testing.T) {
	h := newTestHub(t)
	oldPriv, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	oldCustody := ethcrypto.PubkeyToAddress(oldPriv.PublicKey)
	newPriv, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	newCustody := ethcrypto.PubkeyToAddress(newPriv.PublicKey)

	fid := common.FID(3)
	require.True(t, h.registry.Register(fid, oldCustody, 1))

	signerPub, signerPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	signerAdd := signSignerAdd(t, fid, oldPriv, signerPub, "bob", 1000, common.NetworkMainnet)
	require.NoError(t, h.Submit(signerAdd))

	castAdd := signCastAdd(t, fid, signerPub, signerPriv, message.CastAddBody{Text: "before transfer"}, 1001, common.NetworkMainnet)
	require.NoError(t, h.Submit(castAdd))

	castSyncID := message.NewSyncID(message.TypeCastAdd, fid, castAdd.Timestamp, castAdd.Hash)
	_, ok := h.MessageBySyncID(castSyncID)
	require.True(t, ok)

	_, existed := h.registry.Transfer(fid, newCustody, 2)
	require.True(t, existed)
	h.ApplyTransfer(fid, oldCustody, newCustody, 2)

	_, ok = h.MessageBySyncID(castSyncID)
	assert.False(t, ok, "cast authored under the revoked signer must be discarded by the cascade")

	signerSyncID := message.NewSyncID(message.TypeSignerAdd, fid, signerAdd.Timestamp, signerAdd.Hash)
	_, ok = h.MessageBySyncID(signerSyncID)
	assert.False(t, ok, "SignerAdd signed by the old custody must be discarded by the cascade")
}

func TestHub_SignerRemoveCascadesDependentCasts(t *testing.T) {
	h := newTestHub(t)
	custodyPriv, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	custody := ethcrypto.PubkeyToAddress(custodyPriv.PublicKey)
	fid := common.FID(4)
	require.True(t, h.registry.Register(fid, custody, 1))

	signerPub, signerPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	signerAdd := signSignerAdd(t, fid, custodyPriv, signerPub, "carol", 1000, common.NetworkMainnet)
	require.NoError(t, h.Submit(signerAdd))

	castAdd := signCastAdd(t, fid, signerPub, signerPriv, message.CastAddBody{Text: "will be orphaned"}, 1001, common.NetworkMainnet)
	require.NoError(t, h.Submit(castAdd))
	castSyncID := message.NewSyncID(message.TypeCastAdd, fid, castAdd.Timestamp, castAdd.Hash)
	_, ok := h.MessageBySyncID(castSyncID)
	require.True(t, ok)

	signerRemove := signSignerRemove(t, fid, custodyPriv, signerPub, 1002, common.NetworkMainnet)
	require.NoError(t, h.Submit(signerRemove))

	_, ok = h.MessageBySyncID(castSyncID)
	assert.False(t, ok, "cast authored by a removed signer must be cascaded away")
}

func TestHub_UserDataFnameRequiresRegistryResolution(t *testing.T) {
	h := newTestHub(t)
	custodyPriv, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	custody := ethcrypto.PubkeyToAddress(custodyPriv.PublicKey)
	fid := common.FID(6)
	require.True(t, h.registry.Register(fid, custody, 1))

	signerPub, signerPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	signerAdd := signSignerAdd(t, fid, custodyPriv, signerPub, "erin", 1000, common.NetworkMainnet)
	require.NoError(t, h.Submit(signerAdd))

	body := message.UserDataBody{Type: message.UserDataTypeFname, Value: "erin"}
	userDataAdd := signUserDataAdd(t, fid, signerPub, signerPriv, body, 1001, common.NetworkMainnet)

	err = h.Submit(userDataAdd)
	require.Error(t, err, "fname must not be accepted before the registry resolves it to this fid")
	assert.True(t, validator.IsKind(err, validator.KindBodyConstraintViolated))

	h.Fnames().SetOwner("erin", fid)
	require.NoError(t, h.Submit(userDataAdd))
}

type failingStore struct {
	*storage.MemStore
}

func (f failingStore) Put(key, value []byte) error {
	return fmt.Errorf("simulated disk failure")
}

func TestHub_HaltsAndRejectsAfterStorageFailure(t *testing.T) {
	store := failingStore{MemStore: storage.NewMemStore()}
	h, err := New(DefaultConfig(common.NetworkMainnet), store, fidreg.New(), "flaky-hub")
	require.NoError(t, err)

	custodyPriv, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	custody := ethcrypto.PubkeyToAddress(custodyPriv.PublicKey)
	fid := common.FID(5)
	require.True(t, h.registry.Register(fid, custody, 1))
	signerPub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	signerAdd := signSignerAdd(t, fid, custodyPriv, signerPub, "dave", 1000, common.NetworkMainnet)
	err = h.Submit(signerAdd)
	require.Error(t, err)
	assert.True(t, h.Halted())

	err = h.Submit(signerAdd)
	assert.ErrorIs(t, err, ErrHalted)
}
