package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcaster-hub/hub/common"
	"github.com/farcaster-hub/hub/message"
)

func sampleCastAdd() *message.Message {
	return &message.Message{
		FID:       7,
		Type:      message.TypeCastAdd,
		Body:      message.CastAddBody{Text: "gm"},
		Timestamp: 12345,
		Network:   common.NetworkMainnet,
		Hash:      common.BytesToHash([]byte{0xaa, 0xbb}),
		HashScheme: message.HashSchemeBlake3,
		Signature:       make([]byte, 64),
		SignatureScheme: message.SignatureSchemeEd25519,
		Signer:          make([]byte, 32),
	}
}

func TestEncodeMessageData_RoundTrip(t *testing.T) {
	m := sampleCastAdd()
	data, err := EncodeMessageData(m.Type, m.FID, m.Timestamp, m.Network, m.Body)
	require.NoError(t, err)

	decoded, err := DecodeMessageData(data)
	require.NoError(t, err)
	assert.Equal(t, m.Type, decoded.Type)
	assert.Equal(t, m.FID, decoded.FID)
	assert.Equal(t, m.Timestamp, decoded.Timestamp)
	assert.Equal(t, m.Network, decoded.Network)
	assert.Equal(t, m.Body, decoded.Body)
}

func TestEncodeMessageData_Deterministic(t *testing.T) {
	m := sampleCastAdd()
	a, err := EncodeMessageData(m.Type, m.FID, m.Timestamp, m.Network, m.Body)
	require.NoError(t, err)
	b, err := EncodeMessageData(m.Type, m.FID, m.Timestamp, m.Network, m.Body)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncodeMessage_RoundTrip(t *testing.T) {
	m := sampleCastAdd()
	data, err := EncodeMessage(m)
	require.NoError(t, err)

	decoded, err := DecodeMessage(data)
	require.NoError(t, err)
	assert.Equal(t, m.Type, decoded.Type)
	assert.Equal(t, m.FID, decoded.FID)
	assert.Equal(t, m.Timestamp, decoded.Timestamp)
	assert.Equal(t, m.Network, decoded.Network)
	assert.Equal(t, m.Body, decoded.Body)
	assert.Equal(t, m.Hash, decoded.Hash)
	assert.Equal(t, m.HashScheme, decoded.HashScheme)
	assert.Equal(t, m.Signature, decoded.Signature)
	assert.Equal(t, m.SignatureScheme, decoded.SignatureScheme)
	assert.Equal(t, m.Signer, decoded.Signer)
}

func TestEncodeMessage_SignerAddRoundTrip(t *testing.T) {
	var signer [32]byte
	signer[0] = 0x42
	m := &message.Message{
		FID:             9,
		Type:            message.TypeSignerAdd,
		Body:            message.SignerBody{Signer: signer, Name: "alice"},
		Timestamp:       999,
		Network:         common.NetworkTestnet,
		Hash:            common.BytesToHash([]byte{0x01}),
		HashScheme:      message.HashSchemeBlake3,
		Signature:       make([]byte, 65),
		SignatureScheme: message.SignatureSchemeEip712,
		Signer:          make([]byte, 20),
	}
	data, err := EncodeMessage(m)
	require.NoError(t, err)
	decoded, err := DecodeMessage(data)
	require.NoError(t, err)
	assert.Equal(t, m.Body, decoded.Body)
	assert.Equal(t, m.SignatureScheme, decoded.SignatureScheme)
}
