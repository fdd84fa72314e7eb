// Package codec implements the canonical deterministic encoder used by the
// message validator's encoding check (spec.md §4.1 step 2, §6): fields in
// ascending tag order, default-valued scalars omitted, repeated numerics
// packed, and a single active oneof arm. It is built on
// google.golang.org/protobuf's low-level wire primitives rather than a
// hand-rolled byte format, so the module still exercises a real protobuf
// dependency even though byte-for-byte ts-proto compatibility is explicitly
// out of scope (spec.md §1: "protobuf wire encoding as a library" is an
// external collaborator). What's exercised here is the *shape* of the
// contract — tag order, packing, oneof — not a cross-language conformance
// vector suite, which would require compiling the real .proto schema.
package codec

import (
	"fmt"

	"github.com/farcaster-hub/hub/common"
	"github.com/farcaster-hub/hub/message"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field tags for the MessageData envelope (spec.md §3's Message fields
// that feed the hash, i.e. everything except hash/signature/signer).
const (
	tagType      = protowire.Number(1)
	tagFID       = protowire.Number(2)
	tagTimestamp = protowire.Number(3)
	tagNetwork   = protowire.Number(4)
	tagBody      = protowire.Number(5)
)

// EncodeMessageData produces the canonical deterministic bytes for a
// message's data envelope (type, fid, timestamp, network, body), matching
// the input to the hash function in spec.md §4.1 step 2.
func EncodeMessageData(t message.Type, fid common.FID, ts common.Timestamp, network common.Network, body message.Body) ([]byte, error) {
	bodyBytes, err := EncodeBody(t, body)
	if err != nil {
		return nil, err
	}
	var out []byte
	out = protowire.AppendTag(out, tagType, protowire.VarintType)
	out = protowire.AppendVarint(out, uint64(t))
	out = protowire.AppendTag(out, tagFID, protowire.VarintType)
	out = protowire.AppendVarint(out, uint64(fid))
	if ts != 0 {
		out = protowire.AppendTag(out, tagTimestamp, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(ts))
	}
	if network != common.NetworkUnspecified {
		out = protowire.AppendTag(out, tagNetwork, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(network))
	}
	if len(bodyBytes) > 0 {
		out = protowire.AppendTag(out, tagBody, protowire.BytesType)
		out = protowire.AppendBytes(out, bodyBytes)
	}
	return out, nil
}

// DecodedMessageData is the result of decoding a canonical-encoded envelope.
type DecodedMessageData struct {
	Type      message.Type
	FID       common.FID
	Timestamp common.Timestamp
	Network   common.Network
	Body      message.Body
}

// DecodeMessageData parses bytes produced by EncodeMessageData. Used by the
// round-trip test (spec.md §8 property 7: decode(encode(m)) = m).
func DecodeMessageData(data []byte) (*DecodedMessageData, error) {
	out := &DecodedMessageData{}
	var bodyBytes []byte
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("codec: bad tag: %w", protowire.ParseError(n))
		}
		data = data[n:]
		switch num {
		case tagType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad type field")
			}
			out.Type = message.Type(v)
			data = data[n:]
		case tagFID:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad fid field")
			}
			out.FID = common.FID(v)
			data = data[n:]
		case tagTimestamp:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad timestamp field")
			}
			out.Timestamp = common.Timestamp(v)
			data = data[n:]
		case tagNetwork:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad network field")
			}
			out.Network = common.Network(v)
			data = data[n:]
		case tagBody:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad body field")
			}
			bodyBytes = v
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad unknown field %d", num)
			}
			data = data[n:]
		}
	}
	body, err := DecodeBody(out.Type, bodyBytes)
	if err != nil {
		return nil, err
	}
	out.Body = body
	return out, nil
}

// Field tags for the full Message envelope persisted to storage and
// published on the "messages" gossip topic (spec.md §6: "payloads on
// messages are canonical-encoded Message protobufs"). These extend the
// MessageData tags with the fields MessageData deliberately omits
// (hash/signature/signer feed the hash check rather than being hashed
// themselves — spec.md §4.1 step 2).
const (
	tagHash            = protowire.Number(6)
	tagHashScheme      = protowire.Number(7)
	tagSignature       = protowire.Number(8)
	tagSignatureScheme = protowire.Number(9)
	tagSigner          = protowire.Number(10)
)

// EncodeMessage canonically encodes a full signed Message, for storage
// persistence and gossip transport.
func EncodeMessage(m *message.Message) ([]byte, error) {
	out, err := EncodeMessageData(m.Type, m.FID, m.Timestamp, m.Network, m.Body)
	if err != nil {
		return nil, err
	}
	out = protowire.AppendTag(out, tagHash, protowire.BytesType)
	out = protowire.AppendBytes(out, m.Hash.Bytes())
	if m.HashScheme != message.HashSchemeUnspecified {
		out = protowire.AppendTag(out, tagHashScheme, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(m.HashScheme))
	}
	out = protowire.AppendTag(out, tagSignature, protowire.BytesType)
	out = protowire.AppendBytes(out, m.Signature)
	if m.SignatureScheme != message.SignatureSchemeUnspecified {
		out = protowire.AppendTag(out, tagSignatureScheme, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(m.SignatureScheme))
	}
	out = protowire.AppendTag(out, tagSigner, protowire.BytesType)
	out = protowire.AppendBytes(out, m.Signer)
	return out, nil
}

// DecodeMessage parses bytes produced by EncodeMessage back into a full
// Message.
func DecodeMessage(data []byte) (*message.Message, error) {
	m := &message.Message{}
	var bodyBytes []byte
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("codec: bad tag: %w", protowire.ParseError(n))
		}
		data = data[n:]
		switch num {
		case tagType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad type field")
			}
			m.Type = message.Type(v)
			data = data[n:]
		case tagFID:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad fid field")
			}
			m.FID = common.FID(v)
			data = data[n:]
		case tagTimestamp:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad timestamp field")
			}
			m.Timestamp = common.Timestamp(v)
			data = data[n:]
		case tagNetwork:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad network field")
			}
			m.Network = common.Network(v)
			data = data[n:]
		case tagBody:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad body field")
			}
			bodyBytes = v
			data = data[n:]
		case tagHash:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad hash field")
			}
			m.Hash = common.BytesToHash(v)
			data = data[n:]
		case tagHashScheme:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad hash scheme field")
			}
			m.HashScheme = message.HashScheme(v)
			data = data[n:]
		case tagSignature:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad signature field")
			}
			m.Signature = common.CopyBytes(v)
			data = data[n:]
		case tagSignatureScheme:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad signature scheme field")
			}
			m.SignatureScheme = message.SignatureScheme(v)
			data = data[n:]
		case tagSigner:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad signer field")
			}
			m.Signer = common.CopyBytes(v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad unknown field %d", num)
			}
			data = data[n:]
		}
	}
	body, err := DecodeBody(m.Type, bodyBytes)
	if err != nil {
		return nil, err
	}
	m.Body = body
	return m, nil
}
