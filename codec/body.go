package codec

import (
	"fmt"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/farcaster-hub/hub/common"
	"github.com/farcaster-hub/hub/message"
	"google.golang.org/protobuf/encoding/protowire"
)

// Body field tags, one table per message type. Ascending order within each
// table and packed repeated numerics follow spec.md §6's canonical-encoding
// rule.
const (
	signerTagSigner = protowire.Number(1)
	signerTagName   = protowire.Number(2)

	userDataTagType  = protowire.Number(1)
	userDataTagValue = protowire.Number(2)

	castAddTagText              = protowire.Number(1)
	castAddTagEmbeds            = protowire.Number(2)
	castAddTagMentions          = protowire.Number(3)
	castAddTagMentionsPositions = protowire.Number(4)
	castAddTagParent            = protowire.Number(5)

	castRemoveTagTargetHash = protowire.Number(1)

	reactionTagType   = protowire.Number(1)
	reactionTagTarget = protowire.Number(2)

	castIDTagFID  = protowire.Number(1)
	castIDTagHash = protowire.Number(2)

	verifyAddTagAddress   = protowire.Number(1)
	verifyAddTagBlockHash = protowire.Number(2)
	verifyAddTagSignature = protowire.Number(3)

	verifyRemoveTagAddress = protowire.Number(1)
)

// EncodeBody dispatches on t to the right per-type encoder (spec.md §9:
// "Validators dispatch on the tag").
func EncodeBody(t message.Type, body message.Body) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	if !message.BodyMatchesType(t, body) {
		return nil, message.ErrUnknownBodyType
	}
	switch t {
	case message.TypeSignerAdd, message.TypeSignerRemove:
		b := body.(message.SignerBody)
		var out []byte
		out = protowire.AppendTag(out, signerTagSigner, protowire.BytesType)
		out = protowire.AppendBytes(out, b.Signer[:])
		if b.Name != "" {
			out = protowire.AppendTag(out, signerTagName, protowire.BytesType)
			out = protowire.AppendString(out, b.Name)
		}
		return out, nil
	case message.TypeUserDataAdd:
		b := body.(message.UserDataBody)
		var out []byte
		if b.Type != message.UserDataTypeUnspecified {
			out = protowire.AppendTag(out, userDataTagType, protowire.VarintType)
			out = protowire.AppendVarint(out, uint64(b.Type))
		}
		if b.Value != "" {
			out = protowire.AppendTag(out, userDataTagValue, protowire.BytesType)
			out = protowire.AppendString(out, b.Value)
		}
		return out, nil
	case message.TypeCastAdd:
		return encodeCastAdd(body.(message.CastAddBody))
	case message.TypeCastRemove:
		b := body.(message.CastRemoveBody)
		var out []byte
		out = protowire.AppendTag(out, castRemoveTagTargetHash, protowire.BytesType)
		out = protowire.AppendBytes(out, b.TargetHash[:])
		return out, nil
	case message.TypeReactionAdd, message.TypeReactionRemove:
		b := body.(message.ReactionBody)
		var out []byte
		if b.Type != message.ReactionTypeUnspecified {
			out = protowire.AppendTag(out, reactionTagType, protowire.VarintType)
			out = protowire.AppendVarint(out, uint64(b.Type))
		}
		out = protowire.AppendTag(out, reactionTagTarget, protowire.BytesType)
		out = protowire.AppendBytes(out, encodeCastID(b.Target))
		return out, nil
	case message.TypeVerificationAddEthAddress:
		b := body.(message.VerificationAddBody)
		var out []byte
		out = protowire.AppendTag(out, verifyAddTagAddress, protowire.BytesType)
		out = protowire.AppendBytes(out, b.Address.Bytes())
		out = protowire.AppendTag(out, verifyAddTagBlockHash, protowire.BytesType)
		out = protowire.AppendBytes(out, b.BlockHash[:])
		out = protowire.AppendTag(out, verifyAddTagSignature, protowire.BytesType)
		out = protowire.AppendBytes(out, b.EthSignature)
		return out, nil
	case message.TypeVerificationRemove:
		b := body.(message.VerificationRemoveBody)
		var out []byte
		out = protowire.AppendTag(out, verifyRemoveTagAddress, protowire.BytesType)
		out = protowire.AppendBytes(out, b.Address.Bytes())
		return out, nil
	default:
		return nil, fmt.Errorf("codec: unsupported message type %v", t)
	}
}

func encodeCastID(c message.CastID) []byte {
	var out []byte
	out = protowire.AppendTag(out, castIDTagFID, protowire.VarintType)
	out = protowire.AppendVarint(out, uint64(c.FID))
	out = protowire.AppendTag(out, castIDTagHash, protowire.BytesType)
	out = protowire.AppendBytes(out, c.Hash[:])
	return out
}

func decodeCastID(data []byte) (message.CastID, error) {
	var c message.CastID
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return c, fmt.Errorf("codec: bad CastId tag")
		}
		data = data[n:]
		switch num {
		case castIDTagFID:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return c, fmt.Errorf("codec: bad CastId fid")
			}
			c.FID = common.FID(v)
			data = data[n:]
		case castIDTagHash:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return c, fmt.Errorf("codec: bad CastId hash")
			}
			c.Hash = common.BytesToHash(v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return c, fmt.Errorf("codec: bad CastId field")
			}
			data = data[n:]
		}
	}
	return c, nil
}

func encodeCastAdd(b message.CastAddBody) ([]byte, error) {
	var out []byte
	if b.Text != "" {
		out = protowire.AppendTag(out, castAddTagText, protowire.BytesType)
		out = protowire.AppendString(out, b.Text)
	}
	for _, e := range b.Embeds {
		out = protowire.AppendTag(out, castAddTagEmbeds, protowire.BytesType)
		out = protowire.AppendString(out, e)
	}
	if len(b.Mentions) > 0 {
		// packed repeated numeric field, per spec.md §6.
		var packed []byte
		for _, m := range b.Mentions {
			packed = protowire.AppendVarint(packed, uint64(m))
		}
		out = protowire.AppendTag(out, castAddTagMentions, protowire.BytesType)
		out = protowire.AppendBytes(out, packed)
	}
	if len(b.MentionsPositions) > 0 {
		var packed []byte
		for _, p := range b.MentionsPositions {
			packed = protowire.AppendVarint(packed, uint64(p))
		}
		out = protowire.AppendTag(out, castAddTagMentionsPositions, protowire.BytesType)
		out = protowire.AppendBytes(out, packed)
	}
	if b.Parent != nil {
		out = protowire.AppendTag(out, castAddTagParent, protowire.BytesType)
		out = protowire.AppendBytes(out, encodeCastID(*b.Parent))
	}
	return out, nil
}

func decodeCastAdd(data []byte) (message.CastAddBody, error) {
	var b message.CastAddBody
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return b, fmt.Errorf("codec: bad CastAdd tag")
		}
		data = data[n:]
		switch num {
		case castAddTagText:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return b, fmt.Errorf("codec: bad CastAdd text")
			}
			b.Text = v
			data = data[n:]
		case castAddTagEmbeds:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return b, fmt.Errorf("codec: bad CastAdd embed")
			}
			b.Embeds = append(b.Embeds, v)
			data = data[n:]
		case castAddTagMentions:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return b, fmt.Errorf("codec: bad CastAdd mentions")
			}
			rest := v
			for len(rest) > 0 {
				m, mn := protowire.ConsumeVarint(rest)
				if mn < 0 {
					return b, fmt.Errorf("codec: bad packed mention")
				}
				b.Mentions = append(b.Mentions, common.FID(m))
				rest = rest[mn:]
			}
			data = data[n:]
		case castAddTagMentionsPositions:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return b, fmt.Errorf("codec: bad CastAdd mentions_positions")
			}
			rest := v
			for len(rest) > 0 {
				p, pn := protowire.ConsumeVarint(rest)
				if pn < 0 {
					return b, fmt.Errorf("codec: bad packed mention position")
				}
				b.MentionsPositions = append(b.MentionsPositions, uint32(p))
				rest = rest[pn:]
			}
			data = data[n:]
		case castAddTagParent:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return b, fmt.Errorf("codec: bad CastAdd parent")
			}
			parent, err := decodeCastID(v)
			if err != nil {
				return b, err
			}
			b.Parent = &parent
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return b, fmt.Errorf("codec: bad CastAdd field")
			}
			data = data[n:]
		}
	}
	return b, nil
}

// DecodeBody dispatches on t to the right per-type decoder.
func DecodeBody(t message.Type, data []byte) (message.Body, error) {
	switch t {
	case message.TypeSignerAdd, message.TypeSignerRemove:
		var b message.SignerBody
		for len(data) > 0 {
			num, typ, n := protowire.ConsumeTag(data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad SignerBody tag")
			}
			data = data[n:]
			switch num {
			case signerTagSigner:
				v, n := protowire.ConsumeBytes(data)
				if n < 0 {
					return nil, fmt.Errorf("codec: bad SignerBody signer")
				}
				copy(b.Signer[:], v)
				data = data[n:]
			case signerTagName:
				v, n := protowire.ConsumeString(data)
				if n < 0 {
					return nil, fmt.Errorf("codec: bad SignerBody name")
				}
				b.Name = v
				data = data[n:]
			default:
				n := protowire.ConsumeFieldValue(num, typ, data)
				if n < 0 {
					return nil, fmt.Errorf("codec: bad SignerBody field")
				}
				data = data[n:]
			}
		}
		return b, nil
	case message.TypeUserDataAdd:
		var b message.UserDataBody
		for len(data) > 0 {
			num, typ, n := protowire.ConsumeTag(data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad UserDataBody tag")
			}
			data = data[n:]
			switch num {
			case userDataTagType:
				v, n := protowire.ConsumeVarint(data)
				if n < 0 {
					return nil, fmt.Errorf("codec: bad UserDataBody type")
				}
				b.Type = message.UserDataType(v)
				data = data[n:]
			case userDataTagValue:
				v, n := protowire.ConsumeString(data)
				if n < 0 {
					return nil, fmt.Errorf("codec: bad UserDataBody value")
				}
				b.Value = v
				data = data[n:]
			default:
				n := protowire.ConsumeFieldValue(num, typ, data)
				if n < 0 {
					return nil, fmt.Errorf("codec: bad UserDataBody field")
				}
				data = data[n:]
			}
		}
		return b, nil
	case message.TypeCastAdd:
		return decodeCastAdd(data)
	case message.TypeCastRemove:
		var b message.CastRemoveBody
		for len(data) > 0 {
			num, typ, n := protowire.ConsumeTag(data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad CastRemoveBody tag")
			}
			data = data[n:]
			switch num {
			case castRemoveTagTargetHash:
				v, n := protowire.ConsumeBytes(data)
				if n < 0 {
					return nil, fmt.Errorf("codec: bad CastRemoveBody target_hash")
				}
				b.TargetHash = common.BytesToHash(v)
				data = data[n:]
			default:
				n := protowire.ConsumeFieldValue(num, typ, data)
				if n < 0 {
					return nil, fmt.Errorf("codec: bad CastRemoveBody field")
				}
				data = data[n:]
			}
		}
		return b, nil
	case message.TypeReactionAdd, message.TypeReactionRemove:
		var b message.ReactionBody
		for len(data) > 0 {
			num, typ, n := protowire.ConsumeTag(data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad ReactionBody tag")
			}
			data = data[n:]
			switch num {
			case reactionTagType:
				v, n := protowire.ConsumeVarint(data)
				if n < 0 {
					return nil, fmt.Errorf("codec: bad ReactionBody type")
				}
				b.Type = message.ReactionType(v)
				data = data[n:]
			case reactionTagTarget:
				v, n := protowire.ConsumeBytes(data)
				if n < 0 {
					return nil, fmt.Errorf("codec: bad ReactionBody target")
				}
				target, err := decodeCastID(v)
				if err != nil {
					return nil, err
				}
				b.Target = target
				data = data[n:]
			default:
				n := protowire.ConsumeFieldValue(num, typ, data)
				if n < 0 {
					return nil, fmt.Errorf("codec: bad ReactionBody field")
				}
				data = data[n:]
			}
		}
		return b, nil
	case message.TypeVerificationAddEthAddress:
		var b message.VerificationAddBody
		for len(data) > 0 {
			num, typ, n := protowire.ConsumeTag(data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad VerificationAddBody tag")
			}
			data = data[n:]
			switch num {
			case verifyAddTagAddress:
				v, n := protowire.ConsumeBytes(data)
				if n < 0 {
					return nil, fmt.Errorf("codec: bad VerificationAddBody address")
				}
				b.Address = ethcommon.BytesToAddress(v)
				data = data[n:]
			case verifyAddTagBlockHash:
				v, n := protowire.ConsumeBytes(data)
				if n < 0 {
					return nil, fmt.Errorf("codec: bad VerificationAddBody block_hash")
				}
				copy(b.BlockHash[:], v)
				data = data[n:]
			case verifyAddTagSignature:
				v, n := protowire.ConsumeBytes(data)
				if n < 0 {
					return nil, fmt.Errorf("codec: bad VerificationAddBody eth_signature")
				}
				b.EthSignature = common.CopyBytes(v)
				data = data[n:]
			default:
				n := protowire.ConsumeFieldValue(num, typ, data)
				if n < 0 {
					return nil, fmt.Errorf("codec: bad VerificationAddBody field")
				}
				data = data[n:]
			}
		}
		return b, nil
	case message.TypeVerificationRemove:
		var b message.VerificationRemoveBody
		for len(data) > 0 {
			num, typ, n := protowire.ConsumeTag(data)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad VerificationRemoveBody tag")
			}
			data = data[n:]
			switch num {
			case verifyRemoveTagAddress:
				v, n := protowire.ConsumeBytes(data)
				if n < 0 {
					return nil, fmt.Errorf("codec: bad VerificationRemoveBody address")
				}
				b.Address = ethcommon.BytesToAddress(v)
				data = data[n:]
			default:
				n := protowire.ConsumeFieldValue(num, typ, data)
				if n < 0 {
					return nil, fmt.Errorf("codec: bad VerificationRemoveBody field")
				}
				data = data[n:]
			}
		}
		return b, nil
	default:
		return nil, fmt.Errorf("codec: unsupported message type %v", t)
	}
}
