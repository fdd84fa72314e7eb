package validator

import (
	"fmt"
	"unicode/utf8"

	"github.com/farcaster-hub/hub/fcrypto"
	"github.com/farcaster-hub/hub/message"
)

const (
	maxSignerNameBytes = 32
	maxCastTextBytes   = 320
	maxCastEmbeds      = 2
	minEmbedBytes      = 1
	maxEmbedBytes      = 256
	maxCastMentions    = 10
)

// validateBodyConstraints enforces the per-type body table of spec.md §6.
func validateBodyConstraints(m *message.Message, deps Deps) error {
	switch m.Type {
	case message.TypeSignerAdd:
		b := m.Body.(message.SignerBody)
		if !utf8.ValidString(b.Name) {
			return newFailure(KindBodyConstraintViolated, fmt.Errorf("signer name is not valid UTF-8"))
		}
		if len(b.Name) > maxSignerNameBytes {
			return newFailure(KindBodyConstraintViolated, fmt.Errorf("signer name exceeds %dB", maxSignerNameBytes))
		}
		return nil
	case message.TypeSignerRemove:
		return nil
	case message.TypeUserDataAdd:
		b := m.Body.(message.UserDataBody)
		if !b.Type.Valid() {
			return newFailure(KindBodyConstraintViolated, fmt.Errorf("invalid UserData type"))
		}
		if !utf8.ValidString(b.Value) {
			return newFailure(KindBodyConstraintViolated, fmt.Errorf("UserData value is not valid UTF-8"))
		}
		if max := b.Type.MaxLen(); max >= 0 && len(b.Value) > max {
			return newFailure(KindBodyConstraintViolated, fmt.Errorf("UserData value exceeds %dB", max))
		}
		if b.Type == message.UserDataTypeFname && b.Value != "" {
			if deps.Fnames == nil {
				return newFailure(KindBodyConstraintViolated, fmt.Errorf("no fname resolver configured"))
			}
			if !deps.Fnames.ResolvesTo(b.Value, m.FID) {
				return newFailure(KindBodyConstraintViolated, fmt.Errorf("fname %q does not resolve to fid %v", b.Value, m.FID))
			}
		}
		return nil
	case message.TypeCastAdd:
		return validateCastAdd(m.Body.(message.CastAddBody))
	case message.TypeCastRemove:
		return nil // TargetHash is a fixed-size common.Hash; always 20B.
	case message.TypeReactionAdd, message.TypeReactionRemove:
		b := m.Body.(message.ReactionBody)
		if !b.Type.Valid() {
			return newFailure(KindBodyConstraintViolated, fmt.Errorf("invalid Reaction type"))
		}
		if !b.Target.Valid() {
			return newFailure(KindBodyConstraintViolated, fmt.Errorf("invalid reaction target CastId"))
		}
		return nil
	case message.TypeVerificationAddEthAddress:
		return validateVerificationAdd(m, m.Body.(message.VerificationAddBody))
	case message.TypeVerificationRemove:
		return nil // Address is a fixed-size ethcommon.Address; always 20B.
	default:
		return newFailure(KindBodyConstraintViolated, fmt.Errorf("unknown message type"))
	}
}

func validateCastAdd(b message.CastAddBody) error {
	if !utf8.ValidString(b.Text) {
		return newFailure(KindBodyConstraintViolated, fmt.Errorf("cast text is not valid UTF-8"))
	}
	if len(b.Text) > maxCastTextBytes {
		return newFailure(KindBodyConstraintViolated, fmt.Errorf("cast text exceeds %dB", maxCastTextBytes))
	}
	if len(b.Embeds) > maxCastEmbeds {
		return newFailure(KindBodyConstraintViolated, fmt.Errorf("cast has more than %d embeds", maxCastEmbeds))
	}
	for _, e := range b.Embeds {
		if len(e) < minEmbedBytes || len(e) > maxEmbedBytes {
			return newFailure(KindBodyConstraintViolated, fmt.Errorf("embed length out of [%d,%d]B", minEmbedBytes, maxEmbedBytes))
		}
	}
	if len(b.Mentions) > maxCastMentions {
		return newFailure(KindBodyConstraintViolated, fmt.Errorf("cast has more than %d mentions", maxCastMentions))
	}
	if len(b.Mentions) != len(b.MentionsPositions) {
		return newFailure(KindBodyConstraintViolated, fmt.Errorf("mentions and mentions_positions length mismatch"))
	}
	var prev int64 = -1
	for _, p := range b.MentionsPositions {
		pos := int64(p)
		if pos <= prev {
			return newFailure(KindBodyConstraintViolated, fmt.Errorf("mentions_positions must be strictly ascending and unique"))
		}
		if pos < 0 || pos > int64(len(b.Text)) {
			return newFailure(KindBodyConstraintViolated, fmt.Errorf("mention position %d out of [0,%d]", pos, len(b.Text)))
		}
		prev = pos
	}
	if b.Parent != nil && !b.Parent.Valid() {
		return newFailure(KindBodyConstraintViolated, fmt.Errorf("invalid parent CastId"))
	}
	return nil
}

func validateVerificationAdd(m *message.Message, b message.VerificationAddBody) error {
	claim := fcrypto.VerificationClaim{
		FID:       m.FID,
		Address:   b.Address,
		Network:   m.Network,
		BlockHash: b.BlockHash,
	}
	if !fcrypto.VerifyVerificationClaim(claim, b.EthSignature) {
		return newFailure(KindBodyConstraintViolated, fmt.Errorf("eth_signature does not verify VerificationClaim"))
	}
	return nil
}
