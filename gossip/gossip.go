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

// Package gossip defines the two pub/sub topics of spec.md §6 — contact
// (Hub connection-info advertisement) and messages (broadcast Messages)
// — as transport-agnostic Go interfaces, with an in-process
// implementation over github.com/ethereum/go-ethereum/event's Feed.
// Real libp2p wiring is out of scope (spec.md §1); event.Feed is the
// same subscription primitive fidreg.ChainEventSource already exposes
// for chain events, reused here so a Hub can be exercised end to end
// without a network.
package gossip

import (
	"github.com/ethereum/go-ethereum/event"

	"github.com/farcaster-hub/hub/codec"
	"github.com/farcaster-hub/hub/message"
)

// ContactInfo is the payload advertised on the contact topic: enough for
// a receiving Hub to address this node for future diff-sync (spec.md
// §4.5's peer selection is out of scope here; this only carries the
// identity a transport would dial).
type ContactInfo struct {
	PeerID   string
	Nickname string
	RPCAddr  string
}

// MessagePublisher broadcasts Messages on the messages topic. Payloads
// are canonical-encoded Message protobufs (spec.md §6); Publish performs
// that encoding so callers never hand-roll the wire format.
type MessagePublisher interface {
	Publish(m *message.Message) error
}

// MessageSubscriber receives canonical-encoded Messages from the
// messages topic, decoded back into *message.Message for the merge
// pipeline — "the receiver feeds them into the merge pipeline with no
// additional ordering assumption" (spec.md §6).
type MessageSubscriber interface {
	Subscribe(ch chan<- *message.Message) event.Subscription
}

// ContactPublisher advertises this node's ContactInfo on the contact topic.
type ContactPublisher interface {
	Publish(info ContactInfo) error
}

// ContactSubscriber receives ContactInfo advertisements from peers.
type ContactSubscriber interface {
	Subscribe(ch chan<- ContactInfo) event.Subscription
}

// MessageBus is an in-process messages-topic implementation backed by
// an event.Feed, satisfying both MessagePublisher and MessageSubscriber.
// Encoding errors on Publish are not silently dropped: spec.md treats a
// message that fails canonical encoding as a caller bug, not a
// transient condition, so Publish surfaces it directly.
type MessageBus struct {
	feed event.Feed
}

// NewMessageBus returns an empty MessageBus.
func NewMessageBus() *MessageBus {
	return &MessageBus{}
}

// Publish canonical-encodes m and immediately decodes it back before
// broadcasting, exercising the same round-trip a real transport would
// perform and catching encoder/decoder drift early rather than at a
// remote peer.
func (b *MessageBus) Publish(m *message.Message) error {
	data, err := codec.EncodeMessage(m)
	if err != nil {
		return err
	}
	decoded, err := codec.DecodeMessage(data)
	if err != nil {
		return err
	}
	b.feed.Send(decoded)
	return nil
}

// Subscribe registers ch to receive every Message subsequently Published.
func (b *MessageBus) Subscribe(ch chan<- *message.Message) event.Subscription {
	return b.feed.Subscribe(ch)
}

// ContactBus is an in-process contact-topic implementation, mirroring
// MessageBus's shape for ContactInfo advertisements.
type ContactBus struct {
	feed event.Feed
}

// NewContactBus returns an empty ContactBus.
func NewContactBus() *ContactBus {
	return &ContactBus{}
}

// Publish broadcasts info to every current subscriber.
func (b *ContactBus) Publish(info ContactInfo) error {
	b.feed.Send(info)
	return nil
}

// Subscribe registers ch to receive every ContactInfo subsequently Published.
func (b *ContactBus) Subscribe(ch chan<- ContactInfo) event.Subscription {
	return b.feed.Subscribe(ch)
}
