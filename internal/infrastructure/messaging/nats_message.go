// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package messaging

import (
	"github.com/nats-io/nats.go"
)

// NatsMessage wraps a *nats.Msg to implement the domain.Message interface.
type NatsMessage struct {
	msg *nats.Msg
}

// NewNatsMessage creates a new NatsMessage.
func NewNatsMessage(msg *nats.Msg) *NatsMessage {
	return &NatsMessage{msg: msg}
}

// Subject returns the subject of the message.
func (m *NatsMessage) Subject() string {
	return m.msg.Subject
}

// Data returns the payload of the message.
func (m *NatsMessage) Data() []byte {
	return m.msg.Data
}

// HasReply reports whether the message expects a reply.
func (m *NatsMessage) HasReply() bool {
	return m.msg.Reply != ""
}

// Respond replies to the message.
func (m *NatsMessage) Respond(data []byte) error {
	return m.msg.Respond(data)
}
