// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package messaging

import (
	"github.com/nats-io/nats.go"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
)

// NatsMessage adapts an incoming *nats.Msg to [domain.Message].
type NatsMessage struct {
	msg *nats.Msg
}

// NewNatsMessage wraps a NATS message for the handler layer.
func NewNatsMessage(msg *nats.Msg) *NatsMessage {
	return &NatsMessage{msg: msg}
}

func (m *NatsMessage) Subject() string {
	return m.msg.Subject
}

func (m *NatsMessage) Data() []byte {
	return m.msg.Data
}

func (m *NatsMessage) Respond(data []byte) error {
	return m.msg.Respond(data)
}

func (m *NatsMessage) HasReply() bool {
	return m.msg.Reply != ""
}

var _ domain.Message = (*NatsMessage)(nil)
