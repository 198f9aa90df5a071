// ABOUTME: Core data models for archived messages and their forwards
// ABOUTME: Messages and forwards carry lazily filled attachments

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/harper/vkattach/internal/attachment"
)

// Forward is a message embedded in another message. It may carry forwards
// of its own.
type Forward struct {
	ConversationMessageID int64
	PeerID                int64
	SenderID              int64
	Text                  string
	CreatedAt             time.Time
	Attachments           attachment.List
	Forwards              *ForwardsCollection
}

// NewForward creates a forward with the given attachments and nested forwards.
func NewForward(senderID int64, text string, attachments attachment.List, forwards ...*Forward) *Forward {
	return &Forward{
		SenderID:    senderID,
		Text:        text,
		Attachments: attachments,
		Forwards:    NewForwardsCollection(forwards...),
	}
}

// HasAttachments reports whether the forward itself carries a matching
// attachment. Nested forwards are not consulted.
func (f *Forward) HasAttachments(kinds ...attachment.Kind) bool {
	return f.Attachments.HasAttachments(kinds...)
}

// GetAttachments returns the forward's own matching attachments.
func (f *Forward) GetAttachments(kinds ...attachment.Kind) []attachment.Attachment {
	return f.Attachments.GetAttachments(kinds...)
}

// Message is an archived message.
type Message struct {
	ID                    uuid.UUID
	RemoteID              int64
	ConversationMessageID int64
	PeerID                int64
	SenderID              int64
	Text                  string
	CreatedAt             time.Time
	ImportedAt            time.Time
	Attachments           attachment.List
	Forwards              *ForwardsCollection
	ReplyMessage          *Forward
}

// NewMessage creates a new message with generated UUID and timestamp.
func NewMessage(peerID, senderID int64, text string) *Message {
	return &Message{
		ID:         uuid.New(),
		PeerID:     peerID,
		SenderID:   senderID,
		Text:       text,
		CreatedAt:  time.Now(),
		ImportedAt: time.Now(),
		Forwards:   NewForwardsCollection(),
	}
}

// HasAttachments reports whether the message itself carries a matching
// attachment.
func (m *Message) HasAttachments(kinds ...attachment.Kind) bool {
	return m.Attachments.HasAttachments(kinds...)
}

// GetAttachments returns the message's own matching attachments.
func (m *Message) GetAttachments(kinds ...attachment.Kind) []attachment.Attachment {
	return m.Attachments.GetAttachments(kinds...)
}

// HasAllAttachments also looks into the reply message and every forward.
func (m *Message) HasAllAttachments(kinds ...attachment.Kind) bool {
	return attachment.AnyHas(m.bearers(), kinds...)
}

// GetAllAttachments returns own, reply and forwarded attachments, in that
// order.
func (m *Message) GetAllAttachments(kinds ...attachment.Kind) []attachment.Attachment {
	return attachment.Collect(m.bearers(), kinds...)
}

func (m *Message) bearers() []attachment.Bearer {
	bearers := []attachment.Bearer{m.Attachments}
	if m.ReplyMessage != nil {
		bearers = append(bearers, m.ReplyMessage)
	}
	return append(bearers, m.Forwards)
}

// ParseUUID parses a UUID string.
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}
