// ABOUTME: Builds messages from message objects stored in the archive
// ABOUTME: Attachments stay partial or full exactly as stored

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harper/vkattach/internal/attachment"
)

type rawAttachment struct {
	Type string                     `json:"type"`
	Body map[string]json.RawMessage `json:"-"`
}

func (r *rawAttachment) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if t, ok := fields["type"]; ok {
		if err := json.Unmarshal(t, &r.Type); err != nil {
			return fmt.Errorf("attachment type: %w", err)
		}
	}
	r.Body = fields
	return nil
}

type rawMessage struct {
	ID                    int64           `json:"id"`
	ConversationMessageID int64           `json:"conversation_message_id"`
	PeerID                int64           `json:"peer_id"`
	FromID                int64           `json:"from_id"`
	Date                  int64           `json:"date"`
	Text                  string          `json:"text"`
	Attachments           []rawAttachment `json:"attachments"`
	FwdMessages           []rawMessage    `json:"fwd_messages"`
	ReplyMessage          *rawMessage     `json:"reply_message"`
}

// DecodeMessage builds a message from a message object. api is handed to
// every attachment for later fills. Attachment types outside
// attachment.Kinds() are skipped.
func DecodeMessage(data []byte, api attachment.API) (*Message, error) {
	var raw rawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}

	attachments, err := decodeAttachments(raw.Attachments, api)
	if err != nil {
		return nil, err
	}
	forwards, err := decodeForwards(raw.FwdMessages, api)
	if err != nil {
		return nil, err
	}

	msg := NewMessage(raw.PeerID, raw.FromID, raw.Text)
	msg.RemoteID = raw.ID
	msg.ConversationMessageID = raw.ConversationMessageID
	if raw.Date != 0 {
		msg.CreatedAt = time.Unix(raw.Date, 0)
	}
	msg.Attachments = attachments
	msg.Forwards = NewForwardsCollection(forwards...)

	if raw.ReplyMessage != nil {
		reply, err := decodeForward(*raw.ReplyMessage, api)
		if err != nil {
			return nil, fmt.Errorf("reply message: %w", err)
		}
		msg.ReplyMessage = reply
	}
	return msg, nil
}

func decodeForwards(raws []rawMessage, api attachment.API) ([]*Forward, error) {
	forwards := make([]*Forward, 0, len(raws))
	for i, raw := range raws {
		f, err := decodeForward(raw, api)
		if err != nil {
			return nil, fmt.Errorf("forward %d: %w", i, err)
		}
		forwards = append(forwards, f)
	}
	return forwards, nil
}

func decodeForward(raw rawMessage, api attachment.API) (*Forward, error) {
	attachments, err := decodeAttachments(raw.Attachments, api)
	if err != nil {
		return nil, err
	}
	nested, err := decodeForwards(raw.FwdMessages, api)
	if err != nil {
		return nil, err
	}

	f := NewForward(raw.FromID, raw.Text, attachments, nested...)
	f.ConversationMessageID = raw.ConversationMessageID
	f.PeerID = raw.PeerID
	if raw.Date != 0 {
		f.CreatedAt = time.Unix(raw.Date, 0)
	}
	return f, nil
}

func decodeAttachments(raws []rawAttachment, api attachment.API) (attachment.List, error) {
	var list attachment.List
	for i, raw := range raws {
		kind, err := attachment.ParseKind(raw.Type)
		if errors.Is(err, attachment.ErrUnsupportedKind) {
			continue
		}
		body, ok := raw.Body[raw.Type]
		if !ok {
			return nil, fmt.Errorf("attachment %d: missing %q object", i, raw.Type)
		}
		a, err := attachment.FromPayload(kind, body, api)
		if err != nil {
			return nil, fmt.Errorf("attachment %d: %w", i, err)
		}
		list = append(list, a)
	}
	return list, nil
}
