// ABOUTME: MCP tool implementations
// ABOUTME: Attachment lookup, message browsing and payload loading

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/harper/vkattach/internal/attachment"
	"github.com/harper/vkattach/internal/db"
	"github.com/harper/vkattach/internal/models"
)

// DefaultLoadConcurrency bounds parallel fills in load_message_attachments.
const DefaultLoadConcurrency = 4

func (s *Server) registerTools() {
	s.mcp.AddTool(&mcp.Tool{
		Name:        "get_attachment",
		Description: "Look up an attachment by reference such as photo-1_2_key, optionally loading its full payload",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"ref":{"type":"string"},"load":{"type":"boolean","description":"Fetch the full payload"}},"required":["ref"]}`),
	}, s.handleGetAttachment)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "list_messages",
		Description: "List archived messages",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"peer_id":{"type":"integer","description":"Only messages from this conversation"}}}`),
	}, s.handleListMessages)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "message_attachments",
		Description: "List the attachments of a message, optionally including its reply and forwards",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"message":{"type":"string"},"kinds":{"type":"array","items":{"type":"string","enum":["photo","poll","graffiti"]}},"include_forwards":{"type":"boolean"}},"required":["message"]}`),
	}, s.handleMessageAttachments)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "flatten_forwards",
		Description: "List every forward of a message, nested forwards included, in depth-first order",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"message":{"type":"string"},"kinds":{"type":"array","items":{"type":"string","enum":["photo","poll","graffiti"]}}},"required":["message"]}`),
	}, s.handleFlattenForwards)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "load_message_attachments",
		Description: "Fetch full payloads for every attachment of a message, its reply and its forwards",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"message":{"type":"string"},"kinds":{"type":"array","items":{"type":"string","enum":["photo","poll","graffiti"]}},"concurrency":{"type":"integer","minimum":1}},"required":["message"]}`),
	}, s.handleLoadMessageAttachments)
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}
}

func toolJSON(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

func (s *Server) handleGetAttachment(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Ref  string `json:"ref"`
		Load bool   `json:"load"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError(err), nil
	}

	a, err := attachment.FromReference(args.Ref, s.api)
	if err != nil {
		return toolError(err), nil
	}
	if args.Load {
		if err := a.LoadAttachmentPayload(ctx); err != nil {
			s.logger.Warn("load failed", zap.Stringer("attachment", a), zap.Error(err))
			return toolError(err), nil
		}
	}
	return toolJSON(a)
}

// messageSummary is the list_messages view of a message.
type messageSummary struct {
	ID          string    `json:"id"`
	RemoteID    int64     `json:"remote_id"`
	PeerID      int64     `json:"peer_id"`
	SenderID    int64     `json:"sender_id"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	Attachments int       `json:"attachments"`
	Forwards    int       `json:"forwards"`
	Total       int       `json:"total_attachments"`
}

func summarize(msg *models.Message) messageSummary {
	return messageSummary{
		ID:          msg.ID.String(),
		RemoteID:    msg.RemoteID,
		PeerID:      msg.PeerID,
		SenderID:    msg.SenderID,
		Text:        msg.Text,
		CreatedAt:   msg.CreatedAt,
		Attachments: len(msg.Attachments),
		Forwards:    len(msg.Forwards.Flatten()),
		Total:       len(msg.GetAllAttachments()),
	}
}

func (s *Server) handleListMessages(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		PeerID int64 `json:"peer_id"`
	}
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return toolError(err), nil
		}
	}

	messages, err := db.ListMessages(s.db, args.PeerID, s.api)
	if err != nil {
		return toolError(err), nil
	}

	summaries := make([]messageSummary, 0, len(messages))
	for _, msg := range messages {
		summaries = append(summaries, summarize(msg))
	}
	return toolJSON(summaries)
}

type messageArgs struct {
	Message         string   `json:"message"`
	Kinds           []string `json:"kinds"`
	IncludeForwards bool     `json:"include_forwards"`
	Concurrency     int      `json:"concurrency"`
}

func (s *Server) resolveMessage(req *mcp.CallToolRequest) (*models.Message, []attachment.Kind, messageArgs, error) {
	var args messageArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return nil, nil, args, err
	}
	kinds, err := attachment.ParseKinds(args.Kinds)
	if err != nil {
		return nil, nil, args, err
	}
	msg, err := db.GetMessageByID(s.db, args.Message, s.api)
	if err != nil {
		return nil, nil, args, err
	}
	return msg, kinds, args, nil
}

func (s *Server) handleMessageAttachments(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	msg, kinds, args, err := s.resolveMessage(req)
	if err != nil {
		return toolError(err), nil
	}

	if args.IncludeForwards {
		return toolJSON(orEmpty(msg.GetAllAttachments(kinds...)))
	}
	return toolJSON(orEmpty(msg.GetAttachments(kinds...)))
}

// forwardView is one flattened forward.
type forwardView struct {
	SenderID    int64                   `json:"sender_id"`
	Text        string                  `json:"text"`
	CreatedAt   time.Time               `json:"created_at"`
	Nested      int                     `json:"nested_forwards"`
	Attachments []attachment.Attachment `json:"attachments"`
}

func viewForwards(forwards []*models.Forward, kinds []attachment.Kind) []forwardView {
	views := make([]forwardView, 0, len(forwards))
	for _, f := range forwards {
		views = append(views, forwardView{
			SenderID:    f.SenderID,
			Text:        f.Text,
			CreatedAt:   f.CreatedAt,
			Nested:      f.Forwards.Len(),
			Attachments: orEmpty(f.GetAttachments(kinds...)),
		})
	}
	return views
}

func (s *Server) handleFlattenForwards(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	msg, kinds, _, err := s.resolveMessage(req)
	if err != nil {
		return toolError(err), nil
	}
	return toolJSON(viewForwards(msg.Forwards.Flatten(), kinds))
}

func (s *Server) handleLoadMessageAttachments(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	msg, kinds, args, err := s.resolveMessage(req)
	if err != nil {
		return toolError(err), nil
	}

	limit := args.Concurrency
	if limit <= 0 {
		limit = DefaultLoadConcurrency
	}

	items := msg.GetAllAttachments(kinds...)
	if err := attachment.LoadAll(ctx, items, limit); err != nil {
		s.logger.Warn("loading message attachments failed",
			zap.String("message", msg.ID.String()), zap.Error(err))
		return toolError(fmt.Errorf("load attachments: %w", err)), nil
	}
	return toolJSON(orEmpty(items))
}

func orEmpty(items []attachment.Attachment) []attachment.Attachment {
	if items == nil {
		return []attachment.Attachment{}
	}
	return items
}
