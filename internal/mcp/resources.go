// ABOUTME: MCP resource implementations
// ABOUTME: Read-only views of the archive and of forward trees

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harper/vkattach/internal/attachment"
	"github.com/harper/vkattach/internal/db"
	"github.com/harper/vkattach/internal/models"
)

const messagesURI = "vkattach://messages"

func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		URI:         messagesURI,
		Name:        "Archived Messages",
		Description: "Every archived message with attachment counts",
		MIMEType:    "application/json",
	}, s.handleMessagesResource)

	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: messagesURI + "/{message}/forwards",
		Name:        "Message Forwards",
		Description: "The forward tree of a message with its attachments",
		MIMEType:    "text/markdown",
	}, s.handleForwardsResource)
}

func (s *Server) handleMessagesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	messages, err := db.ListMessages(s.db, 0, s.api)
	if err != nil {
		return nil, err
	}

	summaries := make([]messageSummary, 0, len(messages))
	for _, msg := range messages {
		summaries = append(summaries, summarize(msg))
	}

	data, _ := json.MarshalIndent(summaries, "", "  ")
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      messagesURI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleForwardsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	// vkattach://messages/{message}/forwards
	parts := strings.Split(strings.TrimPrefix(req.Params.URI, messagesURI+"/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "forwards" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	msg, err := db.GetMessageByID(s.db, parts[0], s.api)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     renderForwards(msg),
		}},
	}, nil
}

// renderForwards writes the forward tree as nested markdown lists.
func renderForwards(msg *models.Message) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Forwards of %s\n\n", msg.ID.String()[:8]))
	if msg.Forwards.Len() == 0 {
		sb.WriteString("*No forwarded messages*\n")
		return sb.String()
	}
	writeForwards(&sb, msg.Forwards.Items(), 0)
	return sb.String()
}

func writeForwards(sb *strings.Builder, forwards []*models.Forward, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, f := range forwards {
		text := f.Text
		if text == "" {
			text = "(no text)"
		}
		sb.WriteString(fmt.Sprintf("%s- **%d**: %s\n", indent, f.SenderID, text))
		for _, a := range f.GetAttachments() {
			sb.WriteString(fmt.Sprintf("%s  - %s %s\n", indent, fillMark(a), a))
		}
		writeForwards(sb, f.Forwards.Items(), depth+1)
	}
}

func fillMark(a attachment.Attachment) string {
	if a.IsFilled() {
		return "[full]"
	}
	return "[partial]"
}
