// ABOUTME: MCP prompt templates
// ABOUTME: Guided workflow for describing a message's attachments

package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "describe-attachments",
		Description: "Describe every photo, poll and graffiti in a message and its forwards",
		Arguments: []*mcp.PromptArgument{
			{Name: "message", Description: "Message ID or ID prefix", Required: true},
		},
	}, s.handleDescribePrompt)
}

func (s *Server) handleDescribePrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	messageID := req.Params.Arguments["message"]

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Describe attachments of message %s", messageID),
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: fmt.Sprintf(`Please describe the attachments of message %s.

First, use the load_message_attachments tool to fetch full payloads, then describe:
1. Each photo, with its caption and the largest available size
2. Each poll, with its question, answers and vote counts
3. Each graffiti, with its dimensions

Use the flatten_forwards tool to say which forwarded message each attachment came from.`, messageID),
				},
			},
		},
	}, nil
}
