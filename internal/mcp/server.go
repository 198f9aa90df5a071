// ABOUTME: MCP server exposing archived messages and their attachments
// ABOUTME: Runs over stdio; tools, resources and prompts register on creation

package mcp

import (
	"context"
	"database/sql"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/harper/vkattach/internal/attachment"
	"github.com/harper/vkattach/internal/logging"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// Server serves the archive over MCP.
type Server struct {
	mcp    *mcp.Server
	db     *sql.DB
	api    attachment.API
	logger *zap.Logger
}

// NewServer creates a server over an initialized archive. api may be nil,
// in which case attachments can be read but not filled.
func NewServer(db *sql.DB, api attachment.API, logger *zap.Logger) (*Server, error) {
	if db == nil {
		return nil, errors.New("database connection is required")
	}

	s := &Server{
		mcp:    mcp.NewServer(&mcp.Implementation{Name: "vkattach", Version: Version}, nil),
		db:     db,
		api:    api,
		logger: logging.OrNop(logger),
	}
	s.registerTools()
	s.registerResources()
	s.registerPrompts()
	return s, nil
}

// Serve runs the server on stdin/stdout until ctx is done or the client
// disconnects.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp server starting")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}
