// ABOUTME: MCP server for tigercub integration with AI agents.
// ABOUTME: Provides tools, resources, and prompts for child profiles and their dashboards.

package mcp

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harper/tigercub/internal/auth"
	"github.com/harper/tigercub/internal/catalog"
	"github.com/harper/tigercub/internal/logging"
	"github.com/harper/tigercub/internal/models"
	"github.com/harper/tigercub/internal/repo"
)

// Identity reports who the server acts for.
type Identity interface {
	CurrentUser() *auth.User
}

type Server struct {
	server  *mcp.Server
	repos   *repo.Repositories
	catalog *catalog.Catalog
	who     Identity
	now     func() time.Time
	log     *log.Logger
}

func NewServer(repos *repo.Repositories, cat *catalog.Catalog, who Identity, logger *log.Logger) *Server {
	s := &Server{
		repos:   repos,
		catalog: cat,
		who:     who,
		now:     time.Now,
		log:     logging.OrDiscard(logger),
	}

	s.server = mcp.NewServer(
		&mcp.Implementation{
			Name:    "tigercub",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			HasTools:     true,
			HasResources: true,
			HasPrompts:   true,
		},
	)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

func (s *Server) Serve(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) uid() (string, error) {
	u := s.who.CurrentUser()
	if u == nil {
		return "", models.ErrNotAuthenticated
	}
	return u.UID, nil
}
