package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/planscope/internal/domain/activity"
	"github.com/rpggio/planscope/internal/domain/item"
	"github.com/rpggio/planscope/internal/domain/project"
	"github.com/rpggio/planscope/internal/domain/scope"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	List(ctx context.Context, p scope.Principal) ([]project.ProjectSummary, error)
	Get(ctx context.Context, p scope.Principal, id string) (*project.Project, error)
}

// ItemService defines item operations needed by MCP.
type ItemService interface {
	List(ctx context.Context, p scope.Principal, projectID string) ([]item.Item, error)
	UpdateState(ctx context.Context, p scope.Principal, req item.UpdateStateRequest) (*item.Item, error)
	Move(ctx context.Context, p scope.Principal, projectID, itemID, status string) (*item.Item, error)
	Tree(ctx context.Context, p scope.Principal, projectID string) ([]item.TreeNode, error)
	Search(ctx context.Context, p scope.Principal, projectID, query string, limit int) ([]item.Item, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, p scope.Principal, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects ProjectService
	Items    ItemService
	Activity ActivityService
}

// Config contains server configuration.
type Config struct {
	Services Services
	Resolver IdentityResolver
	// AuthEnabled only applies to the HTTP transport; stdio always runs
	// as DefaultIdentity.
	AuthEnabled     bool
	DefaultIdentity scope.Identity
	TransportMode   string // "stdio" or "http"
	Logger          *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "planscope",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	// Middleware added last runs first, so identity is resolved before
	// traffic is logged.
	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	if cfg.TransportMode == "http" && cfg.AuthEnabled {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	} else {
		server.AddReceivingMiddleware(staticIdentityMiddleware(cfg.DefaultIdentity))
	}
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	registerTools(server, cfg.Services)

	return server
}
