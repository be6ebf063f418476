// Package testserver runs the full HTTP and MCP stack over a temporary
// SQLite database for end-to-end tests.
package testserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/planscope/internal/domain/activity"
	"github.com/rpggio/planscope/internal/domain/item"
	"github.com/rpggio/planscope/internal/domain/project"
	"github.com/rpggio/planscope/internal/domain/scope"
	"github.com/rpggio/planscope/internal/mcp"
	"github.com/rpggio/planscope/internal/sqlite"
	"github.com/rpggio/planscope/internal/transport"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server     *httptest.Server
	DB         *sqlite.DB
	Principals *sqlite.PrincipalRepository
	Projects   *project.Service
	Items      *item.Service
	Activity   *activity.Service
}

// New starts a server with authentication enabled. Principals and tokens
// are added with AddPrincipal.
func New(t *testing.T) *TestServer {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "planscope.db"))
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	principals := sqlite.NewPrincipalRepository(db)
	itemRepo := sqlite.NewItemRepository(db)

	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), nil)
	projectSvc := project.NewService(sqlite.NewProjectRepository(db), itemRepo, activitySvc, nil)
	itemSvc := item.NewService(itemRepo, projectSvc, activitySvc, nil)

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      mcp.Services{Projects: projectSvc, Items: itemSvc, Activity: activitySvc},
		Resolver:      principals,
		AuthEnabled:   true,
		TransportMode: "http",
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{},
	)

	router := transport.NewServer(
		transport.Services{Projects: projectSvc, Items: itemSvc, Activity: activitySvc},
		transport.Options{Auth: transport.AuthMiddleware(principals), MCP: mcpHandler},
	)
	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server:     server,
		DB:         db,
		Principals: principals,
		Projects:   projectSvc,
		Items:      itemSvc,
		Activity:   activitySvc,
	}
}

// AddPrincipal stores id and returns it after registering token as its API
// key.
func (ts *TestServer) AddPrincipal(t *testing.T, id scope.Identity, token string) scope.Identity {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, ts.Principals.Upsert(ctx, id))
	require.NoError(t, ts.Principals.AddAPIKey(ctx, id.Principal.ID, token, "test"))
	return id
}
