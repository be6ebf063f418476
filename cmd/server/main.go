package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/planscope/internal/config"
	"github.com/rpggio/planscope/internal/domain/activity"
	"github.com/rpggio/planscope/internal/domain/item"
	"github.com/rpggio/planscope/internal/domain/project"
	"github.com/rpggio/planscope/internal/domain/scope"
	"github.com/rpggio/planscope/internal/mcp"
	"github.com/rpggio/planscope/internal/repository"
	"github.com/rpggio/planscope/internal/sqlite"
	"github.com/rpggio/planscope/internal/transport"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run starts the server and returns the process exit code. Fatal paths
// return instead of exiting so deferred closes flush the log file and the
// database.
func run(args []string) int {
	cfg, err := config.Load(args)
	if errors.Is(err, config.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == config.TransportStdio {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer fileWriter.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		return 1
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return 1
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		return 1
	}

	projectRepo := sqlite.NewProjectRepository(db)
	itemRepo := sqlite.NewItemRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)
	principals := sqlite.NewPrincipalRepository(db)

	activitySvc := activity.NewService(activityRepo, logger)
	projectSvc := project.NewService(projectRepo, itemRepo, activitySvc, logger)
	itemSvc := item.NewService(itemRepo, projectSvc, activitySvc, logger)

	stdio := cfg.Transport.Mode == config.TransportStdio
	var defaultID scope.Identity
	if stdio || !cfg.Auth.Enabled {
		defaultID, err = ensureDefaultIdentity(context.Background(), principals, cfg.Auth.DefaultPrincipal)
		if err != nil {
			logger.Error("failed to prepare default principal", "error", err)
			return 1
		}
	}

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects: projectSvc,
			Items:    itemSvc,
			Activity: activitySvc,
		},
		Resolver:        principals,
		AuthEnabled:     cfg.Auth.Enabled,
		DefaultIdentity: defaultID,
		TransportMode:   cfg.Transport.Mode,
		Logger:          logger,
	})

	if stdio {
		if err := runStdioMode(logger, mcpServer, defaultID); err != nil {
			logger.Error("stdio server error", "error", err)
			return 1
		}
		return 0
	}

	auth := transport.AuthMiddleware(principals)
	if !cfg.Auth.Enabled {
		auth = transport.StaticIdentityMiddleware(defaultID)
	}
	router := transport.NewServer(transport.Services{
		Projects: projectSvc,
		Items:    itemSvc,
		Activity: activitySvc,
	}, transport.Options{
		Auth:   auth,
		MCP:    newMCPHandler(mcpServer),
		Logger: logger,
	})
	runHTTPMode(logger, router, cfg.Server.Host, cfg.Server.Port, cfg.Auth.Enabled)
	return 0
}

// ensureDefaultIdentity loads the principal used when requests are not
// authenticated, creating it as a global admin on first start.
func ensureDefaultIdentity(ctx context.Context, principals *sqlite.PrincipalRepository, principalID string) (scope.Identity, error) {
	id, err := principals.Get(ctx, principalID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return scope.Identity{}, err
	}

	id = scope.Identity{Principal: scope.Principal{ID: principalID, Role: scope.RoleAdmin}}
	if err := principals.Upsert(ctx, id); err != nil {
		return scope.Identity{}, err
	}
	return id, nil
}

func newMCPHandler(server *sdkmcp.Server) http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server, id scope.Identity) error {
	logger.Info("starting stdio transport", "principal_id", id.Principal.ID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run blocks until stdin closes or the context is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runHTTPMode(logger *slog.Logger, handler http.Handler, host string, port int, authEnabled bool) {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "auth", authEnabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
