package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/planscope/internal/domain/activity"
	"github.com/rpggio/planscope/internal/domain/item"
	"github.com/rpggio/planscope/internal/domain/project"
	"github.com/rpggio/planscope/internal/domain/scope"
	"github.com/rpggio/planscope/internal/domain/taskstate"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("malformed request")

// ProjectService defines project operations exposed over HTTP.
type ProjectService interface {
	Create(ctx context.Context, p scope.Principal, req project.CreateRequest) (*project.Project, error)
	Get(ctx context.Context, p scope.Principal, id string) (*project.Project, error)
	List(ctx context.Context, p scope.Principal) ([]project.ProjectSummary, error)
	AddMember(ctx context.Context, p scope.Principal, projectID, userID string) error
}

// ItemService defines item operations exposed over HTTP.
type ItemService interface {
	Create(ctx context.Context, p scope.Principal, req item.CreateRequest) (*item.Item, error)
	List(ctx context.Context, p scope.Principal, projectID string) ([]item.Item, error)
	UpdateState(ctx context.Context, p scope.Principal, req item.UpdateStateRequest) (*item.Item, error)
	Move(ctx context.Context, p scope.Principal, projectID, itemID, status string) (*item.Item, error)
	Delete(ctx context.Context, p scope.Principal, projectID, itemID string) error
	Tree(ctx context.Context, p scope.Principal, projectID string) ([]item.TreeNode, error)
	Search(ctx context.Context, p scope.Principal, projectID, query string, limit int) ([]item.Item, error)
}

// ActivityService defines activity operations exposed over HTTP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, p scope.Principal, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains the domain services behind the HTTP API.
type Services struct {
	Projects ProjectService
	Items    ItemService
	Activity ActivityService
}

// Options configures the router.
type Options struct {
	// Auth establishes the request identity; AuthMiddleware or
	// StaticIdentityMiddleware.
	Auth func(http.Handler) http.Handler
	// MCP, when set, is mounted at /mcp. It authenticates on its own.
	MCP    http.Handler
	Logger *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	services Services
	logger   *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(services Services, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{services: services, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/health", srv.handleHealth)

	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
		r.Handle("/mcp/*", opts.MCP)
	}

	r.Group(func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth)
		}

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", srv.listProjects)
			r.With(RequireFeature(scope.FeatureAddProjects)).Post("/", srv.createProject)

			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", srv.getProject)
				r.With(RequireFeature(scope.FeatureEditProject)).Post("/members", srv.addMember)
				r.Get("/items", srv.listItems)
				r.With(RequireFeature(scope.FeatureEditProject)).Post("/items", srv.createItem)
				r.With(RequireFeature(scope.FeatureEditProject)).Patch("/items/{itemID}", srv.updateItem)
				r.Post("/items/{itemID}/move", srv.moveItem)
				r.With(RequireFeature(scope.FeatureEditProject)).Delete("/items/{itemID}", srv.deleteItem)
				r.Get("/wbs", srv.getTree)
				r.Get("/search", srv.searchItems)
				r.Get("/activity", srv.listActivity)
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	projects, err := s.services.Projects.List(r.Context(), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

type createProjectBody struct {
	TenantID    string `json:"tenant_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body createProjectBody
	if err := decodeBody(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	proj, err := s.services.Projects.Create(r.Context(), p, project.CreateRequest{
		TenantID:    body.TenantID,
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, proj)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	proj, err := s.services.Projects.Get(r.Context(), p, chi.URLParam(r, "projectID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, proj)
}

func (s *Server) addMember(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body struct {
		UserID string `json:"user_id"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	projectID := chi.URLParam(r, "projectID")
	if err := s.services.Projects.AddMember(r.Context(), p, projectID, body.UserID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	items, err := s.services.Items.List(r.Context(), p, chi.URLParam(r, "projectID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type createItemBody struct {
	Task     string             `json:"task"`
	WBSCode  string             `json:"wbs_code"`
	Status   string             `json:"status"`
	Metadata taskstate.Metadata `json:"metadata"`
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body createItemBody
	if err := decodeBody(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	it, err := s.services.Items.Create(r.Context(), p, item.CreateRequest{
		ProjectID: chi.URLParam(r, "projectID"),
		Task:      body.Task,
		WBSCode:   body.WBSCode,
		Status:    body.Status,
		Metadata:  body.Metadata,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, it)
}

type updateItemBody struct {
	Status   *string            `json:"status"`
	Metadata taskstate.Metadata `json:"metadata"`
	Version  *int64             `json:"version"`
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body updateItemBody
	if err := decodeBody(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	it, err := s.services.Items.UpdateState(r.Context(), p, item.UpdateStateRequest{
		ProjectID: chi.URLParam(r, "projectID"),
		ItemID:    chi.URLParam(r, "itemID"),
		Status:    body.Status,
		Metadata:  body.Metadata,
		Version:   body.Version,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, it)
}

func (s *Server) moveItem(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	it, err := s.services.Items.Move(r.Context(), p,
		chi.URLParam(r, "projectID"), chi.URLParam(r, "itemID"), body.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, it)
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	err = s.services.Items.Delete(r.Context(), p, chi.URLParam(r, "projectID"), chi.URLParam(r, "itemID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getTree(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	roots, err := s.services.Items.Tree(r.Context(), p, chi.URLParam(r, "projectID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"roots": roots})
}

func (s *Server) searchItems(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	limit, err := intQuery(r, "limit")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	items, err := s.services.Items.Search(r.Context(), p,
		chi.URLParam(r, "projectID"), r.URL.Query().Get("q"), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) listActivity(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	limit, err := intQuery(r, "limit")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	offset, err := intQuery(r, "offset")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	entries, err := s.services.Activity.GetRecentActivity(r.Context(), p, activity.ListActivityOptions{
		ProjectID: chi.URLParam(r, "projectID"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"activity": entries})
}

// fail writes the error response for err, logging unexpected errors.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, apiErr, ok := MapError(err)
	if !ok {
		s.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}
	WriteError(w, status, apiErr.Code, apiErr.Message)
}

// principal returns the request principal. A request without one, or
// with an empty principal ID, is unauthorized: an empty ID cannot be
// scoped.
func principal(r *http.Request) (scope.Principal, error) {
	p, ok := scope.FromContext(r.Context())
	if !ok || p.ID == "" {
		return scope.Principal{}, ErrUnauthorized
	}
	return p, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func intQuery(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", errBadRequest, key)
	}
	return v, nil
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.DebugContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
