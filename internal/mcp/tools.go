package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/planscope/internal/domain/activity"
	"github.com/rpggio/planscope/internal/domain/item"
	"github.com/rpggio/planscope/internal/domain/scope"
)

// Tool outputs are typed as any so the SDK emits no output schema; results
// carry timestamps that do not round-trip through inferred schemas.

type toolset struct {
	services Services
}

func registerTools(server *sdkmcp.Server, services Services) {
	ts := &toolset{services: services}

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List the projects visible to the caller with progress and item counts",
	}, ts.listProjects)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get a project with its members and progress",
	}, ts.getProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_items",
		Description: "List the items of a project in creation order; use get_wbs_tree for the WBS hierarchy",
	}, ts.listItems)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_wbs_tree",
		Description: "Get the work breakdown structure of a project as a forest",
	}, ts.getTree)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_item_state",
		Description: "Change the status and/or metadata of an item; status and progress are reconciled (requires edit_project)",
	}, ts.updateItemState)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "move_item",
		Description: "Move an item to another board column",
	}, ts.moveItem)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "search_items",
		Description: "Full-text search over the items of a project",
	}, ts.searchItems)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_activity",
		Description: "List recent activity for a project, newest first",
	}, ts.listActivity)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "check_feature",
		Description: "Report whether the caller may use a feature",
	}, ts.checkFeature)
}

func (ts *toolset) listProjects(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListProjectsParams) (*sdkmcp.CallToolResult, any, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, nil, err
	}
	projects, err := ts.services.Projects.List(ctx, id.Principal)
	if err != nil {
		return nil, nil, MapError(err)
	}
	return nil, ProjectsResponse{Projects: projects}, nil
}

func (ts *toolset) getProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectParams) (*sdkmcp.CallToolResult, any, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, nil, err
	}
	proj, err := ts.services.Projects.Get(ctx, id.Principal, in.ProjectID)
	if err != nil {
		return nil, nil, MapError(err)
	}
	return nil, proj, nil
}

func (ts *toolset) listItems(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectParams) (*sdkmcp.CallToolResult, any, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, nil, err
	}
	items, err := ts.services.Items.List(ctx, id.Principal, in.ProjectID)
	if err != nil {
		return nil, nil, MapError(err)
	}
	return nil, ItemsResponse{Items: items}, nil
}

func (ts *toolset) getTree(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectParams) (*sdkmcp.CallToolResult, any, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, nil, err
	}
	roots, err := ts.services.Items.Tree(ctx, id.Principal, in.ProjectID)
	if err != nil {
		return nil, nil, MapError(err)
	}
	return nil, TreeResponse{ProjectID: in.ProjectID, Roots: roots}, nil
}

func (ts *toolset) updateItemState(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateItemStateParams) (*sdkmcp.CallToolResult, any, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !id.Can(scope.FeatureEditProject) {
		return nil, nil, MapError(scope.ErrAccessDenied)
	}
	it, err := ts.services.Items.UpdateState(ctx, id.Principal, item.UpdateStateRequest{
		ProjectID: in.ProjectID,
		ItemID:    in.ItemID,
		Status:    in.Status,
		Metadata:  in.Metadata,
		Version:   in.Version,
	})
	if err != nil {
		return nil, nil, MapError(err)
	}
	return nil, it, nil
}

func (ts *toolset) moveItem(ctx context.Context, _ *sdkmcp.CallToolRequest, in MoveItemParams) (*sdkmcp.CallToolResult, any, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, nil, err
	}
	it, err := ts.services.Items.Move(ctx, id.Principal, in.ProjectID, in.ItemID, in.Status)
	if err != nil {
		return nil, nil, MapError(err)
	}
	return nil, it, nil
}

func (ts *toolset) searchItems(ctx context.Context, _ *sdkmcp.CallToolRequest, in SearchItemsParams) (*sdkmcp.CallToolResult, any, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, nil, err
	}
	items, err := ts.services.Items.Search(ctx, id.Principal, in.ProjectID, in.Query, in.Limit)
	if err != nil {
		return nil, nil, MapError(err)
	}
	return nil, ItemsResponse{Items: items}, nil
}

func (ts *toolset) listActivity(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListActivityParams) (*sdkmcp.CallToolResult, any, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, nil, err
	}
	entries, err := ts.services.Activity.GetRecentActivity(ctx, id.Principal, activity.ListActivityOptions{
		ProjectID: in.ProjectID,
		Limit:     in.Limit,
		Offset:    in.Offset,
	})
	if err != nil {
		return nil, nil, MapError(err)
	}
	return nil, ActivityResponse{Activity: entries}, nil
}

func (ts *toolset) checkFeature(ctx context.Context, _ *sdkmcp.CallToolRequest, in CheckFeatureParams) (*sdkmcp.CallToolResult, any, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, nil, err
	}
	return nil, FeatureResponse{Feature: in.Feature, Allowed: id.Can(in.Feature)}, nil
}
