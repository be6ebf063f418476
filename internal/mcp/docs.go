package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `planscope tracks project schedules as Projects → Items arranged by WBS code.

Core concepts:
- Project: belongs to a tenant, has a creator and members. Progress is the mean of its items' percent complete.
- Item: one schedule row with a task name, an optional WBS code ("1.2.3"), a status and free-form metadata.
- Status is one of NotStarted, InProgress, OnHold, Done. Labels such as "Em andamento" or "blocked" are normalized.
- metadata.progress is kept consistent with status: an item is Done exactly when its progress is 1.

Workflow:
1) list_projects, then get_project or get_wbs_tree to orient.
2) search_items / list_items to find an item.
3) update_item_state or move_item to change it. Pass the item version to avoid overwriting concurrent edits.
4) check_feature before offering edits the caller may not be allowed to make.

Errors carry a code: ACCESS_DENIED is returned for both missing and foreign resources.

Docs:
- planscope://docs/status-rules
- planscope://docs/wbs
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "planscope://docs/status-rules",
		Name:        "status_rules",
		Title:       "Status and progress rules",
		Description: "How status labels are normalized and how status and progress are reconciled on update.",
		Content: `# Status and progress

## Normalization

Status labels are matched case-insensitively against known aliases in English and
Portuguese, then by substring ("concl", "done" → Done; "andamento", "progress" →
InProgress; "wait", "atras", "block", "hold" → OnHold). Anything else is NotStarted.

Progress accepts fractions (0.4), percentages (40) and strings ("40%", "0,4").
Values are clamped to [0, 1].

## Reconciliation

When status is sent:
- Done forces progress to 1.
- NotStarted without progress resets progress to 0.
- Leaving a completed item without progress resets progress to 0.
- Progress sent alongside a status other than Done is kept, capped at 0.99.

When only progress is sent:
- 1 completes the item.
- 0 reopens a Done item as NotStarted.
- A partial value promotes NotStarted or Done items to InProgress.

Other metadata keys are merged and preserved.
`,
	},
	{
		URI:         "planscope://docs/wbs",
		Name:        "wbs",
		Title:       "WBS tree",
		Description: "How the work breakdown tree is built from flat items.",
		Content: `# WBS tree

Items are ordered by WBS code with numeric segments compared as numbers
("1.2" before "1.10"). Items without a code use the leading number of the task
name, if any, or become depth-0 roots.

Each item attaches under the nearest preceding item with a shorter code.
Items whose ancestors are missing become roots. No placeholder nodes are
created. Items without a task name are omitted.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
