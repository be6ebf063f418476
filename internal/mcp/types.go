package mcp

import (
	"github.com/rpggio/planscope/internal/domain/activity"
	"github.com/rpggio/planscope/internal/domain/item"
	"github.com/rpggio/planscope/internal/domain/project"
	"github.com/rpggio/planscope/internal/domain/taskstate"
)

type ListProjectsParams struct{}

type ProjectParams struct {
	ProjectID string `json:"project_id" jsonschema:"project identifier"`
}

type UpdateItemStateParams struct {
	ProjectID string             `json:"project_id" jsonschema:"project identifier"`
	ItemID    string             `json:"item_id" jsonschema:"item identifier"`
	Status    *string            `json:"status,omitempty" jsonschema:"new status; free-form labels are normalized"`
	Metadata  taskstate.Metadata `json:"metadata,omitempty" jsonschema:"metadata keys to merge; progress may be a fraction, a percentage or a string like 40%"`
	Version   *int64             `json:"version,omitempty" jsonschema:"expected item version for optimistic locking"`
}

type MoveItemParams struct {
	ProjectID string `json:"project_id" jsonschema:"project identifier"`
	ItemID    string `json:"item_id" jsonschema:"item identifier"`
	Status    string `json:"status" jsonschema:"target board column"`
}

type SearchItemsParams struct {
	ProjectID string `json:"project_id" jsonschema:"project identifier"`
	Query     string `json:"query" jsonschema:"search text matched against task names and WBS codes"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of results"`
}

type ListActivityParams struct {
	ProjectID string `json:"project_id" jsonschema:"project identifier"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of entries"`
	Offset    int    `json:"offset,omitempty" jsonschema:"entries to skip"`
}

type CheckFeatureParams struct {
	Feature string `json:"feature" jsonschema:"feature identifier such as edit_project"`
}

type ProjectsResponse struct {
	Projects []project.ProjectSummary `json:"projects"`
}

type ItemsResponse struct {
	Items []item.Item `json:"items"`
}

type TreeResponse struct {
	ProjectID string          `json:"project_id"`
	Roots     []item.TreeNode `json:"roots"`
}

type ActivityResponse struct {
	Activity []activity.ActivityEntry `json:"activity"`
}

type FeatureResponse struct {
	Feature string `json:"feature"`
	Allowed bool   `json:"allowed"`
}
