package item

import (
	"time"

	"github.com/rpggio/planscope/internal/domain/taskstate"
)

// Item is one task of a project plan. TenantID mirrors the owning project.
type Item struct {
	ID          string             `json:"id"`
	ProjectID   string             `json:"project_id"`
	TenantID    string             `json:"tenant_id,omitempty"`
	Task        string             `json:"task"`
	WBSCode     string             `json:"wbs_code,omitempty"`
	Status      taskstate.Status   `json:"status"`
	Metadata    taskstate.Metadata `json:"metadata"`
	ActualStart *time.Time         `json:"actual_start,omitempty"`
	ActualEnd   *time.Time         `json:"actual_end,omitempty"`
	Version     int64              `json:"version"`
	CreatedAt   time.Time          `json:"created_at"`
	ModifiedAt  time.Time          `json:"modified_at"`
}

// State returns the part of the item the reconciler works on.
func (it *Item) State() taskstate.State {
	return taskstate.State{Status: it.Status, Metadata: it.Metadata}
}

// Percent returns the completion percentage shown for the item.
func (it *Item) Percent() float64 {
	return taskstate.ItemPercent(it.Status, it.Metadata)
}

// TreeNode is an item placed in the work breakdown structure.
type TreeNode struct {
	ID       string           `json:"id"`
	WBSCode  string           `json:"wbs_code,omitempty"`
	Task     string           `json:"task"`
	Depth    int              `json:"depth"`
	Status   taskstate.Status `json:"status"`
	Percent  float64          `json:"percent"`
	Children []TreeNode       `json:"children"`
}
