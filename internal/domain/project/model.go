package project

import "time"

// Project groups work items. TenantID is empty for projects that belong to
// no tenant.
type Project struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedByID string    `json:"created_by_id"`
	Members     []string  `json:"members"`
	Progress    float64   `json:"progress"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProjectSummary is a lightweight representation for listing
type ProjectSummary struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedByID string    `json:"created_by_id"`
	Progress    float64   `json:"progress"`
	ItemCount   int       `json:"item_count"`
	DoneItems   int       `json:"done_items"`
	CreatedAt   time.Time `json:"created_at"`
}
