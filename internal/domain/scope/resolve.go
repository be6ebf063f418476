package scope

import "errors"

// ErrAccessDenied is returned when a scoped lookup finds nothing. It is the
// same whether the record is missing or belongs to someone else.
var ErrAccessDenied = errors.New("access denied")

// ResolveProjectScope returns the filter restricting which projects the
// principal may see or touch.
//
// A tenant admin sees every project of the tenant; a global admin sees
// everything. Users see projects they created or are members of, within
// their tenant when they have one.
func ResolveProjectScope(p Principal) Predicate {
	if p.IsAdmin() {
		if p.HasTenant() {
			return Predicate{TenantID: p.TenantID}
		}
		return Predicate{}
	}

	return Predicate{
		TenantID: p.TenantID,
		Or:       ownershipBranches(p.ID),
	}
}

// ResolveItemScope returns the filter restricting which project items the
// principal may see or touch. A nil result means no filter.
//
// For users the owning project must satisfy ResolveProjectScope; the flat
// tenant field on the item is only a fast path.
func ResolveItemScope(p Principal) *Predicate {
	if p.IsAdmin() {
		if p.HasTenant() {
			return &Predicate{TenantID: p.TenantID}
		}
		return nil
	}

	return &Predicate{
		TenantID: p.TenantID,
		Project:  &Relation{Is: ResolveProjectScope(p)},
	}
}

func ownershipBranches(userID string) []Predicate {
	return []Predicate{
		{CreatedByID: userID},
		{Members: &MemberMatch{Some: MemberFilter{UserID: userID}}},
	}
}
