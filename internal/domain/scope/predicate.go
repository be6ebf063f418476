package scope

// Predicate is a declarative filter over project and item records. It is
// data, not code: callers translate it into their query language and must
// apply it in the same statement that reads or mutates the rows.
//
// The zero value is the empty predicate and matches everything. Fields
// that are set are ANDed together; Or holds a disjunction that must have
// at least one matching branch.
type Predicate struct {
	TenantID    string       `json:"tenantId,omitempty"`
	CreatedByID string       `json:"createdById,omitempty"`
	Members     *MemberMatch `json:"members,omitempty"`
	Or          []Predicate  `json:"OR,omitempty"`
	Project     *Relation    `json:"project,omitempty"`
}

// MemberMatch requires some project member to satisfy the filter.
type MemberMatch struct {
	Some MemberFilter `json:"some"`
}

// MemberFilter selects a membership row by user.
type MemberFilter struct {
	UserID string `json:"userId"`
}

// Relation constrains the owning project of an item.
type Relation struct {
	Is Predicate `json:"is"`
}

// IsEmpty reports whether the predicate places no constraint at all.
func (p Predicate) IsEmpty() bool {
	return p.TenantID == "" &&
		p.CreatedByID == "" &&
		p.Members == nil &&
		len(p.Or) == 0 &&
		p.Project == nil
}

// Equal reports whether two predicates are structurally identical.
func (p Predicate) Equal(other Predicate) bool {
	if p.TenantID != other.TenantID || p.CreatedByID != other.CreatedByID {
		return false
	}
	if (p.Members == nil) != (other.Members == nil) {
		return false
	}
	if p.Members != nil && *p.Members != *other.Members {
		return false
	}
	if len(p.Or) != len(other.Or) {
		return false
	}
	for i := range p.Or {
		if !p.Or[i].Equal(other.Or[i]) {
			return false
		}
	}
	if (p.Project == nil) != (other.Project == nil) {
		return false
	}
	if p.Project != nil {
		return p.Project.Is.Equal(other.Project.Is)
	}
	return true
}
