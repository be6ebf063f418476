package sqlite

import (
	"strings"

	"github.com/rpggio/planscope/internal/domain/scope"
)

// matchAll is the condition compiled for an empty predicate.
const matchAll = "1 = 1"

// matchNone is compiled for ownership filters that name nobody.
const matchNone = "0 = 1"

// compileProjectScope turns a project predicate into a parameterized
// condition over the projects table aliased as alias.
func compileProjectScope(pred scope.Predicate, alias string) (string, []any) {
	return compilePredicate(pred, alias, "")
}

// compileItemScope turns an item predicate into a parameterized condition
// over the project_items table aliased as alias. A nil predicate matches
// every item.
func compileItemScope(pred *scope.Predicate, alias string) (string, []any) {
	if pred == nil {
		return matchAll, nil
	}
	return compilePredicate(*pred, alias, alias+"_p")
}

// compilePredicate renders every constrained field as one AND-ed condition.
// It fails closed: a disjunction branch or member filter without a user ID
// matches no rows. Membership and ownership refer to projects, so they are
// only meaningful when alias is a projects row; the project relation opens
// a subquery under relAlias.
func compilePredicate(pred scope.Predicate, alias, relAlias string) (string, []any) {
	var conds []string
	var args []any

	if pred.TenantID != "" {
		conds = append(conds, alias+".tenant_id = ?")
		args = append(args, pred.TenantID)
	}
	if pred.CreatedByID != "" {
		conds = append(conds, alias+".created_by_id = ?")
		args = append(args, pred.CreatedByID)
	}
	if pred.Members != nil {
		if pred.Members.Some.UserID == "" {
			return matchNone, nil
		}
		conds = append(conds, "EXISTS (SELECT 1 FROM project_members pm WHERE pm.project_id = "+
			alias+".id AND pm.user_id = ?)")
		args = append(args, pred.Members.Some.UserID)
	}
	if len(pred.Or) > 0 {
		branches := make([]string, 0, len(pred.Or))
		for _, branch := range pred.Or {
			// An empty branch comes from an ownership field with no user
			// ID. Letting it match everything would widen the whole
			// disjunction, so it matches nothing.
			if branch.IsEmpty() {
				branches = append(branches, "("+matchNone+")")
				continue
			}
			cond, branchArgs := compilePredicate(branch, alias, relAlias)
			branches = append(branches, "("+cond+")")
			args = append(args, branchArgs...)
		}
		conds = append(conds, "("+strings.Join(branches, " OR ")+")")
	}
	if pred.Project != nil {
		cond, relArgs := compilePredicate(pred.Project.Is, relAlias, relAlias+"_p")
		conds = append(conds, "EXISTS (SELECT 1 FROM projects "+relAlias+" WHERE "+
			relAlias+".id = "+alias+".project_id AND "+cond+")")
		args = append(args, relArgs...)
	}

	if len(conds) == 0 {
		return matchAll, nil
	}
	return strings.Join(conds, " AND "), args
}
