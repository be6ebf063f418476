package scope

// Feature identifiers stored as keys of a role's permission map.
const (
	FeatureAccessSystem       = "access_system"
	FeatureAddProjects        = "add_projects"
	FeatureRemoveProjects     = "remove_projects"
	FeatureEditProject        = "edit_project"
	FeatureChangeProjectSetup = "change_project_setup"
	FeatureManagePeople       = "manage_people"
	FeatureViewDocuments      = "view_documents"
	FeatureAdminSystem        = "admin_system"
)

// CanAccessFeature reports whether a role with the given permission map may
// use a feature. Admins always may. For everyone else the map must hold the
// boolean true under featureID; a missing map, a missing key or any other
// value is a denial.
func CanAccessFeature(role Role, permissions map[string]any, featureID string) bool {
	if role == RoleAdmin {
		return true
	}
	allowed, ok := permissions[featureID].(bool)
	return ok && allowed
}
