package perm

import "sort"

// AllowedAssignmentsForRole returns the assignments a role may hold. Unknown
// roles yield an empty slice, never an error: callers must treat empty as
// "nothing permitted".
func AllowedAssignmentsForRole(role string) []string {
	entry, ok := roleTable[role]
	if !ok {
		return nil
	}
	return copySorted(entry.allowedAssignments)
}

// AllowedRolesForModule returns the roles that may operate within a module.
// Unknown modules yield an empty slice.
func AllowedRolesForModule(module string) []string {
	entry, ok := moduleTable[module]
	if !ok {
		return nil
	}
	return copySorted(entry.allowedRoles)
}

// RolesCreatableBy returns every role whose can-be-created-by list contains
// the given role: the inverse of "who may create whom".
func RolesCreatableBy(role string) []string {
	var creatable []string
	for name, entry := range roleTable {
		for _, creator := range entry.createdBy {
			if creator == role {
				creatable = append(creatable, name)
				break
			}
		}
	}
	sort.Strings(creatable)
	return creatable
}

// CreatableAssignmentsForModule returns the assignments that may be created
// within a module.
func CreatableAssignmentsForModule(module string) []string {
	entry, ok := moduleTable[module]
	if !ok {
		return nil
	}
	return copySorted(entry.creatableAssignments)
}

// MainAssignmentForModule returns the assignment a module uses to gate its
// primary actions. The second return is false for unknown modules.
func MainAssignmentForModule(module string) (string, bool) {
	entry, ok := moduleTable[module]
	if !ok {
		return "", false
	}
	return entry.mainAssignment, true
}

// RoleAllowedInModule reports whether role appears in the module's
// allowed-roles list.
func RoleAllowedInModule(role, module string) bool {
	entry, ok := moduleTable[module]
	if !ok {
		return false
	}
	for _, allowed := range entry.allowedRoles {
		if allowed == role {
			return true
		}
	}
	return false
}

// RoleCanCreate reports whether creator may create users holding target.
func RoleCanCreate(creator, target string) bool {
	entry, ok := roleTable[target]
	if !ok {
		return false
	}
	for _, r := range entry.createdBy {
		if r == creator {
			return true
		}
	}
	return false
}

func copySorted(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}
