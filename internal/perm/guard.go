package perm

import (
	"strings"

	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

// Authorize gates an action on a module by the caller's role and grants.
//
// Rules, in order:
//   - blank or unrecognized module names fail with a validation error;
//   - the top administrative role bypasses every further check;
//   - the caller must hold a grant for the module's main assignment with
//     the action's boolean set;
//   - when targetRole is non-empty the action touches another role-bearing
//     entity, which must be visible to the module.
//
// The guard is pure: it raises the typed failure and nothing else.
func Authorize(module string, caller shared.Principal, action Action, targetRole string) error {
	module = strings.ToUpper(strings.TrimSpace(module))
	if module == "" {
		return shared.NewValidation(shared.KeyModuleRequired)
	}
	if !KnownModule(module) {
		return shared.NewValidation(shared.KeyModuleUnknown)
	}
	switch action {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete:
	default:
		// A caller passed an action tag the table has no mapping for. That is
		// a programming error, not a user-correctable one.
		return shared.NewInternal(shared.KeyNotWired, nil)
	}

	if caller.Role != RoleAdmin {
		main, _ := MainAssignmentForModule(module)
		grant, ok := caller.GrantFor(main)
		if !ok || !grantAllows(grant, action) {
			return shared.NewPermission(shared.KeyActionForbidden)
		}
	}

	if targetRole != "" && caller.Role != RoleAdmin {
		if !RoleAllowedInModule(targetRole, module) {
			return shared.NewPermission(shared.KeyRoleNotVisible)
		}
	}

	return nil
}

// SameTenant reports whether a row owned by clientID is visible to the
// caller. The top administrative role and platform-level callers without a
// client see every tenant; everyone else only their own.
func SameTenant(caller shared.Principal, clientID string) bool {
	if caller.Role == RoleAdmin || caller.ClientID == "" {
		return true
	}
	return caller.ClientID == clientID
}

func grantAllows(grant shared.Grant, action Action) bool {
	grant = grant.Normalize()
	switch action {
	case ActionCreate:
		return grant.Create
	case ActionRead:
		return grant.Read
	case ActionUpdate:
		return grant.Update
	case ActionDelete:
		return grant.Delete
	default:
		return false
	}
}
