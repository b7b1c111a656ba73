// Package policy is the pure permission engine: read-side visibility checks
// and the write-side visibility clamp. No IO, no side effects.
package policy

import "github.com/vhqtran/campushare/model"

// CanView reports whether the actor may view or download the file.
// Admins and owners are always allowed; everyone else is resolved from the
// file's visibility tier. Unknown tiers deny.
func CanView(actor *model.User, file *model.File) bool {
	if actor.IsAdmin() {
		return true
	}
	if file.OwnerID == actor.ID {
		return true
	}
	switch file.Visibility {
	case model.VisibilityPublic:
		return true
	case model.VisibilityStaffTeacher:
		return actor.IsStaff() || actor.IsTeacher()
	case model.VisibilityTeacherOnly:
		return actor.IsTeacher()
	case model.VisibilityPrivate:
		return false
	}
	return false
}

// ClampVisibility applies the role-specific write-side policy to a requested
// upload visibility. Students may only create teacher_only files; teachers
// may create teacher_only or public. Anything outside the allowed set is
// downgraded to teacher_only and reported so the caller can warn the user.
// Staff and admin requests pass through unchanged.
func ClampVisibility(role string, requested string) (effective string, downgraded bool) {
	switch role {
	case model.RoleStudent:
		if requested != model.VisibilityTeacherOnly {
			return model.VisibilityTeacherOnly, true
		}
		return model.VisibilityTeacherOnly, false
	case model.RoleTeacher:
		if requested == model.VisibilityTeacherOnly || requested == model.VisibilityPublic {
			return requested, false
		}
		return model.VisibilityTeacherOnly, true
	default:
		return requested, false
	}
}
