package policy

import (
	"testing"

	"github.com/vhqtran/campushare/model"
)

func TestCanView(t *testing.T) {
	owner := &model.User{ID: 1, Role: model.RoleStudent}
	student := &model.User{ID: 2, Role: model.RoleStudent}
	teacher := &model.User{ID: 3, Role: model.RoleTeacher}
	staff := &model.User{ID: 4, Role: model.RoleStaff}
	admin := &model.User{ID: 5, Role: model.RoleAdmin}

	tests := []struct {
		name       string
		visibility string
		actor      *model.User
		want       bool
	}{
		{"public to student", model.VisibilityPublic, student, true},
		{"public to teacher", model.VisibilityPublic, teacher, true},
		{"staff_teacher to student", model.VisibilityStaffTeacher, student, false},
		{"staff_teacher to staff", model.VisibilityStaffTeacher, staff, true},
		{"staff_teacher to teacher", model.VisibilityStaffTeacher, teacher, true},
		{"teacher_only to student", model.VisibilityTeacherOnly, student, false},
		{"teacher_only to staff", model.VisibilityTeacherOnly, staff, false},
		{"teacher_only to teacher", model.VisibilityTeacherOnly, teacher, true},
		{"private to teacher", model.VisibilityPrivate, teacher, false},
		{"private to owner", model.VisibilityPrivate, owner, true},
		{"private to admin", model.VisibilityPrivate, admin, true},
		{"unknown tier denies", "secret", teacher, false},
		{"unknown tier allows admin", "secret", admin, true},
		{"unknown tier allows owner", "secret", owner, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := &model.File{OwnerID: owner.ID, Visibility: tt.visibility}
			if got := CanView(tt.actor, file); got != tt.want {
				t.Errorf("CanView(%s, %s) = %v, want %v", tt.actor.Role, tt.visibility, got, tt.want)
			}
		})
	}
}

func TestClampVisibility(t *testing.T) {
	tests := []struct {
		role       string
		requested  string
		want       string
		downgraded bool
	}{
		{model.RoleStudent, model.VisibilityTeacherOnly, model.VisibilityTeacherOnly, false},
		{model.RoleStudent, model.VisibilityPublic, model.VisibilityTeacherOnly, true},
		{model.RoleStudent, model.VisibilityPrivate, model.VisibilityTeacherOnly, true},
		{model.RoleStudent, model.VisibilityStaffTeacher, model.VisibilityTeacherOnly, true},
		{model.RoleTeacher, model.VisibilityTeacherOnly, model.VisibilityTeacherOnly, false},
		{model.RoleTeacher, model.VisibilityPublic, model.VisibilityPublic, false},
		{model.RoleTeacher, model.VisibilityPrivate, model.VisibilityTeacherOnly, true},
		{model.RoleTeacher, model.VisibilityStaffTeacher, model.VisibilityTeacherOnly, true},
		{model.RoleStaff, model.VisibilityPrivate, model.VisibilityPrivate, false},
		{model.RoleStaff, model.VisibilityPublic, model.VisibilityPublic, false},
		{model.RoleAdmin, model.VisibilityStaffTeacher, model.VisibilityStaffTeacher, false},
	}
	for _, tt := range tests {
		effective, downgraded := ClampVisibility(tt.role, tt.requested)
		if effective != tt.want || downgraded != tt.downgraded {
			t.Errorf("ClampVisibility(%s, %s) = (%s, %v), want (%s, %v)",
				tt.role, tt.requested, effective, downgraded, tt.want, tt.downgraded)
		}
	}
}
