package model

import "testing"

func TestDefaultRoleForEmail(t *testing.T) {
	cases := []struct {
		email string
		want  Role
	}{
		{"principal@admin.com", RoleAdmin},
		{"PRINCIPAL@ADMIN.COM", RoleAdmin},
		{"kid@school.local", RoleStudent},
		{"kid@students.admin.com.example", RoleStudent},
		{"no-at-sign", RoleStudent},
		{"", RoleStudent},
	}

	for _, tc := range cases {
		if got := DefaultRoleForEmail(tc.email); got != tc.want {
			t.Errorf("DefaultRoleForEmail(%q) = %q, want %q", tc.email, got, tc.want)
		}
	}
}

func TestPermissionsForRole(t *testing.T) {
	admin := PermissionsForRole(RoleAdmin)
	if !admin.Read || !admin.Write || !admin.Delete {
		t.Fatalf("admin permissions incomplete: %+v", admin)
	}

	student := PermissionsForRole(RoleStudent)
	if !student.Read || !student.Write {
		t.Fatalf("student should read and write: %+v", student)
	}
	if student.Delete {
		t.Fatal("student must not have delete permission")
	}
}

func TestRoleIsValid(t *testing.T) {
	if !RoleAdmin.IsValid() || !RoleStudent.IsValid() {
		t.Fatal("known roles reported invalid")
	}
	for _, r := range []Role{"", "teacher", "Admin"} {
		if r.IsValid() {
			t.Errorf("role %q reported valid", r)
		}
	}
}
