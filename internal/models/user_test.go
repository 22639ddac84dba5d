package models

import "testing"

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleProfesseur, RoleEleve, RoleUtilisateur} {
		if !r.Valid() {
			t.Errorf("%q should be valid", r)
		}
	}
	for _, r := range []Role{"", "Admin", "root"} {
		if r.Valid() {
			t.Errorf("%q should be invalid", r)
		}
	}
}

func TestUpdateUserRequestEmpty(t *testing.T) {
	if !(UpdateUserRequest{}).Empty() {
		t.Fatalf("zero request should be empty")
	}
	classe := ""
	if (UpdateUserRequest{Classe: &classe}).Empty() {
		t.Fatalf("an explicit empty classe is still an update")
	}
}
