package postgres

import (
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/shadazls/assignment-backend/internal/models"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestMigrateURL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/db?sslmode=disable": "pgx5://u:p@localhost:5432/db?sslmode=disable",
		"postgresql://localhost/db":                        "pgx5://localhost/db",
		"pgx5://localhost/db":                              "pgx5://localhost/db",
	}
	for in, want := range cases {
		if got := migrateURL(in); got != want {
			t.Errorf("migrateURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file %s", name)
		}
	}
	if len(ups) == 0 {
		t.Fatalf("no migrations embedded")
	}
	for v := range ups {
		if !downs[v] {
			t.Errorf("migration %s has no down file", v)
		}
	}
}

func TestAssignmentWhere(t *testing.T) {
	cases := []struct {
		name   string
		filter models.AssignmentFilter
		where  string
		params []interface{}
	}{
		{"none", models.AssignmentFilter{Now: now}, "", nil},
		{"completed", models.AssignmentFilter{Status: models.StatusCompleted, Now: now}, " WHERE rendu", nil},
		{"pending", models.AssignmentFilter{Status: models.StatusPending, Now: now},
			" WHERE NOT rendu AND date_de_rendu >= $1", []interface{}{now}},
		{"overdue", models.AssignmentFilter{Status: models.StatusOverdue, Now: now},
			" WHERE NOT rendu AND date_de_rendu < $1", []interface{}{now}},
		{"search", models.AssignmentFilter{Search: "50%_off", Now: now},
			` WHERE nom ILIKE $1 ESCAPE '\'`, []interface{}{`%50\%\_off%`}},
		{"search and status", models.AssignmentFilter{Search: "essay", Status: models.StatusOverdue, Now: now},
			` WHERE nom ILIKE $1 ESCAPE '\' AND NOT rendu AND date_de_rendu < $2`, []interface{}{"%essay%", now}},
	}

	for _, tc := range cases {
		where, params := assignmentWhere(tc.filter)
		if where != tc.where {
			t.Errorf("%s: where = %q, want %q", tc.name, where, tc.where)
		}
		if len(params) != len(tc.params) {
			t.Fatalf("%s: params = %v, want %v", tc.name, params, tc.params)
		}
		for i := range params {
			if params[i] != tc.params[i] {
				t.Errorf("%s: param %d = %v, want %v", tc.name, i, params[i], tc.params[i])
			}
		}
	}
}

func TestSetClause(t *testing.T) {
	rendu := true
	nom := "Essay"
	set, params := setClause(assignmentUpdates(models.AssignmentUpdate{Nom: &nom, Rendu: &rendu}))
	if set != "nom = $1, rendu = $2" {
		t.Fatalf("set = %q", set)
	}
	if len(params) != 2 || params[0] != "Essay" || params[1] != true {
		t.Fatalf("params = %v", params)
	}
}

func TestUserUpdatesExcludePassword(t *testing.T) {
	role := models.RoleProfesseur
	classe := "B2"
	for _, u := range userUpdates(models.UpdateUserRequest{Role: &role, Classe: &classe}) {
		if u.column == "password_hash" {
			t.Fatalf("password_hash must not be updatable")
		}
	}
	set, _ := setClause(userUpdates(models.UpdateUserRequest{Role: &role, Classe: &classe}))
	if set != "role = $1, classe = $2" {
		t.Fatalf("set = %q", set)
	}
}

func TestEmptyUpdatesBuildNoColumns(t *testing.T) {
	rendu := true
	cases := []models.AssignmentUpdate{{}, {Rendu: &rendu}}
	for _, upd := range cases {
		if got := len(assignmentUpdates(upd)) == 0; got != upd.Empty() {
			t.Errorf("assignmentUpdates(%+v) empty=%v, Empty()=%v", upd, got, upd.Empty())
		}
	}

	nom := "Ada"
	for _, upd := range []models.UpdateUserRequest{{}, {Nom: &nom}} {
		if got := len(userUpdates(upd)) == 0; got != upd.Empty() {
			t.Errorf("userUpdates(%+v) empty=%v, Empty()=%v", upd, got, upd.Empty())
		}
	}
}
