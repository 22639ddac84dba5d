package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/shadazls/assignment-backend/internal/models"
	"github.com/shadazls/assignment-backend/internal/repository/memory"
	"github.com/shadazls/assignment-backend/pkg/jwt"
	"github.com/shadazls/assignment-backend/pkg/password"
)

const seedSecret = "seed-secret"

func newAuthService(t *testing.T) (*AuthService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewAuthService(
		store,
		jwt.NewManager("test-secret", time.Hour),
		password.NewHasher(bcrypt.MinCost),
		seedSecret,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return svc, store
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, store := newAuthService(t)

	user, err := svc.Register(ctx, &models.CreateUserRequest{Email: " a@example.com ", Password: "pw", Nom: "Ada"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != models.RoleEleve || user.Email != "a@example.com" || user.PasswordHash != "" {
		t.Fatalf("unexpected user %+v", user)
	}

	stored, _ := store.GetUserByEmail(ctx, "a@example.com")
	if stored.PasswordHash == "" || stored.PasswordHash == "pw" {
		t.Fatalf("password not hashed: %q", stored.PasswordHash)
	}

	cases := []struct {
		name string
		req  models.CreateUserRequest
		want error
	}{
		{"duplicate", models.CreateUserRequest{Email: "a@example.com", Password: "pw"}, ErrUserExists},
		{"missing email", models.CreateUserRequest{Password: "pw"}, ErrValidation},
		{"missing password", models.CreateUserRequest{Email: "b@example.com"}, ErrValidation},
		{"bad email", models.CreateUserRequest{Email: "nope", Password: "pw"}, ErrValidation},
		{"unknown role", models.CreateUserRequest{Email: "c@example.com", Password: "pw", Role: "root"}, ErrInvalidRole},
		{"admin role", models.CreateUserRequest{Email: "d@example.com", Password: "pw", Role: models.RoleAdmin}, ErrRoleNotAllowed},
		{"password over 72 bytes", models.CreateUserRequest{Email: "e@example.com", Password: strings.Repeat("ü", 37)}, ErrValidation},
	}
	for _, tc := range cases {
		req := tc.req
		if _, err := svc.Register(ctx, &req); !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}

	prof, err := svc.Register(ctx, &models.CreateUserRequest{Email: "p@example.com", Password: "pw", Role: models.RoleProfesseur})
	if err != nil || prof.Role != models.RoleProfesseur {
		t.Fatalf("Register professeur = %+v, %v", prof, err)
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	user, err := svc.Register(ctx, &models.CreateUserRequest{Email: "a@example.com", Password: "pw", Nom: "Ada", Classe: "M1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, identity, err := svc.Login(ctx, &models.LoginRequest{Email: "a@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	want := jwt.Identity{ID: user.ID, Email: "a@example.com", Role: "eleve", Nom: "Ada", Classe: "M1"}
	if identity != want {
		t.Fatalf("identity = %+v, want %+v", identity, want)
	}

	claims, err := svc.VerifyToken(token)
	if err != nil || claims.Identity != want {
		t.Fatalf("VerifyToken = %+v, %v", claims, err)
	}

	_, _, errWrongPassword := svc.Login(ctx, &models.LoginRequest{Email: "a@example.com", Password: "nope"})
	_, _, errUnknownEmail := svc.Login(ctx, &models.LoginRequest{Email: "x@example.com", Password: "pw"})
	if !errors.Is(errWrongPassword, ErrInvalidCredentials) || !errors.Is(errUnknownEmail, ErrInvalidCredentials) {
		t.Fatalf("got %v and %v", errWrongPassword, errUnknownEmail)
	}
	if errWrongPassword.Error() != errUnknownEmail.Error() {
		t.Fatalf("login failures must be indistinguishable: %q vs %q", errWrongPassword, errUnknownEmail)
	}

	if _, _, err := svc.Login(ctx, &models.LoginRequest{Email: "a@example.com"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing password: got %v", err)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthService(t)
	if _, err := svc.VerifyToken("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("got %v", err)
	}
}

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()
	svc, store := newAuthService(t)

	req := func() *models.CreateUserRequest {
		return &models.CreateUserRequest{Email: "admin@example.com", Password: "pw", Role: models.RoleEleve}
	}

	for _, secret := range []string{"", "wrong", seedSecret + "x"} {
		if _, _, err := svc.SeedAdmin(ctx, secret, req()); !errors.Is(err, ErrInvalidSeedSecret) {
			t.Fatalf("secret %q: got %v", secret, err)
		}
	}

	if _, _, err := svc.SeedAdmin(ctx, seedSecret, &models.CreateUserRequest{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing fields: got %v", err)
	}

	admin, created, err := svc.SeedAdmin(ctx, seedSecret, req())
	if err != nil || !created {
		t.Fatalf("SeedAdmin = %+v, %v, %v", admin, created, err)
	}
	if admin.Role != models.RoleAdmin {
		t.Fatalf("role = %q, want admin", admin.Role)
	}

	for i := 0; i < 3; i++ {
		again, created, err := svc.SeedAdmin(ctx, seedSecret, &models.CreateUserRequest{Email: "other@example.com", Password: "pw"})
		if err != nil || created || again.ID != admin.ID {
			t.Fatalf("repeat SeedAdmin = %+v, %v, %v", again, created, err)
		}
	}

	users, _ := store.ListUsers(ctx)
	if len(users) != 1 {
		t.Fatalf("expected exactly one user, got %d", len(users))
	}
}

func TestSeedAdminDisabledWithoutSecret(t *testing.T) {
	store := memory.NewStore()
	svc := NewAuthService(store, jwt.NewManager("s", time.Hour), password.NewHasher(bcrypt.MinCost), "", slog.New(slog.NewTextHandler(io.Discard, nil)))

	if _, _, err := svc.SeedAdmin(context.Background(), "", &models.CreateUserRequest{Email: "a@example.com", Password: "pw"}); !errors.Is(err, ErrInvalidSeedSecret) {
		t.Fatalf("got %v", err)
	}
}

func TestEnsureAdminWithoutTokenManager(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(memory.NewStore(), nil, password.NewHasher(bcrypt.MinCost), "", slog.New(slog.NewTextHandler(io.Discard, nil)))

	req := models.CreateUserRequest{Email: "root@example.com", Password: "pw", Nom: "Admin Seed"}
	first, created, err := svc.EnsureAdmin(ctx, &req)
	if err != nil || !created || first.Role != models.RoleAdmin {
		t.Fatalf("EnsureAdmin = %+v, %v, %v", first, created, err)
	}

	again, created, err := svc.EnsureAdmin(ctx, &models.CreateUserRequest{Email: "other@example.com", Password: "pw"})
	if err != nil || created || again.ID != first.ID {
		t.Fatalf("second EnsureAdmin = %+v, %v, %v", again, created, err)
	}
}

func TestAdminUserManagement(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	a, _ := svc.Register(ctx, &models.CreateUserRequest{Email: "a@example.com", Password: "pw"})
	b, _ := svc.Register(ctx, &models.CreateUserRequest{Email: "b@example.com", Password: "pw"})

	users, err := svc.ListUsers(ctx)
	if err != nil || len(users) != 2 {
		t.Fatalf("ListUsers = %v, %v", users, err)
	}

	role := models.RoleProfesseur
	classe := "T2"
	updated, err := svc.UpdateUser(ctx, a.ID, &models.UpdateUserRequest{Role: &role, Classe: &classe})
	if err != nil || updated.Role != role || updated.Classe != classe {
		t.Fatalf("UpdateUser = %+v, %v", updated, err)
	}

	// The password still works after an update.
	if _, _, err := svc.Login(ctx, &models.LoginRequest{Email: "a@example.com", Password: "pw"}); err != nil {
		t.Fatalf("Login after update: %v", err)
	}

	bad := models.Role("root")
	if _, err := svc.UpdateUser(ctx, a.ID, &models.UpdateUserRequest{Role: &bad}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("invalid role: got %v", err)
	}
	taken := b.Email
	if _, err := svc.UpdateUser(ctx, a.ID, &models.UpdateUserRequest{Email: &taken}); !errors.Is(err, ErrUserExists) {
		t.Fatalf("duplicate email: got %v", err)
	}
	if _, err := svc.UpdateUser(ctx, "missing", &models.UpdateUserRequest{Role: &role}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("missing user: got %v", err)
	}

	if err := svc.DeleteUser(ctx, b.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if err := svc.DeleteUser(ctx, b.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("second DeleteUser: %v", err)
	}
	if _, err := svc.GetUser(ctx, b.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("GetUser after delete: %v", err)
	}
}

func newAssignmentService(now time.Time) *AssignmentService {
	svc := NewAssignmentService(memory.NewStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return now }
	return svc
}

func date(t time.Time) *models.Date { return &models.Date{Time: t} }

func int64Ptr(i int64) *int64 { return &i }

func TestAssignmentLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newAssignmentService(now)

	err := svc.Create(ctx, &models.CreateAssignmentRequest{ID: int64Ptr(1), Nom: "Essay", DateDeRendu: date(now.Add(-24 * time.Hour))})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	err = svc.Create(ctx, &models.CreateAssignmentRequest{ID: int64Ptr(1), Nom: "Dup", DateDeRendu: date(now)})
	if !errors.Is(err, ErrAssignmentExists) {
		t.Fatalf("duplicate create: got %v", err)
	}
	if err := svc.Create(ctx, &models.CreateAssignmentRequest{Nom: "No id", DateDeRendu: date(now)}); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing id: got %v", err)
	}
	if err := svc.Create(ctx, &models.CreateAssignmentRequest{ID: int64Ptr(2), Nom: "No date"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing date: got %v", err)
	}

	stats, _ := svc.Stats(ctx)
	if stats != (models.AssignmentStats{Overdue: 1, Total: 1}) {
		t.Fatalf("stats before update = %+v", stats)
	}

	rendu := true
	if err := svc.Update(ctx, 1, &models.UpdateAssignmentRequest{Rendu: &rendu}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	stats, _ = svc.Stats(ctx)
	if stats != (models.AssignmentStats{Completed: 1, Total: 1}) {
		t.Fatalf("stats after update = %+v", stats)
	}

	if err := svc.Update(ctx, 9, &models.UpdateAssignmentRequest{Rendu: &rendu}); !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("update missing: got %v", err)
	}
	if err := svc.Delete(ctx, 9); !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("delete missing: got %v", err)
	}
	if err := svc.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, 1); !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("get after delete: got %v", err)
	}
}

func TestListDefaultsAndFilters(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newAssignmentService(now)

	for i := int64(1); i <= 15; i++ {
		due := now.Add(time.Duration(i-8) * time.Hour)
		req := &models.CreateAssignmentRequest{ID: int64Ptr(i), Nom: "Devoir", DateDeRendu: date(due), Rendu: i > 12}
		if err := svc.Create(ctx, req); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	page, err := svc.List(ctx, ListQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Page != 1 || page.Limit != 10 || len(page.Docs) != 10 || page.TotalDocs != 15 || page.TotalPages != 2 {
		t.Fatalf("unexpected default page %+v", page)
	}

	page, _ = svc.List(ctx, ListQuery{Status: "overdue", Limit: 50})
	if page.TotalDocs != 7 {
		t.Fatalf("overdue count = %d, want 7", page.TotalDocs)
	}
	page, _ = svc.List(ctx, ListQuery{Status: "pending", Limit: 50})
	if page.TotalDocs != 5 {
		t.Fatalf("pending count = %d, want 5", page.TotalDocs)
	}
	page, _ = svc.List(ctx, ListQuery{Status: "bogus", Search: "   "})
	if page.TotalDocs != 15 {
		t.Fatalf("unrecognized status and blank search must not filter: %d", page.TotalDocs)
	}
	page, _ = svc.List(ctx, ListQuery{Search: "nothing like this"})
	if page.TotalDocs != 0 || len(page.Docs) != 0 || page.TotalPages != 1 {
		t.Fatalf("empty result page = %+v", page)
	}
}
