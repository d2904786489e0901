package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinica/clinica/internal/platform/auth"
)

type mockUserRepo struct {
	users map[uuid.UUID]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrEmailTaken
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *mockUserRepo) ListDoctors(_ context.Context, specialization string, limit, offset int) ([]*User, int, error) {
	var out []*User
	for _, u := range m.users {
		if u.Role != auth.RoleDoctor {
			continue
		}
		if specialization != "" && (u.Specialization == nil || *u.Specialization != specialization) {
			continue
		}
		out = append(out, u)
	}
	return out, len(out), nil
}

var testSpecs = []string{"Cardiology", "Neurology"}

func newTestService() (*Service, *mockUserRepo) {
	repo := newMockUserRepo()
	return NewService(repo, []byte("test-secret"), time.Hour, testSpecs), repo
}

func patientInput() RegisterInput {
	return RegisterInput{
		Email:    "jonas@example.com",
		Password: "correct-horse",
		Role:     auth.RolePatient,
		Name:     "Jonas",
		Surname:  "Brandt",
	}
}

func doctorInput() RegisterInput {
	return RegisterInput{
		Email:          "greta@example.com",
		Password:       "correct-horse",
		Role:           auth.RoleDoctor,
		Name:           "Greta",
		Surname:        "Keller",
		Specialization: "Cardiology",
	}
}

func TestRegister_Patient(t *testing.T) {
	svc, _ := newTestService()
	u, err := svc.Register(context.Background(), patientInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != auth.RolePatient || u.Specialization != nil {
		t.Errorf("unexpected user: %+v", u)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct-horse")); err != nil {
		t.Error("stored hash does not match password")
	}
	if u.PasswordHash == "correct-horse" {
		t.Error("password stored in plaintext")
	}
}

func TestRegister_DoctorRequiresKnownSpecialization(t *testing.T) {
	svc, _ := newTestService()

	in := doctorInput()
	in.Specialization = "Alchemy"
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrInvalidSpecialization) {
		t.Errorf("expected ErrInvalidSpecialization, got %v", err)
	}

	in.Specialization = ""
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrInvalidSpecialization) {
		t.Errorf("expected ErrInvalidSpecialization for empty value, got %v", err)
	}

	if _, err := svc.Register(context.Background(), doctorInput()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	in := patientInput()
	in.Email = "nonsense"
	if _, err := svc.Register(ctx, in); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}

	in = patientInput()
	in.Password = "short"
	if _, err := svc.Register(ctx, in); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}

	in = patientInput()
	in.Role = "admin"
	if _, err := svc.Register(ctx, in); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}

	in = patientInput()
	in.Surname = "  "
	if _, err := svc.Register(ctx, in); !errors.Is(err, ErrMissingName) {
		t.Errorf("expected ErrMissingName, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Register(context.Background(), patientInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Register(context.Background(), patientInput()); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService()
	u, err := svc.Register(context.Background(), patientInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, got, err := svc.Login(context.Background(), "jonas@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != u.ID {
		t.Error("login returned wrong user")
	}
	if token == "" {
		t.Fatal("expected a signed token")
	}

	// The token must round-trip through the verifier with the same identity.
	claims, err := auth.ParseToken([]byte("test-secret"), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != u.ID.String() || claims.Role != auth.RolePatient {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Register(context.Background(), patientInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "jonas@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService()
	u, err := svc.Register(context.Background(), patientInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.ChangePassword(context.Background(), u.ID, "wrong", "new-password-1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), u.ID, "correct-horse", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), u.ID, "correct-horse", "new-password-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "jonas@example.com", "new-password-1"); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
}

func TestListDoctors_FilterValidation(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Register(context.Background(), doctorInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, total, err := svc.ListDoctors(context.Background(), "Cardiology", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("expected 1 doctor, got %d", total)
	}

	if _, _, err := svc.ListDoctors(context.Background(), "Alchemy", 20, 0); !errors.Is(err, ErrInvalidSpecialization) {
		t.Errorf("expected ErrInvalidSpecialization, got %v", err)
	}
}
