package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinica/clinica/internal/platform/auth"
)

var (
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrInvalidRole           = errors.New("role must be patient or doctor")
	ErrInvalidSpecialization = errors.New("unknown specialization")
	ErrWeakPassword          = errors.New("password must be at least 8 characters")
	ErrInvalidEmail          = errors.New("invalid email address")
	ErrMissingName           = errors.New("name and surname are required")
)

// Service implements account registration, login, and doctor discovery.
type Service struct {
	repo            UserRepository
	secret          []byte
	tokenTTL        time.Duration
	specializations map[string]bool
	specList        []string
}

func NewService(repo UserRepository, secret []byte, tokenTTL time.Duration, specializations []string) *Service {
	specs := make(map[string]bool, len(specializations))
	for _, s := range specializations {
		specs[s] = true
	}
	return &Service{
		repo:            repo,
		secret:          secret,
		tokenTTL:        tokenTTL,
		specializations: specs,
		specList:        specializations,
	}
}

// RegisterInput carries the fields accepted at sign-up.
type RegisterInput struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	Name           string `json:"name"`
	Surname        string `json:"surname"`
	Phone          string `json:"phone"`
	Specialization string `json:"specialization"`
}

// Register creates an account. Doctors must declare a known specialization;
// for patients the field is ignored.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if !strings.Contains(email, "@") || len(email) < 3 {
		return nil, ErrInvalidEmail
	}
	if len(in.Password) < 8 {
		return nil, ErrWeakPassword
	}
	if in.Role != auth.RolePatient && in.Role != auth.RoleDoctor {
		return nil, ErrInvalidRole
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Surname) == "" {
		return nil, ErrMissingName
	}

	var specialization *string
	if in.Role == auth.RoleDoctor {
		if !s.specializations[in.Specialization] {
			return nil, ErrInvalidSpecialization
		}
		specialization = &in.Specialization
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Email:          email,
		PasswordHash:   string(hash),
		Role:           in.Role,
		Name:           strings.TrimSpace(in.Name),
		Surname:        strings.TrimSpace(in.Surname),
		Phone:          strings.TrimSpace(in.Phone),
		Specialization: specialization,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and returns a signed bearer token plus the user.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.IssueToken(s.secret, u.ID, u.Role, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// Profile returns the account behind a verified principal.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

// ChangePassword verifies the current password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	if len(next) < 8 {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, userID, string(hash))
}

// ListDoctors returns doctors, optionally filtered by specialization.
func (s *Service) ListDoctors(ctx context.Context, specialization string, limit, offset int) ([]*User, int, error) {
	if specialization != "" && !s.specializations[specialization] {
		return nil, 0, ErrInvalidSpecialization
	}
	return s.repo.ListDoctors(ctx, specialization, limit, offset)
}

// Specializations returns the configured specialization list in order.
func (s *Service) Specializations() []string {
	return s.specList
}

// GetUser exposes account lookup for cross-domain adapters.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}
