package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ecomkit/storefront/internal/apperr"
	"github.com/ecomkit/storefront/internal/domain"
	"github.com/ecomkit/storefront/internal/repository"
	"github.com/ecomkit/storefront/internal/validation"
	"github.com/ecomkit/storefront/pkg/common"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const invalidCredentials = "Invalid credentials"

// MaxPasswordBytes is the longest password bcrypt will hash.
const MaxPasswordBytes = 72

const passwordRules = "required,min=8,maxbytes=72,password"

// ValidatePassword applies the signup password rules to a password that did
// not arrive through SignupInput.
func ValidatePassword(password string) error {
	return validation.Var(password, passwordRules, "password", "Validation failed")
}

type SignupInput struct {
	FirstName    string `json:"firstName" validate:"required,max=50"`
	LastName     string `json:"lastName" validate:"max=50"`
	Email        string `json:"email" validate:"required,email,max=255"`
	Password     string `json:"password" validate:"required,min=8,maxbytes=72,password"`
	PhoneNumber  string `json:"phoneNumber" validate:"omitempty,min=10,max=15,phone"`
	AcceptTerms  bool   `json:"acceptTerms"`
	AcceptPromos bool   `json:"acceptPromos"`
}

func (in *SignupInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = normalizeEmail(in.Email)
	in.Password = strings.TrimSpace(in.Password)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
}

type SigninInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=100"`
}

func (in *SigninInput) normalize() {
	in.Email = normalizeEmail(in.Email)
	in.Password = strings.TrimSpace(in.Password)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Credentials is the outcome of a successful signup or signin. User never
// carries the password hash.
type Credentials struct {
	User    *domain.User
	Session *domain.Session
}

// Service implements signup, signin and logout over the session manager.
type Service struct {
	users    repository.UserRepository
	sessions *SessionManager
	hasher   Hasher
}

func NewService(users repository.UserRepository, sessions *SessionManager, hasher Hasher) *Service {
	return &Service{users: users, sessions: sessions, hasher: hasher}
}

func (s *Service) Sessions() *SessionManager {
	return s.sessions
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (*Credentials, error) {
	in.normalize()
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to check email")
	}
	if exists {
		return nil, apperr.New(apperr.Conflict, "User already exists")
	}
	if in.PhoneNumber != "" {
		exists, err = s.users.ExistsByPhone(ctx, in.PhoneNumber)
		if err != nil {
			return nil, apperr.Wrap(err, "failed to check phone number")
		}
		if exists {
			return nil, apperr.New(apperr.Conflict, "Phone number already registered")
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperr.NewValidation("Validation failed", []apperr.FieldIssue{
			{Field: "password", Message: fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes)},
		})
	}
	if err != nil {
		return nil, apperr.Wrap(err, "failed to hash password")
	}

	user := &domain.User{
		ID:           common.UUID(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PhoneNumber:  common.StrPtr(in.PhoneNumber),
		Password:     &hash,
		Type:         domain.RoleUser,
		AcceptTerms:  in.AcceptTerms,
		AcceptPromos: in.AcceptPromos,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.New(apperr.Conflict, "User already exists")
		}
		return nil, apperr.Wrap(err, "failed to create user")
	}

	session, err := s.sessions.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Password = nil

	zap.L().Info("user signed up",
		zap.String("namespace", "auth"),
		zap.String("user_id", user.ID))
	return &Credentials{User: user, Session: session}, nil
}

// Signin verifies credentials and rotates the user's sessions. Unknown email,
// a password-less account and a wrong password fail identically.
func (s *Service) Signin(ctx context.Context, in SigninInput) (*Credentials, error) {
	in.normalize()
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.New(apperr.InvalidCredentials, invalidCredentials)
	case err != nil:
		return nil, apperr.Wrap(err, "failed to load user")
	}
	if !user.HasPassword() || !s.hasher.Verify(*user.Password, in.Password) {
		zap.L().Info("signin rejected",
			zap.String("namespace", "auth"),
			zap.String("user_id", user.ID))
		return nil, apperr.New(apperr.InvalidCredentials, invalidCredentials)
	}

	if err := s.sessions.InvalidateAllSessions(ctx, user.ID); err != nil {
		return nil, err
	}
	session, err := s.sessions.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Password = nil

	zap.L().Info("user signed in",
		zap.String("namespace", "auth"),
		zap.String("user_id", user.ID))
	return &Credentials{User: user, Session: session}, nil
}

// Logout revokes the session identified by token.
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperr.NewValidation("Invalid token format", []apperr.FieldIssue{
			{Field: "token", Message: "Token is required"},
		})
	}
	found, err := s.sessions.InvalidateSession(ctx, token)
	if err != nil {
		return err
	}
	if !found {
		return apperr.New(apperr.NotFound, "Session not found")
	}
	return nil
}
