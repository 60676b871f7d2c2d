package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/plumecms/cloud/internal/auth"
	"github.com/plumecms/cloud/internal/cache"
	"github.com/plumecms/cloud/internal/metrics"
	"github.com/plumecms/cloud/internal/model"
	"github.com/plumecms/cloud/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNameRequired       = errors.New("name is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
)

const minPasswordLength = 8

// AccountService handles signup, login, and session management.
type AccountService struct {
	repo       *repository.Repository
	sessions   *cache.Cache
	sessionTTL time.Duration
	metrics    metrics.Recorder
}

// NewAccountService creates a new AccountService.
func NewAccountService(repo *repository.Repository, sessions *cache.Cache, sessionTTL time.Duration, recorder metrics.Recorder) *AccountService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AccountService{
		repo:       repo,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		metrics:    recorder,
	}
}

// Signup registers a new account with an argon2id password hash.
func (s *AccountService) Signup(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid(ErrNameRequired)
	}
	email = model.NormalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, invalid(ErrInvalidEmail)
	}
	if len(password) < minPasswordLength {
		return nil, invalid(ErrPasswordTooShort)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncUserSignedUp()

	return user, nil
}

// Login verifies credentials and opens a session. The returned token
// is the session credential; only its hash is stored.
func (s *AccountService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	// OAuth-only accounts have no password to verify.
	if !user.HasPassword() {
		return nil, "", ErrInvalidCredentials
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken()
	if err != nil {
		return nil, "", fmt.Errorf("generate session token: %w", err)
	}

	tokenHash := auth.HashToken(token)
	principal := auth.PrincipalFromUser(user, tokenHash)
	if err := s.sessions.SetSession(ctx, tokenHash, principal, s.sessionTTL); err != nil {
		return nil, "", fmt.Errorf("store session: %w", err)
	}

	return user, token, nil
}

// Logout destroys the session for the given token. Unknown tokens are
// a no-op.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.DeleteSession(ctx, auth.HashToken(token))
}

// Authenticate resolves a session token to its principal. Returns nil
// without error when the session does not exist.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*auth.Principal, error) {
	if token == "" {
		return nil, nil
	}
	return s.sessions.GetSession(ctx, auth.HashToken(token))
}
