package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/models"
	"itinventory/pkg/roles"
	"itinventory/pkg/security"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"

	minPasswordLength = 8
)

// Session is what a successful sign-in hands back to the client.
type Session struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Principal models.Principal `json:"user"`
}

type Listener func(ctx context.Context, event models.SessionEvent)

type Service struct {
	users       UserRepository
	tokens      *security.TokenManager
	revocations RevocationStore
	mailer      Mailer
	providers   map[string]Provider
	resetTTL    time.Duration
	logger      *zap.Logger

	mu        sync.RWMutex
	listeners []Listener
}

type Options struct {
	Users       UserRepository
	Tokens      *security.TokenManager
	Revocations RevocationStore
	Mailer      Mailer
	Providers   map[string]Provider
	ResetTTL    time.Duration
	Logger      *zap.Logger
}

func NewService(opts Options) *Service {
	if opts.Providers == nil {
		opts.Providers = map[string]Provider{}
	}
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = 30 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		users:       opts.Users,
		tokens:      opts.Tokens,
		revocations: opts.Revocations,
		mailer:      opts.Mailer,
		providers:   opts.Providers,
		resetTTL:    opts.ResetTTL,
		logger:      opts.Logger,
	}
}

// Subscribe registers fn for every sign-in and sign-out.
func (s *Service) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Service) publish(ctx context.Context, event models.SessionEvent) {
	s.mu.RLock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(ctx, event)
	}
}

var errBadCredentials = custom_error.New(custom_error.CodeUnauthorized, "invalid email or password")

func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	if user.PasswordHash == "" {
		return nil, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errBadCredentials
	}
	return s.startSession(ctx, user)
}

func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (*Session, error) {
	user, err := s.CreateUser(ctx, email, password, displayName, roles.Default())
	if err != nil {
		return nil, err
	}
	s.logger.Info("User signed up", zap.Int("user_id", user.ID), zap.String("email", user.Email))
	return s.startSession(ctx, user)
}

// CreateUser registers a password account without signing it in. The CLI
// uses it to provision admins.
func (s *Service) CreateUser(ctx context.Context, email, password, displayName string, role roles.Role) (*models.User, error) {
	if !role.IsValid() {
		return nil, custom_error.Newf(custom_error.CodeValidation, "unknown role %q", role)
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.users.Create(ctx, models.User{
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: string(hash),
		Role:         role.String(),
		Provider:     ProviderPassword,
	})
}

func (s *Service) AuthCodeURL(providerName, state string) (string, error) {
	provider, err := s.provider(providerName)
	if err != nil {
		return "", err
	}
	return provider.AuthCodeURL(state), nil
}

// SignInWithProvider exchanges the callback code and signs the matching
// user in, creating the account on first use.
func (s *Service) SignInWithProvider(ctx context.Context, providerName, code string) (*Session, error) {
	provider, err := s.provider(providerName)
	if err != nil {
		return nil, err
	}
	info, err := provider.Exchange(ctx, code)
	if err != nil {
		return nil, custom_error.Wrap(custom_error.CodeUnauthorized, err, "provider sign-in failed")
	}

	user, err := s.users.FindByEmail(ctx, info.Email)
	if isNotFound(err) {
		user, err = s.users.Create(ctx, models.User{
			Email:       info.Email,
			DisplayName: info.Name,
			Role:        roles.Default().String(),
			Provider:    providerName,
		})
	}
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, user)
}

func (s *Service) provider(name string) (Provider, error) {
	provider, ok := s.providers[name]
	if !ok {
		return nil, custom_error.Newf(custom_error.CodeNotFound, "unknown provider %q", name)
	}
	return provider, nil
}

func (s *Service) startSession(ctx context.Context, user *models.User) (*Session, error) {
	principal := user.Principal()
	token, claims, err := s.tokens.Issue(principal)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, models.SessionEvent{Kind: models.SignedIn, Principal: principal})
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, Principal: principal}, nil
}

// SignOut revokes the token until it would have expired anyway.
func (s *Service) SignOut(ctx context.Context, claims *security.Claims) error {
	if claims == nil {
		return custom_error.New(custom_error.CodeUnauthorized, "not signed in")
	}
	if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.publish(ctx, models.SessionEvent{Kind: models.SignedOut, Principal: claims.Principal()})
	return nil
}

// SendPasswordResetEmail does not reveal whether the address is registered.
func (s *Service) SendPasswordResetEmail(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			s.logger.Info("Password reset for unknown email", zap.String("email", email))
			return nil
		}
		return err
	}

	token, _, err := s.tokens.IssuePasswordReset(user.Principal(), s.resetTTL)
	if err != nil {
		return err
	}
	return s.mailer.SendPasswordReset(ctx, user.Email, token)
}

// ConfirmPasswordReset sets a new password. Each reset token works once.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	claims, err := s.tokens.Parse(token, security.PurposePasswordReset)
	if err != nil {
		return custom_error.Wrap(custom_error.CodeUnauthorized, err, "invalid or expired reset token")
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return fmt.Errorf("check reset token: %w", err)
	}
	if revoked {
		return custom_error.New(custom_error.CodeUnauthorized, "reset token already used")
	}
	if err := checkPassword(password); err != nil {
		return err
	}

	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return custom_error.Wrap(custom_error.CodeUnauthorized, err, "invalid reset token subject")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, id, string(hash)); err != nil {
		return err
	}
	if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		s.logger.Warn("Failed to revoke used reset token", zap.Error(err))
	}
	return nil
}

func checkPassword(password string) error {
	if len(password) < minPasswordLength {
		return custom_error.Newf(custom_error.CodeValidation, "password must be at least %d characters", minPasswordLength).
			WithDetails(map[string]any{"password": "too_short"})
	}
	return nil
}

func isNotFound(err error) bool {
	return err != nil && errors.Is(err, custom_error.Sentinel(custom_error.CodeNotFound))
}
