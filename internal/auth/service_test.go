package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/models"
	"itinventory/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type serviceFixture struct {
	service     *Service
	users       *mockUserRepository
	tokens      *security.TokenManager
	revocations *MemoryRevocations
	mailer      *captureMailer
	events      []models.SessionEvent
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	tokens, err := security.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	f := &serviceFixture{
		users:       new(mockUserRepository),
		tokens:      tokens,
		revocations: NewMemoryRevocations(),
		mailer:      &captureMailer{},
	}
	f.service = NewService(Options{
		Users:       f.users,
		Tokens:      tokens,
		Revocations: f.revocations,
		Mailer:      f.mailer,
		Providers: map[string]Provider{
			ProviderGoogle: fakeProvider{user: ProviderUser{Email: "lan@example.com", Name: "Lan Pham"}},
		},
	})
	f.service.Subscribe(func(_ context.Context, event models.SessionEvent) {
		f.events = append(f.events, event)
	})
	return f
}

func storedUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           7,
		Email:        "minh@example.com",
		DisplayName:  "Minh Tran",
		PasswordHash: string(hash),
		Role:         "user",
		Provider:     ProviderPassword,
	}
}

var notFound = custom_error.New(custom_error.CodeNotFound, "user not found")

func TestSignIn(t *testing.T) {
	f := newServiceFixture(t)
	f.users.On("FindByEmail", mock.Anything, "minh@example.com").Return(storedUser(t, "correct horse"), nil)
	f.users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, notFound)

	session, err := f.service.SignIn(context.Background(), "minh@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "7", session.Principal.ID)
	assert.Equal(t, "Minh Tran", session.Principal.DisplayName)

	claims, err := f.tokens.Parse(session.Token, security.PurposeAccess)
	require.NoError(t, err)
	assert.Equal(t, "minh@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)

	require.Len(t, f.events, 1)
	assert.Equal(t, models.SignedIn, f.events[0].Kind)

	_, err = f.service.SignIn(context.Background(), "minh@example.com", "wrong")
	assert.Equal(t, custom_error.CodeUnauthorized, custom_error.CodeOf(err))

	_, err = f.service.SignIn(context.Background(), "ghost@example.com", "whatever")
	assert.Equal(t, custom_error.CodeUnauthorized, custom_error.CodeOf(err))
	assert.Len(t, f.events, 1)
}

func TestSignInPropagatesStorageErrors(t *testing.T) {
	f := newServiceFixture(t)
	f.users.On("FindByEmail", mock.Anything, "minh@example.com").Return(nil, errors.New("connection refused"))

	_, err := f.service.SignIn(context.Background(), "minh@example.com", "correct horse")
	assert.Equal(t, custom_error.CodeInternal, custom_error.CodeOf(err))
}

func TestSignUp(t *testing.T) {
	f := newServiceFixture(t)
	f.users.On("Create", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "new@example.com" && u.Role == "user" && u.Provider == ProviderPassword &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("long enough")) == nil
	})).Return(&models.User{ID: 11, Email: "new@example.com", DisplayName: "New Hire", Role: "user"}, nil).Once()

	session, err := f.service.SignUp(context.Background(), "new@example.com", "long enough", " New Hire ")
	require.NoError(t, err)
	assert.Equal(t, "11", session.Principal.ID)
	f.users.AssertExpectations(t)
}

func TestSignUpRejectsDuplicateAndShortPassword(t *testing.T) {
	f := newServiceFixture(t)
	f.users.On("Create", mock.Anything, mock.Anything).
		Return(nil, custom_error.New(custom_error.CodeConflict, "email already registered"))

	_, err := f.service.SignUp(context.Background(), "minh@example.com", "long enough", "")
	assert.Equal(t, custom_error.CodeConflict, custom_error.CodeOf(err))

	_, err = f.service.SignUp(context.Background(), "minh@example.com", "short", "")
	assert.Equal(t, custom_error.CodeValidation, custom_error.CodeOf(err))
	f.users.AssertNumberOfCalls(t, "Create", 1)
	assert.Empty(t, f.events)
}

func TestSignOutRevokesToken(t *testing.T) {
	f := newServiceFixture(t)
	f.users.On("FindByEmail", mock.Anything, "minh@example.com").Return(storedUser(t, "correct horse"), nil)

	session, err := f.service.SignIn(context.Background(), "minh@example.com", "correct horse")
	require.NoError(t, err)
	claims, err := f.tokens.Parse(session.Token, security.PurposeAccess)
	require.NoError(t, err)

	require.NoError(t, f.service.SignOut(context.Background(), claims))

	revoked, err := f.revocations.IsRevoked(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	require.Len(t, f.events, 2)
	assert.Equal(t, models.SignedOut, f.events[1].Kind)
	assert.Equal(t, "7", f.events[1].Principal.ID)

	assert.Equal(t, custom_error.CodeUnauthorized, custom_error.CodeOf(f.service.SignOut(context.Background(), nil)))
}

func TestPasswordResetFlow(t *testing.T) {
	f := newServiceFixture(t)
	f.users.On("FindByEmail", mock.Anything, "minh@example.com").Return(storedUser(t, "old password"), nil)
	f.users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, notFound)
	f.users.On("UpdatePassword", mock.Anything, 7, mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("brand new password")) == nil
	})).Return(nil).Once()

	require.NoError(t, f.service.SendPasswordResetEmail(context.Background(), "ghost@example.com"))
	assert.Empty(t, f.mailer.tokens)

	require.NoError(t, f.service.SendPasswordResetEmail(context.Background(), "minh@example.com"))
	token := f.mailer.tokens["minh@example.com"]
	require.NotEmpty(t, token)

	_, err := f.tokens.Parse(token, security.PurposeAccess)
	assert.Error(t, err, "reset token must not work as an access token")

	err = f.service.ConfirmPasswordReset(context.Background(), token, "short")
	assert.Equal(t, custom_error.CodeValidation, custom_error.CodeOf(err))

	require.NoError(t, f.service.ConfirmPasswordReset(context.Background(), token, "brand new password"))

	err = f.service.ConfirmPasswordReset(context.Background(), token, "another password")
	assert.Equal(t, custom_error.CodeUnauthorized, custom_error.CodeOf(err))

	err = f.service.ConfirmPasswordReset(context.Background(), "garbage", "brand new password")
	assert.Equal(t, custom_error.CodeUnauthorized, custom_error.CodeOf(err))
	f.users.AssertExpectations(t)
}

func TestSignInWithProviderCreatesUserOnFirstUse(t *testing.T) {
	f := newServiceFixture(t)
	f.users.On("FindByEmail", mock.Anything, "lan@example.com").Return(nil, notFound).Once()
	f.users.On("Create", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "lan@example.com" && u.Provider == ProviderGoogle && u.PasswordHash == ""
	})).Return(&models.User{ID: 3, Email: "lan@example.com", DisplayName: "Lan Pham", Role: "user"}, nil).Once()

	session, err := f.service.SignInWithProvider(context.Background(), ProviderGoogle, "code-123")
	require.NoError(t, err)
	assert.Equal(t, "3", session.Principal.ID)
	f.users.AssertExpectations(t)

	_, err = f.service.SignInWithProvider(context.Background(), "github", "code")
	assert.Equal(t, custom_error.CodeNotFound, custom_error.CodeOf(err))

	url, err := f.service.AuthCodeURL(ProviderGoogle, "abc")
	require.NoError(t, err)
	assert.Contains(t, url, "state=abc")
}

func TestProviderAccountCannotSignInWithPassword(t *testing.T) {
	f := newServiceFixture(t)
	f.users.On("FindByEmail", mock.Anything, "lan@example.com").
		Return(&models.User{ID: 3, Email: "lan@example.com", Provider: ProviderGoogle}, nil)

	_, err := f.service.SignIn(context.Background(), "lan@example.com", "")
	assert.Equal(t, custom_error.CodeUnauthorized, custom_error.CodeOf(err))
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.CreateUser(context.Background(), "boss@example.com", "long enough", "Boss", "overlord")
	assert.Equal(t, custom_error.CodeValidation, custom_error.CodeOf(err))
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
