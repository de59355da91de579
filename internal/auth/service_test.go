package auth

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/moodlet/moodlet-backend/internal/common"
	"github.com/moodlet/moodlet-backend/internal/testutil"
)

type mockIdentity struct {
	mock.Mock
}

func (m *mockIdentity) AuthCodeURL(state string) string {
	return m.Called(state).String(0)
}

func (m *mockIdentity) Exchange(ctx context.Context, code string) (*UserInfo, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UserInfo), args.Error(1)
}

func newTestService(t *testing.T, identity IdentityProvider) (*Service, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	tokens, err := NewTokens("test-secret", time.Hour)
	require.NoError(t, err)
	return NewService(identity, db.Storage, tokens, "http://localhost:3000/auth/callback", nil), db
}

func TestService_LoginURL(t *testing.T) {
	identity := &mockIdentity{}
	identity.On("AuthCodeURL", "xyz").Return("https://accounts.example.com/auth?state=xyz")
	svc, _ := newTestService(t, identity)

	got, err := svc.LoginURL("xyz")
	require.NoError(t, err)
	assert.Equal(t, "https://accounts.example.com/auth?state=xyz", got)

	disabled, _ := newTestService(t, nil)
	assert.False(t, disabled.Enabled())
	_, err = disabled.LoginURL("xyz")
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestService_Callback_CreatesUserOnce(t *testing.T) {
	identity := &mockIdentity{}
	identity.On("Exchange", mock.Anything, "code-1").
		Return(&UserInfo{Subject: "g-1", Email: "mina@example.com", Name: "Mina Park"}, nil).Twice()
	svc, db := newTestService(t, identity)
	ctx := context.Background()

	first, err := svc.Callback(ctx, "code-1")
	require.NoError(t, err)

	u, err := url.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, "localhost:3000", u.Host)
	assert.Equal(t, "/auth/callback", u.Path)
	assert.Equal(t, "mina@example.com", u.Query().Get("email"))
	assert.Equal(t, "Mina Park", u.Query().Get("name"))

	user, err := svc.CurrentUser(ctx, u.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, "mina@example.com", user.Email)
	assert.Equal(t, ProviderGoogle, user.OAuthProvider)
	assert.Equal(t, "g-1", user.OAuthSubject)

	second, err := svc.Callback(ctx, "code-1")
	require.NoError(t, err)
	u2, err := url.Parse(second)
	require.NoError(t, err)
	again, err := svc.CurrentUser(ctx, u2.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID, "second sign-in reuses the account")

	stored, err := db.Storage.GetUserByEmail(ctx, "mina@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
	identity.AssertExpectations(t)
}

func TestService_Callback_Fallbacks(t *testing.T) {
	identity := &mockIdentity{}
	identity.On("Exchange", mock.Anything, "code").
		Return(&UserInfo{Email: "solo@example.com"}, nil).Once()
	svc, db := newTestService(t, identity)

	redirect, err := svc.Callback(context.Background(), "code")
	require.NoError(t, err)

	u, err := url.Parse(redirect)
	require.NoError(t, err)
	assert.Equal(t, "solo", u.Query().Get("name"))

	user, err := db.Storage.GetUserByEmail(context.Background(), "solo@example.com")
	require.NoError(t, err)
	assert.Equal(t, "solo", user.Name)
	assert.Equal(t, "solo@example.com", user.OAuthSubject)
}

func TestService_Callback_Errors(t *testing.T) {
	identity := &mockIdentity{}
	identity.On("Exchange", mock.Anything, "denied").Return(nil, errors.New("invalid_grant")).Once()
	identity.On("Exchange", mock.Anything, "anonymous").Return(&UserInfo{Subject: "x"}, nil).Once()
	svc, _ := newTestService(t, identity)
	ctx := context.Background()

	for _, code := range []string{"", "denied", "anonymous"} {
		_, err := svc.Callback(ctx, code)
		require.ErrorIs(t, err, common.ErrInvalidInput, "code %q", code)

		var userErr *common.UserError
		assert.True(t, errors.As(err, &userErr), "code %q", code)
	}
}

func TestService_CurrentUser_Errors(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.CurrentUser(context.Background(), "garbage")
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	token, _, err := svc.tokens.Issue(9999)
	require.NoError(t, err)
	_, err = svc.CurrentUser(context.Background(), token)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Hana", displayName(&UserInfo{Name: " Hana ", Email: "h@example.com"}))
	assert.Equal(t, "h", displayName(&UserInfo{Email: "h@example.com"}))
	assert.Equal(t, "noat", displayName(&UserInfo{Email: "noat"}))
}

func TestService_Register(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Email:         " jun@example.com ",
		OAuthProvider: ProviderGoogle,
		OAuthSubject:  "g-7",
	})
	require.NoError(t, err)
	assert.Positive(t, user.ID)
	assert.Equal(t, "jun", user.Name)

	stored, err := db.Storage.GetUserByEmail(ctx, "jun@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)

	_, err = svc.Register(ctx, RegisterRequest{Email: "jun@example.com", OAuthProvider: ProviderGoogle, OAuthSubject: "g-8"})
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	_, err = svc.Register(ctx, RegisterRequest{Email: "no-subject@example.com", OAuthProvider: ProviderGoogle})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
