package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/iptv-panel/internal/lib/jwt"
	"github.com/magabrotheeeer/iptv-panel/internal/lib/password"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
	"github.com/magabrotheeeer/iptv-panel/internal/storage"
)

type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) FindAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	args := m.Called(ctx, username)
	acc, _ := args.Get(0).(*models.Account)
	return acc, args.Error(1)
}

func (m *MockAccounts) FindAccountByID(ctx context.Context, id string) (*models.Account, error) {
	args := m.Called(ctx, id)
	acc, _ := args.Get(0).(*models.Account)
	return acc, args.Error(1)
}

func newTestManager(t *testing.T, accounts AccountFinder) (*Manager, *Store) {
	store, _ := setupTestStore(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(log, accounts, store, jwt.NewJWTMaker("secret", time.Hour), time.Hour), store
}

func hashed(t *testing.T, pass string) string {
	h, err := password.GetHash(pass)
	require.NoError(t, err)
	return h
}

func TestManager_LoginResolveLogout(t *testing.T) {
	ctx := context.Background()
	accounts := new(MockAccounts)
	bob := &models.Account{ID: "r1", Username: "bob", Credential: hashed(t, "secret"), FullName: "Bob", Role: models.RoleReseller}
	accounts.On("FindAccountByUsername", mock.Anything, "bob").Return(bob, nil)
	accounts.On("FindAccountByID", mock.Anything, "r1").Return(bob, nil)

	m, _ := newTestManager(t, accounts)

	token, actor, err := m.Login(ctx, "bob", "secret")
	require.NoError(t, err)
	assert.Equal(t, reseller, actor)

	sid, resolved, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.NotEmpty(t, sid)
	assert.Equal(t, reseller, resolved)

	require.NoError(t, m.Logout(ctx, sid))

	_, _, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
	accounts.AssertExpectations(t)
}

func TestManager_LoginFailures(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(*MockAccounts)
		pass      string
		wantErr   error
	}{
		{
			name: "unknown user",
			setupMock: func(m *MockAccounts) {
				m.On("FindAccountByUsername", mock.Anything, "bob").Return(nil, storage.ErrNotFound)
			},
			pass:    "secret",
			wantErr: ErrInvalidCredentials,
		},
		{
			name: "wrong password",
			setupMock: func(m *MockAccounts) {
				m.On("FindAccountByUsername", mock.Anything, "bob").
					Return(&models.Account{ID: "r1", Username: "bob", Credential: hashed(t, "secret")}, nil)
			},
			pass:    "guess",
			wantErr: ErrInvalidCredentials,
		},
		{
			name: "store unreachable",
			setupMock: func(m *MockAccounts) {
				m.On("FindAccountByUsername", mock.Anything, "bob").Return(nil, errors.New("connection refused"))
			},
			pass: "secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := new(MockAccounts)
			tt.setupMock(accounts)
			m, _ := newTestManager(t, accounts)

			token, _, err := m.Login(context.Background(), "bob", tt.pass)
			require.Error(t, err)
			assert.Empty(t, token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NotErrorIs(t, err, ErrInvalidCredentials)
			}
		})
	}
}

func TestManager_ResolveInvalidToken(t *testing.T) {
	m, _ := newTestManager(t, new(MockAccounts))

	_, _, err := m.Resolve(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_ResolveAccountMismatch(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t, new(MockAccounts))

	token, err := m.tokens.GenerateToken("sid-1", "admin", "admin")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "sid-1", reseller, time.Hour))

	_, _, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_Forget(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t, new(MockAccounts))

	token, err := m.tokens.GenerateToken("sid-1", "r1", "reseller")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "sid-1", reseller, time.Hour))

	sid, err := m.Forget(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", sid)

	_, err = store.Load(ctx, "sid-1")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = m.Forget(ctx, "garbage")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_ResolveRemovedAccount(t *testing.T) {
	ctx := context.Background()
	accounts := new(MockAccounts)
	accounts.On("FindAccountByID", mock.Anything, "r1").Return(nil, storage.ErrNotFound)
	m, store := newTestManager(t, accounts)

	token, err := m.tokens.GenerateToken("sid-1", "r1", "reseller")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "sid-1", reseller, time.Hour))

	_, _, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = store.Load(ctx, "sid-1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_ResolvePicksUpAccountChanges(t *testing.T) {
	ctx := context.Background()
	accounts := new(MockAccounts)
	accounts.On("FindAccountByID", mock.Anything, "r1").Return(&models.Account{
		ID: "r1", Username: "bob", Credential: "x", FullName: "Bob", Role: models.RoleAdmin,
	}, nil)
	m, store := newTestManager(t, accounts)

	token, err := m.tokens.GenerateToken("sid-1", "r1", "reseller")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "sid-1", reseller, time.Hour))

	_, actor, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, actor.Role)

	stored, err := store.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, stored.Role)
}

func TestManager_ResolveStoreUnreachable(t *testing.T) {
	ctx := context.Background()
	accounts := new(MockAccounts)
	accounts.On("FindAccountByID", mock.Anything, "r1").Return(nil, errors.New("connection refused"))
	m, store := newTestManager(t, accounts)

	token, err := m.tokens.GenerateToken("sid-1", "r1", "reseller")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "sid-1", reseller, time.Hour))

	_, _, err = m.Resolve(ctx, token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)

	_, err = store.Load(ctx, "sid-1")
	assert.NoError(t, err)
}
