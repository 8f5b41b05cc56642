package session

import (
	"context"
	"testing"
	"time"

	"github.com/lekhoni/lekhoni/internal/models"
	"github.com/lekhoni/lekhoni/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func register(t *testing.T, s *Service) (models.User, string) {
	t.Helper()
	user, token, err := s.Register(context.Background(), "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)
	return user, token
}

func TestRegisterOpensSession(t *testing.T) {
	service := NewService(storage.NewInMemoryStorage(), secret)
	user, token := register(t, service)

	assert.NotEmpty(t, token)
	assert.Equal(t, "ada@example.com", user.Email)

	resolved, err := service.CurrentUser(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.Id, resolved.Id)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service := NewService(storage.NewInMemoryStorage(), secret)
	register(t, service)

	_, _, err := service.Register(context.Background(), "Eve", "ada@example.com", "pw")
	assert.ErrorIs(t, err, models.ErrEmailTaken)
}

func TestLoginPopulatesCache(t *testing.T) {
	service := NewService(storage.NewInMemoryStorage(), secret)
	register(t, service)
	cache := NewCache(service)

	user, token, err := cache.Login(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	cached, ok := cache.User(context.Background(), token)
	assert.True(t, ok)
	assert.Equal(t, user.Id, cached.Id)
}

func TestLoginWrongPassword(t *testing.T) {
	service := NewService(storage.NewInMemoryStorage(), secret)
	register(t, service)
	cache := NewCache(service)

	_, _, err := cache.Login(context.Background(), "ada@example.com", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

// blockingUsers simulates an auth backend that hangs until the caller's
// context expires.
type blockingUsers struct {
	storage.UserStorage
}

func (blockingUsers) GetUser(ctx context.Context, userId models.UserID) (models.User, error) {
	<-ctx.Done()
	return models.User{}, ctx.Err()
}

// A session without retrievable user info is a failed login: the token is
// minted but CurrentUser cannot resolve it, so Login must not report success.
func TestLoginFailsWithoutRetrievableUser(t *testing.T) {
	memory := storage.NewInMemoryStorage()
	service := NewService(memory, secret)
	_, _, err := service.Register(context.Background(), "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	// credentials check still hits the real store, the follow-up user fetch fails
	broken := NewService(brokenLookup{memory}, secret)
	cache := NewCache(broken)

	_, _, err = cache.Login(context.Background(), "ada@example.com", "hunter22")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

type brokenLookup struct {
	storage.UserStorage
}

func (b brokenLookup) GetUser(ctx context.Context, userId models.UserID) (models.User, error) {
	return models.User{}, models.ErrNotFound
}

func TestInitAlwaysSettles(t *testing.T) {
	service := NewService(blockingUsers{}, secret)
	cache := NewCache(service)

	done := make(chan struct{})
	go func() {
		cache.Init(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Init did not settle against a hanging auth backend")
	}

	select {
	case <-cache.Ready():
	default:
		t.Fatal("Ready is still blocked after Init settled")
	}
}

func TestLogoutClearsLocalStateEvenWhenRemoteFails(t *testing.T) {
	memory := storage.NewInMemoryStorage()
	service := NewService(memory, secret)
	_, _, err := service.Register(context.Background(), "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	cache := NewCache(service)
	user, token, err := cache.Login(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)

	// remote revocation fails from here on
	cache.service = NewService(failingUpdates{memory}, secret)

	err = cache.Logout(context.Background(), token, user.Id)
	assert.Error(t, err)

	_, ok := cache.users[token]
	assert.False(t, ok, "local session entry must be gone")
}

type failingUpdates struct {
	storage.UserStorage
}

func (f failingUpdates) UpdateUser(ctx context.Context, userId models.UserID, update models.UserUpdate) (models.User, error) {
	return models.User{}, context.DeadlineExceeded
}

func TestLogoutRevokesEverySession(t *testing.T) {
	service := NewService(storage.NewInMemoryStorage(), secret)
	user, _ := register(t, service)
	cache := NewCache(service)

	_, tokenA, err := cache.Login(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)
	_, tokenB, err := cache.Login(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)

	require.NotEqual(t, tokenA, tokenB)
	require.NoError(t, cache.Logout(context.Background(), tokenA, user.Id))

	// the other token's epoch is stale now
	_, err = service.CurrentUser(context.Background(), tokenB)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	// and its cached entry is gone too, not just tokenA's
	_, ok := cache.User(context.Background(), tokenB)
	assert.False(t, ok)
	assert.Empty(t, cache.users)
}

func TestForgetUserEvictsEveryCachedToken(t *testing.T) {
	service := NewService(storage.NewInMemoryStorage(), secret)
	user, _ := register(t, service)
	cache := NewCache(service)

	_, tokenA, err := cache.Login(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)
	_, tokenB, err := cache.Login(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)

	cache.ForgetUser(user.Id)

	assert.NotContains(t, cache.users, tokenA)
	assert.NotContains(t, cache.users, tokenB)
	assert.NotContains(t, cache.byUser, user.Id)

	// no revocation happened, the next lookup re-fetches from the backend
	_, ok := cache.User(context.Background(), tokenB)
	assert.True(t, ok)
}

func TestUpdatePasswordChecksOldPassword(t *testing.T) {
	service := NewService(storage.NewInMemoryStorage(), secret)
	user, _ := register(t, service)

	_, err := service.UpdatePassword(context.Background(), user.Id, "wrong", "newpw")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	token, err := service.UpdatePassword(context.Background(), user.Id, "hunter22", "newpw")
	require.NoError(t, err)

	resolved, err := service.CurrentUser(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.Id, resolved.Id)

	_, err = service.CreateSession(context.Background(), "ada@example.com", "newpw")
	assert.NoError(t, err)
}

func TestDeleteAccountRemovesUser(t *testing.T) {
	service := NewService(storage.NewInMemoryStorage(), secret)
	user, token := register(t, service)

	require.NoError(t, service.DeleteAccount(context.Background(), user.Id))

	_, err := service.CurrentUser(context.Background(), token)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}
