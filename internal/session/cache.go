package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lekhoni/lekhoni/internal/models"
)

const initTimeout = 5 * time.Second

// Cache is the in-memory session state the request path consults: resolved
// users keyed by session token. It is populated on login and lazily on token
// lookup, and cleared on logout. It is the single local source of truth; the
// tokens themselves are what survives a restart.
type Cache struct {
	service *Service

	mutex  sync.RWMutex
	users  map[string]models.User
	byUser map[models.UserID]map[string]struct{}

	readyOnce sync.Once
	ready     chan struct{}
}

func NewCache(service *Service) *Cache {
	return &Cache{
		service: service,
		users:   make(map[string]models.User),
		byUser:  make(map[models.UserID]map[string]struct{}),
		ready:   make(chan struct{}),
	}
}

func (c *Cache) store(token string, user models.User) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.users[token] = user
	tokens, ok := c.byUser[user.Id]
	if !ok {
		tokens = make(map[string]struct{})
		c.byUser[user.Id] = tokens
	}
	tokens[token] = struct{}{}
}

// Init probes the auth backend once at startup and then marks the cache
// ready. It always settles: a slow or failing backend trips the timeout and
// the process starts unauthenticated rather than hanging route guards
// forever.
func (c *Cache) Init(ctx context.Context) {
	defer c.readyOnce.Do(func() { close(c.ready) })

	ctx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()

	// any response, including "no such user", proves the backend is up
	if _, err := c.service.users.GetUser(ctx, "startup-probe"); err != nil && ctx.Err() != nil {
		log.Printf("session: auth backend probe timed out: %v", err)
	}
}

// Ready unblocks once Init has settled. Route guards wait on it so a guarded
// request can never observe a half-initialized cache.
func (c *Cache) Ready() <-chan struct{} {
	return c.ready
}

// Login creates a session and then resolves it to a user. Both steps have to
// succeed: a session whose user cannot be fetched is treated as a failed
// login and the token is discarded.
func (c *Cache) Login(ctx context.Context, email, password string) (models.User, string, error) {
	token, err := c.service.CreateSession(ctx, email, password)
	if err != nil {
		return models.User{}, "", err
	}

	user, err := c.service.CurrentUser(ctx, token)
	if err != nil {
		return models.User{}, "", err
	}

	c.store(token, user)
	return user, token, nil
}

// Logout revokes the user's sessions remotely and clears the local entries
// unconditionally, even when the remote revocation fails. The revocation
// kills every session of the account, so every cached token of the user is
// dropped, not just the one that asked. The UI must never keep showing a
// logged-in view over a dead session; the cost is that local and remote state
// can diverge until the token expires.
func (c *Cache) Logout(ctx context.Context, token string, userId models.UserID) error {
	err := c.service.DeleteSessions(ctx, userId)
	if err != nil {
		log.Printf("session: remote logout for %v: %v", userId, err)
	}

	c.ForgetUser(userId)
	c.Forget(token)
	return err
}

// User resolves a token to its account, consulting the cache first and the
// auth backend on a miss.
func (c *Cache) User(ctx context.Context, token string) (models.User, bool) {
	if token == "" {
		return models.User{}, false
	}

	c.mutex.RLock()
	user, ok := c.users[token]
	c.mutex.RUnlock()
	if ok {
		return user, true
	}

	user, err := c.service.CurrentUser(ctx, token)
	if err != nil {
		return models.User{}, false
	}

	c.store(token, user)
	return user, true
}

// Forget drops a cached token without touching the backend.
func (c *Cache) Forget(token string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	user, ok := c.users[token]
	if !ok {
		return
	}
	delete(c.users, token)
	if tokens := c.byUser[user.Id]; tokens != nil {
		delete(tokens, token)
		if len(tokens) == 0 {
			delete(c.byUser, user.Id)
		}
	}
}

// ForgetUser drops every cached token of the account. Anything that revokes
// or reshapes the account (logout, rename, password change, deletion) goes
// through here so no stale entry can outlive the change in-process.
func (c *Cache) ForgetUser(userId models.UserID) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for token := range c.byUser[userId] {
		delete(c.users, token)
	}
	delete(c.byUser, userId)
}

// Authenticated reports whether the token resolves to a live session.
func (c *Cache) Authenticated(ctx context.Context, token string) bool {
	_, ok := c.User(ctx, token)
	return ok
}
