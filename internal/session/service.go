package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lekhoni/lekhoni/internal/models"
	"github.com/lekhoni/lekhoni/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 30 * 24 * time.Hour

// Claims carries the user id and the session epoch the token was minted
// under. A token whose epoch lags the account's current epoch is dead: that
// is how "delete all sessions" works without a session table.
type Claims struct {
	UserID string `json:"uid"`
	Epoch  int64  `json:"epoch"`
	jwt.RegisteredClaims
}

// Service is the auth backend: account records plus session tokens.
type Service struct {
	users  storage.UserStorage
	secret []byte
}

func NewService(users storage.UserStorage, secret string) *Service {
	return &Service{users: users, secret: []byte(secret)}
}

// Register creates the account and immediately opens a session for it.
func (s *Service) Register(ctx context.Context, name, email, password string) (models.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return models.User{}, "", fmt.Errorf("%w: email and password are required", models.ErrBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, "", err
	}

	user := models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
	}
	userId, err := s.users.AddUser(ctx, user)
	if err != nil {
		return models.User{}, "", err
	}
	user.Id = userId

	token, err := s.signToken(user)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// CreateSession checks the credentials and mints a session token. It does not
// return the user; a login is only complete once CurrentUser succeeds too.
func (s *Service) CreateSession(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return "", models.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", models.ErrInvalidCredentials
	}
	return s.signToken(user)
}

// CurrentUser resolves a session token to its account. Tokens from a revoked
// epoch and tokens of deleted accounts both come back ErrUnauthorized.
func (s *Service) CurrentUser(ctx context.Context, token string) (models.User, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return models.User{}, models.ErrUnauthorized
	}

	user, err := s.users.GetUser(ctx, models.UserID(claims.UserID))
	if errors.Is(err, models.ErrNotFound) {
		return models.User{}, models.ErrUnauthorized
	}
	if err != nil {
		return models.User{}, err
	}
	if user.SessionEpoch != claims.Epoch {
		return models.User{}, models.ErrUnauthorized
	}
	return user, nil
}

// DeleteSessions revokes every session of the user by bumping the account's
// session epoch.
func (s *Service) DeleteSessions(ctx context.Context, userId models.UserID) error {
	user, err := s.users.GetUser(ctx, userId)
	if err != nil {
		return err
	}
	epoch := user.SessionEpoch + 1
	_, err = s.users.UpdateUser(ctx, userId, models.UserUpdate{SessionEpoch: &epoch})
	return err
}

// UpdateName changes the account's display name.
func (s *Service) UpdateName(ctx context.Context, userId models.UserID, name string) (models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.User{}, fmt.Errorf("%w: name is required", models.ErrBadRequest)
	}
	return s.users.UpdateUser(ctx, userId, models.UserUpdate{Name: &name})
}

// UpdatePassword verifies the old password before hashing in the new one.
// Every other session is revoked along the way.
func (s *Service) UpdatePassword(ctx context.Context, userId models.UserID, oldPassword, newPassword string) (string, error) {
	if newPassword == "" {
		return "", fmt.Errorf("%w: new password is required", models.ErrBadRequest)
	}

	user, err := s.users.GetUser(ctx, userId)
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return "", models.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	passwordHash := string(hash)
	epoch := user.SessionEpoch + 1
	updated, err := s.users.UpdateUser(ctx, userId, models.UserUpdate{
		PasswordHash: &passwordHash,
		SessionEpoch: &epoch,
	})
	if err != nil {
		return "", err
	}
	return s.signToken(updated)
}

// DeleteAccount destroys the sessions first, then removes the account record.
func (s *Service) DeleteAccount(ctx context.Context, userId models.UserID) error {
	if err := s.DeleteSessions(ctx, userId); err != nil {
		return err
	}
	return s.users.DeleteUser(ctx, userId)
}

func (s *Service) signToken(user models.User) (string, error) {
	claims := &Claims{
		UserID: string(user.Id),
		Epoch:  user.SessionEpoch,
		RegisteredClaims: jwt.RegisteredClaims{
			// distinct id per token, so two logins in the same second
			// still mint distinct session tokens
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

func (s *Service) parseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if c, ok := token.Claims.(*Claims); ok && token.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}
