package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"

	"github.com/avdeyev/shiftdesk/internal/domain"
)

var tracer = otel.Tracer("auth")

// CredentialStore is what the auth service needs from user persistence.
type CredentialStore interface {
	GetCredentials(ctx context.Context, username string) (domain.User, string, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
}

type AuthService struct {
	users    CredentialStore
	rdb      *redis.Client
	secret   []byte
	lifetime time.Duration

	// actors is a short-lived in-process cache of id→actor lookups so a
	// burst of requests from one session hits the database once.
	actors *gocache.Cache
}

func NewAuthService(users CredentialStore, rdb *redis.Client, secret string, lifetime time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		rdb:      rdb,
		secret:   []byte(secret),
		lifetime: lifetime,
		actors:   gocache.New(time.Minute, 5*time.Minute),
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	if len(password) < 6 {
		return "", domain.ValidationError{Message: "password must be at least 6 characters"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "AuthService.HashPassword: bcrypt failed")
	}
	return string(hash), nil
}

// Login verifies the credentials, issues a token and registers the session.
// A wrong username and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, domain.User, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Login")
	defer span.End()

	user, hash, err := s.users.GetCredentials(ctx, username)
	if err != nil {
		span.RecordError(err)
		return "", domain.User{}, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		span.RecordError(err)
		return "", domain.User{}, domain.ErrUnauthorized
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		span.RecordError(err)
		return "", domain.User{}, err
	}

	err = s.rdb.Set(ctx, sessionKey(user.ID), token, s.lifetime).Err()
	if err != nil {
		span.RecordError(err)
		return "", domain.User{}, errors.Wrap(err, "AuthService.Login: session store failed")
	}

	return token, user, nil
}

// StartSession issues a token for a freshly registered user.
func (s *AuthService) StartSession(ctx context.Context, userID int64) (string, error) {
	token, err := s.issueToken(userID)
	if err != nil {
		return "", err
	}
	err = s.rdb.Set(ctx, sessionKey(userID), token, s.lifetime).Err()
	if err != nil {
		return "", errors.Wrap(err, "AuthService.StartSession: session store failed")
	}
	return token, nil
}

func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	s.actors.Delete(actorCacheKey(userID))
	return s.rdb.Del(ctx, sessionKey(userID)).Err()
}

// Authenticate turns a bearer token into an Actor. The token must parse,
// the session must still exist (logout kills it before expiry), and the
// user must not have been soft-deleted since.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Actor, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Authenticate")
	defer span.End()

	userID, err := s.parseToken(token)
	if err != nil {
		span.RecordError(err)
		return domain.Actor{}, domain.ErrUnauthorized
	}

	stored, err := s.rdb.Get(ctx, sessionKey(userID)).Result()
	if err == redis.Nil || (err == nil && stored != token) {
		return domain.Actor{}, domain.ErrUnauthorized
	}
	if err != nil {
		span.RecordError(err)
		return domain.Actor{}, errors.Wrap(err, "AuthService.Authenticate: session lookup failed")
	}

	if cached, found := s.actors.Get(actorCacheKey(userID)); found {
		return cached.(domain.Actor), nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return domain.Actor{}, domain.ErrUnauthorized
	}

	actor := domain.Actor{
		ID:       user.ID,
		Username: user.Username,
		RoleID:   user.RoleID,
		Shift:    user.Shift,
	}
	s.actors.Set(actorCacheKey(userID), actor, gocache.DefaultExpiration)
	return actor, nil
}

// ForgetActor evicts the L1 profile entry after a role or shift change so
// the next request sees the new authorization inputs.
func (s *AuthService) ForgetActor(userID int64) {
	s.actors.Delete(actorCacheKey(userID))
}

func (s *AuthService) issueToken(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "AuthService.issueToken: signing failed")
	}
	return token, nil
}

func (s *AuthService) parseToken(token string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, fmt.Errorf("invalid claims")
	}
	return strconv.ParseInt(claims.Subject, 10, 64)
}

func sessionKey(userID int64) string    { return fmt.Sprintf("session:%d", userID) }
func actorCacheKey(userID int64) string { return strconv.FormatInt(userID, 10) }
