package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"schedule-service/internal/entity"
	"schedule-service/internal/repository"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const tokenTTL = 24 * time.Hour

type JwtCustomClaims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// SessionCache stores issued tokens for later validation. A missing key is
// reported as redis.Nil.
type SessionCache interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

type redisSessionCache struct {
	rdb *redis.Client
}

// NewRedisSessionCache wraps a redis client as a SessionCache.
func NewRedisSessionCache(rdb *redis.Client) SessionCache {
	return &redisSessionCache{rdb: rdb}
}

func (c *redisSessionCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *redisSessionCache) Get(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

type UserService struct {
	repo      repository.UserRepository
	sessions  SessionCache
	jwtSecret string
}

// NewUserService creates a new instance of UserService. sessions may be nil,
// which disables the session cache.
func NewUserService(repo repository.UserRepository, sessions SessionCache, jwtSecret string) *UserService {
	return &UserService{repo: repo, sessions: sessions, jwtSecret: jwtSecret}
}

// Register creates a new user with a bcrypt-hashed password. The caller must
// log in separately to obtain a token.
func (s *UserService) Register(ctx context.Context, username, password string) (*entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error().Err(err).Msg("Error hashing password")
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrDuplicateUsername
		}
		logger.Error().Err(err).Msg("Error creating user")
		return nil, err
	}

	return user, nil
}

// Login verifies the credentials and issues a signed token carrying the user id.
func (s *UserService) Login(ctx context.Context, username, password string) (token string, err error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		logger.Error().Err(err).Msg("Error looking up user")
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	// After validation, generate JWT token
	claims := &JwtCustomClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		},
	}

	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := tkn.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	// Cache the token keyed by user id, matching the token TTL. The cache is
	// advisory; a failure here must not fail the login.
	if s.sessions != nil {
		if err := s.sessions.Set(ctx, sessionKey(user.ID), t, tokenTTL); err != nil {
			logger.Warn().Err(err).Int("user_id", user.ID).Msg("Error caching session token")
		}
	}

	return t, nil
}

// ValidateSession checks that the token is a valid signed token whose session
// is still cached. It does not gate the protected routes.
func (s *UserService) ValidateSession(ctx context.Context, token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return err
	}
	if s.sessions == nil {
		return fmt.Errorf("session cache not configured")
	}

	cached, err := s.sessions.Get(ctx, sessionKey(claims.UserID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("session not found")
		}
		return err
	}
	if cached != token {
		return fmt.Errorf("session does not match")
	}

	return nil
}

func (s *UserService) parseToken(tokenStr string) (*JwtCustomClaims, error) {
	tok, err := jwt.ParseWithClaims(tokenStr, &JwtCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !tok.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return nil, err
	}
	claims, ok := tok.Claims.(*JwtCustomClaims)
	if !ok || claims.UserID == 0 {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

func sessionKey(userID int) string {
	return fmt.Sprintf("session:%d", userID)
}
