// Package auth issues and verifies admin JWTs and API keys and decides what
// each principal may do.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"strconv"
	"time"

	"orgadmin/internal/cache"
	"orgadmin/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token has been revoked")
)

// Claims carried by both token types. Type tells them apart.
type Claims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Type     string `json:"typ"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// TokenService signs RS256 tokens and tracks refresh tokens and revoked
// access tokens in the cache:
//
//	refresh_token:<jti>          -> user id
//	refresh_to_access:<jti>      -> access jti issued with the refresh token
//	blacklist:access_token:<jti> -> "1" until the access token expires
type TokenService struct {
	privateKey *rsa.PrivateKey
	cache      cache.Cache
	now        func() time.Time
}

func NewTokenService(key *rsa.PrivateKey, c cache.Cache) *TokenService {
	return &TokenService{privateKey: key, cache: c, now: time.Now}
}

// LoadPrivateKey reads a PEM encoded RSA key. An empty path generates a
// throwaway key, so tokens do not survive a restart.
func LoadPrivateKey(fs afero.Fs, path string) (*rsa.PrivateKey, error) {
	if path == "" {
		return rsa.GenerateKey(rand.Reader, 2048)
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return key, nil
}

// Issue creates a new access/refresh pair for u.
func (s *TokenService) Issue(ctx context.Context, u models.User) (*TokenPair, error) {
	now := s.now()

	accessJti := uuid.New().String()
	access, err := s.sign(u, tokenTypeAccess, accessJti, now, AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	refreshJti := uuid.New().String()
	refresh, err := s.sign(u, tokenTypeRefresh, refreshJti, now, RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, refreshKey(refreshJti), strconv.Itoa(u.ID), RefreshTokenTTL); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	if err := s.cache.Set(ctx, refreshToAccessKey(refreshJti), accessJti, RefreshTokenTTL); err != nil {
		return nil, fmt.Errorf("failed to store token mapping: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(AccessTokenTTL.Seconds()),
	}, nil
}

func (s *TokenService) sign(u models.User, typ, jti string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:   u.ID,
		Username: u.Username,
		Role:     string(u.Role),
		Type:     typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.Itoa(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
}

func (s *TokenService) parse(token, typ string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return &s.privateKey.PublicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Type != typ || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseAccess validates an access token and rejects revoked ones.
func (s *TokenService) ParseAccess(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.parse(token, tokenTypeAccess)
	if err != nil {
		return nil, err
	}
	val, err := s.cache.Get(ctx, blacklistKey(claims.ID))
	if err == nil && val == "1" {
		return nil, ErrTokenRevoked
	}
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		return nil, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return claims, nil
}

// Rotate consumes a refresh token: the token and the access token issued with
// it are revoked. The caller issues a fresh pair from the returned claims.
func (s *TokenService) Rotate(ctx context.Context, refreshToken string) (*Claims, error) {
	claims, err := s.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	val, err := s.cache.Get(ctx, refreshKey(claims.ID))
	if err != nil || val != strconv.Itoa(claims.UserID) {
		return nil, ErrTokenRevoked
	}

	if accessJti, err := s.cache.Get(ctx, refreshToAccessKey(claims.ID)); err == nil && accessJti != "" {
		if err := s.cache.Set(ctx, blacklistKey(accessJti), "1", AccessTokenTTL); err != nil {
			return nil, fmt.Errorf("failed to revoke access token: %w", err)
		}
	}
	if err := s.cache.Delete(ctx, refreshKey(claims.ID), refreshToAccessKey(claims.ID)); err != nil {
		return nil, fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return claims, nil
}

// Revoke blacklists the access token for its remaining lifetime and drops
// the refresh token. Either may be empty.
func (s *TokenService) Revoke(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken != "" {
		if claims, err := s.parse(accessToken, tokenTypeAccess); err == nil {
			if remaining := claims.ExpiresAt.Sub(s.now()); remaining > 0 {
				if err := s.cache.Set(ctx, blacklistKey(claims.ID), "1", remaining); err != nil {
					return fmt.Errorf("failed to revoke access token: %w", err)
				}
			}
		}
	}
	if refreshToken != "" {
		if claims, err := s.parse(refreshToken, tokenTypeRefresh); err == nil {
			if err := s.cache.Delete(ctx, refreshKey(claims.ID), refreshToAccessKey(claims.ID)); err != nil {
				return fmt.Errorf("failed to delete refresh token: %w", err)
			}
		}
	}
	return nil
}

func refreshKey(jti string) string         { return "refresh_token:" + jti }
func refreshToAccessKey(jti string) string { return "refresh_to_access:" + jti }
func blacklistKey(jti string) string       { return "blacklist:access_token:" + jti }
