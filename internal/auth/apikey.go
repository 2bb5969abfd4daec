package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"orgadmin/internal/models"
	"orgadmin/internal/store"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/bcrypt"
)

const (
	apiKeyScheme    = "oak"
	apiKeyPrefixLen = 8
	apiKeySecretLen = 32
)

var ErrMalformedAPIKey = errors.New("malformed api key")

// GeneratedAPIKey is returned once at creation. Only Prefix and Hash are
// persisted; Key is shown to the caller and then discarded.
type GeneratedAPIKey struct {
	Key    string
	Prefix string
	Hash   string
}

// GenerateAPIKey returns a key of the form oak_<prefix>_<secret>.
func GenerateAPIKey() (*GeneratedAPIKey, error) {
	prefix := strings.ReplaceAll(uuid.NewString(), "-", "")[:apiKeyPrefixLen]

	raw := make([]byte, apiKeySecretLen)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate api key: %w", err)
	}
	secret := base58.Encode(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash api key: %w", err)
	}

	return &GeneratedAPIKey{
		Key:    apiKeyScheme + "_" + prefix + "_" + secret,
		Prefix: prefix,
		Hash:   string(hash),
	}, nil
}

// ParseAPIKey splits a presented key into its lookup prefix and secret.
func ParseAPIKey(key string) (prefix, secret string, err error) {
	parts := strings.Split(key, "_")
	if len(parts) != 3 || parts[0] != apiKeyScheme || len(parts[1]) != apiKeyPrefixLen || parts[2] == "" {
		return "", "", ErrMalformedAPIKey
	}
	if _, err := base58.Decode(parts[2]); err != nil {
		return "", "", ErrMalformedAPIKey
	}
	return parts[1], parts[2], nil
}

// VerifyAPIKey compares a presented secret with the stored hash.
func VerifyAPIKey(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// HashPassword and CheckPassword wrap bcrypt for admin user passwords.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueAPIKey generates a key, stores its hash and returns the stored record
// together with the plain key, which is never retrievable again.
func IssueAPIKey(ctx context.Context, keys store.APIKeyStore, name, permission string, expires *time.Time, createdBy string) (*models.APIKey, string, error) {
	if permission != models.PermissionRead && permission != models.PermissionWrite {
		return nil, "", fmt.Errorf("unknown permission %q", permission)
	}
	gen, err := GenerateAPIKey()
	if err != nil {
		return nil, "", err
	}

	k := models.APIKey{
		ID:          uuid.NewString(),
		Name:        name,
		Prefix:      gen.Prefix,
		KeyHash:     gen.Hash,
		Permissions: permission,
		IsActive:    true,
		ExpiresDate: expires,
	}
	if createdBy != "" {
		k.CreatedBy = &createdBy
	}

	created, err := keys.Create(ctx, k)
	if err != nil {
		return nil, "", err
	}
	return created, gen.Key, nil
}
