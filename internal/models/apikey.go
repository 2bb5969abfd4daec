package models

import "time"

// API key permissions.
const (
	PermissionRead  = "read"
	PermissionWrite = "write"
)

// APIKey grants external programmatic access. Only the hash of the secret is
// persisted; the plain key is shown once at creation.
type APIKey struct {
	ID           string     `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Prefix       string     `json:"prefix" db:"key_prefix"`
	KeyHash      string     `json:"-" db:"key_hash"`
	Permissions  string     `json:"permissions" db:"permissions"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	ExpiresDate  *time.Time `json:"expires_date,omitempty" db:"expires_date"`
	LastUsedDate *time.Time `json:"last_used_date,omitempty" db:"last_used_date"`
	CreatedDate  time.Time  `json:"created_date" db:"created_date"`
	CreatedBy    *string    `json:"created_by,omitempty" db:"created_by"`
}

// Expired reports whether the key has an expiry in the past.
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresDate != nil && now.After(*k.ExpiresDate)
}

// CanWrite reports whether the key carries the write permission.
func (k *APIKey) CanWrite() bool {
	return k.Permissions == PermissionWrite
}
