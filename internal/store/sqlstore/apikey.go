package sqlstore

import (
	"context"
	"time"

	"orgadmin/internal/database"
	"orgadmin/internal/models"
	"orgadmin/internal/store"
)

const apiKeySelect = `SELECT id, name, key_prefix, key_hash, permissions, is_active, expires_date, last_used_date, created_date, created_by
FROM api_keys`

type APIKeyStore struct {
	exec database.Executor
}

var _ store.APIKeyStore = (*APIKeyStore)(nil)

func NewAPIKeyStore(exec database.Executor) *APIKeyStore {
	return &APIKeyStore{exec: exec}
}

func scanAPIKey(row database.Row) models.APIKey {
	return models.APIKey{
		ID:           row.String("id"),
		Name:         row.String("name"),
		Prefix:       row.String("key_prefix"),
		KeyHash:      row.String("key_hash"),
		Permissions:  row.String("permissions"),
		IsActive:     row.Bool("is_active"),
		ExpiresDate:  row.NullTime("expires_date"),
		LastUsedDate: row.NullTime("last_used_date"),
		CreatedDate:  row.Time("created_date"),
		CreatedBy:    row.NullString("created_by"),
	}
}

func (s *APIKeyStore) Create(ctx context.Context, k models.APIKey) (*models.APIKey, error) {
	_, err := run(ctx, s.exec, `INSERT INTO api_keys (id, name, key_prefix, key_hash, permissions, is_active, expires_date, created_date, created_by)
VALUES (@id, @name, @prefix, @keyHash, @permissions, @isActive, @expiresDate, GETDATE(), @createdBy)`,
		database.Params{
			"id":          k.ID,
			"name":        k.Name,
			"prefix":      k.Prefix,
			"keyHash":     k.KeyHash,
			"permissions": k.Permissions,
			"isActive":    k.IsActive,
			"expiresDate": k.ExpiresDate,
			"createdBy":   k.CreatedBy,
		})
	if err != nil {
		return nil, writeError("api key", k.Prefix, err)
	}
	return s.FindByPrefix(ctx, k.Prefix)
}

func (s *APIKeyStore) FindByPrefix(ctx context.Context, prefix string) (*models.APIKey, error) {
	rows, err := query(ctx, s.exec, apiKeySelect+" WHERE key_prefix = @prefix", database.Params{"prefix": prefix})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFound("api key", prefix)
	}
	k := scanAPIKey(rows[0])
	return &k, nil
}

func (s *APIKeyStore) List(ctx context.Context) ([]models.APIKey, error) {
	rows, err := query(ctx, s.exec, apiKeySelect+" ORDER BY created_date DESC, name", nil)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, scanAPIKey), nil
}

func (s *APIKeyStore) UpdateStatus(ctx context.Context, id string, active bool) error {
	n, err := run(ctx, s.exec, "UPDATE api_keys SET is_active = @isActive WHERE id = @id",
		database.Params{"id": id, "isActive": active})
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("api key", id)
	}
	return nil
}

func (s *APIKeyStore) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := run(ctx, s.exec, "UPDATE api_keys SET last_used_date = @at WHERE id = @id",
		database.Params{"id": id, "at": at.UTC()})
	return err
}

func (s *APIKeyStore) Delete(ctx context.Context, id string) error {
	n, err := run(ctx, s.exec, "DELETE FROM api_keys WHERE id = @id", database.Params{"id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("api key", id)
	}
	return nil
}
