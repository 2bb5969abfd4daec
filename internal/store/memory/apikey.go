package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"orgadmin/internal/models"
	"orgadmin/internal/store"
)

type APIKeyStore struct {
	s *state
}

var _ store.APIKeyStore = (*APIKeyStore)(nil)

func (a *APIKeyStore) Create(ctx context.Context, k models.APIKey) (*models.APIKey, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	for _, existing := range a.s.apiKeys {
		if existing.Prefix == k.Prefix {
			return nil, fmt.Errorf("api key %s: %w", k.Prefix, store.ErrAlreadyExists)
		}
	}
	if _, ok := a.s.apiKeys[k.ID]; ok {
		return nil, fmt.Errorf("api key %s: %w", k.ID, store.ErrAlreadyExists)
	}
	k.CreatedDate = a.s.now()
	a.s.apiKeys[k.ID] = k
	return &k, nil
}

func (a *APIKeyStore) FindByPrefix(ctx context.Context, prefix string) (*models.APIKey, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	for _, k := range a.s.apiKeys {
		if k.Prefix == prefix {
			return &k, nil
		}
	}
	return nil, notFound("api key", prefix)
}

func (a *APIKeyStore) List(ctx context.Context) ([]models.APIKey, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	out := make([]models.APIKey, 0, len(a.s.apiKeys))
	for _, k := range a.s.apiKeys {
		out = append(out, k)
	}
	slices.SortFunc(out, func(x, y models.APIKey) int {
		if c := y.CreatedDate.Compare(x.CreatedDate); c != 0 {
			return c
		}
		return cmp.Compare(x.Name, y.Name)
	})
	return out, nil
}

func (a *APIKeyStore) UpdateStatus(ctx context.Context, id string, active bool) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	k, ok := a.s.apiKeys[id]
	if !ok {
		return notFound("api key", id)
	}
	k.IsActive = active
	a.s.apiKeys[id] = k
	return nil
}

func (a *APIKeyStore) Touch(ctx context.Context, id string, at time.Time) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	if k, ok := a.s.apiKeys[id]; ok {
		k.LastUsedDate = &at
		a.s.apiKeys[id] = k
	}
	return nil
}

func (a *APIKeyStore) Delete(ctx context.Context, id string) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	if _, ok := a.s.apiKeys[id]; !ok {
		return notFound("api key", id)
	}
	delete(a.s.apiKeys, id)
	return nil
}
