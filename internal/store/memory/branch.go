package memory

import (
	"context"
	"fmt"

	"orgadmin/internal/models"
	"orgadmin/internal/store"
)

type BranchStore struct {
	s *state
}

var _ store.BranchStore = (*BranchStore)(nil)

// view fills the joined company name. Callers hold the lock.
func (b *BranchStore) view(v models.Branch) models.Branch {
	v.CompanyName = b.s.companies[v.CompanyCode].CompanyNameTH
	return v
}

func (b *BranchStore) filter(f store.BranchFilter) []models.Branch {
	out := sortedValues(b.s.branches, func(v models.Branch) bool {
		return (f.CompanyCode == "" || v.CompanyCode == f.CompanyCode) &&
			matches(f.Search, v.BranchCode, v.BranchName) &&
			flagMatches(f.IsActive, v.IsActive) &&
			flagMatches(f.IsHeadquarters, v.IsHeadquarters)
	}, func(v models.Branch) string { return v.CompanyCode + "\x00" + v.BranchCode })
	for i := range out {
		out[i] = b.view(out[i])
	}
	return out
}

func (b *BranchStore) FindAll(ctx context.Context, f store.BranchFilter) ([]models.Branch, error) {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	return b.filter(f), nil
}

func (b *BranchStore) FindByCode(ctx context.Context, code string) (*models.Branch, error) {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()

	v, ok := b.s.branches[code]
	if !ok {
		return nil, notFound("branch", code)
	}
	v = b.view(v)
	return &v, nil
}

func (b *BranchStore) FindPaginated(ctx context.Context, page, limit int, f store.BranchFilter) (*store.Page[models.Branch], error) {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	return paginate(b.filter(f), page, limit), nil
}

// clearHeadquarters unsets the flag on every other branch of company.
// Callers hold the write lock.
func (b *BranchStore) clearHeadquarters(company, keep string, actor *string) {
	for code, v := range b.s.branches {
		if v.CompanyCode == company && code != keep && v.IsHeadquarters {
			v.IsHeadquarters = false
			v.UpdatedDate, v.UpdatedBy = b.s.timestamp(), actor
			b.s.branches[code] = v
		}
	}
}

func (b *BranchStore) Create(ctx context.Context, v models.Branch) (*models.Branch, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	if _, ok := b.s.branches[v.BranchCode]; ok {
		return nil, fmt.Errorf("branch %s: %w", v.BranchCode, store.ErrAlreadyExists)
	}
	if _, ok := b.s.companies[v.CompanyCode]; !ok {
		return nil, fmt.Errorf("branch %s: company %s: %w", v.BranchCode, v.CompanyCode, store.ErrInvalidReference)
	}
	if v.IsHeadquarters {
		b.clearHeadquarters(v.CompanyCode, v.BranchCode, v.CreatedBy)
	}
	v.CreatedDate = b.s.now()
	v.UpdatedDate, v.UpdatedBy = nil, nil
	b.s.branches[v.BranchCode] = v

	v = b.view(v)
	return &v, nil
}

func (b *BranchStore) Update(ctx context.Context, v models.Branch) (*models.Branch, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	current, ok := b.s.branches[v.BranchCode]
	if !ok {
		return nil, notFound("branch", v.BranchCode)
	}
	if v.IsHeadquarters {
		b.clearHeadquarters(current.CompanyCode, v.BranchCode, v.UpdatedBy)
	}
	v.CompanyCode = current.CompanyCode
	v.CreatedDate, v.CreatedBy = current.CreatedDate, current.CreatedBy
	v.UpdatedDate = b.s.timestamp()
	b.s.branches[v.BranchCode] = v

	v = b.view(v)
	return &v, nil
}

func (b *BranchStore) SetHeadquarters(ctx context.Context, code string, actor string) (*models.Branch, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	v, ok := b.s.branches[code]
	if !ok {
		return nil, notFound("branch", code)
	}
	b.clearHeadquarters(v.CompanyCode, code, nullable(actor))
	v.IsHeadquarters = true
	v.UpdatedDate, v.UpdatedBy = b.s.timestamp(), nullable(actor)
	b.s.branches[code] = v

	v = b.view(v)
	return &v, nil
}

func (b *BranchStore) UpdateStatus(ctx context.Context, code string, active bool, actor string) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	v, ok := b.s.branches[code]
	if !ok {
		return notFound("branch", code)
	}
	v.IsActive = active
	v.UpdatedDate, v.UpdatedBy = b.s.timestamp(), nullable(actor)
	b.s.branches[code] = v
	return nil
}

func (b *BranchStore) Delete(ctx context.Context, code string) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	if _, ok := b.s.branches[code]; !ok {
		return notFound("branch", code)
	}
	for _, d := range b.s.divisions {
		if d.BranchCode != nil && *d.BranchCode == code {
			return fmt.Errorf("branch %s: division %s: %w", code, d.DivisionCode, store.ErrInUse)
		}
	}
	delete(b.s.branches, code)
	return nil
}
