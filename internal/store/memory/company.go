package memory

import (
	"context"
	"fmt"

	"orgadmin/internal/models"
	"orgadmin/internal/store"
)

type CompanyStore struct {
	s *state
}

var _ store.CompanyStore = (*CompanyStore)(nil)

func (c *CompanyStore) FindAll(ctx context.Context, f store.CompanyFilter) ([]models.Company, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	return c.filter(f), nil
}

func (c *CompanyStore) filter(f store.CompanyFilter) []models.Company {
	return sortedValues(c.s.companies, func(v models.Company) bool {
		return matches(f.Search, v.CompanyCode, v.CompanyNameTH, deref(v.CompanyNameEN), deref(v.TaxID)) &&
			flagMatches(f.IsActive, v.IsActive)
	}, func(v models.Company) string { return v.CompanyCode })
}

func (c *CompanyStore) FindByCode(ctx context.Context, code string) (*models.Company, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	v, ok := c.s.companies[code]
	if !ok {
		return nil, notFound("company", code)
	}
	return &v, nil
}

func (c *CompanyStore) FindPaginated(ctx context.Context, page, limit int, f store.CompanyFilter) (*store.Page[models.Company], error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	return paginate(c.filter(f), page, limit), nil
}

func (c *CompanyStore) Create(ctx context.Context, v models.Company) (*models.Company, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if _, ok := c.s.companies[v.CompanyCode]; ok {
		return nil, fmt.Errorf("company %s: %w", v.CompanyCode, store.ErrAlreadyExists)
	}
	v.CreatedDate = c.s.now()
	v.UpdatedDate, v.UpdatedBy = nil, nil
	c.s.companies[v.CompanyCode] = v
	return &v, nil
}

func (c *CompanyStore) Update(ctx context.Context, v models.Company) (*models.Company, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	current, ok := c.s.companies[v.CompanyCode]
	if !ok {
		return nil, notFound("company", v.CompanyCode)
	}
	v.CreatedDate, v.CreatedBy = current.CreatedDate, current.CreatedBy
	v.UpdatedDate = c.s.timestamp()
	c.s.companies[v.CompanyCode] = v
	return &v, nil
}

func (c *CompanyStore) UpdateStatus(ctx context.Context, code string, active bool, actor string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	v, ok := c.s.companies[code]
	if !ok {
		return notFound("company", code)
	}
	v.IsActive = active
	v.UpdatedDate, v.UpdatedBy = c.s.timestamp(), nullable(actor)
	c.s.companies[code] = v
	return nil
}

func (c *CompanyStore) Delete(ctx context.Context, code string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if _, ok := c.s.companies[code]; !ok {
		return notFound("company", code)
	}
	for dc, d := range c.s.divisions {
		if d.CompanyCode != code {
			continue
		}
		for pc, p := range c.s.departments {
			if p.DivisionCode == dc {
				delete(c.s.departments, pc)
			}
		}
		delete(c.s.divisions, dc)
	}
	for bc, b := range c.s.branches {
		if b.CompanyCode == code {
			delete(c.s.branches, bc)
		}
	}
	delete(c.s.companies, code)
	return nil
}
