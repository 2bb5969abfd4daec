package memory

import (
	"context"
	"fmt"

	"orgadmin/internal/models"
	"orgadmin/internal/store"
)

type DepartmentStore struct {
	s *state
}

var _ store.DepartmentStore = (*DepartmentStore)(nil)

func (d *DepartmentStore) view(v models.Department) models.Department {
	div := d.s.divisions[v.DivisionCode]
	v.DivisionName = div.DivisionName
	v.CompanyCode = div.CompanyCode
	v.CompanyName = d.s.companies[div.CompanyCode].CompanyNameTH
	return v
}

func (d *DepartmentStore) filter(f store.DepartmentFilter) []models.Department {
	out := sortedValues(d.s.departments, func(v models.Department) bool {
		return (f.CompanyCode == "" || d.s.divisions[v.DivisionCode].CompanyCode == f.CompanyCode) &&
			(f.DivisionCode == "" || v.DivisionCode == f.DivisionCode) &&
			matches(f.Search, v.DepartmentCode, v.DepartmentName) &&
			flagMatches(f.IsActive, v.IsActive)
	}, func(v models.Department) string { return v.DivisionCode + "\x00" + v.DepartmentCode })
	for i := range out {
		out[i] = d.view(out[i])
	}
	return out
}

func (d *DepartmentStore) FindAll(ctx context.Context, f store.DepartmentFilter) ([]models.Department, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	return d.filter(f), nil
}

func (d *DepartmentStore) FindByCode(ctx context.Context, code string) (*models.Department, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	v, ok := d.s.departments[code]
	if !ok {
		return nil, notFound("department", code)
	}
	v = d.view(v)
	return &v, nil
}

func (d *DepartmentStore) FindPaginated(ctx context.Context, page, limit int, f store.DepartmentFilter) (*store.Page[models.Department], error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	return paginate(d.filter(f), page, limit), nil
}

func (d *DepartmentStore) Create(ctx context.Context, v models.Department) (*models.Department, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	if _, ok := d.s.departments[v.DepartmentCode]; ok {
		return nil, fmt.Errorf("department %s: %w", v.DepartmentCode, store.ErrAlreadyExists)
	}
	if _, ok := d.s.divisions[v.DivisionCode]; !ok {
		return nil, fmt.Errorf("department %s: division %s: %w", v.DepartmentCode, v.DivisionCode, store.ErrInvalidReference)
	}
	v.CreatedDate = d.s.now()
	v.UpdatedDate, v.UpdatedBy = nil, nil
	d.s.departments[v.DepartmentCode] = v

	v = d.view(v)
	return &v, nil
}

func (d *DepartmentStore) Update(ctx context.Context, v models.Department) (*models.Department, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	current, ok := d.s.departments[v.DepartmentCode]
	if !ok {
		return nil, notFound("department", v.DepartmentCode)
	}
	if _, ok := d.s.divisions[v.DivisionCode]; !ok {
		return nil, fmt.Errorf("department %s: division %s: %w", v.DepartmentCode, v.DivisionCode, store.ErrInvalidReference)
	}
	v.CreatedDate, v.CreatedBy = current.CreatedDate, current.CreatedBy
	v.UpdatedDate = d.s.timestamp()
	d.s.departments[v.DepartmentCode] = v

	v = d.view(v)
	return &v, nil
}

func (d *DepartmentStore) UpdateStatus(ctx context.Context, code string, active bool, actor string) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	v, ok := d.s.departments[code]
	if !ok {
		return notFound("department", code)
	}
	v.IsActive = active
	v.UpdatedDate, v.UpdatedBy = d.s.timestamp(), nullable(actor)
	d.s.departments[code] = v
	return nil
}

func (d *DepartmentStore) Delete(ctx context.Context, code string) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	if _, ok := d.s.departments[code]; !ok {
		return notFound("department", code)
	}
	delete(d.s.departments, code)
	return nil
}
