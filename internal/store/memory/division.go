package memory

import (
	"context"
	"fmt"

	"orgadmin/internal/models"
	"orgadmin/internal/store"
)

type DivisionStore struct {
	s *state
}

var _ store.DivisionStore = (*DivisionStore)(nil)

func (d *DivisionStore) view(v models.Division) models.Division {
	v.CompanyName = d.s.companies[v.CompanyCode].CompanyNameTH
	v.BranchName = nil
	if v.BranchCode != nil {
		if b, ok := d.s.branches[*v.BranchCode]; ok {
			v.BranchName = &b.BranchName
		}
	}
	return v
}

// checkBranch verifies that branch, when set, belongs to company. Callers
// hold the lock.
func (d *DivisionStore) checkBranch(company string, branch *string) error {
	if branch == nil {
		return nil
	}
	b, ok := d.s.branches[*branch]
	if !ok {
		return fmt.Errorf("branch %s does not exist: %w", *branch, store.ErrInvalidReference)
	}
	if b.CompanyCode != company {
		return fmt.Errorf("branch %s belongs to company %s, not %s: %w", *branch, b.CompanyCode, company, store.ErrInvalidReference)
	}
	return nil
}

func (d *DivisionStore) filter(f store.DivisionFilter) []models.Division {
	out := sortedValues(d.s.divisions, func(v models.Division) bool {
		return (f.CompanyCode == "" || v.CompanyCode == f.CompanyCode) &&
			(f.BranchCode == "" || deref(v.BranchCode) == f.BranchCode) &&
			matches(f.Search, v.DivisionCode, v.DivisionName) &&
			flagMatches(f.IsActive, v.IsActive)
	}, func(v models.Division) string { return v.CompanyCode + "\x00" + v.DivisionCode })
	for i := range out {
		out[i] = d.view(out[i])
	}
	return out
}

func (d *DivisionStore) FindAll(ctx context.Context, f store.DivisionFilter) ([]models.Division, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	return d.filter(f), nil
}

func (d *DivisionStore) FindByCode(ctx context.Context, code string) (*models.Division, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	v, ok := d.s.divisions[code]
	if !ok {
		return nil, notFound("division", code)
	}
	v = d.view(v)
	return &v, nil
}

func (d *DivisionStore) FindPaginated(ctx context.Context, page, limit int, f store.DivisionFilter) (*store.Page[models.Division], error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	return paginate(d.filter(f), page, limit), nil
}

func (d *DivisionStore) Create(ctx context.Context, v models.Division) (*models.Division, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	if _, ok := d.s.divisions[v.DivisionCode]; ok {
		return nil, fmt.Errorf("division %s: %w", v.DivisionCode, store.ErrAlreadyExists)
	}
	if _, ok := d.s.companies[v.CompanyCode]; !ok {
		return nil, fmt.Errorf("division %s: company %s: %w", v.DivisionCode, v.CompanyCode, store.ErrInvalidReference)
	}
	if err := d.checkBranch(v.CompanyCode, v.BranchCode); err != nil {
		return nil, err
	}
	v.CreatedDate = d.s.now()
	v.UpdatedDate, v.UpdatedBy = nil, nil
	d.s.divisions[v.DivisionCode] = v

	v = d.view(v)
	return &v, nil
}

func (d *DivisionStore) Update(ctx context.Context, v models.Division) (*models.Division, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	current, ok := d.s.divisions[v.DivisionCode]
	if !ok {
		return nil, notFound("division", v.DivisionCode)
	}
	if err := d.checkBranch(current.CompanyCode, v.BranchCode); err != nil {
		return nil, err
	}
	v.CompanyCode = current.CompanyCode
	v.CreatedDate, v.CreatedBy = current.CreatedDate, current.CreatedBy
	v.UpdatedDate = d.s.timestamp()
	d.s.divisions[v.DivisionCode] = v

	v = d.view(v)
	return &v, nil
}

func (d *DivisionStore) MoveToBranch(ctx context.Context, code string, branchCode *string, actor string) (*models.Division, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	v, ok := d.s.divisions[code]
	if !ok {
		return nil, notFound("division", code)
	}
	if err := d.checkBranch(v.CompanyCode, branchCode); err != nil {
		return nil, err
	}
	v.BranchCode = branchCode
	v.UpdatedDate, v.UpdatedBy = d.s.timestamp(), nullable(actor)
	d.s.divisions[code] = v

	v = d.view(v)
	return &v, nil
}

func (d *DivisionStore) UpdateStatus(ctx context.Context, code string, active bool, actor string) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	v, ok := d.s.divisions[code]
	if !ok {
		return notFound("division", code)
	}
	v.IsActive = active
	v.UpdatedDate, v.UpdatedBy = d.s.timestamp(), nullable(actor)
	d.s.divisions[code] = v
	return nil
}

func (d *DivisionStore) Delete(ctx context.Context, code string) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	if _, ok := d.s.divisions[code]; !ok {
		return notFound("division", code)
	}
	for _, p := range d.s.departments {
		if p.DivisionCode == code {
			return fmt.Errorf("division %s: department %s: %w", code, p.DepartmentCode, store.ErrInUse)
		}
	}
	delete(d.s.divisions, code)
	return nil
}
