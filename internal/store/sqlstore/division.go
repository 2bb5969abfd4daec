package sqlstore

import (
	"context"
	"fmt"

	"orgadmin/internal/database"
	"orgadmin/internal/models"
	"orgadmin/internal/store"
)

const divisionSelect = `SELECT d.division_code, d.division_name, d.company_code, c.company_name_th, d.branch_code, b.branch_name,
d.is_active, d.created_date, d.created_by, d.updated_date, d.updated_by
FROM divisions d
JOIN companies c ON c.company_code = d.company_code
LEFT JOIN branches b ON b.branch_code = d.branch_code`

type DivisionStore struct {
	exec database.Executor
}

var _ store.DivisionStore = (*DivisionStore)(nil)

func NewDivisionStore(exec database.Executor) *DivisionStore {
	return &DivisionStore{exec: exec}
}

func scanDivision(row database.Row) models.Division {
	return models.Division{
		DivisionCode: row.String("division_code"),
		DivisionName: row.String("division_name"),
		CompanyCode:  row.String("company_code"),
		CompanyName:  row.String("company_name_th"),
		BranchCode:   row.NullString("branch_code"),
		BranchName:   row.NullString("branch_name"),
		IsActive:     row.Bool("is_active"),
		CreatedDate:  row.Time("created_date"),
		CreatedBy:    row.NullString("created_by"),
		UpdatedDate:  row.NullTime("updated_date"),
		UpdatedBy:    row.NullString("updated_by"),
	}
}

func divisionWhere(f store.DivisionFilter) *where {
	w := newWhere()
	if f.CompanyCode != "" {
		w.eq("d.company_code", "companyCode", f.CompanyCode)
	}
	if f.BranchCode != "" {
		w.eq("d.branch_code", "branchCode", f.BranchCode)
	}
	w.search(f.Search, "d.division_code", "d.division_name")
	w.boolean("d.is_active", "isActive", f.IsActive)
	return w
}

// checkBranch verifies that branchCode, when set, names a branch of companyCode.
func checkBranch(ctx context.Context, q database.Querier, companyCode string, branchCode *string) error {
	if branchCode == nil {
		return nil
	}
	rows, err := query(ctx, q, "SELECT company_code FROM branches WHERE branch_code = @code", database.Params{"code": *branchCode})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("branch %s does not exist: %w", *branchCode, store.ErrInvalidReference)
	}
	if owner := rows[0].String("company_code"); owner != companyCode {
		return fmt.Errorf("branch %s belongs to company %s, not %s: %w", *branchCode, owner, companyCode, store.ErrInvalidReference)
	}
	return nil
}

func (s *DivisionStore) FindAll(ctx context.Context, f store.DivisionFilter) ([]models.Division, error) {
	w := divisionWhere(f)
	rows, err := query(ctx, s.exec, divisionSelect+w.String()+" ORDER BY d.company_code, d.division_code", w.params)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, scanDivision), nil
}

func (s *DivisionStore) FindByCode(ctx context.Context, code string) (*models.Division, error) {
	rows, err := query(ctx, s.exec, divisionSelect+" WHERE d.division_code = @code", database.Params{"code": code})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFound("division", code)
	}
	d := scanDivision(rows[0])
	return &d, nil
}

func (s *DivisionStore) FindPaginated(ctx context.Context, page, limit int, f store.DivisionFilter) (*store.Page[models.Division], error) {
	w := divisionWhere(f)
	return findPage(ctx, s.exec,
		"SELECT COUNT(*) AS total FROM divisions d"+w.String(),
		divisionSelect+w.String()+" ORDER BY d.company_code, d.division_code",
		w.params, page, limit, scanDivision)
}

func (s *DivisionStore) Create(ctx context.Context, d models.Division) (*models.Division, error) {
	err := s.exec.WithTx(ctx, func(q database.Querier) error {
		if err := checkBranch(ctx, q, d.CompanyCode, d.BranchCode); err != nil {
			return err
		}
		_, err := run(ctx, q, `INSERT INTO divisions (division_code, division_name, company_code, branch_code, is_active, created_date, created_by)
VALUES (@code, @name, @companyCode, @branchCode, @isActive, GETDATE(), @createdBy)`,
			database.Params{
				"code":        d.DivisionCode,
				"name":        d.DivisionName,
				"companyCode": d.CompanyCode,
				"branchCode":  d.BranchCode,
				"isActive":    d.IsActive,
				"createdBy":   d.CreatedBy,
			})
		return err
	})
	if err != nil {
		return nil, writeError("division", d.DivisionCode, err)
	}
	return s.FindByCode(ctx, d.DivisionCode)
}

// Update changes the name, branch and active flag. The owning company cannot
// change; a new branch must belong to it.
func (s *DivisionStore) Update(ctx context.Context, d models.Division) (*models.Division, error) {
	current, err := s.FindByCode(ctx, d.DivisionCode)
	if err != nil {
		return nil, err
	}

	err = s.exec.WithTx(ctx, func(q database.Querier) error {
		if err := checkBranch(ctx, q, current.CompanyCode, d.BranchCode); err != nil {
			return err
		}
		n, err := run(ctx, q, `UPDATE divisions SET division_name = @name, branch_code = @branchCode, is_active = @isActive,
updated_date = GETDATE(), updated_by = @updatedBy
WHERE division_code = @code`,
			database.Params{
				"code":       d.DivisionCode,
				"name":       d.DivisionName,
				"branchCode": d.BranchCode,
				"isActive":   d.IsActive,
				"updatedBy":  d.UpdatedBy,
			})
		if err != nil {
			return err
		}
		if n == 0 {
			return notFound("division", d.DivisionCode)
		}
		return nil
	})
	if err != nil {
		return nil, writeError("division", d.DivisionCode, err)
	}
	return s.FindByCode(ctx, d.DivisionCode)
}

func (s *DivisionStore) MoveToBranch(ctx context.Context, code string, branchCode *string, actor string) (*models.Division, error) {
	current, err := s.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	err = s.exec.WithTx(ctx, func(q database.Querier) error {
		if err := checkBranch(ctx, q, current.CompanyCode, branchCode); err != nil {
			return err
		}
		n, err := run(ctx, q,
			"UPDATE divisions SET branch_code = @branchCode, updated_date = GETDATE(), updated_by = @actor WHERE division_code = @code",
			database.Params{"code": code, "branchCode": branchCode, "actor": nullable(actor)})
		if err != nil {
			return err
		}
		if n == 0 {
			return notFound("division", code)
		}
		return nil
	})
	if err != nil {
		return nil, writeError("division", code, err)
	}
	return s.FindByCode(ctx, code)
}

func (s *DivisionStore) UpdateStatus(ctx context.Context, code string, active bool, actor string) error {
	n, err := run(ctx, s.exec,
		"UPDATE divisions SET is_active = @isActive, updated_date = GETDATE(), updated_by = @actor WHERE division_code = @code",
		database.Params{"code": code, "isActive": active, "actor": nullable(actor)})
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("division", code)
	}
	return nil
}

func (s *DivisionStore) Delete(ctx context.Context, code string) error {
	n, err := run(ctx, s.exec, "DELETE FROM divisions WHERE division_code = @code", database.Params{"code": code})
	if err != nil {
		return deleteError("division", code, err)
	}
	if n == 0 {
		return notFound("division", code)
	}
	return nil
}
