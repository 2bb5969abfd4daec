package sqlstore

import (
	"context"

	"orgadmin/internal/database"
	"orgadmin/internal/models"
	"orgadmin/internal/store"
)

const branchSelect = `SELECT b.branch_code, b.branch_name, b.company_code, c.company_name_th, b.is_headquarters, b.address, b.phone,
b.is_active, b.created_date, b.created_by, b.updated_date, b.updated_by
FROM branches b
JOIN companies c ON c.company_code = b.company_code`

const clearHeadquarters = `UPDATE branches SET is_headquarters = 0, updated_date = GETDATE(), updated_by = @actor
WHERE company_code = @companyCode AND branch_code <> @code AND is_headquarters = 1`

// BranchStore keeps at most one headquarters per company: the flag is cleared
// on siblings and set on the target inside one transaction, and writers for
// the same company are serialized.
type BranchStore struct {
	exec  database.Executor
	locks *keyedMutex
}

var _ store.BranchStore = (*BranchStore)(nil)

func NewBranchStore(exec database.Executor) *BranchStore {
	return &BranchStore{exec: exec, locks: newKeyedMutex()}
}

func scanBranch(row database.Row) models.Branch {
	return models.Branch{
		BranchCode:     row.String("branch_code"),
		BranchName:     row.String("branch_name"),
		CompanyCode:    row.String("company_code"),
		CompanyName:    row.String("company_name_th"),
		IsHeadquarters: row.Bool("is_headquarters"),
		Address:        row.NullString("address"),
		Phone:          row.NullString("phone"),
		IsActive:       row.Bool("is_active"),
		CreatedDate:    row.Time("created_date"),
		CreatedBy:      row.NullString("created_by"),
		UpdatedDate:    row.NullTime("updated_date"),
		UpdatedBy:      row.NullString("updated_by"),
	}
}

func branchWhere(f store.BranchFilter) *where {
	w := newWhere()
	if f.CompanyCode != "" {
		w.eq("b.company_code", "companyCode", f.CompanyCode)
	}
	w.search(f.Search, "b.branch_code", "b.branch_name")
	w.boolean("b.is_active", "isActive", f.IsActive)
	w.boolean("b.is_headquarters", "isHeadquarters", f.IsHeadquarters)
	return w
}

func (s *BranchStore) FindAll(ctx context.Context, f store.BranchFilter) ([]models.Branch, error) {
	w := branchWhere(f)
	rows, err := query(ctx, s.exec, branchSelect+w.String()+" ORDER BY b.company_code, b.branch_code", w.params)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, scanBranch), nil
}

func (s *BranchStore) FindByCode(ctx context.Context, code string) (*models.Branch, error) {
	return s.findByCode(ctx, s.exec, code)
}

func (s *BranchStore) findByCode(ctx context.Context, q database.Querier, code string) (*models.Branch, error) {
	rows, err := query(ctx, q, branchSelect+" WHERE b.branch_code = @code", database.Params{"code": code})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFound("branch", code)
	}
	b := scanBranch(rows[0])
	return &b, nil
}

func (s *BranchStore) FindPaginated(ctx context.Context, page, limit int, f store.BranchFilter) (*store.Page[models.Branch], error) {
	w := branchWhere(f)
	return findPage(ctx, s.exec,
		"SELECT COUNT(*) AS total FROM branches b JOIN companies c ON c.company_code = b.company_code"+w.String(),
		branchSelect+w.String()+" ORDER BY b.company_code, b.branch_code",
		w.params, page, limit, scanBranch)
}

func (s *BranchStore) Create(ctx context.Context, b models.Branch) (*models.Branch, error) {
	unlock := s.locks.Lock(b.CompanyCode)
	defer unlock()

	err := s.exec.WithTx(ctx, func(q database.Querier) error {
		if b.IsHeadquarters {
			params := database.Params{"companyCode": b.CompanyCode, "code": b.BranchCode, "actor": b.CreatedBy}
			if _, err := run(ctx, q, clearHeadquarters, params); err != nil {
				return err
			}
		}

		_, err := run(ctx, q, `INSERT INTO branches (branch_code, branch_name, company_code, is_headquarters, address, phone, is_active, created_date, created_by)
VALUES (@code, @name, @companyCode, @isHeadquarters, @address, @phone, @isActive, GETDATE(), @createdBy)`,
			database.Params{
				"code":           b.BranchCode,
				"name":           b.BranchName,
				"companyCode":    b.CompanyCode,
				"isHeadquarters": b.IsHeadquarters,
				"address":        b.Address,
				"phone":          b.Phone,
				"isActive":       b.IsActive,
				"createdBy":      b.CreatedBy,
			})
		return err
	})
	if err != nil {
		return nil, writeError("branch", b.BranchCode, err)
	}
	return s.FindByCode(ctx, b.BranchCode)
}

// Update changes the mutable fields. The owning company cannot change.
func (s *BranchStore) Update(ctx context.Context, b models.Branch) (*models.Branch, error) {
	current, err := s.FindByCode(ctx, b.BranchCode)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(current.CompanyCode)
	defer unlock()

	err = s.exec.WithTx(ctx, func(q database.Querier) error {
		if b.IsHeadquarters {
			params := database.Params{"companyCode": current.CompanyCode, "code": b.BranchCode, "actor": b.UpdatedBy}
			if _, err := run(ctx, q, clearHeadquarters, params); err != nil {
				return err
			}
		}

		n, err := run(ctx, q, `UPDATE branches SET branch_name = @name, is_headquarters = @isHeadquarters, address = @address, phone = @phone,
is_active = @isActive, updated_date = GETDATE(), updated_by = @updatedBy
WHERE branch_code = @code`,
			database.Params{
				"code":           b.BranchCode,
				"name":           b.BranchName,
				"isHeadquarters": b.IsHeadquarters,
				"address":        b.Address,
				"phone":          b.Phone,
				"isActive":       b.IsActive,
				"updatedBy":      b.UpdatedBy,
			})
		if err != nil {
			return err
		}
		if n == 0 {
			return notFound("branch", b.BranchCode)
		}
		return nil
	})
	if err != nil {
		return nil, writeError("branch", b.BranchCode, err)
	}
	return s.FindByCode(ctx, b.BranchCode)
}

func (s *BranchStore) SetHeadquarters(ctx context.Context, code string, actor string) (*models.Branch, error) {
	current, err := s.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(current.CompanyCode)
	defer unlock()

	params := database.Params{"companyCode": current.CompanyCode, "code": code, "actor": nullable(actor)}
	err = s.exec.WithTx(ctx, func(q database.Querier) error {
		if _, err := run(ctx, q, clearHeadquarters, params); err != nil {
			return err
		}
		n, err := run(ctx, q,
			"UPDATE branches SET is_headquarters = 1, updated_date = GETDATE(), updated_by = @actor WHERE branch_code = @code AND company_code = @companyCode",
			params)
		if err != nil {
			return err
		}
		if n == 0 {
			return notFound("branch", code)
		}
		return nil
	})
	if err != nil {
		return nil, writeError("branch", code, err)
	}
	return s.FindByCode(ctx, code)
}

func (s *BranchStore) UpdateStatus(ctx context.Context, code string, active bool, actor string) error {
	n, err := run(ctx, s.exec,
		"UPDATE branches SET is_active = @isActive, updated_date = GETDATE(), updated_by = @actor WHERE branch_code = @code",
		database.Params{"code": code, "isActive": active, "actor": nullable(actor)})
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("branch", code)
	}
	return nil
}

func (s *BranchStore) Delete(ctx context.Context, code string) error {
	n, err := run(ctx, s.exec, "DELETE FROM branches WHERE branch_code = @code", database.Params{"code": code})
	if err != nil {
		return deleteError("branch", code, err)
	}
	if n == 0 {
		return notFound("branch", code)
	}
	return nil
}
