package sqlstore

import (
	"context"

	"orgadmin/internal/database"
	"orgadmin/internal/models"
	"orgadmin/internal/store"
)

const departmentSelect = `SELECT dp.department_code, dp.department_name, dp.division_code, d.division_name, d.company_code, c.company_name_th,
dp.is_active, dp.created_date, dp.created_by, dp.updated_date, dp.updated_by
FROM departments dp
JOIN divisions d ON d.division_code = dp.division_code
JOIN companies c ON c.company_code = d.company_code`

type DepartmentStore struct {
	exec database.Executor
}

var _ store.DepartmentStore = (*DepartmentStore)(nil)

func NewDepartmentStore(exec database.Executor) *DepartmentStore {
	return &DepartmentStore{exec: exec}
}

func scanDepartment(row database.Row) models.Department {
	return models.Department{
		DepartmentCode: row.String("department_code"),
		DepartmentName: row.String("department_name"),
		DivisionCode:   row.String("division_code"),
		DivisionName:   row.String("division_name"),
		CompanyCode:    row.String("company_code"),
		CompanyName:    row.String("company_name_th"),
		IsActive:       row.Bool("is_active"),
		CreatedDate:    row.Time("created_date"),
		CreatedBy:      row.NullString("created_by"),
		UpdatedDate:    row.NullTime("updated_date"),
		UpdatedBy:      row.NullString("updated_by"),
	}
}

func departmentWhere(f store.DepartmentFilter) *where {
	w := newWhere()
	if f.CompanyCode != "" {
		w.eq("d.company_code", "companyCode", f.CompanyCode)
	}
	if f.DivisionCode != "" {
		w.eq("dp.division_code", "divisionCode", f.DivisionCode)
	}
	w.search(f.Search, "dp.department_code", "dp.department_name")
	w.boolean("dp.is_active", "isActive", f.IsActive)
	return w
}

func (s *DepartmentStore) FindAll(ctx context.Context, f store.DepartmentFilter) ([]models.Department, error) {
	w := departmentWhere(f)
	rows, err := query(ctx, s.exec, departmentSelect+w.String()+" ORDER BY dp.division_code, dp.department_code", w.params)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, scanDepartment), nil
}

func (s *DepartmentStore) FindByCode(ctx context.Context, code string) (*models.Department, error) {
	rows, err := query(ctx, s.exec, departmentSelect+" WHERE dp.department_code = @code", database.Params{"code": code})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFound("department", code)
	}
	d := scanDepartment(rows[0])
	return &d, nil
}

func (s *DepartmentStore) FindPaginated(ctx context.Context, page, limit int, f store.DepartmentFilter) (*store.Page[models.Department], error) {
	w := departmentWhere(f)
	return findPage(ctx, s.exec,
		"SELECT COUNT(*) AS total FROM departments dp JOIN divisions d ON d.division_code = dp.division_code"+w.String(),
		departmentSelect+w.String()+" ORDER BY dp.division_code, dp.department_code",
		w.params, page, limit, scanDepartment)
}

func (s *DepartmentStore) Create(ctx context.Context, d models.Department) (*models.Department, error) {
	_, err := run(ctx, s.exec, `INSERT INTO departments (department_code, department_name, division_code, is_active, created_date, created_by)
VALUES (@code, @name, @divisionCode, @isActive, GETDATE(), @createdBy)`,
		database.Params{
			"code":         d.DepartmentCode,
			"name":         d.DepartmentName,
			"divisionCode": d.DivisionCode,
			"isActive":     d.IsActive,
			"createdBy":    d.CreatedBy,
		})
	if err != nil {
		return nil, writeError("department", d.DepartmentCode, err)
	}
	return s.FindByCode(ctx, d.DepartmentCode)
}

func (s *DepartmentStore) Update(ctx context.Context, d models.Department) (*models.Department, error) {
	n, err := run(ctx, s.exec, `UPDATE departments SET department_name = @name, division_code = @divisionCode, is_active = @isActive,
updated_date = GETDATE(), updated_by = @updatedBy
WHERE department_code = @code`,
		database.Params{
			"code":         d.DepartmentCode,
			"name":         d.DepartmentName,
			"divisionCode": d.DivisionCode,
			"isActive":     d.IsActive,
			"updatedBy":    d.UpdatedBy,
		})
	if err != nil {
		return nil, writeError("department", d.DepartmentCode, err)
	}
	if n == 0 {
		return nil, notFound("department", d.DepartmentCode)
	}
	return s.FindByCode(ctx, d.DepartmentCode)
}

func (s *DepartmentStore) UpdateStatus(ctx context.Context, code string, active bool, actor string) error {
	n, err := run(ctx, s.exec,
		"UPDATE departments SET is_active = @isActive, updated_date = GETDATE(), updated_by = @actor WHERE department_code = @code",
		database.Params{"code": code, "isActive": active, "actor": nullable(actor)})
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("department", code)
	}
	return nil
}

func (s *DepartmentStore) Delete(ctx context.Context, code string) error {
	n, err := run(ctx, s.exec, "DELETE FROM departments WHERE department_code = @code", database.Params{"code": code})
	if err != nil {
		return deleteError("department", code, err)
	}
	if n == 0 {
		return notFound("department", code)
	}
	return nil
}
