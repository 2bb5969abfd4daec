package sqlstore

import (
	"context"

	"orgadmin/internal/database"
	"orgadmin/internal/models"
	"orgadmin/internal/store"
)

const companySelect = `SELECT c.company_code, c.company_name_th, c.company_name_en, c.tax_id, c.address, c.phone, c.email, c.website,
c.is_active, c.created_date, c.created_by, c.updated_date, c.updated_by
FROM companies c`

type CompanyStore struct {
	exec database.Executor
}

var _ store.CompanyStore = (*CompanyStore)(nil)

func NewCompanyStore(exec database.Executor) *CompanyStore {
	return &CompanyStore{exec: exec}
}

func scanCompany(row database.Row) models.Company {
	return models.Company{
		CompanyCode:   row.String("company_code"),
		CompanyNameTH: row.String("company_name_th"),
		CompanyNameEN: row.NullString("company_name_en"),
		TaxID:         row.NullString("tax_id"),
		Address:       row.NullString("address"),
		Phone:         row.NullString("phone"),
		Email:         row.NullString("email"),
		Website:       row.NullString("website"),
		IsActive:      row.Bool("is_active"),
		CreatedDate:   row.Time("created_date"),
		CreatedBy:     row.NullString("created_by"),
		UpdatedDate:   row.NullTime("updated_date"),
		UpdatedBy:     row.NullString("updated_by"),
	}
}

func companyWhere(f store.CompanyFilter) *where {
	w := newWhere()
	w.search(f.Search, "c.company_code", "c.company_name_th", "ISNULL(c.company_name_en, '')", "ISNULL(c.tax_id, '')")
	w.boolean("c.is_active", "isActive", f.IsActive)
	return w
}

func (s *CompanyStore) FindAll(ctx context.Context, f store.CompanyFilter) ([]models.Company, error) {
	w := companyWhere(f)
	rows, err := query(ctx, s.exec, companySelect+w.String()+" ORDER BY c.company_code", w.params)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, scanCompany), nil
}

func (s *CompanyStore) FindByCode(ctx context.Context, code string) (*models.Company, error) {
	rows, err := query(ctx, s.exec, companySelect+" WHERE c.company_code = @code", database.Params{"code": code})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFound("company", code)
	}
	c := scanCompany(rows[0])
	return &c, nil
}

func (s *CompanyStore) FindPaginated(ctx context.Context, page, limit int, f store.CompanyFilter) (*store.Page[models.Company], error) {
	w := companyWhere(f)
	return findPage(ctx, s.exec,
		"SELECT COUNT(*) AS total FROM companies c"+w.String(),
		companySelect+w.String()+" ORDER BY c.company_code",
		w.params, page, limit, scanCompany)
}

func (s *CompanyStore) Create(ctx context.Context, c models.Company) (*models.Company, error) {
	_, err := run(ctx, s.exec, `INSERT INTO companies (company_code, company_name_th, company_name_en, tax_id, address, phone, email, website, is_active, created_date, created_by)
VALUES (@code, @nameTH, @nameEN, @taxID, @address, @phone, @email, @website, @isActive, GETDATE(), @createdBy)`,
		database.Params{
			"code":      c.CompanyCode,
			"nameTH":    c.CompanyNameTH,
			"nameEN":    c.CompanyNameEN,
			"taxID":     c.TaxID,
			"address":   c.Address,
			"phone":     c.Phone,
			"email":     c.Email,
			"website":   c.Website,
			"isActive":  c.IsActive,
			"createdBy": c.CreatedBy,
		})
	if err != nil {
		return nil, writeError("company", c.CompanyCode, err)
	}
	return s.FindByCode(ctx, c.CompanyCode)
}

func (s *CompanyStore) Update(ctx context.Context, c models.Company) (*models.Company, error) {
	n, err := run(ctx, s.exec, `UPDATE companies SET company_name_th = @nameTH, company_name_en = @nameEN, tax_id = @taxID,
address = @address, phone = @phone, email = @email, website = @website, is_active = @isActive,
updated_date = GETDATE(), updated_by = @updatedBy
WHERE company_code = @code`,
		database.Params{
			"code":      c.CompanyCode,
			"nameTH":    c.CompanyNameTH,
			"nameEN":    c.CompanyNameEN,
			"taxID":     c.TaxID,
			"address":   c.Address,
			"phone":     c.Phone,
			"email":     c.Email,
			"website":   c.Website,
			"isActive":  c.IsActive,
			"updatedBy": c.UpdatedBy,
		})
	if err != nil {
		return nil, writeError("company", c.CompanyCode, err)
	}
	if n == 0 {
		return nil, notFound("company", c.CompanyCode)
	}
	return s.FindByCode(ctx, c.CompanyCode)
}

func (s *CompanyStore) UpdateStatus(ctx context.Context, code string, active bool, actor string) error {
	n, err := run(ctx, s.exec,
		"UPDATE companies SET is_active = @isActive, updated_date = GETDATE(), updated_by = @actor WHERE company_code = @code",
		database.Params{"code": code, "isActive": active, "actor": nullable(actor)})
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("company", code)
	}
	return nil
}

// Delete removes children bottom-up in one transaction so foreign keys hold
// at every step.
func (s *CompanyStore) Delete(ctx context.Context, code string) error {
	params := database.Params{"code": code}
	return s.exec.WithTx(ctx, func(q database.Querier) error {
		steps := []string{
			"DELETE FROM departments WHERE division_code IN (SELECT division_code FROM divisions WHERE company_code = @code)",
			"DELETE FROM divisions WHERE company_code = @code",
			"DELETE FROM branches WHERE company_code = @code",
		}
		for _, stmt := range steps {
			if _, err := run(ctx, q, stmt, params); err != nil {
				return deleteError("company", code, err)
			}
		}

		n, err := run(ctx, q, "DELETE FROM companies WHERE company_code = @code", params)
		if err != nil {
			return deleteError("company", code, err)
		}
		if n == 0 {
			return notFound("company", code)
		}
		return nil
	})
}
