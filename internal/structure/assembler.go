// Package structure turns the flat rows of the hierarchy join into the nested
// company tree served by the structure endpoints.
package structure

import "orgadmin/internal/database"

// Column names the assembler reads from each row.
const (
	ColCompanyCode        = "company_code"
	ColCompanyNameTH      = "company_name_th"
	ColCompanyNameEN      = "company_name_en"
	ColTaxID              = "tax_id"
	ColCompanyIsActive    = "company_is_active"
	ColBranchCode         = "branch_code"
	ColBranchName         = "branch_name"
	ColIsHeadquarters     = "is_headquarters"
	ColBranchIsActive     = "branch_is_active"
	ColDivisionCode       = "division_code"
	ColDivisionName       = "division_name"
	ColDivisionIsActive   = "division_is_active"
	ColDepartmentCode     = "department_code"
	ColDepartmentName     = "department_name"
	ColDepartmentIsActive = "department_is_active"
)

type Department struct {
	DepartmentCode string `json:"department_code"`
	DepartmentName string `json:"department_name"`
	IsActive       bool   `json:"is_active"`
}

type Division struct {
	DivisionCode string        `json:"division_code"`
	DivisionName string        `json:"division_name"`
	IsActive     bool          `json:"is_active"`
	Departments  []*Department `json:"departments"`
}

type Branch struct {
	BranchCode     string      `json:"branch_code"`
	BranchName     string      `json:"branch_name"`
	IsHeadquarters bool        `json:"is_headquarters"`
	IsActive       bool        `json:"is_active"`
	Divisions      []*Division `json:"divisions"`
}

// Organization is one company with its branches and the divisions that sit
// directly under it.
type Organization struct {
	CompanyCode   string      `json:"company_code"`
	CompanyNameTH string      `json:"company_name_th"`
	CompanyNameEN *string     `json:"company_name_en"`
	TaxID         *string     `json:"tax_id"`
	IsActive      bool        `json:"is_active"`
	Branches      []*Branch   `json:"branches"`
	Divisions     []*Division `json:"divisions"`

	branches map[string]*Branch
}

// Inconsistency describes a row whose flag disagrees with the node built from
// an earlier row. The earlier value is kept.
type Inconsistency struct {
	Level string
	Code  string
	Field string
	Kept  bool
	Seen  bool
}

type Options struct {
	// ActiveOnly drops every node whose own active flag is false.
	ActiveOnly bool

	// OnInconsistent, when set, is called for each conflicting flag.
	OnInconsistent func(Inconsistency)
}

// Assemble groups rows into organizations in first-seen order. Rows without a
// company code are skipped; it never fails.
func Assemble(rows []database.Row, opts Options) []*Organization {
	a := assembler{
		opts:  opts,
		order: []*Organization{},
		index: make(map[string]*Organization),
	}
	for _, row := range rows {
		a.add(row)
	}
	return a.order
}

type assembler struct {
	opts  Options
	order []*Organization
	index map[string]*Organization
}

func (a *assembler) add(row database.Row) {
	code := row.String(ColCompanyCode)
	if code == "" {
		return
	}

	active := row.Bool(ColCompanyIsActive)
	if a.opts.ActiveOnly && !active {
		return
	}

	org, ok := a.index[code]
	if !ok {
		org = &Organization{
			CompanyCode:   code,
			CompanyNameTH: row.String(ColCompanyNameTH),
			CompanyNameEN: row.NullString(ColCompanyNameEN),
			TaxID:         row.NullString(ColTaxID),
			IsActive:      active,
			Branches:      []*Branch{},
			Divisions:     []*Division{},
			branches:      make(map[string]*Branch),
		}
		a.index[code] = org
		a.order = append(a.order, org)
	} else {
		a.check("company", code, "is_active", org.IsActive, active)
	}

	if branchCode := row.String(ColBranchCode); branchCode != "" {
		branch := a.branch(org, branchCode, row)
		if branch == nil {
			return
		}
		branch.Divisions = a.attachDivision(branch.Divisions, row)
		return
	}

	org.Divisions = a.attachDivision(org.Divisions, row)
}

func (a *assembler) branch(org *Organization, code string, row database.Row) *Branch {
	active := row.Bool(ColBranchIsActive)
	if a.opts.ActiveOnly && !active {
		return nil
	}

	hq := row.Bool(ColIsHeadquarters)
	if b, ok := org.branches[code]; ok {
		a.check("branch", code, "is_active", b.IsActive, active)
		a.check("branch", code, "is_headquarters", b.IsHeadquarters, hq)
		return b
	}

	b := &Branch{
		BranchCode:     code,
		BranchName:     row.String(ColBranchName),
		IsHeadquarters: hq,
		IsActive:       active,
		Divisions:      []*Division{},
	}
	org.branches[code] = b
	org.Branches = append(org.Branches, b)
	return b
}

// attachDivision finds or creates the row's division in list and attaches its
// department.
func (a *assembler) attachDivision(list []*Division, row database.Row) []*Division {
	code := row.String(ColDivisionCode)
	if code == "" {
		return list
	}

	active := row.Bool(ColDivisionIsActive)
	if a.opts.ActiveOnly && !active {
		return list
	}

	var div *Division
	for _, d := range list {
		if d.DivisionCode == code {
			div = d
			break
		}
	}
	if div == nil {
		div = &Division{
			DivisionCode: code,
			DivisionName: row.String(ColDivisionName),
			IsActive:     active,
			Departments:  []*Department{},
		}
		list = append(list, div)
	} else {
		a.check("division", code, "is_active", div.IsActive, active)
	}

	a.attachDepartment(div, row)
	return list
}

func (a *assembler) attachDepartment(div *Division, row database.Row) {
	code := row.String(ColDepartmentCode)
	if code == "" {
		return
	}

	active := row.Bool(ColDepartmentIsActive)
	if a.opts.ActiveOnly && !active {
		return
	}

	for _, d := range div.Departments {
		if d.DepartmentCode == code {
			a.check("department", code, "is_active", d.IsActive, active)
			return
		}
	}
	div.Departments = append(div.Departments, &Department{
		DepartmentCode: code,
		DepartmentName: row.String(ColDepartmentName),
		IsActive:       active,
	})
}

func (a *assembler) check(level, code, field string, kept, seen bool) {
	if kept == seen || a.opts.OnInconsistent == nil {
		return
	}
	a.opts.OnInconsistent(Inconsistency{Level: level, Code: code, Field: field, Kept: kept, Seen: seen})
}
