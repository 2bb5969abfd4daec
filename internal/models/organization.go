package models

import "time"

// Company is the root of the organization hierarchy.
type Company struct {
	CompanyCode   string     `json:"company_code" db:"company_code"`
	CompanyNameTH string     `json:"company_name_th" db:"company_name_th"`
	CompanyNameEN *string    `json:"company_name_en" db:"company_name_en"`
	TaxID         *string    `json:"tax_id" db:"tax_id"`
	Address       *string    `json:"address,omitempty" db:"address"`
	Phone         *string    `json:"phone,omitempty" db:"phone"`
	Email         *string    `json:"email,omitempty" db:"email"`
	Website       *string    `json:"website,omitempty" db:"website"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	CreatedDate   time.Time  `json:"created_date" db:"created_date"`
	CreatedBy     *string    `json:"created_by,omitempty" db:"created_by"`
	UpdatedDate   *time.Time `json:"updated_date,omitempty" db:"updated_date"`
	UpdatedBy     *string    `json:"updated_by,omitempty" db:"updated_by"`
}

// Branch belongs to exactly one company. At most one branch per company is
// the headquarters.
type Branch struct {
	BranchCode     string     `json:"branch_code" db:"branch_code"`
	BranchName     string     `json:"branch_name" db:"branch_name"`
	CompanyCode    string     `json:"company_code" db:"company_code"`
	CompanyName    string     `json:"company_name_th,omitempty" db:"company_name_th"`
	IsHeadquarters bool       `json:"is_headquarters" db:"is_headquarters"`
	Address        *string    `json:"address,omitempty" db:"address"`
	Phone          *string    `json:"phone,omitempty" db:"phone"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	CreatedDate    time.Time  `json:"created_date" db:"created_date"`
	CreatedBy      *string    `json:"created_by,omitempty" db:"created_by"`
	UpdatedDate    *time.Time `json:"updated_date,omitempty" db:"updated_date"`
	UpdatedBy      *string    `json:"updated_by,omitempty" db:"updated_by"`
}

// Division belongs to a company and optionally to one of its branches.
type Division struct {
	DivisionCode string     `json:"division_code" db:"division_code"`
	DivisionName string     `json:"division_name" db:"division_name"`
	CompanyCode  string     `json:"company_code" db:"company_code"`
	CompanyName  string     `json:"company_name_th,omitempty" db:"company_name_th"`
	BranchCode   *string    `json:"branch_code" db:"branch_code"`
	BranchName   *string    `json:"branch_name,omitempty" db:"branch_name"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedDate  time.Time  `json:"created_date" db:"created_date"`
	CreatedBy    *string    `json:"created_by,omitempty" db:"created_by"`
	UpdatedDate  *time.Time `json:"updated_date,omitempty" db:"updated_date"`
	UpdatedBy    *string    `json:"updated_by,omitempty" db:"updated_by"`
}

// Department belongs to exactly one division. Its company is derived
// through the division.
type Department struct {
	DepartmentCode string     `json:"department_code" db:"department_code"`
	DepartmentName string     `json:"department_name" db:"department_name"`
	DivisionCode   string     `json:"division_code" db:"division_code"`
	DivisionName   string     `json:"division_name,omitempty" db:"division_name"`
	CompanyCode    string     `json:"company_code,omitempty" db:"company_code"`
	CompanyName    string     `json:"company_name_th,omitempty" db:"company_name_th"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	CreatedDate    time.Time  `json:"created_date" db:"created_date"`
	CreatedBy      *string    `json:"created_by,omitempty" db:"created_by"`
	UpdatedDate    *time.Time `json:"updated_date,omitempty" db:"updated_date"`
	UpdatedBy      *string    `json:"updated_by,omitempty" db:"updated_by"`
}
