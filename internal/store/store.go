// Package store defines the entity accessors of the organization hierarchy.
// Two implementations exist: sqlstore on the database executor and memory for
// tests and demos.
package store

import (
	"context"
	"errors"
	"time"

	"orgadmin/internal/models"
	"orgadmin/internal/structure"
)

// Sentinel errors for store operations
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInUse            = errors.New("still referenced")
	ErrInvalidReference = errors.New("invalid reference")
)

// Pagination describes one page of a filtered listing.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes the page count for total rows.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

type Page[T any] struct {
	Rows       []T        `json:"rows"`
	Pagination Pagination `json:"pagination"`
}

// NormalizePage clamps page to >= 1 and limit to 1..100 (default 10).
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

type CompanyFilter struct {
	Search   string
	IsActive *bool
}

type BranchFilter struct {
	CompanyCode    string
	Search         string
	IsActive       *bool
	IsHeadquarters *bool
}

type DivisionFilter struct {
	CompanyCode string
	BranchCode  string
	Search      string
	IsActive    *bool
}

type DepartmentFilter struct {
	CompanyCode  string
	DivisionCode string
	Search       string
	IsActive     *bool
}

type CompanyStore interface {
	FindAll(ctx context.Context, filter CompanyFilter) ([]models.Company, error)
	FindByCode(ctx context.Context, code string) (*models.Company, error)
	FindPaginated(ctx context.Context, page, limit int, filter CompanyFilter) (*Page[models.Company], error)
	Create(ctx context.Context, c models.Company) (*models.Company, error)
	Update(ctx context.Context, c models.Company) (*models.Company, error)
	UpdateStatus(ctx context.Context, code string, active bool, actor string) error
	// Delete removes the company together with its branches, divisions and
	// departments.
	Delete(ctx context.Context, code string) error
}

type BranchStore interface {
	FindAll(ctx context.Context, filter BranchFilter) ([]models.Branch, error)
	FindByCode(ctx context.Context, code string) (*models.Branch, error)
	FindPaginated(ctx context.Context, page, limit int, filter BranchFilter) (*Page[models.Branch], error)
	// Create and Update clear the headquarters flag of sibling branches when
	// the branch is flagged as headquarters.
	Create(ctx context.Context, b models.Branch) (*models.Branch, error)
	Update(ctx context.Context, b models.Branch) (*models.Branch, error)
	UpdateStatus(ctx context.Context, code string, active bool, actor string) error
	SetHeadquarters(ctx context.Context, code string, actor string) (*models.Branch, error)
	Delete(ctx context.Context, code string) error
}

type DivisionStore interface {
	FindAll(ctx context.Context, filter DivisionFilter) ([]models.Division, error)
	FindByCode(ctx context.Context, code string) (*models.Division, error)
	FindPaginated(ctx context.Context, page, limit int, filter DivisionFilter) (*Page[models.Division], error)
	Create(ctx context.Context, d models.Division) (*models.Division, error)
	Update(ctx context.Context, d models.Division) (*models.Division, error)
	UpdateStatus(ctx context.Context, code string, active bool, actor string) error
	// MoveToBranch attaches the division to a branch of its own company, or
	// directly to the company when branchCode is nil.
	MoveToBranch(ctx context.Context, code string, branchCode *string, actor string) (*models.Division, error)
	Delete(ctx context.Context, code string) error
}

type DepartmentStore interface {
	FindAll(ctx context.Context, filter DepartmentFilter) ([]models.Department, error)
	FindByCode(ctx context.Context, code string) (*models.Department, error)
	FindPaginated(ctx context.Context, page, limit int, filter DepartmentFilter) (*Page[models.Department], error)
	Create(ctx context.Context, d models.Department) (*models.Department, error)
	Update(ctx context.Context, d models.Department) (*models.Department, error)
	UpdateStatus(ctx context.Context, code string, active bool, actor string) error
	Delete(ctx context.Context, code string) error
}

type TreeOptions struct {
	CompanyCode string
	ActiveOnly  bool
}

type LevelStats struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

type Stats struct {
	Companies    LevelStats `json:"companies"`
	Branches     LevelStats `json:"branches"`
	Headquarters int        `json:"headquarters"`
	Divisions    LevelStats `json:"divisions"`
	Departments  LevelStats `json:"departments"`
}

type StructureStore interface {
	Tree(ctx context.Context, opts TreeOptions) ([]*structure.Organization, error)
	Stats(ctx context.Context) (*Stats, error)
}

type APIKeyStore interface {
	Create(ctx context.Context, k models.APIKey) (*models.APIKey, error)
	FindByPrefix(ctx context.Context, prefix string) (*models.APIKey, error)
	List(ctx context.Context) ([]models.APIKey, error)
	UpdateStatus(ctx context.Context, id string, active bool) error
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type UserStore interface {
	Create(ctx context.Context, u models.User) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id int) (*models.User, error)
	FindPaginated(ctx context.Context, page, limit int) (*Page[models.User], error)
	UpdateRole(ctx context.Context, id int, role models.Role) error
	UpdateStatus(ctx context.Context, id int, active bool) error
}

// Stores bundles every accessor so callers can swap implementations at once.
type Stores struct {
	Companies   CompanyStore
	Branches    BranchStore
	Divisions   DivisionStore
	Departments DepartmentStore
	Structure   StructureStore
	APIKeys     APIKeyStore
	Users       UserStore
}
