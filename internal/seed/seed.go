// Package seed loads an organization hierarchy from a YAML document and
// creates it through the stores.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"orgadmin/internal/models"
	"orgadmin/internal/store"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Document is the root of a seed file:
//
//	companies:
//	  - code: C01
//	    name_th: ...
//	    branches:
//	      - code: B01
//	        name: Head office
//	        headquarters: true
//	        divisions:
//	          - code: D01
//	            name: Finance
//	            departments:
//	              - {code: P01, name: Accounting}
//	    divisions: []   # attached directly to the company
type Document struct {
	Companies []Company `yaml:"companies"`
}

type Company struct {
	Code      string     `yaml:"code"`
	NameTH    string     `yaml:"name_th"`
	NameEN    string     `yaml:"name_en"`
	TaxID     string     `yaml:"tax_id"`
	Address   string     `yaml:"address"`
	Phone     string     `yaml:"phone"`
	Email     string     `yaml:"email"`
	Website   string     `yaml:"website"`
	Active    *bool      `yaml:"active"`
	Branches  []Branch   `yaml:"branches"`
	Divisions []Division `yaml:"divisions"`
}

type Branch struct {
	Code         string     `yaml:"code"`
	Name         string     `yaml:"name"`
	Headquarters bool       `yaml:"headquarters"`
	Address      string     `yaml:"address"`
	Phone        string     `yaml:"phone"`
	Active       *bool      `yaml:"active"`
	Divisions    []Division `yaml:"divisions"`
}

type Division struct {
	Code        string       `yaml:"code"`
	Name        string       `yaml:"name"`
	Active      *bool        `yaml:"active"`
	Departments []Department `yaml:"departments"`
}

type Department struct {
	Code   string `yaml:"code"`
	Name   string `yaml:"name"`
	Active *bool  `yaml:"active"`
}

// Result counts what Apply did per level.
type Result struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// Load reads and validates a seed file.
func Load(fs afero.Fs, path string) (*Document, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks that every node has a code and a name and that codes are
// unique per level.
func (d *Document) Validate() error {
	seen := map[string]map[string]bool{
		"company": {}, "branch": {}, "division": {}, "department": {},
	}
	check := func(level, path, code, name string) error {
		if code == "" || name == "" {
			return fmt.Errorf("%s: %s code and name are required", path, level)
		}
		if seen[level][code] {
			return fmt.Errorf("%s: duplicate %s code %s", path, level, code)
		}
		seen[level][code] = true
		return nil
	}
	checkDivisions := func(path string, divisions []Division) error {
		for i, div := range divisions {
			p := fmt.Sprintf("%s.divisions[%d]", path, i)
			if err := check("division", p, div.Code, div.Name); err != nil {
				return err
			}
			for j, dep := range div.Departments {
				if err := check("department", fmt.Sprintf("%s.departments[%d]", p, j), dep.Code, dep.Name); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for i, c := range d.Companies {
		p := fmt.Sprintf("companies[%d]", i)
		if err := check("company", p, c.Code, c.NameTH); err != nil {
			return err
		}
		hq := 0
		for j, b := range c.Branches {
			bp := fmt.Sprintf("%s.branches[%d]", p, j)
			if err := check("branch", bp, b.Code, b.Name); err != nil {
				return err
			}
			if b.Headquarters {
				hq++
			}
			if err := checkDivisions(bp, b.Divisions); err != nil {
				return err
			}
		}
		if hq > 1 {
			return fmt.Errorf("%s: company %s has %d headquarters", p, c.Code, hq)
		}
		if err := checkDivisions(p, c.Divisions); err != nil {
			return err
		}
	}
	return nil
}

// Apply creates every node of the document top-down. Nodes whose code
// already exists are left untouched, so a seed file can be applied twice.
func Apply(ctx context.Context, stores *store.Stores, doc *Document, actor string) (Result, error) {
	var res Result
	log := zerolog.Ctx(ctx)

	created := func(err error, level, code string) error {
		switch {
		case err == nil:
			res.Created++
			return nil
		case errors.Is(err, store.ErrAlreadyExists):
			log.Debug().Str("level", level).Str("code", code).Msg("Seed entry exists, skipping")
			res.Skipped++
			return nil
		default:
			return fmt.Errorf("seed %s %s: %w", level, code, err)
		}
	}

	for _, c := range doc.Companies {
		_, err := stores.Companies.Create(ctx, models.Company{
			CompanyCode:   c.Code,
			CompanyNameTH: c.NameTH,
			CompanyNameEN: optional(c.NameEN),
			TaxID:         optional(c.TaxID),
			Address:       optional(c.Address),
			Phone:         optional(c.Phone),
			Email:         optional(c.Email),
			Website:       optional(c.Website),
			IsActive:      active(c.Active),
			CreatedBy:     optional(actor),
		})
		if err := created(err, "company", c.Code); err != nil {
			return res, err
		}

		for _, b := range c.Branches {
			_, err := stores.Branches.Create(ctx, models.Branch{
				BranchCode:     b.Code,
				BranchName:     b.Name,
				CompanyCode:    c.Code,
				IsHeadquarters: b.Headquarters,
				Address:        optional(b.Address),
				Phone:          optional(b.Phone),
				IsActive:       active(b.Active),
				CreatedBy:      optional(actor),
			})
			if err := created(err, "branch", b.Code); err != nil {
				return res, err
			}
			branch := b.Code
			if err := applyDivisions(ctx, stores, c.Code, &branch, b.Divisions, actor, created); err != nil {
				return res, err
			}
		}

		if err := applyDivisions(ctx, stores, c.Code, nil, c.Divisions, actor, created); err != nil {
			return res, err
		}
	}
	return res, nil
}

func applyDivisions(ctx context.Context, stores *store.Stores, company string, branch *string, divisions []Division, actor string, created func(error, string, string) error) error {
	for _, div := range divisions {
		_, err := stores.Divisions.Create(ctx, models.Division{
			DivisionCode: div.Code,
			DivisionName: div.Name,
			CompanyCode:  company,
			BranchCode:   branch,
			IsActive:     active(div.Active),
			CreatedBy:    optional(actor),
		})
		if err := created(err, "division", div.Code); err != nil {
			return err
		}

		for _, dep := range div.Departments {
			_, err := stores.Departments.Create(ctx, models.Department{
				DepartmentCode: dep.Code,
				DepartmentName: dep.Name,
				DivisionCode:   div.Code,
				IsActive:       active(dep.Active),
				CreatedBy:      optional(actor),
			})
			if err := created(err, "department", dep.Code); err != nil {
				return err
			}
		}
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func active(b *bool) bool {
	return b == nil || *b
}
