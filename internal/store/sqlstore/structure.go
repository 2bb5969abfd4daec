package sqlstore

import (
	"context"
	"fmt"

	"orgadmin/internal/database"
	"orgadmin/internal/store"
	"orgadmin/internal/structure"

	"github.com/rs/zerolog"
)

// treeSelect yields one row per company x branch x division x department.
// The second half adds divisions that sit directly under a company.
const treeSelect = `SELECT c.company_code, c.company_name_th, c.company_name_en, c.tax_id, c.is_active AS company_is_active,
b.branch_code, b.branch_name, b.is_headquarters, b.is_active AS branch_is_active,
d.division_code, d.division_name, d.is_active AS division_is_active,
dp.department_code, dp.department_name, dp.is_active AS department_is_active
FROM companies c
LEFT JOIN branches b ON b.company_code = c.company_code
LEFT JOIN divisions d ON d.branch_code = b.branch_code
LEFT JOIN departments dp ON dp.division_code = d.division_code%s
UNION ALL
SELECT c.company_code, c.company_name_th, c.company_name_en, c.tax_id, c.is_active AS company_is_active,
NULL, NULL, NULL, NULL,
d.division_code, d.division_name, d.is_active AS division_is_active,
dp.department_code, dp.department_name, dp.is_active AS department_is_active
FROM companies c
JOIN divisions d ON d.company_code = c.company_code AND d.branch_code IS NULL
LEFT JOIN departments dp ON dp.division_code = d.division_code%s
ORDER BY company_code, branch_code, division_code, department_code`

const statsSelect = `SELECT
(SELECT COUNT(*) FROM companies) AS companies_total,
(SELECT COUNT(*) FROM companies WHERE is_active = 1) AS companies_active,
(SELECT COUNT(*) FROM branches) AS branches_total,
(SELECT COUNT(*) FROM branches WHERE is_active = 1) AS branches_active,
(SELECT COUNT(*) FROM branches WHERE is_headquarters = 1) AS headquarters,
(SELECT COUNT(*) FROM divisions) AS divisions_total,
(SELECT COUNT(*) FROM divisions WHERE is_active = 1) AS divisions_active,
(SELECT COUNT(*) FROM departments) AS departments_total,
(SELECT COUNT(*) FROM departments WHERE is_active = 1) AS departments_active`

type StructureStore struct {
	exec database.Executor
}

var _ store.StructureStore = (*StructureStore)(nil)

func NewStructureStore(exec database.Executor) *StructureStore {
	return &StructureStore{exec: exec}
}

func (s *StructureStore) Tree(ctx context.Context, opts store.TreeOptions) ([]*structure.Organization, error) {
	filter := ""
	params := database.Params{}
	if opts.CompanyCode != "" {
		filter = " WHERE c.company_code = @companyCode"
		params["companyCode"] = opts.CompanyCode
	}

	rows, err := query(ctx, s.exec, fmt.Sprintf(treeSelect, filter, filter), params)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	return structure.Assemble(rows, structure.Options{
		ActiveOnly: opts.ActiveOnly,
		OnInconsistent: func(i structure.Inconsistency) {
			logger.Warn().
				Str("level", i.Level).
				Str("code", i.Code).
				Str("field", i.Field).
				Bool("kept", i.Kept).
				Bool("seen", i.Seen).
				Msg("Inconsistent flag in structure rows")
		},
	}), nil
}

func (s *StructureStore) Stats(ctx context.Context) (*store.Stats, error) {
	rows, err := query(ctx, s.exec, statsSelect, nil)
	if err != nil {
		return nil, err
	}

	row := database.Row{}
	if len(rows) > 0 {
		row = rows[0]
	}
	count := func(key string) int { return int(row.Int64(key)) }

	return &store.Stats{
		Companies:    store.LevelStats{Total: count("companies_total"), Active: count("companies_active")},
		Branches:     store.LevelStats{Total: count("branches_total"), Active: count("branches_active")},
		Headquarters: count("headquarters"),
		Divisions:    store.LevelStats{Total: count("divisions_total"), Active: count("divisions_active")},
		Departments:  store.LevelStats{Total: count("departments_total"), Active: count("departments_active")},
	}, nil
}

