package memory

import (
	"context"
	"maps"
	"slices"

	"orgadmin/internal/database"
	"orgadmin/internal/models"
	"orgadmin/internal/store"
	"orgadmin/internal/structure"
)

type StructureStore struct {
	s *state
}

var _ store.StructureStore = (*StructureStore)(nil)

// Tree produces the same flat rows as the SQL join and hands them to the
// assembler.
func (t *StructureStore) Tree(ctx context.Context, opts store.TreeOptions) ([]*structure.Organization, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	return structure.Assemble(t.rows(opts.CompanyCode), structure.Options{ActiveOnly: opts.ActiveOnly}), nil
}

func (t *StructureStore) rows(companyCode string) []database.Row {
	var rows []database.Row
	for _, cc := range slices.Sorted(maps.Keys(t.s.companies)) {
		if companyCode != "" && cc != companyCode {
			continue
		}
		c := t.s.companies[cc]
		base := database.Row{
			structure.ColCompanyCode:     c.CompanyCode,
			structure.ColCompanyNameTH:   c.CompanyNameTH,
			structure.ColCompanyNameEN:   ptrValue(c.CompanyNameEN),
			structure.ColTaxID:           ptrValue(c.TaxID),
			structure.ColCompanyIsActive: c.IsActive,
		}

		branches := sortedValues(t.s.branches, func(b models.Branch) bool { return b.CompanyCode == cc },
			func(b models.Branch) string { return b.BranchCode })
		for _, b := range branches {
			row := clone(base)
			row[structure.ColBranchCode] = b.BranchCode
			row[structure.ColBranchName] = b.BranchName
			row[structure.ColIsHeadquarters] = b.IsHeadquarters
			row[structure.ColBranchIsActive] = b.IsActive
			rows = append(rows, t.divisionRows(row, cc, b.BranchCode, true)...)
		}

		rows = append(rows, t.divisionRows(base, cc, "", false)...)
		if len(branches) == 0 {
			rows = append(rows, base)
		}
	}
	return rows
}

// divisionRows expands prefix with every division of branch (or the direct
// divisions of company when branch is empty) and their departments. With
// keepEmpty, a prefix without divisions still yields one row.
func (t *StructureStore) divisionRows(prefix database.Row, company, branch string, keepEmpty bool) []database.Row {
	divisions := sortedValues(t.s.divisions, func(d models.Division) bool {
		return d.CompanyCode == company && deref(d.BranchCode) == branch
	}, func(d models.Division) string { return d.DivisionCode })

	if len(divisions) == 0 {
		if keepEmpty {
			return []database.Row{prefix}
		}
		return nil
	}

	var rows []database.Row
	for _, d := range divisions {
		row := clone(prefix)
		row[structure.ColDivisionCode] = d.DivisionCode
		row[structure.ColDivisionName] = d.DivisionName
		row[structure.ColDivisionIsActive] = d.IsActive

		departments := sortedValues(t.s.departments, func(p models.Department) bool { return p.DivisionCode == d.DivisionCode },
			func(p models.Department) string { return p.DepartmentCode })
		if len(departments) == 0 {
			rows = append(rows, row)
			continue
		}
		for _, p := range departments {
			dr := clone(row)
			dr[structure.ColDepartmentCode] = p.DepartmentCode
			dr[structure.ColDepartmentName] = p.DepartmentName
			dr[structure.ColDepartmentIsActive] = p.IsActive
			rows = append(rows, dr)
		}
	}
	return rows
}

func (t *StructureStore) Stats(ctx context.Context) (*store.Stats, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	var st store.Stats
	for _, c := range t.s.companies {
		count(&st.Companies, c.IsActive)
	}
	for _, b := range t.s.branches {
		count(&st.Branches, b.IsActive)
		if b.IsHeadquarters {
			st.Headquarters++
		}
	}
	for _, d := range t.s.divisions {
		count(&st.Divisions, d.IsActive)
	}
	for _, p := range t.s.departments {
		count(&st.Departments, p.IsActive)
	}
	return &st, nil
}

func count(l *store.LevelStats, active bool) {
	l.Total++
	if active {
		l.Active++
	}
}

func clone(r database.Row) database.Row {
	out := make(database.Row, len(r)+6)
	maps.Copy(out, r)
	return out
}

func ptrValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
