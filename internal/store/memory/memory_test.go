package memory

import (
	"context"
	"fmt"
	"testing"

	"orgadmin/internal/models"
	"orgadmin/internal/store"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func seed(t *testing.T) *store.Stores {
	t.Helper()
	ctx := context.Background()
	s := New()

	for _, code := range []string{"A", "B"} {
		_, err := s.Companies.Create(ctx, models.Company{CompanyCode: code, CompanyNameTH: "Company " + code, IsActive: true})
		require.NoError(t, err)
	}
	_, err := s.Branches.Create(ctx, models.Branch{BranchCode: "X", BranchName: "Branch X", CompanyCode: "A", IsActive: true})
	require.NoError(t, err)
	_, err = s.Divisions.Create(ctx, models.Division{DivisionCode: "Div1", DivisionName: "Division 1", CompanyCode: "A", BranchCode: ptr("X"), IsActive: true})
	require.NoError(t, err)
	_, err = s.Divisions.Create(ctx, models.Division{DivisionCode: "Div2", DivisionName: "Division 2", CompanyCode: "A", IsActive: true})
	require.NoError(t, err)
	for code, div := range map[string]string{"Dept1": "Div1", "Dept2": "Div1", "Dept3": "Div2"} {
		_, err = s.Departments.Create(ctx, models.Department{DepartmentCode: code, DepartmentName: code, DivisionCode: div, IsActive: true})
		require.NoError(t, err)
	}
	return s
}

func TestBranchStore_SingleHeadquarters(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.Companies.Create(ctx, models.Company{CompanyCode: "A", CompanyNameTH: "A", IsActive: true})
	require.NoError(t, err)

	_, err = s.Branches.Create(ctx, models.Branch{BranchCode: "B1", BranchName: "HQ", CompanyCode: "A", IsHeadquarters: true, IsActive: true})
	require.NoError(t, err)
	_, err = s.Branches.Create(ctx, models.Branch{BranchCode: "B2", BranchName: "HQ2", CompanyCode: "A", IsHeadquarters: true, IsActive: true})
	require.NoError(t, err)

	hq, err := s.Branches.FindAll(ctx, store.BranchFilter{CompanyCode: "A", IsHeadquarters: ptr(true)})
	require.NoError(t, err)
	require.Len(t, hq, 1)
	require.Equal(t, "B2", hq[0].BranchCode)

	b1, err := s.Branches.SetHeadquarters(ctx, "B1", "admin")
	require.NoError(t, err)
	require.True(t, b1.IsHeadquarters)

	b2, err := s.Branches.FindByCode(ctx, "B2")
	require.NoError(t, err)
	require.False(t, b2.IsHeadquarters)
	require.Equal(t, "admin", *b2.UpdatedBy)
}

func TestTree_MatchesJoinShape(t *testing.T) {
	ctx := context.Background()
	s := seed(t)

	tree, err := s.Structure.Tree(ctx, store.TreeOptions{})
	require.NoError(t, err)
	require.Len(t, tree, 2)

	a := tree[0]
	require.Len(t, a.Branches, 1)
	require.Len(t, a.Branches[0].Divisions, 1)
	require.Len(t, a.Branches[0].Divisions[0].Departments, 2)
	require.Len(t, a.Divisions, 1)
	require.Equal(t, "Div2", a.Divisions[0].DivisionCode)
	require.Len(t, a.Divisions[0].Departments, 1)

	b := tree[1]
	require.Equal(t, "B", b.CompanyCode)
	require.Empty(t, b.Branches)
	require.Empty(t, b.Divisions)

	require.NoError(t, s.Companies.UpdateStatus(ctx, "B", false, "admin"))
	active, err := s.Structure.Tree(ctx, store.TreeOptions{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)

	only, err := s.Structure.Tree(ctx, store.TreeOptions{CompanyCode: "B"})
	require.NoError(t, err)
	require.Len(t, only, 1)
}

func TestDivisionStore_MoveToBranch(t *testing.T) {
	ctx := context.Background()
	s := seed(t)
	_, err := s.Branches.Create(ctx, models.Branch{BranchCode: "Y", BranchName: "Branch Y", CompanyCode: "B", IsActive: true})
	require.NoError(t, err)

	_, err = s.Divisions.MoveToBranch(ctx, "Div2", ptr("Y"), "admin")
	require.ErrorIs(t, err, store.ErrInvalidReference)

	moved, err := s.Divisions.MoveToBranch(ctx, "Div2", ptr("X"), "admin")
	require.NoError(t, err)
	require.Equal(t, "Branch X", *moved.BranchName)

	divs, err := s.Divisions.FindAll(ctx, store.DivisionFilter{BranchCode: "X"})
	require.NoError(t, err)
	require.Len(t, divs, 2)
}

func TestDeleteRules(t *testing.T) {
	ctx := context.Background()
	s := seed(t)

	require.ErrorIs(t, s.Branches.Delete(ctx, "X"), store.ErrInUse)
	require.ErrorIs(t, s.Divisions.Delete(ctx, "Div2"), store.ErrInUse)

	require.NoError(t, s.Companies.Delete(ctx, "A"))

	stats, err := s.Structure.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, store.Stats{Companies: store.LevelStats{Total: 1, Active: 1}}, *stats)

	_, err = s.Departments.FindByCode(ctx, "Dept1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCompanyStore_FindPaginated(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i := 1; i <= 12; i++ {
		_, err := s.Companies.Create(ctx, models.Company{CompanyCode: fmt.Sprintf("C%02d", i), CompanyNameTH: "n", IsActive: i%2 == 0})
		require.NoError(t, err)
	}

	page, err := s.Companies.FindPaginated(ctx, 2, 5, store.CompanyFilter{})
	require.NoError(t, err)
	require.Equal(t, store.Pagination{Page: 2, Limit: 5, Total: 12, Pages: 3}, page.Pagination)
	require.Equal(t, "C06", page.Rows[0].CompanyCode)

	page, err = s.Companies.FindPaginated(ctx, 1, 10, store.CompanyFilter{IsActive: ptr(true), Search: "c1"})
	require.NoError(t, err)
	require.Equal(t, 2, page.Pagination.Total)

	page, err = s.Companies.FindPaginated(ctx, 5, 10, store.CompanyFilter{})
	require.NoError(t, err)
	require.Empty(t, page.Rows)
}

func TestDuplicatesAndReferences(t *testing.T) {
	ctx := context.Background()
	s := seed(t)

	_, err := s.Companies.Create(ctx, models.Company{CompanyCode: "A"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = s.Branches.Create(ctx, models.Branch{BranchCode: "Z", CompanyCode: "NOPE"})
	require.ErrorIs(t, err, store.ErrInvalidReference)

	_, err = s.Departments.Create(ctx, models.Department{DepartmentCode: "DeptX", DivisionCode: "NOPE"})
	require.ErrorIs(t, err, store.ErrInvalidReference)

	u, err := s.Users.Create(ctx, models.User{Username: "admin", Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, 1, u.ID)
	_, err = s.Users.Create(ctx, models.User{Username: "admin"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	require.NoError(t, s.Users.UpdateRole(ctx, u.ID, models.RoleViewer))
	require.ErrorIs(t, s.Users.UpdateStatus(ctx, 42, true), store.ErrNotFound)
	users, err := s.Users.FindPaginated(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, users.Rows, 1)
	require.Equal(t, models.RoleViewer, users.Rows[0].Role)
}
