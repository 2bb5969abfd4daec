// Package memory is an in-memory implementation of the store interfaces for
// development and testing. It enforces the same invariants as the SQL store.
package memory

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"orgadmin/internal/models"
	"orgadmin/internal/store"
)

// state is shared by all accessors of one New call so references between
// levels can be checked.
type state struct {
	mu          sync.RWMutex
	companies   map[string]models.Company
	branches    map[string]models.Branch
	divisions   map[string]models.Division
	departments map[string]models.Department
	apiKeys     map[string]models.APIKey
	users       map[int]models.User
	nextUserID  int
	now         func() time.Time
}

// New creates an empty in-memory store set.
func New() *store.Stores {
	s := &state{
		companies:   make(map[string]models.Company),
		branches:    make(map[string]models.Branch),
		divisions:   make(map[string]models.Division),
		departments: make(map[string]models.Department),
		apiKeys:     make(map[string]models.APIKey),
		users:       make(map[int]models.User),
		nextUserID:  1,
		now:         time.Now,
	}
	return &store.Stores{
		Companies:   &CompanyStore{s},
		Branches:    &BranchStore{s},
		Divisions:   &DivisionStore{s},
		Departments: &DepartmentStore{s},
		Structure:   &StructureStore{s},
		APIKeys:     &APIKeyStore{s},
		Users:       &UserStore{s},
	}
}

func (s *state) timestamp() *time.Time {
	t := s.now()
	return &t
}

func notFound(entity, code string) error {
	return fmt.Errorf("%s %s: %w", entity, code, store.ErrNotFound)
}

func sortedValues[T any](m map[string]T, filter func(T) bool, key func(T) string) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		if filter(v) {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(key(a), key(b)) })
	return out
}

func paginate[T any](items []T, page, limit int) *store.Page[T] {
	page, limit = store.NormalizePage(page, limit)
	start := min((page-1)*limit, len(items))
	end := min(start+limit, len(items))
	return &store.Page[T]{
		Rows:       slices.Clone(items[start:end]),
		Pagination: store.NewPagination(page, limit, len(items)),
	}
}

// matches reports whether term is empty or a case-insensitive substring of
// any field.
func matches(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func flagMatches(want *bool, got bool) bool {
	return want == nil || *want == got
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
