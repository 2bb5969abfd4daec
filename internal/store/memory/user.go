package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"

	"orgadmin/internal/models"
	"orgadmin/internal/store"
)

type UserStore struct {
	s *state
}

var _ store.UserStore = (*UserStore)(nil)

func (u *UserStore) Create(ctx context.Context, v models.User) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for _, existing := range u.s.users {
		if existing.Username == v.Username {
			return nil, fmt.Errorf("user %s: %w", v.Username, store.ErrAlreadyExists)
		}
	}
	v.ID = u.s.nextUserID
	u.s.nextUserID++
	v.CreatedDate = u.s.now()
	u.s.users[v.ID] = v
	return &v, nil
}

func (u *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	for _, v := range u.s.users {
		if v.Username == username {
			return &v, nil
		}
	}
	return nil, notFound("user", username)
}

func (u *UserStore) FindByID(ctx context.Context, id int) (*models.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	v, ok := u.s.users[id]
	if !ok {
		return nil, notFound("user", strconv.Itoa(id))
	}
	return &v, nil
}

func (u *UserStore) FindPaginated(ctx context.Context, page, limit int) (*store.Page[models.User], error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	out := make([]models.User, 0, len(u.s.users))
	for _, v := range u.s.users {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b models.User) int { return cmp.Compare(a.Username, b.Username) })
	return paginate(out, page, limit), nil
}

func (u *UserStore) UpdateRole(ctx context.Context, id int, role models.Role) error {
	return u.update(id, func(v *models.User) { v.Role = role })
}

func (u *UserStore) UpdateStatus(ctx context.Context, id int, active bool) error {
	return u.update(id, func(v *models.User) { v.IsActive = active })
}

func (u *UserStore) update(id int, fn func(*models.User)) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	v, ok := u.s.users[id]
	if !ok {
		return notFound("user", strconv.Itoa(id))
	}
	fn(&v)
	u.s.users[id] = v
	return nil
}
