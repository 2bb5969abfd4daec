package sqlstore

import (
	"context"
	"strconv"

	"orgadmin/internal/database"
	"orgadmin/internal/models"
	"orgadmin/internal/store"
)

const userSelect = `SELECT id, username, password_hash, full_name, role, is_active, created_date FROM users`

type UserStore struct {
	exec database.Executor
}

var _ store.UserStore = (*UserStore)(nil)

func NewUserStore(exec database.Executor) *UserStore {
	return &UserStore{exec: exec}
}

func scanUser(row database.Row) models.User {
	return models.User{
		ID:           int(row.Int64("id")),
		Username:     row.String("username"),
		PasswordHash: row.String("password_hash"),
		FullName:     row.NullString("full_name"),
		Role:         models.Role(row.String("role")),
		IsActive:     row.Bool("is_active"),
		CreatedDate:  row.Time("created_date"),
	}
}

// Create inserts the user and reads it back by username, since not every
// driver reports the generated id.
func (s *UserStore) Create(ctx context.Context, u models.User) (*models.User, error) {
	_, err := run(ctx, s.exec, `INSERT INTO users (username, password_hash, full_name, role, is_active, created_date)
VALUES (@username, @passwordHash, @fullName, @role, @isActive, GETDATE())`,
		database.Params{
			"username":     u.Username,
			"passwordHash": u.PasswordHash,
			"fullName":     u.FullName,
			"role":         string(u.Role),
			"isActive":     u.IsActive,
		})
	if err != nil {
		return nil, writeError("user", u.Username, err)
	}
	return s.FindByUsername(ctx, u.Username)
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	rows, err := query(ctx, s.exec, userSelect+" WHERE username = @username", database.Params{"username": username})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFound("user", username)
	}
	u := scanUser(rows[0])
	return &u, nil
}

func (s *UserStore) FindByID(ctx context.Context, id int) (*models.User, error) {
	rows, err := query(ctx, s.exec, userSelect+" WHERE id = @id", database.Params{"id": id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFound("user", strconv.Itoa(id))
	}
	u := scanUser(rows[0])
	return &u, nil
}

func (s *UserStore) FindPaginated(ctx context.Context, page, limit int) (*store.Page[models.User], error) {
	return findPage(ctx, s.exec,
		"SELECT COUNT(*) AS total FROM users",
		userSelect+" ORDER BY username",
		nil, page, limit, scanUser)
}

func (s *UserStore) UpdateRole(ctx context.Context, id int, role models.Role) error {
	return s.update(ctx, id, "UPDATE users SET role = @value WHERE id = @id", string(role))
}

func (s *UserStore) UpdateStatus(ctx context.Context, id int, active bool) error {
	return s.update(ctx, id, "UPDATE users SET is_active = @value WHERE id = @id", active)
}

func (s *UserStore) update(ctx context.Context, id int, text string, value any) error {
	n, err := run(ctx, s.exec, text, database.Params{"id": id, "value": value})
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("user", strconv.Itoa(id))
	}
	return nil
}
