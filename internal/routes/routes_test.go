package routes

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"orgadmin/internal/auth"
	"orgadmin/internal/cache"
	"orgadmin/internal/database"
	"orgadmin/internal/handlers"
	"orgadmin/internal/middleware"
	"orgadmin/internal/models"
	"orgadmin/internal/store"
	"orgadmin/internal/store/memory"
	"orgadmin/internal/store/sqlstore"

	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   string          `json:"error"`
}

type testAPI struct {
	t      *testing.T
	router http.Handler
	stores *store.Stores
	tokens map[models.Role]string
}

func newTestAPI(t *testing.T, stores *store.Stores, exec database.Executor) *testAPI {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	authz, err := auth.NewAuthorizer()
	require.NoError(t, err)

	c := cache.NewMemory()
	tokens := auth.NewTokenService(key, c)
	h := handlers.New(handlers.Config{Stores: stores, Executor: exec, Cache: c, Tokens: tokens})

	a := &testAPI{
		t:      t,
		router: SetupRoutes(Deps{Handler: h, Tokens: tokens, APIKeys: stores.APIKeys, Authz: authz}),
		stores: stores,
		tokens: map[models.Role]string{},
	}
	for _, role := range []models.Role{models.RoleAdmin, models.RoleEditor, models.RoleViewer} {
		hash, err := auth.HashPassword("pw-" + string(role))
		require.NoError(t, err)
		u, err := stores.Users.Create(context.Background(), models.User{
			Username: string(role), PasswordHash: hash, Role: role, IsActive: true,
		})
		require.NoError(t, err)
		pair, err := tokens.Issue(context.Background(), *u)
		require.NoError(t, err)
		a.tokens[role] = pair.AccessToken
	}
	return a
}

func newMemoryAPI(t *testing.T) *testAPI {
	return newTestAPI(t, memory.New(), database.NewDisabledExecutor())
}

func (a *testAPI) request(method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func (a *testAPI) as(role models.Role, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	return a.request(method, path, body, map[string]string{"Authorization": "Bearer " + a.tokens[role]})
}

func (a *testAPI) seedCompany(code string) {
	rec, _ := a.as(models.RoleEditor, http.MethodPost, "/api/companies", map[string]any{
		"company_code": code, "company_name_th": "Company " + code,
	})
	require.Equal(a.t, http.StatusCreated, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	a := newMemoryAPI(t)

	rec, env := a.request(http.MethodPost, "/auth/login", map[string]string{"username": "viewer", "password": "wrong"}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid credentials", env.Error)

	rec, env = a.request(http.MethodPost, "/auth/login", map[string]string{"username": "nobody", "password": "x"}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = a.request(http.MethodPost, "/auth/login", map[string]string{"username": "viewer", "password": "pw-viewer"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var login handlers.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.Equal(t, "viewer", login.User.Username)
	require.NotContains(t, string(env.Data), "password")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	refresh := cookies[0]
	require.Equal(t, "refresh_token", refresh.Name)
	require.True(t, refresh.HttpOnly)

	bearer := map[string]string{"Authorization": "Bearer " + login.AccessToken}
	rec, _ = a.request(http.MethodGet, "/api/companies", nil, bearer)
	require.Equal(t, http.StatusOK, rec.Code)

	// refresh rotates the pair and revokes the old access token
	rec, env = a.request(http.MethodPost, "/auth/refresh", nil, map[string]string{"Cookie": "refresh_token=" + refresh.Value})
	require.Equal(t, http.StatusOK, rec.Code)
	var refreshed map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &refreshed))
	newAccess := refreshed["access_token"].(string)

	rec, env = a.request(http.MethodGet, "/api/companies", nil, bearer)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Token has been revoked", env.Error)

	rec, _ = a.request(http.MethodPost, "/auth/refresh", nil, map[string]string{"Cookie": "refresh_token=" + refresh.Value})
	require.Equal(t, http.StatusUnauthorized, rec.Code, "refresh token is single use")

	bearer = map[string]string{"Authorization": "Bearer " + newAccess}
	rec, _ = a.request(http.MethodPost, "/api/auth/logout", nil, bearer)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = a.request(http.MethodGet, "/api/companies", nil, bearer)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = a.request(http.MethodPost, "/auth/refresh", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "No refresh token", env.Error)
}

func TestCompanyCRUD(t *testing.T) {
	a := newMemoryAPI(t)

	rec, env := a.as(models.RoleEditor, http.MethodPost, "/api/companies", map[string]any{
		"company_code": "C01", "company_name_th": "บริษัท หนึ่ง", "company_name_en": "One Co",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Company
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.True(t, created.IsActive, "is_active defaults to true")
	require.Equal(t, "editor", *created.CreatedBy)

	rec, env = a.as(models.RoleEditor, http.MethodPost, "/api/companies", map[string]any{
		"company_code": "C01", "company_name_th": "dup",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "Company already exists", env.Error)

	rec, env = a.as(models.RoleEditor, http.MethodPost, "/api/companies", map[string]any{"company_code": "C02"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = a.as(models.RoleViewer, http.MethodGet, "/api/companies/C01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Company retrieved successfully", env.Message)

	rec, env = a.as(models.RoleViewer, http.MethodGet, "/api/companies/NOPE", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Company not found", env.Error)

	rec, env = a.as(models.RoleEditor, http.MethodPut, "/api/companies/C01", map[string]any{"company_name_th": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.Company
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	require.Equal(t, "Renamed", updated.CompanyNameTH)
	require.True(t, updated.IsActive, "omitted is_active keeps the current value")

	rec, _ = a.as(models.RoleEditor, http.MethodPatch, "/api/companies/C01/status", map[string]any{"is_active": false})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, env = a.as(models.RoleEditor, http.MethodPatch, "/api/companies/C01/status", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "is_active is required", env.Error)

	for _, code := range []string{"C02", "C03", "C04"} {
		a.seedCompany(code)
	}

	rec, env = a.as(models.RoleViewer, http.MethodGet, "/api/companies?page=2&limit=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Companies retrieved successfully", env.Message)
	require.JSONEq(t, `{"page":2,"limit":3,"total":4,"pages":2}`, string(env.Meta))

	rec, env = a.as(models.RoleViewer, http.MethodGet, "/api/companies?is_active=false", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var inactive []models.Company
	require.NoError(t, json.Unmarshal(env.Data, &inactive))
	require.Len(t, inactive, 1)
	require.Equal(t, "C01", inactive[0].CompanyCode)

	rec, _ = a.as(models.RoleViewer, http.MethodGet, "/api/companies?is_active=maybe", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = a.as(models.RoleViewer, http.MethodGet, "/api/companies?all=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, env.Meta)

	rec, _ = a.as(models.RoleEditor, http.MethodDelete, "/api/companies/C01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = a.as(models.RoleEditor, http.MethodDelete, "/api/companies/C01", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPermissions(t *testing.T) {
	a := newMemoryAPI(t)

	rec, env := a.request(http.MethodGet, "/api/companies", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Missing token", env.Error)

	tests := []struct {
		role   models.Role
		method string
		path   string
		body   any
		status int
	}{
		{models.RoleViewer, http.MethodGet, "/api/structure", nil, http.StatusOK},
		{models.RoleViewer, http.MethodPost, "/api/companies", map[string]any{"company_code": "X", "company_name_th": "X"}, http.StatusForbidden},
		{models.RoleViewer, http.MethodGet, "/api/apikeys", nil, http.StatusForbidden},
		{models.RoleEditor, http.MethodGet, "/api/apikeys", nil, http.StatusForbidden},
		{models.RoleAdmin, http.MethodGet, "/api/apikeys", nil, http.StatusOK},
		{models.RoleAdmin, http.MethodPost, "/api/companies", map[string]any{"company_code": "X", "company_name_th": "X"}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+" "+tt.method+" "+tt.path, func(t *testing.T) {
			rec, _ := a.as(tt.role, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestHeadquartersAndReferences(t *testing.T) {
	a := newMemoryAPI(t)
	a.seedCompany("C01")
	a.seedCompany("C02")

	for _, b := range []map[string]any{
		{"branch_code": "B01", "branch_name": "Bangkok", "company_code": "C01", "is_headquarters": true},
		{"branch_code": "B02", "branch_name": "Chiang Mai", "company_code": "C01", "is_headquarters": true},
		{"branch_code": "B03", "branch_name": "Phuket", "company_code": "C02"},
	} {
		rec, _ := a.as(models.RoleEditor, http.MethodPost, "/api/branches", b)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	hqs := func() []string {
		_, env := a.as(models.RoleViewer, http.MethodGet, "/api/branches?company_code=C01&is_headquarters=true", nil)
		var branches []models.Branch
		require.NoError(t, json.Unmarshal(env.Data, &branches))
		var codes []string
		for _, b := range branches {
			codes = append(codes, b.BranchCode)
		}
		return codes
	}
	require.Equal(t, []string{"B02"}, hqs())

	rec, _ := a.as(models.RoleEditor, http.MethodPatch, "/api/branches/B01/headquarters", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"B01"}, hqs())

	rec, env := a.as(models.RoleEditor, http.MethodPost, "/api/branches", map[string]any{
		"branch_code": "B09", "branch_name": "Ghost", "company_code": "NOPE",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid branch reference", env.Error)

	rec, _ = a.as(models.RoleEditor, http.MethodPost, "/api/divisions", map[string]any{
		"division_code": "D01", "division_name": "Sales", "company_code": "C01", "branch_code": "B01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = a.as(models.RoleEditor, http.MethodPatch, "/api/divisions/D01/branch", map[string]any{"branch_code": "B03"})
	require.Equal(t, http.StatusBadRequest, rec.Code, "branch of another company")

	rec, env = a.as(models.RoleEditor, http.MethodPatch, "/api/divisions/D01/branch", map[string]any{"branch_code": nil})
	require.Equal(t, http.StatusOK, rec.Code)
	var moved models.Division
	require.NoError(t, json.Unmarshal(env.Data, &moved))
	require.Nil(t, moved.BranchCode)

	rec, _ = a.as(models.RoleEditor, http.MethodPatch, "/api/divisions/D01/branch", map[string]any{"branch_code": "B02"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = a.as(models.RoleEditor, http.MethodDelete, "/api/branches/B02", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "Branch is still referenced by other records", env.Error)

	rec, _ = a.as(models.RoleEditor, http.MethodPost, "/api/departments", map[string]any{
		"department_code": "P01", "department_name": "Inside Sales", "division_code": "D01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = a.as(models.RoleEditor, http.MethodDelete, "/api/divisions/D01", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestStructureCacheInvalidation(t *testing.T) {
	a := newMemoryAPI(t)
	a.seedCompany("C01")

	tree := func(query string) []map[string]any {
		rec, env := a.as(models.RoleViewer, http.MethodGet, "/api/structure"+query, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var orgs []map[string]any
		require.NoError(t, json.Unmarshal(env.Data, &orgs))
		return orgs
	}

	orgs := tree("")
	require.Len(t, orgs, 1)
	require.Empty(t, orgs[0]["divisions"])

	rec, _ := a.as(models.RoleEditor, http.MethodPost, "/api/divisions", map[string]any{
		"division_code": "D01", "division_name": "Finance", "company_code": "C01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	orgs = tree("")
	require.Len(t, orgs[0]["divisions"], 1, "writes invalidate the cached tree")

	rec, _ = a.as(models.RoleEditor, http.MethodPatch, "/api/divisions/D01/status", map[string]any{"is_active": false})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, tree("?active_only=true")[0]["divisions"])
	require.Len(t, tree("?active_only=false")[0]["divisions"], 1)

	rec, env := a.as(models.RoleViewer, http.MethodGet, "/api/structure/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats store.Stats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	require.Equal(t, store.LevelStats{Total: 1, Active: 1}, stats.Companies)
	require.Equal(t, store.LevelStats{Total: 1, Active: 0}, stats.Divisions)
}

func TestAPIKeys(t *testing.T) {
	a := newMemoryAPI(t)

	rec, env := a.as(models.RoleAdmin, http.MethodPost, "/api/apikeys", map[string]any{"name": "erp", "permissions": "write"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var writeKey struct {
		ID  string `json:"id"`
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &writeKey))
	require.NotContains(t, string(env.Data), "key_hash")

	rec, env = a.as(models.RoleAdmin, http.MethodPost, "/api/apikeys", map[string]any{"name": "bi"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var readKey struct {
		ID  string `json:"id"`
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &readKey))

	rec, _ = a.as(models.RoleAdmin, http.MethodPost, "/api/apikeys", map[string]any{"name": "x", "permissions": "admin"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	withKey := func(key string) map[string]string { return map[string]string{middleware.APIKeyHeader: key} }
	company := map[string]any{"company_code": "K01", "company_name_th": "Via key"}

	rec, env = a.request(http.MethodPost, "/api/companies", company, withKey(writeKey.Key))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Company
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Equal(t, "apikey:erp", *created.CreatedBy)

	rec, _ = a.request(http.MethodPost, "/api/companies", company, withKey(readKey.Key))
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = a.request(http.MethodGet, "/api/companies/K01", nil, withKey(readKey.Key))
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = a.request(http.MethodGet, "/api/apikeys", nil, withKey(writeKey.Key))
	require.Equal(t, http.StatusForbidden, rec.Code, "keys never manage keys")

	rec, _ = a.as(models.RoleAdmin, http.MethodPatch, "/api/apikeys/"+readKey.ID+"/status", map[string]any{"is_active": false})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = a.request(http.MethodGet, "/api/companies/K01", nil, withKey(readKey.Key))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = a.as(models.RoleAdmin, http.MethodDelete, "/api/apikeys/"+writeKey.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = a.request(http.MethodGet, "/api/companies/K01", nil, withKey(writeKey.Key))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = a.as(models.RoleAdmin, http.MethodGet, "/api/apikeys", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var keys []models.APIKey
	require.NoError(t, json.Unmarshal(env.Data, &keys))
	require.Len(t, keys, 1)
	require.False(t, keys[0].IsActive)
	require.NotNil(t, keys[0].LastUsedDate)
}

func TestHealth(t *testing.T) {
	a := newMemoryAPI(t)
	rec, env := a.request(http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"up","database":"up","dialect":"sqlserver","cache":"up"}`, string(env.Data))
}

func TestUnavailableDatabase(t *testing.T) {
	exec := database.NewUnavailableExecutor(database.Postgres, errors.New("connection refused"))
	a := newTestAPI(t, sqlstoreWithMemoryAuth(exec), exec)

	rec, env := a.request(http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, string(env.Data), `"status":"degraded"`)
	require.Contains(t, string(env.Data), `"database":"down"`)

	rec, env = a.as(models.RoleViewer, http.MethodGet, "/api/companies", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "Database unavailable", env.Error)

	rec, _ = a.as(models.RoleViewer, http.MethodGet, "/api/structure", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// sqlstoreWithMemoryAuth keeps users and keys in memory so tokens can be
// issued while the organization stores fail.
func sqlstoreWithMemoryAuth(exec database.Executor) *store.Stores {
	s := sqlstore.New(exec)
	mem := memory.New()
	s.Users, s.APIKeys = mem.Users, mem.APIKeys
	return s
}

func TestUserManagement(t *testing.T) {
	a := newMemoryAPI(t)

	rec, _ := a.as(models.RoleEditor, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := a.as(models.RoleAdmin, http.MethodGet, "/api/users?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var meta store.Pagination
	require.NoError(t, json.Unmarshal(env.Meta, &meta))
	require.Equal(t, 3, meta.Total)
	require.Equal(t, 2, meta.Pages)

	rec, env = a.as(models.RoleAdmin, http.MethodPost, "/api/users", map[string]any{"username": "clerk", "password": "pw-clerk"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.User
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Equal(t, models.RoleViewer, created.Role)
	require.True(t, created.IsActive)
	require.NotContains(t, string(env.Data), "password")

	rec, _ = a.as(models.RoleAdmin, http.MethodPost, "/api/users", map[string]any{"username": "clerk", "password": "x"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec, env = a.as(models.RoleAdmin, http.MethodPost, "/api/users", map[string]any{"username": "boss", "password": "x", "role": "owner"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "role must be admin, editor or viewer", env.Error)

	path := "/api/users/" + strconv.Itoa(created.ID)
	rec, _ = a.as(models.RoleAdmin, http.MethodPatch, path+"/role", map[string]any{"role": "editor"})
	require.Equal(t, http.StatusOK, rec.Code)

	// the new role applies at login
	rec, env = a.request(http.MethodPost, "/auth/login", map[string]string{"username": "clerk", "password": "pw-clerk"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var login handlers.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.Equal(t, models.RoleEditor, login.User.Role)

	rec, _ = a.as(models.RoleAdmin, http.MethodPatch, path+"/status", map[string]any{"is_active": false})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = a.request(http.MethodPost, "/auth/login", map[string]string{"username": "clerk", "password": "pw-clerk"}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = a.as(models.RoleAdmin, http.MethodPatch, "/api/users/1/status", map[string]any{"is_active": false})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Cannot deactivate your own account", env.Error)

	rec, _ = a.as(models.RoleAdmin, http.MethodGet, "/api/users/999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = a.as(models.RoleAdmin, http.MethodGet, "/api/users/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateKeepsOmittedFields(t *testing.T) {
	a := newMemoryAPI(t)
	a.seedCompany("C01")
	a.seedCompany("C02")

	rec, _ := a.as(models.RoleEditor, http.MethodPost, "/api/branches", map[string]any{
		"branch_code": "B01", "branch_name": "Bangkok", "company_code": "C01", "is_headquarters": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec, _ = a.as(models.RoleEditor, http.MethodPost, "/api/divisions", map[string]any{
		"division_code": "D01", "division_name": "Sales", "company_code": "C01", "branch_code": "B01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := a.as(models.RoleEditor, http.MethodPut, "/api/branches/B01", map[string]any{"branch_name": "HQ renamed"})
	require.Equal(t, http.StatusOK, rec.Code)
	var branch models.Branch
	require.NoError(t, json.Unmarshal(env.Data, &branch))
	require.Equal(t, "HQ renamed", branch.BranchName)
	require.True(t, branch.IsHeadquarters)
	require.True(t, branch.IsActive)

	rec, env = a.as(models.RoleEditor, http.MethodPut, "/api/divisions/D01", map[string]any{"division_name": "Sales renamed"})
	require.Equal(t, http.StatusOK, rec.Code)
	var division models.Division
	require.NoError(t, json.Unmarshal(env.Data, &division))
	require.NotNil(t, division.BranchCode)
	require.Equal(t, "B01", *division.BranchCode)

	rec, env = a.as(models.RoleEditor, http.MethodPut, "/api/divisions/D01", map[string]any{"division_name": "Sales", "branch_code": ""})
	require.Equal(t, http.StatusOK, rec.Code)
	division = models.Division{}
	require.NoError(t, json.Unmarshal(env.Data, &division))
	require.Nil(t, division.BranchCode)

	for _, tc := range []struct {
		path string
		body map[string]any
	}{
		{"/api/branches/B01", map[string]any{"branch_name": "Bangkok", "company_code": "C02"}},
		{"/api/divisions/D01", map[string]any{"division_name": "Sales", "company_code": "C02"}},
	} {
		t.Run(tc.path, func(t *testing.T) {
			rec, env := a.as(models.RoleEditor, http.MethodPut, tc.path, tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, "company_code cannot be changed", env.Error)
		})
	}

	// same company code is accepted
	rec, _ = a.as(models.RoleEditor, http.MethodPut, "/api/branches/B01", map[string]any{"branch_name": "Bangkok", "company_code": "C01"})
	require.Equal(t, http.StatusOK, rec.Code)
}
