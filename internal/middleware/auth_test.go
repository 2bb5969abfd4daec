package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"orgadmin/internal/auth"
	"orgadmin/internal/cache"
	"orgadmin/internal/models"
	"orgadmin/internal/store"
	"orgadmin/internal/store/memory"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	tokens *auth.TokenService
	stores *store.Stores
	authz  *auth.Authorizer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	authz, err := auth.NewAuthorizer()
	require.NoError(t, err)
	return &fixture{
		tokens: auth.NewTokenService(key, cache.NewMemory()),
		stores: memory.New(),
		authz:  authz,
	}
}

// echoActor replies with the authenticated actor.
var echoActor = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFrom(r.Context())
	_, _ = w.Write([]byte(p.Actor()))
})

func TestAuthenticate_Bearer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	h := Authenticate(f.tokens, f.stores.APIKeys)(echoActor)

	pair, err := f.tokens.Issue(ctx, models.User{ID: 1, Username: "alice", Role: models.RoleEditor})
	require.NoError(t, err)
	revoked, err := f.tokens.Issue(ctx, models.User{ID: 2, Username: "bob", Role: models.RoleViewer})
	require.NoError(t, err)
	require.NoError(t, f.tokens.Revoke(ctx, revoked.AccessToken, ""))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer " + pair.AccessToken, http.StatusOK, "alice"},
		{"missing", "", http.StatusUnauthorized, "Missing token"},
		{"no scheme", pair.AccessToken, http.StatusUnauthorized, "Invalid token"},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, "Invalid token"},
		{"refresh token", "Bearer " + pair.RefreshToken, http.StatusUnauthorized, "Invalid token"},
		{"revoked", "Bearer " + revoked.AccessToken, http.StatusUnauthorized, "Token has been revoked"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, tt.status, rec.Code)
			require.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestAuthenticate_APIKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	h := Authenticate(f.tokens, f.stores.APIKeys)(echoActor)

	active, activeKey, err := auth.IssueAPIKey(ctx, f.stores.APIKeys, "erp", models.PermissionRead, nil, "admin")
	require.NoError(t, err)

	disabled, disabledKey, err := auth.IssueAPIKey(ctx, f.stores.APIKeys, "old", models.PermissionRead, nil, "admin")
	require.NoError(t, err)
	require.NoError(t, f.stores.APIKeys.UpdateStatus(ctx, disabled.ID, false))

	past := time.Now().Add(-time.Hour)
	_, expiredKey, err := auth.IssueAPIKey(ctx, f.stores.APIKeys, "expired", models.PermissionRead, &past, "admin")
	require.NoError(t, err)

	tests := []struct {
		name   string
		key    string
		status int
		body   string
	}{
		{"valid", activeKey, http.StatusOK, "apikey:erp"},
		{"malformed", "nope", http.StatusUnauthorized, "Invalid API key"},
		{"unknown prefix", "oak_ffffffff_3mJr7AoUXx2Wqd", http.StatusUnauthorized, "Invalid API key"},
		{"wrong secret", activeKey[:len("oak_")+9] + "3mJr7AoUXx2Wqd", http.StatusUnauthorized, "Invalid API key"},
		{"inactive", disabledKey, http.StatusUnauthorized, "Invalid API key"},
		{"expired", expiredKey, http.StatusUnauthorized, "Invalid API key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
			req.Header.Set(APIKeyHeader, tt.key)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, tt.status, rec.Code)
			require.Contains(t, rec.Body.String(), tt.body)
		})
	}

	stored, err := f.stores.APIKeys.FindByPrefix(ctx, active.Prefix)
	require.NoError(t, err)
	require.NotNil(t, stored.LastUsedDate, "successful use is recorded")
}

func TestRequirePermission(t *testing.T) {
	f := newFixture(t)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name      string
		principal *auth.Principal
		object    string
		action    string
		status    int
	}{
		{"no principal", nil, auth.ObjectCompanies, auth.ActionRead, http.StatusUnauthorized},
		{"viewer reads", &auth.Principal{Role: models.RoleViewer}, auth.ObjectCompanies, auth.ActionRead, http.StatusNoContent},
		{"viewer writes", &auth.Principal{Role: models.RoleViewer}, auth.ObjectCompanies, auth.ActionWrite, http.StatusForbidden},
		{"editor writes", &auth.Principal{Role: models.RoleEditor}, auth.ObjectBranches, auth.ActionWrite, http.StatusNoContent},
		{"editor manages keys", &auth.Principal{Role: models.RoleEditor}, auth.ObjectAPIKeys, auth.ActionRead, http.StatusForbidden},
		{"admin manages keys", &auth.Principal{Role: models.RoleAdmin}, auth.ObjectAPIKeys, auth.ActionWrite, http.StatusNoContent},
		{"read key writes", &auth.Principal{APIKey: &models.APIKey{Permissions: models.PermissionRead}}, auth.ObjectDivisions, auth.ActionWrite, http.StatusForbidden},
		{"write key writes", &auth.Principal{APIKey: &models.APIKey{Permissions: models.PermissionWrite}}, auth.ObjectDivisions, auth.ActionWrite, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.principal != nil {
				req = req.WithContext(auth.WithPrincipal(req.Context(), tt.principal))
			}
			rec := httptest.NewRecorder()
			RequirePermission(f.authz, tt.object, tt.action)(ok).ServeHTTP(rec, req)
			require.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://localhost:3000"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodOptions, "/api/companies", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
