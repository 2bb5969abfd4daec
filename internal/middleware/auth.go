package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"orgadmin/internal/auth"
	"orgadmin/internal/models"
	"orgadmin/internal/response"
	"orgadmin/internal/store"

	"github.com/rs/zerolog"
)

const APIKeyHeader = "X-API-Key"

// Authenticate accepts either "Authorization: Bearer <access token>" or an
// X-API-Key header and stores the resulting principal in the request context.
func Authenticate(tokens *auth.TokenService, keys store.APIKeyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				principal *auth.Principal
				status    int
				message   string
			)

			if key := r.Header.Get(APIKeyHeader); key != "" {
				principal, status, message = apiKeyPrincipal(r, keys, key)
			} else if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				principal, status, message = bearerPrincipal(r, tokens, authHeader)
			} else {
				response.SendError(w, http.StatusUnauthorized, "Missing token")
				return
			}

			if principal == nil {
				response.SendError(w, status, message)
				return
			}

			ctx := auth.WithPrincipal(r.Context(), principal)
			zerolog.Ctx(ctx).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("actor", principal.Actor())
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerPrincipal(r *http.Request, tokens *auth.TokenService, header string) (*auth.Principal, int, string) {
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return nil, http.StatusUnauthorized, "Invalid token"
	}

	claims, err := tokens.ParseAccess(r.Context(), tokenString)
	switch {
	case errors.Is(err, auth.ErrTokenRevoked):
		return nil, http.StatusUnauthorized, "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidToken):
		return nil, http.StatusUnauthorized, "Invalid token"
	case err != nil:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to verify access token")
		return nil, http.StatusServiceUnavailable, "Error verifying token"
	}

	return &auth.Principal{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     models.Role(claims.Role),
	}, 0, ""
}

func apiKeyPrincipal(r *http.Request, keys store.APIKeyStore, key string) (*auth.Principal, int, string) {
	ctx := r.Context()

	prefix, secret, err := auth.ParseAPIKey(key)
	if err != nil {
		return nil, http.StatusUnauthorized, "Invalid API key"
	}

	k, err := keys.FindByPrefix(ctx, prefix)
	if errors.Is(err, store.ErrNotFound) {
		return nil, http.StatusUnauthorized, "Invalid API key"
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to look up api key")
		return nil, http.StatusServiceUnavailable, "Error verifying API key"
	}

	now := time.Now()
	if !k.IsActive || k.Expired(now) || !auth.VerifyAPIKey(k.KeyHash, secret) {
		return nil, http.StatusUnauthorized, "Invalid API key"
	}

	if err := keys.Touch(ctx, k.ID, now); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("prefix", prefix).Msg("Failed to record api key usage")
	}

	return &auth.Principal{APIKey: k}, 0, ""
}

// RequirePermission allows the request only if the principal may perform
// action on object. Must be used after Authenticate.
func RequirePermission(authz *auth.Authorizer, object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.PrincipalFrom(r.Context())
			if !ok {
				response.SendError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			allowed, err := authz.Authorize(principal.Subject(), object, action)
			if err != nil {
				zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to check permission")
				response.SendError(w, http.StatusInternalServerError, "Error checking permission")
				return
			}
			if !allowed {
				response.SendError(w, http.StatusForbidden, "Forbidden: insufficient permission")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
