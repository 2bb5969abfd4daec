package handlers

import (
	"errors"
	"net/http"
	"strings"

	"orgadmin/internal/auth"
	"orgadmin/internal/models"
	"orgadmin/internal/store"

	"github.com/rs/zerolog"
)

const refreshCookie = "refresh_token"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    token,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   maxAge,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(r, &req); err != nil {
		SendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.stores.Users.FindByUsername(r.Context(), req.Username)
	if errors.Is(err, store.ErrNotFound) {
		SendError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		sendStoreError(w, r, err, "user")
		return
	}
	if !user.IsActive || !auth.CheckPassword(user.PasswordHash, req.Password) {
		SendError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	pair, err := h.tokens.Issue(r.Context(), *user)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to issue tokens")
		SendError(w, http.StatusInternalServerError, "Error generating tokens")
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken, int(auth.RefreshTokenTTL.Seconds()))
	SendSuccess(w, http.StatusOK, "Login successful", AuthResponse{
		User:        user,
		AccessToken: pair.AccessToken,
		ExpiresIn:   pair.ExpiresIn,
	})
}

// RefreshToken rotates the refresh token cookie and returns a new access
// token. The previous access token is revoked.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookie)
	if err != nil {
		SendError(w, http.StatusUnauthorized, "No refresh token")
		return
	}

	claims, err := h.tokens.Rotate(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidToken) && !errors.Is(err, auth.ErrTokenRevoked) {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to rotate refresh token")
		}
		SendError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	// Role or status may have changed since the token was issued.
	user, err := h.stores.Users.FindByID(r.Context(), claims.UserID)
	if err != nil || !user.IsActive {
		SendError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	pair, err := h.tokens.Issue(r.Context(), *user)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to issue tokens")
		SendError(w, http.StatusInternalServerError, "Error generating tokens")
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken, int(auth.RefreshTokenTTL.Seconds()))
	SendSuccess(w, http.StatusOK, "Token refreshed successfully", map[string]any{
		"access_token": pair.AccessToken,
		"expires_in":   pair.ExpiresIn,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	access, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")

	var refresh string
	if cookie, err := r.Cookie(refreshCookie); err == nil {
		refresh = cookie.Value
	}

	if err := h.tokens.Revoke(r.Context(), access, refresh); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to revoke tokens")
		SendError(w, http.StatusInternalServerError, "Error logging out")
		return
	}

	h.setRefreshCookie(w, "", -1)
	SendSuccessNoData(w, http.StatusOK, "Logout successful")
}
