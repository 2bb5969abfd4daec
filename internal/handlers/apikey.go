package handlers

import (
	"net/http"
	"time"

	"orgadmin/internal/auth"
	"orgadmin/internal/models"

	"github.com/gorilla/mux"
)

type createAPIKeyRequest struct {
	Name        string     `json:"name"`
	Permissions string     `json:"permissions"`
	ExpiresDate *time.Time `json:"expires_date"`
}

type createAPIKeyResponse struct {
	*models.APIKey
	Key string `json:"key"`
}

func (h *Handler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.stores.APIKeys.List(r.Context())
	if err != nil {
		sendStoreError(w, r, err, "API key")
		return
	}
	SendSuccess(w, http.StatusOK, "API keys retrieved successfully", keys)
}

// CreateAPIKey returns the plain key once; only its hash is stored.
func (h *Handler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req createAPIKeyRequest
	if err := decode(r, &req); err != nil {
		SendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		SendError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Permissions == "" {
		req.Permissions = models.PermissionRead
	}
	if req.Permissions != models.PermissionRead && req.Permissions != models.PermissionWrite {
		SendError(w, http.StatusBadRequest, "permissions must be read or write")
		return
	}
	if req.ExpiresDate != nil && !req.ExpiresDate.After(time.Now()) {
		SendError(w, http.StatusBadRequest, "expires_date must be in the future")
		return
	}

	k, plain, err := auth.IssueAPIKey(r.Context(), h.stores.APIKeys, req.Name, req.Permissions, req.ExpiresDate, actor(r))
	if err != nil {
		sendStoreError(w, r, err, "API key")
		return
	}
	SendSuccess(w, http.StatusCreated, "API key created successfully", createAPIKeyResponse{APIKey: k, Key: plain})
}

func (h *Handler) UpdateAPIKeyStatus(w http.ResponseWriter, r *http.Request) {
	active, ok := decodeStatus(w, r)
	if !ok {
		return
	}
	if err := h.stores.APIKeys.UpdateStatus(r.Context(), mux.Vars(r)["id"], active); err != nil {
		sendStoreError(w, r, err, "API key")
		return
	}
	SendSuccessNoData(w, http.StatusOK, "API key status updated successfully")
}

func (h *Handler) DeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	if err := h.stores.APIKeys.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		sendStoreError(w, r, err, "API key")
		return
	}
	SendSuccessNoData(w, http.StatusOK, "API key deleted successfully")
}
