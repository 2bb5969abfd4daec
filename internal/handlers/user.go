package handlers

import (
	"net/http"
	"strconv"

	"orgadmin/internal/auth"
	"orgadmin/internal/models"
	"orgadmin/internal/response"

	"github.com/gorilla/mux"
)

type createUserRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	FullName *string     `json:"full_name"`
	Role     models.Role `json:"role"`
	IsActive *bool       `json:"is_active"`
}

type userRoleRequest struct {
	Role models.Role `json:"role"`
}

func userID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 1 {
		SendError(w, http.StatusBadRequest, "Invalid user ID")
		return 0, false
	}
	return id, true
}

// self reports whether id is the calling user.
func self(r *http.Request, id int) bool {
	p, ok := auth.PrincipalFrom(r.Context())
	return ok && p.APIKey == nil && p.UserID == id
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := response.ParsePage(r)
	result, err := h.stores.Users.FindPaginated(r.Context(), page, limit)
	if err != nil {
		sendStoreError(w, r, err, "user")
		return
	}
	SendPaginatedSuccess(w, http.StatusOK, retrievedAll("user"), result.Rows, result.Pagination)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	u, err := h.stores.Users.FindByID(r.Context(), id)
	if err != nil {
		sendStoreError(w, r, err, "user")
		return
	}
	SendSuccess(w, http.StatusOK, retrieved("user"), u)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decode(r, &req); err != nil {
		SendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		SendError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleViewer
	}
	if !req.Role.Valid() {
		SendError(w, http.StatusBadRequest, "role must be admin, editor or viewer")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		sendStoreError(w, r, err, "user")
		return
	}
	u, err := h.stores.Users.Create(r.Context(), models.User{
		Username:     req.Username,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         req.Role,
		IsActive:     valueOr(req.IsActive, true),
	})
	if err != nil {
		sendStoreError(w, r, err, "user")
		return
	}
	SendSuccess(w, http.StatusCreated, "User created successfully", u)
}

// UpdateUserRole takes effect on the user's next login or token refresh.
func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var req userRoleRequest
	if err := decode(r, &req); err != nil {
		SendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Role.Valid() {
		SendError(w, http.StatusBadRequest, "role must be admin, editor or viewer")
		return
	}
	if self(r, id) && req.Role != models.RoleAdmin {
		SendError(w, http.StatusBadRequest, "Cannot change your own role")
		return
	}
	if err := h.stores.Users.UpdateRole(r.Context(), id, req.Role); err != nil {
		sendStoreError(w, r, err, "user")
		return
	}
	SendSuccessNoData(w, http.StatusOK, "User role updated successfully")
}

func (h *Handler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	active, ok := decodeStatus(w, r)
	if !ok {
		return
	}
	if self(r, id) && !active {
		SendError(w, http.StatusBadRequest, "Cannot deactivate your own account")
		return
	}
	if err := h.stores.Users.UpdateStatus(r.Context(), id, active); err != nil {
		sendStoreError(w, r, err, "user")
		return
	}
	SendSuccessNoData(w, http.StatusOK, "User status updated successfully")
}
