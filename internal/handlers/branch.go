package handlers

import (
	"net/http"

	"orgadmin/internal/models"
	"orgadmin/internal/response"
	"orgadmin/internal/store"

	"github.com/gorilla/mux"
)

type branchRequest struct {
	BranchCode     string  `json:"branch_code"`
	BranchName     string  `json:"branch_name"`
	CompanyCode    string  `json:"company_code"`
	IsHeadquarters *bool   `json:"is_headquarters"`
	Address        *string `json:"address"`
	Phone          *string `json:"phone"`
	IsActive       *bool   `json:"is_active"`
}

func (h *Handler) ListBranches(w http.ResponseWriter, r *http.Request) {
	active, err := boolQuery(r, "is_active")
	if err != nil {
		SendError(w, http.StatusBadRequest, err.Error())
		return
	}
	hq, err := boolQuery(r, "is_headquarters")
	if err != nil {
		SendError(w, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query()
	filter := store.BranchFilter{
		CompanyCode:    q.Get("company_code"),
		Search:         q.Get("search"),
		IsActive:       active,
		IsHeadquarters: hq,
	}

	if listAll(r) {
		branches, err := h.stores.Branches.FindAll(r.Context(), filter)
		if err != nil {
			sendStoreError(w, r, err, "branch")
			return
		}
		SendSuccess(w, http.StatusOK, retrievedAll("branch"), branches)
		return
	}

	page, limit := response.ParsePage(r)
	result, err := h.stores.Branches.FindPaginated(r.Context(), page, limit, filter)
	if err != nil {
		sendStoreError(w, r, err, "branch")
		return
	}
	SendPaginatedSuccess(w, http.StatusOK, retrievedAll("branch"), result.Rows, result.Pagination)
}

func (h *Handler) GetBranch(w http.ResponseWriter, r *http.Request) {
	b, err := h.stores.Branches.FindByCode(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		sendStoreError(w, r, err, "branch")
		return
	}
	SendSuccess(w, http.StatusOK, retrieved("branch"), b)
}

func (h *Handler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	var req branchRequest
	if err := decode(r, &req); err != nil {
		SendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.BranchCode == "" || req.BranchName == "" || req.CompanyCode == "" {
		SendError(w, http.StatusBadRequest, "branch_code, branch_name and company_code are required")
		return
	}

	b, err := h.stores.Branches.Create(r.Context(), models.Branch{
		BranchCode:     req.BranchCode,
		BranchName:     req.BranchName,
		CompanyCode:    req.CompanyCode,
		IsHeadquarters: valueOr(req.IsHeadquarters, false),
		Address:        req.Address,
		Phone:          req.Phone,
		IsActive:       valueOr(req.IsActive, true),
		CreatedBy:      actorPtr(r),
	})
	if err != nil {
		sendStoreError(w, r, err, "branch")
		return
	}
	h.invalidateStructure(r.Context())
	SendSuccess(w, http.StatusCreated, "Branch created successfully", b)
}

// UpdateBranch keeps the stored is_headquarters and is_active when they are
// omitted. A branch cannot move to another company.
func (h *Handler) UpdateBranch(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req branchRequest
	if err := decode(r, &req); err != nil {
		SendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.BranchName == "" {
		SendError(w, http.StatusBadRequest, "branch_name is required")
		return
	}

	current, err := h.stores.Branches.FindByCode(r.Context(), code)
	if err != nil {
		sendStoreError(w, r, err, "branch")
		return
	}
	if req.CompanyCode != "" && req.CompanyCode != current.CompanyCode {
		SendError(w, http.StatusBadRequest, "company_code cannot be changed")
		return
	}

	b, err := h.stores.Branches.Update(r.Context(), models.Branch{
		BranchCode:     code,
		BranchName:     req.BranchName,
		CompanyCode:    current.CompanyCode,
		IsHeadquarters: valueOr(req.IsHeadquarters, current.IsHeadquarters),
		Address:        req.Address,
		Phone:          req.Phone,
		IsActive:       valueOr(req.IsActive, current.IsActive),
		UpdatedBy:      actorPtr(r),
	})
	if err != nil {
		sendStoreError(w, r, err, "branch")
		return
	}
	h.invalidateStructure(r.Context())
	SendSuccess(w, http.StatusOK, "Branch updated successfully", b)
}

func (h *Handler) UpdateBranchStatus(w http.ResponseWriter, r *http.Request) {
	active, ok := decodeStatus(w, r)
	if !ok {
		return
	}
	if err := h.stores.Branches.UpdateStatus(r.Context(), mux.Vars(r)["code"], active, actor(r)); err != nil {
		sendStoreError(w, r, err, "branch")
		return
	}
	h.invalidateStructure(r.Context())
	SendSuccessNoData(w, http.StatusOK, "Branch status updated successfully")
}

// SetHeadquarters makes the branch the only headquarters of its company.
func (h *Handler) SetHeadquarters(w http.ResponseWriter, r *http.Request) {
	b, err := h.stores.Branches.SetHeadquarters(r.Context(), mux.Vars(r)["code"], actor(r))
	if err != nil {
		sendStoreError(w, r, err, "branch")
		return
	}
	h.invalidateStructure(r.Context())
	SendSuccess(w, http.StatusOK, "Headquarters updated successfully", b)
}

func (h *Handler) DeleteBranch(w http.ResponseWriter, r *http.Request) {
	if err := h.stores.Branches.Delete(r.Context(), mux.Vars(r)["code"]); err != nil {
		sendStoreError(w, r, err, "branch")
		return
	}
	h.invalidateStructure(r.Context())
	SendSuccessNoData(w, http.StatusOK, "Branch deleted successfully")
}
