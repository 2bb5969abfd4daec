package handlers

import (
	"net/http"

	"orgadmin/internal/models"
	"orgadmin/internal/response"
	"orgadmin/internal/store"

	"github.com/gorilla/mux"
)

type divisionRequest struct {
	DivisionCode string  `json:"division_code"`
	DivisionName string  `json:"division_name"`
	CompanyCode  string  `json:"company_code"`
	BranchCode   *string `json:"branch_code"`
	IsActive     *bool   `json:"is_active"`
}

type moveDivisionRequest struct {
	BranchCode *string `json:"branch_code"`
}

func (h *Handler) ListDivisions(w http.ResponseWriter, r *http.Request) {
	active, err := boolQuery(r, "is_active")
	if err != nil {
		SendError(w, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query()
	filter := store.DivisionFilter{
		CompanyCode: q.Get("company_code"),
		BranchCode:  q.Get("branch_code"),
		Search:      q.Get("search"),
		IsActive:    active,
	}

	if listAll(r) {
		divisions, err := h.stores.Divisions.FindAll(r.Context(), filter)
		if err != nil {
			sendStoreError(w, r, err, "division")
			return
		}
		SendSuccess(w, http.StatusOK, retrievedAll("division"), divisions)
		return
	}

	page, limit := response.ParsePage(r)
	result, err := h.stores.Divisions.FindPaginated(r.Context(), page, limit, filter)
	if err != nil {
		sendStoreError(w, r, err, "division")
		return
	}
	SendPaginatedSuccess(w, http.StatusOK, retrievedAll("division"), result.Rows, result.Pagination)
}

func (h *Handler) GetDivision(w http.ResponseWriter, r *http.Request) {
	d, err := h.stores.Divisions.FindByCode(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		sendStoreError(w, r, err, "division")
		return
	}
	SendSuccess(w, http.StatusOK, retrieved("division"), d)
}

func (h *Handler) CreateDivision(w http.ResponseWriter, r *http.Request) {
	var req divisionRequest
	if err := decode(r, &req); err != nil {
		SendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DivisionCode == "" || req.DivisionName == "" || req.CompanyCode == "" {
		SendError(w, http.StatusBadRequest, "division_code, division_name and company_code are required")
		return
	}

	d, err := h.stores.Divisions.Create(r.Context(), models.Division{
		DivisionCode: req.DivisionCode,
		DivisionName: req.DivisionName,
		CompanyCode:  req.CompanyCode,
		BranchCode:   emptyToNil(req.BranchCode),
		IsActive:     valueOr(req.IsActive, true),
		CreatedBy:    actorPtr(r),
	})
	if err != nil {
		sendStoreError(w, r, err, "division")
		return
	}
	h.invalidateStructure(r.Context())
	SendSuccess(w, http.StatusCreated, "Division created successfully", d)
}

// UpdateDivision keeps the stored branch and is_active when they are omitted.
func (h *Handler) UpdateDivision(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req divisionRequest
	if err := decode(r, &req); err != nil {
		SendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DivisionName == "" {
		SendError(w, http.StatusBadRequest, "division_name is required")
		return
	}

	current, err := h.stores.Divisions.FindByCode(r.Context(), code)
	if err != nil {
		sendStoreError(w, r, err, "division")
		return
	}
	if req.CompanyCode != "" && req.CompanyCode != current.CompanyCode {
		SendError(w, http.StatusBadRequest, "company_code cannot be changed")
		return
	}
	// absent or null keeps the branch; "" detaches the division
	branchCode := current.BranchCode
	if req.BranchCode != nil {
		branchCode = emptyToNil(req.BranchCode)
	}

	d, err := h.stores.Divisions.Update(r.Context(), models.Division{
		DivisionCode: code,
		DivisionName: req.DivisionName,
		CompanyCode:  current.CompanyCode,
		BranchCode:   branchCode,
		IsActive:     valueOr(req.IsActive, current.IsActive),
		UpdatedBy:    actorPtr(r),
	})
	if err != nil {
		sendStoreError(w, r, err, "division")
		return
	}
	h.invalidateStructure(r.Context())
	SendSuccess(w, http.StatusOK, "Division updated successfully", d)
}

func (h *Handler) UpdateDivisionStatus(w http.ResponseWriter, r *http.Request) {
	active, ok := decodeStatus(w, r)
	if !ok {
		return
	}
	if err := h.stores.Divisions.UpdateStatus(r.Context(), mux.Vars(r)["code"], active, actor(r)); err != nil {
		sendStoreError(w, r, err, "division")
		return
	}
	h.invalidateStructure(r.Context())
	SendSuccessNoData(w, http.StatusOK, "Division status updated successfully")
}

// MoveDivision attaches the division to another branch of its company. A null
// or empty branch_code attaches it directly to the company.
func (h *Handler) MoveDivision(w http.ResponseWriter, r *http.Request) {
	var req moveDivisionRequest
	if err := decode(r, &req); err != nil {
		SendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	d, err := h.stores.Divisions.MoveToBranch(r.Context(), mux.Vars(r)["code"], emptyToNil(req.BranchCode), actor(r))
	if err != nil {
		sendStoreError(w, r, err, "division")
		return
	}
	h.invalidateStructure(r.Context())
	SendSuccess(w, http.StatusOK, "Division moved successfully", d)
}

func (h *Handler) DeleteDivision(w http.ResponseWriter, r *http.Request) {
	if err := h.stores.Divisions.Delete(r.Context(), mux.Vars(r)["code"]); err != nil {
		sendStoreError(w, r, err, "division")
		return
	}
	h.invalidateStructure(r.Context())
	SendSuccessNoData(w, http.StatusOK, "Division deleted successfully")
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
