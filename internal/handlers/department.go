package handlers

import (
	"net/http"

	"orgadmin/internal/models"
	"orgadmin/internal/response"
	"orgadmin/internal/store"

	"github.com/gorilla/mux"
)

type departmentRequest struct {
	DepartmentCode string `json:"department_code"`
	DepartmentName string `json:"department_name"`
	DivisionCode   string `json:"division_code"`
	IsActive       *bool  `json:"is_active"`
}

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	active, err := boolQuery(r, "is_active")
	if err != nil {
		SendError(w, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query()
	filter := store.DepartmentFilter{
		CompanyCode:  q.Get("company_code"),
		DivisionCode: q.Get("division_code"),
		Search:       q.Get("search"),
		IsActive:     active,
	}

	if listAll(r) {
		departments, err := h.stores.Departments.FindAll(r.Context(), filter)
		if err != nil {
			sendStoreError(w, r, err, "department")
			return
		}
		SendSuccess(w, http.StatusOK, retrievedAll("department"), departments)
		return
	}

	page, limit := response.ParsePage(r)
	result, err := h.stores.Departments.FindPaginated(r.Context(), page, limit, filter)
	if err != nil {
		sendStoreError(w, r, err, "department")
		return
	}
	SendPaginatedSuccess(w, http.StatusOK, retrievedAll("department"), result.Rows, result.Pagination)
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	d, err := h.stores.Departments.FindByCode(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		sendStoreError(w, r, err, "department")
		return
	}
	SendSuccess(w, http.StatusOK, retrieved("department"), d)
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req departmentRequest
	if err := decode(r, &req); err != nil {
		SendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DepartmentCode == "" || req.DepartmentName == "" || req.DivisionCode == "" {
		SendError(w, http.StatusBadRequest, "department_code, department_name and division_code are required")
		return
	}

	d, err := h.stores.Departments.Create(r.Context(), models.Department{
		DepartmentCode: req.DepartmentCode,
		DepartmentName: req.DepartmentName,
		DivisionCode:   req.DivisionCode,
		IsActive:       valueOr(req.IsActive, true),
		CreatedBy:      actorPtr(r),
	})
	if err != nil {
		sendStoreError(w, r, err, "department")
		return
	}
	h.invalidateStructure(r.Context())
	SendSuccess(w, http.StatusCreated, "Department created successfully", d)
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req departmentRequest
	if err := decode(r, &req); err != nil {
		SendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DepartmentName == "" {
		SendError(w, http.StatusBadRequest, "department_name is required")
		return
	}

	current, err := h.stores.Departments.FindByCode(r.Context(), code)
	if err != nil {
		sendStoreError(w, r, err, "department")
		return
	}
	divisionCode := req.DivisionCode
	if divisionCode == "" {
		divisionCode = current.DivisionCode
	}

	d, err := h.stores.Departments.Update(r.Context(), models.Department{
		DepartmentCode: code,
		DepartmentName: req.DepartmentName,
		DivisionCode:   divisionCode,
		IsActive:       valueOr(req.IsActive, current.IsActive),
		UpdatedBy:      actorPtr(r),
	})
	if err != nil {
		sendStoreError(w, r, err, "department")
		return
	}
	h.invalidateStructure(r.Context())
	SendSuccess(w, http.StatusOK, "Department updated successfully", d)
}

func (h *Handler) UpdateDepartmentStatus(w http.ResponseWriter, r *http.Request) {
	active, ok := decodeStatus(w, r)
	if !ok {
		return
	}
	if err := h.stores.Departments.UpdateStatus(r.Context(), mux.Vars(r)["code"], active, actor(r)); err != nil {
		sendStoreError(w, r, err, "department")
		return
	}
	h.invalidateStructure(r.Context())
	SendSuccessNoData(w, http.StatusOK, "Department status updated successfully")
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	if err := h.stores.Departments.Delete(r.Context(), mux.Vars(r)["code"]); err != nil {
		sendStoreError(w, r, err, "department")
		return
	}
	h.invalidateStructure(r.Context())
	SendSuccessNoData(w, http.StatusOK, "Department deleted successfully")
}
