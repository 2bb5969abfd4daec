package handlers

import (
	"net/http"

	"orgadmin/internal/models"
	"orgadmin/internal/response"
	"orgadmin/internal/store"

	"github.com/gorilla/mux"
)

type companyRequest struct {
	CompanyCode   string  `json:"company_code"`
	CompanyNameTH string  `json:"company_name_th"`
	CompanyNameEN *string `json:"company_name_en"`
	TaxID         *string `json:"tax_id"`
	Address       *string `json:"address"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	Website       *string `json:"website"`
	IsActive      *bool   `json:"is_active"`
}

func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	active, err := boolQuery(r, "is_active")
	if err != nil {
		SendError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := store.CompanyFilter{Search: r.URL.Query().Get("search"), IsActive: active}

	if listAll(r) {
		companies, err := h.stores.Companies.FindAll(r.Context(), filter)
		if err != nil {
			sendStoreError(w, r, err, "company")
			return
		}
		SendSuccess(w, http.StatusOK, retrievedAll("company"), companies)
		return
	}

	page, limit := response.ParsePage(r)
	result, err := h.stores.Companies.FindPaginated(r.Context(), page, limit, filter)
	if err != nil {
		sendStoreError(w, r, err, "company")
		return
	}
	SendPaginatedSuccess(w, http.StatusOK, retrievedAll("company"), result.Rows, result.Pagination)
}

func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	c, err := h.stores.Companies.FindByCode(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		sendStoreError(w, r, err, "company")
		return
	}
	SendSuccess(w, http.StatusOK, retrieved("company"), c)
}

func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := decode(r, &req); err != nil {
		SendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CompanyCode == "" || req.CompanyNameTH == "" {
		SendError(w, http.StatusBadRequest, "company_code and company_name_th are required")
		return
	}

	c, err := h.stores.Companies.Create(r.Context(), models.Company{
		CompanyCode:   req.CompanyCode,
		CompanyNameTH: req.CompanyNameTH,
		CompanyNameEN: req.CompanyNameEN,
		TaxID:         req.TaxID,
		Address:       req.Address,
		Phone:         req.Phone,
		Email:         req.Email,
		Website:       req.Website,
		IsActive:      valueOr(req.IsActive, true),
		CreatedBy:     actorPtr(r),
	})
	if err != nil {
		sendStoreError(w, r, err, "company")
		return
	}
	h.invalidateStructure(r.Context())
	SendSuccess(w, http.StatusCreated, "Company created successfully", c)
}

func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req companyRequest
	if err := decode(r, &req); err != nil {
		SendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CompanyNameTH == "" {
		SendError(w, http.StatusBadRequest, "company_name_th is required")
		return
	}

	current, err := h.stores.Companies.FindByCode(r.Context(), code)
	if err != nil {
		sendStoreError(w, r, err, "company")
		return
	}

	c, err := h.stores.Companies.Update(r.Context(), models.Company{
		CompanyCode:   code,
		CompanyNameTH: req.CompanyNameTH,
		CompanyNameEN: req.CompanyNameEN,
		TaxID:         req.TaxID,
		Address:       req.Address,
		Phone:         req.Phone,
		Email:         req.Email,
		Website:       req.Website,
		IsActive:      valueOr(req.IsActive, current.IsActive),
		UpdatedBy:     actorPtr(r),
	})
	if err != nil {
		sendStoreError(w, r, err, "company")
		return
	}
	h.invalidateStructure(r.Context())
	SendSuccess(w, http.StatusOK, "Company updated successfully", c)
}

func (h *Handler) UpdateCompanyStatus(w http.ResponseWriter, r *http.Request) {
	active, ok := decodeStatus(w, r)
	if !ok {
		return
	}
	if err := h.stores.Companies.UpdateStatus(r.Context(), mux.Vars(r)["code"], active, actor(r)); err != nil {
		sendStoreError(w, r, err, "company")
		return
	}
	h.invalidateStructure(r.Context())
	SendSuccessNoData(w, http.StatusOK, "Company status updated successfully")
}

// DeleteCompany removes the company with all of its branches, divisions and
// departments.
func (h *Handler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := h.stores.Companies.Delete(r.Context(), mux.Vars(r)["code"]); err != nil {
		sendStoreError(w, r, err, "company")
		return
	}
	h.invalidateStructure(r.Context())
	SendSuccessNoData(w, http.StatusOK, "Company deleted successfully")
}
