package http

import (
	"net/http"

	"ugc-marketplace-backend/internal/domain"
)

func (h *Handler) OnboardCompany(w http.ResponseWriter, r *http.Request) {
	var in domain.OnboardingInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	company, err := h.svc.Company.Onboard(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, company)
}

func (h *Handler) ListMyCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.svc.Company.ListMine(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if companies == nil {
		companies = []domain.Company{}
	}
	writeJSON(w, http.StatusOK, companies)
}

func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	company, err := h.svc.Company.Get(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in domain.OnboardingInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	company, err := h.svc.Company.Update(r.Context(), userID(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (h *Handler) GetActiveCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.svc.Company.GetActive(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

type setActiveRequest struct {
	CompanyID int32 `json:"company_id"`
}

func (h *Handler) SetActiveCompany(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	company, err := h.svc.Company.SetActive(r.Context(), userID(r), req.CompanyID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (h *Handler) ListCompanyMembers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	members, err := h.svc.Company.ListMembers(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if members == nil {
		members = []domain.CompanyMember{}
	}
	writeJSON(w, http.StatusOK, members)
}

type addMemberRequest struct {
	Email string                   `json:"email"`
	Role  domain.CompanyMemberRole `json:"role"`
}

func (h *Handler) AddCompanyMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req addMemberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	member, err := h.svc.Company.AddMember(r.Context(), userID(r), id, req.Email, req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}
