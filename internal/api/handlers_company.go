package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mmynk/taxava/internal/service"
)

// listOptions reads the search and sort query parameters.
func listOptions(r *http.Request) (service.ListOptions, error) {
	q := r.URL.Query()
	order, err := service.ParseSortOrder(q.Get("sort"))
	if err != nil {
		return service.ListOptions{}, err
	}
	return service.ListOptions{Search: q.Get("search"), Sort: order}, nil
}

// pathID reads the numeric {id} route variable. The route pattern already
// guarantees digits.
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	return id, err == nil && id > 0
}

// handleListCompanies handles GET /api/companies
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	companies, err := s.services.Companies.List(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, companies)
}

// handleCreateCompany handles POST /api/companies
func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var in service.CompanyInput
	if err := parseJSONBody(r, &in); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	company, err := s.services.Companies.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, company)
}

// handleGetCompany handles GET /api/companies/{id}
func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "company ID required")
		return
	}

	company, err := s.services.Companies.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, company)
}

// handleUpdateCompany handles PUT /api/companies/{id}
func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "company ID required")
		return
	}
	var in service.CompanyInput
	if err := parseJSONBody(r, &in); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	company, err := s.services.Companies.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, company)
}
