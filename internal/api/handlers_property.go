package api

import (
	"net/http"

	"github.com/mmynk/taxava/internal/service"
)

// handleListProperties handles GET /api/properties
func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	properties, err := s.services.Properties.List(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, properties)
}

// handleCreateProperty handles POST /api/properties
func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	var in service.PropertyInput
	if err := parseJSONBody(r, &in); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	property, err := s.services.Properties.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, property)
}

// handleGetProperty handles GET /api/properties/{id}
func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "property ID required")
		return
	}

	property, err := s.services.Properties.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, property)
}

// handleUpdateProperty handles PUT /api/properties/{id}
func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "property ID required")
		return
	}
	var in service.PropertyInput
	if err := parseJSONBody(r, &in); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	property, err := s.services.Properties.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, property)
}
