package api

import (
	"net/http"

	"github.com/mmynk/taxava/internal/service"
)

// handleRegister handles POST /api/accounts
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := parseJSONBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	user, err := s.services.Auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// handleLogin handles POST /api/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := parseJSONBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	res, err := s.services.Auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// handleLogout handles POST /api/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Auth.Logout(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMe handles GET /api/me
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.services.Auth.CurrentUser(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// handleForgotPassword handles POST /api/password/forgot
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	found, err := s.services.Auth.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"found": found})
}

// handleHome handles GET /api/home
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	status, err := s.services.Onboarding.Home(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// handleCompleteOnboarding handles POST /api/onboarding/complete
func (s *Server) handleCompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	user, err := s.services.Onboarding.Complete(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
