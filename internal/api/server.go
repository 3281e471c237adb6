// Package api exposes the account, onboarding, company and property flows
// as a JSON HTTP API.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/taxava/internal/auth"
	"github.com/mmynk/taxava/internal/middleware"
	"github.com/mmynk/taxava/internal/service"
	"github.com/mmynk/taxava/internal/session"
)

// Services are the flows served by the API.
type Services struct {
	Auth       *service.AuthService
	Onboarding *service.OnboardingService
	Companies  *service.CompanyService
	Properties *service.PropertyService
}

// Config tunes the HTTP surface.
type Config struct {
	// RateLimit is the allowed requests per second per client; 0 disables it.
	RateLimit float64
	// RateBurst is the bucket size of the rate limiter.
	RateBurst int
}

// Server routes HTTP requests to the services.
type Server struct {
	router   *mux.Router
	services Services
	protect  func(http.Handler) http.Handler
}

// NewServer creates the router with middleware and routes.
func NewServer(services Services, jwtManager *auth.JWTManager, holder *session.Holder, cfg Config) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		services: services,
		protect:  middleware.RequireSession(jwtManager, holder, writeError),
	}

	s.router.Use(middleware.Logging)
	s.router.Use(middleware.Recovery(writeError))
	s.router.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst), writeError))

	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()

	// Account endpoints
	api.HandleFunc("/accounts", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/password/forgot", s.handleForgotPassword).Methods(http.MethodPost)
	api.Handle("/logout", s.protected(s.handleLogout)).Methods(http.MethodPost)
	api.Handle("/me", s.protected(s.handleMe)).Methods(http.MethodGet)

	// Onboarding endpoints
	api.Handle("/home", s.protected(s.handleHome)).Methods(http.MethodGet)
	api.Handle("/onboarding/complete", s.protected(s.handleCompleteOnboarding)).Methods(http.MethodPost)

	// Company endpoints
	api.Handle("/companies", s.protected(s.handleListCompanies)).Methods(http.MethodGet)
	api.Handle("/companies", s.protected(s.handleCreateCompany)).Methods(http.MethodPost)
	api.Handle("/companies/{id:[0-9]+}", s.protected(s.handleGetCompany)).Methods(http.MethodGet)
	api.Handle("/companies/{id:[0-9]+}", s.protected(s.handleUpdateCompany)).Methods(http.MethodPut)

	// Property endpoints
	api.Handle("/properties", s.protected(s.handleListProperties)).Methods(http.MethodGet)
	api.Handle("/properties", s.protected(s.handleCreateProperty)).Methods(http.MethodPost)
	api.Handle("/properties/{id:[0-9]+}", s.protected(s.handleGetProperty)).Methods(http.MethodGet)
	api.Handle("/properties/{id:[0-9]+}", s.protected(s.handleUpdateProperty)).Methods(http.MethodPut)
}

func (s *Server) protected(h http.HandlerFunc) http.Handler {
	return s.protect(h)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "taxava",
	})
}
