package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/taxava/internal/auth"
	"github.com/mmynk/taxava/internal/catalog"
	"github.com/mmynk/taxava/internal/models"
	"github.com/mmynk/taxava/internal/seed"
	"github.com/mmynk/taxava/internal/service"
	"github.com/mmynk/taxava/internal/session"
	"github.com/mmynk/taxava/internal/storage/sqlite"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(sqlite.MemoryPath)
	require.NoError(t, err)

	seedStore, err := seed.Default()
	require.NoError(t, err)

	cat := catalog.New(seedStore, store)
	holder := session.NewHolder(store)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv := NewServer(Services{
		Auth:       service.NewAuthService(auth.NewPasswordAuthenticator(cat), jwtManager, holder, cat, logger),
		Onboarding: service.NewOnboardingService(cat, holder),
		Companies:  service.NewCompanyService(cat),
		Properties: service.NewPropertyService(cat),
	}, jwtManager, holder, Config{})

	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		store.Close()
	})
	return ts
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path string, body any, out any) int {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (c *client) login(identifier, password string) service.LoginResult {
	c.t.Helper()
	var res service.LoginResult
	status := c.do(http.MethodPost, "/api/login", service.LoginRequest{
		Mode: auth.LoginByEmail, Identifier: identifier, Password: password,
	}, &res)
	require.Equal(c.t, http.StatusOK, status)
	c.token = res.Token
	return res
}

func TestHealthAndMetrics(t *testing.T) {
	ts := setupTestServer(t)
	c := &client{t: t, base: ts.URL}

	var health map[string]string
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/health", nil, &health))
	assert.Equal(t, "healthy", health["status"])

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "taxava_http_request_duration_seconds")
}

func TestAccountFlow(t *testing.T) {
	ts := setupTestServer(t)
	c := &client{t: t, base: ts.URL}

	var user models.User
	status := c.do(http.MethodPost, "/api/accounts", service.RegisterRequest{
		Username: "dewi", Email: "dewi@gmail.com", Password: "pw", PasswordConfirm: "pw",
	}, &user)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 4, user.ID)

	var errResp ErrorResponse
	status = c.do(http.MethodPost, "/api/accounts", service.RegisterRequest{
		Username: "dewi", Email: "DEWI@gmail.com", Password: "pw", PasswordConfirm: "pw",
	}, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, ErrCodeEmailExists, errResp.Error.Code)

	status = c.do(http.MethodPost, "/api/accounts", service.RegisterRequest{
		Username: "eka", Email: "eka@gmail.com", Password: "a", PasswordConfirm: "b",
	}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "passwordConfirm", errResp.Error.Details["field"])

	status = c.do(http.MethodPost, "/api/login", service.LoginRequest{
		Mode: auth.LoginByEmail, Identifier: "dewi@gmail.com", Password: "nope",
	}, &errResp)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, ErrCodeInvalidCredentials, errResp.Error.Code)

	res := c.login("dewi@gmail.com", "pw")
	assert.Equal(t, service.NextOnboarding, res.Next)

	var home service.HomeStatus
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/home", nil, &home))
	assert.False(t, home.HasCompany)
	assert.Equal(t, service.ActionAdd, home.CompanyAction)

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/onboarding/complete", nil, &user))
	assert.True(t, user.HasOnboarded)

	var me models.User
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/me", nil, &me))
	assert.True(t, me.HasOnboarded)
	assert.Empty(t, me.Password)

	assert.Equal(t, http.StatusNoContent, c.do(http.MethodPost, "/api/logout", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/me", nil, &errResp), "token is dead after logout")
	assert.Equal(t, ErrCodeUnauthorized, errResp.Error.Code)
}

func TestForgotPasswordEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	c := &client{t: t, base: ts.URL}

	var res map[string]bool
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/password/forgot", map[string]string{"email": "andi@gmail.com"}, &res))
	assert.True(t, res["found"])

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/password/forgot", map[string]string{"email": "x@gmail.com"}, &res))
	assert.False(t, res["found"])
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	ts := setupTestServer(t)
	c := &client{t: t, base: ts.URL}

	for _, path := range []string{"/api/me", "/api/home", "/api/companies", "/api/properties", "/api/companies/1"} {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, path, nil, nil))
		})
	}
}

func TestSecondLoginReplacesSession(t *testing.T) {
	ts := setupTestServer(t)
	andi := &client{t: t, base: ts.URL}
	sari := &client{t: t, base: ts.URL}

	andi.login("andi@gmail.com", "andi123")
	sari.login("sari@gmail.com", "sari123")

	assert.Equal(t, http.StatusUnauthorized, andi.do(http.MethodGet, "/api/me", nil, nil))
	assert.Equal(t, http.StatusOK, sari.do(http.MethodGet, "/api/me", nil, nil))
}

func TestCompanyEndpoints(t *testing.T) {
	ts := setupTestServer(t)
	c := &client{t: t, base: ts.URL}
	c.login("andi@gmail.com", "andi123")

	var companies []models.Company
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/companies?sort=desc", nil, &companies))
	require.Len(t, companies, 2)
	assert.Equal(t, "PT Maju Jaya", companies[0].Name)

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/companies?search=sumber", nil, &companies))
	require.Len(t, companies, 1)
	assert.Equal(t, 2, companies[0].ID)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/companies?sort=up", nil, nil))

	in := service.CompanyInput{
		Name: "PT Baru", Phone: "021555", MailingAddress: "Jl. Baru 1", SameAddress: true,
		OwnerName: "Andi Wijaya", OwnerEmail: "andi@gmail.com",
	}
	var created models.Company
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/companies", in, &created))
	assert.Equal(t, 4, created.ID)
	assert.Equal(t, 1, created.UserID)

	in.Name = "PT Baru Sekali"
	var updated models.Company
	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/api/companies/4", in, &updated))
	assert.Equal(t, "PT Baru Sekali", updated.Name)

	var got models.Company
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/companies/4", nil, &got))
	assert.Equal(t, updated, got)

	var errResp ErrorResponse
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/companies/3", nil, &errResp), "sari's company")
	assert.Equal(t, ErrCodeNotFound, errResp.Error.Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/companies/abc", nil, nil))

	in.Phone = "phone"
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/companies", in, &errResp))
	assert.Equal(t, "phone", errResp.Error.Details["field"])
}

func TestPropertyEndpoints(t *testing.T) {
	ts := setupTestServer(t)
	c := &client{t: t, base: ts.URL}
	c.login("andi@gmail.com", "andi123")

	var properties []models.Property
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/properties", nil, &properties))
	require.Len(t, properties, 3)
	assert.Equal(t, "Gudang Cimahi", properties[0].Name)
	assert.Equal(t, "Andi Wijaya", properties[0].OwnerName, "legacy owner key is read")

	in := service.PropertyInput{
		Name: "Kantor Baru", Type: models.PropertyTypeKantor, CompanyID: 1,
		SameAsCompany: true, SameAsMailing: true,
	}
	var created models.Property
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/properties", in, &created))
	assert.Equal(t, 5, created.ID)
	assert.Equal(t, "Jl. Sudirman No. 10, Jakarta", created.ReturnAddress)

	var errResp ErrorResponse
	in.CompanyID = 77
	assert.Equal(t, http.StatusUnprocessableEntity, c.do(http.MethodPost, "/api/properties", in, &errResp))
	assert.Equal(t, ErrCodeDanglingReference, errResp.Error.Code)

	in.CompanyID = 3
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/properties", in, &errResp))

	in.CompanyID = 2
	var updated models.Property
	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/api/properties/5", in, &updated))
	assert.Equal(t, 2, updated.CompanyID)

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/properties/4", nil, nil), "sari's property")
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPut, "/api/properties/99", in, nil))
}

func TestMalformedBody(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := http.Post(ts.URL+"/api/login", "application/json", strings.NewReader(`{"mode":`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMapError(t *testing.T) {
	status, body := mapError(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, ErrCodeInternalError, body.Code)

	status, _ = mapError(&catalog.DanglingReferenceError{Entity: "company", Field: "userId", ID: 9})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}
