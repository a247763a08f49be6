package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/internal/auth"
	"gatepass/internal/config"
	"gatepass/internal/handler"
	"gatepass/internal/logging"
	"gatepass/internal/repository"
	"gatepass/internal/service"
	"gatepass/internal/testutil"
)

type testServer struct {
	e     *echo.Echo
	users service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gormDB := testutil.NewDB(t)
	logger := logging.Discard()
	cfg := &config.Config{CORSOrigins: []string{"http://localhost:5173"}}

	userRepo := repository.NewUserRepository(gormDB)
	jwtService := auth.NewJWTService("router-test-secret")
	tokenStore := auth.NewTokenStore(nil)

	authService := service.NewAuthService(userRepo, jwtService, tokenStore, logger)
	userService := service.NewUserService(userRepo, nil)
	productService := service.NewProductService(repository.NewProductRepository(gormDB))
	gatePassService := service.NewGatePassService(repository.NewGatePassRepository(gormDB), nil, logger)

	_, err := userService.EnsureDefaultAdmin(context.Background(), "admin123")
	require.NoError(t, err)

	e := echo.New()
	Register(e, cfg, logger, authService, service.NewAuthorizer(userService), Handlers{
		Auth:     handler.NewAuthHandler(authService, userService),
		User:     handler.NewUserHandler(userService),
		Product:  handler.NewProductHandler(productService),
		GatePass: handler.NewGatePassHandler(gatePassService),
	})
	return &testServer{e: e, users: userService}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/login", "",
		`{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handler.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.AccessToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/auth/login", "", `{"username":"admin","password":"admin123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handler.AuthResponse
	decode(t, rec, &resp)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "admin", resp.User.Username)
	assert.Equal(t, "admin", resp.User.Role)

	rec = s.do(t, http.MethodPost, "/auth/login", "", `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/login", "", `{"username":"nobody","password":"admin123"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_CREDENTIALS")
}

func TestLoginPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/auth/login", nil)
	req.Header.Set(echo.HeaderOrigin, "http://192.168.1.20:5173")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://192.168.1.20:5173", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowMethods), "POST")
}

func TestBanner(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Gate Pass API"}`, rec.Body.String())
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/products", "/gate-passes", "/users", "/auth/me"} {
		rec := s.do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)

		rec = s.do(t, http.MethodGet, path, "not-a-token", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestUsersRequireEncodingOrAdmin(t *testing.T) {
	s := newTestServer(t)
	_, err := s.users.CreateUser(context.Background(), service.UserInput{
		Username: "gate", Password: "scan1234", Role: "scan_only",
	})
	require.NoError(t, err)

	scanToken := s.login(t, "gate", "scan1234")
	rec := s.do(t, http.MethodGet, "/users", scanToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/products", scanToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	adminToken := s.login(t, "admin", "admin123")
	rec = s.do(t, http.MethodGet, "/users", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var users []map[string]interface{}
	decode(t, rec, &users)
	require.Len(t, users, 2)
	assert.NotContains(t, users[0], "password_hash")
}

func TestUserManagement(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin", "admin123")

	rec := s.do(t, http.MethodPost, "/users", token, `{"username":"ana","password":"pw","full_name":"Ana","role":"encoding"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created map[string]interface{}
	decode(t, rec, &created)
	id := int(created["id"].(float64))

	rec = s.do(t, http.MethodPost, "/users", token, `{"username":"ana","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/users/"+itoa(id), token, `{"username":"ana2","full_name":"Ana B","role":"admin"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	s.login(t, "ana2", "pw")

	rec = s.do(t, http.MethodDelete, "/users/"+itoa(id), token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = s.do(t, http.MethodDelete, "/users/"+itoa(id), token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProducts(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin", "admin123")

	rec := s.do(t, http.MethodPost, "/products", token, `{"item_code":"A-1","item_description":"Anchor"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/products", token, `{"item_code":"A-1","item_description":"Again"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ITEM_CODE_EXISTS")

	rec = s.do(t, http.MethodPost, "/products", token, `{"item_code":"","item_description":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/products/bulk", token,
		`[{"item_code":"A-1","item_description":"dup"},{"item_code":"B-1","item_description":"Bolt"},{"item_code":"","item_description":"skip me"}]`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"created":1,"skipped":["A-1"]}`, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/products/999", token, `{"item_code":"Z","item_description":"z"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/products/abc", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGatePassFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin", "admin123")

	rec := s.do(t, http.MethodPost, "/gate-passes", token,
		`{"pass_date":"2026-01-15","authorized_name":"Juan","items":[{"item_description":"Pallet A","qty":10}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var first map[string]interface{}
	decode(t, rec, &first)
	assert.Equal(t, "20260001", first["gp_number"])
	assert.Equal(t, "pending", first["status"])
	assert.Equal(t, "out", first["in_or_out"])
	assert.Equal(t, true, first["purpose_delivery"])
	assert.Equal(t, "2026-01-15", first["pass_date"])
	assert.Len(t, first["items"], 1)

	rec = s.do(t, http.MethodPost, "/gate-passes", token,
		`{"pass_date":"2026-02-01","authorized_name":"Juan","purpose_delivery":false,"in_or_out":"in","items":[]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var second map[string]interface{}
	decode(t, rec, &second)
	assert.Equal(t, "20260002", second["gp_number"])
	assert.Equal(t, false, second["purpose_delivery"])
	assert.Equal(t, []interface{}{}, second["items"])

	rec = s.do(t, http.MethodPost, "/gate-passes", token, `{"authorized_name":"Juan"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Scanner lookup works without a token.
	rec = s.do(t, http.MethodGet, "/gate-passes/by-number/20260001", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/gate-passes/by-number/20269999", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	id := itoa(int(first["id"].(float64)))
	rec = s.do(t, http.MethodPatch, "/gate-passes/"+id+"/status", token, `{"status":"rejected","rejected_remarks":"no plate"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rejected map[string]interface{}
	decode(t, rec, &rejected)
	assert.Equal(t, "no plate", rejected["rejected_remarks"])

	rec = s.do(t, http.MethodPatch, "/gate-passes/"+id+"/status", token, `{"status":"approved"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var approved map[string]interface{}
	decode(t, rec, &approved)
	assert.Nil(t, approved["rejected_remarks"])
	assert.NotNil(t, approved["date_approved"])

	rec = s.do(t, http.MethodPatch, "/gate-passes/"+id+"/status", token, `{"status":"closed"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPatch, "/gate-passes/"+id+"/status", token, `{"status":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPatch, "/gate-passes/999/status", token, `{"status":"approved"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/gate-passes", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]interface{}
	decode(t, rec, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "20260002", list[0]["gp_number"])

	rec = s.do(t, http.MethodGet, "/gate-passes/999", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMeAndLogout(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin", "admin123")

	rec := s.do(t, http.MethodGet, "/auth/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var me handler.UserView
	decode(t, rec, &me)
	assert.Equal(t, "admin", me.Username)
	assert.Equal(t, "admin", me.Role)

	rec = s.do(t, http.MethodPost, "/auth/logout", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
