package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/config"
	"storefront/internal/delivery/api/router"
	"storefront/internal/delivery/api/router/handler"
	"storefront/internal/delivery/middleware"
	"storefront/internal/guard"
	"storefront/internal/infra/auth"
	"storefront/internal/infra/persistence/memory"
	"storefront/internal/infra/qrcode"
	"storefront/internal/storefront"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// newBackend fakes the storefront REST API for one seller and one shopper.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()

	users := map[string]map[string]any{
		"seller@example.com": {"id": "s1", "fullname": "Sam Seller", "email": "seller@example.com", "role": "seller"},
		"ada@example.com":    {"id": "u1", "fullname": "Ada", "email": "ada@example.com", "role": "user"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		user, ok := users[body.Email]
		if !ok || body.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "invalid credentials"})

			return
		}
		http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: "r-" + user["id"].(string), Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"user": user, "accessToken": "access-" + user["id"].(string)}})
	})
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "no refresh token"})
	})
	mux.HandleFunc("GET /api/products/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{
			{"id": "p1", "title": "Mug", "price": "12.50", "sellerId": "s1", "published": true},
			{"id": "p2", "title": "Teapot", "price": "40", "sellerId": "s2", "published": true},
			{"id": "p3", "title": "Saucer", "price": "5", "sellerId": "s1", "published": false},
		}})
	})
	mux.HandleFunc("GET /api/guest-cart", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"items": []map[string]any{
			{"itemId": "i1", "product": map[string]any{"id": "p2", "title": "Teapot", "price": "40"}, "quantity": 2},
		}}})
	})
	mux.HandleFunc("POST /api/guest-cart/summary", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"summary": map[string]any{
			"total": "80", "discount": "0", "finalAmount": "80",
		}}})
	})
	mux.HandleFunc("POST /api/coupons/validate", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Code           string  `json:"code"`
			PurchaseAmount float64 `json:"purchaseAmount"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Code != "SAVE10" || body.PurchaseAmount != 80 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Coupon expired"})

			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"code": "SAVE10", "type": "percentage", "value": "10"}})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

// newTestServer wires the BFF the way the fx graph does, against backend.
func newTestServer(t *testing.T, backend *httptest.Server) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{}
	cfg.HTTP.MaxRequestBodySize = "1MB"
	cfg.API.BaseURL = backend.URL + "/api"
	cfg.API.Timeout = 5 * time.Second
	cfg.Cache = config.DefaultCache()
	cfg.Visitor = config.VisitorConfig{CookieName: "sf_visitor", IdleTTL: time.Minute, SweepInterval: time.Minute, Retention: time.Hour}

	qr, err := qrcode.NewQRCodeService(128, "M", "https://shop.example.com/orders/")
	require.NoError(t, err)
	sealer, err := auth.NewEphemeralSealer()
	require.NoError(t, err)

	registry := storefront.NewRegistryWith(storefront.Deps{
		Config:    cfg,
		Logger:    logger,
		Inspector: auth.NewJWTInspector(),
		QRCodes:   qr,
	}, memory.NewVisitorRepository(), sealer, cfg.Visitor)

	e := NewEcho(cfg, logger, router.RouterParams{
		HealthHandler:  handler.NewHealthHandler(handler.HealthHandlerParams{Registry: registry, Config: cfg}),
		AuthHandler:    handler.NewAuthHandler(handler.AuthHandlerParams{Logger: logger}),
		CatalogHandler: handler.NewCatalogHandler(),
		CartHandler:    handler.NewCartHandler(),
		OrderHandler:   handler.NewOrderHandler(handler.OrderHandlerParams{Logger: logger}),
		SellerHandler:  handler.NewSellerHandler(),
		AdminHandler:   handler.NewAdminHandler(),
		VisitorMiddleware: middleware.NewVisitorMiddleware(middleware.VisitorMiddlewareParams{
			Registry: registry,
			Config:   cfg,
			Logger:   logger,
		}),
		GuardMiddleware: middleware.NewGuardMiddleware(guard.DefaultPolicy()),
	})

	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	return server
}

// browser keeps the visitor cookie between requests.
func browser(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &http.Client{Jar: jar}
}

func call(t *testing.T, client *http.Client, method, url string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}

	return resp.StatusCode, env
}

func TestServer_Health(t *testing.T) {
	server := newTestServer(t, newBackend(t))

	status, env := call(t, browser(t), http.MethodGet, server.URL+"/health", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"status":"ok"`)
	assert.NotEmpty(t, env.Meta.RequestID)
}

func TestServer_AnonymousVisitorGetsCookieAndSession(t *testing.T) {
	server := newTestServer(t, newBackend(t))
	client := browser(t)

	status, env := call(t, client, http.MethodGet, server.URL+"/api/session", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"status":"anonymous"`)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/session", nil)
	require.NoError(t, err)
	cookies := client.Jar.Cookies(req.URL)
	require.Len(t, cookies, 1)
	assert.Equal(t, "sf_visitor", cookies[0].Name)
}

func TestServer_AnonymousOrdersRequireLogin(t *testing.T) {
	server := newTestServer(t, newBackend(t))

	status, env := call(t, browser(t), http.MethodGet, server.URL+"/api/orders", nil)

	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_AUTHENTICATED", env.Error.Code)
}

func TestServer_SellerBackOffice(t *testing.T) {
	server := newTestServer(t, newBackend(t))
	client := browser(t)

	status, env := call(t, client, http.MethodPost, server.URL+"/api/auth/login", map[string]string{
		"email":    "seller@example.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"status":"authenticated"`)
	assert.NotContains(t, string(env.Data), "access-s1", "the access token never leaves the server")

	status, env = call(t, client, http.MethodGet, server.URL+"/api/seller/products?page=1&limit=10", nil)
	require.Equal(t, http.StatusOK, status)

	var page struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 2, page.Total)
	for _, item := range page.Items {
		assert.NotEqual(t, "p2", item.ID, "sellers only see their own products")
	}

	status, env = call(t, client, http.MethodGet, server.URL+"/api/seller/products?published=true", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 1, page.Total)

	status, env = call(t, client, http.MethodGet, server.URL+"/api/admin/users", nil)
	assert.Equal(t, http.StatusForbidden, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
}

func TestServer_LoginRejected(t *testing.T) {
	server := newTestServer(t, newBackend(t))

	status, env := call(t, browser(t), http.MethodPost, server.URL+"/api/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "invalid credentials", env.Error.Message)
}

func TestServer_ValidationDetails(t *testing.T) {
	server := newTestServer(t, newBackend(t))

	status, env := call(t, browser(t), http.MethodPost, server.URL+"/api/auth/login", map[string]string{"email": "not-an-email"})

	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	var fields []struct {
		Field string `json:"field"`
	}
	require.NoError(t, json.Unmarshal(env.Error.Details, &fields))
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	assert.ElementsMatch(t, []string{"email", "password"}, names)
}

func TestServer_CouponFlow(t *testing.T) {
	server := newTestServer(t, newBackend(t))
	client := browser(t)

	status, env := call(t, client, http.MethodPost, server.URL+"/api/coupons", map[string]string{"code": "old"})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "COUPON_REJECTED", env.Error.Code)
	assert.Equal(t, "Coupon expired", env.Error.Message)

	status, env = call(t, client, http.MethodPost, server.URL+"/api/coupons", map[string]string{"code": " save10 "})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, strings.Contains(string(env.Data), `"code":"SAVE10"`))

	status, env = call(t, client, http.MethodGet, server.URL+"/api/coupons", nil)
	require.Equal(t, http.StatusOK, status)

	var state struct {
		Accepted []struct {
			Code string `json:"code"`
		} `json:"accepted"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &state))
	require.Len(t, state.Accepted, 1)
	assert.Equal(t, "SAVE10", state.Accepted[0].Code)
	assert.Empty(t, state.Error)
}

func TestServer_RequestIDIsEchoed(t *testing.T) {
	server := newTestServer(t, newBackend(t))

	req, err := http.NewRequest(http.MethodGet, server.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "trace-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "trace-123", resp.Header.Get("X-Request-Id"))
}
