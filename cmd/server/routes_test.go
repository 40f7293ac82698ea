package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"re-view.backend/internal/infrastructure/database"
	"re-view.backend/internal/interfaces/http/handlers"
	"re-view.backend/pkg/metrics"
	"re-view.backend/pkg/redis"
)

func TestRegisterAPIV1Routes_RegistersKeyRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	registerAPIV1Routes(r, routeDeps{
		authHandler:    &handlers.AuthHandler{},
		userHandler:    &handlers.UserHandler{},
		brandHandler:   &handlers.BrandHandler{},
		productHandler: &handlers.ProductHandler{},
		reviewHandler:  &handlers.ReviewHandler{},
	})

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, exp := range []string{
		"POST /api/v1/auth/signup",
		"POST /api/v1/auth/signin",
		"POST /api/v1/auth/signout",
		"POST /api/v1/auth/refresh",
		"GET /api/v1/users/me",
		"GET /api/v1/users/search",
		"PATCH /api/v1/users/:id",
		"GET /api/v1/users/:id/reviews",
		"POST /api/v1/brands",
		"GET /api/v1/brands/search",
		"POST /api/v1/brands/:id/verify",
		"GET /api/v1/brands/:id/rating",
		"POST /api/v1/products",
		"PATCH /api/v1/products/:id",
		"DELETE /api/v1/products/:id",
		"POST /api/v1/products/:id/merge",
		"GET /api/v1/products/:id/reviews",
		"GET /api/v1/products/:id/rating",
		"POST /api/v1/reviews",
		"GET /api/v1/reviews/:id",
		"DELETE /api/v1/reviews/:id",
		"PATCH /api/v1/reviews/:id/status",
	} {
		assert.True(t, registered[exp], "route %s not registered", exp)
	}
}

func TestRegisterAPIV1Routes_RequireAuthOnMe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerAPIV1Routes(r, routeDeps{
		authHandler:    &handlers.AuthHandler{},
		userHandler:    &handlers.UserHandler{},
		brandHandler:   &handlers.BrandHandler{},
		productHandler: &handlers.ProductHandler{},
		reviewHandler:  &handlers.ReviewHandler{},
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// apiClient drives a fully wired router backed by sqlite and miniredis
type apiClient struct {
	t *testing.T
	r *gin.Engine
}

func newAPIClient(t *testing.T, name string) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	withMainHooks(t)
	useMiniredis(t)
	require.NoError(t, initRedis("", ""))

	cfg, err := baseTestConfig(name)(context.Background())
	require.NoError(t, err)
	db, err := database.Open(context.Background(), cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	store, err := redis.NewSessionStore(cfg.Security.SessionEncryptionKey)
	require.NoError(t, err)

	return &apiClient{t: t, r: buildRouter(cfg, db, store, nil, metrics.New())}
}

func (a *apiClient) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.r.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (a *apiClient) signupAndSignin(name, email string) (string, string) {
	a.t.Helper()
	status, body := a.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]any{
		"name": name, "email": email, "password": "secret123",
	})
	require.Equal(a.t, http.StatusCreated, status, body)
	id := body["user"].(map[string]any)["id"].(string)

	status, body = a.do(http.MethodPost, "/api/v1/auth/signin", "", map[string]any{
		"email": email, "password": "secret123",
	})
	require.Equal(a.t, http.StatusOK, status, body)
	return id, body["accessToken"].(string)
}

func TestAPI_ReviewLifecycle(t *testing.T) {
	api := newAPIClient(t, "api_lifecycle")

	_, alice := api.signupAndSignin("Alice", "alice@example.com")
	bobID, bob := api.signupAndSignin("Bob", "bob@example.com")

	status, brand := api.do(http.MethodPost, "/api/v1/brands", alice, map[string]any{"name": "Acme"})
	require.Equal(t, http.StatusCreated, status, brand)
	brandID := brand["id"].(string)

	status, product := api.do(http.MethodPost, "/api/v1/products", alice, map[string]any{
		"name": "Anvil", "type": "PRODUCT", "brandId": brandID,
	})
	require.Equal(t, http.StatusCreated, status, product)
	assert.Equal(t, true, product["verified"], "owners create verified products")
	productID := product["id"].(string)

	status, review := api.do(http.MethodPost, "/api/v1/reviews", bob, map[string]any{
		"productId": productID, "rating": 4, "title": "Solid",
	})
	require.Equal(t, http.StatusOK, status, review)
	assert.Equal(t, "APPROVED", review["status"])
	assert.Equal(t, bobID, review["userId"])
	reviewID := review["id"].(string)

	status, rating := api.do(http.MethodGet, "/api/v1/products/"+productID+"/rating", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 4.0, rating["averageRating"])
	assert.Equal(t, 1.0, rating["count"])

	// bob cannot moderate, alice owns the brand
	status, errBody := api.do(http.MethodPatch, "/api/v1/reviews/"+reviewID+"/status", bob, map[string]any{"status": "FLAGGED"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errBody["code"])
	status, _ = api.do(http.MethodPatch, "/api/v1/reviews/"+reviewID+"/status", alice, map[string]any{"status": "FLAGGED"})
	require.Equal(t, http.StatusOK, status)

	// flagged reviews drop out of the public view and the public aggregate
	status, page := api.do(http.MethodGet, "/api/v1/products/"+productID+"/reviews", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, page["items"])
	summary := page["summary"].(map[string]any)
	assert.Nil(t, summary["averageRating"])
	assert.Equal(t, 0.0, summary["count"])

	// the author and the owner still see it
	for _, token := range []string{bob, alice} {
		status, page = api.do(http.MethodGet, "/api/v1/products/"+productID+"/reviews", token, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, page["items"], 1)
	}

	status, _ = api.do(http.MethodGet, "/api/v1/reviews/"+reviewID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = api.do(http.MethodGet, "/api/v1/reviews/"+reviewID, bob, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_ValidationAndAuthErrors(t *testing.T) {
	api := newAPIClient(t, "api_errors")
	_, token := api.signupAndSignin("Carol", "carol@example.com")

	status, body := api.do(http.MethodPost, "/api/v1/brands", "", map[string]any{"name": "Anon"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body["code"])

	status, body = api.do(http.MethodPost, "/api/v1/reviews", token, map[string]any{"rating": 9})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.NotEmpty(t, body["details"])

	status, body = api.do(http.MethodGet, "/api/v1/products?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	status, body = api.do(http.MethodGet, "/api/v1/users/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status, body)
}
