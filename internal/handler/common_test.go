package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/patrickohh/Game-N-Go/internal/auth"
	"github.com/patrickohh/Game-N-Go/internal/relation"
	"github.com/patrickohh/Game-N-Go/internal/store"
)

// bearerVerifier treats the bearer token itself as the subject claim, so
// tests pick an identity per request without signing tokens.
type bearerVerifier struct{}

func (bearerVerifier) Verify(r *http.Request) (*auth.Claims, *auth.AuthError) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, &auth.AuthError{
			Code:        "no auth header",
			Description: "Authorization header is missing",
			Status:      http.StatusUnauthorized,
		}
	}
	return &auth.Claims{Subject: strings.TrimPrefix(header, "Bearer ")}, nil
}

// newTestAPI wires the production route table against an in-memory store.
func newTestAPI(t *testing.T) (*gin.Engine, *store.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := store.NewMemory()
	maintainer := relation.New(db)
	games := NewGameHandler(db, maintainer)
	stores := NewStoreHandler(db, maintainer)

	router := gin.New()
	requireAuth := auth.Middleware(bearerVerifier{})

	gameRoutes := router.Group("/games")
	gameRoutes.Use(requireAuth)
	{
		gameRoutes.POST("", games.Create)
		gameRoutes.GET("", games.List)
		gameRoutes.PUT("", MethodNotAllowed)
		gameRoutes.PATCH("", MethodNotAllowed)
		gameRoutes.DELETE("", MethodNotAllowed)
		gameRoutes.GET("/:id", games.Get)
		gameRoutes.PATCH("/:id", games.Patch)
		gameRoutes.PUT("/:id", games.Put)
		gameRoutes.DELETE("/:id", games.Delete)
		gameRoutes.PUT("/:id/stores/:store_id", games.Assign)
		gameRoutes.DELETE("/:id/stores/:store_id", games.Unassign)
		gameRoutes.PUT("/:id/rent", games.Rent)
		gameRoutes.DELETE("/:id/rent", games.Return)
	}

	storeRoutes := router.Group("/stores")
	storeRoutes.Use(requireAuth)
	{
		storeRoutes.POST("", stores.Create)
		storeRoutes.GET("", stores.List)
		storeRoutes.PUT("", MethodNotAllowed)
		storeRoutes.PATCH("", MethodNotAllowed)
		storeRoutes.DELETE("", MethodNotAllowed)
		storeRoutes.GET("/:id", stores.Get)
		storeRoutes.PATCH("/:id", stores.Patch)
		storeRoutes.PUT("/:id", stores.Put)
		storeRoutes.DELETE("/:id", stores.Delete)
	}

	return router, db
}

func do(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[ErrorResponse](t, w).Error
}

func validGame(title string) map[string]any {
	return map[string]any{
		"title":     title,
		"genre":     "platformer",
		"rating":    "E",
		"publisher": "Nintendo",
	}
}

func validStore(name string) map[string]any {
	return map[string]any{
		"name":     name,
		"location": "Corvallis",
		"type":     "retail",
	}
}

func createGame(t *testing.T, router *gin.Engine, token, title string) string {
	t.Helper()
	w := do(t, router, http.MethodPost, "/games", token, validGame(title))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]any](t, w)["id"].(string)
}

func createStore(t *testing.T, router *gin.Engine, token, name string) string {
	t.Helper()
	w := do(t, router, http.MethodPost, "/stores", token, validStore(name))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]any](t, w)["id"].(string)
}
