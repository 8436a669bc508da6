package controller_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/coregate/cache"
	"github.com/dev-mohitbeniwal/coregate/controller"
	"github.com/dev-mohitbeniwal/coregate/test/mock"
)

func TestSignatureController(t *testing.T) {
	signatures := new(mock.MockSignatureService)
	router, api := setupRouter()
	controller.NewSignatureController(signatures).RegisterRoutes(api)

	t.Run("CreateSignature_Success", func(t *testing.T) {
		signatures.On("EncryptSignature", `{"page":"2"}`, `{"amount":10}`, "pk-1").
			Return("$2a$10$hash", nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/signatures?page=2", strings.NewReader(`{"amount":10}`))
		req.Header.Set("x-api-key", "pk-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"signature":"$2a$10$hash"}`, w.Body.String())
	})

	t.Run("CreateSignature_EmptyRequest", func(t *testing.T) {
		signatures.On("EncryptSignature", "{}", "", "pk-1").Return("$2a$10$empty", nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/signatures", nil)
		req.Header.Set("x-api-key", "pk-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("CreateSignature_MissingAPIKey", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/signatures", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("CreateSignature_HashFailure", func(t *testing.T) {
		signatures.On("EncryptSignature", "{}", "", "pk-2").Return("", assert.AnError).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/signatures", nil)
		req.Header.Set("x-api-key", "pk-2")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	signatures.AssertExpectations(t)
}

func TestHealthController(t *testing.T) {
	router, _ := setupRouter()
	up := true
	controller.NewHealthController(func() bool { return up }, cache.NoopStore{}).RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","cache":"up"}`, w.Body.String())

	up = false
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.JSONEq(t, `{"status":"ok","cache":"degraded"}`, w.Body.String())
}

func TestHealthControllerMemoryFallback(t *testing.T) {
	router, _ := setupRouter()
	store := cache.NewMemoryStore(8)
	require.NoError(t, store.Set(context.Background(), "feature-flag:f:u1:7", "{}", time.Minute))
	controller.NewHealthController(func() bool { return false }, store).RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.JSONEq(t, `{"status":"ok","cache":"memory","entries":1}`, w.Body.String())
}
