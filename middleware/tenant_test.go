package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/upb/llm-gateway/models"
)

func TestExtractTenant(t *testing.T) {
	var seen string
	handler := ExtractTenant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetTenantIDFromContext(r.Context())
	}))

	t.Run("header present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(TenantHeader, "team-research")
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, "team-research", seen)
	})

	t.Run("header absent falls back to public", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, models.PublicTenant, seen)
	})
}

func TestGetTenantIDFromContext_Empty(t *testing.T) {
	assert.Equal(t, "", GetTenantIDFromContext(context.Background()))
}
