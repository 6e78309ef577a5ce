package middleware

import (
	"net/http"

	"github.com/upb/llm-gateway/models"
)

// TenantHeader carries the caller's tenant id. Identity verification is the
// edge proxy's job; by the time a request reaches the gateway the header is
// trusted.
const TenantHeader = "X-Tenant-ID"

// ExtractTenant resolves the tenant id from the request header and stores it
// in the context. A missing header falls back to the public tenant rather
// than rejecting the request.
func ExtractTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get(TenantHeader)
		if tenantID == "" {
			tenantID = models.PublicTenant
		}
		next.ServeHTTP(w, r.WithContext(WithTenantID(r.Context(), tenantID)))
	})
}
