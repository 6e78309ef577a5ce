package middleware

import "context"

// Context key type to avoid collisions
type contextKey string

const (
	// TenantIDKey is the context key for the tenant id
	TenantIDKey contextKey = "tenant_id"
)

// WithTenantID adds a tenant id to the context
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, TenantIDKey, tenantID)
}

// GetTenantIDFromContext retrieves the tenant id from context
func GetTenantIDFromContext(ctx context.Context) string {
	if val := ctx.Value(TenantIDKey); val != nil {
		if tenantID, ok := val.(string); ok {
			return tenantID
		}
	}
	return ""
}
