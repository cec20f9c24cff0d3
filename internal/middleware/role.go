package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

type contextKey string

const shopRoleKey contextKey = "shop_role"

// RoleHeader carries the caller's storefront role. There are no accounts and
// no credentials; the header only selects which surface of the shop the
// caller is using.
const RoleHeader = "X-Shop-Role"

const (
	RoleCustomer = "customer"
	RoleCashier  = "cashier"
)

// ExtractRole reads the shop role from the request header and stores it in
// the request context. Missing or unrecognized values default to customer.
func ExtractRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := r.Header.Get(RoleHeader)
		if role != RoleCashier {
			role = RoleCustomer
		}
		ctx := context.WithValue(r.Context(), shopRoleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetShopRole extracts the shop role from the context
func GetShopRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(shopRoleKey).(string)
	return role, ok
}

// RequireCashier ensures the caller is on the cashier surface
func RequireCashier(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetShopRole(r.Context())
			if !ok || role != RoleCashier {
				logger.Warn("Non-cashier caller attempted to access cashier endpoint",
					zap.String("role", role),
					zap.String("path", r.URL.Path),
				)
				RespondWithError(w, http.StatusForbidden, "cashier role required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
