package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/storefront-landing/pkg/logger"
)

// ShopQueryParam is the query parameter Shopify adds to app proxy requests
// to identify the storefront.
const ShopQueryParam = "shop"

// maxShopLen is the longest hostname DNS allows.
const maxShopLen = 253

// RequestLogger stores a request-scoped logger in the context, enriched with
// correlation_id, shop_claimed, trace_id and span_id. Handlers retrieve it
// with logger.FromContext.
//
// The shop query parameter is unauthenticated at this point, so it is logged
// as shop_claimed and only when it looks like a hostname. The app proxy
// signature check adds the verified shop field.
//
// Mount it after RequestLogging and Tracing so both IDs are available.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if shop := r.URL.Query().Get(ShopQueryParam); plausibleShop(shop) {
				ctx = logger.WithClaimedShop(ctx, shop)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// plausibleShop reports whether s is a bounded, lower-case hostname.
func plausibleShop(s string) bool {
	if s == "" || len(s) > maxShopLen || strings.HasPrefix(s, ".") || strings.HasPrefix(s, "-") {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '.' || c == '-') {
			return false
		}
	}
	return true
}
