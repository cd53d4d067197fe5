package http

import (
	"log/slog"
	"net/http"

	goshopify "github.com/bold-commerce/go-shopify/v4"

	apperrors "github.com/utafrali/storefront-landing/pkg/errors"
	"github.com/utafrali/storefront-landing/pkg/httputil"
	"github.com/utafrali/storefront-landing/pkg/logger"
)

// VerifyAppProxySignature rejects requests whose Shopify app proxy signature
// does not match secret. An empty secret disables the check.
//
// Once the signature verifies, the shop parameter is trusted and is added to
// the context and the request logger as shop.
func VerifyAppProxySignature(secret string, log *slog.Logger) func(http.Handler) http.Handler {
	app := goshopify.App{ApiSecret: secret}

	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !app.VerifySignature(r.URL) {
				logger.WithContext(ctx, log).WarnContext(ctx, "app proxy signature rejected",
					slog.String("path", r.URL.Path),
				)
				httputil.WriteError(w, r, apperrors.Unauthorized("INVALID_SIGNATURE", "invalid app proxy signature"), log)
				return
			}

			if shop := r.URL.Query().Get("shop"); shop != "" {
				ctx = logger.WithShop(ctx, shop)
				ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("shop", shop)))
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}
