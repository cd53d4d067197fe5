package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/storefront-landing/internal/domain"
	"github.com/utafrali/storefront-landing/internal/service"
	apperrors "github.com/utafrali/storefront-landing/pkg/errors"
	"github.com/utafrali/storefront-landing/pkg/httputil"
	"github.com/utafrali/storefront-landing/pkg/validator"
)

// LandingResolver resolves the landing view of a user.
type LandingResolver interface {
	Resolve(ctx context.Context, userID string) (*domain.LandingView, error)
}

// LandingHandler serves the storefront landing endpoint.
type LandingHandler struct {
	resolver LandingResolver
	logger   *slog.Logger
}

// NewLandingHandler creates a new landing HTTP handler.
func NewLandingHandler(resolver LandingResolver, logger *slog.Logger) *LandingHandler {
	return &LandingHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// LandingQuery holds the query parameters of GET /users.
type LandingQuery struct {
	UserID string `json:"user_id" validate:"required"`
}

// GetUserLanding handles GET /users?user_id=
func (h *LandingHandler) GetUserLanding(w http.ResponseWriter, r *http.Request) {
	q := LandingQuery{
		UserID: strings.TrimSpace(r.URL.Query().Get("user_id")),
	}
	if err := validator.Validate(q); err != nil {
		httputil.WriteError(w, r, queryError(err), h.logger)
		return
	}

	view, err := h.resolver.Resolve(r.Context(), q.UserID)
	if err != nil {
		var re *service.ResolveError
		if errors.As(err, &re) {
			err = re.AppError()
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, view)
}

func queryError(err error) error {
	var ve *validator.ValidationError
	if errors.As(err, &ve) {
		if missing := ve.Missing(); len(missing) > 0 {
			return apperrors.MissingParameter(missing[0])
		}
		return apperrors.InvalidInput(ve.Error())
	}
	return err
}
