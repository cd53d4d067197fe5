package repository

import (
	"context"

	"github.com/utafrali/storefront-landing/internal/domain"
)

// FavoriteRepository reads the user to favorite-product assignments kept in
// the local store. The resolver never writes through it.
type FavoriteRepository interface {
	// GetFavorite returns the assignment for userID. It returns an
	// apperrors.NotFound("favorite") error when the user has no row or the
	// row's product column is NULL.
	GetFavorite(ctx context.Context, userID string) (*domain.FavoriteAssignment, error)
}
