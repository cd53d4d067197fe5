package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront-landing/internal/domain"
	"github.com/utafrali/storefront-landing/pkg/database"
	apperrors "github.com/utafrali/storefront-landing/pkg/errors"
)

const getFavoriteQuery = `SELECT favorite_product_id FROM user_favorite_products WHERE user_id = $1`

// FavoriteRepository implements repository.FavoriteRepository using PostgreSQL.
type FavoriteRepository struct {
	db database.DBTX
}

// NewFavoriteRepository creates a new PostgreSQL-backed favorite repository.
func NewFavoriteRepository(db database.DBTX) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// GetFavorite returns the favorite product assigned to userID.
func (r *FavoriteRepository) GetFavorite(ctx context.Context, userID string) (fav *domain.FavoriteAssignment, err error) {
	ctx, end := database.TraceQuery(ctx, "GetFavorite", getFavoriteQuery)
	defer func() { end(err) }()

	var productID *string
	if err := r.db.QueryRow(ctx, getFavoriteQuery, userID).Scan(&productID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("favorite")
		}
		return nil, fmt.Errorf("get favorite product for user %s: %w", userID, err)
	}

	if productID == nil || *productID == "" {
		return nil, apperrors.NotFound("favorite")
	}
	return &domain.FavoriteAssignment{UserID: userID, ProductID: *productID}, nil
}
