package shopify

import (
	"context"

	"github.com/utafrali/storefront-landing/internal/domain"
	apperrors "github.com/utafrali/storefront-landing/pkg/errors"
)

type productData struct {
	Product *struct {
		ID             string  `json:"id"`
		Title          string  `json:"title"`
		Description    string  `json:"description"`
		OnlineStoreURL *string `json:"onlineStoreUrl"`
	} `json:"product"`
}

type productImageData struct {
	Product *struct {
		Media struct {
			Nodes []struct {
				ID    string  `json:"id"`
				Alt   *string `json:"alt"`
				Image *struct {
					Width  int    `json:"width"`
					Height int    `json:"height"`
					URL    string `json:"url"`
				} `json:"image"`
			} `json:"nodes"`
		} `json:"media"`
	} `json:"product"`
}

// GetProduct fetches product detail without media. A product that does not
// exist yields apperrors.NotFound("product").
func (c *Client) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	var data productData
	if err := c.Execute(ctx, "getProduct", productQuery, map[string]any{"id": ProductGID(productID)}, &data); err != nil {
		return nil, err
	}
	if data.Product == nil {
		return nil, apperrors.NotFound("product")
	}

	return &domain.Product{
		ID:             data.Product.ID,
		Title:          data.Product.Title,
		Description:    data.Product.Description,
		OnlineStoreURL: data.Product.OnlineStoreURL,
	}, nil
}

// GetProductImage fetches the first image media of a product. It returns a
// nil image and no error when the product has none or does not exist.
func (c *Client) GetProductImage(ctx context.Context, productID string) (*domain.ProductImage, error) {
	var data productImageData
	if err := c.Execute(ctx, "getProductImage", productImageQuery, map[string]any{"id": ProductGID(productID)}, &data); err != nil {
		return nil, err
	}
	if data.Product == nil {
		return nil, nil
	}

	// Non-image media decode as empty nodes.
	for _, node := range data.Product.Media.Nodes {
		if node.ID == "" || node.Image == nil {
			continue
		}
		img := &domain.ProductImage{
			ID:     node.ID,
			URL:    node.Image.URL,
			Width:  node.Image.Width,
			Height: node.Image.Height,
		}
		if node.Alt != nil {
			img.Alt = *node.Alt
		}
		return img, nil
	}
	return nil, nil
}
