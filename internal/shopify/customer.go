package shopify

import (
	"context"

	"github.com/utafrali/storefront-landing/internal/domain"
	apperrors "github.com/utafrali/storefront-landing/pkg/errors"
)

type customerData struct {
	Customer *struct {
		ID        string `json:"id"`
		FirstName string `json:"firstName"`
		Image     *struct {
			Src string `json:"src"`
		} `json:"image"`
	} `json:"customer"`
}

// GetCustomer fetches a customer's profile. A customer that does not exist
// yields apperrors.NotFound("customer").
func (c *Client) GetCustomer(ctx context.Context, customerID string) (*domain.CustomerProfile, error) {
	var data customerData
	if err := c.Execute(ctx, "getCustomer", customerQuery, map[string]any{"id": CustomerGID(customerID)}, &data); err != nil {
		return nil, err
	}
	if data.Customer == nil {
		return nil, apperrors.NotFound("customer")
	}

	profile := &domain.CustomerProfile{
		ID:        data.Customer.ID,
		FirstName: data.Customer.FirstName,
	}
	if img := data.Customer.Image; img != nil && img.Src != "" {
		src := img.Src
		profile.ImageURL = &src
	}
	return profile, nil
}
