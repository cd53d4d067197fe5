package domain

import "errors"

// ErrIncompleteView is returned when a landing view is built without both
// a customer profile and a product.
var ErrIncompleteView = errors.New("landing view requires both profile and product")

// CustomerProfile is the subset of a Shopify customer shown on the landing page.
type CustomerProfile struct {
	ID        string  `json:"id"`
	FirstName string  `json:"firstName"`
	ImageURL  *string `json:"imageUrl"`
}

// FavoriteAssignment maps a user to their favorite product. There is at most
// one assignment per user.
type FavoriteAssignment struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
}

// Product is the product detail returned by the landing endpoint. Image is
// nil when the product has no image media.
type Product struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	OnlineStoreURL *string       `json:"onlineStoreUrl"`
	Image          *ProductImage `json:"image"`
}

// ProductImage is the first image media of a product.
type ProductImage struct {
	ID     string `json:"id"`
	Alt    string `json:"alt"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// LandingView is the combined payload rendered by the storefront page.
type LandingView struct {
	FirstName    string  `json:"firstName"`
	ProfileImage *string `json:"profileImage"`
	Product      Product `json:"product"`
}

// NewLandingView composes a view from a resolved profile and product, with
// image attached to the product. A nil image is rendered as null.
func NewLandingView(profile *CustomerProfile, product *Product, image *ProductImage) (*LandingView, error) {
	if profile == nil || product == nil {
		return nil, ErrIncompleteView
	}

	p := *product
	p.Image = image

	return &LandingView{
		FirstName:    profile.FirstName,
		ProfileImage: profile.ImageURL,
		Product:      p,
	}, nil
}
