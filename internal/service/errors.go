package service

import (
	"fmt"

	apperrors "github.com/utafrali/storefront-landing/pkg/errors"
)

// Stage names the resolver step that produced a failure.
type Stage string

const (
	StageValidate      Stage = "validate"
	StageFetchProfile  Stage = "fetch_profile"
	StageFetchFavorite Stage = "fetch_favorite"
	StageFetchProduct  Stage = "fetch_product"
	StageCompose       Stage = "compose"
)

// Kind classifies a resolver failure. The zero value marks an internal
// invariant violation.
type Kind int

const (
	KindMissingParameter Kind = iota + 1
	KindNotFound
	KindStoreFailure
	KindRemoteFetchFailure
)

func (k Kind) String() string {
	switch k {
	case KindMissingParameter:
		return "missing_parameter"
	case KindNotFound:
		return "not_found"
	case KindStoreFailure:
		return "store_failure"
	case KindRemoteFetchFailure:
		return "remote_fetch_failure"
	default:
		return "unknown"
	}
}

// Resources named by NotFound and RemoteFetchFailure errors.
const (
	ResourceUserID       = "user_id"
	ResourceCustomer     = "customer"
	ResourceFavorite     = "favorite"
	ResourceProduct      = "product"
	ResourceProductMedia = "product_media"
)

// ResolveError is the terminal failure of a Resolve call.
type ResolveError struct {
	Stage    Stage
	Kind     Kind
	Resource string
	Err      error
}

func (e *ResolveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s %s: %v", e.Stage, e.Kind, e.Resource, e.Err)
	}
	return fmt.Sprintf("%s: %s %s", e.Stage, e.Kind, e.Resource)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// AppError maps the failure to the HTTP-facing error taxonomy.
func (e *ResolveError) AppError() *apperrors.AppError {
	switch e.Kind {
	case KindMissingParameter:
		return apperrors.MissingParameter(e.Resource)
	case KindNotFound:
		return apperrors.NotFound(e.Resource)
	case KindRemoteFetchFailure:
		return apperrors.Upstream("shopify", e)
	case KindStoreFailure:
		return apperrors.Internal("STORE_FAILURE", e)
	default:
		return apperrors.Internal("", e)
	}
}
