package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/utafrali/storefront-landing/internal/domain"
	"github.com/utafrali/storefront-landing/internal/repository"
	apperrors "github.com/utafrali/storefront-landing/pkg/errors"
	"github.com/utafrali/storefront-landing/pkg/logger"
)

var (
	resolveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "landing_resolve_total",
			Help: "Landing view resolutions by outcome",
		},
		[]string{"outcome"},
	)

	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "landing_stage_duration_seconds",
			Help:    "Duration of each landing resolver stage in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
)

// CustomerFetcher loads customer profiles from the remote customer API.
type CustomerFetcher interface {
	GetCustomer(ctx context.Context, customerID string) (*domain.CustomerProfile, error)
}

// ProductFetcher loads product detail and the primary product image from
// the remote product API.
type ProductFetcher interface {
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	GetProductImage(ctx context.Context, productID string) (*domain.ProductImage, error)
}

// Timeouts bound every outbound call made while resolving a view.
type Timeouts struct {
	Remote time.Duration
	Store  time.Duration
}

// DefaultTimeouts returns the per-call deadlines used when none are configured.
func DefaultTimeouts() Timeouts {
	return Timeouts{Remote: 5 * time.Second, Store: 3 * time.Second}
}

// LandingService resolves the storefront landing view of a user: their
// profile joined with their favorite product.
type LandingService struct {
	customers CustomerFetcher
	products  ProductFetcher
	favorites repository.FavoriteRepository
	timeouts  Timeouts
	logger    *slog.Logger
}

// NewLandingService creates a new landing service. Zero timeouts fall back
// to DefaultTimeouts.
func NewLandingService(
	customers CustomerFetcher,
	products ProductFetcher,
	favorites repository.FavoriteRepository,
	timeouts Timeouts,
	logger *slog.Logger,
) *LandingService {
	def := DefaultTimeouts()
	if timeouts.Remote <= 0 {
		timeouts.Remote = def.Remote
	}
	if timeouts.Store <= 0 {
		timeouts.Store = def.Store
	}
	return &LandingService{
		customers: customers,
		products:  products,
		favorites: favorites,
		timeouts:  timeouts,
		logger:    logger,
	}
}

// Resolve builds the landing view for userID. Every failure is returned as
// a *ResolveError and nothing partial is ever returned with it.
//
// The customer is fetched first, then the favorite, then product detail and
// image concurrently. Each step short-circuits the rest on failure.
func (s *LandingService) Resolve(ctx context.Context, userID string) (view *domain.LandingView, err error) {
	log := logger.WithContext(ctx, s.logger).With(slog.String("user_id", userID))
	defer func() { s.record(ctx, log, err) }()

	if userID == "" {
		return nil, &ResolveError{Stage: StageValidate, Kind: KindMissingParameter, Resource: ResourceUserID}
	}

	profile, err := s.fetchProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	fav, err := s.fetchFavorite(ctx, userID)
	if err != nil {
		return nil, err
	}
	log = log.With(slog.String("product_id", fav.ProductID))

	product, image, err := s.fetchProduct(ctx, fav.ProductID)
	if err != nil {
		return nil, err
	}

	view, err = domain.NewLandingView(profile, product, image)
	if err != nil {
		return nil, &ResolveError{Stage: StageCompose, Err: err}
	}
	return view, nil
}

func (s *LandingService) fetchProfile(ctx context.Context, userID string) (*domain.CustomerProfile, error) {
	defer observeStage(StageFetchProfile, time.Now())

	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Remote)
	defer cancel()

	profile, err := s.customers.GetCustomer(ctx, userID)
	if err != nil {
		return nil, remoteError(StageFetchProfile, ResourceCustomer, err)
	}
	if profile == nil {
		return nil, &ResolveError{Stage: StageFetchProfile, Kind: KindNotFound, Resource: ResourceCustomer}
	}
	return profile, nil
}

func (s *LandingService) fetchFavorite(ctx context.Context, userID string) (*domain.FavoriteAssignment, error) {
	defer observeStage(StageFetchFavorite, time.Now())

	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Store)
	defer cancel()

	fav, err := s.favorites.GetFavorite(ctx, userID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return nil, &ResolveError{Stage: StageFetchFavorite, Kind: KindNotFound, Resource: ResourceFavorite, Err: err}
	case err != nil:
		return nil, &ResolveError{Stage: StageFetchFavorite, Kind: KindStoreFailure, Resource: ResourceFavorite, Err: err}
	case fav == nil || fav.ProductID == "":
		return nil, &ResolveError{Stage: StageFetchFavorite, Kind: KindNotFound, Resource: ResourceFavorite}
	}
	return fav, nil
}

// fetchProduct runs the detail and image sub-queries concurrently and
// returns only after both have finished. The first failure cancels the
// other call and is the one reported.
func (s *LandingService) fetchProduct(ctx context.Context, productID string) (*domain.Product, *domain.ProductImage, error) {
	defer observeStage(StageFetchProduct, time.Now())

	var (
		product *domain.Product
		image   *domain.ProductImage
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(gctx, s.timeouts.Remote)
		defer cancel()

		p, err := s.products.GetProduct(callCtx, productID)
		if err != nil {
			return remoteError(StageFetchProduct, ResourceProduct, err)
		}
		if p == nil {
			return &ResolveError{Stage: StageFetchProduct, Kind: KindNotFound, Resource: ResourceProduct}
		}
		product = p
		return nil
	})

	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(gctx, s.timeouts.Remote)
		defer cancel()

		img, err := s.products.GetProductImage(callCtx, productID)
		if err != nil {
			return &ResolveError{Stage: StageFetchProduct, Kind: KindRemoteFetchFailure, Resource: ResourceProductMedia, Err: err}
		}
		image = img
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return product, image, nil
}

// remoteError classifies a remote call failure: a not-found signal from the
// fetcher becomes KindNotFound, anything else a remote fetch failure.
func remoteError(stage Stage, resource string, err error) *ResolveError {
	if errors.Is(err, apperrors.ErrNotFound) {
		return &ResolveError{Stage: stage, Kind: KindNotFound, Resource: resource, Err: err}
	}
	return &ResolveError{Stage: stage, Kind: KindRemoteFetchFailure, Resource: resource, Err: err}
}

func observeStage(stage Stage, start time.Time) {
	stageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
}

func (s *LandingService) record(ctx context.Context, log *slog.Logger, err error) {
	if err == nil {
		resolveTotal.WithLabelValues("success").Inc()
		return
	}

	var re *ResolveError
	if !errors.As(err, &re) {
		resolveTotal.WithLabelValues("unknown").Inc()
		log.ErrorContext(ctx, "landing resolve failed", slog.String("error", err.Error()))
		return
	}
	resolveTotal.WithLabelValues(re.Kind.String()).Inc()

	attrs := []any{
		slog.String("stage", string(re.Stage)),
		slog.String("kind", re.Kind.String()),
		slog.String("resource", re.Resource),
	}
	if re.Err != nil {
		attrs = append(attrs, slog.String("error", re.Err.Error()))
	}

	switch re.Kind {
	case KindMissingParameter, KindNotFound:
		log.DebugContext(ctx, "landing resolve rejected", attrs...)
	default:
		log.ErrorContext(ctx, "landing resolve failed", attrs...)
	}
}
