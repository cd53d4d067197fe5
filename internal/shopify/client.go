package shopify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/utafrali/storefront-landing/internal/shopify"

// Config identifies the shop and API version to query.
type Config struct {
	// ShopDomain is the myshopify host, e.g. demo.myshopify.com.
	ShopDomain  string
	AccessToken string
	APIVersion  string
}

// Client runs Admin GraphQL operations for one shop. It is safe for
// concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Shopify client. httpClient carries the timeout, rate
// limit and circuit breaker applied to every call.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
	}
}

// api returns a go-shopify client for a single operation. goshopify.Client
// records attempt counts and rate limit state on itself, so concurrent
// operations must not share one.
func (c *Client) api() (*goshopify.Client, error) {
	return goshopify.NewClient(goshopify.App{}, c.cfg.ShopDomain, c.cfg.AccessToken,
		goshopify.WithVersion(c.cfg.APIVersion),
		goshopify.WithHTTPClient(c.httpClient),
		goshopify.WithRetry(0),
		goshopify.WithLogger(leveledLogger{c.logger}),
	)
}

// Execute runs one GraphQL operation and decodes its data into out. A
// transport failure, a non-2xx status, an undecodable body and a non-empty
// errors array are all returned as errors.
func (c *Client) Execute(ctx context.Context, operation, query string, variables map[string]any, out any) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "shopify."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("graphql.operation.name", operation),
			attribute.String("server.address", goshopify.ShopFullName(c.cfg.ShopDomain)),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	api, err := c.api()
	if err != nil {
		return fmt.Errorf("%s: build client: %w", operation, err)
	}

	if err := api.GraphQL.Query(ctx, query, variables, out); err != nil {
		var throttled goshopify.RateLimitError
		var respErr goshopify.ResponseError
		switch {
		case errors.As(err, &throttled):
			c.logger.WarnContext(ctx, "shopify throttled",
				slog.String("operation", operation),
				slog.Int("retry_after_seconds", throttled.RetryAfter),
			)
		case errors.As(err, &respErr) && respErr.Status == http.StatusOK:
			c.logger.WarnContext(ctx, "shopify graphql errors",
				slog.String("operation", operation),
				slog.String("error", respErr.Error()),
			)
		}
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}

// leveledLogger routes go-shopify's request logging to slog at debug level
// and its warnings and errors to the matching levels.
type leveledLogger struct {
	logger *slog.Logger
}

func (l leveledLogger) Debugf(format string, v ...any) {
	if !l.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.logger.Debug(fmt.Sprintf(format, v...), slog.String("component", "go-shopify"))
}

func (l leveledLogger) Infof(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...), slog.String("component", "go-shopify"))
}

func (l leveledLogger) Warnf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...), slog.String("component", "go-shopify"))
}

func (l leveledLogger) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...), slog.String("component", "go-shopify"))
}
