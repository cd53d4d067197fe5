package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront-landing/pkg/errors"
	"github.com/utafrali/storefront-landing/pkg/httpclient"
)

// fakeShop serves canned GraphQL replies keyed by operation name.
type fakeShop struct {
	t       *testing.T
	replies map[string]string
	status  int
	delay   time.Duration

	mu      sync.Mutex
	calls   map[string]int
	lastVar map[string]any
}

func newFakeShop(t *testing.T) *fakeShop {
	return &fakeShop{t: t, replies: map[string]string{}, status: http.StatusOK, calls: map[string]int{}}
}

func (f *fakeShop) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	assert.Equal(f.t, http.MethodPost, r.Method)
	assert.Equal(f.t, "/admin/api/2024-10/graphql.json", r.URL.Path)
	assert.Equal(f.t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
	assert.Equal(f.t, "application/json", r.Header.Get("Content-Type"))

	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if !assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&req)) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-r.Context().Done():
			return
		}
	}

	for op, reply := range f.replies {
		if strings.Contains(req.Query, "query "+op+"(") {
			f.mu.Lock()
			f.calls[op]++
			f.lastVar = req.Variables
			f.mu.Unlock()

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, reply)
			return
		}
	}
	f.t.Errorf("unexpected query: %s", req.Query)
	w.WriteHeader(http.StatusBadRequest)
}

// shopRedirect sends requests addressed to the shop to target and records
// the URL the client asked for.
type shopRedirect struct {
	target *url.URL

	mu        sync.Mutex
	requested []string
}

func (s *shopRedirect) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	s.requested = append(s.requested, req.URL.String())
	s.mu.Unlock()

	out := req.Clone(req.Context())
	out.URL.Scheme = s.target.Scheme
	out.URL.Host = s.target.Host
	out.Host = s.target.Host
	return http.DefaultTransport.RoundTrip(out)
}

func newTestClient(t *testing.T, shop *fakeShop, mws ...httpclient.Middleware) (*Client, *shopRedirect) {
	t.Helper()
	srv := httptest.NewServer(shop)
	t.Cleanup(srv.Close)

	target, err := url.Parse(srv.URL)
	require.NoError(t, err)
	redirect := &shopRedirect{target: target}

	c := NewClient(Config{
		ShopDomain:  "demo.myshopify.com",
		AccessToken: "shpat_test",
		APIVersion:  "2024-10",
	}, httpclient.New(httpclient.DefaultConfig(), redirect, mws...), slog.New(slog.NewTextHandler(io.Discard, nil)))
	return c, redirect
}

func TestClient_AddressesShopGraphQLEndpoint(t *testing.T) {
	shop := newFakeShop(t)
	shop.replies["getCustomer"] = `{"data":{"customer":null}}`
	c, redirect := newTestClient(t, shop)

	_, _ = c.GetCustomer(context.Background(), "42")

	require.Len(t, redirect.requested, 1)
	assert.Equal(t, "https://demo.myshopify.com/admin/api/2024-10/graphql.json", redirect.requested[0])
}

func TestGetCustomer_Success(t *testing.T) {
	shop := newFakeShop(t)
	shop.replies["getCustomer"] = `{"data":{"customer":{"id":"gid://shopify/Customer/42","firstName":"Ana","image":{"src":"https://x/a.png"}}}}`
	c, _ := newTestClient(t, shop)

	profile, err := c.GetCustomer(context.Background(), "42")

	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/Customer/42", profile.ID)
	assert.Equal(t, "Ana", profile.FirstName)
	require.NotNil(t, profile.ImageURL)
	assert.Equal(t, "https://x/a.png", *profile.ImageURL)
	assert.Equal(t, "gid://shopify/Customer/42", shop.lastVar["id"])
}

func TestGetCustomer_NoImage(t *testing.T) {
	shop := newFakeShop(t)
	shop.replies["getCustomer"] = `{"data":{"customer":{"id":"gid://shopify/Customer/42","firstName":"Ana","image":null}}}`
	c, _ := newTestClient(t, shop)

	profile, err := c.GetCustomer(context.Background(), "42")

	require.NoError(t, err)
	assert.Nil(t, profile.ImageURL)
}

func TestGetCustomer_NotFound(t *testing.T) {
	shop := newFakeShop(t)
	shop.replies["getCustomer"] = `{"data":{"customer":null}}`
	c, _ := newTestClient(t, shop)

	_, err := c.GetCustomer(context.Background(), "404")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetCustomer_ThrottledIsNotRetried(t *testing.T) {
	shop := newFakeShop(t)
	shop.replies["getCustomer"] = `{"errors":[{"message":"Throttled","extensions":{"code":"THROTTLED"}}]}`
	c, _ := newTestClient(t, shop)

	_, err := c.GetCustomer(context.Background(), "42")

	require.Error(t, err)
	var throttled goshopify.RateLimitError
	require.True(t, errors.As(err, &throttled), "got %v", err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 1, shop.calls["getCustomer"])
}

func TestGetCustomer_GraphQLErrors(t *testing.T) {
	shop := newFakeShop(t)
	shop.replies["getCustomer"] = `{"errors":[{"message":"Field 'nope' doesn't exist on type 'Customer'"}]}`
	c, _ := newTestClient(t, shop)

	_, err := c.GetCustomer(context.Background(), "42")

	var respErr goshopify.ResponseError
	require.True(t, errors.As(err, &respErr), "got %v", err)
	assert.Equal(t, http.StatusOK, respErr.Status)
	assert.Contains(t, err.Error(), "doesn't exist")
}

func TestExecute_NonOKStatus(t *testing.T) {
	shop := newFakeShop(t)
	shop.status = http.StatusUnauthorized
	shop.replies["getCustomer"] = `{"errors":"[API] Invalid API key or access token"}`
	c, _ := newTestClient(t, shop)

	_, err := c.GetCustomer(context.Background(), "42")

	var respErr goshopify.ResponseError
	require.True(t, errors.As(err, &respErr), "got %v", err)
	assert.Equal(t, http.StatusUnauthorized, respErr.Status)
	assert.Equal(t, 1, shop.calls["getCustomer"])
}

func TestExecute_UndecodableBody(t *testing.T) {
	shop := newFakeShop(t)
	shop.replies["getProduct"] = `<html>maintenance</html>`
	c, _ := newTestClient(t, shop)

	_, err := c.GetProduct(context.Background(), "99")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "getProduct")
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestExecute_RespectsContextDeadline(t *testing.T) {
	shop := newFakeShop(t)
	shop.delay = 2 * time.Second
	shop.replies["getProduct"] = `{"data":{"product":null}}`
	c, _ := newTestClient(t, shop)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.GetProduct(ctx, "99")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestExecute_ServerErrorThroughBreaker(t *testing.T) {
	shop := newFakeShop(t)
	shop.status = http.StatusInternalServerError
	shop.replies["getProductImage"] = `oops`
	breaker := httpclient.NewCircuitBreaker(httpclient.DefaultCircuitBreakerConfig("shopify-test"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	c, _ := newTestClient(t, shop, breaker.Wrap)

	_, err := c.GetProductImage(context.Background(), "99")

	var statusErr *httpclient.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.True(t, statusErr.Temporary())
	assert.Equal(t, 1, shop.calls["getProductImage"])
}

func TestExecute_ConcurrentOperations(t *testing.T) {
	shop := newFakeShop(t)
	shop.replies["getProduct"] = `{"data":{"product":{"id":"gid://shopify/Product/99","title":"Mug","description":"","onlineStoreUrl":null}}}`
	shop.replies["getProductImage"] = `{"data":{"product":{"media":{"nodes":[]}}}}`
	c, _ := newTestClient(t, shop)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := c.GetProduct(context.Background(), "99")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := c.GetProductImage(context.Background(), "99")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, shop.calls["getProduct"])
	assert.Equal(t, 8, shop.calls["getProductImage"])
}

func TestGetProduct_Success(t *testing.T) {
	shop := newFakeShop(t)
	shop.replies["getProduct"] = `{"data":{"product":{"id":"gid://shopify/Product/99","title":"Mug","description":"Ceramic","onlineStoreUrl":"https://shop/mug"}}}`
	c, _ := newTestClient(t, shop)

	product, err := c.GetProduct(context.Background(), "99")

	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/Product/99", product.ID)
	assert.Equal(t, "Mug", product.Title)
	assert.Equal(t, "Ceramic", product.Description)
	require.NotNil(t, product.OnlineStoreURL)
	assert.Equal(t, "https://shop/mug", *product.OnlineStoreURL)
	assert.Nil(t, product.Image)
	assert.Equal(t, "gid://shopify/Product/99", shop.lastVar["id"])
}

func TestGetProduct_NotFound(t *testing.T) {
	shop := newFakeShop(t)
	shop.replies["getProduct"] = `{"data":{"product":null}}`
	c, _ := newTestClient(t, shop)

	_, err := c.GetProduct(context.Background(), "99")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PRODUCT_NOT_FOUND", appErr.Code)
}

func TestGetProductImage_FirstImage(t *testing.T) {
	shop := newFakeShop(t)
	shop.replies["getProductImage"] = `{"data":{"product":{"media":{"nodes":[
		{"id":"gid://shopify/MediaImage/1","alt":"Blue mug","image":{"width":800,"height":600,"url":"https://cdn/mug.png"}}
	]}}}}`
	c, _ := newTestClient(t, shop)

	img, err := c.GetProductImage(context.Background(), "gid://shopify/Product/99")

	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, "gid://shopify/MediaImage/1", img.ID)
	assert.Equal(t, "Blue mug", img.Alt)
	assert.Equal(t, "https://cdn/mug.png", img.URL)
	assert.Equal(t, 800, img.Width)
	assert.Equal(t, 600, img.Height)
	assert.Equal(t, "gid://shopify/Product/99", shop.lastVar["id"])
}

func TestGetProductImage_NoMedia(t *testing.T) {
	tests := map[string]string{
		"empty nodes":    `{"data":{"product":{"media":{"nodes":[]}}}}`,
		"non-image node": `{"data":{"product":{"media":{"nodes":[{}]}}}}`,
		"null product":   `{"data":{"product":null}}`,
	}

	for name, reply := range tests {
		t.Run(name, func(t *testing.T) {
			shop := newFakeShop(t)
			shop.replies["getProductImage"] = reply
			c, _ := newTestClient(t, shop)

			img, err := c.GetProductImage(context.Background(), "99")

			require.NoError(t, err)
			assert.Nil(t, img)
		})
	}
}

func TestGID(t *testing.T) {
	assert.Equal(t, "gid://shopify/Customer/42", CustomerGID("42"))
	assert.Equal(t, "gid://shopify/Product/99", ProductGID("99"))
	assert.Equal(t, "gid://shopify/Product/99", ProductGID("gid://shopify/Product/99"))
}
