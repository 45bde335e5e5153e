package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lankamarket/lankamarket-api/internal/catalog"
)

// CatalogLister is the part of the catalog service the store source reads
type CatalogLister interface {
	ListProducts(ctx context.Context, q catalog.Query) ([]catalog.Product, error)
	ListServices(ctx context.Context, q catalog.Query) ([]catalog.Service, error)
}

// StoreSource reads listings straight from the catalog service
type StoreSource struct {
	catalog CatalogLister
}

func NewStoreSource(c CatalogLister) *StoreSource {
	return &StoreSource{catalog: c}
}

func (s *StoreSource) Products(ctx context.Context, category string, sort catalog.Sort) ([]catalog.Product, error) {
	return s.catalog.ListProducts(ctx, catalog.Query{Category: category, Order: sort.Order()})
}

func (s *StoreSource) Services(ctx context.Context, category string, sort catalog.Sort) ([]catalog.Service, error) {
	return s.catalog.ListServices(ctx, catalog.Query{Category: category, Order: sort.Order()})
}

// HTTPSource reads listings from a running API through GET /products and
// GET /services
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Products(ctx context.Context, category string, sort catalog.Sort) ([]catalog.Product, error) {
	var out []catalog.Product
	if err := s.get(ctx, "/products", category, sort, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *HTTPSource) Services(ctx context.Context, category string, sort catalog.Sort) ([]catalog.Service, error) {
	var out []catalog.Service
	if err := s.get(ctx, "/services", category, sort, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *HTTPSource) get(ctx context.Context, path, category string, sort catalog.Sort, dst any) error {
	q := url.Values{}
	if category != "" && category != AllCategories {
		q.Set("category", category)
	}
	if sort != "" {
		q.Set("sort", string(sort))
	}

	endpoint := s.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
