package listing

import (
	"context"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/lankamarket/lankamarket-api/internal/catalog"
	"github.com/lankamarket/lankamarket-api/internal/logging"
)

// Source fetches one half of the catalog
type Source interface {
	Products(ctx context.Context, category string, sort catalog.Sort) ([]catalog.Product, error)
	Services(ctx context.Context, category string, sort catalog.Sort) ([]catalog.Service, error)
}

// Pipeline fetches products and services concurrently and merges them
// into one ordered sequence
type Pipeline struct {
	source   Source
	failures *prometheus.CounterVec
}

// NewPipeline builds a pipeline. failures counts halves replaced by an empty
// result, labelled by listing_type; it may be nil.
func NewPipeline(source Source, failures *prometheus.CounterVec) *Pipeline {
	return &Pipeline{source: source, failures: failures}
}

// Run returns the listings matching f. A half that fails to load is logged
// and contributes nothing, so Run itself never fails.
func (p *Pipeline) Run(ctx context.Context, f Filters) []Listing {
	logger := logging.GetLoggerFromContext(ctx)

	var products []catalog.Product
	var services []catalog.Service

	var g errgroup.Group
	if f.Type.includesProducts() {
		g.Go(func() error {
			res, err := p.source.Products(ctx, f.Category, f.Sort)
			if err != nil {
				logger.Error("failed to fetch products for listings", "error", err, "category", f.Category)
				p.countFailure(KindProduct)
				return nil
			}
			products = res
			return nil
		})
	}
	if f.Type.includesServices() {
		g.Go(func() error {
			res, err := p.source.Services(ctx, f.Category, f.Sort)
			if err != nil {
				logger.Error("failed to fetch services for listings", "error", err, "category", f.Category)
				p.countFailure(KindService)
				return nil
			}
			services = res
			return nil
		})
	}
	_ = g.Wait()

	listings := make([]Listing, 0, len(products)+len(services))
	for _, pr := range products {
		listings = append(listings, ProductListing{Product: pr})
	}
	for _, sv := range services {
		listings = append(listings, ServiceListing{Service: sv})
	}

	SortListings(listings, f.Sort.Order())
	return listings
}

func (p *Pipeline) countFailure(kind string) {
	if p.failures != nil {
		p.failures.WithLabelValues(kind).Inc()
	}
}

// SortListings orders listings in place by o. Listings with equal keys keep
// their relative order.
func SortListings(listings []Listing, o catalog.Order) {
	sort.SliceStable(listings, func(i, j int) bool {
		return less(listings[i], listings[j], o)
	})
}

func less(a, b Listing, o catalog.Order) bool {
	if o.Desc {
		a, b = b, a
	}
	switch o.Field {
	case catalog.OrderPrice:
		return a.Price() < b.Price()
	case catalog.OrderViews:
		return a.Views() < b.Views()
	default:
		return a.Created().Before(b.Created())
	}
}
