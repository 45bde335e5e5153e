package listing

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lankamarket/lankamarket-api/internal/catalog"
	"github.com/lankamarket/lankamarket-api/internal/metrics"
)

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeSource struct {
	products    []catalog.Product
	services    []catalog.Service
	productsErr error
	servicesErr error

	productCalls atomic.Int32
	serviceCalls atomic.Int32
}

func (s *fakeSource) Products(ctx context.Context, category string, sort catalog.Sort) ([]catalog.Product, error) {
	s.productCalls.Add(1)
	return s.products, s.productsErr
}

func (s *fakeSource) Services(ctx context.Context, category string, sort catalog.Sort) ([]catalog.Service, error) {
	s.serviceCalls.Add(1)
	return s.services, s.servicesErr
}

func product(title string, price float64, hoursAfter int, views int64) catalog.Product {
	return catalog.Product{
		ID:         uuid.New(),
		Title:      title,
		Price:      price,
		CreatedAt:  base.Add(time.Duration(hoursAfter) * time.Hour),
		ViewsCount: views,
	}
}

func service(name string, price float64, hoursAfter int, views int64) catalog.Service {
	return catalog.Service{
		ID:         uuid.New(),
		Name:       name,
		BasePrice:  price,
		CreatedAt:  base.Add(time.Duration(hoursAfter) * time.Hour),
		ViewsCount: views,
	}
}

func titles(ls []Listing) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.Title()
	}
	return out
}

func newFixtureSource() *fakeSource {
	return &fakeSource{
		products: []catalog.Product{
			product("Galaxy", 120000, 0, 5),
			product("Kettle", 4500, 2, 40),
		},
		services: []catalog.Service{
			service("Pipe repair", 1500, 1, 3),
			service("Maths classes", 120000, 3, 40),
		},
	}
}

func TestPipeline_PriceLowIsNonDecreasing(t *testing.T) {
	p := NewPipeline(newFixtureSource(), nil)

	got := p.Run(context.Background(), Filters{Type: TypeAll, Category: AllCategories, Sort: catalog.SortPriceLow})
	require.Len(t, got, 4)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Price(), got[i].Price())
	}
	// equal prices keep products before services
	assert.Equal(t, []string{"Pipe repair", "Kettle", "Galaxy", "Maths classes"}, titles(got))
}

func TestPipeline_Orders(t *testing.T) {
	tests := []struct {
		sort catalog.Sort
		want []string
	}{
		{catalog.SortNewest, []string{"Maths classes", "Kettle", "Pipe repair", "Galaxy"}},
		{catalog.SortOldest, []string{"Galaxy", "Pipe repair", "Kettle", "Maths classes"}},
		{catalog.SortPriceHigh, []string{"Galaxy", "Maths classes", "Kettle", "Pipe repair"}},
		{catalog.SortPopular, []string{"Kettle", "Maths classes", "Galaxy", "Pipe repair"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			p := NewPipeline(newFixtureSource(), nil)
			got := p.Run(context.Background(), Filters{Type: TypeAll, Category: AllCategories, Sort: tt.sort})
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestPipeline_TypeSelectsHalves(t *testing.T) {
	src := newFixtureSource()
	p := NewPipeline(src, nil)

	got := p.Run(context.Background(), Filters{Type: TypeProducts, Category: AllCategories, Sort: catalog.SortNewest})
	for _, l := range got {
		assert.Equal(t, KindProduct, l.Kind())
	}
	assert.EqualValues(t, 1, src.productCalls.Load())
	assert.EqualValues(t, 0, src.serviceCalls.Load())

	got = p.Run(context.Background(), Filters{Type: TypeServices, Category: AllCategories, Sort: catalog.SortNewest})
	for _, l := range got {
		assert.Equal(t, KindService, l.Kind())
	}
	assert.EqualValues(t, 1, src.serviceCalls.Load())
}

func TestPipeline_FailedHalfBecomesEmpty(t *testing.T) {
	src := newFixtureSource()
	src.servicesErr = errors.New("connection reset")
	m := metrics.New()
	p := NewPipeline(src, m.ListingHalves)

	got := p.Run(context.Background(), DefaultFilters())
	assert.Equal(t, []string{"Kettle", "Galaxy"}, titles(got))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ListingHalves.WithLabelValues(KindService)))

	src.productsErr = errors.New("timeout")
	assert.Empty(t, p.Run(context.Background(), DefaultFilters()))
}

func TestSortListings_Stable(t *testing.T) {
	ls := []Listing{
		ProductListing{product("A", 100, 0, 0)},
		ServiceListing{service("B", 50, 0, 0)},
		ProductListing{product("C", 100, 0, 0)},
		ServiceListing{service("D", 100, 0, 0)},
	}

	SortListings(ls, catalog.SortPriceHigh.Order())
	assert.Equal(t, []string{"A", "C", "D", "B"}, titles(ls))

	SortListings(ls, catalog.SortNewest.Order())
	assert.Equal(t, []string{"A", "C", "D", "B"}, titles(ls), "equal timestamps must not reorder")
}

func TestListing_MarshalJSON(t *testing.T) {
	pl := ProductListing{product("Galaxy", 120000, 0, 5)}
	raw, err := json.Marshal(pl)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "product", got["listing_type"])
	assert.Equal(t, "Galaxy", got["title"])
	assert.EqualValues(t, 120000, got["price"])

	raw, err = json.Marshal([]Listing{ServiceListing{service("Pipe repair", 1500, 0, 0)}})
	require.NoError(t, err)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "service", list[0]["listing_type"])
	assert.Equal(t, "Pipe repair", list[0]["name"])
	assert.EqualValues(t, 1500, list[0]["base_price"])
}
