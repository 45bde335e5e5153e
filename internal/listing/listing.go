package listing

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/lankamarket/lankamarket-api/internal/catalog"
)

// Kind values of the listing_type discriminator
const (
	KindProduct = "product"
	KindService = "service"
)

// Listing is either a ProductListing or a ServiceListing
type Listing interface {
	ListingID() uuid.UUID
	Kind() string
	Title() string
	Price() float64
	Created() time.Time
	Views() int64

	sealed()
}

type ProductListing struct {
	catalog.Product
}

func (l ProductListing) ListingID() uuid.UUID { return l.ID }
func (l ProductListing) Kind() string         { return KindProduct }
func (l ProductListing) Title() string        { return l.Product.Title }
func (l ProductListing) Price() float64       { return l.Product.Price }
func (l ProductListing) Created() time.Time   { return l.CreatedAt }
func (l ProductListing) Views() int64         { return l.ViewsCount }
func (ProductListing) sealed()                {}

// MarshalJSON writes the product fields plus listing_type
func (l ProductListing) MarshalJSON() ([]byte, error) {
	type product catalog.Product
	return json.Marshal(struct {
		ListingType string `json:"listing_type"`
		product
	}{KindProduct, product(l.Product)})
}

type ServiceListing struct {
	catalog.Service
}

func (l ServiceListing) ListingID() uuid.UUID { return l.ID }
func (l ServiceListing) Kind() string         { return KindService }
func (l ServiceListing) Title() string        { return l.Name }
func (l ServiceListing) Price() float64       { return l.BasePrice }
func (l ServiceListing) Created() time.Time   { return l.CreatedAt }
func (l ServiceListing) Views() int64         { return l.ViewsCount }
func (ServiceListing) sealed()                {}

// MarshalJSON writes the service fields plus listing_type
func (l ServiceListing) MarshalJSON() ([]byte, error) {
	type service catalog.Service
	return json.Marshal(struct {
		ListingType string `json:"listing_type"`
		service
	}{KindService, service(l.Service)})
}
