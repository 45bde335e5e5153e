package listing

import (
	"net/http"

	"github.com/lankamarket/lankamarket-api/internal/httputil"
)

// Handler serves the merged listings feed
type Handler struct {
	pipeline *Pipeline
}

func NewHandler(pipeline *Pipeline) *Handler {
	return &Handler{pipeline: pipeline}
}

// Response is the listings page payload. Query is the canonical query
// string of Filters.
type Response struct {
	Listings []Listing `json:"listings"`
	Filters  Filters   `json:"filters"`
	Query    string    `json:"query"`
}

// List returns products and services merged under one sort
// @Summary      Browse listings
// @Description  Products and services merged and sorted together. Unknown filter values fall back to their defaults.
// @Tags         listings
// @Produce      json
// @Param        type query string false "all, products or services"
// @Param        category query string false "category slug or all"
// @Param        sort query string false "newest, oldest, price-low, price-high or popular"
// @Success      200 {object} Response
// @Router       /listings [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := ParseFilters(r.URL.Query())

	httputil.RespondJSON(w, Response{
		Listings: h.pipeline.Run(r.Context(), filters),
		Filters:  filters,
		Query:    filters.Encode(),
	}, http.StatusOK)
}
