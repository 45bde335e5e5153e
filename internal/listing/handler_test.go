package listing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listResponse struct {
	Listings []map[string]any `json:"listings"`
	Filters  Filters          `json:"filters"`
	Query    string           `json:"query"`
}

func TestHandler_List(t *testing.T) {
	h := NewHandler(NewPipeline(newFixtureSource(), nil))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/listings?sort=price-high&type=all&bogus=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "sort=price-high", resp.Query)
	assert.Equal(t, TypeAll, resp.Filters.Type)
	require.Len(t, resp.Listings, 4)
	assert.Equal(t, "product", resp.Listings[0]["listing_type"])
	assert.Equal(t, "Galaxy", resp.Listings[0]["title"])
	assert.Equal(t, "service", resp.Listings[1]["listing_type"])
}

func TestHandler_List_EmptyIsArray(t *testing.T) {
	h := NewHandler(NewPipeline(&fakeSource{}, nil))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/listings", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"listings":[],"filters":{"type":"all","category":"all","sort":"newest"},"query":""}`, rec.Body.String())
}
