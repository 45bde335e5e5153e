package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lankamarket/lankamarket-api/internal/auth"
	"github.com/lankamarket/lankamarket-api/internal/httputil"
	"github.com/lankamarket/lankamarket-api/internal/logging"
)

// Handler serves the catalog read endpoints and product creation
type Handler struct {
	service *QueryService
}

func NewHandler(service *QueryService) *Handler {
	return &Handler{service: service}
}

// CategoriesResponse wraps a category list
type CategoriesResponse struct {
	Categories []Category `json:"categories"`
}

// CreateProductRequest is the body of POST /products
type CreateProductRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       *float64  `json:"price"`
	CategoryID  uuid.UUID `json:"category_id"`
}

// ListCategories returns every category
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Success      200 {object} CategoriesResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	h.listCategories(w, r, "")
}

// ListCategoriesByType returns the categories of one type
// @Summary      List categories by type
// @Tags         categories
// @Produce      json
// @Param        type path string true "product or service"
// @Success      200 {object} CategoriesResponse
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /categories/type/{type} [get]
func (h *Handler) ListCategoriesByType(w http.ResponseWriter, r *http.Request) {
	h.listCategories(w, r, chi.URLParam(r, "type"))
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request, typeFilter string) {
	logger := logging.GetLoggerFromContext(r.Context())

	categories, err := h.service.ListCategories(r.Context(), typeFilter)
	if err != nil {
		if errors.Is(err, ErrInvalidCategoryType) {
			httputil.WriteError(w, logger, httputil.ValidationError(httputil.CodeInvalidCategory, err.Error()))
			return
		}
		httputil.WriteError(w, logger, httputil.UpstreamError("failed to list categories", err))
		return
	}

	httputil.RespondJSON(w, CategoriesResponse{Categories: categories}, http.StatusOK)
}

// ListProducts returns products with their seller
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        category query string false "category slug"
// @Param        sort query string false "newest, oldest, price-low, price-high or popular"
// @Success      200 {array} Product
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /products [get]
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	q, err := queryFromRequest(r)
	if err != nil {
		httputil.WriteError(w, logger, err)
		return
	}

	products, err := h.service.ListProducts(r.Context(), q)
	if err != nil {
		httputil.WriteError(w, logger, httputil.UpstreamError("failed to list products", err))
		return
	}

	httputil.RespondJSON(w, products, http.StatusOK)
}

// GetProduct returns one product with its seller
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        id path string true "product id"
// @Success      200 {object} Product
// @Failure      404 {object} httputil.ErrorResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /products/{id} [get]
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, logger, httputil.NotFoundError("product not found"))
		return
	}

	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteError(w, logger, httputil.NotFoundError("product not found"))
			return
		}
		httputil.WriteError(w, logger, httputil.UpstreamError("failed to get product", err))
		return
	}

	httputil.RespondJSON(w, p, http.StatusOK)
}

// CreateProduct lists a new product for the authenticated seller
// @Summary      Create product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        request body CreateProductRequest true "Product"
// @Success      200 {object} Product
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /products [post]
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	sellerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if req.Price == nil {
		httputil.WriteError(w, logger, httputil.ValidationError(httputil.CodeValidationFailed, ErrPriceRequired.Error()))
		return
	}

	p, err := h.service.CreateProduct(r.Context(), NewProduct{
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		CategoryID:  req.CategoryID,
		SellerID:    sellerID,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrTitleRequired), errors.Is(err, ErrPriceRequired), errors.Is(err, ErrCategoryRequired):
			httputil.WriteError(w, logger, httputil.ValidationError(httputil.CodeValidationFailed, err.Error()))
		case errors.Is(err, ErrUnknownCategory):
			httputil.WriteError(w, logger, httputil.ValidationError(httputil.CodeInvalidCategory, err.Error()))
		default:
			httputil.WriteError(w, logger, httputil.UpstreamError("failed to create product", err))
		}
		return
	}

	logger.Info("product created", "product_id", p.ID, "seller_id", sellerID)
	httputil.RespondJSON(w, p, http.StatusOK)
}

// ListServices returns services with their seller
// @Summary      List services
// @Tags         services
// @Produce      json
// @Param        category query string false "category slug"
// @Param        sort query string false "newest, oldest, price-low, price-high or popular"
// @Success      200 {array} Service
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /services [get]
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	q, err := queryFromRequest(r)
	if err != nil {
		httputil.WriteError(w, logger, err)
		return
	}

	services, err := h.service.ListServices(r.Context(), q)
	if err != nil {
		httputil.WriteError(w, logger, httputil.UpstreamError("failed to list services", err))
		return
	}

	httputil.RespondJSON(w, services, http.StatusOK)
}

// GetService returns one service with its seller
// @Summary      Get service
// @Tags         services
// @Produce      json
// @Param        id path string true "service id"
// @Success      200 {object} Service
// @Failure      404 {object} httputil.ErrorResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /services/{id} [get]
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, logger, httputil.NotFoundError("service not found"))
		return
	}

	sv, err := h.service.GetService(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteError(w, logger, httputil.NotFoundError("service not found"))
			return
		}
		httputil.WriteError(w, logger, httputil.UpstreamError("failed to get service", err))
		return
	}

	httputil.RespondJSON(w, sv, http.StatusOK)
}

// queryFromRequest reads the category and sort query parameters
func queryFromRequest(r *http.Request) (Query, error) {
	values := r.URL.Query()

	sort, err := ParseSort(values.Get("sort"))
	if err != nil {
		return Query{}, httputil.ValidationError(httputil.CodeInvalidListingSort, err.Error())
	}

	return Query{
		Category: values.Get("category"),
		Order:    sort.Order(),
	}, nil
}
