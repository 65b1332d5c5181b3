package httptransport

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/pharmacy-storefront/internal/booking"
	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
)

type productQuery struct {
	SortBy string `json:"sortBy" validate:"omitempty,oneof=priceLowHigh priceHighLow"`
}

func (h *HTTPTransport) searchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if err := h.deps.Validator.Struct(productQuery{SortBy: q.Get("sortBy")}); err != nil {
		h.writeError(w, r, err)
		return
	}

	search := domain.ProductSearch{
		Term:     q.Get("term"),
		Category: optionalString(q, "category"),
		Brand:    optionalString(q, "brand"),
		SortBy:   domain.SortOrder(q.Get("sortBy")),
	}

	var err error
	if search.MinPrice, err = optionalInt(q, "minPrice"); err != nil {
		h.writeError(w, r, err)
		return
	}
	if search.MaxPrice, err = optionalInt(q, "maxPrice"); err != nil {
		h.writeError(w, r, err)
		return
	}
	if search.RequiresPrescription, err = optionalBool(q, "requiresPrescription"); err != nil {
		h.writeError(w, r, err)
		return
	}

	products, err := h.deps.Catalog.SearchProducts(r.Context(), search)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, mapSlice(products, h.views.product))
}

func (h *HTTPTransport) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, found, err := h.deps.Catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeError(w, r, fmt.Errorf("product %s: %w", id, errNotFound))
		return
	}

	h.writeJSON(w, http.StatusOK, h.views.product(p))
}

func (h *HTTPTransport) getCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.deps.Catalog.GetCategories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, categories)
}

func (h *HTTPTransport) getLabTests(w http.ResponseWriter, r *http.Request) {
	tests, err := h.deps.Catalog.GetLabTests(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, mapSlice(tests, h.views.labTest))
}

func (h *HTTPTransport) getLabTest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	t, found, err := h.deps.Catalog.GetLabTest(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeError(w, r, fmt.Errorf("lab test %s: %w", id, errNotFound))
		return
	}

	h.writeJSON(w, http.StatusOK, h.views.labTest(t))
}

// getHealthPackages lists every package, or searches when term or a price
// bound is given.
func (h *HTTPTransport) getHealthPackages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	minPrice, err := optionalInt(q, "minPrice")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	maxPrice, err := optionalInt(q, "maxPrice")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var packages []domain.HealthPackage
	term := q.Get("term")

	if term == "" && minPrice == nil && maxPrice == nil {
		packages, err = h.deps.Catalog.GetHealthPackages(r.Context())
	} else {
		var priceRange *domain.PriceRange
		if minPrice != nil || maxPrice != nil {
			priceRange = &domain.PriceRange{Min: 0, Max: math.MaxInt64}
			if minPrice != nil {
				priceRange.Min = *minPrice
			}
			if maxPrice != nil {
				priceRange.Max = *maxPrice
			}
		}
		packages, err = h.deps.Catalog.SearchHealthPackages(r.Context(), term, priceRange)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, mapSlice(packages, h.views.healthPackage))
}

func (h *HTTPTransport) getPopularHealthPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.deps.Catalog.GetPopularHealthPackages(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, mapSlice(packages, h.views.healthPackage))
}

func (h *HTTPTransport) getHealthPackage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, found, err := h.deps.Catalog.GetHealthPackage(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeError(w, r, fmt.Errorf("health package %s: %w", id, errNotFound))
		return
	}

	h.writeJSON(w, http.StatusOK, h.views.healthPackage(p))
}

func (h *HTTPTransport) getArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.deps.Catalog.GetArticles(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, mapSlice(articles, articleSummaryToView))
}

func (h *HTTPTransport) getArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	a, found, err := h.deps.Catalog.GetArticle(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeError(w, r, fmt.Errorf("article %s: %w", id, errNotFound))
		return
	}

	h.writeJSON(w, http.StatusOK, articleToView(a))
}

func (h *HTTPTransport) getBookingSlots(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, booking.Slots())
}

func optionalString(q url.Values, key string) *string {
	if !q.Has(key) || q.Get(key) == "" {
		return nil
	}
	v := q.Get(key)
	return &v
}

func optionalInt(q url.Values, key string) (*int64, error) {
	if q.Get(key) == "" {
		return nil, nil
	}

	v, err := strconv.ParseInt(q.Get(key), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", errBadRequest, key)
	}
	return &v, nil
}

func optionalBool(q url.Values, key string) (*bool, error) {
	if q.Get(key) == "" {
		return nil, nil
	}

	v, err := strconv.ParseBool(q.Get(key))
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a boolean", errBadRequest, key)
	}
	return &v, nil
}
