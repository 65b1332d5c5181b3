package backend

import (
	"context"
	"net/url"
	"strconv"

	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
)

func (c *Client) SearchProducts(ctx context.Context, search domain.ProductSearch) ([]domain.Product, error) {
	query := url.Values{}
	query.Set("term", search.Term)
	if search.Category != nil {
		query.Set("category", *search.Category)
	}
	if search.MinPrice != nil {
		query.Set("minPrice", strconv.FormatInt(*search.MinPrice, 10))
	}
	if search.MaxPrice != nil {
		query.Set("maxPrice", strconv.FormatInt(*search.MaxPrice, 10))
	}
	if search.Brand != nil {
		query.Set("brand", *search.Brand)
	}
	if search.RequiresPrescription != nil {
		query.Set("requiresPrescription", strconv.FormatBool(*search.RequiresPrescription))
	}
	if search.SortBy != domain.SortDefault {
		query.Set("sortBy", string(search.SortBy))
	}

	dtos, err := get[[]productDTO](ctx, c, "SearchProducts", "/products/search", query)
	if err != nil {
		return nil, err
	}

	return mapSlice(dtos, mapProductToDomain), nil
}

func (c *Client) GetProduct(ctx context.Context, productID string) (domain.Product, bool, error) {
	dto, found, err := getOne[productDTO](ctx, c, "GetProduct", "/products/"+url.PathEscape(productID))
	if err != nil || !found {
		return domain.Product{}, false, err
	}

	return mapProductToDomain(dto), true, nil
}

func (c *Client) GetProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	dtos, err := get[[]productDTO](ctx, c, "GetProductsByCategory", "/products", url.Values{"category": {category}})
	if err != nil {
		return nil, err
	}

	return mapSlice(dtos, mapProductToDomain), nil
}

func (c *Client) GetCategories(ctx context.Context) ([]string, error) {
	return get[[]string](ctx, c, "GetCategories", "/categories", nil)
}

func (c *Client) GetLabTests(ctx context.Context) ([]domain.LabTest, error) {
	dtos, err := get[[]labTestDTO](ctx, c, "GetLabTests", "/lab-tests", nil)
	if err != nil {
		return nil, err
	}

	return mapSlice(dtos, mapLabTestToDomain), nil
}

func (c *Client) GetLabTest(ctx context.Context, labTestID string) (domain.LabTest, bool, error) {
	dto, found, err := getOne[labTestDTO](ctx, c, "GetLabTest", "/lab-tests/"+url.PathEscape(labTestID))
	if err != nil || !found {
		return domain.LabTest{}, false, err
	}

	return mapLabTestToDomain(dto), true, nil
}

func (c *Client) GetHealthPackages(ctx context.Context) ([]domain.HealthPackage, error) {
	return c.listHealthPackages(ctx, "GetHealthPackages", "/health-packages", nil)
}

func (c *Client) GetPopularHealthPackages(ctx context.Context) ([]domain.HealthPackage, error) {
	return c.listHealthPackages(ctx, "GetPopularHealthPackages", "/health-packages/popular", nil)
}

func (c *Client) SearchHealthPackages(ctx context.Context, term string, priceRange *domain.PriceRange) ([]domain.HealthPackage, error) {
	query := url.Values{"term": {term}}
	if priceRange != nil {
		query.Set("minPrice", strconv.FormatInt(priceRange.Min, 10))
		query.Set("maxPrice", strconv.FormatInt(priceRange.Max, 10))
	}

	return c.listHealthPackages(ctx, "SearchHealthPackages", "/health-packages/search", query)
}

func (c *Client) GetHealthPackage(ctx context.Context, packageID string) (domain.HealthPackage, bool, error) {
	dto, found, err := getOne[healthPackageDTO](ctx, c, "GetHealthPackage", "/health-packages/"+url.PathEscape(packageID))
	if err != nil || !found {
		return domain.HealthPackage{}, false, err
	}

	return mapHealthPackageToDomain(dto), true, nil
}

func (c *Client) listHealthPackages(ctx context.Context, op, path string, query url.Values) ([]domain.HealthPackage, error) {
	dtos, err := get[[]healthPackageDTO](ctx, c, op, path, query)
	if err != nil {
		return nil, err
	}

	return mapSlice(dtos, mapHealthPackageToDomain), nil
}

func (c *Client) GetArticles(ctx context.Context) ([]domain.Article, error) {
	dtos, err := get[[]articleDTO](ctx, c, "GetArticles", "/articles", nil)
	if err != nil {
		return nil, err
	}

	return mapSlice(dtos, mapArticleToDomain), nil
}

func (c *Client) GetArticle(ctx context.Context, articleID string) (domain.Article, bool, error) {
	dto, found, err := getOne[articleDTO](ctx, c, "GetArticle", "/articles/"+url.PathEscape(articleID))
	if err != nil || !found {
		return domain.Article{}, false, err
	}

	return mapArticleToDomain(dto), true, nil
}
