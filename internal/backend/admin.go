package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
)

func (c *Client) AddLabTest(ctx context.Context, labTest domain.LabTest) (string, error) {
	return create(ctx, c, "AddLabTest", "/lab-tests", mapLabTestFromDomain(labTest))
}

func (c *Client) UpdateLabTest(ctx context.Context, labTestID string, labTest domain.LabTest) error {
	return c.do(ctx, request{
		op:     "UpdateLabTest",
		method: http.MethodPut,
		path:   "/lab-tests/" + url.PathEscape(labTestID),
		body:   mapLabTestFromDomain(labTest),
	}, nil)
}

func (c *Client) DeleteLabTest(ctx context.Context, labTestID string) error {
	return c.do(ctx, request{
		op:     "DeleteLabTest",
		method: http.MethodDelete,
		path:   "/lab-tests/" + url.PathEscape(labTestID),
	}, nil)
}

func (c *Client) AddHealthPackage(ctx context.Context, pkg domain.HealthPackage) (string, error) {
	return create(ctx, c, "AddHealthPackage", "/health-packages", mapHealthPackageFromDomain(pkg))
}

func (c *Client) UpdateHealthPackage(ctx context.Context, packageID string, pkg domain.HealthPackage) error {
	return c.do(ctx, request{
		op:     "UpdateHealthPackage",
		method: http.MethodPut,
		path:   "/health-packages/" + url.PathEscape(packageID),
		body:   mapHealthPackageFromDomain(pkg),
	}, nil)
}

func (c *Client) DeleteHealthPackage(ctx context.Context, packageID string) error {
	return c.do(ctx, request{
		op:     "DeleteHealthPackage",
		method: http.MethodDelete,
		path:   "/health-packages/" + url.PathEscape(packageID),
	}, nil)
}

// SeedData asks the remote API to load its demo catalog.
func (c *Client) SeedData(ctx context.Context) error {
	return c.do(ctx, request{op: "SeedData", method: http.MethodPost, path: "/seed"}, nil)
}
