package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
)

func (c *Client) UploadPrescription(ctx context.Context, orderID string, image domain.Image) (string, error) {
	var out idResponse
	err := c.do(ctx, request{
		op:      "UploadPrescription",
		method:  http.MethodPost,
		path:    "/orders/" + url.PathEscape(orderID) + "/prescriptions",
		raw:     image.Data,
		rawType: image.ContentType,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("UploadPrescription: response has no id")
	}

	return out.ID, nil
}

func (c *Client) GetMyPrescriptions(ctx context.Context) ([]domain.Prescription, error) {
	return c.listPrescriptions(ctx, "GetMyPrescriptions", "/prescriptions/mine")
}

func (c *Client) GetAllPrescriptions(ctx context.Context) ([]domain.Prescription, error) {
	return c.listPrescriptions(ctx, "GetAllPrescriptions", "/prescriptions")
}

func (c *Client) UpdatePrescriptionStatus(ctx context.Context, prescriptionID string, status domain.PrescriptionStatus) error {
	return c.do(ctx, request{
		op:     "UpdatePrescriptionStatus",
		method: http.MethodPut,
		path:   "/prescriptions/" + url.PathEscape(prescriptionID) + "/status",
		body:   statusDTO{Status: string(status)},
	}, nil)
}

func (c *Client) listPrescriptions(ctx context.Context, op, path string) ([]domain.Prescription, error) {
	dtos, err := get[[]prescriptionDTO](ctx, c, op, path, nil)
	if err != nil {
		return nil, err
	}

	return mapSlice(dtos, mapPrescriptionToDomain), nil
}

// UploadImage stores a catalog image in the blob service and returns its URL.
func (c *Client) UploadImage(ctx context.Context, image domain.Image) (string, error) {
	var out imageDTO
	err := c.do(ctx, request{
		op:      "UploadImage",
		method:  http.MethodPost,
		path:    "/images",
		raw:     image.Data,
		rawType: image.ContentType,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", fmt.Errorf("UploadImage: response has no url")
	}

	return out.URL, nil
}
