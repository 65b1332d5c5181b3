// Package prescription uploads prescriptions for orders that need them.
package prescription

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
	"github.com/nikolayk812/pharmacy-storefront/internal/media"
	"github.com/nikolayk812/pharmacy-storefront/internal/port"
	"go.uber.org/zap"
)

var ErrMissingOrder = errors.New("order id is empty")

type Service struct {
	prescriptions port.PrescriptionService
	maxBytes      int64

	log *zap.Logger
}

func NewService(prescriptions port.PrescriptionService, maxBytes int64, log *zap.Logger) (*Service, error) {
	if prescriptions == nil {
		return nil, fmt.Errorf("prescriptions is nil")
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		prescriptions: prescriptions,
		maxBytes:      maxBytes,
		log:           log.Named("prescription"),
	}, nil
}

func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// Upload attaches an image or PDF to orderID. The bytes are forwarded as is.
func (s *Service) Upload(ctx context.Context, orderID string, data []byte) (string, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return "", ErrMissingOrder
	}

	image, err := media.Check(data, media.ImageOrPDF, s.maxBytes)
	if err != nil {
		return "", fmt.Errorf("media.Check: %w", err)
	}

	prescriptionID, err := s.prescriptions.UploadPrescription(ctx, orderID, image)
	if err != nil {
		return "", fmt.Errorf("prescriptions.UploadPrescription: %w", err)
	}

	s.log.Info("prescription uploaded",
		zap.String("prescription_id", prescriptionID),
		zap.String("order_id", orderID),
		zap.String("content_type", image.ContentType),
		zap.Int("bytes", len(image.Data)))

	return prescriptionID, nil
}

func (s *Service) Mine(ctx context.Context) ([]domain.Prescription, error) {
	prescriptions, err := s.prescriptions.GetMyPrescriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("prescriptions.GetMyPrescriptions: %w", err)
	}
	return prescriptions, nil
}
