// Package admin is the back-office: catalog maintenance, order and
// prescription review. Role checks are enforced by the remote API.
package admin

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
	"github.com/nikolayk812/pharmacy-storefront/internal/media"
	"github.com/nikolayk812/pharmacy-storefront/internal/port"
	"github.com/nikolayk812/pharmacy-storefront/internal/validate"
	"go.uber.org/zap"
)

var (
	ErrUnknownOrderStatus        = errors.New("unknown order status")
	ErrUnknownPrescriptionStatus = errors.New("unknown prescription status")
)

// LabTestForm is the editable part of a lab test.
type LabTestForm struct {
	Name            string   `json:"name" validate:"notblank"`
	Description     string   `json:"description" validate:"notblank"`
	SampleType      string   `json:"sampleType" validate:"notblank"`
	TurnaroundTime  string   `json:"turnaroundTime" validate:"notblank"`
	ImageURL        string   `json:"imageUrl"`
	MarketPrice     int64    `json:"marketPrice" validate:"gt=0"`
	DiscountedPrice int64    `json:"discountedPrice" validate:"gt=0,ltefield=MarketPrice"`
	TestParameters  []string `json:"testParameters"`
}

func (f LabTestForm) LabTest() domain.LabTest {
	return domain.LabTest{
		Name:            strings.TrimSpace(f.Name),
		Description:     strings.TrimSpace(f.Description),
		SampleType:      strings.TrimSpace(f.SampleType),
		TurnaroundTime:  strings.TrimSpace(f.TurnaroundTime),
		ImageURL:        f.ImageURL,
		MarketPrice:     f.MarketPrice,
		DiscountedPrice: f.DiscountedPrice,
		TestParameters:  tags(f.TestParameters),
	}
}

type HealthPackageForm struct {
	LabTestForm
	IncludedTests []string `json:"includedTests"`
	IsPopular     bool     `json:"isPopular"`
}

func (f HealthPackageForm) HealthPackage() domain.HealthPackage {
	t := f.LabTest()

	return domain.HealthPackage{
		Name:            t.Name,
		Description:     t.Description,
		SampleType:      t.SampleType,
		TurnaroundTime:  t.TurnaroundTime,
		ImageURL:        t.ImageURL,
		MarketPrice:     t.MarketPrice,
		DiscountedPrice: t.DiscountedPrice,
		TestParameters:  t.TestParameters,
		IncludedTests:   tags(f.IncludedTests),
		IsPopular:       f.IsPopular,
	}
}

// tags trims entries and drops blanks and repeats, keeping the first occurrence.
func tags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

type Service struct {
	backend   port.Backend
	validator *validate.Validator
	maxImage  int64

	log *zap.Logger
}

func NewService(backend port.Backend, v *validate.Validator, maxImageBytes int64, log *zap.Logger) (*Service, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is nil")
	}
	if v == nil {
		v = validate.New()
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		backend:   backend,
		validator: v,
		maxImage:  maxImageBytes,
		log:       log.Named("admin"),
	}, nil
}

func (s *Service) MaxImageBytes() int64 {
	return s.maxImage
}

func (s *Service) IsAdmin(ctx context.Context) (bool, error) {
	isAdmin, err := s.backend.IsCallerAdmin(ctx)
	if err != nil {
		return false, fmt.Errorf("backend.IsCallerAdmin: %w", err)
	}
	return isAdmin, nil
}

func (s *Service) AddLabTest(ctx context.Context, form LabTestForm) (string, error) {
	if err := s.validator.Struct(form); err != nil {
		return "", err
	}

	labTestID, err := s.backend.AddLabTest(ctx, form.LabTest())
	if err != nil {
		return "", fmt.Errorf("backend.AddLabTest: %w", err)
	}

	s.log.Info("lab test added", zap.String("lab_test_id", labTestID))
	return labTestID, nil
}

func (s *Service) UpdateLabTest(ctx context.Context, labTestID string, form LabTestForm) error {
	if err := s.validator.Struct(form); err != nil {
		return err
	}

	labTest := form.LabTest()
	labTest.ID = labTestID

	if err := s.backend.UpdateLabTest(ctx, labTestID, labTest); err != nil {
		return fmt.Errorf("backend.UpdateLabTest: %w", err)
	}

	s.log.Info("lab test updated", zap.String("lab_test_id", labTestID))
	return nil
}

func (s *Service) DeleteLabTest(ctx context.Context, labTestID string) error {
	if err := s.backend.DeleteLabTest(ctx, labTestID); err != nil {
		return fmt.Errorf("backend.DeleteLabTest: %w", err)
	}

	s.log.Info("lab test deleted", zap.String("lab_test_id", labTestID))
	return nil
}

func (s *Service) AddHealthPackage(ctx context.Context, form HealthPackageForm) (string, error) {
	if err := s.validator.Struct(form); err != nil {
		return "", err
	}

	packageID, err := s.backend.AddHealthPackage(ctx, form.HealthPackage())
	if err != nil {
		return "", fmt.Errorf("backend.AddHealthPackage: %w", err)
	}

	s.log.Info("health package added", zap.String("package_id", packageID))
	return packageID, nil
}

func (s *Service) UpdateHealthPackage(ctx context.Context, packageID string, form HealthPackageForm) error {
	if err := s.validator.Struct(form); err != nil {
		return err
	}

	pkg := form.HealthPackage()
	pkg.ID = packageID

	if err := s.backend.UpdateHealthPackage(ctx, packageID, pkg); err != nil {
		return fmt.Errorf("backend.UpdateHealthPackage: %w", err)
	}

	s.log.Info("health package updated", zap.String("package_id", packageID))
	return nil
}

func (s *Service) DeleteHealthPackage(ctx context.Context, packageID string) error {
	if err := s.backend.DeleteHealthPackage(ctx, packageID); err != nil {
		return fmt.Errorf("backend.DeleteHealthPackage: %w", err)
	}

	s.log.Info("health package deleted", zap.String("package_id", packageID))
	return nil
}

func (s *Service) Orders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.backend.GetAllOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("backend.GetAllOrders: %w", err)
	}
	return orders, nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	orderStatus, ok := domain.ParseOrderStatus(status)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOrderStatus, status)
	}

	if err := s.backend.UpdateOrderStatus(ctx, orderID, orderStatus); err != nil {
		return fmt.Errorf("backend.UpdateOrderStatus: %w", err)
	}

	s.log.Info("order status updated", zap.String("order_id", orderID), zap.String("status", string(orderStatus)))
	return nil
}

func (s *Service) Bookings(ctx context.Context) ([]domain.LabTestBooking, error) {
	bookings, err := s.backend.GetAllBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("backend.GetAllBookings: %w", err)
	}
	return bookings, nil
}

func (s *Service) Prescriptions(ctx context.Context) ([]domain.Prescription, error) {
	prescriptions, err := s.backend.GetAllPrescriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("backend.GetAllPrescriptions: %w", err)
	}
	return prescriptions, nil
}

func (s *Service) UpdatePrescriptionStatus(ctx context.Context, prescriptionID, status string) error {
	prescriptionStatus, ok := domain.ParsePrescriptionStatus(status)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPrescriptionStatus, status)
	}

	if err := s.backend.UpdatePrescriptionStatus(ctx, prescriptionID, prescriptionStatus); err != nil {
		return fmt.Errorf("backend.UpdatePrescriptionStatus: %w", err)
	}

	s.log.Info("prescription status updated",
		zap.String("prescription_id", prescriptionID),
		zap.String("status", string(prescriptionStatus)))
	return nil
}

// UploadImage stores a catalog image and returns its public URL.
func (s *Service) UploadImage(ctx context.Context, data []byte) (string, error) {
	image, err := media.Check(data, media.Image, s.maxImage)
	if err != nil {
		return "", fmt.Errorf("media.Check: %w", err)
	}

	url, err := s.backend.UploadImage(ctx, image)
	if err != nil {
		return "", fmt.Errorf("backend.UploadImage: %w", err)
	}

	return url, nil
}

func (s *Service) SeedData(ctx context.Context) error {
	if err := s.backend.SeedData(ctx); err != nil {
		return fmt.Errorf("backend.SeedData: %w", err)
	}

	s.log.Info("sample data seeded")
	return nil
}
