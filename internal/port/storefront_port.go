package port

import (
	"context"
	"time"

	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
)

// Single-entity getters return found=false with a nil error when the remote
// API has no such entity.

type CatalogQuerier interface {
	SearchProducts(ctx context.Context, search domain.ProductSearch) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID string) (domain.Product, bool, error)
	GetProductsByCategory(ctx context.Context, category string) ([]domain.Product, error)
	GetCategories(ctx context.Context) ([]string, error)

	GetLabTests(ctx context.Context) ([]domain.LabTest, error)
	GetLabTest(ctx context.Context, labTestID string) (domain.LabTest, bool, error)

	GetHealthPackages(ctx context.Context) ([]domain.HealthPackage, error)
	GetPopularHealthPackages(ctx context.Context) ([]domain.HealthPackage, error)
	GetHealthPackage(ctx context.Context, packageID string) (domain.HealthPackage, bool, error)
	SearchHealthPackages(ctx context.Context, term string, priceRange *domain.PriceRange) ([]domain.HealthPackage, error)

	GetArticles(ctx context.Context) ([]domain.Article, error)
	GetArticle(ctx context.Context, articleID string) (domain.Article, bool, error)
}

type OrderService interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest) (string, error)
	GetMyOrders(ctx context.Context) ([]domain.Order, error)
}

type BookingService interface {
	BookLabTest(ctx context.Context, labTestID string, appointmentTime time.Time) (string, error)
	GetMyLabTestBookings(ctx context.Context) ([]domain.LabTestBooking, error)
}

type PrescriptionService interface {
	UploadPrescription(ctx context.Context, orderID string, image domain.Image) (string, error)
	GetMyPrescriptions(ctx context.Context) ([]domain.Prescription, error)
}

type ProfileService interface {
	GetCallerProfile(ctx context.Context) (domain.UserProfile, bool, error)
	SaveCallerProfile(ctx context.Context, profile domain.UserProfile) error
	GetCallerRole(ctx context.Context) (domain.UserRole, error)
	IsCallerAdmin(ctx context.Context) (bool, error)
}

type AdminService interface {
	AddLabTest(ctx context.Context, labTest domain.LabTest) (string, error)
	UpdateLabTest(ctx context.Context, labTestID string, labTest domain.LabTest) error
	DeleteLabTest(ctx context.Context, labTestID string) error

	AddHealthPackage(ctx context.Context, pkg domain.HealthPackage) (string, error)
	UpdateHealthPackage(ctx context.Context, packageID string, pkg domain.HealthPackage) error
	DeleteHealthPackage(ctx context.Context, packageID string) error

	GetAllOrders(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error

	GetAllBookings(ctx context.Context) ([]domain.LabTestBooking, error)

	GetAllPrescriptions(ctx context.Context) ([]domain.Prescription, error)
	UpdatePrescriptionStatus(ctx context.Context, prescriptionID string, status domain.PrescriptionStatus) error

	UploadImage(ctx context.Context, image domain.Image) (string, error)
	SeedData(ctx context.Context) error
}

// Backend is the whole remote storefront API.
type Backend interface {
	CatalogQuerier
	OrderService
	BookingService
	PrescriptionService
	ProfileService
	AdminService
}
