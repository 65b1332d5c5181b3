// Package fake provides an in-memory port.Backend for tests.
package fake

import (
	"cmp"
	"context"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/pharmacy-storefront/internal/backend"
	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
	"github.com/nikolayk812/pharmacy-storefront/internal/port"
)

// Backend keeps everything in memory. The caller identity is the credential
// found in the context; an empty credential is an anonymous caller.
type Backend struct {
	mu sync.Mutex

	products      map[string]domain.Product
	labTests      map[string]domain.LabTest
	packages      map[string]domain.HealthPackage
	articles      map[string]domain.Article
	orders        []domain.Order
	requests      []domain.OrderRequest
	bookings      []domain.LabTestBooking
	prescriptions []domain.Prescription
	images        []domain.Image
	profiles      map[string]domain.UserProfile
	admins        map[string]bool

	calls    map[string]int
	failures map[string]error
	now      func() time.Time
}

var _ port.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{
		products: make(map[string]domain.Product),
		labTests: make(map[string]domain.LabTest),
		packages: make(map[string]domain.HealthPackage),
		articles: make(map[string]domain.Article),
		profiles: make(map[string]domain.UserProfile),
		admins:   make(map[string]bool),
		calls:    make(map[string]int),
		failures: make(map[string]error),
		now:      time.Now,
	}
}

func (b *Backend) PutProduct(p domain.Product) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.products[p.ID] = p
}

func (b *Backend) PutLabTest(t domain.LabTest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.labTests[t.ID] = t
}

func (b *Backend) PutHealthPackage(h domain.HealthPackage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.packages[h.ID] = h
}

func (b *Backend) PutArticle(a domain.Article) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.articles[a.ID] = a
}

func (b *Backend) GrantAdmin(credential string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.admins[credential] = true
}

// Fail makes every later call of op return err until Fail(op, nil).
func (b *Backend) Fail(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		delete(b.failures, op)
		return
	}
	b.failures[op] = err
}

func (b *Backend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

func (b *Backend) OrderRequests() []domain.OrderRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.requests)
}

func (b *Backend) Images() []domain.Image {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.images)
}

// record must be called with mu held.
func (b *Backend) record(op string) error {
	b.calls[op]++
	return b.failures[op]
}

func caller(ctx context.Context) string {
	return backend.CredentialFrom(ctx)
}

func denied(op string) error {
	return &backend.APIError{Operation: op, Status: http.StatusForbidden, Message: "Unauthorized"}
}

func (b *Backend) signedIn(ctx context.Context, op string) error {
	if caller(ctx) == "" {
		return &backend.APIError{Operation: op, Status: http.StatusUnauthorized, Message: "Unauthorized"}
	}
	return nil
}

func (b *Backend) admin(ctx context.Context, op string) error {
	if !b.admins[caller(ctx)] {
		return denied(op)
	}
	return nil
}

func sorted[K cmp.Ordered, V any](m map[K]V) []V {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func (b *Backend) SearchProducts(_ context.Context, search domain.ProductSearch) ([]domain.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("SearchProducts"); err != nil {
		return nil, err
	}

	var out []domain.Product
	for _, p := range sorted(b.products) {
		if search.Term != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(search.Term)) {
			continue
		}
		if search.Category != nil && p.Category != *search.Category {
			continue
		}
		if search.MinPrice != nil && p.Price < *search.MinPrice {
			continue
		}
		if search.MaxPrice != nil && p.Price > *search.MaxPrice {
			continue
		}
		if search.Brand != nil && p.Manufacturer != *search.Brand {
			continue
		}
		if search.RequiresPrescription != nil && p.RequiresPrescription != *search.RequiresPrescription {
			continue
		}
		out = append(out, p)
	}

	switch search.SortBy {
	case domain.SortPriceLowHigh:
		slices.SortStableFunc(out, func(a, b domain.Product) int { return cmp.Compare(a.Price, b.Price) })
	case domain.SortPriceHighLow:
		slices.SortStableFunc(out, func(a, b domain.Product) int { return cmp.Compare(b.Price, a.Price) })
	}

	return out, nil
}

func (b *Backend) GetProduct(_ context.Context, productID string) (domain.Product, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("GetProduct"); err != nil {
		return domain.Product{}, false, err
	}

	p, ok := b.products[productID]
	return p, ok, nil
}

func (b *Backend) GetProductsByCategory(_ context.Context, category string) ([]domain.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("GetProductsByCategory"); err != nil {
		return nil, err
	}

	var out []domain.Product
	for _, p := range sorted(b.products) {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (b *Backend) GetCategories(_ context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("GetCategories"); err != nil {
		return nil, err
	}

	var out []string
	for _, p := range b.products {
		if !slices.Contains(out, p.Category) {
			out = append(out, p.Category)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (b *Backend) GetLabTests(_ context.Context) ([]domain.LabTest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("GetLabTests"); err != nil {
		return nil, err
	}
	return sorted(b.labTests), nil
}

func (b *Backend) GetLabTest(_ context.Context, labTestID string) (domain.LabTest, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("GetLabTest"); err != nil {
		return domain.LabTest{}, false, err
	}

	t, ok := b.labTests[labTestID]
	return t, ok, nil
}

func (b *Backend) GetHealthPackages(_ context.Context) ([]domain.HealthPackage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("GetHealthPackages"); err != nil {
		return nil, err
	}
	return sorted(b.packages), nil
}

func (b *Backend) GetPopularHealthPackages(_ context.Context) ([]domain.HealthPackage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("GetPopularHealthPackages"); err != nil {
		return nil, err
	}

	var out []domain.HealthPackage
	for _, h := range sorted(b.packages) {
		if h.IsPopular {
			out = append(out, h)
		}
	}
	return out, nil
}

func (b *Backend) GetHealthPackage(_ context.Context, packageID string) (domain.HealthPackage, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("GetHealthPackage"); err != nil {
		return domain.HealthPackage{}, false, err
	}

	h, ok := b.packages[packageID]
	return h, ok, nil
}

func (b *Backend) SearchHealthPackages(_ context.Context, term string, priceRange *domain.PriceRange) ([]domain.HealthPackage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("SearchHealthPackages"); err != nil {
		return nil, err
	}

	var out []domain.HealthPackage
	for _, h := range sorted(b.packages) {
		if term != "" && !strings.Contains(strings.ToLower(h.Name), strings.ToLower(term)) {
			continue
		}
		if priceRange != nil && (h.DiscountedPrice < priceRange.Min || h.DiscountedPrice > priceRange.Max) {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

func (b *Backend) GetArticles(_ context.Context) ([]domain.Article, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("GetArticles"); err != nil {
		return nil, err
	}
	return sorted(b.articles), nil
}

func (b *Backend) GetArticle(_ context.Context, articleID string) (domain.Article, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("GetArticle"); err != nil {
		return domain.Article{}, false, err
	}

	a, ok := b.articles[articleID]
	return a, ok, nil
}

func (b *Backend) CreateOrder(ctx context.Context, req domain.OrderRequest) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("CreateOrder"); err != nil {
		return "", err
	}
	if err := b.signedIn(ctx, "createOrder"); err != nil {
		return "", err
	}

	order := domain.Order{
		ID:              uuid.NewString(),
		UserID:          caller(ctx),
		Items:           slices.Clone(req.Items),
		TotalAmount:     req.TotalAmount,
		DeliveryAddress: req.DeliveryAddress,
		Status:          domain.OrderPlaced,
		CreatedAt:       b.now(),
	}
	b.orders = append(b.orders, order)
	b.requests = append(b.requests, req)

	return order.ID, nil
}

func (b *Backend) GetMyOrders(ctx context.Context) ([]domain.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("GetMyOrders"); err != nil {
		return nil, err
	}

	var out []domain.Order
	for _, o := range b.orders {
		if o.UserID == caller(ctx) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (b *Backend) BookLabTest(ctx context.Context, labTestID string, appointmentTime time.Time) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("BookLabTest"); err != nil {
		return "", err
	}
	if err := b.signedIn(ctx, "bookLabTest"); err != nil {
		return "", err
	}

	booking := domain.LabTestBooking{
		ID:              uuid.NewString(),
		UserID:          caller(ctx),
		LabTestID:       labTestID,
		AppointmentTime: appointmentTime,
		CreatedAt:       b.now(),
	}
	b.bookings = append(b.bookings, booking)

	return booking.ID, nil
}

func (b *Backend) GetMyLabTestBookings(ctx context.Context) ([]domain.LabTestBooking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("GetMyLabTestBookings"); err != nil {
		return nil, err
	}

	var out []domain.LabTestBooking
	for _, booking := range b.bookings {
		if booking.UserID == caller(ctx) {
			out = append(out, booking)
		}
	}
	return out, nil
}

func (b *Backend) UploadPrescription(ctx context.Context, orderID string, image domain.Image) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("UploadPrescription"); err != nil {
		return "", err
	}
	if err := b.signedIn(ctx, "uploadPrescription"); err != nil {
		return "", err
	}

	b.images = append(b.images, image)

	prescription := domain.Prescription{
		ID:         uuid.NewString(),
		UserID:     caller(ctx),
		OrderID:    orderID,
		ImageURL:   "https://blob.example/" + uuid.NewString(),
		Status:     domain.PrescriptionPending,
		UploadedAt: b.now(),
	}
	b.prescriptions = append(b.prescriptions, prescription)

	return prescription.ID, nil
}

func (b *Backend) GetMyPrescriptions(ctx context.Context) ([]domain.Prescription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("GetMyPrescriptions"); err != nil {
		return nil, err
	}

	var out []domain.Prescription
	for _, p := range b.prescriptions {
		if p.UserID == caller(ctx) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (b *Backend) GetCallerProfile(ctx context.Context) (domain.UserProfile, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("GetCallerProfile"); err != nil {
		return domain.UserProfile{}, false, err
	}

	p, ok := b.profiles[caller(ctx)]
	return p, ok, nil
}

func (b *Backend) SaveCallerProfile(ctx context.Context, profile domain.UserProfile) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("SaveCallerProfile"); err != nil {
		return err
	}
	if err := b.signedIn(ctx, "saveCallerUserProfile"); err != nil {
		return err
	}

	b.profiles[caller(ctx)] = profile
	return nil
}

func (b *Backend) GetCallerRole(ctx context.Context) (domain.UserRole, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("GetCallerRole"); err != nil {
		return "", err
	}

	switch {
	case b.admins[caller(ctx)]:
		return domain.RoleAdmin, nil
	case caller(ctx) != "":
		return domain.RoleUser, nil
	default:
		return domain.RoleGuest, nil
	}
}

func (b *Backend) IsCallerAdmin(ctx context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("IsCallerAdmin"); err != nil {
		return false, err
	}
	return b.admins[caller(ctx)], nil
}

func (b *Backend) AddLabTest(ctx context.Context, labTest domain.LabTest) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("AddLabTest"); err != nil {
		return "", err
	}
	if err := b.admin(ctx, "addLabTest"); err != nil {
		return "", err
	}

	labTest.ID = uuid.NewString()
	b.labTests[labTest.ID] = labTest

	return labTest.ID, nil
}

func (b *Backend) UpdateLabTest(ctx context.Context, labTestID string, labTest domain.LabTest) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("UpdateLabTest"); err != nil {
		return err
	}
	if err := b.admin(ctx, "updateLabTest"); err != nil {
		return err
	}
	if _, ok := b.labTests[labTestID]; !ok {
		return &backend.APIError{Operation: "updateLabTest", Status: http.StatusNotFound, Message: "Lab test not found"}
	}

	labTest.ID = labTestID
	b.labTests[labTestID] = labTest

	return nil
}

func (b *Backend) DeleteLabTest(ctx context.Context, labTestID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("DeleteLabTest"); err != nil {
		return err
	}
	if err := b.admin(ctx, "deleteLabTest"); err != nil {
		return err
	}

	delete(b.labTests, labTestID)
	return nil
}

func (b *Backend) AddHealthPackage(ctx context.Context, pkg domain.HealthPackage) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("AddHealthPackage"); err != nil {
		return "", err
	}
	if err := b.admin(ctx, "addHealthPackage"); err != nil {
		return "", err
	}

	pkg.ID = uuid.NewString()
	b.packages[pkg.ID] = pkg

	return pkg.ID, nil
}

func (b *Backend) UpdateHealthPackage(ctx context.Context, packageID string, pkg domain.HealthPackage) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("UpdateHealthPackage"); err != nil {
		return err
	}
	if err := b.admin(ctx, "updateHealthPackage"); err != nil {
		return err
	}
	if _, ok := b.packages[packageID]; !ok {
		return &backend.APIError{Operation: "updateHealthPackage", Status: http.StatusNotFound, Message: "Health package not found"}
	}

	pkg.ID = packageID
	b.packages[packageID] = pkg

	return nil
}

func (b *Backend) DeleteHealthPackage(ctx context.Context, packageID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("DeleteHealthPackage"); err != nil {
		return err
	}
	if err := b.admin(ctx, "deleteHealthPackage"); err != nil {
		return err
	}

	delete(b.packages, packageID)
	return nil
}

func (b *Backend) GetAllOrders(ctx context.Context) ([]domain.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("GetAllOrders"); err != nil {
		return nil, err
	}
	if err := b.admin(ctx, "getAllOrders"); err != nil {
		return nil, err
	}
	return slices.Clone(b.orders), nil
}

func (b *Backend) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("UpdateOrderStatus"); err != nil {
		return err
	}
	if err := b.admin(ctx, "updateOrderStatus"); err != nil {
		return err
	}

	for i := range b.orders {
		if b.orders[i].ID == orderID {
			b.orders[i].Status = status
			return nil
		}
	}
	return &backend.APIError{Operation: "updateOrderStatus", Status: http.StatusNotFound, Message: "Order not found"}
}

func (b *Backend) GetAllBookings(ctx context.Context) ([]domain.LabTestBooking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("GetAllBookings"); err != nil {
		return nil, err
	}
	if err := b.admin(ctx, "getAllBookings"); err != nil {
		return nil, err
	}
	return slices.Clone(b.bookings), nil
}

func (b *Backend) GetAllPrescriptions(ctx context.Context) ([]domain.Prescription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("GetAllPrescriptions"); err != nil {
		return nil, err
	}
	if err := b.admin(ctx, "getAllPrescriptions"); err != nil {
		return nil, err
	}
	return slices.Clone(b.prescriptions), nil
}

func (b *Backend) UpdatePrescriptionStatus(ctx context.Context, prescriptionID string, status domain.PrescriptionStatus) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("UpdatePrescriptionStatus"); err != nil {
		return err
	}
	if err := b.admin(ctx, "updatePrescriptionStatus"); err != nil {
		return err
	}

	for i := range b.prescriptions {
		if b.prescriptions[i].ID == prescriptionID {
			b.prescriptions[i].Status = status
			return nil
		}
	}
	return &backend.APIError{Operation: "updatePrescriptionStatus", Status: http.StatusNotFound, Message: "Prescription not found"}
}

func (b *Backend) UploadImage(ctx context.Context, image domain.Image) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("UploadImage"); err != nil {
		return "", err
	}
	if err := b.admin(ctx, "uploadImage"); err != nil {
		return "", err
	}

	b.images = append(b.images, image)
	return "https://blob.example/" + uuid.NewString(), nil
}

func (b *Backend) SeedData(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.record("SeedData"); err != nil {
		return err
	}
	if err := b.admin(ctx, "seedData"); err != nil {
		return err
	}
	return nil
}
