// Package query caches reads of the remote storefront API and drops cached
// entries when a mutation makes them stale.
package query

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/nikolayk812/pharmacy-storefront/internal/backend"
	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
	"github.com/nikolayk812/pharmacy-storefront/internal/metrics"
	"github.com/nikolayk812/pharmacy-storefront/internal/port"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	keyProducts        = "products"
	keyProduct         = "product"
	keyCategories      = "categories"
	keyLabTest         = "labTest"
	keyHealthPackage   = "healthPackage"
	keyArticle         = "article"
	keyProfile         = "currentUserProfile"
	keyRole            = "callerRole"
	keyIsAdmin         = "isCallerAdmin"
	keyMyOrders        = "myOrders"
	keyMyBookings      = "myLabTestBookings"
	keyMyPrescriptions = "myPrescriptions"
	keyAllOrders       = "allOrders"
	keyAllBookings     = "allBookings"
	keyAllPrescription = "allPrescriptions"

	callerPrefix = "caller/"

	defaultLoadTimeout = 30 * time.Second
)

// credentialSpace namespaces caller fingerprints so raw credentials never become cache keys.
var credentialSpace = uuid.MustParse("5b0f4b8e-3c1d-4f43-9a55-6f1a3f0f2c11")

// Cache decorates a port.Backend. Catalog reads are shared by all callers,
// everything that depends on the caller is cached per caller credential.
// Methods that are not overridden pass straight through to the backend.
type Cache struct {
	port.Backend

	entries     *expirable.LRU[string, any]
	flight      singleflight.Group
	loadTimeout time.Duration

	log     *zap.Logger
	metrics *metrics.Metrics
}

var _ port.Backend = (*Cache)(nil)

type Option func(*Cache)

// WithLoadTimeout bounds a shared backend load. A load outlives the caller
// that started it, so it needs its own deadline.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.loadTimeout = d
		}
	}
}

func New(next port.Backend, size int, ttl time.Duration, log *zap.Logger, m *metrics.Metrics, opts ...Option) *Cache {
	if log == nil {
		log = zap.NewNop()
	}

	c := &Cache{
		Backend:     next,
		entries:     expirable.NewLRU[string, any](size, nil, ttl),
		loadTimeout: defaultLoadTimeout,
		log:         log.Named("query"),
		metrics:     m,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

type lookup[T any] struct {
	value T
	found bool
}

func cached[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	v, _, err := cachedOne(ctx, c, key, func(ctx context.Context) (T, bool, error) {
		value, err := load(ctx)
		return value, true, err
	})
	return v, err
}

func cachedOne[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, bool, error)) (T, bool, error) {
	if v, ok := c.entries.Get(key); ok {
		if entry, ok := v.(lookup[T]); ok {
			c.metrics.CacheLookup(true)
			return entry.value, entry.found, nil
		}
	}
	c.metrics.CacheLookup(false)

	// The load is shared by every caller waiting on key, so it must not be
	// cancelled by whichever caller happened to start it.
	ch := c.flight.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()

		value, found, err := load(loadCtx)
		if err != nil {
			return nil, err
		}

		entry := lookup[T]{value: value, found: found}
		c.entries.Add(key, entry)

		return entry, nil
	})

	var zero T

	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, false, res.Err
		}

		entry := res.Val.(lookup[T])
		return entry.value, entry.found, nil
	}
}

func publicKey(parts ...string) string {
	return strings.Join(parts, "/")
}

func callerKey(ctx context.Context, parts ...string) string {
	token := backend.CredentialFrom(ctx)
	fingerprint := "anonymous"
	if token != "" {
		fingerprint = uuid.NewSHA1(credentialSpace, []byte(token)).String()
	}

	return callerPrefix + fingerprint + "/" + strings.Join(parts, "/")
}

// invalidate drops every entry whose key starts with prefix.
func (c *Cache) invalidate(prefix string) {
	for _, key := range c.entries.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.entries.Remove(key)
		}
	}
}

// invalidateAllCallers drops name for every caller.
func (c *Cache) invalidateAllCallers(name string) {
	for _, key := range c.entries.Keys() {
		if strings.HasPrefix(key, callerPrefix) && strings.HasSuffix(key, "/"+name) {
			c.entries.Remove(key)
		}
	}
}

func (c *Cache) Len() int {
	return c.entries.Len()
}

func searchKey(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "unkeyed"
	}
	return string(b)
}

// catalog

func (c *Cache) SearchProducts(ctx context.Context, search domain.ProductSearch) ([]domain.Product, error) {
	return cached(ctx, c, publicKey(keyProducts, "search", searchKey(search)), func(ctx context.Context) ([]domain.Product, error) {
		return c.Backend.SearchProducts(ctx, search)
	})
}

func (c *Cache) GetProduct(ctx context.Context, productID string) (domain.Product, bool, error) {
	return cachedOne(ctx, c, publicKey(keyProduct, productID), func(ctx context.Context) (domain.Product, bool, error) {
		return c.Backend.GetProduct(ctx, productID)
	})
}

func (c *Cache) GetProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return cached(ctx, c, publicKey(keyProducts, "category", category), func(ctx context.Context) ([]domain.Product, error) {
		return c.Backend.GetProductsByCategory(ctx, category)
	})
}

func (c *Cache) GetCategories(ctx context.Context) ([]string, error) {
	return cached(ctx, c, publicKey(keyCategories), c.Backend.GetCategories)
}

func (c *Cache) GetLabTests(ctx context.Context) ([]domain.LabTest, error) {
	return cached(ctx, c, publicKey(keyLabTest+"s"), c.Backend.GetLabTests)
}

func (c *Cache) GetLabTest(ctx context.Context, labTestID string) (domain.LabTest, bool, error) {
	return cachedOne(ctx, c, publicKey(keyLabTest, labTestID), func(ctx context.Context) (domain.LabTest, bool, error) {
		return c.Backend.GetLabTest(ctx, labTestID)
	})
}

func (c *Cache) GetHealthPackages(ctx context.Context) ([]domain.HealthPackage, error) {
	return cached(ctx, c, publicKey(keyHealthPackage+"s"), c.Backend.GetHealthPackages)
}

func (c *Cache) GetPopularHealthPackages(ctx context.Context) ([]domain.HealthPackage, error) {
	return cached(ctx, c, publicKey(keyHealthPackage+"s", "popular"), c.Backend.GetPopularHealthPackages)
}

func (c *Cache) GetHealthPackage(ctx context.Context, packageID string) (domain.HealthPackage, bool, error) {
	return cachedOne(ctx, c, publicKey(keyHealthPackage, packageID), func(ctx context.Context) (domain.HealthPackage, bool, error) {
		return c.Backend.GetHealthPackage(ctx, packageID)
	})
}

func (c *Cache) SearchHealthPackages(ctx context.Context, term string, priceRange *domain.PriceRange) ([]domain.HealthPackage, error) {
	key := publicKey(keyHealthPackage+"s", "search", searchKey(struct {
		Term  string
		Range *domain.PriceRange
	}{term, priceRange}))

	return cached(ctx, c, key, func(ctx context.Context) ([]domain.HealthPackage, error) {
		return c.Backend.SearchHealthPackages(ctx, term, priceRange)
	})
}

func (c *Cache) GetArticles(ctx context.Context) ([]domain.Article, error) {
	return cached(ctx, c, publicKey(keyArticle+"s"), c.Backend.GetArticles)
}

func (c *Cache) GetArticle(ctx context.Context, articleID string) (domain.Article, bool, error) {
	return cachedOne(ctx, c, publicKey(keyArticle, articleID), func(ctx context.Context) (domain.Article, bool, error) {
		return c.Backend.GetArticle(ctx, articleID)
	})
}

// caller scoped

func (c *Cache) GetCallerProfile(ctx context.Context) (domain.UserProfile, bool, error) {
	return cachedOne(ctx, c, callerKey(ctx, keyProfile), c.Backend.GetCallerProfile)
}

func (c *Cache) SaveCallerProfile(ctx context.Context, profile domain.UserProfile) error {
	if err := c.Backend.SaveCallerProfile(ctx, profile); err != nil {
		return err
	}

	c.entries.Remove(callerKey(ctx, keyProfile))
	return nil
}

func (c *Cache) GetCallerRole(ctx context.Context) (domain.UserRole, error) {
	return cached(ctx, c, callerKey(ctx, keyRole), c.Backend.GetCallerRole)
}

func (c *Cache) IsCallerAdmin(ctx context.Context) (bool, error) {
	return cached(ctx, c, callerKey(ctx, keyIsAdmin), c.Backend.IsCallerAdmin)
}

func (c *Cache) GetMyOrders(ctx context.Context) ([]domain.Order, error) {
	return cached(ctx, c, callerKey(ctx, keyMyOrders), c.Backend.GetMyOrders)
}

func (c *Cache) CreateOrder(ctx context.Context, req domain.OrderRequest) (string, error) {
	orderID, err := c.Backend.CreateOrder(ctx, req)
	if err != nil {
		return "", err
	}

	c.entries.Remove(callerKey(ctx, keyMyOrders))
	c.invalidateAllCallers(keyAllOrders)

	return orderID, nil
}

func (c *Cache) GetMyLabTestBookings(ctx context.Context) ([]domain.LabTestBooking, error) {
	return cached(ctx, c, callerKey(ctx, keyMyBookings), c.Backend.GetMyLabTestBookings)
}

func (c *Cache) BookLabTest(ctx context.Context, labTestID string, appointmentTime time.Time) (string, error) {
	bookingID, err := c.Backend.BookLabTest(ctx, labTestID, appointmentTime)
	if err != nil {
		return "", err
	}

	c.entries.Remove(callerKey(ctx, keyMyBookings))
	c.invalidateAllCallers(keyAllBookings)

	return bookingID, nil
}

func (c *Cache) GetMyPrescriptions(ctx context.Context) ([]domain.Prescription, error) {
	return cached(ctx, c, callerKey(ctx, keyMyPrescriptions), c.Backend.GetMyPrescriptions)
}

func (c *Cache) UploadPrescription(ctx context.Context, orderID string, image domain.Image) (string, error) {
	prescriptionID, err := c.Backend.UploadPrescription(ctx, orderID, image)
	if err != nil {
		return "", err
	}

	c.entries.Remove(callerKey(ctx, keyMyPrescriptions))
	c.invalidateAllCallers(keyAllPrescription)

	return prescriptionID, nil
}

// admin

func (c *Cache) GetAllOrders(ctx context.Context) ([]domain.Order, error) {
	return cached(ctx, c, callerKey(ctx, keyAllOrders), c.Backend.GetAllOrders)
}

func (c *Cache) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	if err := c.Backend.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return err
	}

	c.invalidateAllCallers(keyAllOrders)
	c.invalidateAllCallers(keyMyOrders)

	return nil
}

func (c *Cache) GetAllBookings(ctx context.Context) ([]domain.LabTestBooking, error) {
	return cached(ctx, c, callerKey(ctx, keyAllBookings), c.Backend.GetAllBookings)
}

func (c *Cache) GetAllPrescriptions(ctx context.Context) ([]domain.Prescription, error) {
	return cached(ctx, c, callerKey(ctx, keyAllPrescription), c.Backend.GetAllPrescriptions)
}

func (c *Cache) UpdatePrescriptionStatus(ctx context.Context, prescriptionID string, status domain.PrescriptionStatus) error {
	if err := c.Backend.UpdatePrescriptionStatus(ctx, prescriptionID, status); err != nil {
		return err
	}

	c.invalidateAllCallers(keyAllPrescription)
	c.invalidateAllCallers(keyMyPrescriptions)

	return nil
}

func (c *Cache) AddLabTest(ctx context.Context, labTest domain.LabTest) (string, error) {
	labTestID, err := c.Backend.AddLabTest(ctx, labTest)
	if err != nil {
		return "", err
	}

	c.invalidate(keyLabTest)
	return labTestID, nil
}

func (c *Cache) UpdateLabTest(ctx context.Context, labTestID string, labTest domain.LabTest) error {
	if err := c.Backend.UpdateLabTest(ctx, labTestID, labTest); err != nil {
		return err
	}

	c.invalidate(keyLabTest)
	return nil
}

func (c *Cache) DeleteLabTest(ctx context.Context, labTestID string) error {
	if err := c.Backend.DeleteLabTest(ctx, labTestID); err != nil {
		return err
	}

	c.invalidate(keyLabTest)
	return nil
}

func (c *Cache) AddHealthPackage(ctx context.Context, pkg domain.HealthPackage) (string, error) {
	packageID, err := c.Backend.AddHealthPackage(ctx, pkg)
	if err != nil {
		return "", err
	}

	c.invalidate(keyHealthPackage)
	return packageID, nil
}

func (c *Cache) UpdateHealthPackage(ctx context.Context, packageID string, pkg domain.HealthPackage) error {
	if err := c.Backend.UpdateHealthPackage(ctx, packageID, pkg); err != nil {
		return err
	}

	c.invalidate(keyHealthPackage)
	return nil
}

func (c *Cache) DeleteHealthPackage(ctx context.Context, packageID string) error {
	if err := c.Backend.DeleteHealthPackage(ctx, packageID); err != nil {
		return err
	}

	c.invalidate(keyHealthPackage)
	return nil
}

func (c *Cache) SeedData(ctx context.Context) error {
	if err := c.Backend.SeedData(ctx); err != nil {
		return err
	}

	c.entries.Purge()
	c.log.Info("catalog seeded, query cache purged")

	return nil
}
