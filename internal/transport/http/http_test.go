package httptransport_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nikolayk812/pharmacy-storefront/internal/admin"
	"github.com/nikolayk812/pharmacy-storefront/internal/backend"
	"github.com/nikolayk812/pharmacy-storefront/internal/backend/fake"
	"github.com/nikolayk812/pharmacy-storefront/internal/booking"
	"github.com/nikolayk812/pharmacy-storefront/internal/checkout"
	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
	"github.com/nikolayk812/pharmacy-storefront/internal/metrics"
	"github.com/nikolayk812/pharmacy-storefront/internal/prescription"
	"github.com/nikolayk812/pharmacy-storefront/internal/session"
	httptransport "github.com/nikolayk812/pharmacy-storefront/internal/transport/http"
	"github.com/nikolayk812/pharmacy-storefront/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/text/currency"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	pdfData   = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	today     = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
)

type httpSuite struct {
	suite.Suite

	backend *fake.Backend
	server  *httptest.Server
	client  *http.Client
}

func TestHTTPSuite(t *testing.T) {
	suite.Run(t, new(httpSuite))
}

// before each test
func (suite *httpSuite) SetupTest() {
	t := suite.T()

	suite.backend = fake.New()
	suite.backend.GrantAdmin("admin-token")

	discounted := int64(80)
	suite.backend.PutProduct(domain.Product{
		ID:                   "p1",
		Name:                 "Amoxicillin 250mg",
		Category:             "antibiotics",
		Price:                100,
		DiscountedPrice:      &discounted,
		RequiresPrescription: true,
		StockCount:           5,
		Ratings:              []int64{4, 5},
	})
	suite.backend.PutLabTest(domain.LabTest{ID: "t1", Name: "Thyroid profile", MarketPrice: 500, DiscountedPrice: 400})
	suite.backend.PutHealthPackage(domain.HealthPackage{ID: "h1", Name: "Full body", MarketPrice: 3000, DiscountedPrice: 1999, IsPopular: true})

	sessions := session.New(100, time.Hour, nil)
	v := validate.New()

	checkoutSvc, err := checkout.NewService(suite.backend, sessions, v, "India", nil, nil)
	require.NoError(t, err)
	bookingSvc, err := booking.NewService(suite.backend, suite.backend, time.UTC, nil, booking.WithClock(func() time.Time { return today }))
	require.NoError(t, err)
	prescriptionSvc, err := prescription.NewService(suite.backend, 1<<20, nil)
	require.NoError(t, err)
	adminSvc, err := admin.NewService(suite.backend, v, 1<<20, nil)
	require.NoError(t, err)

	transport, err := httptransport.NewHTTPTransport(httptransport.Config{
		CookieName: "sf_session",
		SessionTTL: time.Hour,
		Currency:   currency.INR,
	}, httptransport.Deps{
		Catalog:       suite.backend,
		Account:       suite.backend,
		Sessions:      sessions,
		Checkout:      checkoutSvc,
		Booking:       bookingSvc,
		Prescriptions: prescriptionSvc,
		Admin:         adminSvc,
		Validator:     v,
		Metrics:       metrics.New(),
	}, nil)
	require.NoError(t, err)

	suite.server = httptest.NewServer(transport.Handler())

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	suite.client = &http.Client{Jar: jar}
}

// after each test
func (suite *httpSuite) TearDownTest() {
	suite.server.Close()
}

type cartResponse struct {
	Items []struct {
		ID          string `json:"id"`
		Kind        string `json:"kind"`
		SourceID    string `json:"sourceId"`
		UnitPrice   int64  `json:"unitPrice"`
		MarketPrice int64  `json:"marketPrice"`
		Quantity    int    `json:"quantity"`
	} `json:"items"`
	ItemCount            int    `json:"itemCount"`
	Subtotal             int64  `json:"subtotal"`
	TotalDiscount        int64  `json:"totalDiscount"`
	GrandTotal           int64  `json:"grandTotal"`
	GrandTotalDisplay    string `json:"grandTotalDisplay"`
	HasPrescriptionItems bool   `json:"hasPrescriptionItems"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func (suite *httpSuite) TestCartFlow() {
	t := suite.T()

	var cart cartResponse
	suite.call(http.MethodPost, "/api/cart/products/p1", nil, "", http.StatusOK, &cart)
	suite.call(http.MethodPost, "/api/cart/products/p1", map[string]int{"quantity": 2}, "", http.StatusOK, &cart)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, "product-p1", cart.Items[0].ID)
	assert.Equal(t, "p1", cart.Items[0].SourceID)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, int64(80), cart.Items[0].UnitPrice)
	assert.Equal(t, int64(100), cart.Items[0].MarketPrice)
	assert.Equal(t, int64(300), cart.Subtotal)
	assert.Equal(t, int64(60), cart.TotalDiscount)
	assert.Equal(t, int64(240), cart.GrandTotal)
	assert.Contains(t, cart.GrandTotalDisplay, "240")
	assert.True(t, cart.HasPrescriptionItems)

	suite.call(http.MethodPost, "/api/cart/lab-tests/t1", nil, "", http.StatusOK, &cart)
	suite.call(http.MethodPost, "/api/cart/health-packages/h1", nil, "", http.StatusOK, &cart)
	require.Len(t, cart.Items, 3)
	assert.Equal(t, 5, cart.ItemCount)

	suite.call(http.MethodPut, "/api/cart/items/product-p1", map[string]int{"quantity": 0}, "", http.StatusOK, &cart)
	require.Len(t, cart.Items, 2)
	assert.False(t, cart.HasPrescriptionItems)
	assert.Equal(t, "labTest-t1", cart.Items[0].ID)

	suite.call(http.MethodDelete, "/api/cart/items/labTest-t1", nil, "", http.StatusOK, &cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(1999), cart.GrandTotal)

	suite.call(http.MethodDelete, "/api/cart", nil, "", http.StatusOK, &cart)
	assert.Empty(t, cart.Items)

	suite.call(http.MethodGet, "/api/cart", nil, "", http.StatusOK, &cart)
	assert.Empty(t, cart.Items)
}

func (suite *httpSuite) TestCartsAreSeparatePerSession() {
	t := suite.T()

	suite.call(http.MethodPost, "/api/cart/products/p1", nil, "", http.StatusOK, nil)

	// a client without the cookie gets a fresh cart
	resp, err := http.Get(suite.server.URL + "/api/cart")
	require.NoError(t, err)
	defer resp.Body.Close()

	var cart cartResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cart))
	assert.Empty(t, cart.Items)
}

func (suite *httpSuite) TestAddUnknownItem() {
	var errResp errorResponse
	suite.call(http.MethodPost, "/api/cart/products/missing", nil, "", http.StatusNotFound, &errResp)
	suite.call(http.MethodPost, "/api/cart/lab-tests/t1", map[string]int{"quantity": -1}, "", http.StatusBadRequest, &errResp)

	assert.Equal(suite.T(), "must be >= 1", errResp.Fields["quantity"])
}

func (suite *httpSuite) TestCheckout() {
	t := suite.T()

	var errResp errorResponse
	suite.call(http.MethodPost, "/api/checkout", validAddress(), "customer", http.StatusConflict, &errResp)
	assert.Equal(t, checkout.ErrEmptyCart.Error(), errResp.Error)

	suite.call(http.MethodPost, "/api/cart/products/p1", map[string]int{"quantity": 2}, "", http.StatusOK, nil)
	suite.call(http.MethodPost, "/api/cart/lab-tests/t1", nil, "", http.StatusOK, nil)

	suite.call(http.MethodPost, "/api/checkout", map[string]string{"street": "1 Main"}, "customer", http.StatusBadRequest, &errResp)
	assert.Equal(t, "is required", errResp.Fields["city"])

	var result struct {
		OrderID                    string `json:"orderId"`
		TotalAmount                int64  `json:"totalAmount"`
		PrescriptionUploadRequired bool   `json:"prescriptionUploadRequired"`
	}
	suite.call(http.MethodPost, "/api/checkout", validAddress(), "customer", http.StatusCreated, &result)
	assert.NotEmpty(t, result.OrderID)
	assert.Equal(t, int64(560), result.TotalAmount)
	assert.True(t, result.PrescriptionUploadRequired)

	requests := suite.backend.OrderRequests()
	require.Len(t, requests, 1)
	require.Len(t, requests[0].Items, 1)
	assert.Equal(t, "p1", requests[0].Items[0].Product.ID)
	assert.Equal(t, "India", requests[0].DeliveryAddress.Country)

	var cart cartResponse
	suite.call(http.MethodGet, "/api/cart", nil, "", http.StatusOK, &cart)
	assert.Empty(t, cart.Items)

	var orders []struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Progress int    `json:"progress"`
	}
	suite.call(http.MethodGet, "/api/orders", nil, "customer", http.StatusOK, &orders)
	require.Len(t, orders, 1)
	assert.Equal(t, result.OrderID, orders[0].ID)
	assert.Equal(t, "placed", orders[0].Status)
	assert.Equal(t, 0, orders[0].Progress)
}

func (suite *httpSuite) TestRemoteRejectionKeepsCart() {
	t := suite.T()
	suite.call(http.MethodPost, "/api/cart/products/p1", nil, "", http.StatusOK, nil)

	suite.backend.Fail("CreateOrder", &backend.APIError{Operation: "createOrder", Status: http.StatusInternalServerError, Message: "canister trapped"})

	var errResp errorResponse
	suite.call(http.MethodPost, "/api/checkout", validAddress(), "customer", http.StatusBadGateway, &errResp)
	assert.Equal(t, "canister trapped", errResp.Error)

	var cart cartResponse
	suite.call(http.MethodGet, "/api/cart", nil, "", http.StatusOK, &cart)
	assert.Len(t, cart.Items, 1)
}

func (suite *httpSuite) TestBooking() {
	t := suite.T()

	var booked struct {
		ID              string    `json:"id"`
		AppointmentTime time.Time `json:"appointmentTime"`
	}
	body := map[string]any{"labTestId": "t1", "date": "2026-05-06", "slot": 9}
	suite.call(http.MethodPost, "/api/bookings", body, "customer", http.StatusCreated, &booked)
	assert.NotEmpty(t, booked.ID)
	assert.True(t, booked.AppointmentTime.Equal(time.Date(2026, 5, 6, 9, 0, 0, 0, time.UTC)))

	var errResp errorResponse
	suite.call(http.MethodPost, "/api/bookings", map[string]any{"labTestId": "t1", "date": "2026-05-04", "slot": 9}, "customer", http.StatusBadRequest, &errResp)
	assert.Equal(t, booking.ErrDateTooEarly.Error(), errResp.Error)

	suite.call(http.MethodPost, "/api/bookings", map[string]any{"labTestId": "t1", "date": "2026-05-06", "slot": 8}, "customer", http.StatusBadRequest, &errResp)
	suite.call(http.MethodPost, "/api/bookings", map[string]any{"labTestId": "nope", "date": "2026-05-06", "slot": 7}, "customer", http.StatusNotFound, &errResp)
	suite.call(http.MethodPost, "/api/bookings", map[string]any{"labTestId": "t1", "date": "06/05/2026", "slot": 7}, "customer", http.StatusBadRequest, &errResp)
	assert.Contains(t, errResp.Fields, "date")

	var mine []map[string]any
	suite.call(http.MethodGet, "/api/bookings", nil, "customer", http.StatusOK, &mine)
	assert.Len(t, mine, 1)

	var slots []map[string]any
	suite.call(http.MethodGet, "/api/booking-slots", nil, "", http.StatusOK, &slots)
	assert.Len(t, slots, 4)
}

func (suite *httpSuite) TestPrescriptionUpload() {
	t := suite.T()

	var created struct {
		ID string `json:"id"`
	}
	suite.upload("/api/orders/o1/prescription", pdfData, "customer", http.StatusCreated, &created)
	assert.NotEmpty(t, created.ID)

	var errResp errorResponse
	suite.upload("/api/orders/o1/prescription", []byte("just text"), "customer", http.StatusBadRequest, &errResp)

	var mine []struct {
		OrderID string `json:"orderId"`
		Status  string `json:"status"`
	}
	suite.call(http.MethodGet, "/api/prescriptions", nil, "customer", http.StatusOK, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, "o1", mine[0].OrderID)
	assert.Equal(t, "pending", mine[0].Status)
}

func (suite *httpSuite) TestProfile() {
	t := suite.T()

	var profile struct {
		Name string `json:"name"`
		Role string `json:"role"`
	}
	suite.call(http.MethodGet, "/api/profile", nil, "", http.StatusOK, &profile)
	assert.Equal(t, "guest", profile.Role)

	var errResp errorResponse
	suite.call(http.MethodPut, "/api/profile", map[string]any{"name": "Asha", "email": "not-an-email"}, "customer", http.StatusBadRequest, &errResp)
	assert.Equal(t, "must be a valid email", errResp.Fields["email"])

	suite.call(http.MethodPut, "/api/profile", map[string]any{"name": "Asha", "email": "asha@example.com"}, "customer", http.StatusNoContent, nil)

	suite.call(http.MethodGet, "/api/profile", nil, "customer", http.StatusOK, &profile)
	assert.Equal(t, "Asha", profile.Name)
	assert.Equal(t, "user", profile.Role)
}

func (suite *httpSuite) TestAdminGate() {
	t := suite.T()
	form := map[string]any{
		"name":            "Vitamin D",
		"description":     "25-OH vitamin D",
		"sampleType":      "Blood",
		"turnaroundTime":  "24 hours",
		"marketPrice":     1200,
		"discountedPrice": 899,
	}

	var errResp errorResponse
	suite.call(http.MethodPost, "/api/admin/lab-tests", form, "customer", http.StatusForbidden, &errResp)
	suite.call(http.MethodPost, "/api/admin/lab-tests", form, "", http.StatusForbidden, &errResp)

	var created struct {
		ID string `json:"id"`
	}
	suite.call(http.MethodPost, "/api/admin/lab-tests", form, "admin-token", http.StatusCreated, &created)
	assert.NotEmpty(t, created.ID)

	form["discountedPrice"] = 2000
	suite.call(http.MethodPost, "/api/admin/lab-tests", form, "admin-token", http.StatusBadRequest, &errResp)
	assert.Equal(t, "must be <= MarketPrice", errResp.Fields["discountedPrice"])

	suite.call(http.MethodDelete, "/api/admin/lab-tests/"+created.ID, nil, "admin-token", http.StatusNoContent, nil)

	var image struct {
		URL string `json:"url"`
	}
	suite.upload("/api/admin/images", pngHeader, "admin-token", http.StatusCreated, &image)
	assert.NotEmpty(t, image.URL)
	suite.upload("/api/admin/images", pdfData, "admin-token", http.StatusBadRequest, &errResp)

	suite.call(http.MethodPut, "/api/admin/orders/o1/status", map[string]string{"status": "lost"}, "admin-token", http.StatusBadRequest, &errResp)
	suite.call(http.MethodPut, "/api/admin/orders/o1/status", map[string]string{"status": "shipped"}, "admin-token", http.StatusNotFound, &errResp)
	suite.call(http.MethodPost, "/api/admin/seed", nil, "admin-token", http.StatusNoContent, nil)
}

func (suite *httpSuite) TestCatalog() {
	t := suite.T()

	var products []struct {
		ID           string  `json:"id"`
		PriceDisplay string  `json:"priceDisplay"`
		Rating       float64 `json:"rating"`
		InStock      bool    `json:"inStock"`
	}
	suite.call(http.MethodGet, "/api/products?term=amox&requiresPrescription=true", nil, "", http.StatusOK, &products)
	require.Len(t, products, 1)
	assert.InDelta(t, 4.5, products[0].Rating, 0.001)
	assert.True(t, products[0].InStock)

	var errResp errorResponse
	suite.call(http.MethodGet, "/api/products?sortBy=cheapest", nil, "", http.StatusBadRequest, &errResp)
	suite.call(http.MethodGet, "/api/products?minPrice=abc", nil, "", http.StatusBadRequest, &errResp)
	suite.call(http.MethodGet, "/api/products/missing", nil, "", http.StatusNotFound, &errResp)

	var packages []struct {
		ID              string `json:"id"`
		DiscountPercent int64  `json:"discountPercent"`
		IsPopular       bool   `json:"isPopular"`
	}
	suite.call(http.MethodGet, "/api/health-packages/popular", nil, "", http.StatusOK, &packages)
	require.Len(t, packages, 1)
	assert.Equal(t, int64(33), packages[0].DiscountPercent)

	suite.call(http.MethodGet, "/api/health-packages?maxPrice=1000", nil, "", http.StatusOK, &packages)
	assert.Empty(t, packages)

	suite.backend.Fail("GetLabTests", &backend.APIError{Operation: "getLabTests", Status: http.StatusServiceUnavailable, Message: "replica unavailable"})
	suite.call(http.MethodGet, "/api/lab-tests", nil, "", http.StatusBadGateway, &errResp)
	assert.Equal(t, "replica unavailable", errResp.Error)
}

func (suite *httpSuite) TestOperationalEndpoints() {
	t := suite.T()

	resp, err := http.Get(suite.server.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(suite.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
}

// call sends body as JSON, asserts the status and decodes the answer into out.
func (suite *httpSuite) call(method, path string, body any, token string, wantStatus int, out any) {
	t := suite.T()
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(t.Context(), method, suite.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	suite.send(req, token, wantStatus, out)
}

func (suite *httpSuite) upload(path string, data []byte, token string, wantStatus int, out any) {
	t := suite.T()
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "upload.bin")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, suite.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	suite.send(req, token, wantStatus, out)
}

func (suite *httpSuite) send(req *http.Request, token string, wantStatus int, out any) {
	t := suite.T()
	t.Helper()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := suite.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode, "%s %s: %s", req.Method, req.URL.Path, payload)

	if out != nil && len(payload) > 0 {
		require.NoError(t, json.Unmarshal(payload, out))
	}
}

func validAddress() map[string]string {
	return map[string]string{
		"street": "221B Residency Road",
		"city":   "Bengaluru",
		"state":  "Karnataka",
		"zip":    "560025",
	}
}
