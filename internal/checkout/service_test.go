package checkout_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nikolayk812/pharmacy-storefront/internal/backend"
	"github.com/nikolayk812/pharmacy-storefront/internal/backend/fake"
	"github.com/nikolayk812/pharmacy-storefront/internal/checkout"
	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
	"github.com/nikolayk812/pharmacy-storefront/internal/metrics"
	"github.com/nikolayk812/pharmacy-storefront/internal/session"
	"github.com/nikolayk812/pharmacy-storefront/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type checkoutSuite struct {
	suite.Suite

	backend  *fake.Backend
	sessions *session.Store
	service  *checkout.Service
	logs     *observer.ObservedLogs
	ctx      context.Context
}

func TestCheckoutSuite(t *testing.T) {
	suite.Run(t, new(checkoutSuite))
}

// before each test
func (suite *checkoutSuite) SetupTest() {
	core, logs := observer.New(zap.InfoLevel)
	suite.logs = logs

	suite.backend = fake.New()
	suite.sessions = session.New(10, time.Minute, nil)

	var err error
	suite.service, err = checkout.NewService(suite.backend, suite.sessions, validate.New(), "India", zap.New(core), metrics.New())
	suite.Require().NoError(err)

	suite.ctx = backend.WithCredential(context.Background(), "customer")
}

func (suite *checkoutSuite) TestPlaceOrder() {
	paracetamol := pricedProduct("p1", 100, 80, true)
	thyroid := domain.LabTest{ID: "t1", Name: "Thyroid", MarketPrice: 500, DiscountedPrice: 400}

	tests := []struct {
		name        string
		fill        func(cart *domain.Cart)
		address     domain.Address
		wantError   error
		wantRequest domain.OrderRequest
		wantUpload  bool
	}{
		{
			name: "product only: ok",
			fill: func(cart *domain.Cart) {
				cart.AddProduct(paracetamol, 3)
			},
			address: validAddress(),
			wantRequest: domain.OrderRequest{
				Items:                []domain.OrderItem{{Product: paracetamol, Quantity: 3}},
				TotalAmount:          240,
				DeliveryAddress:      withCountry(validAddress(), "India"),
				RequiresPrescription: true,
			},
			wantUpload: true,
		},
		{
			name: "mixed cart itemizes products only: ok",
			fill: func(cart *domain.Cart) {
				cart.AddProduct(paracetamol, 1)
				cart.AddLabTest(thyroid, 1)
			},
			address: withCountry(validAddress(), "Nepal"),
			wantRequest: domain.OrderRequest{
				Items:                []domain.OrderItem{{Product: paracetamol, Quantity: 1}},
				TotalAmount:          480,
				DeliveryAddress:      withCountry(validAddress(), "Nepal"),
				RequiresPrescription: true,
			},
			wantUpload: true,
		},
		{
			name: "lab test only: ok",
			fill: func(cart *domain.Cart) {
				cart.AddLabTest(thyroid, 2)
			},
			address: validAddress(),
			wantRequest: domain.OrderRequest{
				TotalAmount:     800,
				DeliveryAddress: withCountry(validAddress(), "India"),
			},
		},
		{
			name:      "empty cart: error",
			fill:      func(*domain.Cart) {},
			address:   validAddress(),
			wantError: checkout.ErrEmptyCart,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			sessionID := suite.sessions.Start()
			suite.sessions.With(sessionID, tt.fill)
			before := len(suite.backend.OrderRequests())

			result, err := suite.service.PlaceOrder(suite.ctx, sessionID, tt.address)
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				assert.Len(t, suite.backend.OrderRequests(), before)
				return
			}
			require.NoError(t, err)

			assert.NotEmpty(t, result.OrderID)
			assert.Equal(t, tt.wantUpload, result.PrescriptionUploadRequired)
			assert.Equal(t, tt.wantRequest.TotalAmount, result.TotalAmount)

			requests := suite.backend.OrderRequests()
			require.Len(t, requests, before+1)
			if diff := cmp.Diff(tt.wantRequest, requests[before], cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("order request mismatch (-want +got):\n%s", diff)
			}

			items, _ := suite.sessions.Snapshot(sessionID)
			assert.Empty(t, items)
		})
	}
}

func (suite *checkoutSuite) TestInvalidAddressBlocksSubmit() {
	t := suite.T()
	sessionID := suite.sessions.Start()
	suite.sessions.With(sessionID, func(cart *domain.Cart) {
		cart.AddProduct(pricedProduct("p1", 100, 0, false), 1)
	})

	_, err := suite.service.PlaceOrder(suite.ctx, sessionID, domain.Address{Street: "  ", City: "Pune"})

	var verr *validate.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{
		"street": "is required",
		"state":  "is required",
		"zip":    "is required",
	}, verr.Fields)
	assert.Equal(t, 0, suite.backend.Calls("CreateOrder"))

	items, _ := suite.sessions.Snapshot(sessionID)
	assert.Len(t, items, 1)
}

func (suite *checkoutSuite) TestFailedSubmitKeepsCart() {
	t := suite.T()
	suite.backend.Fail("CreateOrder", errors.New("order service down"))

	sessionID := suite.sessions.Start()
	suite.sessions.With(sessionID, func(cart *domain.Cart) {
		cart.AddProduct(pricedProduct("p1", 100, 80, false), 2)
	})

	_, err := suite.service.PlaceOrder(suite.ctx, sessionID, validAddress())
	require.EqualError(t, err, "orders.CreateOrder: order service down")

	items, totals := suite.sessions.Snapshot(sessionID)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, int64(160), totals.GrandTotal)
	assert.Equal(t, 1, suite.backend.Calls("CreateOrder"))
}

func (suite *checkoutSuite) TestUnitemizedAmountIsLogged() {
	t := suite.T()
	sessionID := suite.sessions.Start()
	suite.sessions.With(sessionID, func(cart *domain.Cart) {
		cart.AddProduct(pricedProduct("p1", 100, 0, false), 1)
		cart.AddHealthPackage(domain.HealthPackage{ID: "h1", MarketPrice: 2000, DiscountedPrice: 1500}, 1)
	})

	_, err := suite.service.PlaceOrder(suite.ctx, sessionID, validAddress())
	require.NoError(t, err)

	warnings := suite.logs.FilterMessage("order total includes lines the order does not itemize").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, int64(1500), warnings[0].ContextMap()["unitemized_amount"])
}

func (suite *checkoutSuite) TestSecondCheckoutFindsEmptyCart() {
	t := suite.T()
	sessionID := suite.sessions.Start()
	suite.sessions.With(sessionID, func(cart *domain.Cart) {
		cart.AddProduct(pricedProduct("p1", 100, 0, false), 1)
	})

	_, err := suite.service.PlaceOrder(suite.ctx, sessionID, validAddress())
	require.NoError(t, err)

	_, err = suite.service.PlaceOrder(suite.ctx, sessionID, validAddress())
	require.ErrorIs(t, err, checkout.ErrEmptyCart)
	assert.Equal(t, 1, suite.backend.Calls("CreateOrder"))
}

func TestNewService(t *testing.T) {
	_, err := checkout.NewService(nil, session.New(1, time.Minute, nil), nil, "India", nil, nil)
	require.EqualError(t, err, "orders is nil")

	_, err = checkout.NewService(fake.New(), nil, nil, "India", nil, nil)
	require.EqualError(t, err, "sessions is nil")
}

func pricedProduct(id string, price, discounted int64, prescription bool) domain.Product {
	p := domain.Product{
		ID:                   id,
		Name:                 "Product " + id,
		Price:                price,
		RequiresPrescription: prescription,
	}
	if discounted > 0 {
		p.DiscountedPrice = &discounted
	}
	return p
}

func validAddress() domain.Address {
	return domain.Address{
		Street: "12 MG Road",
		City:   "Pune",
		State:  "Maharashtra",
		Zip:    "411001",
	}
}

func withCountry(a domain.Address, country string) domain.Address {
	a.Country = country
	return a
}
