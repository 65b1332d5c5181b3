// Package checkout turns a session cart into a remote order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
	"github.com/nikolayk812/pharmacy-storefront/internal/metrics"
	"github.com/nikolayk812/pharmacy-storefront/internal/port"
	"github.com/nikolayk812/pharmacy-storefront/internal/session"
	"github.com/nikolayk812/pharmacy-storefront/internal/validate"
	"go.uber.org/zap"
)

var ErrEmptyCart = errors.New("cart is empty")

type Result struct {
	OrderID                    string
	TotalAmount                int64
	PrescriptionUploadRequired bool
}

type Service struct {
	orders         port.OrderService
	sessions       *session.Store
	validator      *validate.Validator
	defaultCountry string

	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewService(orders port.OrderService, sessions *session.Store, v *validate.Validator, defaultCountry string, log *zap.Logger, m *metrics.Metrics) (*Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("orders is nil")
	}
	if sessions == nil {
		return nil, fmt.Errorf("sessions is nil")
	}
	if v == nil {
		v = validate.New()
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		orders:         orders,
		sessions:       sessions,
		validator:      v,
		defaultCountry: defaultCountry,
		log:            log.Named("checkout"),
		metrics:        m,
	}, nil
}

// PlaceOrder submits the session's cart as one order. The session stays
// locked for the whole submission, so a second checkout of the same cart waits
// and then finds it empty. The cart is cleared only when the order is accepted.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string, address domain.Address) (Result, error) {
	if strings.TrimSpace(address.Country) == "" {
		address.Country = s.defaultCountry
	}

	if err := s.validator.Struct(address); err != nil {
		return Result{}, err
	}

	var (
		result Result
		err    error
	)

	s.sessions.With(sessionID, func(cart *domain.Cart) {
		if cart.IsEmpty() {
			err = ErrEmptyCart
			return
		}

		req := NewOrderRequest(cart, address)
		log := s.log.With(
			zap.Int("items", len(req.Items)),
			zap.Int64("total_amount", req.TotalAmount),
			zap.Bool("requires_prescription", req.RequiresPrescription),
		)

		if gap := req.UnitemizedAmount(); gap != 0 {
			log.Warn("order total includes lines the order does not itemize",
				zap.Int64("unitemized_amount", gap))
		}

		var orderID string
		orderID, err = s.orders.CreateOrder(ctx, req)
		s.metrics.OrderPlaced(err)
		if err != nil {
			err = fmt.Errorf("orders.CreateOrder: %w", err)
			log.Warn("order rejected", zap.Error(err))
			return
		}

		cart.Clear()
		log.Info("order placed", zap.String("order_id", orderID))

		result = Result{
			OrderID:                    orderID,
			TotalAmount:                req.TotalAmount,
			PrescriptionUploadRequired: req.RequiresPrescription,
		}
	})

	return result, err
}

// NewOrderRequest assembles the remote order from cart. Only product lines
// become order items; TotalAmount is the cart's grand total over every line.
func NewOrderRequest(cart *domain.Cart, address domain.Address) domain.OrderRequest {
	var items []domain.OrderItem
	for _, line := range cart.Items() {
		if line.Kind != domain.KindProduct || line.Product == nil {
			continue
		}

		items = append(items, domain.OrderItem{
			Product:  *line.Product,
			Quantity: line.Quantity,
		})
	}

	return domain.OrderRequest{
		Items:                items,
		TotalAmount:          cart.GrandTotal(),
		DeliveryAddress:      address,
		RequiresPrescription: cart.HasPrescriptionItems(),
	}
}
