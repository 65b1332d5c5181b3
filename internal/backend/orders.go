package backend

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
)

func (c *Client) CreateOrder(ctx context.Context, req domain.OrderRequest) (string, error) {
	return create(ctx, c, "CreateOrder", "/orders", createOrderDTO{
		Items:                mapSlice(req.Items, mapOrderItemFromDomain),
		TotalAmount:          req.TotalAmount,
		DeliveryAddress:      mapAddressFromDomain(req.DeliveryAddress),
		RequiresPrescription: req.RequiresPrescription,
	})
}

func (c *Client) GetMyOrders(ctx context.Context) ([]domain.Order, error) {
	return c.listOrders(ctx, "GetMyOrders", "/orders/mine")
}

func (c *Client) GetAllOrders(ctx context.Context) ([]domain.Order, error) {
	return c.listOrders(ctx, "GetAllOrders", "/orders")
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	return c.do(ctx, request{
		op:     "UpdateOrderStatus",
		method: http.MethodPut,
		path:   "/orders/" + url.PathEscape(orderID) + "/status",
		body:   statusDTO{Status: string(status)},
	}, nil)
}

func (c *Client) listOrders(ctx context.Context, op, path string) ([]domain.Order, error) {
	dtos, err := get[[]orderDTO](ctx, c, op, path, nil)
	if err != nil {
		return nil, err
	}

	return mapSlice(dtos, mapOrderToDomain), nil
}

func (c *Client) BookLabTest(ctx context.Context, labTestID string, appointmentTime time.Time) (string, error) {
	return create(ctx, c, "BookLabTest", "/bookings", bookLabTestDTO{
		LabTestID:       labTestID,
		AppointmentTime: toNanos(appointmentTime),
	})
}

func (c *Client) GetMyLabTestBookings(ctx context.Context) ([]domain.LabTestBooking, error) {
	return c.listBookings(ctx, "GetMyLabTestBookings", "/bookings/mine")
}

func (c *Client) GetAllBookings(ctx context.Context) ([]domain.LabTestBooking, error) {
	return c.listBookings(ctx, "GetAllBookings", "/bookings")
}

func (c *Client) listBookings(ctx context.Context, op, path string) ([]domain.LabTestBooking, error) {
	dtos, err := get[[]bookingDTO](ctx, c, op, path, nil)
	if err != nil {
		return nil, err
	}

	return mapSlice(dtos, mapBookingToDomain), nil
}
