// Package booking schedules lab test sample collection.
package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
	"github.com/nikolayk812/pharmacy-storefront/internal/port"
	"go.uber.org/zap"
)

var (
	ErrInvalidSlot    = errors.New("unknown time slot")
	ErrDateTooEarly   = errors.New("appointment date must be tomorrow or later")
	ErrUnknownLabTest = errors.New("unknown lab test")
)

// Slot is a collection window starting at Hour o'clock local time.
type Slot struct {
	Hour  int    `json:"hour"`
	Label string `json:"label"`
	Time  string `json:"time"`
}

var slots = []Slot{
	{Hour: 7, Label: "Morning", Time: "7:00 AM - 9:00 AM"},
	{Hour: 9, Label: "Mid Morning", Time: "9:00 AM - 11:00 AM"},
	{Hour: 12, Label: "Afternoon", Time: "12:00 PM - 2:00 PM"},
	{Hour: 16, Label: "Evening", Time: "4:00 PM - 6:00 PM"},
}

func Slots() []Slot {
	return slices.Clone(slots)
}

type Result struct {
	BookingID       string
	AppointmentTime time.Time
}

type Service struct {
	catalog  port.CatalogQuerier
	bookings port.BookingService
	location *time.Location
	now      func() time.Time

	log *zap.Logger
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(catalog port.CatalogQuerier, bookings port.BookingService, location *time.Location, log *zap.Logger, opts ...Option) (*Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog is nil")
	}
	if bookings == nil {
		return nil, fmt.Errorf("bookings is nil")
	}
	if location == nil {
		location = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Service{
		catalog:  catalog,
		bookings: bookings,
		location: location,
		now:      time.Now,
		log:      log.Named("booking"),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// AppointmentTime places slotHour on the calendar day of date in the service's
// location. The day must come after today there.
func (s *Service) AppointmentTime(date time.Time, slotHour int) (time.Time, error) {
	if !slices.ContainsFunc(slots, func(slot Slot) bool { return slot.Hour == slotHour }) {
		return time.Time{}, fmt.Errorf("%w: %d", ErrInvalidSlot, slotHour)
	}

	year, month, day := date.Date()
	appointment := time.Date(year, month, day, slotHour, 0, 0, 0, s.location)

	ny, nm, nd := s.now().In(s.location).Date()
	tomorrow := time.Date(ny, nm, nd+1, 0, 0, 0, 0, s.location)

	if appointment.Before(tomorrow) {
		return time.Time{}, ErrDateTooEarly
	}

	return appointment, nil
}

func (s *Service) Book(ctx context.Context, labTestID string, date time.Time, slotHour int) (Result, error) {
	appointment, err := s.AppointmentTime(date, slotHour)
	if err != nil {
		return Result{}, err
	}

	_, found, err := s.catalog.GetLabTest(ctx, labTestID)
	if err != nil {
		return Result{}, fmt.Errorf("catalog.GetLabTest: %w", err)
	}
	if !found {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownLabTest, labTestID)
	}

	bookingID, err := s.bookings.BookLabTest(ctx, labTestID, appointment)
	if err != nil {
		return Result{}, fmt.Errorf("bookings.BookLabTest: %w", err)
	}

	s.log.Info("lab test booked",
		zap.String("booking_id", bookingID),
		zap.String("lab_test_id", labTestID),
		zap.Time("appointment_time", appointment))

	return Result{BookingID: bookingID, AppointmentTime: appointment}, nil
}

func (s *Service) MyBookings(ctx context.Context) ([]domain.LabTestBooking, error) {
	bookings, err := s.bookings.GetMyLabTestBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("bookings.GetMyLabTestBookings: %w", err)
	}
	return bookings, nil
}
