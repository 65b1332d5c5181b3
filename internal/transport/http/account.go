package httptransport

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
	"github.com/nikolayk812/pharmacy-storefront/internal/media"
)

const (
	dateLayout         = "2006-01-02"
	multipartOverhead  = 1 << 20
	multipartFileField = "image"
)

type bookLabTestRequest struct {
	LabTestID string `json:"labTestId" validate:"notblank"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Slot      int    `json:"slot" validate:"required"`
}

type bookingResponse struct {
	ID              string    `json:"id"`
	AppointmentTime time.Time `json:"appointmentTime"`
}

type profileRequest struct {
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Addresses []addressView `json:"addresses"`
}

func (h *HTTPTransport) getMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.deps.Account.GetMyOrders(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, mapSlice(orders, h.views.order))
}

func (h *HTTPTransport) bookLabTest(w http.ResponseWriter, r *http.Request) {
	var req bookLabTestRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.deps.Validator.Struct(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	// validated above
	date, _ := time.Parse(dateLayout, req.Date)

	result, err := h.deps.Booking.Book(r.Context(), req.LabTestID, date, req.Slot)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, bookingResponse{
		ID:              result.BookingID,
		AppointmentTime: result.AppointmentTime,
	})
}

func (h *HTTPTransport) getMyBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.deps.Booking.MyBookings(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, mapSlice(bookings, bookingToView))
}

func (h *HTTPTransport) uploadPrescription(w http.ResponseWriter, r *http.Request) {
	data, err := readUpload(w, r, h.deps.Prescriptions.MaxBytes())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	prescriptionID, err := h.deps.Prescriptions.Upload(r.Context(), chi.URLParam(r, "id"), data)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, idView{ID: prescriptionID})
}

func (h *HTTPTransport) getMyPrescriptions(w http.ResponseWriter, r *http.Request) {
	prescriptions, err := h.deps.Prescriptions.Mine(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, mapSlice(prescriptions, prescriptionToView))
}

func (h *HTTPTransport) getProfile(w http.ResponseWriter, r *http.Request) {
	role, err := h.deps.Account.GetCallerRole(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	p, found, err := h.deps.Account.GetCallerProfile(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		p = domain.UserProfile{}
	}

	h.writeJSON(w, http.StatusOK, profileToView(p, role))
}

func (h *HTTPTransport) saveProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	p := domain.UserProfile{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Addresses: mapSlice(req.Addresses, func(a addressView) domain.Address {
			return a.toDomain()
		}),
	}
	if err := h.deps.Validator.Struct(p); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.deps.Account.SaveCallerProfile(r.Context(), p); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// readUpload returns the multipart "image" file. Files above maxBytes are
// reported as too large without being read in full.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, error) {
	limit := int64(-1)
	if maxBytes > 0 {
		limit = maxBytes + multipartOverhead
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	file, _, err := r.FormFile(multipartFileField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: request body over %d bytes", media.ErrTooLarge, limit)
		}
		return nil, fmt.Errorf("%w: multipart field %q: %v", errBadRequest, multipartFileField, err)
	}
	defer file.Close()

	reader := io.Reader(file)
	if maxBytes > 0 {
		// one byte past the limit is enough to tell the file is too large
		reader = io.LimitReader(file, maxBytes+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	return data, nil
}
