package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/nikolayk812/pharmacy-storefront/internal/admin"
	"github.com/nikolayk812/pharmacy-storefront/internal/backend"
	"github.com/nikolayk812/pharmacy-storefront/internal/booking"
	"github.com/nikolayk812/pharmacy-storefront/internal/checkout"
	"github.com/nikolayk812/pharmacy-storefront/internal/media"
	"github.com/nikolayk812/pharmacy-storefront/internal/prescription"
	"github.com/nikolayk812/pharmacy-storefront/internal/validate"
	"go.uber.org/zap"
)

const maxJSONBody = 1 << 20

var errNotFound = errors.New("not found")

// statusClientClosedRequest is logged when the caller went away mid-request.
const statusClientClosedRequest = 499

func (h *HTTPTransport) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("json.Encode", zap.Error(err))
	}
}

func (h *HTTPTransport) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, view := errorResponse(err)

	log := h.log.With(zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	if status >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Debug("request rejected")
	}

	if status == statusClientClosedRequest {
		return
	}

	h.writeJSON(w, status, view)
}

func errorResponse(err error) (int, errorView) {
	var verr *validate.Error
	if errors.As(err, &verr) {
		return http.StatusBadRequest, errorView{Error: "validation failed", Fields: verr.Fields}
	}

	var apiErr *backend.APIError

	switch {
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest, errorView{Error: "request canceled"}
	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusConflict, errorView{Error: err.Error()}
	case errors.Is(err, errNotFound), errors.Is(err, booking.ErrUnknownLabTest):
		return http.StatusNotFound, errorView{Error: err.Error()}
	case errors.Is(err, media.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, errorView{Error: err.Error()}
	case errors.Is(err, booking.ErrInvalidSlot),
		errors.Is(err, booking.ErrDateTooEarly),
		errors.Is(err, media.ErrEmpty),
		errors.Is(err, media.ErrUnsupported),
		errors.Is(err, prescription.ErrMissingOrder),
		errors.Is(err, admin.ErrUnknownOrderStatus),
		errors.Is(err, admin.ErrUnknownPrescriptionStatus),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest, errorView{Error: err.Error()}
	case backend.IsForbidden(err):
		return http.StatusForbidden, errorView{Error: "forbidden"}
	case backend.IsNotFound(err):
		return http.StatusNotFound, errorView{Error: "not found"}
	case errors.As(err, &apiErr):
		return http.StatusBadGateway, errorView{Error: apiErr.Message}
	default:
		return http.StatusInternalServerError, errorView{Error: "internal error"}
	}
}

var errBadRequest = errors.New("bad request")

func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(v)
	if err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", errBadRequest, err)
	}
	return nil
}

// decodeOptionalJSON leaves v untouched when the body is empty.
func decodeOptionalJSON(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: malformed JSON body: %v", errBadRequest, err)
	}
	return nil
}
