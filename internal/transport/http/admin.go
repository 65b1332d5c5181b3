package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/pharmacy-storefront/internal/admin"
)

type statusRequest struct {
	Status string `json:"status" validate:"notblank"`
}

type imageResponse struct {
	URL string `json:"url"`
}

func (h *HTTPTransport) adminAddLabTest(w http.ResponseWriter, r *http.Request) {
	var form admin.LabTestForm
	if err := decodeJSON(r, &form); err != nil {
		h.writeError(w, r, err)
		return
	}

	labTestID, err := h.deps.Admin.AddLabTest(r.Context(), form)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, idView{ID: labTestID})
}

func (h *HTTPTransport) adminUpdateLabTest(w http.ResponseWriter, r *http.Request) {
	var form admin.LabTestForm
	if err := decodeJSON(r, &form); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.deps.Admin.UpdateLabTest(r.Context(), chi.URLParam(r, "id"), form); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPTransport) adminDeleteLabTest(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Admin.DeleteLabTest(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPTransport) adminAddHealthPackage(w http.ResponseWriter, r *http.Request) {
	var form admin.HealthPackageForm
	if err := decodeJSON(r, &form); err != nil {
		h.writeError(w, r, err)
		return
	}

	packageID, err := h.deps.Admin.AddHealthPackage(r.Context(), form)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, idView{ID: packageID})
}

func (h *HTTPTransport) adminUpdateHealthPackage(w http.ResponseWriter, r *http.Request) {
	var form admin.HealthPackageForm
	if err := decodeJSON(r, &form); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.deps.Admin.UpdateHealthPackage(r.Context(), chi.URLParam(r, "id"), form); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPTransport) adminDeleteHealthPackage(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Admin.DeleteHealthPackage(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPTransport) adminGetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.deps.Admin.Orders(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, mapSlice(orders, h.views.order))
}

func (h *HTTPTransport) adminUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.deps.Validator.Struct(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.deps.Admin.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPTransport) adminGetBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.deps.Admin.Bookings(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, mapSlice(bookings, bookingToView))
}

func (h *HTTPTransport) adminGetPrescriptions(w http.ResponseWriter, r *http.Request) {
	prescriptions, err := h.deps.Admin.Prescriptions(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, mapSlice(prescriptions, prescriptionToView))
}

func (h *HTTPTransport) adminUpdatePrescriptionStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.deps.Validator.Struct(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.deps.Admin.UpdatePrescriptionStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPTransport) adminUploadImage(w http.ResponseWriter, r *http.Request) {
	data, err := readUpload(w, r, h.deps.Admin.MaxImageBytes())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	url, err := h.deps.Admin.UploadImage(r.Context(), data)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, imageResponse{URL: url})
}

func (h *HTTPTransport) adminSeedData(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Admin.SeedData(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
