package domain

import "time"

type LabTestBooking struct {
	ID              string
	UserID          string
	LabTestID       string
	AppointmentTime time.Time
	CreatedAt       time.Time
}

type PrescriptionStatus string

const (
	PrescriptionPending  PrescriptionStatus = "pending"
	PrescriptionApproved PrescriptionStatus = "approved"
	PrescriptionRejected PrescriptionStatus = "rejected"
)

func ParsePrescriptionStatus(s string) (PrescriptionStatus, bool) {
	switch status := PrescriptionStatus(s); status {
	case PrescriptionPending, PrescriptionApproved, PrescriptionRejected:
		return status, true
	default:
		return "", false
	}
}

type Prescription struct {
	ID         string
	UserID     string
	OrderID    string
	ImageURL   string
	Status     PrescriptionStatus
	UploadedAt time.Time
}

// Image is an opaque blob forwarded to the remote blob service.
type Image struct {
	Data        []byte
	ContentType string
}
