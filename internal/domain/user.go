package domain

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
	RoleGuest UserRole = "guest"
)

type UserProfile struct {
	Name      string    `json:"name" validate:"notblank"`
	Email     string    `json:"email" validate:"required,email"`
	Phone     string    `json:"phone"`
	Addresses []Address `json:"addresses" validate:"dive"`
}
