package backend

import (
	"time"

	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
)

// Wire shapes of the remote API: prices are whole currency units,
// timestamps are nanoseconds since the Unix epoch.

type productDTO struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Manufacturer         string  `json:"manufacturer"`
	Description          string  `json:"description"`
	Category             string  `json:"category"`
	ImageURL             string  `json:"imageUrl"`
	Price                int64   `json:"price"`
	DiscountedPrice      *int64  `json:"discountedPrice,omitempty"`
	RequiresPrescription bool    `json:"requiresPrescription"`
	StockCount           int64   `json:"stockCount"`
	Ratings              []int64 `json:"ratings"`
}

type labTestDTO struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	SampleType      string   `json:"sampleType"`
	TurnaroundTime  string   `json:"turnaroundTime"`
	ImageURL        string   `json:"imageUrl"`
	MarketPrice     int64    `json:"marketPrice"`
	DiscountedPrice int64    `json:"discountedPrice"`
	TestParameters  []string `json:"testParameters"`
}

type healthPackageDTO struct {
	labTestDTO
	IncludedTests []string `json:"includedTests"`
	IsPopular     bool     `json:"isPopular"`
}

type articleDTO struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Excerpt  string `json:"excerpt"`
	Author   string `json:"author"`
	ImageURL string `json:"imageUrl"`
	Date     int64  `json:"date"`
}

type addressDTO struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type orderItemDTO struct {
	Product  productDTO `json:"product"`
	Quantity int64      `json:"quantity"`
}

type orderDTO struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	Items           []orderItemDTO `json:"items"`
	TotalAmount     int64          `json:"totalAmount"`
	DeliveryAddress addressDTO     `json:"deliveryAddress"`
	Status          string         `json:"status"`
	CreatedAt       int64          `json:"createdAt"`
}

type createOrderDTO struct {
	Items                []orderItemDTO `json:"items"`
	TotalAmount          int64          `json:"totalAmount"`
	DeliveryAddress      addressDTO     `json:"deliveryAddress"`
	RequiresPrescription bool           `json:"requiresPrescription"`
}

type bookingDTO struct {
	ID              string `json:"id"`
	UserID          string `json:"userId"`
	LabTestID       string `json:"labTestId"`
	AppointmentTime int64  `json:"appointmentTime"`
	CreatedAt       int64  `json:"createdAt"`
}

type bookLabTestDTO struct {
	LabTestID       string `json:"labTestId"`
	AppointmentTime int64  `json:"appointmentTime"`
}

type prescriptionDTO struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	OrderID    string `json:"orderId"`
	ImageURL   string `json:"imageUrl"`
	Status     string `json:"status"`
	UploadedAt int64  `json:"uploadedAt"`
}

type profileDTO struct {
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone"`
	Addresses []addressDTO `json:"addresses"`
}

type statusDTO struct {
	Status string `json:"status"`
}

type roleDTO struct {
	Role string `json:"role"`
}

type isAdminDTO struct {
	IsAdmin bool `json:"isAdmin"`
}

type imageDTO struct {
	URL string `json:"url"`
}

func fromNanos(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func mapSlice[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

func mapProductToDomain(p productDTO) domain.Product {
	return domain.Product{
		ID:                   p.ID,
		Name:                 p.Name,
		Manufacturer:         p.Manufacturer,
		Description:          p.Description,
		Category:             p.Category,
		ImageURL:             p.ImageURL,
		Price:                p.Price,
		DiscountedPrice:      p.DiscountedPrice,
		RequiresPrescription: p.RequiresPrescription,
		StockCount:           p.StockCount,
		Ratings:              p.Ratings,
	}
}

func mapProductFromDomain(p domain.Product) productDTO {
	return productDTO{
		ID:                   p.ID,
		Name:                 p.Name,
		Manufacturer:         p.Manufacturer,
		Description:          p.Description,
		Category:             p.Category,
		ImageURL:             p.ImageURL,
		Price:                p.Price,
		DiscountedPrice:      p.DiscountedPrice,
		RequiresPrescription: p.RequiresPrescription,
		StockCount:           p.StockCount,
		Ratings:              p.Ratings,
	}
}

func mapLabTestToDomain(t labTestDTO) domain.LabTest {
	return domain.LabTest{
		ID:              t.ID,
		Name:            t.Name,
		Description:     t.Description,
		SampleType:      t.SampleType,
		TurnaroundTime:  t.TurnaroundTime,
		ImageURL:        t.ImageURL,
		MarketPrice:     t.MarketPrice,
		DiscountedPrice: t.DiscountedPrice,
		TestParameters:  t.TestParameters,
	}
}

func mapLabTestFromDomain(t domain.LabTest) labTestDTO {
	return labTestDTO{
		ID:              t.ID,
		Name:            t.Name,
		Description:     t.Description,
		SampleType:      t.SampleType,
		TurnaroundTime:  t.TurnaroundTime,
		ImageURL:        t.ImageURL,
		MarketPrice:     t.MarketPrice,
		DiscountedPrice: t.DiscountedPrice,
		TestParameters:  t.TestParameters,
	}
}

func mapHealthPackageToDomain(h healthPackageDTO) domain.HealthPackage {
	return domain.HealthPackage{
		ID:              h.ID,
		Name:            h.Name,
		Description:     h.Description,
		SampleType:      h.SampleType,
		TurnaroundTime:  h.TurnaroundTime,
		ImageURL:        h.ImageURL,
		MarketPrice:     h.MarketPrice,
		DiscountedPrice: h.DiscountedPrice,
		TestParameters:  h.TestParameters,
		IncludedTests:   h.IncludedTests,
		IsPopular:       h.IsPopular,
	}
}

func mapHealthPackageFromDomain(h domain.HealthPackage) healthPackageDTO {
	return healthPackageDTO{
		labTestDTO: labTestDTO{
			ID:              h.ID,
			Name:            h.Name,
			Description:     h.Description,
			SampleType:      h.SampleType,
			TurnaroundTime:  h.TurnaroundTime,
			ImageURL:        h.ImageURL,
			MarketPrice:     h.MarketPrice,
			DiscountedPrice: h.DiscountedPrice,
			TestParameters:  h.TestParameters,
		},
		IncludedTests: h.IncludedTests,
		IsPopular:     h.IsPopular,
	}
}

func mapArticleToDomain(a articleDTO) domain.Article {
	return domain.Article{
		ID:       a.ID,
		Title:    a.Title,
		Content:  a.Content,
		Excerpt:  a.Excerpt,
		Author:   a.Author,
		ImageURL: a.ImageURL,
		Date:     fromNanos(a.Date),
	}
}

func mapAddressToDomain(a addressDTO) domain.Address {
	return domain.Address(a)
}

func mapAddressFromDomain(a domain.Address) addressDTO {
	return addressDTO{
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		Zip:     a.Zip,
		Country: a.Country,
	}
}

func mapOrderItemFromDomain(item domain.OrderItem) orderItemDTO {
	return orderItemDTO{
		Product:  mapProductFromDomain(item.Product),
		Quantity: int64(item.Quantity),
	}
}

func mapOrderToDomain(o orderDTO) domain.Order {
	return domain.Order{
		ID:     o.ID,
		UserID: o.UserID,
		Items: mapSlice(o.Items, func(item orderItemDTO) domain.OrderItem {
			return domain.OrderItem{
				Product:  mapProductToDomain(item.Product),
				Quantity: int(item.Quantity),
			}
		}),
		TotalAmount:     o.TotalAmount,
		DeliveryAddress: mapAddressToDomain(o.DeliveryAddress),
		Status:          domain.OrderStatus(o.Status),
		CreatedAt:       fromNanos(o.CreatedAt),
	}
}

func mapBookingToDomain(b bookingDTO) domain.LabTestBooking {
	return domain.LabTestBooking{
		ID:              b.ID,
		UserID:          b.UserID,
		LabTestID:       b.LabTestID,
		AppointmentTime: fromNanos(b.AppointmentTime),
		CreatedAt:       fromNanos(b.CreatedAt),
	}
}

func mapPrescriptionToDomain(p prescriptionDTO) domain.Prescription {
	return domain.Prescription{
		ID:         p.ID,
		UserID:     p.UserID,
		OrderID:    p.OrderID,
		ImageURL:   p.ImageURL,
		Status:     domain.PrescriptionStatus(p.Status),
		UploadedAt: fromNanos(p.UploadedAt),
	}
}

func mapProfileToDomain(p profileDTO) domain.UserProfile {
	return domain.UserProfile{
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		Addresses: mapSlice(p.Addresses, mapAddressToDomain),
	}
}

func mapProfileFromDomain(p domain.UserProfile) profileDTO {
	return profileDTO{
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		Addresses: mapSlice(p.Addresses, mapAddressFromDomain),
	}
}
