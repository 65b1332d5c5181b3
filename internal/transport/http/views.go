package httptransport

import (
	"time"

	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
	"golang.org/x/text/currency"
)

// JSON shapes served to page components. Prices are whole currency units,
// the *Display fields carry them formatted in the store currency.

type lineItemView struct {
	ID                   string `json:"id"`
	Kind                 string `json:"kind"`
	SourceID             string `json:"sourceId"`
	Name                 string `json:"name"`
	ImageURL             string `json:"imageUrl"`
	UnitPrice            int64  `json:"unitPrice"`
	MarketPrice          int64  `json:"marketPrice"`
	Discount             int64  `json:"discount"`
	Quantity             int    `json:"quantity"`
	Total                int64  `json:"total"`
	TotalDisplay         string `json:"totalDisplay"`
	RequiresPrescription bool   `json:"requiresPrescription"`
}

type cartView struct {
	Items                []lineItemView `json:"items"`
	ItemCount            int            `json:"itemCount"`
	Subtotal             int64          `json:"subtotal"`
	TotalDiscount        int64          `json:"totalDiscount"`
	GrandTotal           int64          `json:"grandTotal"`
	GrandTotalDisplay    string         `json:"grandTotalDisplay"`
	HasPrescriptionItems bool           `json:"hasPrescriptionItems"`
}

type productView struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Manufacturer         string  `json:"manufacturer"`
	Description          string  `json:"description"`
	Category             string  `json:"category"`
	ImageURL             string  `json:"imageUrl"`
	Price                int64   `json:"price"`
	DiscountedPrice      *int64  `json:"discountedPrice,omitempty"`
	PriceDisplay         string  `json:"priceDisplay"`
	RequiresPrescription bool    `json:"requiresPrescription"`
	StockCount           int64   `json:"stockCount"`
	InStock              bool    `json:"inStock"`
	Rating               float64 `json:"rating"`
	RatingCount          int     `json:"ratingCount"`
}

type labTestView struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	SampleType      string   `json:"sampleType"`
	TurnaroundTime  string   `json:"turnaroundTime"`
	ImageURL        string   `json:"imageUrl"`
	MarketPrice     int64    `json:"marketPrice"`
	DiscountedPrice int64    `json:"discountedPrice"`
	DiscountPercent int64    `json:"discountPercent"`
	PriceDisplay    string   `json:"priceDisplay"`
	TestParameters  []string `json:"testParameters"`
}

type healthPackageView struct {
	labTestView
	IncludedTests []string `json:"includedTests"`
	IsPopular     bool     `json:"isPopular"`
}

type articleView struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Content  string    `json:"content,omitempty"`
	Excerpt  string    `json:"excerpt"`
	Author   string    `json:"author"`
	ImageURL string    `json:"imageUrl"`
	Date     time.Time `json:"date"`
}

type addressView struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type orderItemView struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

type orderView struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId,omitempty"`
	Items           []orderItemView `json:"items"`
	TotalAmount     int64           `json:"totalAmount"`
	TotalDisplay    string          `json:"totalDisplay"`
	DeliveryAddress addressView     `json:"deliveryAddress"`
	Status          string          `json:"status"`
	Step            int             `json:"step"`
	Progress        int             `json:"progress"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type bookingView struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId,omitempty"`
	LabTestID       string    `json:"labTestId"`
	AppointmentTime time.Time `json:"appointmentTime"`
	CreatedAt       time.Time `json:"createdAt"`
}

type prescriptionView struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId,omitempty"`
	OrderID    string    `json:"orderId"`
	ImageURL   string    `json:"imageUrl"`
	Status     string    `json:"status"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type profileView struct {
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Addresses []addressView `json:"addresses"`
	Role      string        `json:"role"`
}

type idView struct {
	ID string `json:"id"`
}

type errorView struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type views struct {
	currency currency.Unit
}

func (v views) money(units int64) string {
	return domain.NewMoney(units, v.currency).String()
}

func mapSlice[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, item := range in {
		out = append(out, fn(item))
	}
	return out
}

func sourceID(item domain.LineItem) string {
	switch {
	case item.Product != nil:
		return item.Product.ID
	case item.LabTest != nil:
		return item.LabTest.ID
	case item.HealthPackage != nil:
		return item.HealthPackage.ID
	default:
		return ""
	}
}

func (v views) cart(items []domain.LineItem, totals domain.CartTotals) cartView {
	return cartView{
		Items: mapSlice(items, func(item domain.LineItem) lineItemView {
			return lineItemView{
				ID:                   item.ID,
				Kind:                 string(item.Kind),
				SourceID:             sourceID(item),
				Name:                 item.Name,
				ImageURL:             item.ImageURL,
				UnitPrice:            item.UnitPrice,
				MarketPrice:          item.MarketPrice,
				Discount:             item.Discount(),
				Quantity:             item.Quantity,
				Total:                item.Total(),
				TotalDisplay:         v.money(item.Total()),
				RequiresPrescription: item.RequiresPrescription,
			}
		}),
		ItemCount:            totals.ItemCount,
		Subtotal:             totals.Subtotal,
		TotalDiscount:        totals.Discount,
		GrandTotal:           totals.GrandTotal,
		GrandTotalDisplay:    v.money(totals.GrandTotal),
		HasPrescriptionItems: totals.HasPrescriptionItems,
	}
}

func (v views) product(p domain.Product) productView {
	price := p.Price
	if p.DiscountedPrice != nil && *p.DiscountedPrice > 0 {
		price = min(*p.DiscountedPrice, p.Price)
	}

	var sum int64
	for _, r := range p.Ratings {
		sum += r
	}
	var rating float64
	if len(p.Ratings) > 0 {
		rating = float64(sum) / float64(len(p.Ratings))
	}

	return productView{
		ID:                   p.ID,
		Name:                 p.Name,
		Manufacturer:         p.Manufacturer,
		Description:          p.Description,
		Category:             p.Category,
		ImageURL:             p.ImageURL,
		Price:                p.Price,
		DiscountedPrice:      p.DiscountedPrice,
		PriceDisplay:         v.money(price),
		RequiresPrescription: p.RequiresPrescription,
		StockCount:           p.StockCount,
		InStock:              p.StockCount > 0,
		Rating:               rating,
		RatingCount:          len(p.Ratings),
	}
}

func discountPercent(market, discounted int64) int64 {
	if market <= 0 || discounted >= market {
		return 0
	}
	return (market - discounted) * 100 / market
}

func (v views) labTest(t domain.LabTest) labTestView {
	return labTestView{
		ID:              t.ID,
		Name:            t.Name,
		Description:     t.Description,
		SampleType:      t.SampleType,
		TurnaroundTime:  t.TurnaroundTime,
		ImageURL:        t.ImageURL,
		MarketPrice:     t.MarketPrice,
		DiscountedPrice: t.DiscountedPrice,
		DiscountPercent: discountPercent(t.MarketPrice, t.DiscountedPrice),
		PriceDisplay:    v.money(t.DiscountedPrice),
		TestParameters:  t.TestParameters,
	}
}

func (v views) healthPackage(h domain.HealthPackage) healthPackageView {
	return healthPackageView{
		labTestView: v.labTest(domain.LabTest{
			ID:              h.ID,
			Name:            h.Name,
			Description:     h.Description,
			SampleType:      h.SampleType,
			TurnaroundTime:  h.TurnaroundTime,
			ImageURL:        h.ImageURL,
			MarketPrice:     h.MarketPrice,
			DiscountedPrice: h.DiscountedPrice,
			TestParameters:  h.TestParameters,
		}),
		IncludedTests: h.IncludedTests,
		IsPopular:     h.IsPopular,
	}
}

func articleSummaryToView(a domain.Article) articleView {
	view := articleToView(a)
	view.Content = ""
	return view
}

func articleToView(a domain.Article) articleView {
	return articleView{
		ID:       a.ID,
		Title:    a.Title,
		Content:  a.Content,
		Excerpt:  a.Excerpt,
		Author:   a.Author,
		ImageURL: a.ImageURL,
		Date:     a.Date,
	}
}

func addressToView(a domain.Address) addressView {
	return addressView(a)
}

func (v addressView) toDomain() domain.Address {
	return domain.Address(v)
}

func (v views) order(o domain.Order) orderView {
	return orderView{
		ID:     o.ID,
		UserID: o.UserID,
		Items: mapSlice(o.Items, func(item domain.OrderItem) orderItemView {
			return orderItemView{
				ProductID: item.Product.ID,
				Name:      item.Product.Name,
				Quantity:  item.Quantity,
			}
		}),
		TotalAmount:     o.TotalAmount,
		TotalDisplay:    v.money(o.TotalAmount),
		DeliveryAddress: addressToView(o.DeliveryAddress),
		Status:          string(o.Status),
		Step:            o.Status.Step(),
		Progress:        o.Status.Progress(),
		CreatedAt:       o.CreatedAt,
	}
}

func bookingToView(b domain.LabTestBooking) bookingView {
	return bookingView{
		ID:              b.ID,
		UserID:          b.UserID,
		LabTestID:       b.LabTestID,
		AppointmentTime: b.AppointmentTime,
		CreatedAt:       b.CreatedAt,
	}
}

func prescriptionToView(p domain.Prescription) prescriptionView {
	return prescriptionView{
		ID:         p.ID,
		UserID:     p.UserID,
		OrderID:    p.OrderID,
		ImageURL:   p.ImageURL,
		Status:     string(p.Status),
		UploadedAt: p.UploadedAt,
	}
}

func profileToView(p domain.UserProfile, role domain.UserRole) profileView {
	return profileView{
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		Addresses: mapSlice(p.Addresses, addressToView),
		Role:      string(role),
	}
}
