package domain

import "time"

type Product struct {
	ID                   string
	Name                 string
	Manufacturer         string
	Description          string
	Category             string
	ImageURL             string
	Price                int64
	DiscountedPrice      *int64
	RequiresPrescription bool
	StockCount           int64
	Ratings              []int64
}

type LabTest struct {
	ID              string
	Name            string
	Description     string
	SampleType      string
	TurnaroundTime  string
	ImageURL        string
	MarketPrice     int64
	DiscountedPrice int64
	TestParameters  []string
}

type HealthPackage struct {
	ID              string
	Name            string
	Description     string
	SampleType      string
	TurnaroundTime  string
	ImageURL        string
	MarketPrice     int64
	DiscountedPrice int64
	TestParameters  []string
	IncludedTests   []string
	IsPopular       bool
}

type Article struct {
	ID       string
	Title    string
	Content  string
	Excerpt  string
	Author   string
	ImageURL string
	Date     time.Time
}

type SortOrder string

const (
	SortDefault      SortOrder = ""
	SortPriceLowHigh SortOrder = "priceLowHigh"
	SortPriceHighLow SortOrder = "priceHighLow"
)

// ProductSearch mirrors the remote searchProducts filter; nil pointers mean "any".
type ProductSearch struct {
	Term                 string
	Category             *string
	MinPrice             *int64
	MaxPrice             *int64
	Brand                *string
	RequiresPrescription *bool
	SortBy               SortOrder
}

type PriceRange struct {
	Min int64
	Max int64
}
