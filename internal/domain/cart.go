package domain

type ItemKind string

const (
	KindProduct       ItemKind = "product"
	KindLabTest       ItemKind = "labTest"
	KindHealthPackage ItemKind = "healthPackage"
)

// LineItem is one aggregated cart entry. Exactly one of Product, LabTest and
// HealthPackage is set, matching Kind.
type LineItem struct {
	ID                   string
	Kind                 ItemKind
	Name                 string
	ImageURL             string
	UnitPrice            int64
	MarketPrice          int64
	Quantity             int
	RequiresPrescription bool

	Product       *Product
	LabTest       *LabTest
	HealthPackage *HealthPackage
}

func (li LineItem) Discount() int64 {
	return li.MarketPrice - li.UnitPrice
}

func (li LineItem) Total() int64 {
	return li.UnitPrice * int64(li.Quantity)
}

// Purchasable is implemented by the catalog entities that can be put into a cart.
type Purchasable interface {
	lineItem(quantity int) LineItem
}

func (p Product) lineItem(quantity int) LineItem {
	unit := p.Price
	if p.DiscountedPrice != nil && *p.DiscountedPrice != 0 {
		unit = *p.DiscountedPrice
	}

	return LineItem{
		ID:                   LineItemID(KindProduct, p.ID),
		Kind:                 KindProduct,
		Name:                 p.Name,
		ImageURL:             p.ImageURL,
		UnitPrice:            min(unit, p.Price),
		MarketPrice:          p.Price,
		Quantity:             quantity,
		RequiresPrescription: p.RequiresPrescription,
		Product:              &p,
	}
}

func (t LabTest) lineItem(quantity int) LineItem {
	return LineItem{
		ID:          LineItemID(KindLabTest, t.ID),
		Kind:        KindLabTest,
		Name:        t.Name,
		ImageURL:    t.ImageURL,
		UnitPrice:   min(t.DiscountedPrice, t.MarketPrice),
		MarketPrice: t.MarketPrice,
		Quantity:    quantity,
		LabTest:     &t,
	}
}

func (h HealthPackage) lineItem(quantity int) LineItem {
	return LineItem{
		ID:            LineItemID(KindHealthPackage, h.ID),
		Kind:          KindHealthPackage,
		Name:          h.Name,
		ImageURL:      h.ImageURL,
		UnitPrice:     min(h.DiscountedPrice, h.MarketPrice),
		MarketPrice:   h.MarketPrice,
		Quantity:      quantity,
		HealthPackage: &h,
	}
}

func LineItemID(kind ItemKind, sourceID string) string {
	return string(kind) + "-" + sourceID
}

// Cart holds the line items of one session. The zero value is an empty cart.
// Cart is not safe for concurrent use.
type Cart struct {
	items []LineItem
}

type CartTotals struct {
	ItemCount            int
	Subtotal             int64
	Discount             int64
	GrandTotal           int64
	HasPrescriptionItems bool
}

func (c *Cart) AddProduct(p Product, quantity int) {
	c.Add(p, quantity)
}

func (c *Cart) AddLabTest(t LabTest, quantity int) {
	c.Add(t, quantity)
}

func (c *Cart) AddHealthPackage(h HealthPackage, quantity int) {
	c.Add(h, quantity)
}

// Add merges src into the cart. A line already present only has its quantity
// increased; its prices and metadata stay as they were on the first add.
// Non-positive quantities are ignored.
func (c *Cart) Add(src Purchasable, quantity int) {
	if quantity <= 0 {
		return
	}

	item := src.lineItem(quantity)

	if i := c.indexOf(item.ID); i >= 0 {
		c.items[i].Quantity += quantity
		return
	}

	c.items = append(c.items, item)
}

func (c *Cart) Remove(id string) {
	if i := c.indexOf(id); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

func (c *Cart) SetQuantity(id string, quantity int) {
	if quantity <= 0 {
		c.Remove(id)
		return
	}

	if i := c.indexOf(id); i >= 0 {
		c.items[i].Quantity = quantity
	}
}

func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []LineItem {
	if len(c.items) == 0 {
		return nil
	}

	items := make([]LineItem, len(c.items))
	copy(items, c.items)

	return items
}

func (c *Cart) Item(id string) (LineItem, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}

	return LineItem{}, false
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) TotalItemCount() int {
	var n int
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) Subtotal() int64 {
	var sum int64
	for _, item := range c.items {
		sum += item.MarketPrice * int64(item.Quantity)
	}
	return sum
}

func (c *Cart) TotalDiscount() int64 {
	var sum int64
	for _, item := range c.items {
		sum += item.Discount() * int64(item.Quantity)
	}
	return sum
}

func (c *Cart) GrandTotal() int64 {
	return c.Subtotal() - c.TotalDiscount()
}

func (c *Cart) HasPrescriptionItems() bool {
	for _, item := range c.items {
		if item.RequiresPrescription {
			return true
		}
	}
	return false
}

func (c *Cart) Totals() CartTotals {
	return CartTotals{
		ItemCount:            c.TotalItemCount(),
		Subtotal:             c.Subtotal(),
		Discount:             c.TotalDiscount(),
		GrandTotal:           c.GrandTotal(),
		HasPrescriptionItems: c.HasPrescriptionItems(),
	}
}

func (c *Cart) indexOf(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}
