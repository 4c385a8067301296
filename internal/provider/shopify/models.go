package shopify

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/shopspring/decimal"

	"mers/internal/domain"
)

// OrderToDomain maps an Admin API order (list response or webhook body) onto
// the local order. Empty optional strings become nil.
func OrderToDomain(o *goshopify.Order, storeID string) *domain.Order {
	out := &domain.Order{
		ID:                strconv.FormatUint(o.Id, 10),
		StoreID:           storeID,
		OrderNumber:       strconv.Itoa(o.OrderNumber),
		Email:             optional(o.Email),
		FinancialStatus:   string(o.FinancialStatus),
		FulfillmentStatus: optional(string(o.FulfillmentStatus)),
		TotalPrice:        amount(o.TotalPrice),
		TotalTax:          amount(o.TotalTax),
		TotalDiscounts:    amount(o.TotalDiscounts),
		Currency:          o.Currency,
		CreatedAt:         at(o.CreatedAt),
		UpdatedAt:         at(o.UpdatedAt),
		CancelledAt:       o.CancelledAt,
		LineItems:         make(domain.LineItems, 0, len(o.LineItems)),
	}
	if o.SubtotalPrice != nil {
		out.SubtotalPrice = decimal.NewNullDecimal(*o.SubtotalPrice)
	}
	if o.ShippingAddress != nil {
		if raw, err := json.Marshal(o.ShippingAddress); err == nil {
			out.ShippingAddress = domain.JSON(raw)
		}
	}
	for _, li := range o.LineItems {
		out.LineItems = append(out.LineItems, domain.LineItem{
			Title:     li.Title,
			Name:      li.Name,
			SKU:       li.SKU,
			Price:     amount(li.Price),
			Quantity:  li.Quantity,
			ProductID: id64(li.ProductId),
			VariantID: id64(li.VariantId),
		})
	}
	return out
}

// ProductToDomain maps an Admin API product onto the local product.
func ProductToDomain(p *goshopify.Product, storeID string) *domain.Product {
	out := &domain.Product{
		ID:          strconv.FormatUint(p.Id, 10),
		StoreID:     storeID,
		Title:       p.Title,
		Handle:      p.Handle,
		Vendor:      optional(p.Vendor),
		ProductType: optional(p.ProductType),
		Status:      domain.ProductStatus(p.Status),
		CreatedAt:   at(p.CreatedAt),
		UpdatedAt:   at(p.UpdatedAt),
		PublishedAt: p.PublishedAt,
		Variants:    make(domain.Variants, 0, len(p.Variants)),
	}
	if p.Images != nil {
		if raw, err := json.Marshal(p.Images); err == nil {
			out.Images = domain.JSON(raw)
		}
	}
	for _, v := range p.Variants {
		var compareAt *string
		if v.CompareAtPrice != nil {
			s := price(v.CompareAtPrice)
			compareAt = &s
		}
		out.Variants = append(out.Variants, domain.Variant{
			ID:                int64(v.Id),
			Title:             v.Title,
			SKU:               v.Sku,
			Price:             price(v.Price),
			CompareAtPrice:    compareAt,
			InventoryQuantity: v.InventoryQuantity,
		})
	}
	return out
}

// DecodeOrder parses a single order payload as delivered by order webhooks.
func DecodeOrder(body []byte) (*goshopify.Order, error) {
	var o goshopify.Order
	if err := json.Unmarshal(body, &o); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	if o.Id == 0 {
		return nil, fmt.Errorf("%w: order id missing", domain.ErrInvalidPayload)
	}
	return &o, nil
}

// DecodeProduct parses a single product payload as delivered by product webhooks.
func DecodeProduct(body []byte) (*goshopify.Product, error) {
	var p goshopify.Product
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	if p.Id == 0 {
		return nil, fmt.Errorf("%w: product id missing", domain.ErrInvalidPayload)
	}
	return &p, nil
}

// DecodeDeletedProductID parses a products/delete payload, which carries only the id.
func DecodeDeletedProductID(body []byte) (string, error) {
	p, err := DecodeProduct(body)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(p.Id, 10), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func amount(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// price keeps the scale the platform sent ("10.00" stays "10.00").
func price(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

func at(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func id64(id uint64) *int64 {
	if id == 0 {
		return nil
	}
	v := int64(id)
	return &v
}
