package ledger

import (
	"errors"
	"strings"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
)

const DateLayout = "2006-01-02"

// NormalizeName is the key used for every case-insensitive master lookup.
func NormalizeName(name string) string {
	return strings.ToLower(name)
}

// FindShop returns the first shop whose name matches name ignoring case.
func FindShop(shops []model.Shop, name string) *model.Shop {
	key := NormalizeName(name)
	for i := range shops {
		if NormalizeName(shops[i].Name) == key {
			return &shops[i]
		}
	}
	return nil
}

// FindProduct returns the product whose name equals name exactly.
func FindProduct(products []model.Product, name string) *model.Product {
	for i := range products {
		if products[i].Name == name {
			return &products[i]
		}
	}
	return nil
}

// ValidateShop accepts a non-blank shop name that matches a master record ignoring case.
func ValidateShop(shopName string, shops []model.Shop) error {
	if strings.TrimSpace(shopName) == "" {
		return &ValidationError{Err: ErrMissingField, Field: "shopName", Index: -1}
	}
	if FindShop(shops, shopName) == nil {
		return &ValidationError{Err: ErrUnknownShop, Field: "shopName", Value: shopName, Index: -1}
	}
	return nil
}

// ValidateItems needs at least one item, and every product name must equal a master name exactly
// (case-sensitive). All offending items are reported.
func ValidateItems(items []model.BillItem, products []model.Product) error {
	if len(items) == 0 {
		return &ValidationError{Err: ErrNoItems, Field: "items", Index: -1}
	}

	known := make(map[string]struct{}, len(products))
	for _, p := range products {
		known[p.Name] = struct{}{}
	}

	var errs []error
	for i, it := range items {
		if strings.TrimSpace(it.ProductName) == "" {
			errs = append(errs, &ValidationError{Err: ErrMissingField, Field: "productName", Index: i})
		} else if _, ok := known[it.ProductName]; !ok {
			errs = append(errs, &ValidationError{Err: ErrUnknownProduct, Field: "productName", Value: it.ProductName, Index: i})
		}
		errs = append(errs, ValidateItemAmounts(i, it))
	}
	return errors.Join(errs...)
}

// ValidateItemAmounts rejects a negative retail price or mrp and a non-positive quantity on the
// item at index i.
func ValidateItemAmounts(i int, it model.BillItem) error {
	var errs []error
	if it.RetailPrice.IsNegative() {
		errs = append(errs, &ValidationError{Err: ErrInvalidAmount, Field: "retailPrice", Value: it.RetailPrice.String(), Index: i})
	}
	if !it.Quantity.IsPositive() {
		errs = append(errs, &ValidationError{Err: ErrInvalidAmount, Field: "quantity", Value: it.Quantity.String(), Index: i})
	}
	if it.Mrp.Valid && it.Mrp.Decimal.IsNegative() {
		errs = append(errs, &ValidationError{Err: ErrInvalidAmount, Field: "mrp", Value: it.Mrp.Decimal.String(), Index: i})
	}
	return errors.Join(errs...)
}

func ValidateDate(date string) error {
	if strings.TrimSpace(date) == "" {
		return &ValidationError{Err: ErrMissingField, Field: "date", Index: -1}
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return &ValidationError{Err: ErrInvalidDate, Field: "date", Value: date, Index: -1}
	}
	return nil
}

// ValidateBill runs every check a bill must pass before it is written.
func ValidateBill(b *model.Bill, shops []model.Shop, products []model.Product) error {
	return errors.Join(
		ValidateShop(b.ShopName, shops),
		ValidateDate(b.Date),
		ValidateItems(b.Items, products),
	)
}

// ValidateShopName checks a master shop name: non-blank, not the AllShops sentinel, and unique
// ignoring case among the other shops. excludeID is the shop being edited, if any.
func ValidateShopName(name string, shops []model.Shop, excludeID string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Err: ErrMissingField, Field: "name", Index: -1}
	}
	key := NormalizeName(name)
	if strings.TrimSpace(key) == NormalizeName(AllShops) {
		return &ValidationError{Err: ErrReservedName, Field: "name", Value: name, Index: -1}
	}
	for _, s := range shops {
		if s.ID != excludeID && NormalizeName(s.Name) == key {
			return &ValidationError{Err: ErrDuplicateName, Field: "name", Value: name, Index: -1}
		}
	}
	return nil
}

// ValidateProductName is ValidateShopName for the product catalog.
func ValidateProductName(name string, products []model.Product, excludeID string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Err: ErrMissingField, Field: "name", Index: -1}
	}
	key := NormalizeName(name)
	for _, p := range products {
		if p.ID != excludeID && NormalizeName(p.Name) == key {
			return &ValidationError{Err: ErrDuplicateName, Field: "name", Value: name, Index: -1}
		}
	}
	return nil
}
