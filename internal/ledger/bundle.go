package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
)

// DecodeBundle parses a backup document and rejects it unless bills, products and shops are all
// present as arrays, ids are unique per collection, and master names are unique ignoring case.
// Every bill needs an ISO date and sane item amounts. Master references are not checked;
// historical bills may name retired masters.
func DecodeBundle(data []byte) (*model.Bundle, error) {
	var raw struct {
		Bills      *[]model.Bill    `json:"bills"`
		Products   *[]model.Product `json:"products"`
		Shops      *[]model.Shop    `json:"shops"`
		ExportDate string           `json:"exportDate"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}

	var missing []string
	if raw.Bills == nil {
		missing = append(missing, "bills")
	}
	if raw.Products == nil {
		missing = append(missing, "products")
	}
	if raw.Shops == nil {
		missing = append(missing, "shops")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedImport, strings.Join(missing, ", "))
	}

	b := &model.Bundle{
		Bills:      *raw.Bills,
		Products:   *raw.Products,
		Shops:      *raw.Shops,
		ExportDate: raw.ExportDate,
	}
	if err := CheckBundle(b); err != nil {
		return nil, err
	}
	return b, nil
}

func CheckBundle(b *model.Bundle) error {
	billIDs := make(map[string]struct{}, len(b.Bills))
	for i, bill := range b.Bills {
		if bill.ID == "" {
			return fmt.Errorf("%w: bills[%d] has no id", ErrMalformedImport, i)
		}
		if _, dup := billIDs[bill.ID]; dup {
			return fmt.Errorf("%w: duplicate bill id %q", ErrMalformedImport, bill.ID)
		}
		billIDs[bill.ID] = struct{}{}
		if err := checkBill(&b.Bills[i]); err != nil {
			return fmt.Errorf("%w: bills[%d]: %v", ErrMalformedImport, i, err)
		}
	}

	ids := make(map[string]struct{}, len(b.Products))
	names := make(map[string]struct{}, len(b.Products))
	for i, p := range b.Products {
		if err := checkMaster("products", i, p.ID, p.Name, ids, names); err != nil {
			return err
		}
	}

	ids = make(map[string]struct{}, len(b.Shops))
	names = make(map[string]struct{}, len(b.Shops))
	for i, s := range b.Shops {
		if err := checkMaster("shops", i, s.ID, s.Name, ids, names); err != nil {
			return err
		}
	}
	return nil
}

func checkMaster(collection string, i int, id, name string, ids, names map[string]struct{}) error {
	if id == "" || strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s[%d] needs an id and a name", ErrMalformedImport, collection, i)
	}
	if _, dup := ids[id]; dup {
		return fmt.Errorf("%w: duplicate %s id %q", ErrMalformedImport, collection, id)
	}
	key := NormalizeName(name)
	if _, dup := names[key]; dup {
		return fmt.Errorf("%w: duplicate %s name %q", ErrMalformedImport, collection, name)
	}
	ids[id] = struct{}{}
	names[key] = struct{}{}
	return nil
}

func checkBill(b *model.Bill) error {
	errs := []error{ValidateDate(b.Date)}
	for i, it := range b.Items {
		errs = append(errs, ValidateItemAmounts(i, it))
	}
	return errors.Join(errs...)
}
