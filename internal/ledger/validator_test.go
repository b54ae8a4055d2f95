package ledger

import (
	"errors"
	"testing"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateShop(t *testing.T) {
	shops := []model.Shop{{ID: "s1", Name: "Acme Stores"}}

	tests := []struct {
		name    string
		shop    string
		wantErr error
	}{
		{name: "exact match", shop: "Acme Stores", wantErr: nil},
		{name: "case-insensitive match", shop: "acme STORES", wantErr: nil},
		{name: "blank is missing field", shop: "   ", wantErr: ErrMissingField},
		{name: "empty is missing field", shop: "", wantErr: ErrMissingField},
		{name: "unknown shop", shop: "Unknown Shop Co", wantErr: ErrUnknownShop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateShop(tt.shop, shops)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateShop_OrderIndependent(t *testing.T) {
	var shops []model.Shop

	err := ValidateShop("Unknown Shop Co", shops)
	assert.ErrorIs(t, err, ErrUnknownShop)

	shops = append(shops, model.Shop{ID: "s9", Name: "unknown shop co"})
	assert.NoError(t, ValidateShop("Unknown Shop Co", shops))

	// adding first, validating after
	assert.NoError(t, ValidateShop("Unknown Shop Co", []model.Shop{{ID: "x", Name: "Unknown Shop Co"}}))
}

func TestValidateItems(t *testing.T) {
	products := []model.Product{{ID: "p1", Name: "Coca Cola"}, {ID: "p2", Name: "Soap"}}

	t.Run("no items", func(t *testing.T) {
		err := ValidateItems(nil, products)
		assert.ErrorIs(t, err, ErrNoItems)
	})

	t.Run("all known", func(t *testing.T) {
		err := ValidateItems([]model.BillItem{item("Coca Cola", "10", "2"), item("Soap", "5", "1")}, products)
		assert.NoError(t, err)
	})

	t.Run("product match is case-sensitive", func(t *testing.T) {
		err := ValidateItems([]model.BillItem{item("coca cola", "10", "2")}, products)
		require.ErrorIs(t, err, ErrUnknownProduct)
		issues := Issues(err)
		require.Len(t, issues, 1)
		assert.Equal(t, "coca cola", issues[0].Value)
		assert.Equal(t, 0, issues[0].Index)
		assert.Equal(t, "unknown_product", issues[0].Kind())
	})

	t.Run("reports every offending item", func(t *testing.T) {
		err := ValidateItems([]model.BillItem{
			item("Coke", "10", "1"),
			item("Soap", "5", "1"),
			item("Pepsi", "10", "1"),
		}, products)
		issues := Issues(err)
		require.Len(t, issues, 2)
		assert.Equal(t, "Coke", issues[0].Value)
		assert.Equal(t, "Pepsi", issues[1].Value)
		assert.Equal(t, 2, issues[1].Index)
	})

	t.Run("blank product name is missing field", func(t *testing.T) {
		err := ValidateItems([]model.BillItem{item("", "1", "1")}, products)
		assert.ErrorIs(t, err, ErrMissingField)
	})

	t.Run("bad amounts", func(t *testing.T) {
		err := ValidateItems([]model.BillItem{item("Soap", "-1", "0")}, products)
		issues := Issues(err)
		require.Len(t, issues, 2)
		assert.Equal(t, "retailPrice", issues[0].Field)
		assert.Equal(t, "quantity", issues[1].Field)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("fractional quantity is fine", func(t *testing.T) {
		assert.NoError(t, ValidateItems([]model.BillItem{item("Soap", "0", "0.25")}, products))
	})
}

func TestValidateDate(t *testing.T) {
	assert.NoError(t, ValidateDate("2024-02-10"))
	assert.ErrorIs(t, ValidateDate(""), ErrMissingField)
	assert.ErrorIs(t, ValidateDate("10/02/2024"), ErrInvalidDate)
	assert.ErrorIs(t, ValidateDate("2024-2-1"), ErrInvalidDate)
	assert.ErrorIs(t, ValidateDate("2024-02-30"), ErrInvalidDate)
}

func TestValidateBill_CollectsAllIssues(t *testing.T) {
	b := bill("b1", "Nowhere", "", item("Coke", "10", "1"))

	err := ValidateBill(&b, nil, nil)

	assert.ErrorIs(t, err, ErrUnknownShop)
	assert.ErrorIs(t, err, ErrMissingField)
	assert.ErrorIs(t, err, ErrUnknownProduct)
	assert.Len(t, Issues(err), 3)
	assert.True(t, IsValidation(err))
}

func TestValidateMasterNames(t *testing.T) {
	shops := []model.Shop{{ID: "s1", Name: "Acme"}}
	assert.NoError(t, ValidateShopName("Beta", shops, ""))
	assert.NoError(t, ValidateShopName("ACME", shops, "s1"), "renaming a shop to a case variant of itself")
	assert.ErrorIs(t, ValidateShopName("acme", shops, ""), ErrDuplicateName)
	assert.ErrorIs(t, ValidateShopName(" ", shops, ""), ErrMissingField)
	for _, name := range []string{"All", "all", " ALL "} {
		err := ValidateShopName(name, shops, "s1")
		assert.ErrorIs(t, err, ErrReservedName, name)
		issues := Issues(err)
		require.Len(t, issues, 1, name)
		assert.Equal(t, "reserved_name", issues[0].Kind(), name)
	}

	products := []model.Product{{ID: "p1", Name: "Coca Cola"}}
	assert.ErrorIs(t, ValidateProductName("COCA COLA", products, "p2"), ErrDuplicateName)
	assert.NoError(t, ValidateProductName("Coca Cola", products, "p1"))
}

func TestIssues_SkipsPlainErrors(t *testing.T) {
	assert.Nil(t, Issues(nil))
	assert.Empty(t, Issues(errors.New("boom")))
	assert.False(t, IsValidation(errors.New("boom")))
}

func TestValidationError_Message(t *testing.T) {
	e := &ValidationError{Err: ErrUnknownProduct, Field: "productName", Value: "Coke", Index: 2}
	assert.Equal(t, `invalid product reference: items[2].productName "Coke"`, e.Error())

	e = &ValidationError{Err: ErrMissingField, Field: "shopName", Index: -1}
	assert.Equal(t, "missing required field: shopName", e.Error())
}
