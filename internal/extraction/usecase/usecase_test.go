package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/extraction"
	"github.com/fekuna/omnipos-ledger-service/internal/extraction/dto"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	productrepo "github.com/fekuna/omnipos-ledger-service/internal/product/repository"
	shoprepo "github.com/fekuna/omnipos-ledger-service/internal/shop/repository"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nd(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d(s), Valid: true}
}

type fakeExtractor struct {
	out         *dto.PartialBill
	err         error
	gotShops    []string
	gotProducts []string
	gotMimeType string
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte, mimeType string, shops, products []string) (*dto.PartialBill, error) {
	f.gotShops, f.gotProducts, f.gotMimeType = shops, products, mimeType
	return f.out, f.err
}

func setup(t *testing.T, ex extraction.Extractor) extraction.UseCase {
	t.Helper()
	ctx := context.Background()
	shops := shoprepo.NewMemoryRepository()
	products := productrepo.NewMemoryRepository()
	require.NoError(t, shops.Create(ctx, &model.Shop{ID: "s1", Name: "Acme"}))
	require.NoError(t, products.Create(ctx, &model.Product{ID: "p1", Name: "Soap"}))
	require.NoError(t, products.Create(ctx, &model.Product{ID: "p2", Name: "Rice"}))

	uc := NewExtractionUseCase(ex, products, shops, logger.NewNop())
	uc.(*extractionUseCase).now = func() time.Time { return time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC) }
	return uc
}

func TestDraft_HydratesAndValidates(t *testing.T) {
	ex := &fakeExtractor{out: &dto.PartialBill{
		ShopName: "acme",
		Items: []dto.PartialItem{
			{ProductName: "Soap", RetailPrice: nd("2.5"), Quantity: nd("4"), Total: nd("10")},
			{ProductName: "Rice", Quantity: nd("3"), Total: nd("100")},
		},
		TotalAmount: nd("110"),
	}}
	uc := setup(t, ex)

	draft, err := uc.Draft(context.Background(), &dto.DraftInput{Image: []byte{1}, MimeType: "image/png"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Acme"}, ex.gotShops)
	assert.Equal(t, []string{"Soap", "Rice"}, ex.gotProducts)
	assert.Equal(t, "image/png", ex.gotMimeType)

	b := draft.Bill
	assert.True(t, draft.Valid)
	assert.Nil(t, draft.Issues)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "Acme", b.ShopName)
	assert.Equal(t, "2024-05-06", b.Date)
	assert.True(t, b.Items[1].RetailPrice.Equal(d("33.33")))
	assert.True(t, b.Consistent())
	assert.True(t, b.TotalAmount.Equal(d("109.99")))
	assert.True(t, draft.TotalMismatch)
}

func TestDraft_FlagsUnknownProduct(t *testing.T) {
	ex := &fakeExtractor{out: &dto.PartialBill{
		ShopName: "Acme",
		Date:     "2024-02-10",
		Items:    []dto.PartialItem{{ProductName: "Coke", RetailPrice: nd("1"), Quantity: nd("2")}},
	}}
	uc := setup(t, ex)

	draft, err := uc.Draft(context.Background(), &dto.DraftInput{Image: []byte{1}})
	require.NoError(t, err)
	assert.False(t, draft.Valid)
	assert.ErrorIs(t, draft.Issues, ledger.ErrUnknownProduct)
	assert.False(t, draft.TotalMismatch)
	assert.True(t, draft.Bill.TotalAmount.Equal(d("2")))
}

func TestDraft_Errors(t *testing.T) {
	_, err := setup(t, nil).Draft(context.Background(), &dto.DraftInput{Image: []byte{1}})
	assert.ErrorIs(t, err, extraction.ErrUnavailable)

	ex := &fakeExtractor{err: errors.New("quota exceeded")}
	uc := setup(t, ex)
	_, err = uc.Draft(context.Background(), &dto.DraftInput{})
	assert.ErrorIs(t, err, ledger.ErrMissingField)

	_, err = uc.Draft(context.Background(), &dto.DraftInput{Image: []byte{1}})
	assert.EqualError(t, err, "quota exceeded")
}
