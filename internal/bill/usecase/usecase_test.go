package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/bill"
	"github.com/fekuna/omnipos-ledger-service/internal/bill/dto"
	billrepo "github.com/fekuna/omnipos-ledger-service/internal/bill/repository"
	"github.com/fekuna/omnipos-ledger-service/internal/event"
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

type fakeIndexer struct {
	indexed map[string]model.Bill
	deleted []string
	hits    []string
	err     error
}

func (f *fakeIndexer) IndexBill(_ context.Context, b *model.Bill) error {
	f.indexed[b.ID] = *b
	return nil
}

func (f *fakeIndexer) DeleteBill(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndexer) SearchBillIDs(context.Context, string) ([]string, error) {
	return f.hits, f.err
}

type fixture struct {
	bills    *billrepo.MemoryRepository
	shops    *shoprepo.MemoryRepository
	products *productrepo.MemoryRepository
	events   []event.LedgerEvent
	uc       bill.UseCase
}

func setup(t *testing.T, indexer bill.Indexer) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		bills:    billrepo.NewMemoryRepository(),
		shops:    shoprepo.NewMemoryRepository(),
		products: productrepo.NewMemoryRepository(),
	}
	require.NoError(t, f.shops.Create(ctx, &model.Shop{ID: "s1", Name: "Acme"}))
	require.NoError(t, f.products.Create(ctx, &model.Product{ID: "p1", Name: "Soap", ManufacturingCost: d("4")}))
	require.NoError(t, f.products.Create(ctx, &model.Product{ID: "p2", Name: "Rice", ManufacturingCost: d("30")}))

	pub := event.PublisherFunc(func(_ context.Context, e event.LedgerEvent) error {
		f.events = append(f.events, e)
		return nil
	})
	uc := NewBillUseCase(f.bills, f.products, f.shops, indexer, pub, logger.NewNop())
	clock := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	uc.(*billUseCase).now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	f.uc = uc
	return f
}

func input(shopName, date string, items ...dto.ItemInput) *dto.SaveBillInput {
	return &dto.SaveBillInput{ShopName: shopName, InvoiceNumber: "INV-1", Date: date, Items: items}
}

func line(name, price, qty string) dto.ItemInput {
	return dto.ItemInput{ProductName: name, RetailPrice: d(price), Quantity: d(qty)}
}

func TestCreateBill_RecomputesTotals(t *testing.T) {
	f := setup(t, nil)

	b, err := f.uc.CreateBill(context.Background(), input("Acme", "2024-02-10", line("Soap", "12.5", "4"), line("Rice", "40", "2.5")))
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID)
	assert.NotEmpty(t, b.Items[0].ID)
	assert.True(t, b.Items[0].Total.Equal(d("50")))
	assert.True(t, b.TotalAmount.Equal(d("150")))
	assert.True(t, b.Consistent())
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 1, 0, time.UTC).UnixMilli(), b.CreatedAt)

	require.Len(t, f.events, 1)
	assert.Equal(t, event.BillSaved, f.events[0].EventType)
}

func TestCreateBill_KeepsItemMrp(t *testing.T) {
	f := setup(t, nil)

	soap := line("Soap", "10", "1")
	soap.Mrp = decimal.NewNullDecimal(d("12"))
	b, err := f.uc.CreateBill(context.Background(), input("Acme", "2024-02-10", soap, line("Rice", "40", "1")))
	require.NoError(t, err)
	require.True(t, b.Items[0].Mrp.Valid)
	assert.True(t, b.Items[0].Mrp.Decimal.Equal(d("12")))
	assert.False(t, b.Items[1].Mrp.Valid)
	assert.True(t, b.TotalAmount.Equal(d("50")), "mrp never enters totals")

	bad := line("Soap", "10", "1")
	bad.Mrp = decimal.NewNullDecimal(d("-3"))
	_, err = f.uc.CreateBill(context.Background(), input("Acme", "2024-02-10", bad))
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

func TestCreateBill_UnknownShopThenAdded(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	in := input("Unknown Shop Co", "2024-02-10", line("Soap", "1", "1"))

	_, err := f.uc.CreateBill(ctx, in)
	require.ErrorIs(t, err, ledger.ErrUnknownShop)
	assert.Equal(t, 0, len(mustList(t, f)))

	require.NoError(t, f.shops.Create(ctx, &model.Shop{ID: "s2", Name: "unknown shop co"}))

	b, err := f.uc.CreateBill(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "unknown shop co", b.ShopName, "stored with the master's spelling")
}

func TestCreateBill_InvalidProductReference(t *testing.T) {
	f := setup(t, nil)

	_, err := f.uc.CreateBill(context.Background(), input("Acme", "2024-02-10", line("Soap", "1", "1"), line("Coke", "2", "1")))
	require.ErrorIs(t, err, ledger.ErrUnknownProduct)

	issues := ledger.Issues(err)
	require.Len(t, issues, 1)
	assert.Equal(t, "Coke", issues[0].Value)
	assert.Equal(t, 1, issues[0].Index)
	assert.Empty(t, f.events)
}

func TestCreateBill_ReportsEveryIssue(t *testing.T) {
	f := setup(t, nil)

	_, err := f.uc.CreateBill(context.Background(), &dto.SaveBillInput{Date: "10/02/2024"})
	kinds := []string{}
	for _, is := range ledger.Issues(err) {
		kinds = append(kinds, is.Kind())
	}
	assert.Equal(t, []string{"missing_field", "invalid_date", "no_items"}, kinds)
}

func TestUpdateBill(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	b, err := f.uc.CreateBill(ctx, input("Acme", "2024-02-10", line("Soap", "10", "1")))
	require.NoError(t, err)

	in := input("ACME", "2024-02-11", line("Rice", "40", "2"))
	in.ID = b.ID
	updated, err := f.uc.UpdateBill(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, b.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Acme", updated.ShopName)
	assert.True(t, updated.TotalAmount.Equal(d("80")))

	stored, err := f.uc.GetBill(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Rice", stored.Items[0].ProductName)

	in.ID = "missing"
	_, err = f.uc.UpdateBill(ctx, in)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteBill(t *testing.T) {
	idx := &fakeIndexer{indexed: map[string]model.Bill{}}
	f := setup(t, idx)
	ctx := context.Background()

	b, err := f.uc.CreateBill(ctx, input("Acme", "2024-02-10", line("Soap", "10", "1")))
	require.NoError(t, err)
	assert.Contains(t, idx.indexed, b.ID)

	require.NoError(t, f.uc.DeleteBill(ctx, b.ID))
	assert.Equal(t, []string{b.ID}, idx.deleted)
	assert.ErrorIs(t, f.uc.DeleteBill(ctx, b.ID), model.ErrNotFound)
	assert.Equal(t, event.BillDeleted, f.events[len(f.events)-1].EventType)
}

func TestListBills_Filters(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	require.NoError(t, f.shops.Create(ctx, &model.Shop{ID: "s2", Name: "Corner"}))

	jan, err := f.uc.CreateBill(ctx, input("Acme", "2024-01-15", line("Soap", "10", "1")))
	require.NoError(t, err)
	feb, err := f.uc.CreateBill(ctx, input("Acme", "2024-02-10", line("Rice", "10", "1")))
	require.NoError(t, err)
	corner, err := f.uc.CreateBill(ctx, input("Corner", "2024-02-10", line("Soap", "10", "1")))
	require.NoError(t, err)

	all, err := f.uc.ListBills(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{corner.ID, feb.ID, jan.ID}, ids(all))

	got, err := f.uc.ListBills(ctx, &dto.BillFilters{Shop: "Acme", StartDate: "2024-02-01"})
	require.NoError(t, err)
	assert.Equal(t, []string{feb.ID}, ids(got))

	got, err = f.uc.ListBills(ctx, &dto.BillFilters{SearchQuery: "rice"})
	require.NoError(t, err)
	assert.Equal(t, []string{feb.ID}, ids(got))
}

func TestListBills_SearchUsesIndexAndFallsBack(t *testing.T) {
	idx := &fakeIndexer{indexed: map[string]model.Bill{}}
	f := setup(t, idx)
	ctx := context.Background()

	a, err := f.uc.CreateBill(ctx, input("Acme", "2024-01-15", line("Soap", "10", "1")))
	require.NoError(t, err)
	b, err := f.uc.CreateBill(ctx, input("Acme", "2024-02-10", line("Rice", "10", "1")))
	require.NoError(t, err)

	idx.hits = []string{a.ID}
	got, err := f.uc.ListBills(ctx, &dto.BillFilters{SearchQuery: "anything"})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, ids(got))

	idx.err = errors.New("cluster down")
	got, err = f.uc.ListBills(ctx, &dto.BillFilters{SearchQuery: "RICE"})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids(got))
}

func TestCheckBill(t *testing.T) {
	f := setup(t, nil)

	res, err := f.uc.CheckBill(context.Background(), input("Acme", "2024-02-10", line("Coke", "3", "2")))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.ErrorIs(t, res.Issues, ledger.ErrUnknownProduct)
	assert.True(t, res.Bill.TotalAmount.Equal(d("6")))
	assert.Empty(t, mustList(t, f), "checking never saves")
}

func mustList(t *testing.T, f *fixture) []model.Bill {
	bills, err := f.bills.List(context.Background())
	require.NoError(t, err)
	return bills
}

func ids(bills []model.Bill) []string {
	out := make([]string, 0, len(bills))
	for _, b := range bills {
		out = append(out, b.ID)
	}
	return out
}
