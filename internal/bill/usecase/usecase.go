package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/bill"
	"github.com/fekuna/omnipos-ledger-service/internal/bill/dto"
	"github.com/fekuna/omnipos-ledger-service/internal/event"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/product"
	"github.com/fekuna/omnipos-ledger-service/internal/shop"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type billUseCase struct {
	repo      bill.Repository
	products  product.Repository
	shops     shop.Repository
	indexer   bill.Indexer
	publisher event.Publisher
	logger    logger.ZapLogger
	now       func() time.Time
}

// NewBillUseCase wires the bill write path. indexer may be nil when search is disabled.
func NewBillUseCase(repo bill.Repository, products product.Repository, shops shop.Repository, indexer bill.Indexer, publisher event.Publisher, log logger.ZapLogger) bill.UseCase {
	return &billUseCase{
		repo:      repo,
		products:  products,
		shops:     shops,
		indexer:   indexer,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

func (uc *billUseCase) CreateBill(ctx context.Context, input *dto.SaveBillInput) (*model.Bill, error) {
	b := uc.build(input)
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	b.CreatedAt = uc.now().UnixMilli()

	if err := uc.validate(ctx, b); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	uc.sync(ctx, b)
	uc.publish(ctx, event.BillSaved, b.ID)
	return b, nil
}

func (uc *billUseCase) GetBill(ctx context.Context, id string) (*model.Bill, error) {
	return uc.repo.FindByID(ctx, id)
}

// ListBills filters by shop and inclusive date range, then by the search query, newest first.
// Search goes through the index when there is one and falls back to matching in the store.
func (uc *billUseCase) ListBills(ctx context.Context, filters *dto.BillFilters) ([]model.Bill, error) {
	bills, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if filters == nil {
		filters = &dto.BillFilters{}
	}

	bills = ledger.FilterBills(bills, ledger.Filter{
		Shop:      filters.Shop,
		StartDate: filters.StartDate,
		EndDate:   filters.EndDate,
	})

	if q := strings.TrimSpace(filters.SearchQuery); q != "" {
		bills = uc.search(ctx, bills, q)
	}

	sort.SliceStable(bills, func(i, j int) bool {
		if bills[i].Date != bills[j].Date {
			return bills[i].Date > bills[j].Date
		}
		return bills[i].CreatedAt > bills[j].CreatedAt
	})
	return bills, nil
}

// UpdateBill replaces the bill wholesale; id and creation time are kept.
func (uc *billUseCase) UpdateBill(ctx context.Context, input *dto.SaveBillInput) (*model.Bill, error) {
	existing, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("bill %s: %w", input.ID, model.ErrNotFound)
	}

	b := uc.build(input)
	b.CreatedAt = existing.CreatedAt

	if err := uc.validate(ctx, b); err != nil {
		return nil, err
	}
	if err := uc.repo.Replace(ctx, b); err != nil {
		return nil, err
	}

	uc.sync(ctx, b)
	uc.publish(ctx, event.BillSaved, b.ID)
	return b, nil
}

func (uc *billUseCase) DeleteBill(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete bill %s: %w", id, err)
	}

	if uc.indexer != nil {
		if err := uc.indexer.DeleteBill(ctx, id); err != nil {
			uc.logger.Warn("failed to remove bill from index", zap.String("bill_id", id), zap.Error(err))
		}
	}
	uc.publish(ctx, event.BillDeleted, id)
	return nil
}

func (uc *billUseCase) CheckBill(ctx context.Context, input *dto.SaveBillInput) (*dto.CheckResult, error) {
	b := uc.build(input)
	err := uc.validate(ctx, b)
	if err != nil && !ledger.IsValidation(err) {
		return nil, err
	}
	return &dto.CheckResult{Bill: b, Valid: err == nil, Issues: err}, nil
}

// build turns the input into a bill with item ids assigned and totals recomputed.
func (uc *billUseCase) build(input *dto.SaveBillInput) *model.Bill {
	b := &model.Bill{
		ID:            input.ID,
		ShopName:      strings.TrimSpace(input.ShopName),
		InvoiceNumber: strings.TrimSpace(input.InvoiceNumber),
		Date:          strings.TrimSpace(input.Date),
		Items:         make([]model.BillItem, 0, len(input.Items)),
	}
	for _, in := range input.Items {
		id := in.ID
		if id == "" {
			id = uuid.New().String()
		}
		b.Items = append(b.Items, model.BillItem{
			ID:          id,
			ProductName: in.ProductName,
			RetailPrice: in.RetailPrice,
			Quantity:    in.Quantity,
			Mrp:         in.Mrp,
		})
	}
	b.Recalculate()
	return b
}

// validate reads the masters fresh and checks b against them. A shop name that matches a master
// ignoring case is stored with the master's spelling so renames find it.
func (uc *billUseCase) validate(ctx context.Context, b *model.Bill) error {
	shops, err := uc.shops.List(ctx)
	if err != nil {
		return err
	}
	products, err := uc.products.List(ctx)
	if err != nil {
		return err
	}

	if err := ledger.ValidateBill(b, shops, products); err != nil {
		return err
	}
	if s := ledger.FindShop(shops, b.ShopName); s != nil {
		b.ShopName = s.Name
	}
	return nil
}

func (uc *billUseCase) search(ctx context.Context, bills []model.Bill, q string) []model.Bill {
	if uc.indexer != nil {
		ids, err := uc.indexer.SearchBillIDs(ctx, q)
		if err == nil {
			hit := make(map[string]struct{}, len(ids))
			for _, id := range ids {
				hit[id] = struct{}{}
			}
			out := make([]model.Bill, 0, len(ids))
			for _, b := range bills {
				if _, ok := hit[b.ID]; ok {
					out = append(out, b)
				}
			}
			return out
		}
		uc.logger.Error("bill search failed, falling back to store", zap.Error(err))
	}

	needle := ledger.NormalizeName(q)
	out := make([]model.Bill, 0)
	for _, b := range bills {
		if matchText(&b, needle) {
			out = append(out, b)
		}
	}
	return out
}

func matchText(b *model.Bill, needle string) bool {
	if strings.Contains(ledger.NormalizeName(b.ShopName), needle) ||
		strings.Contains(ledger.NormalizeName(b.InvoiceNumber), needle) {
		return true
	}
	for _, it := range b.Items {
		if strings.Contains(ledger.NormalizeName(it.ProductName), needle) {
			return true
		}
	}
	return false
}

func (uc *billUseCase) sync(ctx context.Context, b *model.Bill) {
	if uc.indexer == nil {
		return
	}
	if err := uc.indexer.IndexBill(ctx, b); err != nil {
		uc.logger.Error("failed to index bill", zap.String("bill_id", b.ID), zap.Error(err))
	}
}

func (uc *billUseCase) publish(ctx context.Context, t event.Type, id string) {
	if err := uc.publisher.Publish(ctx, event.New(t, id)); err != nil {
		uc.logger.Warn("failed to publish bill event", zap.String("bill_id", id), zap.Error(err))
	}
}
