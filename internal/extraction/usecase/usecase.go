package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/extraction"
	"github.com/fekuna/omnipos-ledger-service/internal/extraction/dto"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/product"
	"github.com/fekuna/omnipos-ledger-service/internal/shop"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// pricePlaces is the rounding applied when a unit price is derived from a line total.
const pricePlaces = 2

type extractionUseCase struct {
	extractor extraction.Extractor
	products  product.Repository
	shops     shop.Repository
	logger    logger.ZapLogger
	now       func() time.Time
}

// NewExtractionUseCase builds the draft flow. A nil extractor makes Draft return extraction.ErrUnavailable.
func NewExtractionUseCase(extractor extraction.Extractor, products product.Repository, shops shop.Repository, log logger.ZapLogger) extraction.UseCase {
	return &extractionUseCase{
		extractor: extractor,
		products:  products,
		shops:     shops,
		logger:    log,
		now:       time.Now,
	}
}

func (uc *extractionUseCase) Draft(ctx context.Context, input *dto.DraftInput) (*dto.Draft, error) {
	if uc.extractor == nil {
		return nil, extraction.ErrUnavailable
	}
	if len(input.Image) == 0 {
		return nil, &ledger.ValidationError{Err: ledger.ErrMissingField, Field: "image", Index: -1}
	}

	shops, err := uc.shops.List(ctx)
	if err != nil {
		return nil, err
	}
	products, err := uc.products.List(ctx)
	if err != nil {
		return nil, err
	}

	shopNames := make([]string, 0, len(shops))
	for _, s := range shops {
		shopNames = append(shopNames, s.Name)
	}
	productNames := make([]string, 0, len(products))
	for _, p := range products {
		productNames = append(productNames, p.Name)
	}

	partial, err := uc.extractor.Extract(ctx, input.Image, input.MimeType, shopNames, productNames)
	if err != nil {
		uc.logger.Error("bill extraction failed", zap.Error(err))
		return nil, err
	}

	b := uc.hydrate(partial)
	issues := ledger.ValidateBill(b, shops, products)
	if issues == nil {
		if s := ledger.FindShop(shops, b.ShopName); s != nil {
			b.ShopName = s.Name
		}
	}

	draft := &dto.Draft{
		Bill:          b,
		ReportedTotal: partial.TotalAmount,
		Valid:         issues == nil,
		Issues:        issues,
	}
	if partial.TotalAmount.Valid {
		draft.TotalMismatch = !partial.TotalAmount.Decimal.Equal(b.TotalAmount)
	}
	return draft, nil
}

// hydrate fills ids, defaults the date to today and derives missing unit prices from line totals.
// Bill totals are recomputed; the extractor's totals are never copied.
func (uc *extractionUseCase) hydrate(p *dto.PartialBill) *model.Bill {
	now := uc.now()
	b := &model.Bill{
		ID:            uuid.New().String(),
		ShopName:      strings.TrimSpace(p.ShopName),
		InvoiceNumber: strings.TrimSpace(p.InvoiceNumber),
		Date:          strings.TrimSpace(p.Date),
		Items:         make([]model.BillItem, 0, len(p.Items)),
		CreatedAt:     now.UnixMilli(),
	}
	if b.Date == "" {
		b.Date = now.Format(ledger.DateLayout)
	}

	for _, it := range p.Items {
		qty := decimal.Zero
		if it.Quantity.Valid {
			qty = it.Quantity.Decimal
		}
		b.Items = append(b.Items, model.BillItem{
			ID:          uuid.New().String(),
			ProductName: strings.TrimSpace(it.ProductName),
			RetailPrice: unitPrice(it, qty),
			Quantity:    qty,
		})
	}
	b.Recalculate()
	return b
}

func unitPrice(it dto.PartialItem, qty decimal.Decimal) decimal.Decimal {
	if it.RetailPrice.Valid && !it.RetailPrice.Decimal.IsZero() {
		return it.RetailPrice.Decimal
	}
	if it.Total.Valid && !qty.IsZero() {
		return it.Total.Decimal.DivRound(qty, pricePlaces)
	}
	return decimal.Zero
}
