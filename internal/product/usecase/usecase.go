package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fekuna/omnipos-ledger-service/internal/event"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/product"
	"github.com/fekuna/omnipos-ledger-service/internal/product/dto"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type productUseCase struct {
	repo      product.Repository
	publisher event.Publisher
	logger    logger.ZapLogger
}

func NewProductUseCase(repo product.Repository, publisher event.Publisher, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:      repo,
		publisher: publisher,
		logger:    log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	existing, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if err := ledger.ValidateProductName(name, existing, ""); err != nil {
		return nil, err
	}
	if err := validateAmounts(input.ManufacturingCost, input.DefaultRetailPrice, input.DefaultMrp); err != nil {
		return nil, err
	}

	id := input.ID
	if id == "" {
		id = uuid.New().String()
	}
	p := &model.Product{
		ID:                 id,
		Name:               name,
		ManufacturingCost:  input.ManufacturingCost,
		DefaultRetailPrice: input.DefaultRetailPrice,
		DefaultMrp:         input.DefaultMrp,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	uc.publish(ctx, p.ID)
	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return uc.repo.FindByID(ctx, id)
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, error) {
	products, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if filters != nil && filters.SearchQuery != "" {
		q := ledger.NormalizeName(filters.SearchQuery)
		matched := products[:0]
		for _, p := range products {
			if strings.Contains(ledger.NormalizeName(p.Name), q) {
				matched = append(matched, p)
			}
		}
		products = matched
	}
	sort.SliceStable(products, func(i, j int) bool {
		return ledger.NormalizeName(products[i].Name) < ledger.NormalizeName(products[j].Name)
	})
	return products, nil
}

// UpdateProduct replaces the whole record. Bills keep the product name they were saved with.
func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	existing, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if err := ledger.ValidateProductName(name, existing, input.ID); err != nil {
		return nil, err
	}
	if err := validateAmounts(input.ManufacturingCost, input.DefaultRetailPrice, input.DefaultMrp); err != nil {
		return nil, err
	}

	p := &model.Product{
		ID:                 input.ID,
		Name:               name,
		ManufacturingCost:  input.ManufacturingCost,
		DefaultRetailPrice: input.DefaultRetailPrice,
		DefaultMrp:         input.DefaultMrp,
	}
	if err := uc.repo.Replace(ctx, p); err != nil {
		return nil, fmt.Errorf("replace product %s: %w", input.ID, err)
	}

	uc.publish(ctx, p.ID)
	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	uc.publish(ctx, id)
	return nil
}

func (uc *productUseCase) publish(ctx context.Context, id string) {
	if err := uc.publisher.Publish(ctx, event.New(event.ProductChanged, id)); err != nil {
		uc.logger.Warn("failed to publish product event", zap.String("product_id", id), zap.Error(err))
	}
}

func validateAmounts(cost, price decimal.Decimal, mrp decimal.NullDecimal) error {
	var errs []error
	if cost.IsNegative() {
		errs = append(errs, &ledger.ValidationError{Err: ledger.ErrInvalidAmount, Field: "manufacturingCost", Value: cost.String(), Index: -1})
	}
	if price.IsNegative() {
		errs = append(errs, &ledger.ValidationError{Err: ledger.ErrInvalidAmount, Field: "defaultRetailPrice", Value: price.String(), Index: -1})
	}
	if mrp.Valid && mrp.Decimal.IsNegative() {
		errs = append(errs, &ledger.ValidationError{Err: ledger.ErrInvalidAmount, Field: "defaultMrp", Value: mrp.Decimal.String(), Index: -1})
	}
	return errors.Join(errs...)
}
