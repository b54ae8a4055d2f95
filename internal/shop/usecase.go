package shop

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/shop/dto"
)

var ErrShopNotFound = fmt.Errorf("shop: %w", model.ErrNotFound)

type UseCase interface {
	CreateShop(ctx context.Context, input *dto.CreateShopInput) (*model.Shop, error)
	GetShop(ctx context.Context, id string) (*model.Shop, error)
	ListShops(ctx context.Context) ([]model.Shop, error)
	// UpdateShop replaces the record; a changed name cascades to bills like RenameShop.
	UpdateShop(ctx context.Context, input *dto.UpdateShopInput) (*dto.RenameResult, error)
	DeleteShop(ctx context.Context, id string) error
	RenameShop(ctx context.Context, input *dto.RenameShopInput) (*dto.RenameResult, error)
}
