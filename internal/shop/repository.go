package shop

import (
	"context"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
)

type Repository interface {
	List(ctx context.Context) ([]model.Shop, error)
	FindByID(ctx context.Context, id string) (*model.Shop, error)
	Create(ctx context.Context, shop *model.Shop) error
	// Replace and Delete return model.ErrNotFound when the id is unknown.
	Replace(ctx context.Context, shop *model.Shop) error
	Delete(ctx context.Context, id string) error
}
