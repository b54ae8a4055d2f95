package product

import (
	"context"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
)

type Repository interface {
	List(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id string) (*model.Product, error)
	Create(ctx context.Context, product *model.Product) error
	// Replace and Delete return model.ErrNotFound when the id is unknown.
	Replace(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) error
}
