package bill

import (
	"context"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
)

// Repository stores bills together with their items.
type Repository interface {
	List(ctx context.Context) ([]model.Bill, error)
	FindByID(ctx context.Context, id string) (*model.Bill, error)
	Create(ctx context.Context, bill *model.Bill) error
	// Replace and Delete return model.ErrNotFound when the id is unknown.
	Replace(ctx context.Context, bill *model.Bill) error
	Delete(ctx context.Context, id string) error
}

// Indexer keeps the full-text search index in step with the store.
type Indexer interface {
	IndexBill(ctx context.Context, bill *model.Bill) error
	DeleteBill(ctx context.Context, id string) error
	// SearchBillIDs returns the ids of bills matching query, best match first.
	SearchBillIDs(ctx context.Context, query string) ([]string, error)
}
