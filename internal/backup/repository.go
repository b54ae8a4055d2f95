package backup

import (
	"context"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
)

// Repository swaps every collection for the bundle's content in one step: either all three
// collections are replaced or none is.
type Repository interface {
	Restore(ctx context.Context, bundle *model.Bundle) error
}
