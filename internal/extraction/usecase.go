package extraction

import (
	"context"

	"github.com/fekuna/omnipos-ledger-service/internal/extraction/dto"
)

type UseCase interface {
	// Draft extracts a bill from an image and validates it. Nothing is saved.
	Draft(ctx context.Context, input *dto.DraftInput) (*dto.Draft, error)
}
