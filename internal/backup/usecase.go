package backup

import (
	"context"

	"github.com/fekuna/omnipos-ledger-service/internal/backup/dto"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
)

type UseCase interface {
	Export(ctx context.Context) (*model.Bundle, error)
	// Import validates raw as a whole before anything is overwritten.
	Import(ctx context.Context, raw []byte) (*dto.ImportSummary, error)
}
