package extraction

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-ledger-service/internal/extraction/dto"
)

// ErrUnavailable means no extractor is configured.
var ErrUnavailable = errors.New("bill extraction is not configured")

// Extractor reads a bill photo. knownShops and knownProducts steer the model toward master names,
// but nothing it returns is trusted until validated.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string, knownShops, knownProducts []string) (*dto.PartialBill, error)
}
