package analytics

import (
	"context"

	"github.com/fekuna/omnipos-ledger-service/internal/analytics/dto"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger"
)

type UseCase interface {
	Dashboard(ctx context.Context, filter ledger.Filter) (*dto.Dashboard, error)
	ShopDetail(ctx context.Context, shopName string) (*dto.ShopDetail, error)
	ShopLeaderboard(ctx context.Context) ([]ledger.ShopStats, error)
	// Invalidate drops every cached result.
	Invalidate(ctx context.Context) error
}
