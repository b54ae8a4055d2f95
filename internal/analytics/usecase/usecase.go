package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/analytics"
	"github.com/fekuna/omnipos-ledger-service/internal/analytics/dto"
	"github.com/fekuna/omnipos-ledger-service/internal/bill"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/product"
	"github.com/fekuna/omnipos-ledger-service/internal/shop"
	"github.com/fekuna/omnipos-ledger-service/pkg/cache"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"go.uber.org/zap"
)

const keyPrefix = "analytics:"

// Cache stores computed results. *cache.RedisClient implements it.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) (int, error)
}

type Config struct {
	CacheTTL    time.Duration
	TopProducts int
}

type analyticsUseCase struct {
	bills    bill.Repository
	products product.Repository
	shops    shop.Repository
	cache    Cache
	cfg      Config
	logger   logger.ZapLogger
}

// NewAnalyticsUseCase builds the read side. cache may be nil, in which case every call recomputes.
func NewAnalyticsUseCase(bills bill.Repository, products product.Repository, shops shop.Repository, c Cache, cfg Config, log logger.ZapLogger) analytics.UseCase {
	if cfg.TopProducts <= 0 {
		cfg.TopProducts = ledger.DefaultTopProducts
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &analyticsUseCase{
		bills:    bills,
		products: products,
		shops:    shops,
		cache:    c,
		cfg:      cfg,
		logger:   log,
	}
}

func (uc *analyticsUseCase) Dashboard(ctx context.Context, filter ledger.Filter) (*dto.Dashboard, error) {
	return remember(ctx, uc, cacheKey("dashboard", filter), func() (*dto.Dashboard, error) {
		bills, costs, err := uc.load(ctx)
		if err != nil {
			return nil, err
		}
		m := ledger.Aggregate(bills, filter, costs)
		return &dto.Dashboard{
			Filter:      filter,
			Metrics:     m,
			TopProducts: m.TopProducts(uc.cfg.TopProducts),
		}, nil
	})
}

func (uc *analyticsUseCase) ShopDetail(ctx context.Context, shopName string) (*dto.ShopDetail, error) {
	return remember(ctx, uc, cacheKey("shop", shopName), func() (*dto.ShopDetail, error) {
		bills, costs, err := uc.load(ctx)
		if err != nil {
			return nil, err
		}
		shops, err := uc.shops.List(ctx)
		if err != nil {
			return nil, err
		}

		own := make([]model.Bill, 0)
		for _, b := range bills {
			if b.ShopName == shopName {
				own = append(own, b)
			}
		}
		sort.SliceStable(own, func(i, j int) bool {
			if own[i].Date != own[j].Date {
				return own[i].Date > own[j].Date
			}
			return own[i].CreatedAt > own[j].CreatedAt
		})

		return &dto.ShopDetail{
			Shop:  ledger.FindShop(shops, shopName),
			Stats: ledger.ShopSummary(own, shopName, costs),
			Bills: own,
		}, nil
	})
}

func (uc *analyticsUseCase) ShopLeaderboard(ctx context.Context) ([]ledger.ShopStats, error) {
	return remember(ctx, uc, keyPrefix+"leaderboard", func() ([]ledger.ShopStats, error) {
		bills, costs, err := uc.load(ctx)
		if err != nil {
			return nil, err
		}
		shops, err := uc.shops.List(ctx)
		if err != nil {
			return nil, err
		}
		return ledger.Leaderboard(bills, shops, costs), nil
	})
}

func (uc *analyticsUseCase) Invalidate(ctx context.Context) error {
	if uc.cache == nil {
		return nil
	}
	n, err := uc.cache.DeletePattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidate analytics cache: %w", err)
	}
	uc.logger.Debug("analytics cache invalidated", zap.Int("keys", n))
	return nil
}

// load reads bills and the product catalog fresh from the store.
func (uc *analyticsUseCase) load(ctx context.Context) ([]model.Bill, *ledger.CostResolver, error) {
	bills, err := uc.bills.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	products, err := uc.products.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	return bills, ledger.NewCostResolver(products), nil
}

// remember serves key from the cache or computes, stores and returns it.
// Cache failures are logged and never fail the request.
func remember[T any](ctx context.Context, uc *analyticsUseCase, key string, compute func() (T, error)) (T, error) {
	if uc.cache != nil {
		raw, err := uc.cache.Get(ctx, key)
		switch {
		case err == nil:
			var hit T
			if err := json.Unmarshal(raw, &hit); err == nil {
				return hit, nil
			}
			uc.logger.Warn("dropping unreadable cache entry", zap.String("key", key))
		case !errors.Is(err, cache.ErrMiss):
			uc.logger.Warn("analytics cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	out, err := compute()
	if err != nil {
		return out, err
	}

	if uc.cache != nil {
		if data, err := json.Marshal(out); err == nil {
			if err := uc.cache.Set(ctx, key, data, uc.cfg.CacheTTL); err != nil {
				uc.logger.Warn("analytics cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return out, nil
}

func cacheKey(kind string, v interface{}) string {
	data, _ := json.Marshal(v)
	return fmt.Sprintf("%s%s:%x", keyPrefix, kind, md5.Sum(data))
}
