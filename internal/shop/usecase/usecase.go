package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/bill"
	"github.com/fekuna/omnipos-ledger-service/internal/event"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/shop"
	"github.com/fekuna/omnipos-ledger-service/internal/shop/dto"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	lockTTL      = 30 * time.Second
	lockAttempts = 3
	lockBackoff  = 100 * time.Millisecond
)

// Locker serializes renames of the same shop across instances. *cache.RedisClient implements it.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

type shopUseCase struct {
	repo      shop.Repository
	bills     bill.Repository
	indexer   bill.Indexer
	locker    Locker
	publisher event.Publisher
	logger    logger.ZapLogger
}

// NewShopUseCase wires the shop master. indexer and locker may be nil.
func NewShopUseCase(repo shop.Repository, bills bill.Repository, indexer bill.Indexer, locker Locker, publisher event.Publisher, log logger.ZapLogger) shop.UseCase {
	return &shopUseCase{
		repo:      repo,
		bills:     bills,
		indexer:   indexer,
		locker:    locker,
		publisher: publisher,
		logger:    log,
	}
}

func (uc *shopUseCase) CreateShop(ctx context.Context, input *dto.CreateShopInput) (*model.Shop, error) {
	shops, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if err := ledger.ValidateShopName(name, shops, ""); err != nil {
		return nil, err
	}

	id := input.ID
	if id == "" {
		id = uuid.New().String()
	}
	s := &model.Shop{ID: id, Name: name, Location: strings.TrimSpace(input.Location)}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}

	uc.publish(ctx, event.ShopChanged, s.ID)
	return s, nil
}

func (uc *shopUseCase) GetShop(ctx context.Context, id string) (*model.Shop, error) {
	return uc.repo.FindByID(ctx, id)
}

func (uc *shopUseCase) ListShops(ctx context.Context) ([]model.Shop, error) {
	shops, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(shops, func(i, j int) bool {
		return ledger.NormalizeName(shops[i].Name) < ledger.NormalizeName(shops[j].Name)
	})
	return shops, nil
}

func (uc *shopUseCase) UpdateShop(ctx context.Context, input *dto.UpdateShopInput) (*dto.RenameResult, error) {
	shops, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	current := findByID(shops, input.ID)
	if current == nil {
		return nil, notFound(input.ID)
	}

	name := strings.TrimSpace(input.Name)
	if err := ledger.ValidateShopName(name, shops, current.ID); err != nil {
		return nil, err
	}

	updated := *current
	updated.Name = name
	updated.Location = strings.TrimSpace(input.Location)
	return uc.cascade(ctx, current.Name, &updated)
}

// DeleteShop removes the master only. Bills keep the shop name they were saved with.
func (uc *shopUseCase) DeleteShop(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return notFound(id)
		}
		return err
	}
	uc.publish(ctx, event.ShopChanged, id)
	return nil
}

// RenameShop renames a master and moves every bill carrying the old name to the new one.
// Without an id, a current name unknown to the master list creates a new master instead and
// bills are not touched, since nothing anchors the cascade.
func (uc *shopUseCase) RenameShop(ctx context.Context, input *dto.RenameShopInput) (*dto.RenameResult, error) {
	newName := strings.TrimSpace(input.NewName)

	shops, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var current *model.Shop
	if input.ShopID != "" {
		current = findByID(shops, input.ShopID)
		if current == nil {
			return nil, notFound(input.ShopID)
		}
	} else {
		if strings.TrimSpace(input.CurrentName) == "" {
			return nil, &ledger.ValidationError{Err: ledger.ErrMissingField, Field: "currentName", Index: -1}
		}
		current = ledger.FindShop(shops, input.CurrentName)
	}

	if current == nil {
		if err := ledger.ValidateShopName(newName, shops, ""); err != nil {
			return nil, err
		}
		created := &model.Shop{ID: uuid.New().String(), Name: newName}
		if err := uc.repo.Create(ctx, created); err != nil {
			return nil, err
		}
		uc.logger.Info("rename created shop master",
			zap.String("shop_id", created.ID),
			zap.String("current_name", input.CurrentName),
			zap.String("new_name", newName))
		uc.publish(ctx, event.ShopChanged, created.ID)
		return &dto.RenameResult{
			Outcome: dto.OutcomeCreated,
			Shop:    created,
			OldName: input.CurrentName,
			NewName: newName,
		}, nil
	}

	if err := ledger.ValidateShopName(newName, shops, current.ID); err != nil {
		return nil, err
	}
	updated := *current
	updated.Name = newName
	return uc.cascade(ctx, current.Name, &updated)
}

// cascade writes the shop, then rewrites every bill whose shop name equals oldName exactly.
// The bills are read after the shop write so the cascade sees the current store.
func (uc *shopUseCase) cascade(ctx context.Context, oldName string, updated *model.Shop) (*dto.RenameResult, error) {
	result := &dto.RenameResult{
		Outcome: dto.OutcomeRenamed,
		Shop:    updated,
		OldName: oldName,
		NewName: updated.Name,
	}

	if updated.Name == oldName {
		if err := uc.repo.Replace(ctx, updated); err != nil {
			return nil, err
		}
		uc.publish(ctx, event.ShopChanged, updated.ID)
		return result, nil
	}

	release, err := uc.lock(ctx, updated.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := uc.repo.Replace(ctx, updated); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, notFound(updated.ID)
		}
		return nil, err
	}

	partial := func(stage string, done int, pending []string, cause error) error {
		uc.logger.Error("shop rename cascade stopped",
			zap.String("shop_id", updated.ID),
			zap.String("stage", stage),
			zap.Int("bills_updated", done),
			zap.Int("bills_pending", len(pending)),
			zap.Error(cause))
		// the master did change
		uc.publish(ctx, event.ShopRenamed, updated.ID)
		return &ledger.PartialCascadeError{
			Stage:          stage,
			ShopID:         updated.ID,
			OldName:        oldName,
			NewName:        updated.Name,
			BillsUpdated:   done,
			PendingBillIDs: pending,
			Err:            cause,
		}
	}

	bills, err := uc.bills.List(ctx)
	if err != nil {
		return nil, partial(ledger.StageLoadBills, 0, nil, err)
	}

	affected := make([]model.Bill, 0)
	for _, b := range bills {
		if b.ShopName == oldName {
			affected = append(affected, b)
		}
	}

	for i := range affected {
		b := &affected[i]
		b.ShopName = updated.Name
		if err := uc.bills.Replace(ctx, b); err != nil {
			pending := make([]string, 0, len(affected)-i)
			for _, rest := range affected[i:] {
				pending = append(pending, rest.ID)
			}
			return nil, partial(ledger.StageUpdateBills, i, pending, err)
		}
		result.BillsUpdated++
		uc.reindex(ctx, b)
	}

	uc.logger.Info("shop renamed",
		zap.String("shop_id", updated.ID),
		zap.String("old_name", oldName),
		zap.String("new_name", updated.Name),
		zap.Int("bills_updated", result.BillsUpdated))
	uc.publish(ctx, event.ShopRenamed, updated.ID)
	return result, nil
}

func (uc *shopUseCase) lock(ctx context.Context, shopID string) (func(), error) {
	if uc.locker == nil {
		return func() {}, nil
	}

	key := fmt.Sprintf("lock:shop-rename:%s", shopID)
	value := uuid.New().String()
	for i := 0; i < lockAttempts; i++ {
		ok, err := uc.locker.AcquireLock(ctx, key, value, lockTTL)
		if err != nil {
			uc.logger.Error("failed to acquire rename lock", zap.String("key", key), zap.Error(err))
		}
		if ok {
			return func() {
				if err := uc.locker.ReleaseLock(context.Background(), key, value); err != nil {
					uc.logger.Warn("failed to release rename lock", zap.String("key", key), zap.Error(err))
				}
			}, nil
		}
		if i == lockAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockBackoff):
		}
	}
	return nil, fmt.Errorf("rename shop %s: %w", shopID, model.ErrBusy)
}

func (uc *shopUseCase) reindex(ctx context.Context, b *model.Bill) {
	if uc.indexer == nil {
		return
	}
	if err := uc.indexer.IndexBill(ctx, b); err != nil {
		uc.logger.Warn("failed to reindex renamed bill", zap.String("bill_id", b.ID), zap.Error(err))
	}
}

func (uc *shopUseCase) publish(ctx context.Context, t event.Type, id string) {
	if err := uc.publisher.Publish(ctx, event.New(t, id)); err != nil {
		uc.logger.Warn("failed to publish shop event", zap.String("shop_id", id), zap.Error(err))
	}
}

// notFound wraps shop.ErrShopNotFound with the requested id.
func notFound(id string) error {
	return fmt.Errorf("%w: %s", shop.ErrShopNotFound, id)
}

func findByID(shops []model.Shop, id string) *model.Shop {
	for i := range shops {
		if shops[i].ID == id {
			return &shops[i]
		}
	}
	return nil
}
