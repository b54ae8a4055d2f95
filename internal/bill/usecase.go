package bill

import (
	"context"

	"github.com/fekuna/omnipos-ledger-service/internal/bill/dto"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
)

type UseCase interface {
	CreateBill(ctx context.Context, input *dto.SaveBillInput) (*model.Bill, error)
	GetBill(ctx context.Context, id string) (*model.Bill, error)
	ListBills(ctx context.Context, filters *dto.BillFilters) ([]model.Bill, error)
	UpdateBill(ctx context.Context, input *dto.SaveBillInput) (*model.Bill, error)
	DeleteBill(ctx context.Context, id string) error
	// CheckBill recalculates and validates a draft without saving it.
	CheckBill(ctx context.Context, input *dto.SaveBillInput) (*dto.CheckResult, error)
}
