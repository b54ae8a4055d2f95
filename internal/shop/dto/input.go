package dto

import "github.com/fekuna/omnipos-ledger-service/internal/model"

type CreateShopInput struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

type UpdateShopInput struct {
	ID       string `json:"-"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

// RenameShopInput names the shop by id, or by its current name when the caller has no id
// (a shop only ever seen on bills).
type RenameShopInput struct {
	ShopID      string `json:"shopId,omitempty"`
	CurrentName string `json:"currentName,omitempty"`
	NewName     string `json:"newName"`
}

type Outcome string

const (
	// OutcomeRenamed: the master was renamed and its bills followed.
	OutcomeRenamed Outcome = "renamed"
	// OutcomeCreated: no master existed, one was created with the new name and bills were left alone.
	OutcomeCreated Outcome = "created"
)

type RenameResult struct {
	Outcome      Outcome     `json:"outcome"`
	Shop         *model.Shop `json:"shop"`
	OldName      string      `json:"oldName"`
	NewName      string      `json:"newName"`
	BillsUpdated int         `json:"billsUpdated"`
}
