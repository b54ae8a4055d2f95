package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-ledger-service/internal/httpapi"
	"github.com/fekuna/omnipos-ledger-service/internal/shop"
	"github.com/fekuna/omnipos-ledger-service/internal/shop/dto"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/gorilla/mux"
)

type ShopHandler struct {
	uc     shop.UseCase
	logger logger.ZapLogger
}

func NewShopHandler(uc shop.UseCase, log logger.ZapLogger) *ShopHandler {
	return &ShopHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ShopHandler) Register(r *mux.Router) {
	r.HandleFunc("/shops", h.ListShops).Methods(http.MethodGet)
	r.HandleFunc("/shops", h.CreateShop).Methods(http.MethodPost)
	r.HandleFunc("/shops/rename", h.RenameShop).Methods(http.MethodPost)
	r.HandleFunc("/shops/{id}", h.GetShop).Methods(http.MethodGet)
	r.HandleFunc("/shops/{id}", h.UpdateShop).Methods(http.MethodPut)
	r.HandleFunc("/shops/{id}", h.DeleteShop).Methods(http.MethodDelete)
}

func (h *ShopHandler) CreateShop(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateShopInput
	if err := httpapi.Decode(r, &input); err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}

	s, err := h.uc.CreateShop(r.Context(), &input)
	if err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusCreated, s)
}

func (h *ShopHandler) GetShop(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s, err := h.uc.GetShop(r.Context(), id)
	if err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}
	if s == nil {
		httpapi.Error(w, r, h.logger, shop.ErrShopNotFound)
		return
	}
	httpapi.JSON(w, http.StatusOK, s)
}

func (h *ShopHandler) ListShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.uc.ListShops(r.Context())
	if err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, map[string]interface{}{"shops": shops})
}

func (h *ShopHandler) UpdateShop(w http.ResponseWriter, r *http.Request) {
	var input dto.UpdateShopInput
	if err := httpapi.Decode(r, &input); err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}
	input.ID = mux.Vars(r)["id"]

	res, err := h.uc.UpdateShop(r.Context(), &input)
	if err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, res)
}

func (h *ShopHandler) RenameShop(w http.ResponseWriter, r *http.Request) {
	var input dto.RenameShopInput
	if err := httpapi.Decode(r, &input); err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}

	res, err := h.uc.RenameShop(r.Context(), &input)
	if err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}
	status := http.StatusOK
	if res.Outcome == dto.OutcomeCreated {
		status = http.StatusCreated
	}
	httpapi.JSON(w, status, res)
}

func (h *ShopHandler) DeleteShop(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteShop(r.Context(), mux.Vars(r)["id"]); err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
