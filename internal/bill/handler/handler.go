package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-ledger-service/internal/bill"
	"github.com/fekuna/omnipos-ledger-service/internal/bill/dto"
	"github.com/fekuna/omnipos-ledger-service/internal/httpapi"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/gorilla/mux"
)

type BillHandler struct {
	uc     bill.UseCase
	logger logger.ZapLogger
}

func NewBillHandler(uc bill.UseCase, log logger.ZapLogger) *BillHandler {
	return &BillHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *BillHandler) Register(r *mux.Router) {
	r.HandleFunc("/bills", h.ListBills).Methods(http.MethodGet)
	r.HandleFunc("/bills", h.CreateBill).Methods(http.MethodPost)
	r.HandleFunc("/bills/check", h.CheckBill).Methods(http.MethodPost)
	r.HandleFunc("/bills/{id}", h.GetBill).Methods(http.MethodGet)
	r.HandleFunc("/bills/{id}", h.UpdateBill).Methods(http.MethodPut)
	r.HandleFunc("/bills/{id}", h.DeleteBill).Methods(http.MethodDelete)
}

type checkResponse struct {
	Bill   *model.Bill     `json:"bill"`
	Valid  bool            `json:"valid"`
	Issues []httpapi.Issue `json:"issues"`
}

func (h *BillHandler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var input dto.SaveBillInput
	if err := httpapi.Decode(r, &input); err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}

	b, err := h.uc.CreateBill(r.Context(), &input)
	if err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusCreated, b)
}

func (h *BillHandler) CheckBill(w http.ResponseWriter, r *http.Request) {
	var input dto.SaveBillInput
	if err := httpapi.Decode(r, &input); err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}

	res, err := h.uc.CheckBill(r.Context(), &input)
	if err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}

	out := checkResponse{Bill: res.Bill, Valid: res.Valid, Issues: []httpapi.Issue{}}
	if res.Issues != nil {
		_, body := httpapi.Render(res.Issues, r.Header.Get("Accept-Language"))
		out.Issues = body.Issues
	}
	httpapi.JSON(w, http.StatusOK, out)
}

func (h *BillHandler) GetBill(w http.ResponseWriter, r *http.Request) {
	b, err := h.uc.GetBill(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}
	if b == nil {
		httpapi.Error(w, r, h.logger, model.ErrNotFound)
		return
	}
	httpapi.JSON(w, http.StatusOK, b)
}

func (h *BillHandler) ListBills(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &dto.BillFilters{
		Shop:        q.Get("shop"),
		StartDate:   q.Get("startDate"),
		EndDate:     q.Get("endDate"),
		SearchQuery: q.Get("q"),
	}

	bills, err := h.uc.ListBills(r.Context(), filters)
	if err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, map[string]interface{}{"bills": bills, "total": len(bills)})
}

func (h *BillHandler) UpdateBill(w http.ResponseWriter, r *http.Request) {
	var input dto.SaveBillInput
	if err := httpapi.Decode(r, &input); err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}
	input.ID = mux.Vars(r)["id"]

	b, err := h.uc.UpdateBill(r.Context(), &input)
	if err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, b)
}

func (h *BillHandler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteBill(r.Context(), mux.Vars(r)["id"]); err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
