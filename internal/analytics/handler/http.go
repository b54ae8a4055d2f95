package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-ledger-service/internal/analytics"
	"github.com/fekuna/omnipos-ledger-service/internal/httpapi"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/gorilla/mux"
)

type AnalyticsHandler struct {
	uc     analytics.UseCase
	logger logger.ZapLogger
}

func NewAnalyticsHandler(uc analytics.UseCase, log logger.ZapLogger) *AnalyticsHandler {
	return &AnalyticsHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *AnalyticsHandler) Register(r *mux.Router) {
	r.HandleFunc("/analytics/dashboard", h.Dashboard).Methods(http.MethodGet)
	r.HandleFunc("/analytics/shops", h.ShopLeaderboard).Methods(http.MethodGet)
	r.HandleFunc("/analytics/shops/{name}", h.ShopDetail).Methods(http.MethodGet)
}

func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ledger.Filter{
		Shop:      q.Get("shop"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	}

	res, err := h.uc.Dashboard(r.Context(), filter)
	if err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, res)
}

func (h *AnalyticsHandler) ShopDetail(w http.ResponseWriter, r *http.Request) {
	res, err := h.uc.ShopDetail(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, res)
}

func (h *AnalyticsHandler) ShopLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.uc.ShopLeaderboard(r.Context())
	if err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, map[string]interface{}{"shops": board})
}
