package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/fekuna/omnipos-ledger-service/internal/backup"
	"github.com/fekuna/omnipos-ledger-service/internal/httpapi"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/gorilla/mux"
)

const maxBundleBytes = 64 << 20

type BackupHandler struct {
	uc     backup.UseCase
	logger logger.ZapLogger
}

func NewBackupHandler(uc backup.UseCase, log logger.ZapLogger) *BackupHandler {
	return &BackupHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *BackupHandler) Register(r *mux.Router) {
	r.HandleFunc("/backup/export", h.Export).Methods(http.MethodGet)
	r.HandleFunc("/backup/import", h.Import).Methods(http.MethodPost)
}

func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.uc.Export(r.Context())
	if err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}
	date := bundle.ExportDate
	if len(date) >= 10 {
		date = date[:10]
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ledger-backup-%s.json"`, date))
	httpapi.JSON(w, http.StatusOK, bundle)
}

func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBundleBytes))
	if err != nil {
		httpapi.Error(w, r, h.logger, fmt.Errorf("%w: %v", httpapi.ErrBadRequest, err))
		return
	}

	summary, err := h.uc.Import(r.Context(), raw)
	if err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, summary)
}
