package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-ledger-service/internal/extraction"
	"github.com/fekuna/omnipos-ledger-service/internal/extraction/dto"
	"github.com/fekuna/omnipos-ledger-service/internal/httpapi"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

const maxImageBytes = 10 << 20

type ExtractionHandler struct {
	uc     extraction.UseCase
	logger logger.ZapLogger
}

func NewExtractionHandler(uc extraction.UseCase, log logger.ZapLogger) *ExtractionHandler {
	return &ExtractionHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ExtractionHandler) Register(r *mux.Router) {
	r.HandleFunc("/extractions/draft", h.Draft).Methods(http.MethodPost)
}

type draftResponse struct {
	Bill          *model.Bill         `json:"bill"`
	ReportedTotal decimal.NullDecimal `json:"reportedTotal"`
	TotalMismatch bool                `json:"totalMismatch"`
	Valid         bool                `json:"valid"`
	Issues        []httpapi.Issue     `json:"issues"`
}

// Draft accepts either a multipart upload in the "image" field or a JSON body with a base64 image.
func (h *ExtractionHandler) Draft(w http.ResponseWriter, r *http.Request) {
	input, err := readInput(w, r)
	if err != nil {
		httpapi.Error(w, r, h.logger, err)
		return
	}

	draft, err := h.uc.Draft(r.Context(), input)
	if err != nil {
		if errors.Is(err, extraction.ErrUnavailable) {
			httpapi.JSON(w, http.StatusServiceUnavailable, httpapi.ErrorBody{Error: "unavailable", Message: err.Error()})
			return
		}
		httpapi.Error(w, r, h.logger, err)
		return
	}

	out := draftResponse{
		Bill:          draft.Bill,
		ReportedTotal: draft.ReportedTotal,
		TotalMismatch: draft.TotalMismatch,
		Valid:         draft.Valid,
		Issues:        []httpapi.Issue{},
	}
	if draft.Issues != nil {
		_, body := httpapi.Render(draft.Issues, r.Header.Get("Accept-Language"))
		out.Issues = body.Issues
	}
	httpapi.JSON(w, http.StatusOK, out)
}

func readInput(w http.ResponseWriter, r *http.Request) (*dto.DraftInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		var input dto.DraftInput
		if err := httpapi.Decode(r, &input); err != nil {
			return nil, err
		}
		return &input, nil
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", httpapi.ErrBadRequest, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", httpapi.ErrBadRequest, err)
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	return &dto.DraftInput{Image: data, MimeType: mimeType}, nil
}
