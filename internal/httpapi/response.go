// Package httpapi holds the shared REST plumbing: router, JSON encoding and error mapping.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fekuna/omnipos-ledger-service/internal/ledger"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/pkg/i18n"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"go.uber.org/zap"
)

// ErrBadRequest marks a request body or query that could not be read.
var ErrBadRequest = errors.New("bad request")

type Issue struct {
	Kind    string `json:"kind"`
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Index   *int   `json:"index,omitempty"`
	Message string `json:"message"`
}

type ErrorBody struct {
	Error   string  `json:"error"`
	Message string  `json:"message"`
	Issues  []Issue `json:"issues,omitempty"`

	// set for partial_cascade only
	Stage          string   `json:"stage,omitempty"`
	ShopID         string   `json:"shopId,omitempty"`
	OldName        string   `json:"oldName,omitempty"`
	NewName        string   `json:"newName,omitempty"`
	BillsUpdated   *int     `json:"billsUpdated,omitempty"`
	PendingBillIDs []string `json:"pendingBillIds,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// Decode reads a JSON body into v. Failures wrap ErrBadRequest.
func Decode(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("%w: empty body", ErrBadRequest)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

// Error writes err with the status its kind maps to. Messages follow the request's Accept-Language.
func Error(w http.ResponseWriter, r *http.Request, log logger.ZapLogger, err error) {
	status, body := Render(err, r.Header.Get("Accept-Language"))
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", r.URL.Path), zap.String("method", r.Method), zap.Error(err))
	}
	JSON(w, status, body)
}

// Render maps err to a status code and body.
func Render(err error, lang string) (int, ErrorBody) {
	var cascade *ledger.PartialCascadeError
	if errors.As(err, &cascade) {
		updated := cascade.BillsUpdated
		return http.StatusInternalServerError, ErrorBody{
			Error: "partial_cascade",
			Message: i18n.Localize("error.partial_cascade", map[string]interface{}{
				"Updated": cascade.BillsUpdated,
				"Pending": len(cascade.PendingBillIDs),
			}, lang),
			Stage:          cascade.Stage,
			ShopID:         cascade.ShopID,
			OldName:        cascade.OldName,
			NewName:        cascade.NewName,
			BillsUpdated:   &updated,
			PendingBillIDs: cascade.PendingBillIDs,
		}
	}

	if issues := ledger.Issues(err); len(issues) > 0 {
		status := http.StatusUnprocessableEntity
		out := make([]Issue, 0, len(issues))
		for _, ve := range issues {
			if errors.Is(ve, ledger.ErrDuplicateName) {
				status = http.StatusConflict
			}
			out = append(out, localizeIssue(ve, lang))
		}
		return status, ErrorBody{Error: "validation_failed", Message: out[0].Message, Issues: out}
	}

	switch {
	case errors.Is(err, ledger.ErrMalformedImport):
		return http.StatusBadRequest, ErrorBody{
			Error:   "malformed_import",
			Message: i18n.Localize("error.malformed_import", map[string]interface{}{"Detail": err.Error()}, lang),
		}
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, ErrorBody{Error: "bad_request", Message: err.Error()}
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Error: "not_found", Message: i18n.Localize("error.not_found", nil, lang)}
	case errors.Is(err, model.ErrBusy):
		return http.StatusConflict, ErrorBody{Error: "busy", Message: err.Error()}
	case errors.Is(err, model.ErrDuplicateID):
		return http.StatusConflict, ErrorBody{Error: "duplicate_id", Message: err.Error()}
	}
	return http.StatusInternalServerError, ErrorBody{Error: "internal", Message: i18n.Localize("error.internal", nil, lang)}
}

func localizeIssue(ve *ledger.ValidationError, lang string) Issue {
	is := Issue{Kind: ve.Kind(), Field: ve.Field, Value: ve.Value}
	if ve.Index >= 0 {
		idx := ve.Index
		is.Index = &idx
	}
	label := ve.Field
	if ve.Index >= 0 {
		label = fmt.Sprintf("items[%d].%s", ve.Index, ve.Field)
	}
	is.Message = i18n.Localize("validation."+is.Kind, map[string]interface{}{
		"Field": label,
		"Value": ve.Value,
	}, lang)
	return is
}
