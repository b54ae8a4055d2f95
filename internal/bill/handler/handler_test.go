package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-ledger-service/internal/bill/repository"
	"github.com/fekuna/omnipos-ledger-service/internal/bill/usecase"
	"github.com/fekuna/omnipos-ledger-service/internal/event"
	"github.com/fekuna/omnipos-ledger-service/internal/httpapi"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	productrepo "github.com/fekuna/omnipos-ledger-service/internal/product/repository"
	shoprepo "github.com/fekuna/omnipos-ledger-service/internal/shop/repository"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	shops := shoprepo.NewMemoryRepository()
	products := productrepo.NewMemoryRepository()
	require.NoError(t, shops.Create(ctx, &model.Shop{ID: "s1", Name: "Acme"}))
	require.NoError(t, products.Create(ctx, &model.Product{ID: "p1", Name: "Soap", ManufacturingCost: decimal.NewFromInt(4)}))

	log := logger.NewNop()
	uc := usecase.NewBillUseCase(repository.NewMemoryRepository(), products, shops, nil, event.Nop{}, log)
	return httpapi.NewRouter(log, NewBillHandler(uc, log))
}

func do(h http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBillHandler_CreateAndGet(t *testing.T) {
	h := newServer(t)

	rec := do(h, http.MethodPost, "/api/v1/bills",
		`{"shopName":"acme","invoiceNumber":"A-1","date":"2024-02-10","items":[{"productName":"Soap","retailPrice":"2.5","quantity":"4"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created model.Bill
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Acme", created.ShopName)
	assert.True(t, created.TotalAmount.Equal(decimal.NewFromInt(10)))

	rec = do(h, http.MethodGet, "/api/v1/bills/"+created.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/api/v1/bills/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBillHandler_ValidationBody(t *testing.T) {
	h := newServer(t)

	rec := do(h, http.MethodPost, "/api/v1/bills",
		`{"shopName":"Acme","date":"2024-02-10","items":[{"productName":"Coke","retailPrice":"1","quantity":"1"}]}`,
		"Accept-Language", "en")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body httpapi.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation_failed", body.Error)
	require.Len(t, body.Issues, 1)
	assert.Equal(t, "unknown_product", body.Issues[0].Kind)
	assert.Equal(t, "Coke", body.Issues[0].Value)
	require.NotNil(t, body.Issues[0].Index)
	assert.Equal(t, 0, *body.Issues[0].Index)
	assert.Equal(t, `Product "Coke" is not in the product list`, body.Issues[0].Message)
}

func TestBillHandler_BadJSON(t *testing.T) {
	h := newServer(t)
	rec := do(h, http.MethodPost, "/api/v1/bills", `{"shopName":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBillHandler_Check(t *testing.T) {
	h := newServer(t)

	rec := do(h, http.MethodPost, "/api/v1/bills/check",
		`{"shopName":"Nowhere","date":"2024-02-10","items":[{"productName":"Soap","retailPrice":"3","quantity":"2"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Valid  bool            `json:"valid"`
		Issues []httpapi.Issue `json:"issues"`
		Bill   model.Bill      `json:"bill"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.False(t, out.Valid)
	require.Len(t, out.Issues, 1)
	assert.Equal(t, "unknown_shop", out.Issues[0].Kind)
	assert.True(t, out.Bill.TotalAmount.Equal(decimal.NewFromInt(6)))
}
