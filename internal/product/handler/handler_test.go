package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-ledger-service/internal/event"
	"github.com/fekuna/omnipos-ledger-service/internal/httpapi"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/product/repository"
	"github.com/fekuna/omnipos-ledger-service/internal/product/usecase"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (http.Handler, *repository.MemoryRepository) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	require.NoError(t, repo.Create(context.Background(), &model.Product{
		ID:                 "p1",
		Name:               "Soap",
		ManufacturingCost:  decimal.NewFromInt(3),
		DefaultRetailPrice: decimal.NewFromInt(5),
	}))

	log := logger.NewNop()
	uc := usecase.NewProductUseCase(repo, event.Nop{}, log)
	return httpapi.NewRouter(log, NewProductHandler(uc, log)), repo
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestProductHandler_Create(t *testing.T) {
	h, repo := newServer(t)

	rec := do(h, http.MethodPost, "/api/v1/products", `{"name":"  Shampoo ","manufacturingCost":12.5,"defaultRetailPrice":20}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var p model.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Shampoo", p.Name)
	assert.True(t, p.ManufacturingCost.Equal(decimal.RequireFromString("12.5")))

	stored, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Shampoo", stored.Name)
}

func TestProductHandler_Errors(t *testing.T) {
	h, _ := newServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"duplicate name ignoring case", http.MethodPost, "/api/v1/products", `{"name":"SOAP","manufacturingCost":1,"defaultRetailPrice":2}`, http.StatusConflict},
		{"negative cost", http.MethodPost, "/api/v1/products", `{"name":"Gel","manufacturingCost":-1,"defaultRetailPrice":2}`, http.StatusUnprocessableEntity},
		{"blank name", http.MethodPost, "/api/v1/products", `{"name":" ","manufacturingCost":1,"defaultRetailPrice":2}`, http.StatusUnprocessableEntity},
		{"bad json", http.MethodPost, "/api/v1/products", `{"name":`, http.StatusBadRequest},
		{"missing product", http.MethodGet, "/api/v1/products/nope", "", http.StatusNotFound},
		{"update missing product", http.MethodPut, "/api/v1/products/nope", `{"name":"Gel","manufacturingCost":1,"defaultRetailPrice":2}`, http.StatusNotFound},
		{"delete missing product", http.MethodDelete, "/api/v1/products/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestProductHandler_ListFiltersByQuery(t *testing.T) {
	h, _ := newServer(t)
	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/api/v1/products", `{"name":"Shampoo","manufacturingCost":1,"defaultRetailPrice":2}`).Code)
	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/api/v1/products", `{"name":"Toothpaste","manufacturingCost":1,"defaultRetailPrice":2}`).Code)

	rec := do(h, http.MethodGet, "/api/v1/products?q=SHAM", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Products []model.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Products, 1)
	assert.Equal(t, "Shampoo", body.Products[0].Name)

	rec = do(h, http.MethodGet, "/api/v1/products", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Products, 3)
	assert.Equal(t, "Soap", body.Products[1].Name)
}

func TestProductHandler_UpdateAndDelete(t *testing.T) {
	h, repo := newServer(t)

	rec := do(h, http.MethodPut, "/api/v1/products/p1", `{"name":"Bar Soap","manufacturingCost":4,"defaultRetailPrice":6}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var p model.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Bar Soap", p.Name)
	assert.True(t, p.DefaultRetailPrice.Equal(decimal.NewFromInt(6)))

	rec = do(h, http.MethodDelete, "/api/v1/products/p1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	got, err := repo.FindByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
