package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/omnipos-ledger-service/internal/extraction"
	"github.com/fekuna/omnipos-ledger-service/internal/extraction/dto"
	"github.com/fekuna/omnipos-ledger-service/internal/httpapi"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUseCase struct {
	got *dto.DraftInput
	err error
}

func (s *stubUseCase) Draft(_ context.Context, in *dto.DraftInput) (*dto.Draft, error) {
	s.got = in
	if s.err != nil {
		return nil, s.err
	}
	return &dto.Draft{
		Bill:   &model.Bill{ID: "draft", ShopName: "Nowhere"},
		Issues: &ledger.ValidationError{Err: ledger.ErrUnknownShop, Field: "shopName", Value: "Nowhere", Index: -1},
	}, nil
}

func TestDraft_JSONBody(t *testing.T) {
	uc := &stubUseCase{}
	router := httpapi.NewRouter(logger.NewNop(), NewExtractionHandler(uc, logger.NewNop()))

	body := `{"image":"` + base64.StdEncoding.EncodeToString([]byte("jpeg bytes")) + `","mimeType":"image/jpeg"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extractions/draft", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []byte("jpeg bytes"), uc.got.Image)

	var out struct {
		Valid  bool            `json:"valid"`
		Issues []httpapi.Issue `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.False(t, out.Valid)
	require.Len(t, out.Issues, 1)
	assert.Equal(t, "unknown_shop", out.Issues[0].Kind)
}

func TestDraft_Multipart(t *testing.T) {
	uc := &stubUseCase{}
	router := httpapi.NewRouter(logger.NewNop(), NewExtractionHandler(uc, logger.NewNop()))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "bill.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("png bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extractions/draft", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []byte("png bytes"), uc.got.Image)
}

func TestDraft_Unavailable(t *testing.T) {
	uc := &stubUseCase{err: extraction.ErrUnavailable}
	router := httpapi.NewRouter(logger.NewNop(), NewExtractionHandler(uc, logger.NewNop()))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extractions/draft", bytes.NewBufferString(`{"image":"AA=="}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
