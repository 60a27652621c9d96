package common_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/overstock-orders/internal/common"
)

func TestJSONErrorShape(t *testing.T) {
	rec := httptest.NewRecorder()
	common.JSONError(rec, http.StatusNotFound, "NOT_FOUND", "product not found", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"error":{"code":"NOT_FOUND","message":"product not found"}}`, rec.Body.String())
}

func TestJSONAppErrorUsesStatusAndCode(t *testing.T) {
	rec := httptest.NewRecorder()
	appErr := common.NewAppError("STOCK_CONFLICT", "stock changed", http.StatusConflict, errors.New("underlying"))
	common.JSONAppError(rec, appErr)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "STOCK_CONFLICT")
}

func TestJSONAppErrorFallsBackForPlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	common.JSONAppError(rec, errors.New("boom"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "boom")
}

func TestAppErrorUnwraps(t *testing.T) {
	underlying := errors.New("row not found")
	appErr := common.NewAppError("NOT_FOUND", "missing", http.StatusNotFound, underlying)
	require.ErrorIs(t, appErr, underlying)
}
