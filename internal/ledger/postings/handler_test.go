package postings

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/fiscalbr/elalur/internal/shared"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), newTestService(newMemoryRepo(), nil))
	router := chi.NewRouter()
	router.Route("/postings", handler.MountRoutes)
	return router
}

func TestExportRejectedRangeIsAProblemNotADownload(t *testing.T) {
	router := newTestRouter(t)

	// dataFim without dataInicio is a half-open range.
	req := httptest.NewRequest(http.MethodGet, "/postings/export?fiscalYear=2024&dataFim=2024-06-30", nil)
	req = req.WithContext(shared.ContextWithCompany(req.Context(), 1))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, rec.Header().Get("Content-Disposition"))
	require.NotContains(t, rec.Header().Get("Content-Type"), "text/csv")
	require.Contains(t, rec.Body.String(), "supplied together")
}

func TestExportSendsCSVDownloadHeaders(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/postings/export?fiscalYear=2024", nil)
	req = req.WithContext(shared.ContextWithCompany(req.Context(), 1))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	require.Contains(t, rec.Header().Get("Content-Disposition"), "lancamentos.csv")
	require.Contains(t, rec.Body.String(), "contaDebitoCode;contaCreditoCode")
}
