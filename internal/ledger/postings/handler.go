package postings

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/fiscalbr/elalur/internal/importer"
	"github.com/fiscalbr/elalur/internal/ledger/periodlock"
	"github.com/fiscalbr/elalur/internal/platform/httpx"
)

type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/export", h.export)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Post("/{id}/toggle", h.toggle)
	r.Post("/import", h.importFile)
}

type postingForm struct {
	DebitCode      string `json:"contaDebitoCode" validate:"required"`
	CreditCode     string `json:"contaCreditoCode" validate:"required"`
	Date           string `json:"data" validate:"required,datetime=2006-01-02"`
	Amount         string `json:"valor" validate:"required"`
	Memo           string `json:"historico" validate:"required"`
	DocumentNumber string `json:"numeroDocumento"`
	FiscalYear     int    `json:"fiscalYear" validate:"required,min=2000"`
}

func (form postingForm) toInput() (Input, error) {
	date, err := time.Parse("2006-01-02", form.Date)
	if err != nil {
		return Input{}, err
	}
	amount, err := decimal.NewFromString(form.Amount)
	if err != nil {
		return Input{}, err
	}
	return Input{
		DebitCode:      form.DebitCode,
		CreditCode:     form.CreditCode,
		Date:           date,
		Amount:         amount,
		Memo:           form.Memo,
		DocumentNumber: form.DocumentNumber,
		FiscalYear:     form.FiscalYear,
	}, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	fiscalYear, err := strconv.Atoi(r.URL.Query().Get("fiscalYear"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Fiscal Year", "fiscalYear query parameter is required")
		return
	}
	list, err := h.service.List(r.Context(), fiscalYear)
	if err != nil {
		h.logger.Error("list postings", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	posting, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, posting)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	posting, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, posting)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	input, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), id, input); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	posting, err := h.service.ToggleStatus(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, posting)
}

func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	fiscalYear, err := strconv.Atoi(r.URL.Query().Get("fiscalYear"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Fiscal Year", "fiscalYear query parameter is required")
		return
	}
	content, dryRun, err := httpx.ReadImportRequest(r, importer.MaxLedgerFileSize)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Upload", err.Error())
		return
	}
	result, err := h.service.Import(r.Context(), fiscalYear, content, dryRun)
	if err != nil {
		httpx.RespondImportError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	fiscalYear, err := strconv.Atoi(r.URL.Query().Get("fiscalYear"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Fiscal Year", "fiscalYear query parameter is required")
		return
	}
	filter := ExportFilter{FiscalYear: fiscalYear}
	if raw := r.URL.Query().Get("dataInicio"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Date", err.Error())
			return
		}
		filter.From = &from
	}
	if raw := r.URL.Query().Get("dataFim"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Date", err.Error())
			return
		}
		filter.To = &to
	}

	// Render into a buffer first so a rejected filter goes out as a plain
	// problem response, not one wearing CSV download headers.
	var buf bytes.Buffer
	if err := h.service.ExportCSV(r.Context(), &buf, filter); err != nil {
		h.logger.Error("export postings", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="lancamentos.csv"`)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) decodeForm(w http.ResponseWriter, r *http.Request) (Input, bool) {
	var form postingForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return Input{}, false
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return Input{}, false
	}
	input, err := form.toInput()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return Input{}, false
	}
	return input, true
}

// respondError adds the posting-specific mappings on top of the shared ones:
// a period-lock violation on the manual path is a request-level rejection.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, periodlock.ErrPeriodLocked):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Period Locked", err.Error())
	case errors.Is(err, ErrSameAccount):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, errHalfOpenRange), errors.Is(err, errInvertedRange):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Date Range", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
