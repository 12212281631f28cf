package accounts

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fiscalbr/elalur/internal/importer"
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
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Post("/{id}/toggle", h.toggle)
	r.Post("/import", h.importFile)
}

type chartAccountForm struct {
	Code           string `json:"code" validate:"required"`
	Name           string `json:"name" validate:"required"`
	FiscalYear     int    `json:"fiscalYear" validate:"required,min=2000"`
	Type           string `json:"type" validate:"required"`
	ReferenceCode  string `json:"referenceCode" validate:"required"`
	Classification string `json:"classification" validate:"required"`
	Level          int    `json:"level" validate:"required,min=1,max=5"`
	Nature         string `json:"nature" validate:"required"`
	AffectsResult  bool   `json:"affectsResult"`
	Deductible     bool   `json:"deductible"`
}

func (form chartAccountForm) toInput() CreateInput {
	return CreateInput{
		Code:           form.Code,
		Name:           form.Name,
		FiscalYear:     form.FiscalYear,
		Type:           form.Type,
		ReferenceCode:  form.ReferenceCode,
		Classification: form.Classification,
		Level:          form.Level,
		Nature:         form.Nature,
		AffectsResult:  form.AffectsResult,
		Deductible:     form.Deductible,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	fiscalYear, err := strconv.Atoi(r.URL.Query().Get("fiscalYear"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Fiscal Year", "fiscalYear query parameter is required")
		return
	}
	accountsList, err := h.service.List(r.Context(), fiscalYear)
	if err != nil {
		h.logger.Error("list chart accounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, accountsList)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	account, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form chartAccountForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.Create(r.Context(), form.toInput())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	var form chartAccountForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.service.Update(r.Context(), id, form.toInput()); err != nil {
		httpx.RespondError(w, err)
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
	account, err := h.service.ToggleStatus(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	fiscalYear, err := strconv.Atoi(r.URL.Query().Get("fiscalYear"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Fiscal Year", "fiscalYear query parameter is required")
		return
	}
	content, dryRun, err := httpx.ReadImportRequest(r, importer.MaxMasterFileSize)
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
