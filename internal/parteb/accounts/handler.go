package accounts

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

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

type partBAccountForm struct {
	Code           string `json:"codigo" validate:"required"`
	Description    string `json:"descricao" validate:"required"`
	BaseYear       int    `json:"anoBase" validate:"required,min=2000"`
	ValidityStart  string `json:"dataInicio"`
	ValidityEnd    string `json:"dataFim"`
	TaxType        string `json:"tipoTributo" validate:"required"`
	OpeningBalance string `json:"saldoInicial"`
	BalanceNature  string `json:"naturezaSaldo"`
}

func (form partBAccountForm) toInput() (CreateInput, error) {
	input := CreateInput{
		Code:           form.Code,
		Description:    form.Description,
		BaseYear:       form.BaseYear,
		TaxType:        form.TaxType,
		OpeningBalance: decimal.Zero,
		BalanceNature:  string(BalanceDebit),
	}
	var err error
	if form.ValidityStart != "" {
		var t time.Time
		if t, err = importer.ParseDate(form.ValidityStart); err != nil {
			return CreateInput{}, err
		}
		input.ValidityStart = &t
	}
	if form.ValidityEnd != "" {
		var t time.Time
		if t, err = importer.ParseDate(form.ValidityEnd); err != nil {
			return CreateInput{}, err
		}
		input.ValidityEnd = &t
	}
	if form.OpeningBalance != "" {
		if input.OpeningBalance, err = importer.ParseAmount(form.OpeningBalance); err != nil {
			return CreateInput{}, err
		}
	}
	if form.BalanceNature != "" {
		input.BalanceNature = form.BalanceNature
	}
	return input, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	baseYear, err := strconv.Atoi(r.URL.Query().Get("anoBase"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Base Year", "anoBase query parameter is required")
		return
	}
	accountsList, err := h.service.List(r.Context(), baseYear)
	if err != nil {
		h.logger.Error("list parte b accounts", slog.Any("error", err))
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
	var form partBAccountForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input, err := form.toInput()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.Create(r.Context(), input)
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
	var form partBAccountForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	input, err := form.toInput()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.Update(r.Context(), id, input); err != nil {
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
	baseYear, err := strconv.Atoi(r.URL.Query().Get("anoBase"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Base Year", "anoBase query parameter is required")
		return
	}
	content, dryRun, err := httpx.ReadImportRequest(r, importer.MaxLedgerFileSize)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Upload", err.Error())
		return
	}
	result, err := h.service.Import(r.Context(), baseYear, content, dryRun)
	if err != nil {
		httpx.RespondImportError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
