package entries

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

type entryForm struct {
	Month          int    `json:"mes" validate:"required,min=1,max=12"`
	Year           int    `json:"ano" validate:"required,min=2000"`
	TaxType        string `json:"tipoTributo" validate:"required"`
	RelationKind   string `json:"tipoRelacionamento" validate:"required"`
	LedgerCode     string `json:"contaContabil"`
	PartBCode      string `json:"contaParteB"`
	ParameterCode  string `json:"parametroFiscal" validate:"required"`
	AdjustmentKind string `json:"tipoAjuste" validate:"required"`
	Description    string `json:"descricao" validate:"required"`
	Amount         string `json:"valor" validate:"required"`
}

func (form entryForm) toInput() (Input, error) {
	amount, err := importer.ParsePositiveAmount(form.Amount)
	if err != nil {
		return Input{}, err
	}
	return Input{
		Month:          form.Month,
		Year:           form.Year,
		TaxType:        form.TaxType,
		RelationKind:   form.RelationKind,
		LedgerCode:     form.LedgerCode,
		PartBCode:      form.PartBCode,
		ParameterCode:  form.ParameterCode,
		AdjustmentKind: form.AdjustmentKind,
		Description:    form.Description,
		Amount:         amount,
	}, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("ano"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Year", "ano query parameter is required")
		return
	}
	entriesList, err := h.service.List(r.Context(), year)
	if err != nil {
		h.logger.Error("list parte b entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entriesList)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form entryForm
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
	entry, err := h.service.Create(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	var form entryForm
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
	entry, err := h.service.ToggleStatus(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	content, dryRun, err := httpx.ReadImportRequest(r, importer.MaxLedgerFileSize)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Upload", err.Error())
		return
	}
	result, err := h.service.Import(r.Context(), content, dryRun)
	if err != nil {
		httpx.RespondImportError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
