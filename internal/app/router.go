package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	ledgeraccounts "github.com/fiscalbr/elalur/internal/ledger/accounts"
	"github.com/fiscalbr/elalur/internal/ledger/postings"
	"github.com/fiscalbr/elalur/internal/masterdata/companies"
	"github.com/fiscalbr/elalur/internal/masterdata/refaccounts"
	"github.com/fiscalbr/elalur/internal/masterdata/taxparams"
	pbaccounts "github.com/fiscalbr/elalur/internal/parteb/accounts"
	pbentries "github.com/fiscalbr/elalur/internal/parteb/entries"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	CompaniesHandler     *companies.Handler
	RefAccountsHandler   *refaccounts.Handler
	TaxParamsHandler     *taxparams.Handler
	ChartAccountsHandler *ledgeraccounts.Handler
	PostingsHandler      *postings.Handler
	PartBAccountsHandler *pbaccounts.Handler
	PartBEntriesHandler  *pbentries.Handler
}

// NewRouter constructs the chi.Router with the standard middleware chain and
// every module mounted under its own prefix.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/companies", params.CompaniesHandler.MountRoutes)
	r.Route("/reference-accounts", params.RefAccountsHandler.MountRoutes)
	r.Route("/tax-parameters", params.TaxParamsHandler.MountRoutes)
	r.Route("/chart-accounts", params.ChartAccountsHandler.MountRoutes)
	r.Route("/postings", params.PostingsHandler.MountRoutes)
	r.Route("/parteb/accounts", params.PartBAccountsHandler.MountRoutes)
	r.Route("/parteb/entries", params.PartBEntriesHandler.MountRoutes)

	return r
}
