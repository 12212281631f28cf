package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fiscalbr/elalur/internal/app"
	ledgeraccounts "github.com/fiscalbr/elalur/internal/ledger/accounts"
	"github.com/fiscalbr/elalur/internal/ledger/periodlock"
	"github.com/fiscalbr/elalur/internal/ledger/postings"
	"github.com/fiscalbr/elalur/internal/masterdata/companies"
	"github.com/fiscalbr/elalur/internal/masterdata/refaccounts"
	"github.com/fiscalbr/elalur/internal/masterdata/taxparams"
	pbaccounts "github.com/fiscalbr/elalur/internal/parteb/accounts"
	pbentries "github.com/fiscalbr/elalur/internal/parteb/entries"
	"github.com/fiscalbr/elalur/internal/platform/cache"
	"github.com/fiscalbr/elalur/internal/platform/db"
)

// refResolver adapts the reference-account lookup to the chart-of-accounts
// resolver port, scoping the validity year to the fiscal year.
type refResolver struct {
	service *refaccounts.Service
}

func (r refResolver) ResolveReference(ctx context.Context, code string, fiscalYear int) (int64, error) {
	year := fiscalYear
	account, err := r.service.ResolveActive(ctx, code, &year)
	if err != nil {
		return 0, err
	}
	return account.ID, nil
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, lookup cache disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	companiesRepo := companies.NewRepository(dbpool)
	companiesService := companies.NewService(companiesRepo)
	companiesHandler := companies.NewHandler(logger, companiesService)

	refAccountsRepo := refaccounts.NewRepository(dbpool)
	refAccountsService := refaccounts.NewService(refAccountsRepo, redisClient, logger)
	refAccountsHandler := refaccounts.NewHandler(logger, refAccountsService)

	taxParamsRepo := taxparams.NewRepository(dbpool)
	taxParamsService := taxparams.NewService(taxParamsRepo)
	taxParamsHandler := taxparams.NewHandler(logger, taxParamsService)

	chartRepo := ledgeraccounts.NewRepository(dbpool)
	chartService := ledgeraccounts.NewService(chartRepo, refResolver{service: refAccountsService}, logger)
	chartHandler := ledgeraccounts.NewHandler(logger, chartService)

	guard := periodlock.NewGuard(companiesService)

	postingsRepo := postings.NewRepository(dbpool)
	postingsService := postings.NewService(postingsRepo, chartService, guard, logger)
	postingsHandler := postings.NewHandler(logger, postingsService)

	partBAccountsRepo := pbaccounts.NewRepository(dbpool)
	partBAccountsService := pbaccounts.NewService(partBAccountsRepo, logger)
	partBAccountsHandler := pbaccounts.NewHandler(logger, partBAccountsService)

	partBEntriesRepo := pbentries.NewRepository(dbpool)
	partBEntriesService := pbentries.NewService(partBEntriesRepo, chartService, partBAccountsService, taxParamsService, logger)
	partBEntriesHandler := pbentries.NewHandler(logger, partBEntriesService)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		CompaniesHandler:     companiesHandler,
		RefAccountsHandler:   refAccountsHandler,
		TaxParamsHandler:     taxParamsHandler,
		ChartAccountsHandler: chartHandler,
		PostingsHandler:      postingsHandler,
		PartBAccountsHandler: partBAccountsHandler,
		PartBEntriesHandler:  partBEntriesHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server", slog.Any("error", err))
		os.Exit(1)
	}
}
