// Command server runs the landed cost HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"landedcost/internal/config"
	"landedcost/internal/core/numerator"
	"landedcost/internal/core/tx"
	"landedcost/internal/domain/auth"
	lcv "landedcost/internal/domain/documents/landed_cost_voucher"
	"landedcost/internal/domain/itemmaster"
	"landedcost/internal/domain/receipts"
	"landedcost/internal/domain/registers/finance"
	"landedcost/internal/domain/registers/serialcost"
	"landedcost/internal/domain/registers/stockledger"
	"landedcost/internal/infrastructure/http/v1"
	"landedcost/internal/infrastructure/http/v1/middleware"
	"landedcost/internal/infrastructure/memory"
	infranumerator "landedcost/internal/infrastructure/numerator"
	"landedcost/internal/infrastructure/storage/postgres"
	"landedcost/internal/infrastructure/storage/postgres/catalog_repo"
	"landedcost/internal/infrastructure/storage/postgres/document_repo"
	"landedcost/internal/infrastructure/storage/postgres/register_repo"
	"landedcost/pkg/logger"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Default().Fatalw("load config", "error", err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.App.Env == "development",
	})
	if err != nil {
		logger.Default().Fatalw("init logger", "error", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	var (
		pool       *pgxpool.Pool
		voucherSvc *lcv.Service
	)

	ledgerCfg := lcv.Config{PerpetualInventory: cfg.Ledger.PerpetualInventory}

	if cfg.DB.DSN != "" {
		pgPool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.DSN))
		if err != nil {
			log.Fatalw("connect database", "error", err)
		}
		defer pgPool.Close()
		pool = pgPool.Pool

		txManager := postgres.NewTxManager(pgPool)

		voucherSvc = buildPostgresServices(pgPool, txManager, cfg, ledgerCfg)
		log.Infow("storage initialized", "backend", "postgres")
	} else {
		voucherSvc = buildMemoryServices(cfg, ledgerCfg)
		log.Warnw("storage initialized", "backend", "memory",
			"note", "data will not survive a restart")
	}

	var validator middleware.JWTValidator
	if cfg.JWT.Secret != "" {
		jwtCfg := auth.DefaultJWTConfig(cfg.JWT.Secret)
		jwtCfg.Issuer = cfg.JWT.Issuer
		validator = auth.NewJWTService(jwtCfg)
	} else {
		log.Warnw("authentication disabled", "reason", "JWT_SECRET is empty")
	}

	router := v1.NewRouter(v1.RouterConfig{
		Logger:         log,
		JWTValidator:   validator,
		VoucherService: voucherSvc,
		Pool:           pool,
		Version:        version,
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", srv.Addr, "env", cfg.App.Env, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server shutdown", "error", err)
	}

	log.Infow("server stopped")
}

// buildPostgresServices wires the voucher service against PostgreSQL storage.
func buildPostgresServices(pool *postgres.Pool, txManager *postgres.TxManager, cfg *config.Config, ledgerCfg lcv.Config) *lcv.Service {
	voucherRepo := document_repo.NewVoucherRepo(txManager)
	sourceStore := document_repo.NewReceiptSourceRepo(txManager)
	itemRepo := catalog_repo.NewItemRepo(txManager)

	stockSvc := stockledger.NewService(register_repo.NewStockLedgerRepo(txManager))
	serialSvc := serialcost.NewService(register_repo.NewSerialCostRepo(txManager))
	financeSvc := finance.NewService(register_repo.NewPostingRepo(txManager))
	locker := register_repo.NewChainLocker(txManager, cfg.Ledger.LockTimeout)

	return newVoucherService(
		voucherRepo, sourceStore, itemRepo,
		stockSvc, serialSvc, financeSvc,
		locker, infranumerator.New(pool), txManager, ledgerCfg,
	)
}

// buildMemoryServices wires the voucher service against in-memory storage.
func buildMemoryServices(cfg *config.Config, ledgerCfg lcv.Config) *lcv.Service {
	lockTimeout, err := time.ParseDuration(cfg.Ledger.LockTimeout)
	if err != nil {
		lockTimeout = 3 * time.Second
	}

	stockSvc := stockledger.NewService(memory.NewStockLedgerRepository())
	serialSvc := serialcost.NewService(memory.NewSerialCostRepository())
	financeSvc := finance.NewService(memory.NewPostingRepository())

	return newVoucherService(
		memory.NewVoucherRepository(), memory.NewSourceStore(), memory.NewItemRepository(),
		stockSvc, serialSvc, financeSvc,
		memory.NewChainLocker(lockTimeout), memory.NewNumerator(), memory.NewTxManager(), ledgerCfg,
	)
}

func newVoucherService(
	voucherRepo lcv.Repository,
	sourceStore receipts.SourceStore,
	itemRepo itemmaster.Repository,
	stockSvc *stockledger.Service,
	serialSvc *serialcost.Service,
	financeSvc *finance.Service,
	locker stockledger.ChainLocker,
	numGen numerator.Generator,
	txManager tx.Manager,
	ledgerCfg lcv.Config,
) *lcv.Service {
	resolver := receipts.NewAdapter(sourceStore, itemRepo)
	return lcv.NewService(
		voucherRepo, resolver,
		stockSvc, serialSvc, financeSvc,
		locker, numGen, txManager, ledgerCfg,
	)
}
