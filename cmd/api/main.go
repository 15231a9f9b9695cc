package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpadp "lendingops-backend/internal/adapter/http"
	idem "lendingops-backend/internal/adapter/middleware"
	"lendingops-backend/internal/adapter/repository/mysql"
	"lendingops-backend/internal/config"
	"lendingops-backend/internal/infrastructure/cache"
	"lendingops-backend/internal/infrastructure/db"
	"lendingops-backend/internal/infrastructure/scheduler"
	inquiryUC "lendingops-backend/internal/usecase/inquiry"
	investmentUC "lendingops-backend/internal/usecase/investment"
	loanUC "lendingops-backend/internal/usecase/loan"
	pipelineUC "lendingops-backend/internal/usecase/pipeline"
	profitUC "lendingops-backend/internal/usecase/profit"
	proposalUC "lendingops-backend/internal/usecase/proposal"
	"lendingops-backend/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), log)
	if err != nil {
		log.WithError(err).Fatal("mysql")
	}
	if err := db.Migrate(gdb); err != nil {
		log.WithError(err).Fatal("migrate")
	}
	rdb, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Fatal("redis")
	}
	defer rdb.Close()

	// repositories + unit of work
	inquiries := mysql.NewInquiryRepository(gdb)
	proposals := mysql.NewProposalRepository(gdb)
	loans := mysql.NewLoanRepository(gdb)
	investments := mysql.NewInvestmentRepository(gdb)
	ledger := mysql.NewLedgerRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	// use cases
	inquiryUsecase := inquiryUC.NewUsecase(inquiries, tx)
	pipelineUsecase := pipelineUC.NewUsecase(tx, log)
	proposalUsecase := proposalUC.NewUsecase(proposals, tx, log)
	loanUsecase := loanUC.NewUsecase(loans, tx)
	investmentUsecase := investmentUC.NewUsecase(investments, tx)
	profitUsecase := profitUC.NewUsecase(loans, investments, ledger, cfg.ProfitSeriesMonths)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			l := log.WithFields(map[string]any{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
			})
			if v.Error != nil {
				l.WithError(v.Error).Error("request")
				return nil
			}
			l.Info("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())

	httpadp.Register(e, httpadp.Handlers{
		Base:        httpadp.NewHandler(profitUsecase, log),
		Inquiries:   httpadp.NewInquiryHandler(inquiryUsecase, pipelineUsecase, log),
		Proposals:   httpadp.NewProposalHandler(proposalUsecase, log),
		Instruments: httpadp.NewLoanHandler(loanUsecase, investmentUsecase, log),
	}, idem.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, log))

	sched := scheduler.New(proposalUsecase, cfg.ProposalTTL, log)
	if err := sched.Register(cfg.ProposalSweepCron); err != nil {
		log.WithError(err).Fatal("scheduler")
	}
	if err := sched.RegisterOverdue(cfg.OverdueSweepCron, loanUsecase, investmentUsecase); err != nil {
		log.WithError(err).Fatal("scheduler")
	}
	sched.Start()

	if err := serve(ctx, e, ":"+cfg.AppPort, log); err != nil {
		log.WithError(err).Error("server")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sched.Stop(shutdownCtx)
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
	log.Info("bye")
}

// serve runs e on addr until ctx is done or the listener fails. Shutdown is left to the caller.
func serve(ctx context.Context, e *echo.Echo, addr string, log *logger.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-serverErr:
		return err
	}
}
