package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/payroll-clean-arch/internal/adapters/httpapi"
	"github.com/ogurasousui/payroll-clean-arch/internal/adapters/repository/postgres"
	"github.com/ogurasousui/payroll-clean-arch/internal/core/employee"
	"github.com/ogurasousui/payroll-clean-arch/internal/core/payroll"
	"github.com/ogurasousui/payroll-clean-arch/internal/platform/config"
	pg "github.com/ogurasousui/payroll-clean-arch/internal/platform/db/postgres"
	"github.com/ogurasousui/payroll-clean-arch/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database pool: %v", err)
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool)

	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	employeeSvc := employee.NewService(employeeRepo, nil, txManager)

	obligationRepo := postgres.NewObligationRepository(dbPool)
	ledgerRepo := postgres.NewLedgerRepository(dbPool)
	payrollSvc := payroll.NewService(obligationRepo, ledgerRepo, employeeRepo, payroll.Config{
		PeriodAnchor:     cfg.Payroll.PeriodAnchor,
		CheckStartNumber: cfg.Payroll.CheckStartNumber,
	}, nil, txManager)

	api := httpapi.NewServer(employeeSvc, payrollSvc)
	httpServer := server.New(cfg.Server.ListenAddr, api.Handler())

	log.Printf("HTTP server listening on %s", cfg.Server.ListenAddr)

	if err := httpServer.Run(ctx); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
}
