package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/josh-kwaku/invoicing/api"
	"github.com/josh-kwaku/invoicing/internal/config"
	"github.com/josh-kwaku/invoicing/internal/handler"
	"github.com/josh-kwaku/invoicing/internal/logging"
	"github.com/josh-kwaku/invoicing/internal/middleware"
	"github.com/josh-kwaku/invoicing/internal/money"
	"github.com/josh-kwaku/invoicing/internal/repository"
	"github.com/josh-kwaku/invoicing/internal/service/fees"
	"github.com/josh-kwaku/invoicing/internal/service/ipn"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init("invoicing-api", cfg.LogLevel, cfg.AppEnv)

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("invalid site timezone", "error", err)
		os.Exit(1)
	}

	db, err := repository.NewPostgresDB(context.Background(), cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetimeS) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.DBConnMaxIdleTimeS) * time.Second,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	invoices := repository.NewInvoiceRepository(db)
	subscriptions := repository.NewSubscriptionRepository(db)
	forms := repository.NewPaymentFormRepository(db)
	ipnEvents := repository.NewIPNEventRepository(db)

	paypal := ipn.NewPayPalClient(ipn.PayPalClientConfig{
		LiveURL:    cfg.PayPalLiveURL,
		SandboxURL: cfg.PayPalSandboxURL,
		Timeout:    cfg.PayPalVerifyTimeout,
		Version:    cfg.AppVersion,
	})
	processor := ipn.NewProcessor(invoices, subscriptions, paypal, ipn.Config{
		ReceiverEmail: cfg.PayPalEmail,
		Sandbox:       cfg.PayPalSandbox,
		Location:      loc,
	}, logger)

	feeService := fees.NewService(forms, invoices, money.Format{
		DecimalSeparator:   cfg.CurrencyDecimalSeparator,
		ThousandsSeparator: cfg.CurrencyThousandsSeparator,
		Decimals:           cfg.CurrencyDecimals,
	})

	healthHandler := handler.NewHealthHandler(db, cfg.AppVersion)
	ipnHandler := handler.NewIPNHandler(processor, ipnEvents)
	feeHandler := handler.NewFeeHandler(feeService)
	invoiceHandler := handler.NewInvoiceHandler(invoices, subscriptions, ipnEvents)

	requireOperator := middleware.Auth(cfg.JWTSecret)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /ready", healthHandler.Readiness)
	mux.HandleFunc("GET /docs", handler.ServeDocs())
	mux.HandleFunc("GET /docs/openapi.yaml", handler.ServeSpec(api.Spec))
	mux.HandleFunc("POST /api/v1/gateways/paypal/ipn", ipnHandler.ReceivePayPal)
	mux.HandleFunc("POST /api/v1/payment-forms/{id}/fees", feeHandler.Calculate)
	mux.Handle("GET /api/v1/invoices/{id}", requireOperator(http.HandlerFunc(invoiceHandler.GetInvoice)))

	var h http.Handler = mux
	h = middleware.Logging(h)
	h = middleware.Recovery(h)
	h = middleware.Tracing(h)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.PayPalVerifyTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr, "paypal_sandbox", cfg.PayPalSandbox, "site_timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
