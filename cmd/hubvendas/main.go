package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/auth"
	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/config"
	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/domain"
	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/ledger/sheets"
	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/meli"
	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/publisher"
	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/scheduler"
	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/service"
	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/storage/file"
	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/storage/postgres"
)

const dateLayout = "2006-01-02"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = setupLogger(cfg.LogLevel)

	app, err := wire(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.close()

	cmd := "daemon"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	ctx := context.Background()
	switch cmd {
	case "daemon":
		err = app.runDaemon(ctx, cfg.Sync.Interval)
	case "once":
		err = app.pipeline.RunCycle(ctx)
	case "finance":
		err = app.runFinance(ctx, flag.Args()[1:])
	case "purchase":
		err = app.runPurchase(ctx, flag.Args()[1:])
	case "auth-url":
		err = app.runAuthURL()
	case "exchange":
		err = app.runExchange(ctx, flag.Args()[1:])
	default:
		err = fmt.Errorf("unknown command %q (expected daemon, once, finance, purchase, auth-url or exchange)", cmd)
	}
	if err != nil && err != context.Canceled {
		logger.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

type app struct {
	logger    *slog.Logger
	db        *sqlx.DB
	events    *publisher.RabbitMQ
	authMgr   *auth.Manager
	ledger    *sheets.Gateway
	pipeline  *service.Pipeline
	finance   *service.FinanceAnalyzer
	purchases *service.PurchaseRecorder
}

func wire(cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{logger: logger}

	var activity service.ActivityLog
	if cfg.Database.Host != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("ping database: %w", err)
		}
		logger.Info("connected to database")
		a.db = db
		activity = postgres.NewActivityLogStore(db)
	} else {
		logger.Warn("no database configured, activity log disabled")
	}

	var events service.Publisher
	if cfg.RabbitMQ.URL != "" {
		rmq, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to rabbitmq: %w", err)
		}
		a.events = rmq
		events = rmq
	} else {
		logger.Warn("no rabbitmq configured, stock events disabled")
	}

	a.authMgr = auth.NewManager(cfg.Marketplace, auth.NewFileStore(cfg.Files.TokenFile), logger)
	a.ledger = sheets.NewGateway(cfg.Sheets, logger)
	market := meli.NewClient(cfg.Marketplace.APIBaseURL, cfg.Marketplace.Timeout, logger)
	watermarks := file.NewWatermarkStore(cfg.Files.LastRunFile)

	ingestor := service.NewIngestor(a.authMgr, a.ledger, market, watermarks, activity, events, logger)
	reconciler := service.NewReconciler(a.authMgr, market, activity, events, cfg.Sync.PacingDelay, logger)
	a.pipeline = service.NewPipeline(ingestor, reconciler, a.ledger, logger)
	a.finance = service.NewFinanceAnalyzer(a.authMgr, market, logger)
	a.purchases = service.NewPurchaseRecorder(a.ledger, activity, events, logger)

	return a, nil
}

func (a *app) close() {
	if a.events != nil {
		_ = a.events.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *app) runDaemon(ctx context.Context, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		a.logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	sched := scheduler.NewScheduler(a.pipeline, interval, a.logger)
	return sched.Start(ctx)
}

func (a *app) runFinance(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("finance", flag.ExitOnError)
	fromStr := fs.String("from", time.Now().AddDate(0, 0, -7).Format(dateLayout), "period start (YYYY-MM-DD)")
	toStr := fs.String("to", time.Now().Format(dateLayout), "period end (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	from, err := time.ParseInLocation(dateLayout, *fromStr, time.Local)
	if err != nil {
		return fmt.Errorf("parse -from: %w", err)
	}
	to, err := time.ParseInLocation(dateLayout, *toStr, time.Local)
	if err != nil {
		return fmt.Errorf("parse -to: %w", err)
	}
	if from.After(to) {
		return fmt.Errorf("period start %s is after end %s", *fromStr, *toStr)
	}
	// the range is inclusive, stretch the end to the last millisecond of the day
	to = to.Add(24*time.Hour - time.Millisecond)

	snapshot, err := a.ledger.Snapshot(ctx)
	if err != nil {
		return err
	}

	rows, err := a.finance.Analyze(ctx, snapshot, from, to)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("no delivered orders in period")
		return nil
	}

	for _, r := range rows {
		fmt.Printf("%s  %-15s %-30s qty=%d  sale=%.2f  fee=%.2f  shipping=%.2f  cost=%.2f  profit=%.2f\n",
			r.Date.Format(dateLayout), r.SKU, r.Product, r.Quantity,
			r.SaleValue, r.Fee, r.ShippingCost, r.ProductCost, r.GrossProfit)
	}

	sum := domain.Summarize(rows)
	fmt.Printf("\nrevenue=%.2f  fees=%.2f  shipping=%.2f  product_cost=%.2f  gross_profit=%.2f  margin=%.1f%%\n",
		sum.Revenue, sum.Fees, sum.Shipping, sum.ProductCost, sum.GrossProfit, sum.MarginPct)
	return nil
}

func (a *app) runPurchase(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("purchase", flag.ExitOnError)
	sku := fs.String("sku", "", "target SKU")
	qty := fs.Float64("qty", 0, "purchased quantity")
	cost := fs.Float64("cost", 0, "purchase unit cost")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *sku == "" {
		return fmt.Errorf("-sku is required")
	}

	rec, err := a.purchases.Record(ctx, *sku, *qty, *cost)
	if err != nil {
		return err
	}

	fmt.Printf("purchase recorded: sku=%s quantity=%v average_cost=%.2f\n",
		rec.SKU, rec.LocalQuantity, rec.UnitCost)
	return nil
}

func (a *app) runAuthURL() error {
	authURL, verifier, err := a.authMgr.BeginAuthorization()
	if err != nil {
		return err
	}
	fmt.Printf("open this URL to authorize:\n%s\n\ncode verifier (pass to exchange):\n%s\n", authURL, verifier)
	return nil
}

func (a *app) runExchange(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("exchange", flag.ExitOnError)
	code := fs.String("code", "", "authorization code from the redirect URL")
	verifier := fs.String("verifier", "", "code verifier printed by auth-url")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *code == "" || *verifier == "" {
		return fmt.Errorf("-code and -verifier are required")
	}

	cred, err := a.authMgr.ExchangeCode(ctx, *code, *verifier)
	if err != nil {
		return err
	}

	fmt.Printf("authorized, token valid until %s\n", cred.ExpiresAt.Format(time.RFC3339))
	return nil
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
