package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smoothie-be/internal/cart"
	"smoothie-be/internal/config"
	"smoothie-be/internal/coupon"
	"smoothie-be/internal/db"
	"smoothie-be/internal/events"
	"smoothie-be/internal/httpx"
	"smoothie-be/internal/logger"
	"smoothie-be/internal/metrics"
	"smoothie-be/internal/order"
	"smoothie-be/internal/product"
	"smoothie-be/internal/redisx"
	"smoothie-be/internal/slip"
	"smoothie-be/internal/user"
	"smoothie-be/internal/ws"

	"go.uber.org/zap"
)

// Seams for tests.
var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

const janitorInterval = time.Minute

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := newServer(ctx, cfg, database)

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("server listening", zap.String("port", cfg.AppPort))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.L().Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	return nil
}

func newServer(ctx context.Context, cfg *config.Config, database *sql.DB) *http.Server {
	stats := &metrics.Stats{}

	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewProducer(cfg.KafkaBrokers, cfg.ServiceName, 256)
		producer.Start(ctx)
		pub = producer
	}

	store := cart.NewStore(redisx.New(cfg.RedisAddr))

	productRepo := product.NewRepository(database)
	ledger := cart.NewLedger(productRepo, store, pub, stats, cfg.ReservationTTL)
	ledger.StartJanitor(ctx, janitorInterval)
	cartSvc := cart.NewService(ledger, store)

	couponRepo := coupon.NewRepository(database)
	orderRepo := order.NewRepository(database)
	userSvc := user.NewService(user.NewRepository(database))

	hub := ws.NewHub()
	go hub.Run(ctx)

	orderSvc := order.NewService(orderRepo, couponRepo, cartSvc, pub, ws.OrderNotifier{Hub: hub})

	var extractor slip.Extractor
	if cfg.SlipVerifyMode == "easyslip" {
		extractor = slip.NewEasySlipExtractor(cfg.EasySlipURL, cfg.EasySlipToken)
	} else {
		extractor = slip.NewOCRExtractor()
	}
	verifier := slip.NewVerifier(
		slip.NewPreprocessor(),
		extractor,
		orderRepo,
		ws.VerificationSink{Hub: hub},
		pub,
		stats,
	)

	router := httpx.NewRouter(&httpx.Handler{
		Products: productRepo,
		Carts:    cartSvc,
		Orders:   orderSvc,
		Coupons:  couponRepo,
		Users:    userSvc,
		Verifier: verifier,
		Hub:      hub,
		Stats:    stats,
	})

	return &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
