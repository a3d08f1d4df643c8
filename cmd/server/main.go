package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_market/internal/api"
	"github.com/Freeeeeet/tutor_market/internal/app"
	"github.com/Freeeeeet/tutor_market/internal/config"
	"github.com/Freeeeeet/tutor_market/internal/gateway"
	"github.com/Freeeeeet/tutor_market/internal/repository"
	"github.com/Freeeeeet/tutor_market/internal/repository/memory"
	"github.com/Freeeeeet/tutor_market/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting tutor market",
		zap.String("environment", cfg.Environment),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Duration("hold_ttl", cfg.HoldTTL),
		zap.Bool("in_memory", cfg.InMemory()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		slotStore        service.SlotStore
		reservationStore service.ReservationStore
		bookingStore     service.BookingStore
		userStore        service.UserStore
	)

	if cfg.InMemory() {
		store := memory.NewStore()
		slotStore = store.Slots()
		reservationStore = store.Reservations()
		bookingStore = store.Bookings()
		userStore = store.Users()
	} else {
		pool, err := pgxpool.New(ctx, cfg.DBDSN)
		if err != nil {
			logger.Fatal("Failed to create connection pool", zap.Error(err))
		}
		defer pool.Close()

		migrator, err := app.NewMigrator(pool, cfg.Migrations)
		if err != nil {
			logger.Fatal("Failed to create migrator", zap.Error(err))
		}
		if err := migrator.Run(ctx); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
		migrator.Close()

		slotStore = repository.NewSlotRepository(pool)
		reservationStore = repository.NewReservationRepository(pool)
		bookingStore = repository.NewBookingRepository(pool)
		userStore = repository.NewUserRepository(pool)
	}

	// Платёжный шлюз: без PAYMENT_URL любой платёж одобряется (dev-режим)
	var payments gateway.PaymentGateway = gateway.AutoApprove{}
	if cfg.PaymentURL != "" {
		payments = gateway.NewHTTPPayment(cfg.PaymentURL, logger)
	}

	// Уведомления: без TELEGRAM_TOKEN уходят только в лог
	var sender gateway.Sender = &gateway.NoopSender{Logger: logger}
	if cfg.TelegramToken != "" {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			logger.Fatal("Failed to create telegram bot", zap.Error(err))
		}
		sender = gateway.NewTelegramSender(b)
	}

	notifier := gateway.NewDispatcher(4, userStore, sender, logger)
	notifier.Start(ctx)

	slotService := service.NewSlotService(slotStore, userStore, logger)
	reservationService := service.NewReservationService(slotStore, reservationStore, cfg.HoldTTL, logger)
	bookingService := service.NewBookingService(bookingStore, userStore, reservationService, payments, notifier, logger)

	sweeper := app.NewSweeper(reservationService, cfg.SweepInterval, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	handler := api.NewHandler(slotService, reservationService, bookingService, logger)
	router := api.NewRouter(handler, cfg.RateLimit, cfg.CacheTTL)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
}
