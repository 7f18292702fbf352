package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/akosarev/storefront/internal/api"
	"github.com/akosarev/storefront/internal/cart"
	"github.com/akosarev/storefront/internal/config"
	"github.com/akosarev/storefront/internal/events"
	"github.com/akosarev/storefront/internal/httpserver"
	"github.com/akosarev/storefront/internal/logging"
	"github.com/akosarev/storefront/internal/notify"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.UpstreamURL, "UPSTREAM_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, "cart_events")
		defer producer.Close()
	}

	httpClient := api.NewHTTPClient()
	registry := httpserver.NewRegistry(func(userID string, tokens api.TokenSource) *cart.Store {
		client := api.NewClient(api.ClientConfig{
			BaseURL:    cfg.UpstreamURL,
			Tokens:     tokens,
			HTTPClient: httpClient,
		})
		return cart.NewStore(client, cart.Deps{
			Notifier: notify.LogNotifier{},
			Confirm:  cart.ConfirmFromContext,
			Events:   producer,
			UserID:   userID,
		})
	})

	e := echo.New()
	e.HideBanner = true

	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(httpserver.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		CartHandler: &httpserver.CartHTTP{
			Stores:    registry,
			JWTSecret: cfg.JWTSecret,
		},
	})

	go func() {
		logger.Info("starting storefront", "port", cfg.ServerPort)
		if err := e.Start(fmt.Sprintf(":%d", cfg.ServerPort)); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop
	logger.Info("shutting down storefront")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo shutdown", "error", err)
	}
}
