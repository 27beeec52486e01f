package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/api"
	"github.com/RoyceAzure/lab/shop/internal/api/handler"
	"github.com/RoyceAzure/lab/shop/internal/api/router"
	"github.com/RoyceAzure/lab/shop/internal/appcontext"
	"github.com/RoyceAzure/lab/shop/internal/config"
	"github.com/rs/zerolog/log"
)

func main() {
	app, err := appcontext.NewApplicationContext(config.GetConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build application context")
		return
	}
	logger := app.Logger
	config.OnReload(app.ApplyConfig)

	// 初始化 handler
	server := api.NewServer(
		handler.NewCheckoutHandler(app.CheckoutService),
		handler.NewOrderHandler(app.OrderService),
		handler.NewProductHandler(app.ProductService),
	)

	// 設置路由
	r := router.SetupRouter(server, app.CheckoutLimiter, logger)

	// 設定服務器參數
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", app.Cf.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 設置訊號監聽
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutDownCompleted := make(chan struct{}, 1)
	// 監聽退出訊號
	go func() {
		<-sigChan
		logger.Info().Msg("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Server shutdown error")
		}

		if err := app.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Application shutdown error")
		}

		shutDownCompleted <- struct{}{}
	}()

	// 啟動服務
	logger.Info().Str("addr", srv.Addr).Msg("Server starting")
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server stopped unexpectedly")
	}
	<-shutDownCompleted
	logger.Info().Msg("closed completed")
}
