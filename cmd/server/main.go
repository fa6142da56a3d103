package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"quill/internal/config"
	"quill/internal/db"
	"quill/internal/logger"
	"quill/internal/router"
	"quill/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var outputs []string
	if cfg.LogFile != "" {
		outputs = append(outputs, cfg.LogFile)
	}
	if err := logger.Init(cfg.LogLevel, outputs...); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, closeKV, err := db.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Error("open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
		return
	}
	defer func() {
		if err := closeKV(); err != nil {
			logger.Warn("close storage", zap.Error(err))
		}
	}()

	board, err := services.NewBoard(
		services.NewPostStore(kv),
		services.NewVoteLedger(kv),
		services.NewDataURIEncoder(),
		cfg.SiteURL,
	)
	if err != nil {
		logger.Error("create board", zap.Error(err))
		return
	}
	board.Open(ctx)

	r, err := router.Setup(cfg, board)
	if err != nil {
		logger.Error("setup router", zap.Error(err))
		return
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Quill server starting", zap.String("addr", srv.Addr), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	logger.Info("Quill server stopped")
}
