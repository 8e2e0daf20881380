package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/oakmart/storefront-api/internal/config"
	"github.com/oakmart/storefront-api/internal/http/router"
	"github.com/oakmart/storefront-api/internal/platform/logging"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		fallback := logging.New(logging.Options{})
		fallback.Fatal().Err(err).Msg("configuration load failed")
	}

	logger := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})

	r, err := router.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("router initialization failed")
	}

	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info().Str("addr", addr).Str("env", cfg.Environment).Msg("api listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server failed")
	}
}
