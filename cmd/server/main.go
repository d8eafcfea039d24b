package main

import (
	"context"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/plaufer/ahr-backend/internal/config"
	"github.com/plaufer/ahr-backend/internal/httpapi"
	"github.com/plaufer/ahr-backend/internal/hub"
	"github.com/plaufer/ahr-backend/internal/store"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load() // missing .env is fine
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var st *store.Store
	if cfg.DatabaseURL != "" {
		st, err = store.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("store open failed", zap.Error(err))
		}
	} else {
		logger.Warn("DATABASE_URL not set; running without persistence")
	}

	admins := cfg.AdminSet()
	if st != nil {
		stored, err := st.AdminNames()
		if err != nil {
			logger.Warn("loading stored admins failed", zap.Error(err))
		}
		for name := range stored {
			admins[name] = true
		}
	}

	ctx := context.Background()
	opts := hub.Options{Logger: logger}
	if st != nil {
		opts.Store = st
	}
	h := hub.NewHub(ctx, opts)

	// Build the router *with* the hub injected
	handler := httpapi.SetupRoutes(h, st, admins, logger)

	logger.Info("listening", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
