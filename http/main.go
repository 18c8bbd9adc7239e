package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tnqbao/gau-inventory-service/config"
	"github.com/tnqbao/gau-inventory-service/http/controller"
	"github.com/tnqbao/gau-inventory-service/http/route"
	infraPkg "github.com/tnqbao/gau-inventory-service/infra"
	"github.com/tnqbao/gau-inventory-service/repository"
	"github.com/tnqbao/gau-inventory-service/service"
)

func main() {
	err := godotenv.Load("staging.env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra)
	svc := service.InitService(cfg, infra, repo)

	ctrl := controller.NewController(cfg, infra, repo, svc)

	router := routes.SetupRouter(ctrl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := infra.Minio.EnsureReportBucket(ctx); err != nil {
		infra.Logger.ErrorWithContextf(ctx, err, "Failed to ensure report bucket: %v", err)
	}

	server := &http.Server{
		Addr:    ":" + cfg.EnvConfig.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("HTTP Server started on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	infra.Logger.InfoWithContextf(context.Background(), "Shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		infra.Logger.ErrorWithContextf(shutdownCtx, err, "HTTP server shutdown failed: %v", err)
	}
	if err := infra.Close(shutdownCtx); err != nil {
		log.Printf("Failed to release infrastructure: %v", err)
	}
}
