package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tnqbao/gau-inventory-service/config"
	"github.com/tnqbao/gau-inventory-service/consumer/worker"
	infraPkg "github.com/tnqbao/gau-inventory-service/infra"
	"github.com/tnqbao/gau-inventory-service/repository"
	"github.com/tnqbao/gau-inventory-service/service"
)

func main() {
	err := godotenv.Load("../staging.env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra)
	svc := service.InitService(cfg, infra, repo)

	// Initialize context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := infra.Minio.EnsureReportBucket(ctx); err != nil {
		infra.Logger.ErrorWithContextf(ctx, err, "Failed to ensure report bucket: %v", err)
		log.Fatalf("Failed to ensure report bucket: %v", err)
	}

	reportConsumer := worker.NewReportConsumer(infra.RabbitMQ.Channel, infra, svc)
	if err := reportConsumer.Start(ctx); err != nil {
		infra.Logger.ErrorWithContextf(ctx, err, "Failed to start Report consumer: %v", err)
		log.Fatalf("Failed to start Report consumer: %v", err)
	}

	changeConsumer := worker.NewChangeConsumer(infra.RabbitMQ.Channel, infra, svc, infra.Produce.EmailService)
	if err := changeConsumer.Start(ctx); err != nil {
		infra.Logger.ErrorWithContextf(ctx, err, "Failed to start Change consumer: %v", err)
		log.Fatalf("Failed to start Change consumer: %v", err)
	}

	scheduler, err := worker.NewScheduler(infra, svc, cfg.EnvConfig.Report.RetentionDays)
	if err != nil {
		infra.Logger.ErrorWithContextf(ctx, err, "Failed to create scheduler: %v", err)
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	scheduler.Start()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	infra.Logger.InfoWithContextf(ctx, "Shutting down consumer...")
	cancel()
	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := infra.Close(shutdownCtx); err != nil {
		log.Printf("Failed to release infrastructure: %v", err)
	}

	log.Println("Consumer exited properly")
}
