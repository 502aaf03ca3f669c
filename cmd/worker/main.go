package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/localbizintel/backend/internal/config"
	"github.com/localbizintel/backend/internal/db"
	"github.com/localbizintel/backend/internal/embedding"
	"github.com/localbizintel/backend/internal/httpapi"
	"github.com/localbizintel/backend/internal/jobs"
	"github.com/localbizintel/backend/internal/repository"
	"github.com/localbizintel/backend/internal/source"
	"github.com/localbizintel/backend/migrations"

	"github.com/rs/cors"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	if err := db.RunMigrations(cfg.Database, migrations.FS); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	demographicsRepo := repository.NewDemographicsRepository()
	spendingRepo := repository.NewSpendingRepository()
	labourStatsRepo := repository.NewLabourStatsRepository()
	businessDensityRepo := repository.NewBusinessDensityRepository()
	freshnessRepo := repository.NewFreshnessRepository()
	etlLogRepo := repository.NewEtlLogRepository()
	vectorInsightRepo := repository.NewVectorInsightRepository()

	// Source clients: file-backed when a data dir is configured, otherwise
	// the deterministic generators. Business density always comes from
	// Overpass.
	var (
		demographicsSource source.DemographicsSource
		spendingSource     source.SpendingSource
		labourStatsSource  source.LabourStatsSource
	)
	if cfg.Sources.DataDir != "" {
		files := source.NewFileSource(cfg.Sources.DataDir)
		demographicsSource = files
		spendingSource = files
		labourStatsSource = files
		log.Printf("Loading dataset rows from %s", cfg.Sources.DataDir)
	} else {
		demographicsSource = source.NewStubDemographicsSource()
		spendingSource = source.NewStubSpendingSource()
		labourStatsSource = source.NewStubLabourStatsSource()
	}
	overpass := source.NewOverpassClient(cfg.Overpass)

	// Jobs and workers
	ingestionWorker := jobs.NewIngestionWorker(
		jobs.NewDemographicsEtlJob(demographicsSource, demographicsRepo, freshnessRepo, etlLogRepo),
		jobs.NewSpendingEtlJob(spendingSource, spendingRepo, freshnessRepo, etlLogRepo),
		jobs.NewLabourStatsEtlJob(labourStatsSource, labourStatsRepo, freshnessRepo, etlLogRepo),
		jobs.NewBusinessDensityEtlJob(overpass, businessDensityRepo, freshnessRepo, etlLogRepo),
	)
	embeddingWorker := jobs.NewEmbeddingWorker(jobs.NewRebuildEmbeddingsJob(
		demographicsRepo,
		spendingRepo,
		labourStatsRepo,
		businessDensityRepo,
		vectorInsightRepo,
		etlLogRepo,
		embedding.NewFromConfig(cfg.Embedding),
		cfg.Embedding.Dimensions,
	))

	handler := httpapi.NewHandler(conn.Pool, ingestionWorker, embeddingWorker, freshnessRepo, etlLogRepo, vectorInsightRepo)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      corsHandler.Handler(httpapi.LoggingMiddleware(handler.Routes())),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting ETL worker on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down worker...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Worker exited")
}
