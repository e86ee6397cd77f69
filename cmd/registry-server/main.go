package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/phenoxtractor/ontology-registry/cmd/registry-server/middleware"
	"github.com/phenoxtractor/ontology-registry/cmd/registry-server/routes"
	"github.com/phenoxtractor/ontology-registry/internal/common"
	"github.com/phenoxtractor/ontology-registry/internal/providers"
	"github.com/phenoxtractor/ontology-registry/internal/registry"
	"github.com/phenoxtractor/ontology-registry/pkg/config"
)

func main() {
	cfg := config.LoadFromEnv()

	setupLogging(cfg.Logging)

	log.Info().Str("registry_path", cfg.Registry.Path).Msg("starting ontology registry server")

	var metadataProvider registry.MetadataProvider = providers.NewBioRegistryMetadataProvider(cfg.Providers.BioRegistryURL)

	if cfg.Providers.CacheMetadata {
		cache, err := common.NewCache(&cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer cache.Close()

		metadataProvider = providers.NewCachedMetadataProvider(metadataProvider, cache, cfg.Providers.MetadataTTL)
		log.Info().Dur("ttl", cfg.Providers.MetadataTTL).Msg("metadata caching enabled")
	}

	contentProvider := providers.NewOBOLibraryProvider(cfg.Providers.OBOLibraryURL)

	reg := registry.NewFileSystemRegistry(cfg.Registry.Path, metadataProvider, contentProvider)

	router := setupRouter(reg)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	} else {
		log.Info().Msg("server shutdown complete")
	}
}

func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func setupRouter(reg registry.OntologyRegistry) *gin.Engine {
	if zerolog.GlobalLevel() == zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api/v1")
	routes.OntologyRoutes(api, reg)

	return router
}
