package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cleberrangel/quickquote-api/internal/config"
	"github.com/cleberrangel/quickquote-api/internal/handler"
	"github.com/cleberrangel/quickquote-api/internal/logger"
	"github.com/cleberrangel/quickquote-api/internal/metrics"
	"github.com/cleberrangel/quickquote-api/internal/middleware"
	"github.com/cleberrangel/quickquote-api/internal/repository"
	"github.com/cleberrangel/quickquote-api/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/automaxprocs/maxprocs"
)

const Version = "1.0.0"

const shutdownTimeout = 10 * time.Second

func main() {
	// Carrega configurações
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Erro ao carregar configurações: %v", err)
	}

	// Inicializa logger estruturado
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	log := logger.Global()

	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		log.Debug().Msgf(format, args...)
	}))

	log.Info().
		Str("version", Version).
		Str("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Bool("log_json", cfg.LogJSON).
		Str("output_dir", cfg.OutputDir).
		Int("line_item_slots", cfg.LineItemSlots).
		Msg("QuickQuote API iniciando")

	metrics.Init()

	// Inicializa dependências
	store, err := repository.NewDocumentStore(cfg.OutputDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.OutputDir).Msg("Erro ao preparar diretório de saída")
	}
	estimateService := service.NewEstimateService(store, cfg.LineItemSlots)
	retentionService := service.NewRetentionService(store, cfg.DocumentTTL, cfg.SweepInterval)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go retentionService.Run(ctx)

	// Configura modo do Gin
	gin.SetMode(cfg.GinMode)

	r := handler.NewRouter(handler.Routes{
		Estimate:    handler.NewEstimateHandler(estimateService, cfg.MaxUploadBytes()),
		Health:      handler.NewHealthHandler(store, Version),
		RateLimiter: limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Servidor iniciando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Erro ao iniciar servidor")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Encerrando servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Erro no encerramento do servidor")
		return
	}
	log.Info().Msg("Servidor encerrado")
}
