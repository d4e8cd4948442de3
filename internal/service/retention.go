package service

import (
	"context"
	"time"

	"github.com/cleberrangel/quickquote-api/internal/logger"
	"github.com/cleberrangel/quickquote-api/internal/metrics"
	"github.com/cleberrangel/quickquote-api/internal/repository"
)

// RetentionService apaga documentos e uploads expirados do diretório de saída
type RetentionService struct {
	store    *repository.DocumentStore
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
}

// NewRetentionService cria o serviço de retenção
func NewRetentionService(store *repository.DocumentStore, ttl, interval time.Duration) *RetentionService {
	return &RetentionService{
		store:    store,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
	}
}

// Run sweeps every interval until ctx is cancelled.
func (s *RetentionService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Get(ctx).Info().
		Dur("ttl", s.ttl).
		Dur("interval", s.interval).
		Str("dir", s.store.Dir()).
		Msg("Limpeza periódica iniciada")

	for {
		select {
		case <-ctx.Done():
			logger.Get(ctx).Info().Msg("Limpeza periódica encerrada")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce removes files older than the TTL and returns their names.
func (s *RetentionService) SweepOnce(ctx context.Context) ([]string, error) {
	removed, err := s.store.Sweep(s.now().Add(-s.ttl))

	metrics.Get().IncrementSweep(len(removed), err == nil)
	logger.AuditSweep(ctx, s.store.Dir(), removed, err)

	log := logger.Get(ctx)
	if err != nil {
		log.Error().Err(err).Int("removed", len(removed)).Msg("Falha parcial na limpeza")
	} else if len(removed) > 0 {
		log.Info().Int("removed", len(removed)).Msg("Documentos expirados removidos")
	}

	return removed, err
}
