package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/core/domain"
	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/port"
)

const metricsTTL = 30 * time.Second

// MetricsService serves dashboard aggregates, fronted by a short-TTL
// cache so dashboard polling does not hammer the store.
type MetricsService struct {
	repo  port.DatabaseRepository
	cache port.CacheRepository
	log   zerolog.Logger
}

func NewMetricsService(repo port.DatabaseRepository, cache port.CacheRepository, log zerolog.Logger) *MetricsService {
	return &MetricsService{repo: repo, cache: cache, log: log}
}

func (s *MetricsService) Summary(ctx context.Context) (*domain.MetricsSummary, error) {
	cached, ok, err := s.cache.GetMetrics(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("metrics cache read failed")
	} else if ok {
		return cached, nil
	}

	summary, err := s.repo.MetricsSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("load metrics: %w", err)
	}
	if err := s.cache.SetMetrics(ctx, summary, metricsTTL); err != nil {
		s.log.Debug().Err(err).Msg("metrics cache write failed")
	}
	return summary, nil
}
