package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultRecoveryInterval = 1 * time.Hour

// Recoverer is the part of IdentityService the worker drives.
type Recoverer interface {
	RecoverAll(ctx context.Context) (int, error)
}

// IdleEvicter drops in-memory state unused for longer than maxAge.
type IdleEvicter interface {
	EvictIdle(maxAge time.Duration) int
}

// RecoveryService periodically pulls every identity back toward its
// baselines and lets emotions cool down.
type RecoveryService struct {
	identities Recoverer
	logger     *zap.Logger

	cache   IdleEvicter
	idleTTL time.Duration

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewRecoveryService(identities Recoverer, logger *zap.Logger) *RecoveryService {
	return &RecoveryService{
		identities: identities,
		logger:     logger,
		interval:   defaultRecoveryInterval,
		stopCh:     make(chan struct{}),
	}
}

func (s *RecoveryService) SetInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

// SetIdleEviction makes every pass also evict entries idle for longer than
// ttl. A zero ttl disables it.
func (s *RecoveryService) SetIdleEviction(cache IdleEvicter, ttl time.Duration) {
	s.cache = cache
	s.idleTTL = ttl
}

func (s *RecoveryService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("recovery worker started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				s.RunRecovery(ctx)
				cancel()
			case <-s.stopCh:
				s.logger.Info("recovery worker stopped")
				return
			}
		}
	}()
}

func (s *RecoveryService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

// RunRecovery performs one recovery pass and returns how many identities
// were updated.
func (s *RecoveryService) RunRecovery(ctx context.Context) int {
	if s.cache != nil && s.idleTTL > 0 {
		if evicted := s.cache.EvictIdle(s.idleTTL); evicted > 0 {
			s.logger.Debug("idle identities evicted", zap.Int("count", evicted))
		}
	}

	n, err := s.identities.RecoverAll(ctx)
	if err != nil {
		s.logger.Error("recovery pass failed", zap.Error(err))
		return n
	}
	if n > 0 {
		s.logger.Info("recovery pass complete", zap.Int("identities_recovered", n))
	}
	return n
}
