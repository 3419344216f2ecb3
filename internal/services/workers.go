package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pageview/pageview/internal/models"
	"github.com/pageview/pageview/internal/util"
	srvErrors "github.com/pageview/pageview/pkg/errors"
	"github.com/pageview/pageview/pkg/scheduler"
)

type PreferencesRepository interface {
	Get(ctx context.Context) (*models.Preferences, error)
	Save(ctx context.Context, prefs *models.Preferences) error
}

// WorkerService owns the persisted worker count.
type WorkerService struct {
	engine       *scheduler.Engine
	prefs        PreferencesRepository
	defaultCount int
}

func NewWorkerService(engine *scheduler.Engine, prefs PreferencesRepository, defaultCount int) *WorkerService {
	if defaultCount < 1 {
		defaultCount = scheduler.DefaultWorkerCount
	}
	return &WorkerService{engine: engine, prefs: prefs, defaultCount: defaultCount}
}

// Load applies the stored worker count, or the default when none is stored.
func (s *WorkerService) Load(ctx context.Context) (int, error) {
	count := s.defaultCount

	prefs, err := s.prefs.Get(ctx)
	switch {
	case err == nil:
		count = prefs.WorkerCount
	case srvErrors.IsResourceNotFoundError(err):
	default:
		return 0, fmt.Errorf("failed to load preferences: %w", err)
	}

	applied, err := s.engine.SetWorkerCount(count)
	if err != nil {
		return 0, err
	}

	zap.S().Named("workers").Infow("worker count loaded", "stored", count, "applied", applied)
	return applied, nil
}

// Validate rejects a count outside [1, MaxWorkers].
func (s *WorkerService) Validate(n int) error {
	if n < 1 || n > s.engine.MaxWorkers() {
		return srvErrors.NewInvalidWorkerCountError(n, s.engine.MaxWorkers())
	}
	return nil
}

// Set clamps n to [1, MaxWorkers], persists and applies it.
func (s *WorkerService) Set(ctx context.Context, n int) (int, error) {
	n = util.Clamp(n, 1, s.engine.MaxWorkers())

	if err := s.prefs.Save(ctx, &models.Preferences{WorkerCount: n}); err != nil {
		return 0, fmt.Errorf("failed to save preferences: %w", err)
	}
	return s.engine.SetWorkerCount(n)
}

func (s *WorkerService) Get() int {
	return s.engine.WorkerCount()
}

func (s *WorkerService) Max() int {
	return s.engine.MaxWorkers()
}
