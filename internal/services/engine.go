package services

import "github.com/pageview/pageview/pkg/scheduler"

// EngineService exposes read-only engine diagnostics.
type EngineService struct {
	engine *scheduler.Engine
}

func NewEngineService(engine *scheduler.Engine) *EngineService {
	return &EngineService{engine: engine}
}

func (s *EngineService) Status() scheduler.EngineStatus {
	return s.engine.Status()
}

func (s *EngineService) Queue() []scheduler.SourceInfo {
	return s.engine.Snapshot()
}
