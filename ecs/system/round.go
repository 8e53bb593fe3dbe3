package system

import (
	"go.uber.org/zap"

	"github.com/milk9111/leap/ecs"
	"github.com/milk9111/leap/logging"
)

// RoundSystem marks round boundaries. Systems holding cross-round state
// subscribe to RoundRestartCleanupEvent.
type RoundSystem struct {
	round int
	log   *zap.Logger
}

func NewRoundSystem(log *zap.Logger) *RoundSystem {
	return &RoundSystem{round: 1, log: logging.OrNop(log)}
}

func (s *RoundSystem) Round() int {
	if s == nil {
		return 0
	}
	return s.round
}

// Restart raises RoundRestartCleanupEvent and starts the next round.
func (s *RoundSystem) Restart(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	s.log.Info("round restart", zap.Int("round", s.round))
	w.Publish(&ecs.Event{Type: RoundRestartCleanupEvent})
	s.round++
}
