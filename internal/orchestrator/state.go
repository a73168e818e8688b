package orchestrator

import (
	"github.com/aleister1102/contacthound/internal/models"
	"github.com/rs/zerolog"
)

// stateMachine tracks one root's progress. States only move forward, so a
// run always reaches DONE in a bounded number of steps.
type stateMachine struct {
	current models.RunState
	outcome models.RunState
	logger  zerolog.Logger
}

func newStateMachine(logger zerolog.Logger) *stateMachine {
	return &stateMachine{current: models.StateInit, outcome: models.StateInit, logger: logger}
}

// advance moves to next and reports whether the move was legal.
func (m *stateMachine) advance(next models.RunState) bool {
	if next <= m.current {
		m.logger.Error().Str("from", m.current.String()).Str("to", next.String()).Msg("Refusing backward state transition")
		return false
	}
	m.logger.Debug().Str("from", m.current.String()).Str("to", next.String()).Msg("State transition")
	m.current = next
	switch next {
	case models.StateStaticMode, models.StateRenderMode, models.StateBlocked, models.StateUnreachable:
		m.outcome = next
	}
	return true
}
