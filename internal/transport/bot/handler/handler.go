package handler

import (
	"trade_pilot/internal/domain/entity"
	"trade_pilot/internal/worker"
)

const logTail = 20

// SessionControl is what the bot may do to a session: flip its control flags
// and read its state.
type SessionControl interface {
	Status() worker.Snapshot
	Journal() []entity.LogLine
	Pause()
	Resume()
	SkipCurrentItem()
	RequestStop()
}

type Handler struct {
	session SessionControl
}

func New(session SessionControl) *Handler {
	return &Handler{
		session: session,
	}
}
