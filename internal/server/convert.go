package server

import (
	"trade_pilot/internal/domain/entity"
	"trade_pilot/internal/worker"
	"trade_pilot/pkg/lox"
	"trade_pilot/pkg/rest"
)

func newRESTSession(s worker.Snapshot) rest.Session {
	return rest.Session{
		ID:             s.SessionID,
		Mode:           s.Mode.String(),
		State:          sessionState(s),
		CurrentItem:    s.CurrentItem,
		BudgetTotal:    s.Total,
		Spent:          s.Spent,
		Remaining:      s.Remaining,
		Income:         s.Income,
		NetProfit:      s.NetProfit,
		Purchases:      s.Purchases,
		Sales:          s.Sales,
		ItemsCompleted: s.ItemsCompleted,
		ItemsAbandoned: s.ItemsAbandoned,
		StartedAt:      s.StartedAt,
		FinishedAt:     s.FinishedAt,
		Outcome:        s.Outcome,
		ReportPath:     s.ReportPath,
	}
}

func sessionState(s worker.Snapshot) string {
	switch {
	case s.Stopping:
		return "stopping"
	case s.Running && s.Paused:
		return "paused"
	case s.Running:
		return "running"
	case s.Outcome != "":
		return "finished"
	default:
		return "idle"
	}
}

func newRESTLog(lines []entity.LogLine) []rest.LogLine {
	return lox.Map(lines, func(l entity.LogLine) rest.LogLine {
		return rest.LogLine{Time: l.Time, Message: l.Message}
	})
}
