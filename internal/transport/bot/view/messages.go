// Package view renders bot replies.
package view

import (
	"fmt"
	"html"
	"strings"
	"time"

	"trade_pilot/internal/domain/entity"
	"trade_pilot/internal/worker"
)

const StartMessage = `🤖 <b>Trade pilot</b>

/status — session state and totals
/pause — pause at the next checkpoint
/resume — continue a paused session
/skip — abandon the current item
/stop — stop after the current step
/log — last session log lines`

const (
	Paused        = "⏸ Pause requested"
	Resumed       = "▶️ Resume requested"
	Skipped       = "⏭ Skip requested for the current item"
	NothingToSkip = "ℹ️ No item is being negotiated"
	Stopping      = "🛑 Stop requested"
	NotRunning    = "ℹ️ Session is not running"
	EmptyLog      = "📭 Log is empty"
)

// Status renders a session snapshot.
func Status(s worker.Snapshot) string {
	state := "🔴 stopped"
	switch {
	case s.Stopping:
		state = "🟠 stopping"
	case s.Running && s.Paused:
		state = "⏸ paused"
	case s.Running:
		state = "🟢 running"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 <b>Session</b> <code>%s</code>\n\n", s.SessionID)
	fmt.Fprintf(&sb, "⚙️ <b>Mode:</b> %s\n", s.Mode)
	fmt.Fprintf(&sb, "🔍 <b>State:</b> %s\n", state)
	if s.CurrentItem != "" {
		fmt.Fprintf(&sb, "📦 <b>Item:</b> %s\n", html.EscapeString(s.CurrentItem))
	}
	if s.Mode.Spends() {
		fmt.Fprintf(&sb, "💰 <b>Spent:</b> %d of %d (left %d)\n", s.Spent, s.Total, s.Remaining)
	}
	if s.Mode == entity.ModeSell {
		fmt.Fprintf(&sb, "📈 <b>Income:</b> %d\n", s.Income)
		fmt.Fprintf(&sb, "💹 <b>Net:</b> %.2f\n", s.NetProfit)
	}
	fmt.Fprintf(&sb, "✅ <b>Items:</b> %d completed, %d abandoned\n", s.ItemsCompleted, s.ItemsAbandoned)
	if s.Outcome != "" {
		fmt.Fprintf(&sb, "🏁 <b>Outcome:</b> %s\n", html.EscapeString(s.Outcome))
	}

	return sb.String()
}

// Log renders the tail of the session log.
func Log(lines []entity.LogLine, limit int) string {
	if len(lines) == 0 {
		return EmptyLog
	}
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}

	var sb strings.Builder
	sb.WriteString("<pre>")
	for _, l := range lines {
		sb.WriteString(html.EscapeString(l.Time.Format(time.TimeOnly) + " " + l.Message))
		sb.WriteByte('\n')
	}
	sb.WriteString("</pre>")

	return sb.String()
}
