package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/xid"

	"trade_pilot/internal/domain"
	"trade_pilot/internal/domain/entity"
	"trade_pilot/internal/domain/service/negotiation"
	"trade_pilot/internal/report"
	"trade_pilot/pkg/contextx"
	"trade_pilot/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault

const subscriberBuffer = 64

type ReportWriter interface {
	Write(ctx context.Context, r report.Report) (string, error)
}

// Snapshot is the read-only session status handed to observers.
type Snapshot struct {
	SessionID      string      `json:"session_id"`
	Mode           entity.Mode `json:"mode"`
	Running        bool        `json:"running"`
	Paused         bool        `json:"paused"`
	Stopping       bool        `json:"stopping"`
	CurrentItem    string      `json:"current_item,omitempty"`
	Total          int64       `json:"budget_total"`
	Spent          int64       `json:"spent"`
	Remaining      int64       `json:"remaining"`
	Income         int64       `json:"income"`
	NetProfit      float64     `json:"net_profit"`
	Purchases      int         `json:"purchases"`
	Sales          int         `json:"sales"`
	ItemsCompleted int         `json:"items_completed"`
	ItemsAbandoned int         `json:"items_abandoned"`
	StartedAt      time.Time   `json:"started_at,omitempty"`
	FinishedAt     time.Time   `json:"finished_at,omitempty"`
	Outcome        string      `json:"outcome,omitempty"`
	ReportPath     string      `json:"report_path,omitempty"`
}

// Session is one run of the negotiation loop on a dedicated goroutine. It owns
// the control flags and accumulators and always finalizes: summary line,
// report, release of control bindings.
type Session struct {
	id       string
	strategy negotiation.Strategy
	loop     *negotiation.Loop
	control  *negotiation.Control
	books    *negotiation.Books
	reports  ReportWriter
	now      func() time.Time

	mu          sync.Mutex
	journal     []entity.LogLine
	subscribers []chan entity.Event
	releases    []func()
	isRunning   bool
	finished    bool
	startedAt   time.Time
	finishedAt  time.Time
	outcome     string
	reportPath  string
	err         error
	done        chan struct{}
}

func NewSession(strategy negotiation.Strategy, loop *negotiation.Loop, reports ReportWriter) *Session {
	s := &Session{
		id:       xid.New().String(),
		strategy: strategy,
		loop:     loop,
		control:  loop.Control(),
		books:    loop.Books(),
		reports:  reports,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	loop.WithEventSink(s)
	return s
}

func (s *Session) WithID(id string) *Session {
	s.id = id
	return s
}

func (s *Session) WithClock(now func() time.Time) *Session {
	s.now = now
	s.loop.WithClock(now)
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Mode() entity.Mode {
	return s.strategy.Mode()
}

// Subscribe returns a buffered event stream. Slow subscribers lose events
// instead of stalling the loop. The channel is closed when the session ends.
func (s *Session) Subscribe() <-chan entity.Event {
	ch := make(chan entity.Event, subscriberBuffer)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		close(ch)
		return ch
	}
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Bind registers a release hook for a control surface. Hooks run once the
// session has finalized.
func (s *Session) Bind(release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releases = append(s.releases, release)
}

// Start runs the session in the background.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning || s.finished {
		s.mu.Unlock()
		return domain.ErrAlreadyRunning
	}
	s.isRunning = true
	s.mu.Unlock()

	go func() {
		if err := s.run(ctx); err != nil {
			logger(ctx).Error("session aborted", slog.String(logx.FieldSessionID, s.id), logx.Error(err))
		}
	}()

	return nil
}

// Run blocks until the session has finished and returns the critical error,
// if any. Graceful halts are not errors.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning || s.finished {
		s.mu.Unlock()
		return domain.ErrAlreadyRunning
	}
	s.isRunning = true
	s.mu.Unlock()

	return s.run(ctx)
}

// Stop requests a cooperative stop and waits for finalization, however the
// session was started. A session that never started only gets the stop flag.
func (s *Session) Stop() {
	s.control.Stop()

	s.mu.Lock()
	started := s.isRunning || s.finished
	s.mu.Unlock()

	if started {
		<-s.done
	}
}

func (s *Session) RequestStop() {
	if s.control.Stopped() {
		return
	}
	s.control.Stop()
	s.note("stop requested")
}

func (s *Session) Pause() {
	s.control.Pause()
	s.note("pause requested")
}

func (s *Session) Resume() {
	s.control.Resume()
	s.note("resume requested")
}

// TogglePause returns true when the session is paused afterwards.
func (s *Session) TogglePause() bool {
	paused := s.control.TogglePause()
	if paused {
		s.note("pause requested")
	} else {
		s.note("resume requested")
	}
	return paused
}

func (s *Session) SkipCurrentItem() {
	s.control.SkipCurrentItem()
	s.note("skip requested")
}

func (s *Session) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) Journal() []entity.LogLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.LogLine(nil), s.journal...)
}

func (s *Session) Status() Snapshot {
	t := s.books.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		SessionID:      s.id,
		Mode:           s.strategy.Mode(),
		Running:        s.isRunning,
		Paused:         s.control.Paused(),
		Stopping:       s.control.Stopped() && s.isRunning,
		CurrentItem:    t.CurrentItem,
		Total:          t.Budget.Total,
		Spent:          t.Budget.Spent,
		Remaining:      t.Budget.Remaining(),
		Income:         t.Income,
		NetProfit:      t.NetProfit(),
		Purchases:      t.Purchases,
		Sales:          len(t.Sales),
		ItemsCompleted: t.ItemsCompleted,
		ItemsAbandoned: t.ItemsAbandoned,
		StartedAt:      s.startedAt,
		FinishedAt:     s.finishedAt,
		Outcome:        s.outcome,
		ReportPath:     s.reportPath,
	}
}

// Emit appends the event to the session log, mirrors it to slog and fans it
// out to subscribers without blocking.
func (s *Session) Emit(ctx context.Context, e entity.Event) {
	e.SessionID = s.id
	e.Mode = s.strategy.Mode()
	if e.Time.IsZero() {
		e.Time = s.now()
	}

	s.mu.Lock()
	s.journal = append(s.journal, entity.LogLine{Time: e.Time, Message: e.Message})
	subscribers := s.subscribers
	s.mu.Unlock()

	logger(ctx).Log(ctx, eventLevel(e.Kind), e.Message,
		slog.String(logx.FieldEvent, string(e.Kind)),
		slog.String(logx.FieldItem, e.Item),
	)

	for _, ch := range subscribers {
		select {
		case ch <- e:
		default:
			logger(ctx).Warn("event dropped, subscriber is slow", slog.String(logx.FieldEvent, string(e.Kind)))
		}
	}
}

func (s *Session) note(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journal = append(s.journal, entity.LogLine{Time: s.now(), Message: message})
}

func (s *Session) run(ctx context.Context) (err error) {
	ctx = contextx.WithSessionID(ctx, contextx.SessionID(s.id))
	ctx = contextx.WithLogger(ctx, logger(ctx).With(
		slog.String(logx.FieldSessionID, s.id),
		slog.String(logx.FieldMode, s.strategy.Mode().String()),
	))

	s.mu.Lock()
	s.startedAt = s.now()
	s.mu.Unlock()

	t := s.books.Snapshot()
	s.Emit(ctx, entity.Event{
		Kind:    entity.EventSessionStarted,
		Message: fmt.Sprintf("session %s started: mode %s, budget %d, reserve %d", s.id, s.strategy.Mode(), t.Budget.Total, t.Budget.MinimumReserve),
	})

	defer func() {
		if r := recover(); r != nil {
			logger(ctx).Error("session panicked", slog.Any(logx.FieldError, r), slog.String(logx.FieldStack, string(debug.Stack())))
			err = fmt.Errorf("panic: %v", r)
		}
		s.finalize(ctx, err)
	}()

	runErr := s.loop.Run(ctx, s.strategy)
	switch {
	case runErr == nil:
		s.setOutcome("completed")
		return nil
	case domain.IsGracefulHalt(runErr):
		s.setOutcome("halted: " + runErr.Error())
		s.Emit(ctx, entity.Event{Kind: entity.EventHalted, Message: "session halted: " + runErr.Error()})
		return nil
	default:
		return runErr
	}
}

func (s *Session) setOutcome(outcome string) {
	s.mu.Lock()
	s.outcome = outcome
	s.mu.Unlock()
}

func (s *Session) finalize(ctx context.Context, runErr error) {
	// The report must be written even when the run was cancelled.
	ctx = context.WithoutCancel(ctx)

	if runErr != nil {
		s.setOutcome("aborted: " + runErr.Error())
		s.Emit(ctx, entity.Event{Kind: entity.EventHalted, Message: "session aborted: " + runErr.Error()})
	}

	t := s.books.Snapshot()
	s.Emit(ctx, entity.Event{
		Kind: entity.EventSessionFinished,
		Message: fmt.Sprintf("summary: spent %d of %d, income %d, net %.2f, items %d completed / %d abandoned",
			t.Budget.Spent, t.Budget.Total, t.Income, t.NetProfit(), t.ItemsCompleted, t.ItemsAbandoned),
	})

	s.mu.Lock()
	s.finishedAt = s.now()
	r := report.Report{
		SessionID:  s.id,
		Mode:       s.strategy.Mode(),
		StartedAt:  s.startedAt,
		FinishedAt: s.finishedAt,
		Outcome:    s.outcome,
		Totals:     t,
		Log:        append([]entity.LogLine(nil), s.journal...),
	}
	s.mu.Unlock()

	path, err := s.reports.Write(ctx, r)
	if err != nil {
		logger(ctx).Error("failed to write report", logx.Error(err))
		runErr = errors.Join(runErr, err)
	}

	s.mu.Lock()
	s.reportPath = path
	s.err = runErr
	s.isRunning = false
	s.finished = true
	subscribers, releases := s.subscribers, s.releases
	s.subscribers, s.releases = nil, nil
	s.mu.Unlock()

	for _, ch := range subscribers {
		close(ch)
	}
	for _, release := range releases {
		release()
	}
	close(s.done)
}

func eventLevel(kind entity.EventKind) slog.Level {
	switch kind {
	case entity.EventRetry:
		return slog.LevelDebug
	case entity.EventItemAbandoned, entity.EventHalted:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
