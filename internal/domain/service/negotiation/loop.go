package negotiation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"trade_pilot/internal/domain"
	"trade_pilot/internal/domain/entity"
	"trade_pilot/internal/domain/service/namematch"
	"trade_pilot/internal/domain/value"
	"trade_pilot/pkg/contextx"
	"trade_pilot/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault

const (
	DefaultMaxSensingFailures = 5
	DefaultTaxRate            = 0.105
)

// ErrNoMoreItems ends a run normally.
var ErrNoMoreItems = errors.New("no more items")

// Strategy fills the mode-specific steps of one negotiation round.
type Strategy interface {
	Mode() entity.Mode
	// Next yields the item to negotiate or ErrNoMoreItems.
	Next(ctx context.Context, l *Loop) (entity.Item, error)
	// Begin runs once per item before the first sensing pass.
	Begin(ctx context.Context, l *Loop, r *Round) error
	Sense(ctx context.Context, l *Loop, r *Round) (Quote, error)
	Decide(r *Round, q Quote) error
	SizeBatch(ctx context.Context, l *Loop, r *Round, q Quote) (int, error)
	Act(ctx context.Context, l *Loop, r *Round, q Quote, qty int) (Trade, error)
}

// Quote is what a round observed on screen.
type Quote struct {
	UnitPrice int64
	Total     int64
}

// Trade is an executed action. Exactly one of the fields is set.
type Trade struct {
	Purchase *entity.PurchaseAttempt
	Sale     *entity.Sale
}

// Round is the state of one item negotiation.
type Round struct {
	Item       entity.Item
	LimitPrice int64
	Bought     int
	Failures   int
	DialogOpen bool

	CostBasis      float64
	CostBasisKnown bool

	finished bool
}

func (r *Round) Outstanding() int {
	return max(r.Item.DesiredQuantity-r.Bought, 0)
}

func (r *Round) Finish() {
	r.finished = true
}

func (r *Round) Done() bool {
	return r.finished || r.Bought >= r.Item.DesiredQuantity
}

// Loop runs the per-item state machine against one strategy.
type Loop struct {
	perceiver Perceiver
	actuator  Actuator
	ledger    Ledger
	sink      EventSink
	control   *Control
	books     *Books
	layout    value.Layout
	matcher   namematch.Matcher

	transportCostPerUnit float64
	taxRate              float64
	maxSensingFailures   int
	actionDelay          time.Duration
	now                  func() time.Time
}

func NewLoop(
	perceiver Perceiver,
	actuator Actuator,
	ledger Ledger,
	control *Control,
	books *Books,
	layout value.Layout,
) *Loop {
	return &Loop{
		perceiver:          perceiver,
		actuator:           actuator,
		ledger:             ledger,
		sink:               nopSink{},
		control:            control,
		books:              books,
		layout:             layout,
		matcher:            namematch.NewMatcher(namematch.DefaultThreshold),
		taxRate:            DefaultTaxRate,
		maxSensingFailures: DefaultMaxSensingFailures,
		now:                time.Now,
	}
}

func (l *Loop) WithEventSink(sink EventSink) *Loop {
	l.sink = sink
	return l
}

func (l *Loop) WithMatcher(m namematch.Matcher) *Loop {
	l.matcher = m
	return l
}

func (l *Loop) WithTransportCost(costPerUnit float64) *Loop {
	l.transportCostPerUnit = costPerUnit
	return l
}

func (l *Loop) WithTaxRate(rate float64) *Loop {
	l.taxRate = rate
	return l
}

func (l *Loop) WithMaxSensingFailures(n int) *Loop {
	if n > 0 {
		l.maxSensingFailures = n
	}
	return l
}

func (l *Loop) WithActionDelay(d time.Duration) *Loop {
	l.actionDelay = d
	return l
}

func (l *Loop) WithClock(now func() time.Time) *Loop {
	l.now = now
	return l
}

func (l *Loop) Books() *Books {
	return l.books
}

func (l *Loop) Control() *Control {
	return l.control
}

// Run negotiates items until the strategy runs out of them. A nil result
// means every item was handled; graceful halts and critical errors are
// returned as is.
func (l *Loop) Run(ctx context.Context, s Strategy) error {
	for {
		if err := l.await(ctx); err != nil {
			return err
		}
		l.control.clearSkip()

		item, err := s.Next(ctx, l)
		if errors.Is(err, ErrNoMoreItems) {
			return nil
		}
		if err != nil {
			return stopped(ctx, err)
		}

		err = stopped(ctx, l.negotiate(ctx, s, item))
		switch {
		case err == nil:
			l.books.itemDone(false)
			l.emit(ctx, entity.Event{Kind: entity.EventItemCompleted, Item: item.Name, Message: fmt.Sprintf("%s done", item.Name)})
		case domain.IsItemLocal(err):
			l.books.itemDone(true)
			l.emit(ctx, entity.Event{Kind: entity.EventItemAbandoned, Item: item.Name, Message: fmt.Sprintf("%s abandoned: %v", item.Name, err)})
		default:
			return err
		}
	}
}

func (l *Loop) negotiate(ctx context.Context, s Strategy, item entity.Item) error {
	r := &Round{Item: item, LimitPrice: item.LimitPrice(l.transportCostPerUnit)}

	// Non-positive limits are rejected before anything touches the client.
	if s.Mode().Spends() && r.LimitPrice <= 0 {
		return domain.Reasonf(domain.ErrUnprofitable, "limit price %d is not positive", r.LimitPrice)
	}

	l.books.setCurrent(item.Name)
	started := entity.Event{Kind: entity.EventItemStarted, Item: item.Name, Message: item.Name}
	if s.Mode().Spends() {
		started.UnitPrice = r.LimitPrice
		started.Quantity = item.DesiredQuantity
		started.Message = fmt.Sprintf("%s: limit %d, want %d", item.Name, r.LimitPrice, item.DesiredQuantity)
	}
	l.emit(ctx, started)

	if err := s.Begin(ctx, l, r); err != nil {
		return l.leave(ctx, r, err)
	}

	for !r.Done() {
		if err := l.checkpoint(ctx); err != nil {
			return l.leave(ctx, r, err)
		}

		q, err := s.Sense(ctx, l, r)
		if err != nil {
			return l.leave(ctx, r, err)
		}

		if err := s.Decide(r, q); err != nil {
			return l.leave(ctx, r, err)
		}

		if s.Mode().Spends() && !l.books.Admits(q.UnitPrice) {
			b := l.books.Snapshot().Budget
			return l.leave(ctx, r, domain.Reasonf(domain.ErrBudgetExhausted,
				"price %d not admitted: spent %d of %d, reserve %d", q.UnitPrice, b.Spent, b.Total, b.MinimumReserve))
		}

		want, err := s.SizeBatch(ctx, l, r, q)
		if err != nil {
			return l.leave(ctx, r, err)
		}

		qty := want
		if s.Mode().Spends() {
			qty = l.books.Clamp(want, q.UnitPrice)
			if qty == 0 {
				return l.leave(ctx, r, domain.Reasonf(domain.ErrBudgetExhausted,
					"remaining budget %d does not cover one unit at %d", l.books.Snapshot().Budget.Remaining(), q.UnitPrice))
			}
		}

		trade, err := s.Act(ctx, l, r, q, qty)
		if err != nil {
			return l.leave(ctx, r, err)
		}

		if err := l.record(ctx, r, trade); err != nil {
			return err
		}

		if err := l.pace(ctx); err != nil {
			return err
		}
	}

	return nil
}

// leave closes a dialog left open by an interrupted round.
func (l *Loop) leave(ctx context.Context, r *Round, cause error) error {
	if !r.DialogOpen || l.layout.CancelButton.IsZero() {
		return cause
	}
	if err := l.actuator.Click(ctx, l.layout.CancelButton); err != nil {
		return errors.Join(cause, fmt.Errorf("cancel dialog: %w", err))
	}
	r.DialogOpen = false
	return cause
}

func (l *Loop) record(ctx context.Context, r *Round, t Trade) error {
	switch {
	case t.Purchase != nil:
		p := *t.Purchase
		if err := l.books.commitPurchase(p); err != nil {
			return fmt.Errorf("commit purchase: %w", err)
		}
		r.Bought += p.Quantity

		if err := l.ledger.Append(ctx, entity.NewLedgerEntry(p, l.now())); err != nil {
			return domain.WrapError(err, domain.ErrLedger.Code, "append ledger entry")
		}

		l.emit(ctx, entity.Event{
			Kind:      entity.EventPurchase,
			Item:      p.ItemName,
			Quantity:  p.Quantity,
			UnitPrice: p.UnitPrice,
			Message:   fmt.Sprintf("%s: %s %d @ %d (%d/%d)", p.ItemName, p.Mode, p.Quantity, p.UnitPrice, r.Bought, r.Item.DesiredQuantity),
		})
	case t.Sale != nil:
		s := *t.Sale
		l.books.addSale(s)
		r.Finish()

		msg := fmt.Sprintf("%s: sold %d @ %d, total %d, profit/unit %.2f", s.ItemName, s.Quantity, s.UnitPrice, s.TotalPrice, s.ProfitPerUnit)
		if !s.CostBasisKnown {
			msg += " (no cost basis)"
		}
		l.emit(ctx, entity.Event{
			Kind:      entity.EventSale,
			Item:      s.ItemName,
			Quantity:  s.Quantity,
			UnitPrice: s.UnitPrice,
			Message:   msg,
		})
	default:
		return errors.New("empty trade")
	}
	return nil
}

func (l *Loop) pace(ctx context.Context) error {
	if l.actionDelay <= 0 {
		return nil
	}

	t := time.NewTimer(l.actionDelay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", domain.ErrStopped, ctx.Err())
	case <-t.C:
		return nil
	}
}

func (l *Loop) await(ctx context.Context) error {
	if !l.control.Paused() {
		return l.control.Await(ctx)
	}

	l.emit(ctx, entity.Event{Kind: entity.EventPaused, Message: "paused"})
	if err := l.control.Await(ctx); err != nil {
		return err
	}
	l.emit(ctx, entity.Event{Kind: entity.EventResumed, Message: "resumed"})
	return nil
}

// checkpoint is the inner suspension point: pause, stop and skip.
func (l *Loop) checkpoint(ctx context.Context) error {
	if err := l.await(ctx); err != nil {
		return err
	}
	return l.control.Checkpoint(ctx)
}

func (l *Loop) emit(ctx context.Context, e entity.Event) {
	t := l.books.Snapshot()
	e.Time = l.now()
	e.Spent = t.Budget.Spent
	e.Income = t.Income
	l.sink.Emit(ctx, e)
}

// senseValue re-reads until a valid value comes back. Every invalid reading
// counts against the round; one past the cap abandons the item.
func (l *Loop) senseValue(ctx context.Context, r *Round, what string, read func(context.Context) (int64, bool, error)) (int64, error) {
	for {
		v, ok, err := read(ctx)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", what, err)
		}
		if ok {
			r.Failures = 0
			return v, nil
		}

		r.Failures++
		if r.Failures > l.maxSensingFailures {
			return 0, domain.Reasonf(domain.ErrSensingFailure, "%s unreadable after %d attempts", what, r.Failures)
		}

		logger(ctx).Debug("invalid reading",
			slog.String(logx.FieldItem, r.Item.Name),
			slog.String(logx.FieldReason, what),
			slog.Int(logx.FieldAttempt, r.Failures),
		)
		l.emit(ctx, entity.Event{
			Kind:    entity.EventRetry,
			Item:    r.Item.Name,
			Message: fmt.Sprintf("%s: invalid %s reading (%d/%d)", r.Item.Name, what, r.Failures, l.maxSensingFailures),
		})

		if err := l.checkpoint(ctx); err != nil {
			return 0, err
		}
	}
}

func (l *Loop) senseDigits(ctx context.Context, r *Round, what string, region value.Region) (int64, error) {
	return l.senseValue(ctx, r, what, func(ctx context.Context) (int64, bool, error) {
		reading, err := l.perceiver.ReadDigits(ctx, region)
		if err != nil {
			return 0, false, err
		}
		return reading.Value, reading.Valid, nil
	})
}

// senseQuantity takes the most confident fragment as the available count.
func (l *Loop) senseQuantity(ctx context.Context, r *Round, region value.Region) (int, error) {
	v, err := l.senseValue(ctx, r, "quantity", func(ctx context.Context) (int64, bool, error) {
		fragments, err := l.perceiver.ReadFragments(ctx, region)
		if err != nil {
			return 0, false, err
		}
		best, ok := entity.MostConfident(fragments)
		if !ok {
			return 0, false, nil
		}
		reading := entity.ParsePriceReading(best.Text)
		return reading.Value, reading.Valid, nil
	})
	return int(v), err
}

// search brings the item's market page up.
func (l *Loop) search(ctx context.Context, name string) error {
	if !l.layout.ClearSearch.IsZero() {
		if err := l.actuator.Click(ctx, l.layout.ClearSearch); err != nil {
			return fmt.Errorf("clear search: %w", err)
		}
	}
	if err := l.actuator.Clear(ctx, l.layout.SearchField); err != nil {
		return fmt.Errorf("focus search: %w", err)
	}
	if err := l.actuator.Type(ctx, name); err != nil {
		return fmt.Errorf("type name: %w", err)
	}
	if err := l.actuator.Press(ctx, "enter"); err != nil {
		return fmt.Errorf("submit search: %w", err)
	}
	return nil
}

// verify compares the dialog's item name with the round's item. On mismatch
// the dialog is cancelled.
func (l *Loop) verify(ctx context.Context, r *Round, region value.Region) error {
	sensed, err := l.perceiver.ReadText(ctx, region)
	if err != nil {
		return fmt.Errorf("read name: %w", err)
	}

	score, ok := l.matcher.Match(sensed, r.Item.Name)
	logger(ctx).Debug("name verification",
		slog.String(logx.FieldItem, r.Item.Name),
		slog.String(logx.FieldSensed, sensed),
		slog.Float64(logx.FieldSimilarity, score),
	)
	if ok {
		return nil
	}

	return l.leave(ctx, r, domain.Reasonf(domain.ErrVerificationMismatch, "dialog shows %q (similarity %.1f)", sensed, score))
}

// typeInto replaces the content of the field at p.
func (l *Loop) typeInto(ctx context.Context, p value.Point, text string) error {
	if err := l.actuator.Clear(ctx, p); err != nil {
		return err
	}
	return l.actuator.Type(ctx, text)
}

// dismissPopup runs after a confirmed trade, so a failure here is only logged:
// the trade itself has to be recorded either way.
func (l *Loop) dismissPopup(ctx context.Context, r *Round) {
	if l.layout.PopupOK.IsZero() {
		return
	}
	if err := l.actuator.Click(ctx, l.layout.PopupOK); err != nil {
		logger(ctx).Warn("dismiss popup", slog.String(logx.FieldItem, r.Item.Name), logx.Error(err))
	}
}

// stopped turns a cancellation that surfaced from an adapter call into a stop.
func stopped(ctx context.Context, err error) error {
	if err == nil || ctx.Err() == nil || errors.Is(err, domain.ErrStopped) || !errors.Is(err, ctx.Err()) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStopped, err)
}

type nopSink struct{}

func (nopSink) Emit(context.Context, entity.Event) {}
