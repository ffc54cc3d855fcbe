package negotiation_test

import (
	"context"
	"fmt"
	"sync"

	"trade_pilot/internal/domain/entity"
	"trade_pilot/internal/domain/value"
)

var testLayout = value.Layout{
	SearchField:    value.Point{X: 100, Y: 50},
	PriceRegion:    value.Region{X: 300, Y: 200, W: 80, H: 20},
	BuyButton:      value.Point{X: 500, Y: 200},
	NameRegion:     value.Region{X: 300, Y: 300, W: 200, H: 20},
	QuantityRegion: value.Region{X: 300, Y: 340, W: 60, H: 20},
	QuantityField:  value.Point{X: 320, Y: 380},
	ConfirmButton:  value.Point{X: 400, Y: 420},
	CancelButton:   value.Point{X: 480, Y: 420},
	PopupOK:        value.Point{X: 450, Y: 460},

	OrderButton:        value.Point{X: 560, Y: 200},
	OrderPriceField:    value.Point{X: 320, Y: 500},
	OrderQuantityField: value.Point{X: 320, Y: 540},
	OrderConfirm:       value.Point{X: 400, Y: 580},

	SellNameRegion:  value.Region{X: 700, Y: 100, W: 200, H: 20},
	SellTotalRegion: value.Region{X: 700, Y: 140, W: 80, H: 20},
	SellUnitRegion:  value.Region{X: 700, Y: 180, W: 80, H: 20},
	DecreaseButton:  value.Point{X: 650, Y: 220},
	SellConfirm:     value.Point{X: 700, Y: 260},
}

// fakePerceiver replays scripted readings per region. Once a script runs out
// its last value repeats.
type fakePerceiver struct {
	mu        sync.Mutex
	digits    map[value.Region][]entity.PriceReading
	texts     map[value.Region][]string
	fragments map[value.Region][][]entity.TextFragment
	calls     map[value.Region]int
	onRead    func(region value.Region, call int)
}

func newFakePerceiver() *fakePerceiver {
	return &fakePerceiver{
		digits:    map[value.Region][]entity.PriceReading{},
		texts:     map[value.Region][]string{},
		fragments: map[value.Region][][]entity.TextFragment{},
		calls:     map[value.Region]int{},
	}
}

func scripted[T any](script []T, n int) T {
	var zero T
	if len(script) == 0 {
		return zero
	}
	if n < len(script) {
		return script[n]
	}
	return script[len(script)-1]
}

func (p *fakePerceiver) hit(region value.Region) int {
	p.mu.Lock()
	n := p.calls[region]
	p.calls[region]++
	hook := p.onRead
	p.mu.Unlock()

	if hook != nil {
		hook(region, n)
	}
	return n
}

func (p *fakePerceiver) Calls(region value.Region) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[region]
}

func (p *fakePerceiver) ReadDigits(_ context.Context, region value.Region) (entity.PriceReading, error) {
	n := p.hit(region)
	return scripted(p.digits[region], n), nil
}

func (p *fakePerceiver) ReadText(_ context.Context, region value.Region) (string, error) {
	n := p.hit(region)
	return scripted(p.texts[region], n), nil
}

func (p *fakePerceiver) ReadFragments(_ context.Context, region value.Region) ([]entity.TextFragment, error) {
	n := p.hit(region)
	return scripted(p.fragments[region], n), nil
}

// fakeActuator records calls. Like the real one it reports a cancelled
// context as the call's error.
type fakeActuator struct {
	mu     sync.Mutex
	calls  []string
	onCall func(call string)
}

func (a *fakeActuator) record(ctx context.Context, call string) error {
	a.mu.Lock()
	a.calls = append(a.calls, call)
	hook := a.onCall
	a.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	return ctx.Err()
}

func (a *fakeActuator) Click(ctx context.Context, p value.Point) error {
	return a.record(ctx, "click "+p.String())
}

func (a *fakeActuator) Clear(ctx context.Context, p value.Point) error {
	return a.record(ctx, "clear "+p.String())
}

func (a *fakeActuator) Type(ctx context.Context, text string) error {
	return a.record(ctx, "type "+text)
}

func (a *fakeActuator) Press(ctx context.Context, key string) error {
	return a.record(ctx, "press "+key)
}

func (a *fakeActuator) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func (a *fakeActuator) Count(call string) int {
	n := 0
	for _, c := range a.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func clickOn(p value.Point) string {
	return "click " + p.String()
}

type fakeLedger struct {
	mu      sync.Mutex
	entries []entity.LedgerEntry
	holdErr error
	reads   int
}

func (l *fakeLedger) Append(_ context.Context, entry entity.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

func (l *fakeLedger) Holding(_ context.Context, itemName string) (entity.Holding, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reads++
	if l.holdErr != nil {
		return entity.Holding{}, l.holdErr
	}
	return entity.Aggregate(l.entries)[itemName], nil
}

func (l *fakeLedger) Entries() []entity.LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]entity.LedgerEntry(nil), l.entries...)
}

type fakeSink struct {
	mu     sync.Mutex
	events []entity.Event
}

func (s *fakeSink) Emit(_ context.Context, e entity.Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

func (s *fakeSink) Kinds() []entity.EventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]entity.EventKind, 0, len(s.events))
	for _, e := range s.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func (s *fakeSink) Of(kind entity.EventKind) []entity.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Event
	for _, e := range s.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func valid(v int64) entity.PriceReading {
	return entity.NewPriceReading(v)
}

func fragment(text string, confidence float64) []entity.TextFragment {
	return []entity.TextFragment{{Text: text, Confidence: confidence}}
}

// ironOre has a limit price of 100 at transport cost 350.
func ironOre(desired int) entity.Item {
	return entity.Item{
		Name:            "Iron Ore",
		TargetPrice:     1000,
		PresenceRatio:   0.8,
		WeightPerUnit:   2,
		DesiredQuantity: desired,
	}
}

func named(item entity.Item, name string) entity.Item {
	item.Name = name
	return item
}

func describe(entries []entity.LedgerEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, fmt.Sprintf("%s %s %d@%d", e.ItemName, e.PurchaseType, e.Quantity, e.PricePerUnit))
	}
	return out
}
