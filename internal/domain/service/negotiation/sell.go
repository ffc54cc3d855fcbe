package negotiation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"trade_pilot/internal/domain"
	"trade_pilot/internal/domain/entity"
	"trade_pilot/pkg/logx"
)

// Sell sells whatever the client currently shows, one batch per item.
type Sell struct {
	costs CostBasis

	misses  int
	pending bool
	sold    bool
}

func NewSell(costs CostBasis) *Sell {
	return &Sell{costs: costs}
}

func (s *Sell) Mode() entity.Mode {
	return entity.ModeSell
}

// Next senses the displayed item. A round that ended without a sale counts as
// a miss as well; enough consecutive misses mean the stock is gone.
func (s *Sell) Next(ctx context.Context, l *Loop) (entity.Item, error) {
	if s.pending && !s.sold {
		s.misses++
	}
	s.pending, s.sold = false, false

	for {
		if s.misses >= l.maxSensingFailures {
			return entity.Item{}, domain.Reasonf(domain.ErrStockExhausted, "%d consecutive attempts found nothing to sell", s.misses)
		}

		name, err := l.perceiver.ReadText(ctx, l.layout.SellNameRegion)
		if err != nil {
			return entity.Item{}, fmt.Errorf("read sell item name: %w", err)
		}
		name = strings.Join(strings.Fields(name), " ")
		if name != "" {
			s.pending = true
			return entity.Item{Name: name, DesiredQuantity: 1}, nil
		}

		s.misses++
		l.emit(ctx, entity.Event{
			Kind:    entity.EventRetry,
			Message: fmt.Sprintf("no sellable item on screen (%d/%d)", s.misses, l.maxSensingFailures),
		})
		if err := l.await(ctx); err != nil {
			return entity.Item{}, err
		}
	}
}

func (s *Sell) Begin(ctx context.Context, l *Loop, r *Round) error {
	basis, known, err := s.costs.CostBasis(ctx, r.Item.Name)
	if err != nil {
		return err
	}
	r.CostBasis, r.CostBasisKnown = basis, known
	if !known {
		logger(ctx).Warn("no cost basis", slog.String(logx.FieldItem, r.Item.Name))
	}

	if err := l.actuator.Click(ctx, l.layout.DecreaseButton); err != nil {
		return fmt.Errorf("decrease sale quantity: %w", err)
	}
	return nil
}

func (s *Sell) Sense(ctx context.Context, l *Loop, r *Round) (Quote, error) {
	total, err := l.senseDigits(ctx, r, "total price", l.layout.SellTotalRegion)
	if err != nil {
		return Quote{}, err
	}
	unit, err := l.senseDigits(ctx, r, "unit price", l.layout.SellUnitRegion)
	if err != nil {
		return Quote{}, err
	}
	return Quote{UnitPrice: unit, Total: total}, nil
}

func (s *Sell) Decide(*Round, Quote) error {
	return nil
}

func (s *Sell) SizeBatch(_ context.Context, l *Loop, _ *Round, q Quote) (int, error) {
	qty := ImpliedQuantity(q.Total, q.UnitPrice, l.taxRate)
	if qty < 1 {
		return 0, domain.Reasonf(domain.ErrSensingFailure, "total %d and unit %d imply no quantity", q.Total, q.UnitPrice)
	}
	return qty, nil
}

func (s *Sell) Act(ctx context.Context, l *Loop, r *Round, q Quote, qty int) (Trade, error) {
	if err := l.actuator.Click(ctx, l.layout.SellConfirm); err != nil {
		return Trade{}, fmt.Errorf("confirm sale: %w", err)
	}
	s.sold = true
	s.misses = 0

	l.dismissPopup(ctx, r)

	net := NetUnitPrice(q.UnitPrice, l.taxRate)
	return Trade{Sale: &entity.Sale{
		ItemName:       r.Item.Name,
		Quantity:       qty,
		TotalPrice:     q.Total,
		UnitPrice:      q.UnitPrice,
		NetUnitPrice:   net.InexactFloat64(),
		CostBasis:      r.CostBasis,
		ProfitPerUnit:  net.Sub(decimal.NewFromFloat(r.CostBasis)).InexactFloat64(),
		CostBasisKnown: r.CostBasisKnown,
	}}, nil
}

// NetUnitPrice is what one unit brings in after tax.
func NetUnitPrice(unit int64, taxRate float64) decimal.Decimal {
	return decimal.NewFromInt(unit).Mul(decimal.NewFromInt(1).Sub(decimal.NewFromFloat(taxRate)))
}

// ImpliedQuantity recovers the batch size from the after-tax total the sell
// dialog shows: round(total / (unit * (1 - tax))).
func ImpliedQuantity(total, unit int64, taxRate float64) int {
	net := NetUnitPrice(unit, taxRate)
	if !net.IsPositive() {
		return 0
	}
	return int(decimal.NewFromInt(total).Div(net).Round(0).IntPart())
}
