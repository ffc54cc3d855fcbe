package negotiation

import (
	"context"
	"fmt"
	"strconv"

	"trade_pilot/internal/domain"
	"trade_pilot/internal/domain/entity"
)

// Manual buys from the cheapest listing through the buy dialog.
type Manual struct {
	catalogCursor
}

func NewManual(items []entity.Item) *Manual {
	return &Manual{catalogCursor: catalogCursor{items: items}}
}

func (m *Manual) Mode() entity.Mode {
	return entity.ModeManual
}

func (m *Manual) Begin(ctx context.Context, l *Loop, r *Round) error {
	return l.search(ctx, r.Item.Name)
}

func (m *Manual) Sense(ctx context.Context, l *Loop, r *Round) (Quote, error) {
	price, err := l.senseDigits(ctx, r, "price", l.layout.PriceRegion)
	if err != nil {
		return Quote{}, err
	}
	return Quote{UnitPrice: price}, nil
}

func (m *Manual) Decide(r *Round, q Quote) error {
	if q.UnitPrice > r.LimitPrice {
		return domain.Reasonf(domain.ErrUnprofitable, "price %d above limit %d", q.UnitPrice, r.LimitPrice)
	}
	return nil
}

func (m *Manual) SizeBatch(ctx context.Context, l *Loop, r *Round, _ Quote) (int, error) {
	if err := l.actuator.Click(ctx, l.layout.BuyButton); err != nil {
		return 0, fmt.Errorf("open buy dialog: %w", err)
	}
	r.DialogOpen = true

	if err := l.verify(ctx, r, l.layout.NameRegion); err != nil {
		return 0, err
	}

	available, err := l.senseQuantity(ctx, r, l.layout.QuantityRegion)
	if err != nil {
		return 0, err
	}
	return min(available, r.Outstanding()), nil
}

func (m *Manual) Act(ctx context.Context, l *Loop, r *Round, q Quote, qty int) (Trade, error) {
	if qty > 1 {
		if err := l.typeInto(ctx, l.layout.QuantityField, strconv.Itoa(qty)); err != nil {
			return Trade{}, fmt.Errorf("enter quantity: %w", err)
		}
	}
	if err := l.actuator.Click(ctx, l.layout.ConfirmButton); err != nil {
		return Trade{}, fmt.Errorf("confirm purchase: %w", err)
	}
	r.DialogOpen = false

	p := entity.PurchaseAttempt{
		ItemName:  r.Item.Name,
		Quantity:  qty,
		UnitPrice: q.UnitPrice,
		Mode:      entity.ModeManual,
	}

	l.dismissPopup(ctx, r)
	return Trade{Purchase: &p}, nil
}
