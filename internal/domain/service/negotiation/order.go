package negotiation

import (
	"context"
	"fmt"
	"strconv"

	"trade_pilot/internal/domain/entity"
)

// Order places standing buy orders at the limit price in batches until the
// desired quantity is reserved.
type Order struct {
	catalogCursor
}

func NewOrder(items []entity.Item) *Order {
	return &Order{catalogCursor: catalogCursor{items: items}}
}

func (o *Order) Mode() entity.Mode {
	return entity.ModeOrder
}

func (o *Order) Begin(ctx context.Context, l *Loop, r *Round) error {
	return l.search(ctx, r.Item.Name)
}

// Sense reads nothing: orders are always priced at the limit.
func (o *Order) Sense(_ context.Context, _ *Loop, r *Round) (Quote, error) {
	return Quote{UnitPrice: r.LimitPrice}, nil
}

func (o *Order) Decide(r *Round, q Quote) error {
	return nil
}

// SizeBatch opens the order dialog if needed. The client closes the dialog on
// every confirm, so each later batch searches again before reopening it. The
// name is verified only when the dialog is (re)opened.
func (o *Order) SizeBatch(ctx context.Context, l *Loop, r *Round, _ Quote) (int, error) {
	if !r.DialogOpen {
		if r.Bought > 0 {
			if err := l.search(ctx, r.Item.Name); err != nil {
				return 0, err
			}
		}
		if err := l.actuator.Click(ctx, l.layout.OrderButton); err != nil {
			return 0, fmt.Errorf("open order dialog: %w", err)
		}
		r.DialogOpen = true

		if err := l.verify(ctx, r, l.layout.NameRegion); err != nil {
			return 0, err
		}
	}
	return min(OrderBatch(r.Item.DesiredQuantity), r.Outstanding()), nil
}

func (o *Order) Act(ctx context.Context, l *Loop, r *Round, q Quote, qty int) (Trade, error) {
	if err := l.typeInto(ctx, l.layout.OrderPriceField, strconv.FormatInt(q.UnitPrice, 10)); err != nil {
		return Trade{}, fmt.Errorf("enter order price: %w", err)
	}
	if err := l.typeInto(ctx, l.layout.OrderQuantityField, strconv.Itoa(qty)); err != nil {
		return Trade{}, fmt.Errorf("enter order quantity: %w", err)
	}
	if err := l.actuator.Click(ctx, l.layout.OrderConfirm); err != nil {
		return Trade{}, fmt.Errorf("confirm order: %w", err)
	}
	r.DialogOpen = false

	l.dismissPopup(ctx, r)

	return Trade{Purchase: &entity.PurchaseAttempt{
		ItemName:  r.Item.Name,
		Quantity:  qty,
		UnitPrice: q.UnitPrice,
		Mode:      entity.ModeOrder,
	}}, nil
}

// OrderBatch is a third of the desired quantity for large orders, a tenth
// otherwise, and never less than one.
func OrderBatch(desired int) int {
	batch := desired / 10
	if desired > 30 {
		batch = desired / 3
	}
	return max(batch, 1)
}
