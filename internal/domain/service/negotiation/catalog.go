package negotiation

import (
	"context"

	"trade_pilot/internal/domain/entity"
)

// catalogCursor walks the catalog in order for the buy strategies.
type catalogCursor struct {
	items []entity.Item
	pos   int
}

func (c *catalogCursor) Next(context.Context, *Loop) (entity.Item, error) {
	if c.pos >= len(c.items) {
		return entity.Item{}, ErrNoMoreItems
	}
	item := c.items[c.pos]
	c.pos++
	return item, nil
}
