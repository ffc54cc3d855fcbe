package entity

import "fmt"

// Budget tracks spending for one session. Spent only grows.
type Budget struct {
	Total          int64
	Spent          int64
	MinimumReserve int64
}

func NewBudget(total, minimumReserve int64) Budget {
	return Budget{Total: total, MinimumReserve: minimumReserve}
}

func (b Budget) Remaining() int64 {
	return b.Total - b.Spent
}

// Admits reports whether one more unit at price may be bought. It fails when
// the unit itself would overspend or when the remaining budget has already
// sunk below the reserve.
func (b Budget) Admits(price int64) bool {
	if b.Spent+price > b.Total {
		return false
	}
	return b.Remaining() >= b.MinimumReserve
}

// Clamp reduces qty so that qty*price fits into the remaining budget.
func (b Budget) Clamp(qty int, price int64) int {
	if qty <= 0 || price <= 0 {
		return 0
	}
	remaining := b.Remaining()
	if int64(qty)*price <= remaining {
		return qty
	}
	if remaining <= 0 {
		return 0
	}
	return int(remaining / price)
}

// Commit books cost. It refuses to push Spent above Total.
func (b *Budget) Commit(cost int64) error {
	if cost < 0 {
		return fmt.Errorf("negative cost %d", cost)
	}
	if b.Spent+cost > b.Total {
		return fmt.Errorf("cost %d exceeds remaining budget %d", cost, b.Remaining())
	}
	b.Spent += cost
	return nil
}
