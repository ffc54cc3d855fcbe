package negotiation

import (
	"sync"

	"trade_pilot/internal/domain/entity"
)

// Totals is a read-only copy of the session accumulators.
type Totals struct {
	Budget         entity.Budget
	Income         int64
	SaleCost       float64
	Purchases      int
	Sales          []entity.Sale
	ItemsCompleted int
	ItemsAbandoned int
	CurrentItem    string
}

// NetProfit is income minus everything paid for: purchase spend in buy modes,
// cost basis of sold units in sell mode.
func (t Totals) NetProfit() float64 {
	return float64(t.Income) - t.TotalCost()
}

func (t Totals) TotalCost() float64 {
	return float64(t.Budget.Spent) + t.SaleCost
}

// Books holds the session accumulators. The loop is the only writer; status
// readers take snapshots.
type Books struct {
	mu     sync.RWMutex
	totals Totals
}

func NewBooks(budget entity.Budget) *Books {
	return &Books{totals: Totals{Budget: budget}}
}

func (b *Books) Admits(price int64) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.totals.Budget.Admits(price)
}

func (b *Books) Clamp(qty int, price int64) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.totals.Budget.Clamp(qty, price)
}

func (b *Books) commitPurchase(p entity.PurchaseAttempt) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.totals.Budget.Commit(p.Cost()); err != nil {
		return err
	}
	b.totals.Purchases++
	return nil
}

func (b *Books) addSale(s entity.Sale) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.totals.Income += s.TotalPrice
	b.totals.SaleCost += s.Cost()
	b.totals.Sales = append(b.totals.Sales, s)
}

func (b *Books) setCurrent(name string) {
	b.mu.Lock()
	b.totals.CurrentItem = name
	b.mu.Unlock()
}

func (b *Books) itemDone(abandoned bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if abandoned {
		b.totals.ItemsAbandoned++
	} else {
		b.totals.ItemsCompleted++
	}
	b.totals.CurrentItem = ""
}

func (b *Books) Snapshot() Totals {
	b.mu.RLock()
	defer b.mu.RUnlock()

	t := b.totals
	t.Sales = append([]entity.Sale(nil), b.totals.Sales...)
	return t
}
