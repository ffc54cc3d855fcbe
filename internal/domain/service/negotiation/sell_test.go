package negotiation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trade_pilot/internal/domain"
	"trade_pilot/internal/domain/entity"
	"trade_pilot/internal/domain/service/negotiation"
)

func seededLedger(entries ...entity.PurchaseAttempt) *fakeLedger {
	l := &fakeLedger{}
	for _, p := range entries {
		_ = l.Append(context.Background(), entity.NewLedgerEntry(p, time.Now()))
	}
	return l
}

func TestSell_UsesLedgerCostBasis(t *testing.T) {
	rq := require.New(t)

	h := newHarness(entity.NewBudget(1, 0))
	h.ledger = seededLedger(
		entity.PurchaseAttempt{ItemName: "Iron Ore", Quantity: 2, UnitPrice: 50, Mode: entity.ModeManual},
		entity.PurchaseAttempt{ItemName: "Iron Ore", Quantity: 2, UnitPrice: 70, Mode: entity.ModeOrder},
	)
	h.loop = negotiation.NewLoop(h.perceiver, h.actuator, h.ledger, h.control, h.books, testLayout).WithEventSink(h.sink)

	h.perceiver.texts[testLayout.SellNameRegion] = []string{"Iron\nOre", ""}
	h.perceiver.digits[testLayout.SellTotalRegion] = []entity.PriceReading{valid(179)}
	h.perceiver.digits[testLayout.SellUnitRegion] = []entity.PriceReading{valid(100)}

	err := h.loop.Run(context.Background(), negotiation.NewSell(negotiation.NewCostBook(h.ledger, nil)))
	rq.ErrorIs(err, domain.ErrStockExhausted)

	totals := h.books.Snapshot()
	rq.Len(totals.Sales, 1)

	sale := totals.Sales[0]
	rq.Equal("Iron Ore", sale.ItemName)
	rq.Equal(2, sale.Quantity)
	rq.Equal(int64(179), sale.TotalPrice)
	rq.InDelta(89.5, sale.NetUnitPrice, 1e-9)
	rq.InDelta(60.0, sale.CostBasis, 1e-9)
	rq.InDelta(29.5, sale.ProfitPerUnit, 1e-9)
	rq.True(sale.CostBasisKnown)

	rq.Equal(int64(179), totals.Income)
	rq.InDelta(120.0, totals.SaleCost, 1e-9)
	rq.InDelta(59.0, totals.NetProfit(), 1e-9)
	rq.Zero(totals.Budget.Spent)

	// Sales stay out of the purchase ledger.
	rq.Len(h.ledger.Entries(), 2)
	rq.Equal(1, h.actuator.Count(clickOn(testLayout.DecreaseButton)))
	rq.Equal(1, h.actuator.Count(clickOn(testLayout.SellConfirm)))
	rq.Equal(6, h.perceiver.Calls(testLayout.SellNameRegion))
	rq.Len(h.sink.Of(entity.EventSale), 1)
}

func TestSell_UnreadablePriceCountsAsMiss(t *testing.T) {
	rq := require.New(t)

	h := newHarness(entity.NewBudget(1, 0))
	h.perceiver.texts[testLayout.SellNameRegion] = []string{"Iron Ore"}
	h.perceiver.digits[testLayout.SellTotalRegion] = []entity.PriceReading{{}}

	err := h.loop.Run(context.Background(), negotiation.NewSell(negotiation.NewCostBook(h.ledger, nil)))
	rq.ErrorIs(err, domain.ErrStockExhausted)

	totals := h.books.Snapshot()
	rq.Empty(totals.Sales)
	rq.Equal(5, totals.ItemsAbandoned)
	rq.Zero(h.actuator.Count(clickOn(testLayout.SellConfirm)))
}

func TestSell_LedgerFailureIsCritical(t *testing.T) {
	rq := require.New(t)

	h := newHarness(entity.NewBudget(1, 0))
	h.ledger.holdErr = errors.New("disk gone")
	h.perceiver.texts[testLayout.SellNameRegion] = []string{"Iron Ore"}

	err := h.loop.Run(context.Background(), negotiation.NewSell(negotiation.NewCostBook(h.ledger, nil)))
	rq.Error(err)
	rq.False(domain.IsItemLocal(err))
	rq.False(domain.IsGracefulHalt(err))
	rq.Empty(h.actuator.Calls())
}

func TestCostBook(t *testing.T) {
	catalog := []entity.Item{
		{Name: "Copper Ore", TargetPrice: 80},
		{Name: "Iron Ore", TargetPrice: 120},
	}

	testCases := []struct {
		name   string
		ledger *fakeLedger
		item   string
		basis  float64
		known  bool
	}{
		{
			name: "ledger average wins over catalog",
			ledger: seededLedger(
				entity.PurchaseAttempt{ItemName: "Iron Ore", Quantity: 1, UnitPrice: 90},
				entity.PurchaseAttempt{ItemName: "Iron Ore", Quantity: 3, UnitPrice: 110},
			),
			item:  "Iron Ore",
			basis: 105,
			known: true,
		},
		{
			name:   "catalog reference without history",
			ledger: &fakeLedger{},
			item:   "copper  ore",
			basis:  80,
			known:  true,
		},
		{
			name:   "unknown item",
			ledger: &fakeLedger{},
			item:   "Silver Ingot",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			book := negotiation.NewCostBook(tc.ledger, catalog)
			basis, known, err := book.CostBasis(context.Background(), tc.item)
			rq.NoError(err)
			rq.Equal(tc.known, known)
			rq.InDelta(tc.basis, basis, 1e-9)
		})
	}
}

func TestCostBook_CachesHoldings(t *testing.T) {
	rq := require.New(t)

	ledger := seededLedger(entity.PurchaseAttempt{ItemName: "Iron Ore", Quantity: 1, UnitPrice: 90})
	book := negotiation.NewCostBook(ledger, nil)

	for range 3 {
		basis, known, err := book.CostBasis(context.Background(), "Iron Ore")
		rq.NoError(err)
		rq.True(known)
		rq.InDelta(90.0, basis, 1e-9)
	}
	rq.Equal(1, ledger.reads)
}

func TestImpliedQuantity(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		total int64
		unit  int64
		tax   float64
		qty   int
	}{
		{total: 179, unit: 100, tax: 0.105, qty: 2},
		{total: 895, unit: 100, tax: 0.105, qty: 10},
		{total: 300, unit: 100, tax: 0, qty: 3},
		{total: 40, unit: 100, tax: 0.105, qty: 0},
		{total: 100, unit: 0, tax: 0.105, qty: 0},
	}

	for _, tc := range testCases {
		rq.Equal(tc.qty, negotiation.ImpliedQuantity(tc.total, tc.unit, tc.tax), "%d / %d", tc.total, tc.unit)
	}
}
