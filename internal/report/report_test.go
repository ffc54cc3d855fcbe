package report_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trade_pilot/internal/domain/entity"
	"trade_pilot/internal/domain/service/negotiation"
	"trade_pilot/internal/report"
)

func sampleReport() report.Report {
	started := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return report.Report{
		SessionID:  "cq1c2v0ja1dg",
		Mode:       entity.ModeSell,
		StartedAt:  started,
		FinishedAt: started.Add(5 * time.Minute),
		Outcome:    "halted: no sellable item left",
		Totals: negotiation.Totals{
			Budget: entity.NewBudget(1000, 0),
			Income: 279,
			Sales: []entity.Sale{
				{ItemName: "Iron Ore", Quantity: 2, TotalPrice: 179, CostBasis: 60, CostBasisKnown: true},
				{ItemName: "Copper Ore", Quantity: 1, TotalPrice: 100},
			},
			SaleCost:       120,
			ItemsCompleted: 2,
		},
		Log: []entity.LogLine{
			{Time: started, Message: "session started"},
			{Time: started.Add(time.Minute), Message: "Iron Ore: sold 2 @ 100"},
		},
	}
}

func TestRender(t *testing.T) {
	rq := require.New(t)

	text := report.Render(sampleReport())

	rq.Contains(text, "Total income: 279\n")
	rq.Contains(text, "Total cost:   120.00\n")
	rq.Contains(text, "Net profit:   159.00\n")
	rq.Contains(text, "  Copper Ore: qty 1, income 100, cost 0.00, profit 100.00 (cost basis incomplete)\n")
	rq.Contains(text, "  Iron Ore: qty 2, income 179, cost 120.00, profit 59.00\n")
	rq.Contains(text, "2026-03-14 09:31:00 Iron Ore: sold 2 @ 100\n")
	rq.Less(
		strings.Index(text, "Copper Ore: qty"),
		strings.Index(text, "Iron Ore: qty"),
	)
}

func TestRender_EmptySessionStillHasTotals(t *testing.T) {
	rq := require.New(t)

	text := report.Render(report.Report{SessionID: "x", Mode: entity.ModeManual, Totals: negotiation.Totals{Budget: entity.NewBudget(500, 0)}})

	rq.Contains(text, "Total income: 0\n")
	rq.Contains(text, "Net profit:   0.00\n")
	rq.Contains(text, "spent 0 of 500 (remaining 500)")
	rq.NotContains(text, "Sales by item")
}

func TestWriter_Write(t *testing.T) {
	rq := require.New(t)

	dir := filepath.Join(t.TempDir(), "reports")
	r := sampleReport()

	path, err := report.NewWriter(dir).Write(context.Background(), r)
	rq.NoError(err)
	rq.Equal(filepath.Join(dir, "session_20260314_093000_cq1c2v0ja1dg.txt"), path)

	data, err := os.ReadFile(path)
	rq.NoError(err)
	rq.Equal(report.Render(r), string(data))
}
