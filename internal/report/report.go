package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"trade_pilot/internal/domain"
	"trade_pilot/internal/domain/entity"
	"trade_pilot/internal/domain/service/negotiation"
	"trade_pilot/pkg/contextx"
	"trade_pilot/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault

// Report is everything persisted when a session ends.
type Report struct {
	SessionID  string
	Mode       entity.Mode
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    string
	Totals     negotiation.Totals
	Log        []entity.LogLine
}

// SaleLine aggregates the sales of one item.
type SaleLine struct {
	ItemName string
	Quantity int
	Income   int64
	Cost     float64
	Profit   float64
	Unknown  bool
}

// SaleBreakdown groups sales by item, ordered by name.
func SaleBreakdown(sales []entity.Sale) []SaleLine {
	byItem := make(map[string]*SaleLine)
	for _, s := range sales {
		line, ok := byItem[s.ItemName]
		if !ok {
			line = &SaleLine{ItemName: s.ItemName}
			byItem[s.ItemName] = line
		}
		line.Quantity += s.Quantity
		line.Income += s.TotalPrice
		line.Cost += s.Cost()
		line.Profit += float64(s.TotalPrice) - s.Cost()
		line.Unknown = line.Unknown || !s.CostBasisKnown
	}

	lines := make([]SaleLine, 0, len(byItem))
	for _, l := range byItem {
		lines = append(lines, *l)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ItemName < lines[j].ItemName })
	return lines
}

// Render produces the plain-text report.
func Render(r Report) string {
	var sb strings.Builder
	t := r.Totals

	fmt.Fprintf(&sb, "Session %s (%s)\n", r.SessionID, r.Mode)
	fmt.Fprintf(&sb, "Started:  %s\n", r.StartedAt.Format(time.DateTime))
	fmt.Fprintf(&sb, "Finished: %s\n", r.FinishedAt.Format(time.DateTime))
	fmt.Fprintf(&sb, "Outcome:  %s\n\n", r.Outcome)

	fmt.Fprintf(&sb, "Total income: %d\n", t.Income)
	fmt.Fprintf(&sb, "Total cost:   %.2f\n", t.TotalCost())
	fmt.Fprintf(&sb, "Net profit:   %.2f\n", t.NetProfit())
	fmt.Fprintf(&sb, "Budget:       spent %d of %d (remaining %d)\n", t.Budget.Spent, t.Budget.Total, t.Budget.Remaining())
	fmt.Fprintf(&sb, "Items:        %d completed, %d abandoned, %d purchases\n", t.ItemsCompleted, t.ItemsAbandoned, t.Purchases)

	if lines := SaleBreakdown(t.Sales); len(lines) > 0 {
		sb.WriteString("\nSales by item:\n")
		for _, l := range lines {
			fmt.Fprintf(&sb, "  %s: qty %d, income %d, cost %.2f, profit %.2f", l.ItemName, l.Quantity, l.Income, l.Cost, l.Profit)
			if l.Unknown {
				sb.WriteString(" (cost basis incomplete)")
			}
			sb.WriteByte('\n')
		}
	}

	sb.WriteString("\nLog:\n")
	for _, line := range r.Log {
		sb.WriteString(line.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Writer persists reports as text files in one directory.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

func FileName(r Report) string {
	return fmt.Sprintf("session_%s_%s.txt", r.StartedAt.Format("20060102_150405"), r.SessionID)
}

// Write stores the report and returns its path.
func (w *Writer) Write(ctx context.Context, r Report) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", domain.WrapError(err, domain.ErrReport.Code, "create report directory")
	}

	path := filepath.Join(w.dir, FileName(r))
	if err := os.WriteFile(path, []byte(Render(r)), 0o644); err != nil {
		return "", domain.WrapError(err, domain.ErrReport.Code, "write report")
	}

	logger(ctx).Info("report written", slog.String(logx.FieldPath, path))
	return path, nil
}
