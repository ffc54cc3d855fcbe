// Command ledger prints the per-item weighted average purchase price from the
// configured purchase ledger.
//
//	go run ./cmd/ledger            all items
//	go run ./cmd/ledger "Iron Ore" one item
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"trade_pilot/internal/config"
	"trade_pilot/internal/domain/entity"
	"trade_pilot/internal/infrastructure/ledgerstore"
	"trade_pilot/pkg/contextx"
	"trade_pilot/pkg/logx"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := logx.NewLogger(os.Stderr, slog.LevelWarn)
	ctx = contextx.WithLogger(ctx, log)

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Error("ledger summary failed", logx.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	ledger, closeLedger, err := ledgerstore.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("ledgerstore.Open: %w", err)
	}
	defer closeLedger(ctx)

	var holdings []entity.Holding

	if len(args) > 0 {
		for _, name := range args {
			h, err := ledger.Holding(ctx, name)
			if err != nil {
				return fmt.Errorf("ledger.Holding: %w", err)
			}
			holdings = append(holdings, h)
		}
	} else {
		holdings, err = ledger.Holdings(ctx)
		if err != nil {
			return fmt.Errorf("ledger.Holdings: %w", err)
		}
	}

	return printHoldings(holdings)
}

func printHoldings(holdings []entity.Holding) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintln(w, "ITEM\tQUANTITY\tTOTAL COST\tWAPP\t")

	var quantity, cost int64
	for _, h := range holdings {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t\n", h.ItemName, h.TotalQuantity, h.TotalCost, h.WAPP())
		quantity += h.TotalQuantity
		cost += h.TotalCost
	}

	fmt.Fprintf(w, "TOTAL\t%d\t%d\t\t\n", quantity, cost)

	return w.Flush()
}
