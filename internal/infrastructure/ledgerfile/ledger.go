package ledgerfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"trade_pilot/internal/domain"
	"trade_pilot/internal/domain/entity"
	"trade_pilot/pkg/contextx"
	"trade_pilot/pkg/errcodes"
	"trade_pilot/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault

var header = []string{"timestamp", "item_name", "quantity", "price_per_unit", "purchase_type"}

// CSVLedger is the append-only purchase ledger kept in a CSV file.
type CSVLedger struct {
	path string
	mu   sync.Mutex
}

func New(path string) *CSVLedger {
	return &CSVLedger{path: path}
}

func (l *CSVLedger) Path() string {
	return l.path
}

func (l *CSVLedger) Append(_ context.Context, entry entity.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return domain.WrapError(err, errcodes.LedgerUnavailable, "create ledger directory")
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return domain.WrapError(err, errcodes.LedgerUnavailable, "open ledger")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return domain.WrapError(err, errcodes.LedgerUnavailable, "stat ledger")
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return domain.WrapError(err, errcodes.LedgerUnavailable, "write ledger header")
		}
	}

	row := []string{
		entry.Timestamp.UTC().Format(time.RFC3339),
		entry.ItemName,
		strconv.Itoa(entry.Quantity),
		strconv.FormatInt(entry.PricePerUnit, 10),
		entry.PurchaseType.String(),
	}
	if err := w.Write(row); err != nil {
		return domain.WrapError(err, errcodes.LedgerUnavailable, "write ledger row")
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return domain.WrapError(err, errcodes.LedgerUnavailable, "flush ledger")
	}
	if err := f.Sync(); err != nil {
		return domain.WrapError(err, errcodes.LedgerUnavailable, "sync ledger")
	}
	return nil
}

// Entries reads the whole ledger. Malformed rows are skipped.
func (l *CSVLedger) Entries(ctx context.Context) ([]entity.LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.WrapError(err, errcodes.LedgerUnavailable, "open ledger")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)

	var entries []entity.LedgerEntry
	for line := 1; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
				logger(ctx).Warn("skipping ledger row", slog.Int(logx.FieldRow, line), logx.Error(err))
				continue
			}
			return nil, domain.WrapError(err, errcodes.LedgerUnavailable, "read ledger")
		}
		if line == 1 && record[0] == header[0] {
			continue
		}

		entry, err := parseRow(record)
		if err != nil {
			logger(ctx).Warn("skipping ledger row", slog.Int(logx.FieldRow, line), logx.Error(err))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (l *CSVLedger) Holding(ctx context.Context, itemName string) (entity.Holding, error) {
	entries, err := l.Entries(ctx)
	if err != nil {
		return entity.Holding{}, err
	}

	h := entity.Aggregate(entries)[itemName]
	h.ItemName = itemName
	return h, nil
}

// Holdings aggregates the whole ledger, ordered by item name.
func (l *CSVLedger) Holdings(ctx context.Context) ([]entity.Holding, error) {
	entries, err := l.Entries(ctx)
	if err != nil {
		return nil, err
	}

	aggregated := entity.Aggregate(entries)
	holdings := make([]entity.Holding, 0, len(aggregated))
	for _, h := range aggregated {
		holdings = append(holdings, h)
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].ItemName < holdings[j].ItemName })
	return holdings, nil
}

func parseRow(record []string) (entity.LedgerEntry, error) {
	ts, err := time.Parse(time.RFC3339, record[0])
	if err != nil {
		return entity.LedgerEntry{}, fmt.Errorf("timestamp: %w", err)
	}
	qty, err := strconv.Atoi(record[2])
	if err != nil || qty <= 0 {
		return entity.LedgerEntry{}, fmt.Errorf("quantity %q is not a positive integer", record[2])
	}
	price, err := strconv.ParseInt(record[3], 10, 64)
	if err != nil || price <= 0 {
		return entity.LedgerEntry{}, fmt.Errorf("price_per_unit %q is not a positive integer", record[3])
	}
	mode, err := entity.ParseMode(record[4])
	if err != nil {
		return entity.LedgerEntry{}, err
	}

	return entity.LedgerEntry{
		Timestamp:    ts,
		ItemName:     record[1],
		Quantity:     qty,
		PricePerUnit: price,
		PurchaseType: mode,
	}, nil
}
