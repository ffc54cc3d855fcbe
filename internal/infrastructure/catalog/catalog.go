package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"trade_pilot/internal/domain"
	"trade_pilot/internal/domain/entity"
	"trade_pilot/pkg/contextx"
	"trade_pilot/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault

const (
	colName    = "name"
	colValue   = "value"
	colStore   = "store"
	colPresent = "present"
	colWeight  = "weightforitem"
	colProfit  = "profit"
)

var (
	requiredColumns = []string{colName, colValue, colStore, colPresent, colWeight}
	tierTag         = regexp.MustCompile(`(?i)\bT(\d+)\b`)
)

type Options struct {
	// StartRow is the 1-based data row to start from.
	StartRow     int
	SortByProfit bool
	// TopTierMin keeps only items tagged T<n> with n >= TopTierMin. Zero
	// disables the filter.
	TopTierMin int
}

// Load reads the catalog CSV at path.
func Load(ctx context.Context, path string, opts Options) ([]entity.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.WrapError(err, domain.ErrCatalogMalformed.Code, "open catalog")
	}
	defer f.Close()

	items, err := Parse(ctx, f, opts)
	if err != nil {
		return nil, err
	}

	logger(ctx).Info("catalog loaded", slog.String(logx.FieldPath, path), slog.Int(logx.FieldCount, len(items)))
	return items, nil
}

// Parse reads a header-driven catalog. A missing required column fails the
// whole load; a bad row is only skipped.
func Parse(ctx context.Context, r io.Reader, opts Options) ([]entity.Item, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	head, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.Reasonf(domain.ErrCatalogMalformed, "catalog is empty")
	}
	if err != nil {
		return nil, domain.WrapError(err, domain.ErrCatalogMalformed.Code, "read catalog header")
	}

	columns := make(map[string]int, len(head))
	for i, name := range head {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}

	missing := lo.Filter(requiredColumns, func(c string, _ int) bool {
		_, ok := columns[c]
		return !ok
	})
	if len(missing) > 0 {
		return nil, domain.Reasonf(domain.ErrCatalogMalformed, "missing required columns: %s", strings.Join(missing, ", "))
	}

	startRow := max(opts.StartRow, 1)

	var items []entity.Item
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if row < startRow {
			continue
		}
		if parseErr := (*csv.ParseError)(nil); errors.As(err, &parseErr) {
			logger(ctx).Warn("skipping catalog row",
				slog.Int(logx.FieldRow, row),
				logx.Error(domain.WrapError(err, domain.ErrCatalogRow.Code, "malformed row")),
			)
			continue
		}
		if err != nil {
			return nil, domain.WrapError(err, domain.ErrCatalogMalformed.Code, "read catalog")
		}

		item, err := parseRow(record, columns)
		if err == nil {
			err = item.Validate()
		}
		if err != nil {
			logger(ctx).Warn("skipping catalog row",
				slog.Int(logx.FieldRow, row),
				logx.Error(domain.WrapError(err, domain.ErrCatalogRow.Code, "invalid row")),
			)
			continue
		}

		item.Row = row
		items = append(items, item)
	}

	if opts.TopTierMin > 0 {
		items = lo.Filter(items, func(item entity.Item, _ int) bool {
			tier, ok := Tier(item.Name)
			return ok && tier >= opts.TopTierMin
		})
	}

	if opts.SortByProfit {
		SortByProfit(items)
	}

	return items, nil
}

// Tier extracts n from a T<n> tag in the item name.
func Tier(name string) (int, bool) {
	m := tierTag.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// SortByProfit orders by descending profit hint. Items without a hint go last
// and keep their catalog order.
func SortByProfit(items []entity.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.HasProfit != b.HasProfit {
			return a.HasProfit
		}
		return a.Profit > b.Profit
	})
}

func parseRow(record []string, columns map[string]int) (entity.Item, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var (
		item entity.Item
		err  error
	)
	item.Name = field(colName)

	if item.TargetPrice, err = parseInt(field(colValue)); err != nil {
		return item, fmt.Errorf("%s: %w", colValue, err)
	}
	store, err := parseInt(field(colStore))
	if err != nil {
		return item, fmt.Errorf("%s: %w", colStore, err)
	}
	item.DesiredQuantity = int(store)

	if item.PresenceRatio, err = parseFloat(field(colPresent)); err != nil {
		return item, fmt.Errorf("%s: %w", colPresent, err)
	}
	if item.WeightPerUnit, err = parseFloat(field(colWeight)); err != nil {
		return item, fmt.Errorf("%s: %w", colWeight, err)
	}

	if raw := field(colProfit); raw != "" {
		if item.Profit, err = parseFloat(raw); err != nil {
			return item, fmt.Errorf("%s: %w", colProfit, err)
		}
		item.HasProfit = true
	}

	return item, nil
}

// parseInt accepts spreadsheet numbers such as "1 250" or "1250.0" and
// truncates fractions.
func parseInt(s string) (int64, error) {
	d, err := decimal.NewFromString(normalizeNumber(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return d.Truncate(0).IntPart(), nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(normalizeNumber(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return v, nil
}

func normalizeNumber(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	return strings.ReplaceAll(s, ",", ".")
}
