package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"trade_pilot/internal/domain"
	"trade_pilot/internal/domain/entity"
	"trade_pilot/internal/infrastructure/catalog"
)

const sample = `Name,Value,Store,Present,WeightForItem,Profit
Iron Ore,1000,5,0.8,2,120
Adept's Hunter Hood T4,2400,2,"0,9",1.5,
Copper Ore,abc,3,0.8,1,50
Expert's Bag T5,"5 000",1,1,3,900
Silver Ingot,300,0,0.5,1,10
Master's Cape T6,8000,1,0.95,0.5,400
`

func names(items []entity.Item) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.Name)
	}
	return out
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name  string
		opts  catalog.Options
		names []string
		rows  []int
	}{
		{
			name:  "bad rows are skipped",
			names: []string{"Iron Ore", "Adept's Hunter Hood T4", "Expert's Bag T5", "Master's Cape T6"},
			rows:  []int{1, 2, 4, 6},
		},
		{
			name:  "start row is one based",
			opts:  catalog.Options{StartRow: 4},
			names: []string{"Expert's Bag T5", "Master's Cape T6"},
			rows:  []int{4, 6},
		},
		{
			name:  "profit sort puts missing hints last",
			opts:  catalog.Options{SortByProfit: true},
			names: []string{"Expert's Bag T5", "Master's Cape T6", "Iron Ore", "Adept's Hunter Hood T4"},
			rows:  []int{4, 6, 1, 2},
		},
		{
			name:  "top tier filter",
			opts:  catalog.Options{TopTierMin: 5},
			names: []string{"Expert's Bag T5", "Master's Cape T6"},
			rows:  []int{4, 6},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			items, err := catalog.Parse(context.Background(), strings.NewReader(sample), tc.opts)
			rq.NoError(err)
			rq.Equal(tc.names, names(items))

			rows := make([]int, 0, len(items))
			for _, i := range items {
				rows = append(rows, i.Row)
			}
			rq.Equal(tc.rows, rows)
		})
	}
}

func TestParse_Fields(t *testing.T) {
	rq := require.New(t)

	items, err := catalog.Parse(context.Background(), strings.NewReader(sample), catalog.Options{})
	rq.NoError(err)

	rq.Equal(entity.Item{
		Name: "Iron Ore", TargetPrice: 1000, PresenceRatio: 0.8, WeightPerUnit: 2,
		DesiredQuantity: 5, Profit: 120, HasProfit: true, Row: 1,
	}, items[0])

	hood := items[1]
	rq.InDelta(0.9, hood.PresenceRatio, 1e-9)
	rq.False(hood.HasProfit)

	rq.Equal(int64(5000), items[2].TargetPrice)
}

func TestParse_MalformedRowIsSkipped(t *testing.T) {
	const head = "Name,Value,Store,Present,WeightForItem\n"

	testCases := []struct {
		name  string
		body  string
		opts  catalog.Options
		names []string
		rows  []int
	}{
		{
			name:  "bare quote",
			body:  "Iron Ore,1000,5,0.8,2\nBad \"Ore,100,1,1,1\nCopper Ore,200,3,0.8,1\n",
			names: []string{"Iron Ore", "Copper Ore"},
			rows:  []int{1, 3},
		},
		{
			name:  "stray quote in quoted field",
			body:  "Iron Ore,1000,5,0.8,2\n\"Tin \"Ore\",100,1,1,1\nCopper Ore,200,3,0.8,1\n",
			names: []string{"Iron Ore", "Copper Ore"},
			rows:  []int{1, 3},
		},
		{
			name:  "malformed row before start row",
			body:  "Bad \"Ore,100,1,1,1\nIron Ore,1000,5,0.8,2\nCopper Ore,200,3,0.8,1\n",
			opts:  catalog.Options{StartRow: 2},
			names: []string{"Iron Ore", "Copper Ore"},
			rows:  []int{2, 3},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			items, err := catalog.Parse(context.Background(), strings.NewReader(head+tc.body), tc.opts)
			rq.NoError(err)
			rq.Equal(tc.names, names(items))

			rows := make([]int, 0, len(items))
			for _, i := range items {
				rows = append(rows, i.Row)
			}
			rq.Equal(tc.rows, rows)
		})
	}
}

func TestParse_MissingColumnIsFatal(t *testing.T) {
	rq := require.New(t)

	_, err := catalog.Parse(context.Background(), strings.NewReader("name,value,store\nIron Ore,1000,5\n"), catalog.Options{})
	rq.ErrorIs(err, domain.ErrCatalogMalformed)
	rq.ErrorContains(err, "present, weightforitem")

	_, err = catalog.Parse(context.Background(), strings.NewReader(""), catalog.Options{})
	rq.ErrorIs(err, domain.ErrCatalogMalformed)
}

func TestLoad(t *testing.T) {
	rq := require.New(t)

	path := filepath.Join(t.TempDir(), "catalog.csv")
	rq.NoError(os.WriteFile(path, []byte("\ufeff"+sample), 0o644))

	items, err := catalog.Load(context.Background(), path, catalog.Options{TopTierMin: 6})
	rq.NoError(err)
	rq.Equal([]string{"Master's Cape T6"}, names(items))

	_, err = catalog.Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), catalog.Options{})
	rq.Error(err)
}

func TestTier(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name string
		tier int
		ok   bool
	}{
		{name: "Expert's Bag T5", tier: 5, ok: true},
		{name: "t8 Elder's Sword", tier: 8, ok: true},
		{name: "Iron Ore", ok: false},
		{name: "ST5 Module", ok: false},
	}

	for _, tc := range testCases {
		tier, ok := catalog.Tier(tc.name)
		rq.Equal(tc.ok, ok, tc.name)
		rq.Equal(tc.tier, tier, tc.name)
	}
}
