package entity_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"trade_pilot/internal/domain/entity"
)

func TestItemLimitPrice(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name      string
		item      entity.Item
		transport float64
		limit     int64
		actable   bool
	}{
		{
			name:      "Transport adjusted",
			item:      entity.Item{TargetPrice: 1000, PresenceRatio: 0.8, WeightPerUnit: 2},
			transport: 350,
			limit:     100,
			actable:   true,
		},
		{
			name:      "Weightless item",
			item:      entity.Item{TargetPrice: 1000, PresenceRatio: 0.8},
			transport: 350,
			limit:     800,
			actable:   true,
		},
		{
			name:      "Decimal ratio floors exactly",
			item:      entity.Item{TargetPrice: 100, PresenceRatio: 0.29},
			transport: 0,
			limit:     29,
			actable:   true,
		},
		{
			name:      "Fraction floored",
			item:      entity.Item{TargetPrice: 999, PresenceRatio: 0.5, WeightPerUnit: 0.1},
			transport: 3,
			limit:     499,
			actable:   true,
		},
		{
			name:      "Transport eats the margin",
			item:      entity.Item{TargetPrice: 1000, PresenceRatio: 0.8, WeightPerUnit: 4},
			transport: 200,
			limit:     0,
			actable:   false,
		},
		{
			name:      "Negative limit",
			item:      entity.Item{TargetPrice: 100, PresenceRatio: 1, WeightPerUnit: 10},
			transport: 350,
			limit:     -3400,
			actable:   false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			rq.Equal(tc.limit, tc.item.LimitPrice(tc.transport))
			rq.Equal(tc.actable, tc.item.Actionable(tc.transport))
		})
	}
}

func TestItemValidate(t *testing.T) {
	rq := require.New(t)

	valid := entity.Item{Name: "Iron Ore", TargetPrice: 1000, PresenceRatio: 0.8, WeightPerUnit: 2, DesiredQuantity: 5}
	rq.NoError(valid.Validate())

	testCases := []struct {
		name   string
		mutate func(*entity.Item)
		errMsg string
	}{
		{name: "Empty name", mutate: func(i *entity.Item) { i.Name = "  " }, errMsg: "name is empty"},
		{name: "Zero value", mutate: func(i *entity.Item) { i.TargetPrice = 0 }, errMsg: "value 0 is not positive"},
		{name: "Ratio above one", mutate: func(i *entity.Item) { i.PresenceRatio = 1.2 }, errMsg: "outside (0, 1]"},
		{name: "Negative weight", mutate: func(i *entity.Item) { i.WeightPerUnit = -1 }, errMsg: "weight -1 is negative"},
		{name: "Zero store", mutate: func(i *entity.Item) { i.DesiredQuantity = 0 }, errMsg: "store 0 is not positive"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			item := valid
			tc.mutate(&item)
			rq.ErrorContains(item.Validate(), tc.errMsg)
		})
	}
}
