package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Item is one catalog row. It is never mutated once a session has started.
type Item struct {
	Name            string  `json:"name"`
	TargetPrice     int64   `json:"value"`
	PresenceRatio   float64 `json:"present"`
	WeightPerUnit   float64 `json:"weightforitem"`
	DesiredQuantity int     `json:"store"`

	// Profit is the optional catalog hint used for pre-sorting.
	Profit    float64 `json:"profit,omitempty"`
	HasProfit bool    `json:"-"`

	// Row is the 1-based data row the item was loaded from.
	Row int `json:"-"`
}

func (i Item) Validate() error {
	var errs []error

	if strings.TrimSpace(i.Name) == "" {
		errs = append(errs, errors.New("name is empty"))
	}
	if i.TargetPrice <= 0 {
		errs = append(errs, fmt.Errorf("value %d is not positive", i.TargetPrice))
	}
	if i.PresenceRatio <= 0 || i.PresenceRatio > 1 {
		errs = append(errs, fmt.Errorf("present %g is outside (0, 1]", i.PresenceRatio))
	}
	if i.WeightPerUnit < 0 {
		errs = append(errs, fmt.Errorf("weight %g is negative", i.WeightPerUnit))
	}
	if i.DesiredQuantity <= 0 {
		errs = append(errs, fmt.Errorf("store %d is not positive", i.DesiredQuantity))
	}

	return errors.Join(errs...)
}

// LimitPrice is the highest unit price that still leaves a margin after
// presence loss and transport:
//
//	floor(targetPrice*presenceRatio - weightPerUnit*transportCostPerUnit)
func (i Item) LimitPrice(transportCostPerUnit float64) int64 {
	retained := decimal.NewFromInt(i.TargetPrice).Mul(decimal.NewFromFloat(i.PresenceRatio))
	transport := decimal.NewFromFloat(i.WeightPerUnit).Mul(decimal.NewFromFloat(transportCostPerUnit))

	return retained.Sub(transport).Floor().IntPart()
}

// Actionable is false for items that must never be touched.
func (i Item) Actionable(transportCostPerUnit float64) bool {
	return i.LimitPrice(transportCostPerUnit) > 0
}
