package value

import (
	"errors"
	"fmt"
)

// Layout maps every control the pilot touches to screen geometry. It is loaded
// from YAML once per process.
type Layout struct {
	// Market search.
	SearchField Point  `yaml:"search_field"`
	ClearSearch Point  `yaml:"clear_search"`
	PriceRegion Region `yaml:"price_region"`

	// Buy dialog.
	BuyButton      Point  `yaml:"buy_button"`
	NameRegion     Region `yaml:"name_region"`
	QuantityRegion Region `yaml:"quantity_region"`
	QuantityField  Point  `yaml:"quantity_field"`
	ConfirmButton  Point  `yaml:"confirm_button"`
	CancelButton   Point  `yaml:"cancel_button"`
	PopupOK        Point  `yaml:"popup_ok"`

	// Buy order dialog.
	OrderButton        Point `yaml:"order_button"`
	OrderPriceField    Point `yaml:"order_price_field"`
	OrderQuantityField Point `yaml:"order_quantity_field"`
	OrderConfirm       Point `yaml:"order_confirm"`

	// Sell dialog.
	SellNameRegion  Region `yaml:"sell_name_region"`
	SellTotalRegion Region `yaml:"sell_total_region"`
	SellUnitRegion  Region `yaml:"sell_unit_region"`
	DecreaseButton  Point  `yaml:"decrease_button"`
	SellConfirm     Point  `yaml:"sell_confirm"`
}

// ValidateFor checks that everything the given mode clicks or reads is set.
func (l Layout) ValidateFor(mode string) error {
	var errs []error

	point := func(name string, p Point) {
		if p.IsZero() {
			errs = append(errs, fmt.Errorf("%s is not set", name))
		}
	}
	region := func(name string, r Region) {
		if r.Empty() {
			errs = append(errs, fmt.Errorf("%s is empty", name))
		}
	}

	switch mode {
	case "manual":
		point("search_field", l.SearchField)
		region("price_region", l.PriceRegion)
		point("buy_button", l.BuyButton)
		region("name_region", l.NameRegion)
		region("quantity_region", l.QuantityRegion)
		point("quantity_field", l.QuantityField)
		point("confirm_button", l.ConfirmButton)
		point("cancel_button", l.CancelButton)
	case "order":
		point("search_field", l.SearchField)
		point("order_button", l.OrderButton)
		region("name_region", l.NameRegion)
		point("order_price_field", l.OrderPriceField)
		point("order_quantity_field", l.OrderQuantityField)
		point("order_confirm", l.OrderConfirm)
		point("cancel_button", l.CancelButton)
	case "sell":
		region("sell_name_region", l.SellNameRegion)
		region("sell_total_region", l.SellTotalRegion)
		region("sell_unit_region", l.SellUnitRegion)
		point("decrease_button", l.DecreaseButton)
		point("sell_confirm", l.SellConfirm)
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q", mode))
	}

	return errors.Join(errs...)
}
