package value_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"trade_pilot/internal/domain/value"
)

func TestRegion(t *testing.T) {
	rq := require.New(t)

	r := value.Region{X: 10, Y: 20, W: 100, H: 30}

	rq.Equal(image.Rect(10, 20, 110, 50), r.Rect())
	rq.Equal(value.Point{X: 60, Y: 35}, r.Center())
	rq.False(r.Empty())
	rq.True(value.Region{X: 1, Y: 1, W: 0, H: 5}.Empty())
}

func TestLayoutValidateFor(t *testing.T) {
	rq := require.New(t)

	sell := value.Layout{
		SellNameRegion:  value.Region{X: 1, Y: 1, W: 200, H: 20},
		SellTotalRegion: value.Region{X: 1, Y: 30, W: 80, H: 20},
		SellUnitRegion:  value.Region{X: 1, Y: 60, W: 80, H: 20},
		DecreaseButton:  value.Point{X: 300, Y: 40},
		SellConfirm:     value.Point{X: 300, Y: 90},
	}

	rq.NoError(sell.ValidateFor("sell"))

	err := sell.ValidateFor("manual")
	rq.ErrorContains(err, "search_field is not set")
	rq.ErrorContains(err, "price_region is empty")

	rq.ErrorContains(sell.ValidateFor("scan"), `unknown mode "scan"`)
}
