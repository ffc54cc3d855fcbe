package config

import (
	"time"

	"trade_pilot/internal/domain/entity"
)

type Pilot struct {
	Mode                string        `env:"MODE" envDefault:"manual" validate:"oneof=manual order sell"`
	Budget              int64         `env:"BUDGET" validate:"gt=0"`
	MinReserve          int64         `env:"MIN_RESERVE" envDefault:"0" validate:"gte=0"`
	ActionDelay         time.Duration `env:"ACTION_DELAY" envDefault:"1s" validate:"gte=0"`
	StartRow            int           `env:"START_ROW" envDefault:"1" validate:"gte=1"`
	TopTierMin          int           `env:"TOP_TIER_MIN" envDefault:"0" validate:"gte=0"`
	SortByProfit        bool          `env:"SORT_BY_PROFIT" envDefault:"false"`
	TransportCost       float64       `env:"TRANSPORT_COST" envDefault:"0" validate:"gte=0"`
	TaxRate             float64       `env:"TAX_RATE" envDefault:"0.105" validate:"gte=0,lt=1"`
	SimilarityThreshold float64       `env:"SIMILARITY_THRESHOLD" envDefault:"92" validate:"gt=0,lte=100"`
	MaxSensingFailures  int           `env:"MAX_SENSING_FAILURES" envDefault:"5" validate:"gte=1"`
	CatalogPath         string        `env:"CATALOG_PATH" envDefault:"catalog.csv"`
	LayoutPath          string        `env:"LAYOUT_PATH" envDefault:"layout.yaml" validate:"required"`
	ReportDir           string        `env:"REPORT_DIR" envDefault:"reports" validate:"required"`
	ControlFile         string        `env:"CONTROL_FILE"`
}

func (p Pilot) ParsedMode() entity.Mode {
	mode, err := entity.ParseMode(p.Mode)
	if err != nil {
		return entity.ModeManual
	}
	return mode
}

type Motion struct {
	JitterPx     int           `env:"MOTION_JITTER_PX" envDefault:"3" validate:"gte=0"`
	KeystrokeMin time.Duration `env:"MOTION_KEYSTROKE_MIN" envDefault:"40ms" validate:"gte=0"`
	KeystrokeMax time.Duration `env:"MOTION_KEYSTROKE_MAX" envDefault:"120ms" validate:"gte=0"`
	ClickDelay   time.Duration `env:"MOTION_CLICK_DELAY" envDefault:"80ms" validate:"gte=0"`
	SmoothMoves  bool          `env:"MOTION_SMOOTH" envDefault:"true"`
}

type OCR struct {
	Language    string `env:"OCR_LANGUAGE" envDefault:"eng"`
	ScaleFactor int    `env:"OCR_SCALE" envDefault:"3" validate:"gte=1,lte=8"`
}
