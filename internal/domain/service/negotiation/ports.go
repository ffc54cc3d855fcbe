package negotiation

import (
	"context"

	"trade_pilot/internal/domain/entity"
	"trade_pilot/internal/domain/value"
)

// Perceiver reads screen regions. Errors mean the sensor itself broke; an
// unreadable value is reported through the returned reading, not an error.
type Perceiver interface {
	ReadDigits(ctx context.Context, region value.Region) (entity.PriceReading, error)
	ReadText(ctx context.Context, region value.Region) (string, error)
	ReadFragments(ctx context.Context, region value.Region) ([]entity.TextFragment, error)
}

// Actuator drives the client's input focus.
type Actuator interface {
	Click(ctx context.Context, p value.Point) error
	// Clear focuses the field at p and erases its content.
	Clear(ctx context.Context, p value.Point) error
	// Type enters text one character at a time with human cadence.
	Type(ctx context.Context, text string) error
	Press(ctx context.Context, key string) error
}

// Ledger is the append-only purchase store.
type Ledger interface {
	Append(ctx context.Context, entry entity.LedgerEntry) error
	Holding(ctx context.Context, itemName string) (entity.Holding, error)
}

// EventSink receives everything the loop has to say. Implementations must not
// block the loop.
type EventSink interface {
	Emit(ctx context.Context, event entity.Event)
}
