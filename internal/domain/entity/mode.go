package entity

import (
	"fmt"
	"strings"
)

// Mode is the strategy tag of a session and of every trade it records.
type Mode string

const (
	ModeManual Mode = "manual"
	ModeOrder  Mode = "order"
	ModeSell   Mode = "sell"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeManual, ModeOrder, ModeSell:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

func (m Mode) String() string {
	return string(m)
}

// Spends reports whether trades in this mode draw on the budget.
func (m Mode) Spends() bool {
	return m == ModeManual || m == ModeOrder
}
