package model

import (
	"fmt"
	"strings"
)

// Strategy selects the liquidity allocation shape.
type Strategy int

const (
	StrategySpot Strategy = iota
	StrategyCurve
	StrategyBidAsk
)

func (s Strategy) String() string {
	switch s {
	case StrategySpot:
		return "spot"
	case StrategyCurve:
		return "curve"
	case StrategyBidAsk:
		return "bid-ask"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy accepts spot, curve and bid-ask (also bidask, bid_ask).
func ParseStrategy(input string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "spot", "uniform":
		return StrategySpot, nil
	case "curve":
		return StrategyCurve, nil
	case "bid-ask", "bidask", "bid_ask":
		return StrategyBidAsk, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, input)
	}
}

// Direction tells the auto-fill which side the user typed.
type Direction int

const (
	// DirectionXToY derives the Y amount from a typed X amount.
	DirectionXToY Direction = iota
	// DirectionYToX derives the X amount from a typed Y amount.
	DirectionYToX
)

func (d Direction) String() string {
	if d == DirectionYToX {
		return "y-to-x"
	}
	return "x-to-y"
}

// ParseDirection accepts x-to-y and y-to-x.
func ParseDirection(input string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "x-to-y", "xtoy", "x":
		return DirectionXToY, nil
	case "y-to-x", "ytox", "y":
		return DirectionYToX, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, input)
	}
}
