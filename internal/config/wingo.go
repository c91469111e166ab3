package config

import "github.com/shopspring/decimal"

type Color string

const (
	Green  Color = "green"
	Red    Color = "red"
	Violet Color = "violet"
)

type BetType string

const (
	BetNumber   BetType = "number"
	BetColor    BetType = "color"
	BetBigSmall BetType = "bigsmall"
)

type ResultPolicy string

const (
	// PolicyUniform draws the result number uniformly over 0-9.
	PolicyUniform ResultPolicy = "uniform"
	// PolicyWeighted assigns a 20% chance to the violet pair {0,5} and
	// spreads the rest uniformly over the remaining eight numbers.
	PolicyWeighted ResultPolicy = "weighted"
)

// NumberColors is the fixed number-to-color table.
var NumberColors = map[int]Color{
	0: Violet,
	1: Green,
	2: Red,
	3: Green,
	4: Red,
	5: Violet,
	6: Red,
	7: Green,
	8: Red,
	9: Green,
}

// VIPMultipliers selects the win payout multiplier by the bettor's VIP tier.
var VIPMultipliers = map[int]decimal.Decimal{
	1: decimal.NewFromInt(9),
	2: decimal.RequireFromString("9.5"),
	3: decimal.NewFromInt(10),
	4: decimal.RequireFromString("10.5"),
}

// DefaultVIPMultiplier applies to unknown tiers.
var DefaultVIPMultiplier = decimal.NewFromInt(9)

// ReferralCommission selects the commission rate by the referrer's VIP tier.
// Commission is paid on every settled bet, win or lose.
var ReferralCommission = map[int]decimal.Decimal{
	1: decimal.RequireFromString("0.02"),
	2: decimal.RequireFromString("0.03"),
	3: decimal.RequireFromString("0.04"),
	4: decimal.RequireFromString("0.05"),
}

var DefaultReferralCommission = decimal.RequireFromString("0.02")

func VIPMultiplier(tier int) decimal.Decimal {
	m, ok := VIPMultipliers[tier]
	if !ok {
		return DefaultVIPMultiplier
	}

	return m
}

func CommissionRate(tier int) decimal.Decimal {
	r, ok := ReferralCommission[tier]
	if !ok {
		return DefaultReferralCommission
	}

	return r
}
