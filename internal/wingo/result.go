package wingo

import (
	"math/rand"
	"time"

	"go-wingo/internal/config"
)

var violetNumbers = []int{0, 5}

var nonVioletNumbers = []int{1, 2, 3, 4, 6, 7, 8, 9}

// ResultGenerator draws the outcome for a single round. It has no side
// effects: the caller decides when the drawn result becomes visible.
type ResultGenerator struct {
	policy config.ResultPolicy
	rnd    *rand.Rand
}

// NewResultGenerator builds a generator for the given policy. A nil rnd
// falls back to a time-seeded source.
func NewResultGenerator(policy config.ResultPolicy, rnd *rand.Rand) *ResultGenerator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &ResultGenerator{
		policy: policy,
		rnd:    rnd,
	}
}

// Draw returns a result number and its color from the fixed table.
func (g *ResultGenerator) Draw() (int, config.Color) {
	var number int

	switch g.policy {
	case config.PolicyWeighted:
		if g.rnd.Float64() < 0.2 {
			number = violetNumbers[g.rnd.Intn(len(violetNumbers))]
		} else {
			number = nonVioletNumbers[g.rnd.Intn(len(nonVioletNumbers))]
		}
	default:
		number = g.rnd.Intn(10)
	}

	return number, config.NumberColors[number]
}
