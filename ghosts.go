package main

import (
	"math/rand/v2"
)

// Pass-rate bands per question tier. Early (easy) rounds shed almost
// nobody; late (hard) rounds are brutal.
var ghostPassBands = map[string][2]float64{
	"easy":   {0.90, 0.95},
	"medium": {0.65, 0.75},
	"hard":   {0.20, 0.40},
}

// ghostCrowd simulates crowd scale: a synthetic population that shrinks
// each round so elimination counts feel competitive regardless of real
// turnout. State is owned by the engine and mutated only under its mutex.
type ghostCrowd struct {
	min        int
	max        int
	population int
	alive      int
	rng        *rand.Rand
}

func newGhostCrowd(min, max int, rng *rand.Rand) *ghostCrowd {
	g := &ghostCrowd{
		min: min,
		max: max,
		rng: rng,
	}
	g.Reset()
	return g
}

// Reset resamples the total population and revives the full crowd.
// Called at startup and at every lobby reset.
func (g *ghostCrowd) Reset() {
	g.population = g.min
	if g.max > g.min {
		g.population += g.rng.IntN(g.max - g.min + 1)
	}
	g.alive = g.population
}

func (g *ghostCrowd) Alive() int {
	return g.alive
}

func (g *ghostCrowd) Population() int {
	return g.population
}

// Attrit advances the crowd one round: a pass-rate is drawn uniformly
// from the tier's band and the survivors are floor(alive × rate).
// Returns how many ghosts were lost. Alive never increases within a game.
func (g *ghostCrowd) Attrit(tier string) int {
	band, ok := ghostPassBands[tier]
	if !ok {
		band = ghostPassBands["medium"]
	}

	rate := band[0] + g.rng.Float64()*(band[1]-band[0])
	survivors := int(float64(g.alive) * rate)
	lost := g.alive - survivors
	g.alive = survivors

	return lost
}
