package main

import (
	"math/rand/v2"
	"testing"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestGhostCrowdReset(t *testing.T) {
	g := newGhostCrowd(100, 200, testRNG())

	for i := 0; i < 50; i++ {
		g.Reset()

		if g.Population() < 100 || g.Population() > 200 {
			t.Fatalf("population %d outside [100, 200]", g.Population())
		}
		if g.Alive() != g.Population() {
			t.Fatalf("alive %d != population %d after reset", g.Alive(), g.Population())
		}
	}
}

func TestGhostCrowdZeroRange(t *testing.T) {
	g := newGhostCrowd(0, 0, testRNG())

	if g.Population() != 0 || g.Alive() != 0 {
		t.Fatalf("expected empty crowd, got population=%d alive=%d", g.Population(), g.Alive())
	}
	if lost := g.Attrit("easy"); lost != 0 {
		t.Fatalf("empty crowd lost %d ghosts", lost)
	}
}

func TestGhostAttritionBands(t *testing.T) {
	tests := []struct {
		tier    string
		low     float64
		high    float64
	}{
		{"easy", 0.90, 0.95},
		{"medium", 0.65, 0.75},
		{"hard", 0.20, 0.40},
		{"bogus", 0.65, 0.75}, // unknown tiers fall back to medium
	}

	for _, tt := range tests {
		t.Run(tt.tier, func(t *testing.T) {
			g := newGhostCrowd(10000, 10000, testRNG())

			for i := 0; i < 100; i++ {
				g.alive = 10000
				g.Attrit(tt.tier)

				min := int(float64(10000) * tt.low)
				max := int(float64(10000) * tt.high)
				if g.Alive() < min-1 || g.Alive() > max {
					t.Fatalf("tier %s: %d survivors outside [%d, %d]", tt.tier, g.Alive(), min-1, max)
				}
			}
		})
	}
}

func TestGhostAttritionMonotonic(t *testing.T) {
	g := newGhostCrowd(15000, 15000, testRNG())

	tiers := []string{"easy", "easy", "easy", "medium", "medium", "medium", "hard", "hard", "hard", "hard"}
	prev := g.Alive()

	for round, tier := range tiers {
		lost := g.Attrit(tier)

		if lost < 0 {
			t.Fatalf("round %d: negative loss %d", round+1, lost)
		}
		if g.Alive() > prev {
			t.Fatalf("round %d: alive grew from %d to %d", round+1, prev, g.Alive())
		}
		if g.Alive() < 0 || g.Alive() > g.Population() {
			t.Fatalf("round %d: alive %d outside [0, %d]", round+1, g.Alive(), g.Population())
		}
		if prev-g.Alive() != lost {
			t.Fatalf("round %d: reported loss %d, actual %d", round+1, lost, prev-g.Alive())
		}

		prev = g.Alive()
	}
}
