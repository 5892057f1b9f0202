package questionnaire

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func TestShuffle_Bijection(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for trial := range 500 {
		got := Shuffle(Catalog(), r)
		if len(got) != ItemCount {
			t.Fatalf("trial %d: len = %d, want %d", trial, len(got), ItemCount)
		}
		seen := make(map[string]int, ItemCount)
		for _, it := range got {
			seen[it.Label]++
		}
		for _, it := range Catalog() {
			if seen[it.Label] != 1 {
				t.Fatalf("trial %d: %q appears %d times", trial, it.Label, seen[it.Label])
			}
		}
	}
}

func TestShuffle_DoesNotMutateInput(t *testing.T) {
	in := Catalog()
	before := slices.Clone(in)

	_ = Shuffle(in, rand.New(rand.NewPCG(7, 7)))

	if !slices.Equal(in, before) {
		t.Error("Shuffle() modified its input")
	}
}

func TestShuffle_NilRand(t *testing.T) {
	got := Shuffle(Catalog(), nil)
	if len(got) != ItemCount {
		t.Errorf("len = %d, want %d", len(got), ItemCount)
	}
}

func TestShuffle_PositionsUniform(t *testing.T) {
	const trials = 20000
	r := rand.New(rand.NewPCG(42, 1024))
	items := Catalog()

	index := make(map[string]int, ItemCount)
	for i, it := range items {
		index[it.Label] = i
	}

	var counts [ItemCount][ItemCount]int
	for range trials {
		for pos, it := range Shuffle(items, r) {
			counts[index[it.Label]][pos]++
		}
	}

	// Expected 1000 per cell with a standard deviation of about 31.
	const lo, hi = 800, 1200
	for item := range counts {
		for pos, n := range counts[item] {
			if n < lo || n > hi {
				t.Errorf("item %q at position %d: %d times, want within [%d,%d]",
					items[item].Label, pos, n, lo, hi)
			}
		}
	}
}

func TestCatalog_Polarity(t *testing.T) {
	var pos, neg int
	for _, it := range Catalog() {
		switch it.Polarity {
		case Positive:
			pos++
		case Negative:
			neg++
		}
	}
	if pos != 10 || neg != 10 {
		t.Errorf("positive = %d, negative = %d, want 10/10", pos, neg)
	}
}

func TestCatalog_ReturnsCopy(t *testing.T) {
	items := Catalog()
	items[0].Label = "Bored"

	if Catalog()[0].Label != "Interested" {
		t.Error("Catalog() returned shared storage")
	}
}
