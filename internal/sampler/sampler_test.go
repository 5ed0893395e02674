package sampler

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/user/roleta-service/internal/entity"
)

func pool(prefix string, n int) []entity.Film {
	films := make([]entity.Film, n)
	for i := range films {
		id := fmt.Sprintf("%s-%d", prefix, i)
		films[i] = entity.Film{Title: id, ID: id, Slug: id}
	}
	return films
}

func seeded(seed uint64) *Sampler {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func TestQuotasFollowBalas(t *testing.T) {
	s := seeded(1)
	bad, good := pool("bad", 10), pool("good", 10)

	for balas := MinBalas; balas <= MaxBalas; balas++ {
		sel, err := s.Select(bad, good, balas)
		if err != nil {
			t.Fatalf("balas %d: %v", balas, err)
		}
		if sel.BadCount != balas || sel.GoodCount != Chambers-balas {
			t.Errorf("balas %d: expected %d/%d, got %d/%d", balas, balas, Chambers-balas, sel.BadCount, sel.GoodCount)
		}
		if sel.DrawnBad != balas || sel.DrawnGood != Chambers-balas {
			t.Errorf("balas %d: expected full draws, got %d/%d", balas, sel.DrawnBad, sel.DrawnGood)
		}
	}
}

func TestBoundaries(t *testing.T) {
	s := seeded(2)
	bad, good := pool("bad", 10), pool("good", 10)

	sel, _ := s.Select(bad, good, 5)
	if sel.GoodCount != 1 {
		t.Errorf("balas 5: expected 1 good, got %d", sel.GoodCount)
	}
	sel, _ = s.Select(bad, good, 1)
	if sel.GoodCount != 5 {
		t.Errorf("balas 1: expected 5 good, got %d", sel.GoodCount)
	}
}

func TestClampBalas(t *testing.T) {
	cases := map[int]int{-3: 1, 0: 1, 1: 1, 3: 3, 5: 5, 6: 5, 99: 5}
	for in, want := range cases {
		if got := ClampBalas(in); got != want {
			t.Errorf("ClampBalas(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestDrawsClampedToPoolSize(t *testing.T) {
	s := seeded(3)
	sel, err := s.Select(pool("bad", 2), pool("good", 1), 4)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if sel.DrawnBad != 2 || sel.DrawnGood != 1 {
		t.Errorf("expected draws clamped to 2/1, got %d/%d", sel.DrawnBad, sel.DrawnGood)
	}
	if sel.BadCount != 4 || sel.GoodCount != 2 {
		t.Errorf("configured counts must stay 4/2, got %d/%d", sel.BadCount, sel.GoodCount)
	}
}

func TestDrawWithoutReplacement(t *testing.T) {
	s := seeded(4)
	films := pool("p", 8)

	for trial := 0; trial < 200; trial++ {
		drawn := s.draw(films, 6)
		seen := make(map[string]bool)
		for _, f := range drawn {
			if seen[f.Key()] {
				t.Fatalf("trial %d: %s drawn twice", trial, f.Key())
			}
			seen[f.Key()] = true
		}
	}

	if got := s.draw(films, 20); len(got) != len(films) {
		t.Errorf("expected the whole pool when quota exceeds it, got %d", len(got))
	}
}

func TestSelectDoesNotMutatePools(t *testing.T) {
	s := seeded(5)
	bad, good := pool("bad", 5), pool("good", 5)
	before := fmt.Sprint(bad, good)

	for i := 0; i < 50; i++ {
		_, _ = s.Select(bad, good, 3)
	}
	if fmt.Sprint(bad, good) != before {
		t.Error("pools were modified by Select")
	}
}

func TestLostMeansBadOrigin(t *testing.T) {
	s := seeded(6)
	bad, good := pool("bad", 5), pool("good", 5)
	badIDs := make(map[string]bool)
	for _, f := range bad {
		badIDs[f.ID] = true
	}

	for i := 0; i < 500; i++ {
		sel, err := s.Select(bad, good, 1+i%5)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if sel.Lost != badIDs[sel.Film.ID] {
			t.Fatalf("lost=%v for film %s", sel.Lost, sel.Film.ID)
		}
	}
}

func TestInsufficientPool(t *testing.T) {
	s := seeded(7)
	if _, err := s.Select(nil, pool("good", 3), 3); !errors.Is(err, ErrInsufficientPool) {
		t.Errorf("empty bad pool: expected ErrInsufficientPool, got %v", err)
	}
	if _, err := s.Select(pool("bad", 3), []entity.Film{}, 3); !errors.Is(err, ErrInsufficientPool) {
		t.Errorf("empty good pool: expected ErrInsufficientPool, got %v", err)
	}
}

func lossRate(s *Sampler, bad, good []entity.Film, balas, trials int) float64 {
	lost := 0
	for i := 0; i < trials; i++ {
		sel, _ := s.Select(bad, good, balas)
		if sel.Lost {
			lost++
		}
	}
	return float64(lost) / float64(trials)
}

func TestLossProportionThreeOfSix(t *testing.T) {
	const trials = 20000
	got := lossRate(seeded(8), pool("bad", 5), pool("good", 5), 3, trials)

	// Five standard deviations around p = 0.5.
	tolerance := 5 * math.Sqrt(0.25/trials)
	if math.Abs(got-0.5) > tolerance {
		t.Errorf("expected loss rate 0.5 ± %.3f, got %.3f", tolerance, got)
	}
}

func TestLossProportionFollowsActualDraws(t *testing.T) {
	const trials = 20000
	// balas 5 but only 1 bad film: the cylinder holds 1 bad and 1 good.
	got := lossRate(seeded(9), pool("bad", 1), pool("good", 5), 5, trials)

	tolerance := 5 * math.Sqrt(0.25/trials)
	if math.Abs(got-0.5) > tolerance {
		t.Errorf("expected loss rate 0.5 ± %.3f, got %.3f", tolerance, got)
	}
}
