// Package sampler draws the film of a spin.
//
// A spin loads the cylinder with balas bad films and 6-balas good films, each
// drawn without replacement from its list, then fires one chamber at random.
package sampler

import (
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/user/roleta-service/internal/entity"
)

const (
	Chambers = 6
	MinBalas = 1
	MaxBalas = 5
)

// ErrInsufficientPool is returned when either list has no films.
var ErrInsufficientPool = errors.New("a film pool is empty")

// ClampBalas forces n into [MinBalas, MaxBalas].
func ClampBalas(n int) int {
	return min(max(n, MinBalas), MaxBalas)
}

// Sampler is safe for concurrent use.
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Sampler from rng. A nil rng uses a randomly seeded PCG.
func New(rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Sampler{rng: rng}
}

// Select loads the cylinder and fires once. Odds follow what was actually
// loaded: with short lists the lost probability is drawnBad/(drawnBad+drawnGood).
func (s *Sampler) Select(bad, good []entity.Film, balas int) (entity.Selection, error) {
	if len(bad) == 0 || len(good) == 0 {
		return entity.Selection{}, ErrInsufficientPool
	}
	badQuota := ClampBalas(balas)
	goodQuota := Chambers - badQuota

	s.mu.Lock()
	defer s.mu.Unlock()

	badDraw := s.draw(bad, badQuota)
	goodDraw := s.draw(good, goodQuota)

	cylinder := make([]entity.Film, 0, len(badDraw)+len(goodDraw))
	cylinder = append(cylinder, badDraw...)
	cylinder = append(cylinder, goodDraw...)

	// The bad draw occupies the front of the cylinder.
	chamber := s.rng.IntN(len(cylinder))

	return entity.Selection{
		Film:      cylinder[chamber],
		Lost:      chamber < len(badDraw),
		BadCount:  badQuota,
		GoodCount: goodQuota,
		DrawnBad:  len(badDraw),
		DrawnGood: len(goodDraw),
	}, nil
}

// draw takes min(n, len(pool)) distinct films without touching pool.
func (s *Sampler) draw(pool []entity.Film, n int) []entity.Film {
	work := make([]entity.Film, len(pool))
	copy(work, pool)

	n = min(n, len(work))
	out := make([]entity.Film, 0, n)
	for range n {
		i := s.rng.IntN(len(work))
		out = append(out, work[i])
		work = append(work[:i], work[i+1:]...)
	}
	return out
}
