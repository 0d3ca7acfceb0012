package dialogue

import (
	"math/rand"
	"sync"
	"time"
)

// Variator chooses one of several equivalent phrasings.
type Variator interface {
	Pick(options []string) string
}

// FirstVariator always picks the first option. Tests use it to pin phrasing.
type FirstVariator struct{}

func (FirstVariator) Pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[0]
}

type randomVariator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomVariator picks uniformly at random. A zero seed seeds from the clock.
func NewRandomVariator(seed int64) Variator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &randomVariator{rng: rand.New(rand.NewSource(seed))}
}

func (v *randomVariator) Pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return options[v.rng.Intn(len(options))]
}
