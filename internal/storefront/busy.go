package storefront

import (
	"sync"

	"github.com/talkincode/hexshop/internal/store"
)

// Busy is the screen-level busy indicator. It stays raised while any call
// entered through it is outstanding.
type Busy struct {
	mu    sync.Mutex
	n     int
	state *store.Store[bool]
}

func NewBusy() *Busy {
	return &Busy{state: store.New("busy", false)}
}

// Enter raises the indicator and returns the func that lowers it again.
// The returned func is safe to call more than once.
func (b *Busy) Enter() (leave func()) {
	b.transition(1)
	var once sync.Once
	return func() {
		once.Do(func() { b.transition(-1) })
	}
}

// transition takes the store ticket under the lock and publishes after
// releasing it; an edge that loses the race is rejected as stale.
func (b *Busy) transition(delta int) {
	var ticket uint64
	b.mu.Lock()
	was := b.n > 0
	b.n += delta
	now := b.n > 0
	if was != now {
		ticket = b.state.Begin()
	}
	b.mu.Unlock()
	if ticket != 0 {
		b.state.Publish(ticket, now)
	}
}

// Active reports whether any call is outstanding.
func (b *Busy) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.n > 0
}

// Store exposes busy transitions for subscribers.
func (b *Busy) Store() *store.Store[bool] {
	return b.state
}
