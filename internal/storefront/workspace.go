package storefront

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Workspace is everything one browser session owns: its controllers,
// their stores and the shared busy indicator.
type Workspace struct {
	ID       string
	Busy     *Busy
	Products *ProductListController
	Cart     *CartController
	Catalog  *CatalogController
	Detail   *DetailController

	mu       sync.Mutex
	lastSeen time.Time
}

func NewWorkspace(id string, api API) *Workspace {
	busy := NewBusy()
	cart := NewCartController(api, busy)
	return &Workspace{
		ID:       id,
		Busy:     busy,
		Products: NewProductListController(api, busy),
		Cart:     cart,
		Catalog:  NewCatalogController(api, busy),
		Detail:   NewDetailController(api, cart, busy),
		lastSeen: time.Now(),
	}
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) LastSeen() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

// Registry keeps one Workspace per session id.
type Registry struct {
	api API
	now func() time.Time

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

func NewRegistry(api API) *Registry {
	return &Registry{
		api:        api,
		now:        time.Now,
		workspaces: make(map[string]*Workspace),
	}
}

// Acquire returns the workspace for id, creating it when missing. An empty
// id gets a fresh uuid; the returned workspace carries the id to store.
func (r *Registry) Acquire(id string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != "" {
		if w, ok := r.workspaces[id]; ok {
			w.touch(r.now())
			return w
		}
	} else {
		id = uuid.NewString()
	}
	w := NewWorkspace(id, r.api)
	w.touch(r.now())
	r.workspaces[id] = w
	return w
}

// Get returns an existing workspace without creating one.
func (r *Registry) Get(id string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workspaces[id]
	return w, ok
}

// Drop forgets the workspace for id.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	delete(r.workspaces, id)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// Sweep drops workspaces unused for longer than idle and returns how many
// were removed.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, w := range r.workspaces {
		if w.LastSeen().Before(cutoff) {
			delete(r.workspaces, id)
			n++
		}
	}
	if n > 0 {
		zap.L().Info("workspaces swept", zap.Int("removed", n), zap.Int("remaining", len(r.workspaces)))
	}
	return n
}
