package resilience

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sony/gobreaker/v2"
)

// Status summarizes the health of one provider or of all of them.
type Status string

// Statuses, from best to worst.
const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

var statusRank = map[Status]int{
	StatusHealthy:   0,
	StatusDegraded:  1,
	StatusUnhealthy: 2,
}

// Health is a point-in-time view of one provider.
type Health struct {
	Name   string
	State  gobreaker.State
	Counts gobreaker.Counts

	LastSuccessAt *time.Time
	LastFailureAt *time.Time

	// LastError is the message of the most recent failure.
	LastError string
}

// Status maps the breaker state: open is unhealthy and half-open is
// degraded.
func (h Health) Status() Status {
	switch h.State {
	case gobreaker.StateOpen:
		return StatusUnhealthy
	case gobreaker.StateHalfOpen:
		return StatusDegraded
	default:
		return StatusHealthy
	}
}

// Registry records the outcome of calls made by each Client. A nil
// *Registry ignores everything. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	now     func() time.Time
	entries map[string]*entry
}

type entry struct {
	client    *Client
	successAt *time.Time
	failureAt *time.Time
	lastError string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// add registers c under its name, replacing an earlier client of that name.
func (r *Registry) add(c *Client) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[c.Name()] = &entry{client: c}
}

// Observe records the outcome of a call to name: a nil err is a success.
// Unknown names are ignored.
func (r *Registry) Observe(name string, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return
	}
	now := r.now()
	if err == nil {
		e.successAt = &now
		return
	}
	e.failureAt = &now
	e.lastError = err.Error()
}

// Health returns the current health of name.
func (r *Registry) Health(name string) (Health, bool) {
	if r == nil {
		return Health{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return Health{}, false
	}
	return e.health(name), true
}

// Snapshot returns the health of every provider, ordered by name.
func (r *Registry) Snapshot() []Health {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := lo.MapToSlice(r.entries, func(name string, e *entry) Health {
		return e.health(name)
	})
	slices.SortFunc(out, func(a, b Health) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	return lo.Map(r.Snapshot(), func(h Health, _ int) string { return h.Name })
}

// Overall is the worst status among all providers; healthy when none are
// registered.
func (r *Registry) Overall() Status {
	return lo.Reduce(r.Snapshot(), func(worst Status, h Health, _ int) Status {
		if s := h.Status(); statusRank[s] > statusRank[worst] {
			return s
		}
		return worst
	}, StatusHealthy)
}

func (e *entry) health(name string) Health {
	return Health{
		Name:          name,
		State:         e.client.State(),
		Counts:        e.client.Counts(),
		LastSuccessAt: e.successAt,
		LastFailureAt: e.failureAt,
		LastError:     e.lastError,
	}
}
