// Package window implements the TTL-cached window-list snapshot described in
// spec §4.4. It is the registry half of the window service's split-brain
// composition ([[windowsvc]]); the registry alone is authoritative for
// z-order and bundle id, while geometry/state are always re-read fresh by the
// service layer.
package window

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nmxmxh/desktop-automation-service/internal/platform"
)

// TTL is the cache freshness window for Get.
const TTL = 1 * time.Second

// DefaultTolerance is the default Euclidean slack for FindByPosition/FindByBounds.
const DefaultTolerance = 5.0

// Entry is one cached window row.
type Entry struct {
	WindowID   int
	PID        int
	Bounds     platform.Rect
	Title      string
	Layer      int
	IsOnScreen bool
	BundleID   string
	Timestamp  time.Time
}

// Registry holds the cached window set, refreshed from a platform.SystemOperations.
type Registry struct {
	mu      sync.Mutex
	entries map[int]Entry
	sys     platform.SystemOperations
	log     *zap.Logger
}

func New(sys platform.SystemOperations, log *zap.Logger) *Registry {
	return &Registry{entries: make(map[int]Entry), sys: sys, log: log}
}

// Refresh queries the adapter for the current window list (pid == 0 means all
// processes), overwrites matching entries with a single `now` timestamp, then
// evicts entries older than TTL.
func (r *Registry) Refresh(ctx context.Context, pid int) error {
	infos, err := r.sys.ListWindows(ctx, pid)
	if err != nil {
		return err
	}
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, info := range infos {
		r.entries[info.WindowID] = Entry{
			WindowID:   info.WindowID,
			PID:        info.PID,
			Bounds:     info.Bounds,
			Title:      info.Title,
			Layer:      info.Layer,
			IsOnScreen: info.IsOnScreen,
			BundleID:   info.BundleID,
			Timestamp:  now,
		}
	}
	for id, e := range r.entries {
		if now.Sub(e.Timestamp) > TTL {
			delete(r.entries, id)
		}
	}
	return nil
}

// Get returns the cached entry if fresh; otherwise refreshes all windows and
// returns the (possibly still absent) entry.
func (r *Registry) Get(ctx context.Context, windowID int) (Entry, bool, error) {
	r.mu.Lock()
	e, ok := r.entries[windowID]
	fresh := ok && time.Since(e.Timestamp) <= TTL
	r.mu.Unlock()
	if fresh {
		return e, true, nil
	}
	if err := r.Refresh(ctx, 0); err != nil {
		return Entry{}, false, err
	}
	r.mu.Lock()
	e, ok = r.entries[windowID]
	r.mu.Unlock()
	return e, ok, nil
}

// ListForPID refreshes scoped to pid (pid == 0 means all processes) and
// returns entries ordered by layer ascending.
func (r *Registry) ListForPID(ctx context.Context, pid int) ([]Entry, error) {
	if err := r.Refresh(ctx, pid); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if pid == 0 || e.PID == pid {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Layer < out[j].Layer })
	return out, nil
}

// Invalidate removes one entry, used after mutations that may change a
// window's id.
func (r *Registry) Invalidate(windowID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, windowID)
}

// LastKnown is a pure lookup with no refresh, for latency-sensitive paths.
func (r *Registry) LastKnown(windowID int) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[windowID]
	return e, ok
}

// FindByPosition returns the unique entry for pid whose bounds origin is
// within tol of (x, y); ambiguity (more than one match) is treated as no
// match.
func (r *Registry) FindByPosition(pid int, x, y, tol float64) (Entry, bool) {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var match Entry
	count := 0
	for _, e := range r.entries {
		if e.PID != pid {
			continue
		}
		d := math.Hypot(e.Bounds.X-x, e.Bounds.Y-y)
		if d <= tol {
			match = e
			count++
		}
	}
	if count != 1 {
		return Entry{}, false
	}
	return match, true
}

// FindByBounds returns the unique entry for pid whose bounds (origin + size)
// are within tol of bounds; ambiguity is treated as no match.
func (r *Registry) FindByBounds(pid int, bounds platform.Rect, tol float64) (Entry, bool) {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var match Entry
	count := 0
	for _, e := range r.entries {
		if e.PID != pid {
			continue
		}
		originDist := math.Hypot(e.Bounds.X-bounds.X, e.Bounds.Y-bounds.Y)
		sizeDist := math.Hypot(e.Bounds.W-bounds.W, e.Bounds.H-bounds.H)
		if originDist <= tol && sizeDist <= tol {
			match = e
			count++
		}
	}
	if count != 1 {
		return Entry{}, false
	}
	return match, true
}
