// Package element implements the TTL-cached element registry described in
// spec §4.6: elementId -> {element, optional handle, pid, timestamp}, a
// generated id of the form elem_<msEpoch>_<rand6digits>, 30s expiry, and a
// periodic reaper. The reaper is driven by github.com/robfig/cron/v3 instead
// of a hand-rolled time.Ticker loop, matching the teacher's use of cron for
// scheduled background work.
package element

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/internal/platform"
	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
	"google.golang.org/grpc/codes"
)

// TTL is how long a registered element remains valid without a refresh.
const TTL = 30 * time.Second

// ReapInterval is the cron period for evicting expired entries.
const ReapInterval = "@every 10s"

// Record is one cached element entry.
type Record struct {
	Element   *uiautomationpb.Element
	Handle    platform.ElementHandle
	PID       int
	Timestamp time.Time
}

// Stats summarizes registry occupancy.
type Stats struct {
	Total int
	ByPID map[int]int
}

// Registry holds live elements, keyed by generated id.
type Registry struct {
	mu      sync.Mutex
	entries map[string]Record
	log     *zap.Logger
	cronJob *cron.Cron
}

// New constructs a Registry and starts its background reaper.
func New(log *zap.Logger) *Registry {
	r := &Registry{entries: make(map[string]Record), log: log}
	c := cron.New()
	if _, err := c.AddFunc(ReapInterval, r.reap); err != nil && log != nil {
		log.Error("failed to schedule element reaper", zap.Error(err))
	}
	c.Start()
	r.cronJob = c
	return r
}

// Stop halts the background reaper; intended for tests and graceful shutdown.
func (r *Registry) Stop() {
	if r.cronJob != nil {
		r.cronJob.Stop()
	}
}

// NewID generates an elem_<msEpoch>_<rand6digits> identifier.
func NewID() string {
	n, _ := rand.Int(rand.Reader, big.NewInt(1_000_000))
	return fmt.Sprintf("elem_%d_%06d", time.Now().UnixMilli(), n.Int64())
}

// Register stores a new element under a freshly-generated id and returns it.
func (r *Registry) Register(pid int, handle platform.ElementHandle, attrs *uiautomationpb.Element) string {
	id := NewID()
	attrs.ID = id
	attrs.PID = pid
	attrs.Timestamp = time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = Record{Element: attrs, Handle: handle, PID: pid, Timestamp: attrs.Timestamp}
	return id
}

// Get returns the element for id, evicting and failing not-found if expired.
func (r *Registry) Get(id string) (*uiautomationpb.Element, error) {
	rec, err := r.getFresh(id)
	if err != nil {
		return nil, err
	}
	return rec.Element, nil
}

// GetHandle returns the live platform handle for id, evicting and failing
// not-found if expired.
func (r *Registry) GetHandle(id string) (platform.ElementHandle, error) {
	rec, err := r.getFresh(id)
	if err != nil {
		return nil, err
	}
	return rec.Handle, nil
}

func (r *Registry) getFresh(id string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.entries[id]
	if !ok {
		return Record{}, notFound(id)
	}
	if time.Since(rec.Timestamp) > TTL {
		delete(r.entries, id)
		return Record{}, notFound(id)
	}
	return rec, nil
}

// Update replaces the stored element for id and refreshes its timestamp,
// provided the entry still exists and is unexpired.
func (r *Registry) Update(id string, attrs *uiautomationpb.Element) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.entries[id]
	if !ok || time.Since(rec.Timestamp) > TTL {
		delete(r.entries, id)
		return notFound(id)
	}
	rec.Element = attrs
	rec.Timestamp = time.Now()
	r.entries[id] = rec
	return nil
}

// Remove deletes id unconditionally.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// ListByPID returns all unexpired elements for pid.
func (r *Registry) ListByPID(pid int) []*uiautomationpb.Element {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	out := make([]*uiautomationpb.Element, 0)
	for _, rec := range r.entries {
		if rec.PID == pid && now.Sub(rec.Timestamp) <= TTL {
			out = append(out, rec.Element)
		}
	}
	return out
}

// ClearByPID removes every entry for pid.
func (r *Registry) ClearByPID(pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rec := range r.entries {
		if rec.PID == pid {
			delete(r.entries, id)
		}
	}
}

// Stats reports current occupancy.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Stats{Total: len(r.entries), ByPID: make(map[int]int)}
	for _, rec := range r.entries {
		s.ByPID[rec.PID]++
	}
	return s
}

func (r *Registry) reap() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, rec := range r.entries {
		if now.Sub(rec.Timestamp) > TTL {
			delete(r.entries, id)
		}
	}
}

func notFound(id string) error {
	return apierror.New(codes.NotFound, apierror.ReasonElementNotFound,
		"element not found or expired", map[string]string{"id": id})
}
