// Package observation implements the AX observer manager described in spec
// §4.7: per-process observer registration via LRO, self-activation
// suppression, a per-PID activation-storm circuit breaker, and bounded
// server-streaming fan-out. The breaker here is intentionally bespoke rather
// than github.com/sony/gobreaker — its count/windowStart/reset semantics
// (P9) don't map onto gobreaker's consecutive-failure/half-open model, which
// is instead used for platform-adapter call resilience elsewhere (see
// [[windowsvc]]).
package observation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/internal/platform"
	"github.com/nmxmxh/desktop-automation-service/internal/registry/operation"
	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
	"github.com/nmxmxh/desktop-automation-service/pkg/metrics"
	"github.com/nmxmxh/desktop-automation-service/pkg/names"
	"github.com/nmxmxh/desktop-automation-service/pkg/pagination"
	"google.golang.org/grpc/codes"
)

// SelfActivationWindow is the suppression window after a SDK-triggered
// activation (§4.7/P10).
const SelfActivationWindow = 500 * time.Millisecond

// BreakerWindow and BreakerThreshold bound the per-PID activation-storm
// breaker (§4.7/P9).
const (
	BreakerWindow    = 1 * time.Second
	BreakerThreshold = 5
)

// StreamBufferSize is the bounded per-stream event queue (§4.7, "suggested
// 256 events").
const StreamBufferSize = 256

type observationEntry struct {
	obs    *uiautomationpb.Observation
	detach func()
	subs   map[chan *uiautomationpb.ObservationEvent]struct{}
}

type breakerState struct {
	count       int
	windowStart time.Time
}

// Manager owns the live observation set and the self-activation/breaker
// bookkeeping that filters raw platform AX events before fan-out.
type Manager struct {
	mu    sync.Mutex
	obs   map[string]*observationEntry
	sdk   map[int]time.Time
	brk   map[int]*breakerState
	sys   platform.SystemOperations
	ops   *operation.Store
	log   *zap.Logger
}

func New(sys platform.SystemOperations, ops *operation.Store, log *zap.Logger) *Manager {
	return &Manager{
		obs: make(map[string]*observationEntry),
		sdk: make(map[int]time.Time),
		brk: make(map[int]*breakerState),
		sys: sys,
		ops: ops,
		log: log,
	}
}

// MarkSDKActivation records that pid's next activation was triggered by the
// SDK itself, not a user action.
func (m *Manager) MarkSDKActivation(pid int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sdk[pid] = time.Now()
}

// IsSDKActivation reports whether pid had a marked SDK activation within the
// suppression window.
func (m *Manager) IsSDKActivation(pid int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts, ok := m.sdk[pid]
	return ok && time.Since(ts) < SelfActivationWindow
}

// HasRecentSDKActivation prunes stale entries and reports whether any SDK
// activation remains within the window — used by deactivation handlers,
// since the deactivated pid need not be the one that was activated.
func (m *Manager) HasRecentSDKActivation() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for pid, ts := range m.sdk {
		if now.Sub(ts) >= SelfActivationWindow {
			delete(m.sdk, pid)
		}
	}
	return len(m.sdk) > 0
}

// allowActivation applies the per-PID circuit breaker (§4.7/P9): increments
// the count, resets the window if stale, and reports whether this event may
// proceed.
func (m *Manager) allowActivation(pid int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	st, ok := m.brk[pid]
	if !ok || now.Sub(st.windowStart) >= BreakerWindow {
		st = &breakerState{count: 0, windowStart: now}
		m.brk[pid] = st
	}
	st.count++
	return st.count <= BreakerThreshold
}

// CreateObservation starts an LRO that attaches a host observer for the
// given application and, on success, marks the operation done with the
// started Observation.
func (m *Manager) CreateObservation(ctx context.Context, pid int, obsType, filter string) (string, error) {
	obs := &uiautomationpb.Observation{
		Type:   obsType,
		Filter: filter,
		State:  uiautomationpb.ObservationPending,
		PID:    pid,
	}
	id := uuid.NewString()
	obs.Name = names.ChildName{PID: pid, Collection: "observations", ID: id}.String()

	opName, err := m.ops.Create("observation", &uiautomationpb.Observation{Name: obs.Name})
	if err != nil {
		return "", err
	}

	go m.attach(context.WithoutCancel(ctx), opName, obs)
	return opName, nil
}

func (m *Manager) attach(ctx context.Context, opName string, obs *uiautomationpb.Observation) {
	entry := &observationEntry{obs: obs, subs: make(map[chan *uiautomationpb.ObservationEvent]struct{})}

	detach, err := m.sys.RegisterObserver(ctx, obs.PID, func(ev platform.AXEvent) {
		m.dispatch(obs.Name, ev)
	})
	if err != nil {
		if failErr := m.ops.Fail(opName, codes.Internal, err.Error()); failErr != nil && m.log != nil {
			m.log.Error("failed to record observation attach failure", zap.Error(failErr))
		}
		return
	}
	entry.detach = detach
	obs.State = uiautomationpb.ObservationActive

	m.mu.Lock()
	m.obs[obs.Name] = entry
	m.mu.Unlock()

	if err := m.ops.Finish(opName, obs); err != nil && m.log != nil {
		m.log.Error("failed to finish CreateObservation operation", zap.Error(err))
	}
}

// dispatch applies self-activation suppression and the per-PID breaker
// before fanning an AX event out to subscribers.
func (m *Manager) dispatch(obsName string, ev platform.AXEvent) {
	if ev.Type == "activated" {
		if !m.allowActivation(ev.PID) {
			return
		}
	}
	if ev.Type == "deactivated" && m.HasRecentSDKActivation() {
		return
	}
	if ev.Type == "activated" && m.IsSDKActivation(ev.PID) {
		return
	}

	m.mu.Lock()
	entry, ok := m.obs[obsName]
	if !ok {
		m.mu.Unlock()
		return
	}
	entry.obs.EventCount++
	out := &uiautomationpb.ObservationEvent{
		Observation: obsName,
		Type:        ev.Type,
		PID:         ev.PID,
		WindowID:    ev.WindowID,
		Timestamp:   ev.Timestamp,
	}
	for ch := range entry.subs {
		select {
		case ch <- out:
		default:
			// buffer full: drop oldest by draining one slot, then retry once.
			select {
			case <-ch:
				entry.obs.EventsDropped++
				metrics.ObservationEventsDropped.WithLabelValues(obsName).Inc()
			default:
			}
			select {
			case ch <- out:
			default:
			}
		}
	}
	m.mu.Unlock()
}

// Get returns the observation record for name.
func (m *Manager) Get(name string) (*uiautomationpb.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.obs[name]
	if !ok {
		return nil, apierror.New(codes.NotFound, apierror.ReasonObservationNotFound,
			"observation not found", map[string]string{"name": name})
	}
	return entry.obs, nil
}

// List returns observations sorted by name ascending, paged via offset
// tokens.
func (m *Manager) List(pageSize int, pageToken string) ([]*uiautomationpb.Observation, string, error) {
	m.mu.Lock()
	all := make([]*uiautomationpb.Observation, 0, len(m.obs))
	for _, e := range m.obs {
		all = append(all, e.obs)
	}
	m.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	offset, err := pagination.DecodeOrZero(pageToken)
	if err != nil {
		return nil, "", err
	}
	size := pagination.ResolvePageSize(pageSize, pagination.DefaultPageSize)
	page, next := pagination.Page(all, offset, size)
	return page, next, nil
}

// Cancel detaches the observer, transitions to cancelled, and closes all
// subscriber channels so their streams complete.
func (m *Manager) Cancel(name string) (*uiautomationpb.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.obs[name]
	if !ok {
		return nil, apierror.New(codes.NotFound, apierror.ReasonObservationNotFound,
			"observation not found", map[string]string{"name": name})
	}
	if entry.detach != nil {
		entry.detach()
	}
	entry.obs.State = uiautomationpb.ObservationCancelled
	for ch := range entry.subs {
		close(ch)
		delete(entry.subs, ch)
	}
	return entry.obs, nil
}

// Subscribe registers a new bounded channel for name's event stream. The
// returned unsubscribe func must be called when the consumer stops reading.
func (m *Manager) Subscribe(name string) (<-chan *uiautomationpb.ObservationEvent, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.obs[name]
	if !ok {
		return nil, nil, apierror.New(codes.NotFound, apierror.ReasonObservationNotFound,
			"observation not found", map[string]string{"name": name})
	}
	ch := make(chan *uiautomationpb.ObservationEvent, StreamBufferSize)
	entry.subs[ch] = struct{}{}
	unsubscribe := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if e, ok := m.obs[name]; ok {
			delete(e.subs, ch)
		}
	}
	return ch, unsubscribe, nil
}
