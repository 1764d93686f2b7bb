// Package windowsvc implements the window service described in spec §4.5 —
// the split-brain reconciliation between a fresh per-element attribute read
// and the window-list registry snapshot ([[window]]). This is the subtlest
// component of the system: bounds/title/minimized/hidden always come from a
// fresh read, z-index/bundleId always come from the registry, and
// `visible` is derived from both.
package windowsvc

import (
	"context"
	"time"

	cb "github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/internal/platform"
	"github.com/nmxmxh/desktop-automation-service/internal/registry/window"
	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
	"github.com/nmxmxh/desktop-automation-service/pkg/names"
	"github.com/nmxmxh/desktop-automation-service/pkg/pagination"
	"google.golang.org/grpc/codes"
)

// MinimizeVerifyInterval and MinimizeVerifyTimeout bound the
// mutation-verification poll after a minimize/restore write.
const (
	MinimizeVerifyInterval = 10 * time.Millisecond
	MinimizeVerifyTimeout  = 2 * time.Second
)

// Service composes Window/WindowState responses and applies mutations. A
// circuit breaker wraps the mutating adapter calls (Move/Resize/Minimize/
// Close) so a flapping host API fails fast instead of hanging every request;
// it is unrelated to the observation manager's per-PID activation breaker,
// which has its own count/window semantics gobreaker's model can't express.
type Service struct {
	registry *window.Registry
	sys      platform.SystemOperations
	log      *zap.Logger
	breaker  *cb.CircuitBreaker
}

func New(registry *window.Registry, sys platform.SystemOperations, log *zap.Logger) *Service {
	breaker := cb.NewCircuitBreaker(cb.Settings{
		Name:        "WindowAdapterCB",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts cb.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from, to cb.State) {
			if log != nil {
				log.Warn("circuit breaker state change",
					zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
			}
		},
	})
	return &Service{registry: registry, sys: sys, log: log, breaker: breaker}
}

// guarded runs fn through the adapter circuit breaker, translating a tripped
// breaker into an internal/ADAPTER_FAILURE error.
func (s *Service) guarded(fn func() error) error {
	_, err := s.breaker.Execute(func() (any, error) {
		return nil, fn()
	})
	if err == cb.ErrOpenState || err == cb.ErrTooManyRequests {
		return apierror.Wrap(codes.Internal, apierror.ReasonAdapterFailure,
			"platform adapter circuit breaker open", err, nil)
	}
	return err
}

// resolved bundles together the element handle and the two data sources the
// authority model composes from.
type resolved struct {
	handle platform.ElementHandle
	hint   window.Entry
	attrs  platform.ElementAttributes
}

// resolve locates the element for a window name, preferring the registry's
// last-known bounds as the lookup hint, and performs a fresh attribute read.
func (s *Service) resolve(ctx context.Context, wn names.WindowName) (resolved, error) {
	hint, _ := s.registry.LastKnown(wn.WindowID)
	handle, err := s.sys.FindElementByBounds(ctx, wn.PID, hint.Bounds, hint.Title, true)
	if err != nil {
		return resolved{}, err
	}
	attrs, err := s.sys.ReadElementAttributes(ctx, handle)
	if err != nil {
		return resolved{}, err
	}
	return resolved{handle: handle, hint: hint, attrs: attrs}, nil
}

// visible implements the §4.5/P8 authority formula.
func visible(isOnScreen, minimized, hidden bool) bool {
	return (isOnScreen || (!minimized && !hidden)) && !minimized && !hidden
}

func compose(windowID, pid int, r resolved) *uiautomationpb.Window {
	return &uiautomationpb.Window{
		Name:     names.WindowName{PID: pid, WindowID: windowID}.String(),
		Title:    r.attrs.Title,
		Bounds:   uiautomationpb.Rect(r.attrs.Bounds),
		ZIndex:   r.hint.Layer,
		Visible:  visible(r.hint.IsOnScreen, r.attrs.Minimized, r.attrs.Hidden),
		BundleID: r.hint.BundleID,
	}
}

// GetWindow composes a Window response for name.
func (s *Service) GetWindow(ctx context.Context, name string) (*uiautomationpb.Window, error) {
	wn, err := names.ParseWindowName(name)
	if err != nil {
		return nil, err
	}
	r, err := s.resolve(ctx, wn)
	if err != nil {
		return nil, err
	}
	return compose(wn.WindowID, wn.PID, r), nil
}

// GetWindowState returns the derived WindowState for name, a fresh read in
// full (no registry composition, since every field is AX-sourced).
func (s *Service) GetWindowState(ctx context.Context, name string) (*uiautomationpb.WindowState, error) {
	wn, err := names.ParseWindowName(name)
	if err != nil {
		return nil, err
	}
	r, err := s.resolve(ctx, wn)
	if err != nil {
		return nil, err
	}
	st := &uiautomationpb.WindowState{
		Name:        name,
		Resizable:   r.attrs.State.Resizable,
		Minimizable: r.attrs.State.Minimizable,
		Closable:    r.attrs.State.Closable,
		Modal:       r.attrs.State.Modal,
		Floating:    r.attrs.State.Floating,
		AXHidden:    r.attrs.State.AXHidden,
		Minimized:   r.attrs.State.Minimized,
		Focused:     r.attrs.State.Focused,
	}
	if r.attrs.State.HasFullscreen {
		v := r.attrs.State.Fullscreen
		st.Fullscreen = &v
	}
	return st, nil
}

// ListWindows composes responses from the registry alone, per §4.5's
// performance contract: no per-window attribute reads.
func (s *Service) ListWindows(ctx context.Context, parentPID int, wildcard bool, pageSize int, pageToken string) ([]*uiautomationpb.Window, string, error) {
	var entries []window.Entry
	var err error
	if wildcard {
		if err = s.registry.Refresh(ctx, 0); err != nil {
			return nil, "", err
		}
		entries, err = s.registry.ListForPID(ctx, 0)
	} else {
		entries, err = s.registry.ListForPID(ctx, parentPID)
	}
	if err != nil {
		return nil, "", err
	}

	windows := make([]*uiautomationpb.Window, len(entries))
	for i, e := range entries {
		windows[i] = &uiautomationpb.Window{
			Name:     names.WindowName{PID: e.PID, WindowID: e.WindowID}.String(),
			Title:    e.Title,
			Bounds:   uiautomationpb.Rect(e.Bounds),
			ZIndex:   e.Layer,
			Visible:  e.IsOnScreen,
			BundleID: e.BundleID,
		}
	}

	offset, err := pagination.DecodeOrZero(pageToken)
	if err != nil {
		return nil, "", err
	}
	size := pagination.ResolvePageSize(pageSize, pagination.DefaultPageSize)
	page, next := pagination.Page(windows, offset, size)
	return page, next, nil
}

// MoveWindow applies the position mutation and performs post-mutation id
// regeneration per §4.5.
func (s *Service) MoveWindow(ctx context.Context, name string, x, y float64) (*uiautomationpb.Window, error) {
	wn, err := names.ParseWindowName(name)
	if err != nil {
		return nil, err
	}
	preInfo, _ := s.registry.LastKnown(wn.WindowID)

	r, err := s.resolve(ctx, wn)
	if err != nil {
		return nil, err
	}
	if err := s.guarded(func() error { return s.sys.MoveWindow(ctx, r.handle, x, y) }); err != nil {
		return nil, err
	}
	return s.reacquireAfterMutation(ctx, wn, preInfo, func() (window.Entry, bool) {
		return s.registry.FindByPosition(wn.PID, x, y, window.DefaultTolerance)
	})
}

// ResizeWindow applies the size mutation and performs post-mutation id
// regeneration per §4.5.
func (s *Service) ResizeWindow(ctx context.Context, name string, w, h float64) (*uiautomationpb.Window, error) {
	wn, err := names.ParseWindowName(name)
	if err != nil {
		return nil, err
	}
	preInfo, _ := s.registry.LastKnown(wn.WindowID)

	r, err := s.resolve(ctx, wn)
	if err != nil {
		return nil, err
	}
	if err := s.guarded(func() error { return s.sys.ResizeWindow(ctx, r.handle, w, h) }); err != nil {
		return nil, err
	}
	bounds := platform.Rect{X: r.attrs.Bounds.X, Y: r.attrs.Bounds.Y, W: w, H: h}
	return s.reacquireAfterMutation(ctx, wn, preInfo, func() (window.Entry, bool) {
		return s.registry.FindByBounds(wn.PID, bounds, window.DefaultTolerance)
	})
}

// reacquireAfterMutation implements steps 3-6 of §4.5's post-mutation id
// regeneration sequence: refresh, attempt to find the (possibly renamed)
// window by its requested values, re-acquire its element handle if the id
// changed, invalidate the old id, and build the final response, falling back
// to preInfo's metadata when the new entry isn't found.
func (s *Service) reacquireAfterMutation(ctx context.Context, wn names.WindowName, preInfo window.Entry, find func() (window.Entry, bool)) (*uiautomationpb.Window, error) {
	if err := s.registry.Refresh(ctx, wn.PID); err != nil {
		return nil, err
	}

	finalID := wn.WindowID
	hint := preInfo
	if entry, ok := find(); ok {
		hint = entry
		finalID = entry.WindowID
	}

	newWn := names.WindowName{PID: wn.PID, WindowID: finalID}
	r, err := s.resolve(ctx, newWn)
	if err != nil {
		return nil, err
	}
	if finalID != wn.WindowID {
		s.registry.Invalidate(wn.WindowID)
	}
	r.hint = hint
	return compose(finalID, wn.PID, r), nil
}

// MinimizeWindow sets minimized=true and blocks until verified, per §4.5's
// mutation-verification contract.
func (s *Service) MinimizeWindow(ctx context.Context, name string) (*uiautomationpb.Window, error) {
	return s.setMinimized(ctx, name, true)
}

// RestoreWindow sets minimized=false and blocks until verified.
func (s *Service) RestoreWindow(ctx context.Context, name string) (*uiautomationpb.Window, error) {
	return s.setMinimized(ctx, name, false)
}

func (s *Service) setMinimized(ctx context.Context, name string, minimized bool) (*uiautomationpb.Window, error) {
	wn, err := names.ParseWindowName(name)
	if err != nil {
		return nil, err
	}
	r, err := s.resolve(ctx, wn)
	if err != nil {
		return nil, err
	}
	if err := s.guarded(func() error { return s.sys.SetMinimized(ctx, r.handle, minimized) }); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(MinimizeVerifyTimeout)
	for {
		attrs, err := s.sys.ReadElementAttributes(ctx, r.handle)
		if err != nil {
			return nil, err
		}
		if attrs.Minimized == minimized {
			r.attrs = attrs
			break
		}
		if time.Now().After(deadline) {
			return nil, apierror.New(codes.Internal, apierror.ReasonTimeout,
				"timed out verifying minimized state", map[string]string{"name": name})
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(MinimizeVerifyInterval):
		}
	}

	if err := s.registry.Refresh(ctx, wn.PID); err != nil {
		return nil, err
	}
	s.registry.Invalidate(wn.WindowID)
	hint, _ := s.registry.LastKnown(wn.WindowID)
	r.hint = hint
	return compose(wn.WindowID, wn.PID, r), nil
}

// CloseWindow locates the close-button sub-element and presses it.
func (s *Service) CloseWindow(ctx context.Context, name string) error {
	wn, err := names.ParseWindowName(name)
	if err != nil {
		return err
	}
	r, err := s.resolve(ctx, wn)
	if err != nil {
		return err
	}
	if err := s.guarded(func() error { return s.sys.CloseWindow(ctx, r.handle) }); err != nil {
		return err
	}
	s.registry.Invalidate(wn.WindowID)
	return nil
}
