// Package clipboard implements the clipboard singleton and bounded history
// described in spec §4.10: ReadClipboard/WriteClipboard/ClearClipboard over
// the platform adapter's pasteboard, with a capped newest-first history.
package clipboard

import (
	"context"
	"sync"
	"time"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/internal/platform"
	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
	"google.golang.org/grpc/codes"
)

// HistoryCap bounds the retained history to the 100 most recent writes.
const HistoryCap = 100

// Manager serializes clipboard access and maintains the write history.
type Manager struct {
	mu      sync.Mutex
	sys     platform.SystemOperations
	history []uiautomationpb.ClipboardHistoryEntry
}

func New(sys platform.SystemOperations) *Manager {
	return &Manager{sys: sys}
}

// Read probes the pasteboard and returns the current content as the
// singleton "clipboard" resource.
func (m *Manager) Read(ctx context.Context) (*uiautomationpb.Clipboard, error) {
	content, err := m.sys.ReadClipboard(ctx)
	if err != nil {
		return nil, apierror.Wrap(codes.Internal, apierror.ReasonAdapterFailure,
			"failed to read clipboard", err, nil)
	}
	return toWire(content), nil
}

// Write clears then writes content, and on success records a history entry
// tagged with the active application.
func (m *Manager) Write(ctx context.Context, content uiautomationpb.Clipboard) error {
	pc := toPlatform(content)
	if err := m.sys.ClearClipboard(ctx); err != nil {
		return apierror.Wrap(codes.Internal, apierror.ReasonAdapterFailure,
			"failed to clear clipboard", err, nil)
	}
	if err := m.sys.WriteClipboard(ctx, pc); err != nil {
		return apierror.Wrap(codes.Internal, apierror.ReasonAdapterFailure,
			"failed to write clipboard", err, nil)
	}
	entry := uiautomationpb.ClipboardHistoryEntry{
		Content:           content,
		CopiedTime:        time.Now(),
		SourceApplication: m.sys.ActiveApplicationName(ctx),
	}
	m.mu.Lock()
	m.history = append([]uiautomationpb.ClipboardHistoryEntry{entry}, m.history...)
	if len(m.history) > HistoryCap {
		m.history = m.history[:HistoryCap]
	}
	m.mu.Unlock()
	return nil
}

// Clear wipes the pasteboard without touching history.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.sys.ClearClipboard(ctx); err != nil {
		return apierror.Wrap(codes.Internal, apierror.ReasonAdapterFailure,
			"failed to clear clipboard", err, nil)
	}
	return nil
}

// History returns the newest-first write history, most-recent-first.
func (m *Manager) History() []uiautomationpb.ClipboardHistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]uiautomationpb.ClipboardHistoryEntry, len(m.history))
	copy(out, m.history)
	return out
}

func toWire(c platform.ClipboardContent) *uiautomationpb.Clipboard {
	avail := make([]uiautomationpb.ClipboardKind, len(c.AvailableIn))
	for i, k := range c.AvailableIn {
		avail[i] = uiautomationpb.ClipboardKind(k)
	}
	return &uiautomationpb.Clipboard{
		Name:        "clipboard",
		Kind:        uiautomationpb.ClipboardKind(c.Kind),
		Text:        c.Text,
		RTF:         c.RTF,
		HTML:        c.HTML,
		ImagePNG:    c.ImagePNG,
		Files:       c.Files,
		URL:         c.URL,
		AvailableIn: avail,
	}
}

func toPlatform(c uiautomationpb.Clipboard) platform.ClipboardContent {
	return platform.ClipboardContent{
		Kind:     platform.ClipboardKind(c.Kind),
		Text:     c.Text,
		RTF:      c.RTF,
		HTML:     c.HTML,
		ImagePNG: c.ImagePNG,
		Files:    c.Files,
		URL:      c.URL,
	}
}
