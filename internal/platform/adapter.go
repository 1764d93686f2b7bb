// Package platform defines the narrow seam between the coordination core and
// the host operating system. Per spec §1 and §9, the concrete accessibility,
// window-list, input-synthesis, screenshot/OCR, clipboard, and scripting-host
// calls are an external collaborator; this package only declares the
// interface the core consumes.
package platform

import (
	"context"
	"time"
)

// Rect is an axis-aligned rectangle in screen coordinates.
type Rect struct {
	X, Y, W, H float64
}

// WindowInfo is the adapter's view of one host window, as returned by
// ListWindows. Bounds/Title/Layer/IsOnScreen/BundleID feed the window
// registry (spec §4.4).
type WindowInfo struct {
	WindowID   int
	PID        int
	Title      string
	Bounds     Rect
	Layer      int
	IsOnScreen bool
	BundleID   string
}

// ElementHandle is an opaque reference to a live accessibility element,
// returned by element-lookup primitives and consumed by attribute
// reads/writes and input synthesis.
type ElementHandle interface {
	PID() int
}

// ElementAttributes is a fresh read of an element's geometry/state, used by
// the window service's split-brain composition (spec §4.5).
type ElementAttributes struct {
	Bounds    Rect
	Title     string
	Minimized bool
	Hidden    bool
	State     WindowStateAttrs
}

// WindowStateAttrs mirrors the spec §3 WindowState derived fields.
type WindowStateAttrs struct {
	Resizable, Minimizable, Closable, Modal, Floating bool
	AXHidden, Minimized, Focused, Fullscreen          bool
	HasFullscreen                                     bool // Fullscreen is meaningful only if true
}

// DisplayInfo mirrors spec §3 Display.
type DisplayInfo struct {
	DisplayID    string
	GlobalFrame  Rect
	VisibleFrame Rect // top-left origin
	Scale        float64
	IsMain       bool
}

// ClipboardKind enumerates the clipboard content kinds in ReadClipboard's
// probe order, per §4.10.
type ClipboardKind int

const (
	ClipboardText ClipboardKind = iota
	ClipboardRTF
	ClipboardHTML
	ClipboardImage
	ClipboardFiles
	ClipboardURL
)

// ClipboardContent is a tagged variant over the content kinds in §3.
type ClipboardContent struct {
	Kind         ClipboardKind
	Text         string
	RTF          string
	HTML         string
	ImagePNG     []byte
	Files        []string
	URL          string
	AvailableIn  []ClipboardKind
}

// ScriptKind enumerates §4.12's supported script hosts.
type ScriptKind int

const (
	ScriptAppleScript ScriptKind = iota
	ScriptJXA
	ScriptShell
)

// ShellExecOptions carries the shell-specific knobs from §4.12.
type ShellExecOptions struct {
	WorkingDir string
	Env        map[string]string
	Stdin      string
	Path       string
	Timeout    time.Duration
}

// ScriptResult is the outcome of Execute/Compile.
type ScriptResult struct {
	Success  bool
	Output   string
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
	TimedOut bool
}

// CaptureTarget selects what ScreenCapture captures.
type CaptureTarget struct {
	DisplayID  string // "" or "0" = main; absent handled by caller as "all"
	AllDisplays bool
	ElementID  string
	WindowName string
	Region     *Rect
	Padding    float64
}

// CaptureOptions controls output encoding, per §4.11.
type CaptureOptions struct {
	Format         string // "png" (default), "jpeg", "tiff"
	Quality        int    // 0..100, only for jpeg
	IncludeOCRText bool
}

// CaptureResult is the screenshot + optional OCR output.
type CaptureResult struct {
	ImageBytes []byte
	Width      int
	Height     int
	OCRText    string
}

// OpenFileOptions and SaveFileOptions configure open/save dialog
// presentation (§4.13).
type OpenFileOptions struct {
	AllowMultiple     bool
	ExtensionFilters  []string
}

type SaveFileOptions struct {
	DefaultDir      string
	DefaultFilename string
	ConfirmOverwrite bool
}

// SystemOperations is the platform adapter interface. All methods that
// mutate UI state or read the window list must be safe to invoke from any
// goroutine; implementations marshal onto the UI-capable worker internally
// (spec §5 "Main-capable region"). Methods document whether the concrete
// macOS implementation requires that hop; callers don't need to know, but the
// comments preserve the platform-adapter contract from spec §9.
type SystemOperations interface {
	// OpenApplication launches or activates an application by bundle id and
	// returns its PID once the host reports it running.
	OpenApplication(ctx context.Context, bundleOrPath string) (pid int, displayName string, err error)
	// CloseApplication terminates the process for pid.
	CloseApplication(ctx context.Context, pid int) error
	// IsApplicationRunning reports host-level liveness for pid.
	IsApplicationRunning(ctx context.Context, pid int) bool

	// ListWindows returns the current window snapshot, optionally scoped to
	// pid (pid == 0 means all processes), including off-screen/minimized
	// windows. Requires the UI-capable worker.
	ListWindows(ctx context.Context, pid int) ([]WindowInfo, error)
	// FindElementByBounds returns the element whose bounds best match hint
	// (see spec §4.5 "Element lookup with bounds hint" scoring); hint may be
	// the zero Rect to request PID-filtered scoring alone. includeChildren
	// also scans minimized windows' children.
	FindElementByBounds(ctx context.Context, pid int, hint Rect, titleHint string, includeChildren bool) (ElementHandle, error)
	// ReadElementAttributes performs a fresh attribute read. Safe off the
	// UI-capable worker (a "long read").
	ReadElementAttributes(ctx context.Context, handle ElementHandle) (ElementAttributes, error)
	// MoveWindow / ResizeWindow apply a geometry mutation. Requires the
	// UI-capable worker; may cause the host to regenerate the window's id.
	MoveWindow(ctx context.Context, handle ElementHandle, x, y float64) error
	ResizeWindow(ctx context.Context, handle ElementHandle, w, h float64) error
	// SetMinimized writes the minimized attribute. Requires the UI-capable
	// worker.
	SetMinimized(ctx context.Context, handle ElementHandle, minimized bool) error
	// CloseWindow locates and presses the window's close button. Requires the
	// UI-capable worker. Returns apierror reason NO_CLOSE_BUTTON if absent.
	CloseWindow(ctx context.Context, handle ElementHandle) error

	// ListDisplays returns the current display configuration.
	ListDisplays(ctx context.Context) ([]DisplayInfo, error)

	// SynthesizeClick/SynthesizeTyping drive input.
	SynthesizeClick(ctx context.Context, x, y float64, button string) error
	SynthesizeTyping(ctx context.Context, text string) error

	// Accessibility observation: RegisterObserver attaches a host callback
	// for pid; events call back (on an arbitrary thread) until Detach is
	// invoked or ctx is cancelled.
	RegisterObserver(ctx context.Context, pid int, callback func(AXEvent)) (detach func(), err error)

	// Clipboard.
	ReadClipboard(ctx context.Context) (ClipboardContent, error)
	WriteClipboard(ctx context.Context, content ClipboardContent) error
	ClearClipboard(ctx context.Context) error
	ActiveApplicationName(ctx context.Context) string

	// ScreenCapture performs a screenshot, optionally with OCR.
	ScreenCapture(ctx context.Context, target CaptureTarget, opts CaptureOptions) (CaptureResult, error)

	// CompileScript/ExecuteScript/ExecuteShell run AppleScript/JXA/shell.
	CompileScript(ctx context.Context, kind ScriptKind, source string) (ScriptResult, error)
	ExecuteScript(ctx context.Context, kind ScriptKind, source string) (ScriptResult, error)
	ExecuteShell(ctx context.Context, command string, opts ShellExecOptions) (ScriptResult, error)

	// File dialogs.
	OpenFileDialog(ctx context.Context, opts OpenFileOptions) ([]string, error)
	SaveFileDialog(ctx context.Context, opts SaveFileOptions) (string, error)
	SelectFile(ctx context.Context, reveal bool) (string, error)
	SelectDirectory(ctx context.Context, createMissing bool) (string, error)
	// DragFiles performs steps intermediate move events over duration, ending
	// on targetElement; steps is computed by the caller per §4.13's
	// max(10, round(duration·60)) rule so the adapter only drives the host
	// drag session, it doesn't decide its granularity.
	DragFiles(ctx context.Context, files []string, targetElement ElementHandle, duration time.Duration, steps int) error

	// HasAccessibilityPermission reports whether the host has granted this
	// process the accessibility permission required for most operations.
	HasAccessibilityPermission(ctx context.Context) bool
}

// AXEvent is a host accessibility notification delivered to an observer
// callback registered via RegisterObserver.
type AXEvent struct {
	PID       int
	Type      string // e.g. "activated", "deactivated", "windowCreated", ...
	WindowID  int
	Timestamp time.Time
}
