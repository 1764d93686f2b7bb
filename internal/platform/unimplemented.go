package platform

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"

	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
)

// Unimplemented is the default SystemOperations backing cmd/server/main.go.
// Concrete host integration (the macOS Accessibility/window-server/input/
// OCR/scripting calls) is an explicit non-goal of this repository (spec §9);
// a real deployment links a build-tag-specific adapter satisfying this same
// interface in its place. Every method here returns a clear UNIMPLEMENTED
// error rather than panicking, so the gRPC surface and all in-memory
// registries remain fully exercisable (and testable) without one.
type Unimplemented struct{}

func notImplemented(op string) error {
	return apierror.New(codes.Unimplemented, apierror.ReasonAdapterFailure,
		"platform adapter not configured: "+op, map[string]string{"op": op})
}

func (Unimplemented) OpenApplication(ctx context.Context, bundleOrPath string) (int, string, error) {
	return 0, "", notImplemented("OpenApplication")
}

func (Unimplemented) CloseApplication(ctx context.Context, pid int) error {
	return notImplemented("CloseApplication")
}

func (Unimplemented) IsApplicationRunning(ctx context.Context, pid int) bool {
	return false
}

func (Unimplemented) ListWindows(ctx context.Context, pid int) ([]WindowInfo, error) {
	return nil, notImplemented("ListWindows")
}

func (Unimplemented) FindElementByBounds(ctx context.Context, pid int, hint Rect, titleHint string, includeChildren bool) (ElementHandle, error) {
	return nil, notImplemented("FindElementByBounds")
}

func (Unimplemented) ReadElementAttributes(ctx context.Context, handle ElementHandle) (ElementAttributes, error) {
	return ElementAttributes{}, notImplemented("ReadElementAttributes")
}

func (Unimplemented) MoveWindow(ctx context.Context, handle ElementHandle, x, y float64) error {
	return notImplemented("MoveWindow")
}

func (Unimplemented) ResizeWindow(ctx context.Context, handle ElementHandle, w, h float64) error {
	return notImplemented("ResizeWindow")
}

func (Unimplemented) SetMinimized(ctx context.Context, handle ElementHandle, minimized bool) error {
	return notImplemented("SetMinimized")
}

func (Unimplemented) CloseWindow(ctx context.Context, handle ElementHandle) error {
	return notImplemented("CloseWindow")
}

func (Unimplemented) ListDisplays(ctx context.Context) ([]DisplayInfo, error) {
	return nil, notImplemented("ListDisplays")
}

func (Unimplemented) SynthesizeClick(ctx context.Context, x, y float64, button string) error {
	return notImplemented("SynthesizeClick")
}

func (Unimplemented) SynthesizeTyping(ctx context.Context, text string) error {
	return notImplemented("SynthesizeTyping")
}

func (Unimplemented) RegisterObserver(ctx context.Context, pid int, callback func(AXEvent)) (func(), error) {
	return nil, notImplemented("RegisterObserver")
}

func (Unimplemented) ReadClipboard(ctx context.Context) (ClipboardContent, error) {
	return ClipboardContent{}, notImplemented("ReadClipboard")
}

func (Unimplemented) WriteClipboard(ctx context.Context, content ClipboardContent) error {
	return notImplemented("WriteClipboard")
}

func (Unimplemented) ClearClipboard(ctx context.Context) error {
	return notImplemented("ClearClipboard")
}

func (Unimplemented) ActiveApplicationName(ctx context.Context) string {
	return ""
}

func (Unimplemented) ScreenCapture(ctx context.Context, target CaptureTarget, opts CaptureOptions) (CaptureResult, error) {
	return CaptureResult{}, notImplemented("ScreenCapture")
}

func (Unimplemented) CompileScript(ctx context.Context, kind ScriptKind, source string) (ScriptResult, error) {
	return ScriptResult{}, notImplemented("CompileScript")
}

func (Unimplemented) ExecuteScript(ctx context.Context, kind ScriptKind, source string) (ScriptResult, error) {
	return ScriptResult{}, notImplemented("ExecuteScript")
}

func (Unimplemented) ExecuteShell(ctx context.Context, command string, opts ShellExecOptions) (ScriptResult, error) {
	return ScriptResult{}, notImplemented("ExecuteShell")
}

func (Unimplemented) OpenFileDialog(ctx context.Context, opts OpenFileOptions) ([]string, error) {
	return nil, notImplemented("OpenFileDialog")
}

func (Unimplemented) SaveFileDialog(ctx context.Context, opts SaveFileOptions) (string, error) {
	return "", notImplemented("SaveFileDialog")
}

func (Unimplemented) SelectFile(ctx context.Context, reveal bool) (string, error) {
	return "", notImplemented("SelectFile")
}

func (Unimplemented) SelectDirectory(ctx context.Context, createMissing bool) (string, error) {
	return "", notImplemented("SelectDirectory")
}

func (Unimplemented) DragFiles(ctx context.Context, files []string, targetElement ElementHandle, duration time.Duration, steps int) error {
	return notImplemented("DragFiles")
}

func (Unimplemented) HasAccessibilityPermission(ctx context.Context) bool {
	return false
}

var _ SystemOperations = Unimplemented{}
