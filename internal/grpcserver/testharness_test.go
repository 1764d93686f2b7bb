package grpcserver

import (
	"testing"

	"go.uber.org/zap"

	"github.com/nmxmxh/desktop-automation-service/internal/platform"
	"github.com/nmxmxh/desktop-automation-service/internal/registry/application"
	"github.com/nmxmxh/desktop-automation-service/internal/registry/element"
	"github.com/nmxmxh/desktop-automation-service/internal/registry/operation"
	"github.com/nmxmxh/desktop-automation-service/internal/registry/window"
	"github.com/nmxmxh/desktop-automation-service/internal/service/clipboard"
	"github.com/nmxmxh/desktop-automation-service/internal/service/filedialog"
	"github.com/nmxmxh/desktop-automation-service/internal/service/macro"
	"github.com/nmxmxh/desktop-automation-service/internal/service/observation"
	"github.com/nmxmxh/desktop-automation-service/internal/service/screenshot"
	"github.com/nmxmxh/desktop-automation-service/internal/service/script"
	"github.com/nmxmxh/desktop-automation-service/internal/service/session"
	"github.com/nmxmxh/desktop-automation-service/internal/service/windowsvc"
)

// newTestServer builds a Server the same way cmd/server/main.go's buildDeps
// does, against the Unimplemented platform stub, so RPC-layer tests exercise
// real registries/services without any OS dependency.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := zap.NewNop()
	var sys platform.SystemOperations = platform.Unimplemented{}

	elements := element.New(log)
	windows := window.New(sys, log)
	apps := application.New(log)
	ops := operation.New(log)

	windowSvc := windowsvc.New(windows, sys, log)
	observations := observation.New(sys, ops, log)
	macros := macro.New(log)
	macroExec := macro.NewExecutor(sys, elements, windows, log)
	sessions := session.New(log)
	clip := clipboard.New(sys)
	shots := screenshot.New(sys, elements, log)
	scripts := script.New(sys, log)
	dialogs := filedialog.New(sys, elements, log)

	t.Cleanup(func() {
		elements.Stop()
		sessions.Stop()
	})

	return New(Deps{
		Sys:          sys,
		Apps:         apps,
		Windows:      windows,
		Elements:     elements,
		Operations:   ops,
		WindowSvc:    windowSvc,
		Observations: observations,
		Macros:       macros,
		MacroExec:    macroExec,
		Sessions:     sessions,
		Clipboard:    clip,
		Screenshots:  shots,
		Scripts:      scripts,
		FileDialogs:  dialogs,
		Log:          log,
	})
}
