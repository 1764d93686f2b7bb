package grpcserver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
)

func TestApplyApplicationReadMask(t *testing.T) {
	app := &uiautomationpb.Application{Name: "applications/1", DisplayName: "TextEdit", PID: 1}

	t.Run("empty mask keeps everything", func(t *testing.T) {
		out := applyApplicationReadMask(app, nil)
		assert.Equal(t, app, out)
	})

	t.Run("mask filters, keeping name", func(t *testing.T) {
		out := applyApplicationReadMask(app, []string{"displayName"})
		assert.Equal(t, "applications/1", out.Name)
		assert.Equal(t, "TextEdit", out.DisplayName)
		assert.Zero(t, out.PID)
	})
}

func TestApplyWindowReadMask(t *testing.T) {
	win := &uiautomationpb.Window{
		Name: "applications/1/windows/2", Title: "Untitled",
		Bounds: uiautomationpb.Rect{X: 1, Y: 2, W: 3, H: 4}, ZIndex: 1, Visible: true,
	}

	out := applyWindowReadMask(win, []string{"bounds"})
	assert.Equal(t, win.Name, out.Name)
	assert.Equal(t, win.Bounds, out.Bounds)
	assert.Empty(t, out.Title)
	assert.Zero(t, out.ZIndex)
}

func TestApplyMacroReadMask(t *testing.T) {
	mc := &uiautomationpb.Macro{Name: "macros/1", DisplayName: "Save", ExecutionCount: 5}

	out := applyMacroReadMask(mc, []string{"executionCount"})
	assert.Equal(t, mc.Name, out.Name)
	assert.Equal(t, int64(5), out.ExecutionCount)
	assert.Empty(t, out.DisplayName)
}

func TestApplyDisplayReadMask(t *testing.T) {
	d := &uiautomationpb.Display{Name: "displays/1", IsMain: true, Scale: 2.0}

	out := applyDisplayReadMask(d, []string{"isMain"})
	assert.Equal(t, d.Name, out.Name)
	assert.True(t, out.IsMain)
	assert.Zero(t, out.Scale)
}
