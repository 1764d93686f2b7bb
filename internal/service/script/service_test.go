package script

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/internal/platform"
)

type fakeSystem struct {
	platform.Unimplemented
	compileResult platform.ScriptResult
	executeResult platform.ScriptResult
	shellResult   platform.ScriptResult
	err           error
}

func (f *fakeSystem) CompileScript(ctx context.Context, kind platform.ScriptKind, source string) (platform.ScriptResult, error) {
	return f.compileResult, f.err
}

func (f *fakeSystem) ExecuteScript(ctx context.Context, kind platform.ScriptKind, source string) (platform.ScriptResult, error) {
	return f.executeResult, f.err
}

func (f *fakeSystem) ExecuteShell(ctx context.Context, command string, opts platform.ShellExecOptions) (platform.ScriptResult, error) {
	return f.shellResult, f.err
}

func TestCheckDenylist(t *testing.T) {
	assert.NoError(t, checkDenylist("tell application \"Finder\" to activate"))
	assert.Error(t, checkDenylist("rm -rf / --no-preserve-root"))
	assert.Error(t, checkDenylist("sudo reboot"))
	assert.Error(t, checkDenylist("SUDO reboot"), "denylist match is case-insensitive")
}

func TestExecute_DenylistRejectsBeforeDispatch(t *testing.T) {
	sys := &fakeSystem{}
	s := New(sys, zap.NewNop())

	_, err := s.Execute(context.Background(), &uiautomationpb.ExecuteScriptRequest{
		Kind:   int(platform.ScriptShell),
		Source: "sudo rm -rf /",
	})
	assert.Error(t, err)
}

func TestExecute_CompileOnlyAppleScript(t *testing.T) {
	sys := &fakeSystem{compileResult: platform.ScriptResult{Success: true}}
	s := New(sys, zap.NewNop())

	resp, err := s.Execute(context.Background(), &uiautomationpb.ExecuteScriptRequest{
		Kind:        int(platform.ScriptAppleScript),
		Source:      "tell application \"Finder\" to activate",
		CompileOnly: true,
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Script compiled successfully", resp.Output)
}

func TestExecute_Shell(t *testing.T) {
	sys := &fakeSystem{shellResult: platform.ScriptResult{Success: true, Stdout: "hi", ExitCode: 0}}
	s := New(sys, zap.NewNop())

	resp, err := s.Execute(context.Background(), &uiautomationpb.ExecuteScriptRequest{
		Kind:   int(platform.ScriptShell),
		Source: "echo hi",
		ShellOpts: &uiautomationpb.ShellOptions{
			WorkingDir: "/tmp",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", resp.Stdout)
}

func TestExecute_ShellIgnoresCompileOnly(t *testing.T) {
	sys := &fakeSystem{shellResult: platform.ScriptResult{Success: true}}
	s := New(sys, zap.NewNop())

	resp, err := s.Execute(context.Background(), &uiautomationpb.ExecuteScriptRequest{
		Kind:        int(platform.ScriptShell),
		Source:      "echo hi",
		CompileOnly: true,
	})
	require.NoError(t, err)
	assert.True(t, resp.Success, "shell has no compile-only mode, so it always executes")
}

func TestExecute_JXAFull(t *testing.T) {
	sys := &fakeSystem{executeResult: platform.ScriptResult{Success: true, Output: "done"}}
	s := New(sys, zap.NewNop())

	resp, err := s.Execute(context.Background(), &uiautomationpb.ExecuteScriptRequest{
		Kind:   int(platform.ScriptJXA),
		Source: "Application('Finder').activate()",
	})
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Output)
}

func TestExecute_AdapterFailure(t *testing.T) {
	sys := &fakeSystem{err: assert.AnError}
	s := New(sys, zap.NewNop())

	_, err := s.Execute(context.Background(), &uiautomationpb.ExecuteScriptRequest{
		Kind:   int(platform.ScriptAppleScript),
		Source: "tell application \"Finder\" to activate",
	})
	assert.Error(t, err)
}

func TestValidate_DenylistRejects(t *testing.T) {
	s := New(&fakeSystem{}, zap.NewNop())
	_, err := s.Validate(context.Background(), &uiautomationpb.ValidateScriptRequest{Source: "sudo ls"})
	assert.Error(t, err)
}

func TestValidate_ShellEmptyIsInvalid(t *testing.T) {
	s := New(&fakeSystem{}, zap.NewNop())
	resp, err := s.Validate(context.Background(), &uiautomationpb.ValidateScriptRequest{
		Kind:   int(platform.ScriptShell),
		Source: "   ",
	})
	require.NoError(t, err)
	assert.False(t, resp.Valid)
}

func TestValidate_ShellNonEmptyIsValid(t *testing.T) {
	s := New(&fakeSystem{}, zap.NewNop())
	resp, err := s.Validate(context.Background(), &uiautomationpb.ValidateScriptRequest{
		Kind:   int(platform.ScriptShell),
		Source: "echo hi",
	})
	require.NoError(t, err)
	assert.True(t, resp.Valid)
}

func TestValidate_AppleScriptDelegatesToCompile(t *testing.T) {
	sys := &fakeSystem{compileResult: platform.ScriptResult{Success: true, Output: "ok"}}
	s := New(sys, zap.NewNop())

	resp, err := s.Validate(context.Background(), &uiautomationpb.ValidateScriptRequest{
		Kind:   int(platform.ScriptAppleScript),
		Source: "tell application \"Finder\" to activate",
	})
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, "ok", resp.Message)
}

func TestValidate_CompileFailureReturnsInvalidNotError(t *testing.T) {
	sys := &fakeSystem{err: assert.AnError}
	s := New(sys, zap.NewNop())

	resp, err := s.Validate(context.Background(), &uiautomationpb.ValidateScriptRequest{
		Kind:   int(platform.ScriptAppleScript),
		Source: "broken",
	})
	require.NoError(t, err, "validate reports invalidity through the response, not an error")
	assert.False(t, resp.Valid)
}
