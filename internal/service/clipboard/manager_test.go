package clipboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/internal/platform"
)

// fakeSystem embeds platform.Unimplemented so it satisfies SystemOperations,
// overriding only the clipboard methods the manager actually calls.
type fakeSystem struct {
	platform.Unimplemented
	content     platform.ClipboardContent
	readErr     error
	writeErr    error
	clearErr    error
	activeApp   string
	lastWritten platform.ClipboardContent
}

func (f *fakeSystem) ReadClipboard(ctx context.Context) (platform.ClipboardContent, error) {
	return f.content, f.readErr
}

func (f *fakeSystem) WriteClipboard(ctx context.Context, content platform.ClipboardContent) error {
	f.lastWritten = content
	return f.writeErr
}

func (f *fakeSystem) ClearClipboard(ctx context.Context) error {
	return f.clearErr
}

func (f *fakeSystem) ActiveApplicationName(ctx context.Context) string {
	return f.activeApp
}

func TestRead(t *testing.T) {
	sys := &fakeSystem{content: platform.ClipboardContent{Kind: platform.ClipboardText, Text: "hello"}}
	m := New(sys)

	got, err := m.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "clipboard", got.Name)
	assert.Equal(t, "hello", got.Text)
}

func TestRead_AdapterFailure(t *testing.T) {
	sys := &fakeSystem{readErr: assert.AnError}
	m := New(sys)

	_, err := m.Read(context.Background())
	assert.Error(t, err)
}

func TestWrite_RecordsHistory(t *testing.T) {
	sys := &fakeSystem{activeApp: "TextEdit"}
	m := New(sys)

	err := m.Write(context.Background(), uiautomationpb.Clipboard{Text: "copied text"})
	require.NoError(t, err)
	assert.Equal(t, "copied text", sys.lastWritten.Text)

	history := m.History()
	require.Len(t, history, 1)
	assert.Equal(t, "copied text", history[0].Content.Text)
	assert.Equal(t, "TextEdit", history[0].SourceApplication)
	assert.False(t, history[0].CopiedTime.IsZero())
}

func TestWrite_AdapterFailureDoesNotRecordHistory(t *testing.T) {
	sys := &fakeSystem{writeErr: assert.AnError}
	m := New(sys)

	err := m.Write(context.Background(), uiautomationpb.Clipboard{Text: "x"})
	assert.Error(t, err)
	assert.Empty(t, m.History())
}

func TestHistory_NewestFirstAndBounded(t *testing.T) {
	sys := &fakeSystem{}
	m := New(sys)

	for i := 0; i < HistoryCap+10; i++ {
		err := m.Write(context.Background(), uiautomationpb.Clipboard{Text: string(rune('a' + i%26))})
		require.NoError(t, err)
	}

	history := m.History()
	assert.Len(t, history, HistoryCap, "history should be capped")
}

func TestClear(t *testing.T) {
	sys := &fakeSystem{}
	m := New(sys)

	require.NoError(t, m.Clear(context.Background()))

	sys.clearErr = assert.AnError
	assert.Error(t, m.Clear(context.Background()))
}
