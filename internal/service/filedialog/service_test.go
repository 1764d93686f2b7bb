package filedialog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/internal/platform"
	"github.com/nmxmxh/desktop-automation-service/internal/registry/element"
)

type fakeHandle struct{ pid int }

func (f fakeHandle) PID() int { return f.pid }

type fakeSystem struct {
	platform.Unimplemented
	openPaths    []string
	savePath     string
	selectedFile string
	selectedDir  string
	draggedFiles []string
	dragSteps    int
	err          error
}

func (f *fakeSystem) OpenFileDialog(ctx context.Context, opts platform.OpenFileOptions) ([]string, error) {
	return f.openPaths, f.err
}
func (f *fakeSystem) SaveFileDialog(ctx context.Context, opts platform.SaveFileOptions) (string, error) {
	return f.savePath, f.err
}
func (f *fakeSystem) SelectFile(ctx context.Context, reveal bool) (string, error) {
	return f.selectedFile, f.err
}
func (f *fakeSystem) SelectDirectory(ctx context.Context, createMissing bool) (string, error) {
	return f.selectedDir, f.err
}
func (f *fakeSystem) DragFiles(ctx context.Context, files []string, targetElement platform.ElementHandle, duration time.Duration, steps int) error {
	f.draggedFiles = files
	f.dragSteps = steps
	return f.err
}

func newTestService(sys *fakeSystem) (*Service, *element.Registry) {
	elements := element.New(zap.NewNop())
	return New(sys, elements, zap.NewNop()), elements
}

func TestOpen(t *testing.T) {
	sys := &fakeSystem{openPaths: []string{"/a", "/b"}}
	s, _ := newTestService(sys)

	resp, err := s.Open(context.Background(), &uiautomationpb.OpenFileDialogRequest{AllowMultiple: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, resp.Paths)
}

func TestSave(t *testing.T) {
	sys := &fakeSystem{savePath: "/out.txt"}
	s, _ := newTestService(sys)

	resp, err := s.Save(context.Background(), &uiautomationpb.SaveFileDialogRequest{DefaultFilename: "out.txt"})
	require.NoError(t, err)
	assert.Equal(t, "/out.txt", resp.Path)
}

func TestSelectFile(t *testing.T) {
	sys := &fakeSystem{selectedFile: "/x"}
	s, _ := newTestService(sys)

	resp, err := s.SelectFile(context.Background(), &uiautomationpb.SelectFileRequest{})
	require.NoError(t, err)
	assert.Equal(t, "/x", resp.Path)
}

func TestSelectDirectory(t *testing.T) {
	sys := &fakeSystem{selectedDir: "/dir"}
	s, _ := newTestService(sys)

	resp, err := s.SelectDirectory(context.Background(), &uiautomationpb.SelectDirectoryRequest{})
	require.NoError(t, err)
	assert.Equal(t, "/dir", resp.Path)
}

func TestOpen_AdapterFailure(t *testing.T) {
	sys := &fakeSystem{err: assert.AnError}
	s, _ := newTestService(sys)

	_, err := s.Open(context.Background(), &uiautomationpb.OpenFileDialogRequest{})
	assert.Error(t, err)
}

func TestDragFiles_RequiresFiles(t *testing.T) {
	s, _ := newTestService(&fakeSystem{})
	_, err := s.DragFiles(context.Background(), &uiautomationpb.DragFilesRequest{})
	assert.Error(t, err)
}

func TestDragFiles_RejectsEmptyPath(t *testing.T) {
	s, _ := newTestService(&fakeSystem{})
	_, err := s.DragFiles(context.Background(), &uiautomationpb.DragFilesRequest{Files: []string{""}})
	assert.Error(t, err)
}

func TestDragFiles_RejectsNegativeDuration(t *testing.T) {
	s, elements := newTestService(&fakeSystem{})
	id := elements.Register(1, fakeHandle{pid: 1}, &uiautomationpb.Element{Bounds: &uiautomationpb.Rect{W: 1, H: 1}})

	_, err := s.DragFiles(context.Background(), &uiautomationpb.DragFilesRequest{
		Files: []string{"/a"}, TargetElement: id, Duration: -time.Second,
	})
	assert.Error(t, err)
}

func TestDragFiles_UnknownTargetElement(t *testing.T) {
	s, _ := newTestService(&fakeSystem{})
	_, err := s.DragFiles(context.Background(), &uiautomationpb.DragFilesRequest{
		Files: []string{"/a"}, TargetElement: "elem_missing",
	})
	assert.Error(t, err)
}

func TestDragFiles_TargetWithoutBounds(t *testing.T) {
	s, elements := newTestService(&fakeSystem{})
	id := elements.Register(1, fakeHandle{pid: 1}, &uiautomationpb.Element{})

	_, err := s.DragFiles(context.Background(), &uiautomationpb.DragFilesRequest{
		Files: []string{"/a"}, TargetElement: id,
	})
	assert.Error(t, err)
}

func TestDragFiles_Success(t *testing.T) {
	sys := &fakeSystem{}
	s, elements := newTestService(sys)
	id := elements.Register(1, fakeHandle{pid: 1}, &uiautomationpb.Element{Bounds: &uiautomationpb.Rect{W: 1, H: 1}})

	_, err := s.DragFiles(context.Background(), &uiautomationpb.DragFilesRequest{
		Files: []string{"/a", "/b"}, TargetElement: id, Duration: 200 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, sys.draggedFiles)
	assert.Equal(t, 12, sys.dragSteps)
}

func TestDragSteps(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     int
	}{
		{0, MinDragSteps},
		{50 * time.Millisecond, MinDragSteps},
		{500 * time.Millisecond, 30},
		{time.Second, 60},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DragSteps(tt.duration))
	}
}
