package grpcserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
)

func TestGetClipboard_RejectsNonSingletonName(t *testing.T) {
	s := newTestServer(t)

	_, err := s.GetClipboard(context.Background(), &uiautomationpb.GetClipboardRequest{Name: "clipboards/1"})
	assert.Error(t, err)
}

func TestGetClipboard_AdapterUnimplemented(t *testing.T) {
	s := newTestServer(t)

	_, err := s.GetClipboard(context.Background(), &uiautomationpb.GetClipboardRequest{Name: clipboardName})
	assert.Error(t, err, "the Unimplemented adapter has no real pasteboard to read")
}

func TestGetClipboardHistory_RejectsNonSingletonName(t *testing.T) {
	s := newTestServer(t)

	_, err := s.GetClipboardHistory(context.Background(), &uiautomationpb.GetClipboardHistoryRequest{Name: "clipboard"})
	assert.Error(t, err)
}

func TestGetClipboardHistory_EmptyByDefault(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.GetClipboardHistory(context.Background(), &uiautomationpb.GetClipboardHistoryRequest{Name: clipboardHistoryName})
	require.NoError(t, err)
	assert.Empty(t, resp.Entries)
	assert.Empty(t, resp.NextPageToken)
}

func TestClearClipboard_AdapterUnimplemented(t *testing.T) {
	s := newTestServer(t)

	_, err := s.ClearClipboard(context.Background(), &uiautomationpb.ClearClipboardRequest{})
	assert.Error(t, err)
}
