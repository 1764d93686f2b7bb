package grpcserver

import (
	"context"

	"google.golang.org/grpc/codes"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
	"github.com/nmxmxh/desktop-automation-service/pkg/pagination"
)

// Only one clipboard exists on a desktop session, so GetClipboard and
// GetClipboardHistory resolve the two fixed singleton names below and reject
// anything else as not found rather than parsing a resource-name grammar.
const (
	clipboardName        = "clipboard"
	clipboardHistoryName = "clipboard/history"
)

func (s *Server) GetClipboard(ctx context.Context, req *uiautomationpb.GetClipboardRequest) (*uiautomationpb.Clipboard, error) {
	if req.Name != clipboardName {
		return nil, apierror.New(codes.NotFound, apierror.ReasonInvalidResourceName,
			"clipboard not found", map[string]string{"name": req.Name})
	}
	return s.Clipboard.Read(ctx)
}

func (s *Server) WriteClipboard(ctx context.Context, req *uiautomationpb.WriteClipboardRequest) (*uiautomationpb.Clipboard, error) {
	if err := s.Clipboard.Write(ctx, req.Content); err != nil {
		return nil, err
	}
	return s.Clipboard.Read(ctx)
}

func (s *Server) ClearClipboard(ctx context.Context, req *uiautomationpb.ClearClipboardRequest) (*uiautomationpb.Empty, error) {
	if err := s.Clipboard.Clear(ctx); err != nil {
		return nil, err
	}
	return uiautomationpb.EmptyResponse, nil
}

func (s *Server) GetClipboardHistory(ctx context.Context, req *uiautomationpb.GetClipboardHistoryRequest) (*uiautomationpb.GetClipboardHistoryResponse, error) {
	if req.Name != clipboardHistoryName {
		return nil, apierror.New(codes.NotFound, apierror.ReasonInvalidResourceName,
			"clipboard history not found", map[string]string{"name": req.Name})
	}
	entries := s.Clipboard.History()
	pointers := make([]*uiautomationpb.ClipboardHistoryEntry, len(entries))
	for i := range entries {
		pointers[i] = &entries[i]
	}
	offset, err := pagination.DecodeOrZero(req.PageToken)
	if err != nil {
		return nil, err
	}
	size := pagination.ResolvePageSize(req.PageSize, pagination.SmallDefaultPageSize)
	page, next := pagination.Page(pointers, offset, size)
	return &uiautomationpb.GetClipboardHistoryResponse{Entries: page, NextPageToken: next}, nil
}
