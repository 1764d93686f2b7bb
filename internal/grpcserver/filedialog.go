package grpcserver

import (
	"context"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
)

func (s *Server) OpenFileDialog(ctx context.Context, req *uiautomationpb.OpenFileDialogRequest) (*uiautomationpb.OpenFileDialogResponse, error) {
	return s.FileDialogs.Open(ctx, req)
}

func (s *Server) SaveFileDialog(ctx context.Context, req *uiautomationpb.SaveFileDialogRequest) (*uiautomationpb.SaveFileDialogResponse, error) {
	return s.FileDialogs.Save(ctx, req)
}

func (s *Server) SelectFile(ctx context.Context, req *uiautomationpb.SelectFileRequest) (*uiautomationpb.SelectFileResponse, error) {
	return s.FileDialogs.SelectFile(ctx, req)
}

func (s *Server) SelectDirectory(ctx context.Context, req *uiautomationpb.SelectDirectoryRequest) (*uiautomationpb.SelectDirectoryResponse, error) {
	return s.FileDialogs.SelectDirectory(ctx, req)
}

func (s *Server) DragFiles(ctx context.Context, req *uiautomationpb.DragFilesRequest) (*uiautomationpb.DragFilesResponse, error) {
	return s.FileDialogs.DragFiles(ctx, req)
}
