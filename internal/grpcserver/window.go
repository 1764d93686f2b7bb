package grpcserver

import (
	"context"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/pkg/names"
)

func (s *Server) GetWindow(ctx context.Context, req *uiautomationpb.GetWindowRequest) (*uiautomationpb.Window, error) {
	w, err := s.WindowSvc.GetWindow(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	return applyWindowReadMask(w, req.ReadMask), nil
}

func (s *Server) ListWindows(ctx context.Context, req *uiautomationpb.ListWindowsRequest) (*uiautomationpb.ListWindowsResponse, error) {
	an, err := names.ParseApplicationName(req.Parent)
	if err != nil {
		return nil, err
	}
	windows, next, err := s.WindowSvc.ListWindows(ctx, an.PID, an.IsWildcard, req.PageSize, req.PageToken)
	if err != nil {
		return nil, err
	}
	return &uiautomationpb.ListWindowsResponse{Windows: windows, NextPageToken: next}, nil
}

func (s *Server) GetWindowState(ctx context.Context, req *uiautomationpb.GetWindowStateRequest) (*uiautomationpb.WindowState, error) {
	return s.WindowSvc.GetWindowState(ctx, req.Name)
}

func (s *Server) MoveWindow(ctx context.Context, req *uiautomationpb.MoveWindowRequest) (*uiautomationpb.Window, error) {
	return s.WindowSvc.MoveWindow(ctx, req.Name, req.X, req.Y)
}

func (s *Server) ResizeWindow(ctx context.Context, req *uiautomationpb.ResizeWindowRequest) (*uiautomationpb.Window, error) {
	return s.WindowSvc.ResizeWindow(ctx, req.Name, req.Width, req.Height)
}

func (s *Server) MinimizeWindow(ctx context.Context, req *uiautomationpb.MinimizeWindowRequest) (*uiautomationpb.Window, error) {
	return s.WindowSvc.MinimizeWindow(ctx, req.Name)
}

func (s *Server) RestoreWindow(ctx context.Context, req *uiautomationpb.RestoreWindowRequest) (*uiautomationpb.Window, error) {
	return s.WindowSvc.RestoreWindow(ctx, req.Name)
}

func (s *Server) CloseWindow(ctx context.Context, req *uiautomationpb.CloseWindowRequest) (*uiautomationpb.Empty, error) {
	if err := s.WindowSvc.CloseWindow(ctx, req.Name); err != nil {
		return nil, err
	}
	return uiautomationpb.EmptyResponse, nil
}
