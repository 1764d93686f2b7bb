package grpcserver

import (
	"context"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
)

func (s *Server) CaptureScreenshot(ctx context.Context, req *uiautomationpb.CaptureScreenshotRequest) (*uiautomationpb.CaptureScreenshotResponse, error) {
	return s.Screenshots.Capture(ctx, req)
}
