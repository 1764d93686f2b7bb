package grpcserver

import (
	"context"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
)

func (s *Server) ExecuteScript(ctx context.Context, req *uiautomationpb.ExecuteScriptRequest) (*uiautomationpb.ExecuteScriptResponse, error) {
	return s.Scripts.Execute(ctx, req)
}

func (s *Server) ValidateScript(ctx context.Context, req *uiautomationpb.ValidateScriptRequest) (*uiautomationpb.ValidateScriptResponse, error) {
	return s.Scripts.Validate(ctx, req)
}
