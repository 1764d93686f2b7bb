package grpcserver

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
)

func (s *Server) CreateMacro(ctx context.Context, req *uiautomationpb.CreateMacroRequest) (*uiautomationpb.Macro, error) {
	if req.Macro == nil {
		return nil, apierror.New(codes.InvalidArgument, apierror.ReasonRequiredFieldMissing,
			"macro is required", map[string]string{"field": "macro"})
	}
	return s.Macros.Create(req.Macro), nil
}

func (s *Server) GetMacro(ctx context.Context, req *uiautomationpb.GetMacroRequest) (*uiautomationpb.Macro, error) {
	mc, err := s.Macros.Get(req.Name)
	if err != nil {
		return nil, err
	}
	return applyMacroReadMask(mc, req.ReadMask), nil
}

func (s *Server) ListMacros(ctx context.Context, req *uiautomationpb.ListMacrosRequest) (*uiautomationpb.ListMacrosResponse, error) {
	macros, next, err := s.Macros.List(req.PageSize, req.PageToken)
	if err != nil {
		return nil, err
	}
	return &uiautomationpb.ListMacrosResponse{Macros: macros, NextPageToken: next}, nil
}

func (s *Server) UpdateMacro(ctx context.Context, req *uiautomationpb.UpdateMacroRequest) (*uiautomationpb.Macro, error) {
	if req.Macro == nil {
		return nil, apierror.New(codes.InvalidArgument, apierror.ReasonRequiredFieldMissing,
			"macro is required", map[string]string{"field": "macro"})
	}
	return s.Macros.Update(req.Macro, req.UpdateMask)
}

func (s *Server) DeleteMacro(ctx context.Context, req *uiautomationpb.DeleteMacroRequest) (*uiautomationpb.Empty, error) {
	if err := s.Macros.Delete(req.Name); err != nil {
		return nil, err
	}
	return uiautomationpb.EmptyResponse, nil
}

// ExecuteMacro runs the interpreter asynchronously behind an LRO: the macro
// lookup and parameter/timeout setup happen inline so malformed requests
// fail fast, but the actual interpretation (which can run for minutes, per
// the macro's own timeout) happens in a goroutine.
func (s *Server) ExecuteMacro(ctx context.Context, req *uiautomationpb.ExecuteMacroRequest) (*uiautomationpb.OperationHandle, error) {
	mc, err := s.Macros.Get(req.Name)
	if err != nil {
		return nil, err
	}
	opName, err := s.Operations.Create("macro_execution", nil)
	if err != nil {
		return nil, err
	}
	go func() {
		bgCtx := context.WithoutCancel(ctx)
		result, execErr := s.MacroExec.Execute(bgCtx, mc, req.Parameters, req.Parent, req.Timeout)
		if execErr != nil {
			if failErr := s.Operations.Fail(opName, codes.Aborted, execErr.Error()); failErr != nil && s.Log != nil {
				s.Log.Error("failed to record ExecuteMacro failure", zap.Error(failErr))
			}
			return
		}
		s.Macros.IncrementExecutionCount(req.Name)
		resp := &uiautomationpb.ExecuteMacroResult{MacroName: req.Name, ActionsRun: result.ActionsRun}
		if finErr := s.Operations.Finish(opName, resp); finErr != nil && s.Log != nil {
			s.Log.Error("failed to finish ExecuteMacro operation", zap.Error(finErr))
		}
	}()
	return &uiautomationpb.OperationHandle{Name: opName}, nil
}
