// Package grpcserver wires every registry and orchestration service built
// under internal/registry and internal/service into the
// uiautomationpb.UIAutomationServiceServer and google.longrunning
// OperationsServer interfaces, following the teacher's service-provider
// pattern of a single struct holding every dependency and one method per RPC.
package grpcserver

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/internal/platform"
	"github.com/nmxmxh/desktop-automation-service/internal/registry/application"
	"github.com/nmxmxh/desktop-automation-service/internal/registry/element"
	"github.com/nmxmxh/desktop-automation-service/internal/registry/operation"
	"github.com/nmxmxh/desktop-automation-service/internal/registry/window"
	"github.com/nmxmxh/desktop-automation-service/internal/service/clipboard"
	"github.com/nmxmxh/desktop-automation-service/internal/service/filedialog"
	"github.com/nmxmxh/desktop-automation-service/internal/service/macro"
	"github.com/nmxmxh/desktop-automation-service/internal/service/observation"
	"github.com/nmxmxh/desktop-automation-service/internal/service/screenshot"
	"github.com/nmxmxh/desktop-automation-service/internal/service/script"
	"github.com/nmxmxh/desktop-automation-service/internal/service/session"
	"github.com/nmxmxh/desktop-automation-service/internal/service/windowsvc"
	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
	"github.com/nmxmxh/desktop-automation-service/pkg/names"
	"google.golang.org/grpc/codes"
)

// Deps bundles every component the server delegates to. Each field is built
// and owned by cmd/server/main.go and handed in at construction.
type Deps struct {
	Sys         platform.SystemOperations
	Apps        *application.Store
	Windows     *window.Registry
	Elements    *element.Registry
	Operations  *operation.Store
	WindowSvc   *windowsvc.Service
	Observations *observation.Manager
	Macros      *macro.Registry
	MacroExec   *macro.Executor
	Sessions    *session.Manager
	Clipboard   *clipboard.Manager
	Screenshots *screenshot.Service
	Scripts     *script.Service
	FileDialogs *filedialog.Service
	Log         *zap.Logger
}

// Server implements uiautomationpb.UIAutomationServiceServer. It holds no
// state of its own beyond Deps; every RPC composes or mutates state that
// lives in one of the registries/services.
type Server struct {
	Deps
}

// New constructs a Server from a fully-populated Deps.
func New(d Deps) *Server {
	return &Server{Deps: d}
}

var _ uiautomationpb.UIAutomationServiceServer = (*Server)(nil)

// --- Application ---

// OpenApplication launches or activates an application asynchronously: the
// adapter call runs in a goroutine and the result lands on the returned
// operation, per §4.2/§9's "mutations that may block land on an LRO" shape.
func (s *Server) OpenApplication(ctx context.Context, req *uiautomationpb.OpenApplicationRequest) (*uiautomationpb.OperationHandle, error) {
	if req.ID == "" {
		return nil, apierror.New(codes.InvalidArgument, apierror.ReasonRequiredFieldMissing,
			"id is required", map[string]string{"field": "id"})
	}
	opName, err := s.Operations.Create("application", nil)
	if err != nil {
		return nil, err
	}
	go func() {
		bgCtx := context.WithoutCancel(ctx)
		pid, displayName, err := s.Sys.OpenApplication(bgCtx, req.ID)
		if err != nil {
			if failErr := s.Operations.Fail(opName, codes.Internal, err.Error()); failErr != nil && s.Log != nil {
				s.Log.Error("failed to record OpenApplication failure", zap.Error(failErr))
			}
			return
		}
		app := &uiautomationpb.Application{
			Name:        names.ApplicationName{PID: pid}.String(),
			DisplayName: displayName,
			PID:         pid,
		}
		s.Apps.PutApplication(app)
		if finErr := s.Operations.Finish(opName, app); finErr != nil && s.Log != nil {
			s.Log.Error("failed to finish OpenApplication operation", zap.Error(finErr))
		}
	}()
	return &uiautomationpb.OperationHandle{Name: opName}, nil
}

// CloseApplication terminates the process synchronously and removes it (and
// its inputs) from the store.
func (s *Server) CloseApplication(ctx context.Context, req *uiautomationpb.CloseApplicationRequest) (*uiautomationpb.Application, error) {
	an, err := names.ParseApplicationName(req.Name)
	if err != nil {
		return nil, err
	}
	app, err := s.Apps.GetApplication(an.PID)
	if err != nil {
		return nil, err
	}
	if err := s.Sys.CloseApplication(ctx, an.PID); err != nil {
		return nil, apierror.Wrap(codes.Internal, apierror.ReasonAdapterFailure,
			"failed to close application", err, map[string]string{"name": req.Name})
	}
	s.Apps.RemoveApplication(an.PID)
	s.Elements.ClearByPID(an.PID)
	return app, nil
}

func (s *Server) GetApplication(ctx context.Context, req *uiautomationpb.GetApplicationRequest) (*uiautomationpb.Application, error) {
	an, err := names.ParseApplicationName(req.Name)
	if err != nil {
		return nil, err
	}
	app, err := s.Apps.GetApplication(an.PID)
	if err != nil {
		return nil, err
	}
	return applyApplicationReadMask(app, req.ReadMask), nil
}

func (s *Server) ListApplications(ctx context.Context, req *uiautomationpb.ListApplicationsRequest) (*uiautomationpb.ListApplicationsResponse, error) {
	apps, next, err := s.Apps.ListApplications(req.PageSize, req.PageToken)
	if err != nil {
		return nil, err
	}
	return &uiautomationpb.ListApplicationsResponse{Applications: apps, NextPageToken: next}, nil
}

// --- Input ---

// CreateInput dispatches a synthetic input action and records its lifecycle.
// Action is a small tagged map: {"type": "click", "x": ..., "y": ..., "button": ...}
// or {"type": "type", "text": ...}, mirroring the macro executor's input/
// method-call primitives (§4.8) at the request-plane level.
func (s *Server) CreateInput(ctx context.Context, req *uiautomationpb.CreateInputRequest) (*uiautomationpb.Input, error) {
	id := element.NewID()
	var name string
	if req.Parent == "" {
		name = "desktopInputs/" + id
	} else {
		an, err := names.ParseApplicationName(req.Parent)
		if err != nil {
			return nil, err
		}
		if an.IsWildcard {
			name = "desktopInputs/" + id
		} else {
			name = names.ChildName{PID: an.PID, Collection: "inputs", ID: id}.String()
		}
	}

	in := &uiautomationpb.Input{
		Name:       name,
		Action:     req.Action,
		State:      uiautomationpb.InputPending,
		CreateTime: time.Now(),
	}
	s.Apps.PutInput(in)

	in.State = uiautomationpb.InputExecuting
	if execErr := s.executeInputAction(ctx, req.Action); execErr != nil {
		s.Apps.CompleteInput(name, execErr)
	} else {
		s.Apps.CompleteInput(name, nil)
	}
	updated, err := s.Apps.GetInput(name)
	if err != nil {
		return in, nil
	}
	return updated, nil
}

func (s *Server) executeInputAction(ctx context.Context, action map[string]string) error {
	switch action["type"] {
	case "click":
		x, y, err := parseXY(action)
		if err != nil {
			return err
		}
		button := action["button"]
		if button == "" {
			button = "left"
		}
		return s.Sys.SynthesizeClick(ctx, x, y, button)
	case "type":
		return s.Sys.SynthesizeTyping(ctx, action["text"])
	default:
		return apierror.New(codes.InvalidArgument, apierror.ReasonRequiredFieldMissing,
			"unsupported input action type", map[string]string{"type": action["type"]})
	}
}

func parseXY(action map[string]string) (x, y float64, err error) {
	x, err = strconv.ParseFloat(action["x"], 64)
	if err != nil {
		return 0, 0, apierror.New(codes.InvalidArgument, apierror.ReasonInvalidCoordinate,
			"invalid x coordinate", map[string]string{"value": action["x"]})
	}
	y, err = strconv.ParseFloat(action["y"], 64)
	if err != nil {
		return 0, 0, apierror.New(codes.InvalidArgument, apierror.ReasonInvalidCoordinate,
			"invalid y coordinate", map[string]string{"value": action["y"]})
	}
	return x, y, nil
}

func (s *Server) GetInput(ctx context.Context, req *uiautomationpb.GetInputRequest) (*uiautomationpb.Input, error) {
	return s.Apps.GetInput(req.Name)
}

func (s *Server) ListInputs(ctx context.Context, req *uiautomationpb.ListInputsRequest) (*uiautomationpb.ListInputsResponse, error) {
	ins, next, err := s.Apps.ListInputs(req.Parent, req.PageSize, req.PageToken)
	if err != nil {
		return nil, err
	}
	return &uiautomationpb.ListInputsResponse{Inputs: ins, NextPageToken: next}, nil
}
