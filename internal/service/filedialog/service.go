// Package filedialog implements the file-dialog orchestration described in
// spec §4.13: open/save/select-file/select-directory/drag-files over the
// platform adapter, including the drag intermediate-step-count formula.
package filedialog

import (
	"context"
	"math"
	"time"

	cb "github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/internal/platform"
	"github.com/nmxmxh/desktop-automation-service/internal/registry/element"
	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
	"google.golang.org/grpc/codes"
)

// MinDragSteps is the floor on generated intermediate drag-move events.
const MinDragSteps = 10

// Service orchestrates the five file-dialog operations.
type Service struct {
	sys      platform.SystemOperations
	elements *element.Registry
	breaker  *cb.CircuitBreaker
	log      *zap.Logger
}

func New(sys platform.SystemOperations, elements *element.Registry, log *zap.Logger) *Service {
	breaker := cb.NewCircuitBreaker(cb.Settings{
		Name:        "FileDialogAdapterCB",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts cb.Counts) bool { return counts.ConsecutiveFailures > 5 },
		OnStateChange: func(name string, from, to cb.State) {
			if log != nil {
				log.Warn("file dialog adapter circuit breaker state change",
					zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
			}
		},
	})
	return &Service{sys: sys, elements: elements, breaker: breaker, log: log}
}

func (s *Service) Open(ctx context.Context, req *uiautomationpb.OpenFileDialogRequest) (*uiautomationpb.OpenFileDialogResponse, error) {
	paths, err := s.guarded(func() (any, error) {
		return s.sys.OpenFileDialog(ctx, platform.OpenFileOptions{
			AllowMultiple:    req.AllowMultiple,
			ExtensionFilters: req.ExtensionFilters,
		})
	})
	if err != nil {
		return nil, err
	}
	return &uiautomationpb.OpenFileDialogResponse{Paths: paths.([]string)}, nil
}

func (s *Service) Save(ctx context.Context, req *uiautomationpb.SaveFileDialogRequest) (*uiautomationpb.SaveFileDialogResponse, error) {
	path, err := s.guarded(func() (any, error) {
		return s.sys.SaveFileDialog(ctx, platform.SaveFileOptions{
			DefaultDir:       req.DefaultDir,
			DefaultFilename:  req.DefaultFilename,
			ConfirmOverwrite: req.ConfirmOverwrite,
		})
	})
	if err != nil {
		return nil, err
	}
	return &uiautomationpb.SaveFileDialogResponse{Path: path.(string)}, nil
}

func (s *Service) SelectFile(ctx context.Context, req *uiautomationpb.SelectFileRequest) (*uiautomationpb.SelectFileResponse, error) {
	path, err := s.guarded(func() (any, error) {
		return s.sys.SelectFile(ctx, req.Reveal)
	})
	if err != nil {
		return nil, err
	}
	return &uiautomationpb.SelectFileResponse{Path: path.(string)}, nil
}

func (s *Service) SelectDirectory(ctx context.Context, req *uiautomationpb.SelectDirectoryRequest) (*uiautomationpb.SelectDirectoryResponse, error) {
	path, err := s.guarded(func() (any, error) {
		return s.sys.SelectDirectory(ctx, req.CreateMissing)
	})
	if err != nil {
		return nil, err
	}
	return &uiautomationpb.SelectDirectoryResponse{Path: path.(string)}, nil
}

// DragFiles validates the request, resolves the target element, computes the
// intermediate step count, and drives the adapter's drag session.
func (s *Service) DragFiles(ctx context.Context, req *uiautomationpb.DragFilesRequest) (*uiautomationpb.DragFilesResponse, error) {
	if len(req.Files) == 0 {
		return nil, apierror.New(codes.InvalidArgument, apierror.ReasonRequiredFieldMissing,
			"at least one file path is required", nil)
	}
	for _, f := range req.Files {
		if f == "" {
			return nil, apierror.New(codes.InvalidArgument, apierror.ReasonRequiredFieldMissing,
				"file paths must be non-empty", nil)
		}
	}
	if req.Duration < 0 {
		return nil, apierror.New(codes.InvalidArgument, apierror.ReasonInvalidDimension,
			"drag duration must be non-negative", nil)
	}
	el, err := s.elements.Get(req.TargetElement)
	if err != nil {
		return nil, err
	}
	if el.Bounds == nil {
		return nil, apierror.New(codes.FailedPrecondition, apierror.ReasonElementNoBounds,
			"drag target element has no bounds", map[string]string{"elementId": req.TargetElement})
	}
	handle, err := s.elements.GetHandle(req.TargetElement)
	if err != nil {
		return nil, err
	}
	steps := DragSteps(req.Duration)

	_, err = s.guarded(func() (any, error) {
		return nil, s.sys.DragFiles(ctx, req.Files, handle, req.Duration, steps)
	})
	if err != nil {
		return nil, err
	}
	return &uiautomationpb.DragFilesResponse{}, nil
}

// DragSteps implements §4.13's intermediate-move-event count formula.
func DragSteps(duration time.Duration) int {
	steps := int(math.Round(duration.Seconds() * 60))
	if steps < MinDragSteps {
		return MinDragSteps
	}
	return steps
}

func (s *Service) guarded(fn func() (any, error)) (any, error) {
	v, err := s.breaker.Execute(fn)
	if err != nil {
		if err == cb.ErrOpenState || err == cb.ErrTooManyRequests {
			return nil, apierror.Wrap(codes.Internal, apierror.ReasonAdapterFailure,
				"file dialog adapter circuit breaker open", err, nil)
		}
		return nil, apierror.Wrap(codes.Internal, apierror.ReasonAdapterFailure,
			"file dialog operation failed", err, nil)
	}
	return v, nil
}
