// Package screenshot implements the capture orchestration described in spec
// §4.11: validates the capture target (display/element/window/region),
// forwards format/quality/OCR options to the platform adapter, and returns
// the resulting bytes, pixel dimensions, and optional OCR text.
package screenshot

import (
	"context"
	"math"
	"strconv"
	"time"

	cb "github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/internal/platform"
	"github.com/nmxmxh/desktop-automation-service/internal/registry/element"
	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
	"google.golang.org/grpc/codes"
)

// Service orchestrates screenshot capture, guarding adapter calls with the
// same resilience pattern as windowsvc's breaker (a separate instance, since
// a run of adapter failures here shouldn't trip window-mutation calls).
type Service struct {
	sys      platform.SystemOperations
	elements *element.Registry
	breaker  *cb.CircuitBreaker
	log      *zap.Logger
}

func New(sys platform.SystemOperations, elements *element.Registry, log *zap.Logger) *Service {
	breaker := cb.NewCircuitBreaker(cb.Settings{
		Name:        "ScreenshotAdapterCB",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts cb.Counts) bool { return counts.ConsecutiveFailures > 5 },
		OnStateChange: func(name string, from, to cb.State) {
			if log != nil {
				log.Warn("screenshot adapter circuit breaker state change",
					zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
			}
		},
	})
	return &Service{sys: sys, elements: elements, breaker: breaker, log: log}
}

// Capture validates req and, if valid, performs the capture through the
// platform adapter.
func (s *Service) Capture(ctx context.Context, req *uiautomationpb.CaptureScreenshotRequest) (*uiautomationpb.CaptureScreenshotResponse, error) {
	target, err := s.resolveTarget(req)
	if err != nil {
		return nil, err
	}
	format := req.Format
	if format == "" {
		format = "png"
	}
	quality := req.Quality
	if quality < 0 {
		quality = 0
	}
	if quality > 100 {
		quality = 100
	}
	opts := platform.CaptureOptions{Format: format, Quality: quality, IncludeOCRText: req.IncludeOCRText}

	var result platform.CaptureResult
	_, err = s.breaker.Execute(func() (any, error) {
		r, err := s.sys.ScreenCapture(ctx, target, opts)
		result = r
		return nil, err
	})
	if err != nil {
		if err == cb.ErrOpenState || err == cb.ErrTooManyRequests {
			return nil, apierror.Wrap(codes.Internal, apierror.ReasonAdapterFailure,
				"screenshot adapter circuit breaker open", err, nil)
		}
		return nil, apierror.Wrap(codes.Internal, apierror.ReasonAdapterFailure,
			"screen capture failed", err, nil)
	}

	return &uiautomationpb.CaptureScreenshotResponse{
		ImageBytes: result.ImageBytes,
		Width:      result.Width,
		Height:     result.Height,
		OCRText:    result.OCRText,
	}, nil
}

func (s *Service) resolveTarget(req *uiautomationpb.CaptureScreenshotRequest) (platform.CaptureTarget, error) {
	if req.Padding < 0 {
		return platform.CaptureTarget{}, apierror.New(codes.InvalidArgument, apierror.ReasonInvalidDimension,
			"padding must be non-negative", map[string]string{"padding": floatStr(req.Padding)})
	}

	if req.Region != nil {
		r := req.Region
		if !finitePositive(r.W) || !finitePositive(r.H) || !finite(r.X) || !finite(r.Y) {
			return platform.CaptureTarget{}, apierror.New(codes.InvalidArgument, apierror.ReasonInvalidDimension,
				"region dimensions must be finite and positive", nil)
		}
		return platform.CaptureTarget{
			Region:  &platform.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H},
			Padding: req.Padding,
		}, nil
	}

	if req.ElementID != "" {
		el, err := s.elements.Get(req.ElementID)
		if err != nil {
			return platform.CaptureTarget{}, err
		}
		if el.Bounds == nil {
			return platform.CaptureTarget{}, apierror.New(codes.FailedPrecondition, apierror.ReasonElementNoBounds,
				"element has no bounds", map[string]string{"elementId": req.ElementID})
		}
		return platform.CaptureTarget{ElementID: req.ElementID, Padding: req.Padding}, nil
	}

	if req.Window != "" {
		return platform.CaptureTarget{WindowName: req.Window, Padding: req.Padding}, nil
	}

	if req.DisplayID == "" {
		return platform.CaptureTarget{AllDisplays: true}, nil
	}
	return platform.CaptureTarget{DisplayID: req.DisplayID}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finitePositive(v float64) bool {
	return finite(v) && v > 0
}

func floatStr(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
