// Package script implements the script executor and safety filter described
// in spec §4.12: a denylist preflight, then dispatch to the platform
// adapter's compile/execute/shell primitives for AppleScript, JXA, and
// shell. The denylist is defensive-only, not a sandbox.
package script

import (
	"context"
	"strings"
	"time"

	cb "github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/internal/platform"
	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
	"google.golang.org/grpc/codes"
)

// denylist holds the case-insensitive substrings that reject a script
// synchronously with a security-violation error (§4.12).
var denylist = []string{"rm -rf /", "sudo"}

// Service orchestrates script compile/execute/validate calls.
type Service struct {
	sys     platform.SystemOperations
	breaker *cb.CircuitBreaker
	log     *zap.Logger
}

func New(sys platform.SystemOperations, log *zap.Logger) *Service {
	breaker := cb.NewCircuitBreaker(cb.Settings{
		Name:        "ScriptAdapterCB",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts cb.Counts) bool { return counts.ConsecutiveFailures > 5 },
		OnStateChange: func(name string, from, to cb.State) {
			if log != nil {
				log.Warn("script adapter circuit breaker state change",
					zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
			}
		},
	})
	return &Service{sys: sys, breaker: breaker, log: log}
}

// checkDenylist rejects source containing any denylisted substring,
// case-insensitively.
func checkDenylist(source string) error {
	lower := strings.ToLower(source)
	for _, d := range denylist {
		if strings.Contains(lower, d) {
			return apierror.New(codes.InvalidArgument, apierror.ReasonSecurityViolation,
				"script contains a denylisted pattern", map[string]string{"pattern": d})
		}
	}
	return nil
}

// Execute runs req.Source per its Kind, honoring CompileOnly for
// AppleScript/JXA. Shell always executes (there is no shell compile-only
// mode; ValidateScript is the syntactic-acceptance path for shell).
func (s *Service) Execute(ctx context.Context, req *uiautomationpb.ExecuteScriptRequest) (*uiautomationpb.ExecuteScriptResponse, error) {
	if err := checkDenylist(req.Source); err != nil {
		return nil, err
	}
	kind := platform.ScriptKind(req.Kind)

	if kind != platform.ScriptShell && req.CompileOnly {
		result, err := s.guarded(func() (platform.ScriptResult, error) {
			return s.sys.CompileScript(ctx, kind, req.Source)
		})
		if err != nil {
			return nil, err
		}
		if result.Success && result.Output == "" {
			result.Output = "Script compiled successfully"
		}
		return toResponse(result), nil
	}

	if kind == platform.ScriptShell {
		opts := platform.ShellExecOptions{}
		if req.ShellOpts != nil {
			opts = platform.ShellExecOptions{
				WorkingDir: req.ShellOpts.WorkingDir,
				Env:        req.ShellOpts.Env,
				Stdin:      req.ShellOpts.Stdin,
				Path:       req.ShellOpts.Path,
				Timeout:    req.ShellOpts.Timeout,
			}
		}
		result, err := s.guarded(func() (platform.ScriptResult, error) {
			return s.sys.ExecuteShell(ctx, req.Source, opts)
		})
		if err != nil {
			return nil, err
		}
		return toResponse(result), nil
	}

	result, err := s.guarded(func() (platform.ScriptResult, error) {
		return s.sys.ExecuteScript(ctx, kind, req.Source)
	})
	if err != nil {
		return nil, err
	}
	return toResponse(result), nil
}

// Validate attempts compilation without execution. Shell scripts have no
// compiler, so they're syntactically accepted iff non-empty (§4.12).
func (s *Service) Validate(ctx context.Context, req *uiautomationpb.ValidateScriptRequest) (*uiautomationpb.ValidateScriptResponse, error) {
	if err := checkDenylist(req.Source); err != nil {
		return nil, err
	}
	kind := platform.ScriptKind(req.Kind)
	if kind == platform.ScriptShell {
		if strings.TrimSpace(req.Source) == "" {
			return &uiautomationpb.ValidateScriptResponse{Valid: false, Message: "empty shell command"}, nil
		}
		return &uiautomationpb.ValidateScriptResponse{Valid: true}, nil
	}
	result, err := s.guarded(func() (platform.ScriptResult, error) {
		return s.sys.CompileScript(ctx, kind, req.Source)
	})
	if err != nil {
		return &uiautomationpb.ValidateScriptResponse{Valid: false, Message: err.Error()}, nil
	}
	msg := result.Output
	if msg == "" && result.Success {
		msg = "Script compiled successfully"
	}
	return &uiautomationpb.ValidateScriptResponse{Valid: result.Success, Message: msg}, nil
}

func (s *Service) guarded(fn func() (platform.ScriptResult, error)) (platform.ScriptResult, error) {
	v, err := s.breaker.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		if err == cb.ErrOpenState || err == cb.ErrTooManyRequests {
			return platform.ScriptResult{}, apierror.Wrap(codes.Internal, apierror.ReasonAdapterFailure,
				"script adapter circuit breaker open", err, nil)
		}
		return platform.ScriptResult{}, apierror.Wrap(codes.Internal, apierror.ReasonAdapterFailure,
			"script execution failed", err, nil)
	}
	return v.(platform.ScriptResult), nil
}

func toResponse(r platform.ScriptResult) *uiautomationpb.ExecuteScriptResponse {
	return &uiautomationpb.ExecuteScriptResponse{
		Success:  r.Success,
		Output:   r.Output,
		Stdout:   r.Stdout,
		Stderr:   r.Stderr,
		ExitCode: r.ExitCode,
		Duration: r.Duration,
	}
}
