// Package main is the entry point for the desktop automation gRPC server.
// It wires every registry and service into internal/grpcserver, then serves
// the primary resource service and google.longrunning.Operations over
// either TCP or a Unix domain socket per spec §6.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"cloud.google.com/go/longrunning/autogen/longrunningpb"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/internal/config"
	"github.com/nmxmxh/desktop-automation-service/internal/grpcserver"
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
	"github.com/nmxmxh/desktop-automation-service/pkg/logger"
	"github.com/nmxmxh/desktop-automation-service/pkg/metrics"
	"github.com/nmxmxh/desktop-automation-service/pkg/tracing"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Config{
		Environment: cfg.Environment,
		LogLevel:    cfg.LogLevel,
		ServiceName: cfg.ServiceName,
	})
	defer func() {
		if err := log.Sync(); err != nil {
			log.Warn("failed to sync logger", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var statsHandler grpc.ServerOption
	if !cfg.OTelDisabled {
		tracingCfg := tracing.DefaultConfig()
		tracingCfg.ServiceName = cfg.ServiceName
		tracingCfg.Environment = cfg.Environment
		tp, shutdownTracing, err := tracing.Init(tracingCfg)
		if err != nil {
			log.Warn("failed to initialize tracing, continuing without it", zap.Error(err))
		} else {
			otel.SetTracerProvider(tp)
			defer func() {
				if err := shutdownTracing(context.Background()); err != nil {
					log.Warn("failed to shutdown tracing", zap.Error(err))
				}
			}()
			statsHandler = grpc.StatsHandler(otelgrpc.NewServerHandler())
		}
	}

	lis, err := listen(cfg)
	if err != nil {
		log.Fatal("failed to listen", zap.Error(err))
	}

	var opts []grpc.ServerOption
	var unaryInterceptors []grpc.UnaryServerInterceptor
	if statsHandler != nil {
		opts = append(opts, statsHandler)
		unaryInterceptors = append(unaryInterceptors, otelgrpc.UnaryServerInterceptor())
	}
	unaryInterceptors = append(unaryInterceptors, grpcserver.MetricsInterceptor(), grpcserver.LoggingInterceptor(log))
	opts = append(opts, grpc.ChainUnaryInterceptor(unaryInterceptors...))

	metrics.Init()

	server := grpc.NewServer(opts...)

	deps := buildDeps(log)
	defer deps.element.Stop()
	defer deps.sessions.Stop()

	uiautomationpb.RegisterUIAutomationServiceServer(server, grpcserver.New(deps.serverDeps))
	longrunningpb.RegisterOperationsServer(server, grpcserver.NewOperationsServer(deps.serverDeps.Operations))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)

	// Reflection requires bundled descriptor-set files per spec §6; none are
	// bundled in this hand-modeled api/uiautomationpb (see its package doc),
	// so registration is skipped and logged, not fatal.
	log.Info("gRPC server-reflection skipped: no descriptor-set files bundled")

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(":"+cfg.MetricsPort, mux); err != nil {
			log.Warn("metrics server exited", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		log.Info("received shutdown signal")
		server.GracefulStop()
		healthServer.Shutdown()
		log.Info("server stopped gracefully")
	}()

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	log.Info("starting gRPC server", zap.String("environment", cfg.Environment))
	if err := server.Serve(lis); err != nil {
		log.Fatal("failed to serve", zap.Error(err))
	}
}

// listen opens the configured transport: a Unix domain socket (stale file
// unlinked, umask 0177 before creation, mode 0600 after a settling wait) if
// GRPC_UNIX_SOCKET is set, otherwise TCP on ListenAddress:Port (spec §6).
func listen(cfg config.Config) (net.Listener, error) {
	if cfg.UnixSocket != "" {
		if err := os.Remove(cfg.UnixSocket); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing stale unix socket: %w", err)
		}
		oldUmask := syscall.Umask(0o177)
		lis, err := net.Listen("unix", cfg.UnixSocket)
		syscall.Umask(oldUmask)
		if err != nil {
			return nil, err
		}
		time.Sleep(100 * time.Millisecond)
		if err := os.Chmod(cfg.UnixSocket, 0o600); err != nil {
			return nil, fmt.Errorf("setting unix socket mode: %w", err)
		}
		return lis, nil
	}
	return net.Listen("tcp", cfg.ListenAddress+":"+cfg.Port)
}

// deps bundles every constructed component plus the two with their own
// background reaper (element registry, session manager) so main can stop
// them on shutdown.
type deps struct {
	serverDeps grpcserver.Deps
	element    *element.Registry
	sessions   *session.Manager
}

// buildDeps constructs every registry/service in the dependency order spec
// §9 prescribes (platform adapter -> registries -> managers -> services),
// wiring the Unimplemented platform stub (see internal/platform) as the
// default SystemOperations.
func buildDeps(log *zap.Logger) deps {
	var sys platform.SystemOperations = platform.Unimplemented{}

	elements := element.New(log)
	windows := window.New(sys, log)
	apps := application.New(log)
	ops := operation.New(log)

	windowSvc := windowsvc.New(windows, sys, log)
	observations := observation.New(sys, ops, log)
	macros := macro.New(log)
	macroExec := macro.NewExecutor(sys, elements, windows, log)
	sessions := session.New(log)
	clip := clipboard.New(sys)
	shots := screenshot.New(sys, elements, log)
	scripts := script.New(sys, log)
	dialogs := filedialog.New(sys, elements, log)

	return deps{
		serverDeps: grpcserver.Deps{
			Sys:          sys,
			Apps:         apps,
			Windows:      windows,
			Elements:     elements,
			Operations:   ops,
			WindowSvc:    windowSvc,
			Observations: observations,
			Macros:       macros,
			MacroExec:    macroExec,
			Sessions:     sessions,
			Clipboard:    clip,
			Screenshots:  shots,
			Scripts:      scripts,
			FileDialogs:  dialogs,
			Log:          log,
		},
		element:  elements,
		sessions: sessions,
	}
}
