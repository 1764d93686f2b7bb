package uiautomationpb

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully-qualified gRPC service name, matching the
// convention of generated FullMethodName constants in real protoc-gen-go-grpc
// output (see e.g. AIService_ProcessContent_FullMethodName in generated
// code).
const ServiceName = "uiautomation.v1.UIAutomationService"

// RegisterUIAutomationServiceServer registers srv's handlers on s. This
// stands in for the protoc-gen-go-grpc-generated registration function; wire
// encoding itself is out of scope for this service (spec §1), so unaryHandler
// below plays the role each generated _ServiceName_Method_Handler function
// normally would.
func RegisterUIAutomationServiceServer(s grpc.ServiceRegistrar, srv UIAutomationServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// unaryHandler builds a grpc.MethodDesc.Handler for a single RPC, decoding
// into a fresh *Req, and invoking call through any configured interceptor —
// identical in shape to what protoc-gen-go-grpc emits per method, just
// parameterized over the request/response types instead of duplicated by
// hand for each one.
func unaryHandler[Req, Resp any](name string, call func(UIAutomationServiceServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		typed := srv.(UIAutomationServiceServer)
		if interceptor == nil {
			return call(typed, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(typed, ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func method[Req, Resp any](name string, call func(UIAutomationServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{MethodName: name, Handler: unaryHandler(name, call)}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UIAutomationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method("OpenApplication", UIAutomationServiceServer.OpenApplication),
		method("CloseApplication", UIAutomationServiceServer.CloseApplication),
		method("GetApplication", UIAutomationServiceServer.GetApplication),
		method("ListApplications", UIAutomationServiceServer.ListApplications),
		method("GetWindow", UIAutomationServiceServer.GetWindow),
		method("ListWindows", UIAutomationServiceServer.ListWindows),
		method("GetWindowState", UIAutomationServiceServer.GetWindowState),
		method("MoveWindow", UIAutomationServiceServer.MoveWindow),
		method("ResizeWindow", UIAutomationServiceServer.ResizeWindow),
		method("MinimizeWindow", UIAutomationServiceServer.MinimizeWindow),
		method("RestoreWindow", UIAutomationServiceServer.RestoreWindow),
		method("CloseWindow", UIAutomationServiceServer.CloseWindow),
		method("GetDisplay", UIAutomationServiceServer.GetDisplay),
		method("ListDisplays", UIAutomationServiceServer.ListDisplays),
		method("CreateInput", UIAutomationServiceServer.CreateInput),
		method("GetInput", UIAutomationServiceServer.GetInput),
		method("ListInputs", UIAutomationServiceServer.ListInputs),
		method("CreateObservation", UIAutomationServiceServer.CreateObservation),
		method("GetObservation", UIAutomationServiceServer.GetObservation),
		method("ListObservations", UIAutomationServiceServer.ListObservations),
		method("CancelObservation", UIAutomationServiceServer.CancelObservation),
		method("CreateMacro", UIAutomationServiceServer.CreateMacro),
		method("GetMacro", UIAutomationServiceServer.GetMacro),
		method("ListMacros", UIAutomationServiceServer.ListMacros),
		method("UpdateMacro", UIAutomationServiceServer.UpdateMacro),
		method("DeleteMacro", UIAutomationServiceServer.DeleteMacro),
		method("ExecuteMacro", UIAutomationServiceServer.ExecuteMacro),
		method("CreateSession", UIAutomationServiceServer.CreateSession),
		method("GetSession", UIAutomationServiceServer.GetSession),
		method("ListSessions", UIAutomationServiceServer.ListSessions),
		method("DeleteSession", UIAutomationServiceServer.DeleteSession),
		method("BeginTransaction", UIAutomationServiceServer.BeginTransaction),
		method("CommitTransaction", UIAutomationServiceServer.CommitTransaction),
		method("RollbackTransaction", UIAutomationServiceServer.RollbackTransaction),
		method("RecordOperation", UIAutomationServiceServer.RecordOperation),
		method("GetSessionSnapshot", UIAutomationServiceServer.GetSessionSnapshot),
		method("GetClipboard", UIAutomationServiceServer.GetClipboard),
		method("WriteClipboard", UIAutomationServiceServer.WriteClipboard),
		method("ClearClipboard", UIAutomationServiceServer.ClearClipboard),
		method("GetClipboardHistory", UIAutomationServiceServer.GetClipboardHistory),
		method("CaptureScreenshot", UIAutomationServiceServer.CaptureScreenshot),
		method("ExecuteScript", UIAutomationServiceServer.ExecuteScript),
		method("ValidateScript", UIAutomationServiceServer.ValidateScript),
		method("OpenFileDialog", UIAutomationServiceServer.OpenFileDialog),
		method("SaveFileDialog", UIAutomationServiceServer.SaveFileDialog),
		method("SelectFile", UIAutomationServiceServer.SelectFile),
		method("SelectDirectory", UIAutomationServiceServer.SelectDirectory),
		method("DragFiles", UIAutomationServiceServer.DragFiles),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamObservations",
			ServerStreams: true,
			Handler: func(srv any, stream grpc.ServerStream) error {
				req := new(StreamObservationsRequest)
				if err := stream.RecvMsg(req); err != nil {
					return err
				}
				return srv.(UIAutomationServiceServer).StreamObservations(req, &observationStream{stream})
			},
		},
	},
}

// observationStream adapts a raw grpc.ServerStream to
// grpc.ServerStreamingServer[ObservationEvent], matching the
// grpc.GenericServerStream pattern used by current protoc-gen-go-grpc output.
type observationStream struct{ grpc.ServerStream }

func (s *observationStream) Send(e *ObservationEvent) error { return s.SendMsg(e) }
