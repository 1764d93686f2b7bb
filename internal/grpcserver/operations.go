package grpcserver

import (
	"context"

	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/nmxmxh/desktop-automation-service/internal/registry/operation"
)

// OperationsServer implements the standard google.longrunning.Operations
// service (spec §1) over the same operation.Store the rest of the server
// delegates to, so LROs created by OpenApplication/CreateObservation/
// ExecuteMacro are pollable through the standard surface instead of a
// bespoke one.
type OperationsServer struct {
	longrunningpb.UnimplementedOperationsServer
	Store *operation.Store
}

func NewOperationsServer(store *operation.Store) *OperationsServer {
	return &OperationsServer{Store: store}
}

func (o *OperationsServer) GetOperation(ctx context.Context, req *longrunningpb.GetOperationRequest) (*longrunningpb.Operation, error) {
	op, err := o.Store.Get(req.GetName())
	if err != nil {
		return nil, operation.ToGRPCStatusError(err)
	}
	return op, nil
}

func (o *OperationsServer) ListOperations(ctx context.Context, req *longrunningpb.ListOperationsRequest) (*longrunningpb.ListOperationsResponse, error) {
	ops, next, err := o.Store.List(req.GetName(), false, int(req.GetPageSize()), req.GetPageToken())
	if err != nil {
		return nil, operation.ToGRPCStatusError(err)
	}
	return &longrunningpb.ListOperationsResponse{Operations: ops, NextPageToken: next}, nil
}

func (o *OperationsServer) DeleteOperation(ctx context.Context, req *longrunningpb.DeleteOperationRequest) (*emptypb.Empty, error) {
	if err := o.Store.Delete(req.GetName()); err != nil {
		return nil, operation.ToGRPCStatusError(err)
	}
	return &emptypb.Empty{}, nil
}

func (o *OperationsServer) CancelOperation(ctx context.Context, req *longrunningpb.CancelOperationRequest) (*emptypb.Empty, error) {
	if err := o.Store.Cancel(req.GetName()); err != nil {
		return nil, operation.ToGRPCStatusError(err)
	}
	return &emptypb.Empty{}, nil
}

func (o *OperationsServer) WaitOperation(ctx context.Context, req *longrunningpb.WaitOperationRequest) (*longrunningpb.Operation, error) {
	op, err := o.Store.Wait(ctx, req.GetName(), req.GetTimeout().AsDuration())
	if err != nil {
		return nil, operation.ToGRPCStatusError(err)
	}
	return op, nil
}
