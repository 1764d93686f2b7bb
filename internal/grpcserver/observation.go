package grpcserver

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/pkg/names"
)

func (s *Server) CreateObservation(ctx context.Context, req *uiautomationpb.CreateObservationRequest) (*uiautomationpb.OperationHandle, error) {
	an, err := names.ParseApplicationName(req.Parent)
	if err != nil {
		return nil, err
	}
	opName, err := s.Observations.CreateObservation(ctx, an.PID, req.Type, req.Filter)
	if err != nil {
		return nil, err
	}
	return &uiautomationpb.OperationHandle{Name: opName}, nil
}

func (s *Server) GetObservation(ctx context.Context, req *uiautomationpb.GetObservationRequest) (*uiautomationpb.Observation, error) {
	return s.Observations.Get(req.Name)
}

func (s *Server) ListObservations(ctx context.Context, req *uiautomationpb.ListObservationsRequest) (*uiautomationpb.ListObservationsResponse, error) {
	obs, next, err := s.Observations.List(req.PageSize, req.PageToken)
	if err != nil {
		return nil, err
	}
	return &uiautomationpb.ListObservationsResponse{Observations: obs, NextPageToken: next}, nil
}

func (s *Server) CancelObservation(ctx context.Context, req *uiautomationpb.CancelObservationRequest) (*uiautomationpb.Observation, error) {
	return s.Observations.Cancel(req.Name)
}

// StreamObservations fans out an observation's event channel to the client
// until it's cancelled/closed or the stream's context ends.
func (s *Server) StreamObservations(req *uiautomationpb.StreamObservationsRequest, stream grpc.ServerStreamingServer[uiautomationpb.ObservationEvent]) error {
	ch, unsubscribe, err := s.Observations.Subscribe(req.Name)
	if err != nil {
		return err
	}
	defer unsubscribe()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if err := stream.Send(ev); err != nil {
				if s.Log != nil {
					s.Log.Warn("observation stream send failed", zap.String("name", req.Name), zap.Error(err))
				}
				return err
			}
		case <-stream.Context().Done():
			return stream.Context().Err()
		}
	}
}
