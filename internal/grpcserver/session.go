package grpcserver

import (
	"context"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
)

func (s *Server) CreateSession(ctx context.Context, req *uiautomationpb.CreateSessionRequest) (*uiautomationpb.Session, error) {
	return s.Sessions.Create(req.Metadata), nil
}

func (s *Server) GetSession(ctx context.Context, req *uiautomationpb.GetSessionRequest) (*uiautomationpb.Session, error) {
	return s.Sessions.Get(req.Name)
}

func (s *Server) ListSessions(ctx context.Context, req *uiautomationpb.ListSessionsRequest) (*uiautomationpb.ListSessionsResponse, error) {
	sessions, next, err := s.Sessions.List(req.PageSize, req.PageToken)
	if err != nil {
		return nil, err
	}
	return &uiautomationpb.ListSessionsResponse{Sessions: sessions, NextPageToken: next}, nil
}

func (s *Server) DeleteSession(ctx context.Context, req *uiautomationpb.DeleteSessionRequest) (*uiautomationpb.Empty, error) {
	if err := s.Sessions.Delete(req.Name); err != nil {
		return nil, err
	}
	return uiautomationpb.EmptyResponse, nil
}

func (s *Server) BeginTransaction(ctx context.Context, req *uiautomationpb.BeginTransactionRequest) (*uiautomationpb.Transaction, error) {
	return s.Sessions.BeginTransaction(req.Session, req.Isolation, req.Timeout)
}

func (s *Server) CommitTransaction(ctx context.Context, req *uiautomationpb.CommitTransactionRequest) (*uiautomationpb.Transaction, error) {
	return s.Sessions.CommitTransaction(req.Session, req.TransactionID)
}

func (s *Server) RollbackTransaction(ctx context.Context, req *uiautomationpb.RollbackTransactionRequest) (*uiautomationpb.Transaction, error) {
	return s.Sessions.RollbackTransaction(req.Session, req.TransactionID, req.RevisionID)
}

// RecordOperation is best-effort bookkeeping: a session that no longer
// exists (expired or deleted mid-flight) is not an error for the caller,
// since the caller's own mutating RPC already succeeded or failed on its own
// terms before asking us to log it.
func (s *Server) RecordOperation(ctx context.Context, req *uiautomationpb.RecordOperationRequest) (*uiautomationpb.Empty, error) {
	s.Sessions.RecordOperation(req.Session, req.Type, req.Resource, req.Success, req.Error)
	return uiautomationpb.EmptyResponse, nil
}

func (s *Server) GetSessionSnapshot(ctx context.Context, req *uiautomationpb.GetSessionSnapshotRequest) (*uiautomationpb.SessionSnapshot, error) {
	return s.Sessions.GetSessionSnapshot(req.Session)
}
