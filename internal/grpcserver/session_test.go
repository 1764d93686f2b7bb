package grpcserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
)

func TestCreateAndGetSession(t *testing.T) {
	s := newTestServer(t)

	created, err := s.CreateSession(context.Background(), &uiautomationpb.CreateSessionRequest{
		Metadata: map[string]string{"client": "test"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.Name)

	got, err := s.GetSession(context.Background(), &uiautomationpb.GetSessionRequest{Name: created.Name})
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
}

func TestDeleteSession(t *testing.T) {
	s := newTestServer(t)
	created, err := s.CreateSession(context.Background(), &uiautomationpb.CreateSessionRequest{})
	require.NoError(t, err)

	_, err = s.DeleteSession(context.Background(), &uiautomationpb.DeleteSessionRequest{Name: created.Name})
	require.NoError(t, err)

	_, err = s.GetSession(context.Background(), &uiautomationpb.GetSessionRequest{Name: created.Name})
	assert.Error(t, err)
}

func TestBeginCommitTransaction(t *testing.T) {
	s := newTestServer(t)
	sess, err := s.CreateSession(context.Background(), &uiautomationpb.CreateSessionRequest{})
	require.NoError(t, err)

	tx, err := s.BeginTransaction(context.Background(), &uiautomationpb.BeginTransactionRequest{
		Session:   sess.Name,
		Isolation: uiautomationpb.ReadCommitted,
	})
	require.NoError(t, err)
	require.NotEmpty(t, tx.ID)

	committed, err := s.CommitTransaction(context.Background(), &uiautomationpb.CommitTransactionRequest{
		Session:       sess.Name,
		TransactionID: tx.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, tx.ID, committed.ID)
}

func TestBeginTransaction_UnknownSession(t *testing.T) {
	s := newTestServer(t)

	_, err := s.BeginTransaction(context.Background(), &uiautomationpb.BeginTransactionRequest{Session: "sessions/missing"})
	assert.Error(t, err)
}

func TestRecordOperation_UnknownSessionIsNotAnError(t *testing.T) {
	s := newTestServer(t)

	_, err := s.RecordOperation(context.Background(), &uiautomationpb.RecordOperationRequest{
		Session:  "sessions/missing",
		Type:     "CloseWindow",
		Resource: "applications/1/windows/1",
		Success:  true,
	})
	assert.NoError(t, err, "RecordOperation is best-effort bookkeeping and never fails the caller")
}

func TestListSessions(t *testing.T) {
	s := newTestServer(t)
	_, err := s.CreateSession(context.Background(), &uiautomationpb.CreateSessionRequest{})
	require.NoError(t, err)

	resp, err := s.ListSessions(context.Background(), &uiautomationpb.ListSessionsRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Sessions, 1)
}
