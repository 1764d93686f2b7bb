package grpcserver

import (
	"context"
	"testing"

	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nmxmxh/desktop-automation-service/internal/registry/operation"
)

func newTestOperationsServer() (*OperationsServer, *operation.Store) {
	store := operation.New(zap.NewNop())
	return NewOperationsServer(store), store
}

func TestOperationsServer_GetOperation(t *testing.T) {
	o, store := newTestOperationsServer()
	name, err := store.Create("application", nil)
	require.NoError(t, err)

	op, err := o.GetOperation(context.Background(), &longrunningpb.GetOperationRequest{Name: name})
	require.NoError(t, err)
	assert.Equal(t, name, op.GetName())
}

func TestOperationsServer_GetOperation_NotFound(t *testing.T) {
	o, _ := newTestOperationsServer()

	_, err := o.GetOperation(context.Background(), &longrunningpb.GetOperationRequest{Name: "operations/missing/1"})
	assert.Error(t, err)
}

func TestOperationsServer_ListOperations(t *testing.T) {
	o, store := newTestOperationsServer()
	_, err := store.Create("application", nil)
	require.NoError(t, err)
	_, err = store.Create("application", nil)
	require.NoError(t, err)

	resp, err := o.ListOperations(context.Background(), &longrunningpb.ListOperationsRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Operations, 2)
}

func TestOperationsServer_CancelOperation(t *testing.T) {
	o, store := newTestOperationsServer()
	name, err := store.Create("application", nil)
	require.NoError(t, err)

	_, err = o.CancelOperation(context.Background(), &longrunningpb.CancelOperationRequest{Name: name})
	require.NoError(t, err)

	op, err := store.Get(name)
	require.NoError(t, err)
	assert.True(t, op.GetDone())
}

func TestOperationsServer_DeleteOperation(t *testing.T) {
	o, store := newTestOperationsServer()
	name, err := store.Create("application", nil)
	require.NoError(t, err)

	_, err = o.DeleteOperation(context.Background(), &longrunningpb.DeleteOperationRequest{Name: name})
	require.NoError(t, err)

	_, err = store.Get(name)
	assert.Error(t, err)
}

func TestOperationsServer_WaitOperation_NilTimeout(t *testing.T) {
	o, store := newTestOperationsServer()
	name, err := store.Create("application", nil)
	require.NoError(t, err)
	require.NoError(t, store.Finish(name, nil))

	op, err := o.WaitOperation(context.Background(), &longrunningpb.WaitOperationRequest{Name: name})
	require.NoError(t, err)
	assert.True(t, op.GetDone())
}
