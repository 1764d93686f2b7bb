package apierror

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestNew(t *testing.T) {
	err := New(codes.NotFound, ReasonApplicationNotFound, "application not found", map[string]string{"pid": "1"})

	assert.Equal(t, codes.NotFound, err.Code)
	assert.Equal(t, ReasonApplicationNotFound, err.Reason)
	assert.Equal(t, "application not found", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestWrap(t *testing.T) {
	cause := assert.AnError
	err := Wrap(codes.Internal, ReasonAdapterFailure, "adapter failed", cause, nil)

	assert.Equal(t, cause, err.Unwrap())
	assert.Contains(t, err.Error(), "adapter failed")
	assert.Contains(t, err.Error(), cause.Error())
}

func TestIs(t *testing.T) {
	err := New(codes.NotFound, ReasonWindowNotFound, "window not found", nil)

	assert.True(t, Is(err, ReasonWindowNotFound))
	assert.False(t, Is(err, ReasonApplicationNotFound))
	assert.False(t, Is(assert.AnError, ReasonWindowNotFound))
}

func TestToGRPCError(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Nil(t, ToGRPCError(nil))
	})

	t.Run("structured error carries ErrorInfo detail", func(t *testing.T) {
		src := New(codes.NotFound, ReasonMacroNotFound, "macro not found", map[string]string{"name": "macros/1"})

		grpcErr := ToGRPCError(src)
		require.Error(t, grpcErr)

		st, ok := status.FromError(grpcErr)
		require.True(t, ok)
		assert.Equal(t, codes.NotFound, st.Code())
		require.Len(t, st.Details(), 1)
	})

	t.Run("non-structured error maps to Internal", func(t *testing.T) {
		grpcErr := ToGRPCError(assert.AnError)

		st, ok := status.FromError(grpcErr)
		require.True(t, ok)
		assert.Equal(t, codes.Internal, st.Code())
	})
}

func TestToRPCStatus(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Nil(t, ToRPCStatus(nil))
	})

	t.Run("carries code and message", func(t *testing.T) {
		src := New(codes.Aborted, ReasonTransactionMismatch, "transaction mismatch", nil)

		rpcStatus := ToRPCStatus(src)
		require.NotNil(t, rpcStatus)
		assert.Equal(t, int32(codes.Aborted), rpcStatus.Code)
		assert.Equal(t, "transaction mismatch", rpcStatus.Message)
	})
}
