package operation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
)

func TestCreateAndGet(t *testing.T) {
	s := New(zap.NewNop())

	name, err := s.Create("application_open", map[string]string{"bundleId": "com.example.app"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "operations/application_open/"))

	op, err := s.Get(name)
	require.NoError(t, err)
	assert.Equal(t, name, op.GetName())
	assert.False(t, op.GetDone())
	assert.NotNil(t, op.GetMetadata())
}

func TestGet_NotFound(t *testing.T) {
	s := New(zap.NewNop())

	_, err := s.Get("operations/missing/xyz")
	assert.Error(t, err)
}

func TestFinish(t *testing.T) {
	s := New(zap.NewNop())
	name, err := s.Create("macro_execution", nil)
	require.NoError(t, err)

	err = s.Finish(name, map[string]any{"actionsRun": 3})
	require.NoError(t, err)

	op, err := s.Get(name)
	require.NoError(t, err)
	assert.True(t, op.GetDone())
	require.NotNil(t, op.GetResponse())
}

func TestFail(t *testing.T) {
	s := New(zap.NewNop())
	name, err := s.Create("macro_execution", nil)
	require.NoError(t, err)

	err = s.Fail(name, codes.Aborted, "macro failed")
	require.NoError(t, err)

	op, err := s.Get(name)
	require.NoError(t, err)
	assert.True(t, op.GetDone())
	require.NotNil(t, op.GetError())
	assert.Equal(t, int32(codes.Aborted), op.GetError().GetCode())
}

func TestCancel(t *testing.T) {
	s := New(zap.NewNop())
	name, err := s.Create("observation_stream", nil)
	require.NoError(t, err)

	require.NoError(t, s.Cancel(name))

	op, err := s.Get(name)
	require.NoError(t, err)
	assert.True(t, op.GetDone())
	assert.Equal(t, int32(codes.Cancelled), op.GetError().GetCode())
}

func TestDelete(t *testing.T) {
	s := New(zap.NewNop())
	name, err := s.Create("macro_execution", nil)
	require.NoError(t, err)

	require.NoError(t, s.Delete(name))

	_, err = s.Get(name)
	assert.Error(t, err)

	err = s.Delete(name)
	assert.Error(t, err, "deleting an already-deleted operation should error")
}

func TestWait_ReturnsImmediatelyWhenAlreadyDone(t *testing.T) {
	s := New(zap.NewNop())
	name, err := s.Create("macro_execution", nil)
	require.NoError(t, err)
	require.NoError(t, s.Finish(name, nil))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	op, err := s.Wait(ctx, name, 0)
	require.NoError(t, err)
	assert.True(t, op.GetDone())
}

func TestWait_TimesOutStillPending(t *testing.T) {
	s := New(zap.NewNop())
	name, err := s.Create("macro_execution", nil)
	require.NoError(t, err)

	ctx := context.Background()
	op, err := s.Wait(ctx, name, 150*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, op.GetDone())
}

func TestWait_ObservesCompletionDuringPoll(t *testing.T) {
	s := New(zap.NewNop())
	name, err := s.Create("macro_execution", nil)
	require.NoError(t, err)

	go func() {
		time.Sleep(150 * time.Millisecond)
		_ = s.Finish(name, nil)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	op, err := s.Wait(ctx, name, 0)
	require.NoError(t, err)
	assert.True(t, op.GetDone())
}

func TestList_FiltersAndPaginates(t *testing.T) {
	s := New(zap.NewNop())
	for i := 0; i < 5; i++ {
		_, err := s.Create("macro_execution", nil)
		require.NoError(t, err)
	}
	doneName, err := s.Create("application_open", nil)
	require.NoError(t, err)
	require.NoError(t, s.Finish(doneName, nil))

	ops, next, err := s.List("", false, 3, "")
	require.NoError(t, err)
	assert.Len(t, ops, 3)
	assert.NotEmpty(t, next)

	onlyDone, _, err := s.List("", true, 10, "")
	require.NoError(t, err)
	assert.Len(t, onlyDone, 1)

	onlyPrefix, _, err := s.List("operations/application_open", false, 10, "")
	require.NoError(t, err)
	assert.Len(t, onlyPrefix, 1)
}

func TestToGRPCStatusError(t *testing.T) {
	assert.Nil(t, ToGRPCStatusError(nil))

	s := New(zap.NewNop())
	_, err := s.Get("operations/missing/abc")
	grpcErr := ToGRPCStatusError(err)
	assert.Error(t, grpcErr)
}
