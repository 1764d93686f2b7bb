package platform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
)

func TestUnimplemented_ReturnsUnimplementedErrors(t *testing.T) {
	u := Unimplemented{}
	ctx := context.Background()

	_, _, err := u.OpenApplication(ctx, "com.example.app")
	assertUnimplemented(t, err)

	err = u.CloseApplication(ctx, 1)
	assertUnimplemented(t, err)

	_, err = u.ListWindows(ctx, 1)
	assertUnimplemented(t, err)

	_, err = u.ReadClipboard(ctx)
	assertUnimplemented(t, err)

	_, err = u.ScreenCapture(ctx, CaptureTarget{}, CaptureOptions{})
	assertUnimplemented(t, err)
}

func TestUnimplemented_BooleanQueriesDefaultFalse(t *testing.T) {
	u := Unimplemented{}
	ctx := context.Background()

	assert.False(t, u.IsApplicationRunning(ctx, 1))
	assert.False(t, u.HasAccessibilityPermission(ctx))
	assert.Empty(t, u.ActiveApplicationName(ctx))
}

func assertUnimplemented(t *testing.T, err error) {
	t.Helper()
	assert.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.ReasonAdapterFailure))

	grpcErr := apierror.ToGRPCError(err)
	st, ok := status.FromError(grpcErr)
	assert.True(t, ok)
	assert.Equal(t, codes.Unimplemented, st.Code())
}
