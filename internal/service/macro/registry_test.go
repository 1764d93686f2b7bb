package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
)

func TestCreate_GeneratesName(t *testing.T) {
	r := New(zap.NewNop())
	m := r.Create(&uiautomationpb.Macro{DisplayName: "Save"})
	assert.NotEmpty(t, m.Name)
	assert.NotZero(t, m.CreateTime)
}

func TestGet_NotFound(t *testing.T) {
	r := New(zap.NewNop())
	_, err := r.Get("macros/missing")
	assert.Error(t, err)
}

func TestList_SortedAndPaged(t *testing.T) {
	r := New(zap.NewNop())
	r.Create(&uiautomationpb.Macro{Name: "macros/b"})
	r.Create(&uiautomationpb.Macro{Name: "macros/a"})

	page, next, err := r.List(1, "")
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "macros/a", page[0].Name)
	assert.NotEmpty(t, next)
}

func TestUpdate_FullReplace(t *testing.T) {
	r := New(zap.NewNop())
	m := r.Create(&uiautomationpb.Macro{Name: "macros/1", DisplayName: "Old"})
	r.IncrementExecutionCount(m.Name)

	updated := &uiautomationpb.Macro{Name: "macros/1", DisplayName: "New"}
	got, err := r.Update(updated, nil)
	require.NoError(t, err)
	assert.Equal(t, "New", got.DisplayName)
	assert.Equal(t, int64(1), got.ExecutionCount, "execution count survives a full replace")
}

func TestUpdate_MaskedOnlyTouchesListedFields(t *testing.T) {
	r := New(zap.NewNop())
	r.Create(&uiautomationpb.Macro{Name: "macros/1", DisplayName: "Old", Description: "desc"})

	updated := &uiautomationpb.Macro{Name: "macros/1", DisplayName: "New", Description: "ignored"}
	got, err := r.Update(updated, []string{"displayName"})
	require.NoError(t, err)
	assert.Equal(t, "New", got.DisplayName)
	assert.Equal(t, "desc", got.Description)
}

func TestUpdate_RejectsImmutableField(t *testing.T) {
	r := New(zap.NewNop())
	r.Create(&uiautomationpb.Macro{Name: "macros/1"})

	_, err := r.Update(&uiautomationpb.Macro{Name: "macros/1"}, []string{"executionCount"})
	assert.Error(t, err)
}

func TestUpdate_NotFound(t *testing.T) {
	r := New(zap.NewNop())
	_, err := r.Update(&uiautomationpb.Macro{Name: "macros/missing"}, nil)
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	r := New(zap.NewNop())
	r.Create(&uiautomationpb.Macro{Name: "macros/1"})

	require.NoError(t, r.Delete("macros/1"))
	assert.Error(t, r.Delete("macros/1"))
}

func TestIncrementExecutionCount_UnknownIsNoop(t *testing.T) {
	r := New(zap.NewNop())
	assert.NotPanics(t, func() { r.IncrementExecutionCount("macros/missing") })
}
