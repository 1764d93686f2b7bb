package fieldmask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyReadMask(t *testing.T) {
	full := map[string]any{
		"name":        "applications/1",
		"displayName": "TextEdit",
		"pid":         1,
	}

	t.Run("empty mask returns everything", func(t *testing.T) {
		out := ApplyReadMask(full, nil, "name")
		assert.Equal(t, full, out)
	})

	t.Run("wildcard returns everything", func(t *testing.T) {
		out := ApplyReadMask(full, []string{"*"}, "name")
		assert.Equal(t, full, out)
	})

	t.Run("filters to requested fields, always keeping identifier", func(t *testing.T) {
		out := ApplyReadMask(full, []string{"displayName"}, "name")
		assert.Equal(t, map[string]any{"name": "applications/1", "displayName": "TextEdit"}, out)
	})

	t.Run("unknown paths are ignored", func(t *testing.T) {
		out := ApplyReadMask(full, []string{"bogus"}, "name")
		assert.Equal(t, map[string]any{"name": "applications/1"}, out)
	})
}

func TestValidateUpdateMask(t *testing.T) {
	mutable := map[string]bool{"displayName": true, "tags": true}

	assert.NoError(t, ValidateUpdateMask([]string{"displayName"}, mutable))
	assert.NoError(t, ValidateUpdateMask(nil, mutable))

	err := ValidateUpdateMask([]string{"pid"}, mutable)
	require.Error(t, err)
}

func TestApplyUpdate(t *testing.T) {
	target := map[string]any{"displayName": "Old", "tags": []string{"a"}, "pid": 1}
	allFields := []string{"displayName", "tags"}

	t.Run("empty mask replaces all allFields, clearing absent ones", func(t *testing.T) {
		updates := map[string]any{"displayName": "New"}
		out := ApplyUpdate(target, updates, nil, allFields)
		assert.Equal(t, "New", out["displayName"])
		_, hasTags := out["tags"]
		assert.False(t, hasTags, "tags absent from updates should be cleared on full replace")
		assert.Equal(t, 1, out["pid"], "fields outside allFields are untouched")
	})

	t.Run("masked update only touches listed paths", func(t *testing.T) {
		updates := map[string]any{"displayName": "New"}
		out := ApplyUpdate(target, updates, []string{"displayName"}, allFields)
		assert.Equal(t, "New", out["displayName"])
		assert.Equal(t, []string{"a"}, out["tags"], "tags not in mask should be untouched")
	})
}
