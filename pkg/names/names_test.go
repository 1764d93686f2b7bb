package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseApplicationName(t *testing.T) {
	t.Run("concrete pid", func(t *testing.T) {
		n, err := ParseApplicationName("applications/123")
		require.NoError(t, err)
		assert.Equal(t, 123, n.PID)
		assert.False(t, n.IsWildcard)
		assert.Equal(t, "applications/123", n.String())
	})

	t.Run("wildcard", func(t *testing.T) {
		n, err := ParseApplicationName("applications/-")
		require.NoError(t, err)
		assert.True(t, n.IsWildcard)
		assert.Equal(t, "applications/-", n.String())
	})

	t.Run("invalid shapes", func(t *testing.T) {
		for _, name := range []string{"applications", "applications/abc", "windows/1", "applications/123/extra"} {
			_, err := ParseApplicationName(name)
			assert.Errorf(t, err, "expected error for %q", name)
		}
	})
}

func TestParseWindowName(t *testing.T) {
	t.Run("base form", func(t *testing.T) {
		n, err := ParseWindowName("applications/1/windows/2")
		require.NoError(t, err)
		assert.Equal(t, 1, n.PID)
		assert.Equal(t, 2, n.WindowID)
		assert.False(t, n.State)
		assert.Equal(t, "applications/1/windows/2", n.String())
	})

	t.Run("state suffix", func(t *testing.T) {
		n, err := ParseWindowName("applications/1/windows/2/state")
		require.NoError(t, err)
		assert.True(t, n.State)
		assert.Equal(t, "applications/1/windows/2/state", n.String())
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseWindowName("applications/1/windows/abc")
		assert.Error(t, err)
	})
}

func TestParseChildName(t *testing.T) {
	t.Run("observations under a pid", func(t *testing.T) {
		n, err := ParseChildName("applications/1/observations/obs1", "observations")
		require.NoError(t, err)
		assert.Equal(t, 1, n.PID)
		assert.Equal(t, "obs1", n.ID)
		assert.Equal(t, "applications/1/observations/obs1", n.String())
	})

	t.Run("wildcard parent", func(t *testing.T) {
		n, err := ParseChildName("applications/-/elements/e1", "elements")
		require.NoError(t, err)
		assert.True(t, n.IsWildcard)
	})

	t.Run("desktopInputs variant", func(t *testing.T) {
		n, err := ParseChildName("desktopInputs/i1", "inputs")
		require.NoError(t, err)
		assert.Equal(t, "desktopInputs", n.Collection)
		assert.Equal(t, "i1", n.ID)
		assert.Equal(t, "desktopInputs/i1", n.String())
	})

	t.Run("empty id rejected", func(t *testing.T) {
		_, err := ParseChildName("applications/1/observations/", "observations")
		assert.Error(t, err)
	})

	t.Run("wrong collection rejected", func(t *testing.T) {
		_, err := ParseChildName("applications/1/elements/e1", "observations")
		assert.Error(t, err)
	})
}

func TestParseSimpleNames(t *testing.T) {
	id, err := ParseSessionName("sessions/abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	id, err = ParseMacroName("macros/def")
	require.NoError(t, err)
	assert.Equal(t, "def", id)

	id, err = ParseDisplayName("displays/1")
	require.NoError(t, err)
	assert.Equal(t, "1", id)

	_, err = ParseSessionName("macros/abc")
	assert.Error(t, err)

	_, err = ParseSessionName("sessions/")
	assert.Error(t, err)
}
