package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "data", "app.db"), ExpandPath("~/data/app.db"))
}

func TestExpandPathEnvVar(t *testing.T) {
	t.Setenv("RUPEEWISE_TEST_DIR", "/var/lib/rupeewise")

	assert.Equal(t, "/var/lib/rupeewise/app.db", ExpandPath("$RUPEEWISE_TEST_DIR/app.db"))
}

func TestExpandPathPassthrough(t *testing.T) {
	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, "/absolute/path.db", ExpandPath("/absolute/path.db"))
	assert.Equal(t, "relative/path.db", ExpandPath("relative/path.db"))
}
