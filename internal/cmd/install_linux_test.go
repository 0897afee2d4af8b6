//go:build linux

package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemdUnit(t *testing.T) {
	unit := systemdUnitContent("/opt/sio2pad/sio2pad")
	assert.Contains(t, unit, `ExecStart="/opt/sio2pad/sio2pad" serve`)
	assert.Contains(t, unit, "WorkingDirectory=/opt/sio2pad\n")
	assert.Contains(t, unit, "WantedBy=default.target")
}

func TestServicePath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	p, err := servicePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "systemd", "user", serviceName), p)
}
