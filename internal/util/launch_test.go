package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartedWithoutShell(t *testing.T) {
	tests := []struct {
		name         string
		consoleProcs int
		parent       string
		expected     bool
	}{
		{name: "no console", consoleProcs: 0, parent: "cmd.exe", expected: true},
		{name: "explorer with fresh console", consoleProcs: 1, parent: "explorer.exe", expected: true},
		{name: "shell", consoleProcs: 2, parent: "cmd.exe", expected: false},
		{name: "shell name is case insensitive", consoleProcs: 1, parent: `C:\Windows\System32\WindowsPowerShell\v1.0\PowerShell.exe`, expected: false},
		{name: "shared console from unknown parent", consoleProcs: 3, parent: "make.exe", expected: false},
		{name: "unknown parent", consoleProcs: 1, parent: "", expected: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, startedWithoutShell(tt.consoleProcs, tt.parent))
		})
	}
}
