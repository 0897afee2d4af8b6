package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

type Install struct{}

func (i *Install) Run(logger *slog.Logger) error { return install(logger) }

type Uninstall struct{}

func (u *Uninstall) Run(logger *slog.Logger) error { return uninstall(logger) }

func currentExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}
