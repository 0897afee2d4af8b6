//go:build !linux

package cmd

import (
	"errors"
	"log/slog"
	"runtime"
)

var errInstallUnsupported = errors.New("service install is not supported on " + runtime.GOOS)

func install(*slog.Logger) error   { return errInstallUnsupported }
func uninstall(*slog.Logger) error { return errInstallUnsupported }
