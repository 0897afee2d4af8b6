//go:build !statsview

package cmd

import "log/slog"

func startStats(addr string, logger *slog.Logger) {
	if addr != "" {
		logger.Warn("stats requested but this build has no statsview; rebuild with -tags statsview")
	}
}
