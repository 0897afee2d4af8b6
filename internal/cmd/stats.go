//go:build statsview

package cmd

import (
	"log/slog"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const statsURL = "/debug/statsview"

func startStats(addr string, logger *slog.Logger) {
	if addr == "" {
		return
	}
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(addr))
		mgr := statsview.New()
		mgr.Start()
	}()
	logger.Info("Stats server available", "url", "http://"+addr+statsURL)
}
