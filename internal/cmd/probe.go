package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Alia5/sio2pad/device"
	"github.com/Alia5/sio2pad/input"
)

type Probe struct {
	Backends []string      `help:"Backends to probe (default: all registered)"`
	Watch    time.Duration `help:"Print the active inputs of every device for this long"`
}

func (p *Probe) Run(logger *slog.Logger) error {
	ctx := context.Background()
	if p.Watch > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Watch)
		defer cancel()
	}
	return probe(ctx, os.Stdout, p.Backends, p.Watch > 0, logger)
}

func probe(ctx context.Context, w io.Writer, names []string, watch bool, logger *slog.Logger) error {
	if len(names) == 0 {
		names = device.ListBackends()
	}
	var devs []device.Device
	for _, name := range names {
		b, err := device.OpenBackend(name, device.Options{
			Logger:   logger,
			DeadZone: device.DefaultDeadZone,
		})
		if err != nil {
			fmt.Fprintf(w, "%s: unavailable: %v\n", name, err)
			continue
		}
		defer b.Close()

		found, err := b.Enumerate()
		if err != nil {
			fmt.Fprintf(w, "%s: enumerate failed: %v\n", name, err)
			continue
		}
		fmt.Fprintf(w, "%s: %d device(s)\n", name, len(found))
		for _, d := range found {
			fmt.Fprintf(w, "  %-40s %s\n", d.Name(), d.UID())
		}
		devs = append(devs, found...)
	}
	if !watch || len(devs) == 0 {
		return nil
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	last := make([]string, len(devs))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		for i, d := range devs {
			d.UpdateState()
			if s := activeInputs(d); s != last[i] {
				last[i] = s
				fmt.Fprintf(w, "%s: %s\n", d.UID(), s)
			}
		}
	}
}

func activeInputs(d device.Device) string {
	var parts []string
	for k := input.Key(0); k < input.MaxKeys; k++ {
		if v := d.GetInput(int(k)); v != 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", k, v))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}
