package cmd

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"os"
	"time"

	"github.com/bradleyjkemp/memviz"
	"github.com/fogleman/gg"

	"github.com/Alia5/sio2pad/apiclient"
	"github.com/Alia5/sio2pad/apitypes"
)

type Dump struct {
	Addr    string        `help:"API server address" default:"127.0.0.1:3243" env:"SIO2PAD_API_ADDR"`
	NoAuth  bool          `help:"Connect without the key file password"`
	Format  string        `help:"dot renders the state graph for graphviz, png draws the ports" enum:"dot,png" default:"dot"`
	Output  string        `help:"Destination file (default: stdout for dot, pads.png for png)" type:"path"`
	Timeout time.Duration `help:"Request timeout" default:"5s"`
}

func (d *Dump) Run() error {
	c := apiclient.New(d.Addr)
	if !d.NoAuth {
		if pwd := readKey(); pwd != "" {
			c = apiclient.NewWithPassword(d.Addr, pwd)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.Timeout)
	defer cancel()
	pads, err := c.PadListCtx(ctx)
	if err != nil {
		return fmt.Errorf("pad list: %w", err)
	}

	if d.Format == "png" {
		out := d.Output
		if out == "" {
			out = "pads.png"
		}
		return drawPorts(pads).SavePNG(out)
	}

	var w io.Writer = os.Stdout
	if d.Output != "" {
		f, err := os.Create(d.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	memviz.Map(w, pads)
	return nil
}

const (
	slotW   = 120.0
	slotH   = 56.0
	gap     = 12.0
	headerH = 28.0
)

var (
	colBackground = color.RGBA{0x20, 0x22, 0x28, 0xFF}
	colDisabled   = color.RGBA{0x44, 0x46, 0x4C, 0xFF}
	colActive     = color.RGBA{0xF0, 0xC0, 0x40, 0xFF}
	colText       = color.White
)

var modeColors = map[string]color.RGBA{
	"digital":   {0x50, 0x90, 0xD0, 0xFF},
	"analog":    {0xD0, 0x50, 0x50, 0xFF},
	"ds2native": {0x60, 0xB0, 0x60, 0xFF},
}

// drawPorts draws one row per port with a box per slot, coloured by mode.
// The active slot gets an outline.
func drawPorts(pads *apitypes.PadListResponse) *gg.Context {
	cols := 1
	for _, p := range pads.Ports {
		cols = max(cols, len(p.Slots))
	}
	width := gap + float64(cols)*(slotW+gap)
	height := gap + float64(len(pads.Ports))*(headerH+slotH+gap)
	dc := gg.NewContext(int(width), int(height))
	dc.SetColor(colBackground)
	dc.Clear()

	for row, p := range pads.Ports {
		y := gap + float64(row)*(headerH+slotH+gap)
		label := fmt.Sprintf("port %d", p.Port)
		if p.DeviceUID != "" {
			label += "  " + p.DeviceUID
		}
		if p.Multitap {
			label += "  (multitap)"
		}
		dc.SetColor(colText)
		dc.DrawStringAnchored(label, gap, y+headerH/2, 0, 0.5)

		for i, s := range p.Slots {
			x := gap + float64(i)*(slotW+gap)
			sy := y + headerH
			fill, ok := modeColors[s.Mode]
			if !s.Enabled || !ok {
				fill = colDisabled
			}
			dc.SetColor(fill)
			dc.DrawRoundedRectangle(x, sy, slotW, slotH, 6)
			dc.Fill()
			if s.Slot == p.ActiveSlot {
				dc.SetColor(colActive)
				dc.SetLineWidth(3)
				dc.DrawRoundedRectangle(x, sy, slotW, slotH, 6)
				dc.Stroke()
			}
			dc.SetColor(colText)
			text := s.Mode
			if s.Locked {
				text += " *"
			}
			dc.DrawStringAnchored(fmt.Sprintf("%d", s.Slot), x+8, sy+14, 0, 0.5)
			dc.DrawStringAnchored(text, x+slotW/2, sy+slotH/2, 0.5, 0.5)
		}
	}
	return dc
}
