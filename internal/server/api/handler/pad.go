package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Alia5/sio2pad/apitypes"
	"github.com/Alia5/sio2pad/internal/server/api"
	"github.com/Alia5/sio2pad/pad"
	"github.com/Alia5/sio2pad/plugin"
)

// parsePort reads the 1-based {port} parameter.
func parsePort(params map[string]string) (int, error) {
	s, ok := params["port"]
	if !ok {
		return 0, api.ErrBadRequest("missing port parameter")
	}
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, api.ErrBadRequest(fmt.Sprintf("invalid port: %v", err))
	}
	if port < 1 || port > pad.NumPorts {
		return 0, api.ErrNotFound(fmt.Sprintf("port %d not found", port))
	}
	return port, nil
}

func writeJSON(res *api.Response, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	res.JSON = string(b)
	return nil
}

// PadList returns a handler describing both ports. Slots without a pad
// report mode "none".
func PadList(p *plugin.Plugin) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		out := apitypes.PadListResponse{Ports: []apitypes.Port{}}
		p.Do(func() {
			e := p.Engine()
			cfg := p.Config()
			for port := range pad.NumPorts {
				ap := apitypes.Port{
					Port:       port + 1,
					ActiveSlot: e.Slot(port) + 1,
					Multitap:   cfg.Multitap[port],
					Slots:      []apitypes.Slot{},
				}
				if d := p.Manager().Device(port); d != nil {
					ap.Device, ap.DeviceUID = d.Name(), d.UID()
				}
				for slot := range pad.NumSlots {
					s := apitypes.Slot{Slot: slot + 1, Mode: "none"}
					if e.Enabled(port, slot) {
						pd, _ := e.Pad(port, slot)
						s.Enabled = true
						s.Mode, s.ModeID, s.Locked = pad.ModeName(pd.Mode), pd.Mode, pd.Locked()
					}
					ap.Slots = append(ap.Slots, s)
				}
				out.Ports = append(out.Ports, ap)
			}
		})
		return writeJSON(res, out)
	}
}

// PadSlot returns a handler selecting the active multitap slot of a port.
// Payload: the 1-based slot number.
func PadSlot(p *plugin.Plugin) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		port, err := parsePort(req.Params)
		if err != nil {
			return err
		}
		slot, err := strconv.Atoi(strings.TrimSpace(req.Payload))
		if err != nil {
			return api.ErrBadRequest(fmt.Sprintf("invalid slot: %v", err))
		}
		if !p.SetSlot(port, slot) {
			return api.ErrBadRequest(fmt.Sprintf("slot %d out of range", slot))
		}
		logger.Info("slot selected", "port", port, "slot", slot)
		return writeJSON(res, apitypes.SlotResponse{Port: port, Slot: slot})
	}
}

// PadMode returns a handler reporting the mode of a port's active slot.
func PadMode(p *plugin.Plugin) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		port, err := parsePort(req.Params)
		if err != nil {
			return err
		}
		var out apitypes.ModeResponse
		var present bool
		p.Do(func() {
			e := p.Engine()
			slot := e.Slot(port - 1)
			out = apitypes.ModeResponse{Port: port, Slot: slot + 1}
			if present = e.Enabled(port-1, slot); present {
				pd, _ := e.Pad(port-1, slot)
				out.Mode, out.ModeID, out.Locked = pad.ModeName(pd.Mode), pd.Mode, pd.Locked()
			}
		})
		if !present {
			return api.ErrNotFound(fmt.Sprintf("no pad in port %d slot %d", port, out.Slot))
		}
		return writeJSON(res, out)
	}
}
