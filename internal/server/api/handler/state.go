package handler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Alia5/sio2pad/apitypes"
	"github.com/Alia5/sio2pad/internal/server/api"
	"github.com/Alia5/sio2pad/pad"
	"github.com/Alia5/sio2pad/plugin"
)

// StateFreeze returns a handler producing a base64 save state. An optional
// payload "legacy" selects the fixed v3 layout.
func StateFreeze(p *plugin.Plugin) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		f := pad.FormatTagged
		switch strings.ToLower(strings.TrimSpace(req.Payload)) {
		case "", "tagged":
		case "legacy":
			f = pad.FormatLegacy
		default:
			return api.ErrBadRequest(fmt.Sprintf("unknown state format %q", req.Payload))
		}
		data := p.Freeze(f)
		logger.Debug("state frozen", "format", f, "size", len(data))
		return writeJSON(res, apitypes.FreezeResponse{
			Format: f.String(),
			Size:   len(data),
			Data:   base64.StdEncoding.EncodeToString(data),
		})
	}
}

// StateThaw returns a handler restoring a base64 save state of either
// format. A rejected state leaves the pads untouched.
func StateThaw(p *plugin.Plugin) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(req.Payload))
		if err != nil {
			return api.ErrBadRequest(fmt.Sprintf("invalid base64: %v", err))
		}
		if err := p.Thaw(data); err != nil {
			if errors.Is(err, pad.ErrBadFormat) || errors.Is(err, pad.ErrBadVersion) {
				return api.ErrBadRequest(err.Error())
			}
			return err
		}
		logger.Info("state restored", "size", len(data))
		return writeJSON(res, apitypes.ThawResponse{Size: len(data)})
	}
}
