package handler

import (
	"log/slog"

	"github.com/Alia5/sio2pad/apitypes"
	"github.com/Alia5/sio2pad/internal/config"
	"github.com/Alia5/sio2pad/internal/server/api"
	"github.com/Alia5/sio2pad/plugin"
)

// ConfigGet returns a handler reporting the live pad config.
func ConfigGet(p *plugin.Plugin) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var (
			b   []byte
			err error
		)
		p.Do(func() { b, err = p.Config().Encode(config.FormatJSON) })
		if err != nil {
			return err
		}
		return writeJSON(res, apitypes.ConfigResponse{Config: b})
	}
}
