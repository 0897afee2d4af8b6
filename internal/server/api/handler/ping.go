package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/Alia5/sio2pad/apitypes"
	"github.com/Alia5/sio2pad/internal/server/api"
)

// Version is set at build time with
// -ldflags "-X github.com/Alia5/sio2pad/internal/server/api/handler.Version=x.y.z".
var Version = "0.0.1-dev"

// Ping returns a handler reporting the server identity and version.
func Ping() api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		b, err := json.Marshal(apitypes.PingResponse{Server: "sio2pad", Version: Version})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
