package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/Alia5/sio2pad/device"
	"github.com/Alia5/sio2pad/device/remote"
	"github.com/Alia5/sio2pad/internal/server/api"
	"github.com/Alia5/sio2pad/plugin"
)

// PadStream returns a stream handler that plugs a remote device into the
// port for as long as the connection lives. The attach is acknowledged with
// an empty line, after which remote.Serve runs the frame exchange.
func PadStream(p *plugin.Plugin) api.StreamHandlerFunc {
	return func(conn net.Conn, params map[string]string, logger *slog.Logger) error {
		port, err := parsePort(params)
		if err != nil {
			return err
		}
		dev := remote.New(conn.RemoteAddr().String())
		if err := p.Attach(port-1, dev); err != nil {
			switch {
			case errors.Is(err, device.ErrPortBusy):
				return api.ErrConflict(fmt.Sprintf("port %d already streamed", port))
			case errors.Is(err, plugin.ErrNotOpen):
				return api.ErrConflict(err.Error())
			}
			return err
		}
		defer p.Detach(dev)

		if _, err := conn.Write([]byte("\n")); err != nil {
			return nil
		}
		return remote.Serve(conn, dev, logger.With("port", port))
	}
}
