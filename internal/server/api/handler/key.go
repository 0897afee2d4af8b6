package handler

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Alia5/sio2pad/apitypes"
	"github.com/Alia5/sio2pad/device/keyboard"
	"github.com/Alia5/sio2pad/internal/server/api"
	"github.com/Alia5/sio2pad/plugin"
)

// KeyEvent returns a handler queueing a host key event. The {kind} is
// "press" or "release" and the payload a keysym name.
func KeyEvent(p *plugin.Plugin) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var kind keyboard.EventKind
		switch req.Params["kind"] {
		case "press":
			kind = keyboard.KeyPress
		case "release":
			kind = keyboard.KeyRelease
		default:
			return api.ErrNotFound(fmt.Sprintf("unknown key event %q", req.Params["kind"]))
		}
		name := strings.TrimSpace(req.Payload)
		sym, err := keyboard.ParseKeysym(name)
		if err != nil {
			return api.ErrBadRequest(err.Error())
		}
		p.PushEvent(keyboard.Event{Kind: kind, Key: sym})
		return writeJSON(res, apitypes.KeyEventResponse{Kind: kind.String(), Key: keyboard.Name(sym)})
	}
}
