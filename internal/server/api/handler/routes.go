package handler

import (
	"github.com/Alia5/sio2pad/internal/server/api"
	"github.com/Alia5/sio2pad/plugin"
)

// Register adds every pad route to r.
func Register(r *api.Router, p *plugin.Plugin) {
	r.Register("ping", Ping())
	r.Register("pad/list", PadList(p))
	r.Register("pad/{port}/slot", PadSlot(p))
	r.Register("pad/{port}/mode", PadMode(p))
	r.Register("state/freeze", StateFreeze(p))
	r.Register("state/thaw", StateThaw(p))
	r.Register("config/get", ConfigGet(p))
	r.Register("key/{kind}", KeyEvent(p))
	r.RegisterStream("pad/{port}/stream", PadStream(p))
}
