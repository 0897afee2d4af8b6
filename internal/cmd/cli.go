package cmd

import "github.com/Alia5/sio2pad/internal/log"

// CLI is the root command tree parsed by kong.
type CLI struct {
	Config string     `help:"Path to a config file for these flags (json, yaml or toml)" type:"path" env:"SIO2PAD_CONFIG"`
	Log    log.Config `embed:"" prefix:"log."`

	Serve     Serve     `cmd:"" help:"Run the pad server: host input, API and optional serial bridge"`
	Pad       PadConfig `cmd:"" help:"Inspect and edit the pad configuration"`
	Init      Init      `cmd:"" help:"Write a config file template"`
	Probe     Probe     `cmd:"" help:"List host input backends and their devices"`
	Dump      Dump      `cmd:"" help:"Render the pad state of a running server"`
	Install   Install   `cmd:"" help:"Install sio2pad as a service starting on login"`
	Uninstall Uninstall `cmd:"" help:"Remove the sio2pad service"`
}
