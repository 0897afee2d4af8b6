package api

import "time"

// ServerConfig represents the API section of the serve command.
type ServerConfig struct {
	Addr string `help:"API server listen address, empty disables the API" default:"127.0.0.1:3243" env:"SIO2PAD_API_ADDR"`
	Auth bool   `help:"Require the password from the key file on every connection" default:"true" env:"SIO2PAD_API_AUTH"`
	// Password is filled from the key file when Auth is set.
	Password          string        `kong:"-"`
	ConnectionTimeout time.Duration `kong:"-"`
}
