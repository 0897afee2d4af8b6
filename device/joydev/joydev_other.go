//go:build !linux

package joydev

import (
	"errors"

	"github.com/Alia5/sio2pad/device"
)

func init() {
	device.RegisterBackend("joydev", Open)
}

func Open(device.Options) (device.Backend, error) {
	return nil, errors.New("joydev is only available on linux")
}
