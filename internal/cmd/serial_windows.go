//go:build windows

package cmd

import (
	"errors"
	"io"
)

func openSerial(string, int) (io.ReadWriteCloser, error) {
	return nil, errors.New("the serial bridge is not supported on windows")
}
