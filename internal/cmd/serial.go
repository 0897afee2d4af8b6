//go:build !windows

package cmd

import (
	"io"

	"github.com/pkg/term"
)

func openSerial(dev string, baud int) (io.ReadWriteCloser, error) {
	return term.Open(dev, term.Speed(baud), term.RawMode)
}
