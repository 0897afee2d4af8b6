package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Alia5/sio2pad/device/tty"
	"github.com/Alia5/sio2pad/internal/bridge"
	"github.com/Alia5/sio2pad/internal/config"
	"github.com/Alia5/sio2pad/internal/configpaths"
	"github.com/Alia5/sio2pad/internal/log"
	"github.com/Alia5/sio2pad/internal/server/api"
	"github.com/Alia5/sio2pad/internal/server/api/auth"
	"github.com/Alia5/sio2pad/internal/server/api/handler"
	"github.com/Alia5/sio2pad/internal/util"
	"github.com/Alia5/sio2pad/plugin"
)

const keyFileName = "sio2pad.key.txt"

// BridgeConfig selects the serial device of a console side adapter.
type BridgeConfig struct {
	Device string `help:"Serial device of the console adapter; empty disables the bridge" env:"SIO2PAD_BRIDGE_DEVICE"`
	Baud   int    `help:"Serial speed" default:"115200" env:"SIO2PAD_BRIDGE_BAUD"`
}

type Serve struct {
	Pad               string           `help:"Pad config file (default: PAD.yaml in the working or config dir)" type:"path" env:"SIO2PAD_PAD_CONFIG"`
	Rate              time.Duration    `help:"Input polling interval" default:"16ms" env:"SIO2PAD_RATE"`
	Stdin             bool             `help:"Read key presses from the terminal" env:"SIO2PAD_STDIN"`
	KeyHold           time.Duration    `help:"How long a terminal key stays pressed" default:"600ms" env:"SIO2PAD_KEY_HOLD"`
	Stats             string           `help:"Serve runtime charts on this address (statsview builds only)" env:"SIO2PAD_STATS"`
	ConnectionTimeout time.Duration    `help:"API request read timeout" default:"30s" env:"SIO2PAD_CONNECTION_TIMEOUT"`
	ApiServerConfig   api.ServerConfig `embed:"" prefix:"api."`
	Bridge            BridgeConfig     `embed:"" prefix:"bridge."`
}

// Run is called by Kong when the serve command is executed.
func (s *Serve) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.StartServer(ctx, logger, rawLogger)
}

func (s *Serve) StartServer(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	if s.Rate <= 0 {
		return fmt.Errorf("rate must be positive, got %s", s.Rate)
	}
	s.ApiServerConfig.ConnectionTimeout = s.ConnectionTimeout

	padPath := configpaths.PadConfigPath(s.Pad)
	cfg, err := config.Load(padPath)
	if err != nil {
		return err
	}
	logger.Info("Loaded pad config", "path", padPath)

	opts := plugin.Options{Logger: logger, Raw: rawLogger}
	if log.Discards(rawLogger) {
		// leave the pad config's log switch in charge
		opts.Raw = nil
	}
	p, err := plugin.New(cfg, opts)
	if err != nil {
		return err
	}
	p.Init()
	p.Open()
	defer func() { _ = p.Close() }()

	if s.ApiServerConfig.Addr == "" {
		logger.Info("API server disabled")
	} else {
		apiSrv, err := s.startAPI(p, logger)
		if err != nil {
			logger.Error("failed to start API server", "error", err)
			if util.IsRunFromGUI() {
				fmt.Println("Press any key to exit...")
				b := make([]byte, 1)
				_, _ = os.Stdin.Read(b)
			}
			return err
		}
		defer apiSrv.Close()
	}

	if util.IsRunFromGUI() {
		go (func() {
			time.Sleep(250 * time.Millisecond)
			util.HideConsoleWindow()
		})()
	}

	startStats(s.Stats, logger)

	parent := ctx
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if s.Stdin {
		go func() {
			err := tty.RunStdin(ctx, p.PushEvent, s.KeyHold, logger.With("component", "tty"))
			if errors.Is(err, tty.ErrInterrupted) {
				cancel(err)
			} else if err != nil {
				logger.Warn("terminal input stopped", "error", err)
			}
		}()
	}

	if s.Bridge.Device != "" {
		port, err := openSerial(s.Bridge.Device, s.Bridge.Baud)
		if err != nil {
			return fmt.Errorf("open bridge %s: %w", s.Bridge.Device, err)
		}
		defer port.Close()
		logger.Info("Serial bridge open", "device", s.Bridge.Device, "baud", s.Bridge.Baud)
		go func() {
			if err := bridge.Serve(ctx, port, p, logger.With("component", "bridge")); err != nil && ctx.Err() == nil {
				cancel(fmt.Errorf("bridge: %w", err))
			}
		}()
	}

	ticker := time.NewTicker(s.Rate)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			err := context.Cause(ctx)
			if parent.Err() != nil || errors.Is(err, tty.ErrInterrupted) {
				logger.Info("Shutting down")
				return nil
			}
			return err
		case <-ticker.C:
			p.Update()
		}
	}
}

func (s *Serve) startAPI(p *plugin.Plugin, logger *slog.Logger) (*api.Server, error) {
	if s.ApiServerConfig.Auth {
		pwd, err := loadOrCreateKey(logger)
		if err != nil {
			return nil, err
		}
		s.ApiServerConfig.Password = pwd
	}
	apiSrv := api.New(s.ApiServerConfig, logger)
	handler.Register(apiSrv.Router(), p)
	if err := apiSrv.Start(); err != nil {
		return nil, err
	}
	return apiSrv, nil
}

// loadOrCreateKey reads the API password from the key file in the config
// dir, generating and storing a new one on first start.
func loadOrCreateKey(logger *slog.Logger) (string, error) {
	keyFileDir, err := configpaths.DefaultConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve key file path: %w", err)
	}
	keyFilePath := filepath.Join(keyFileDir, keyFileName)
	if pwd, err := os.ReadFile(keyFilePath); err == nil {
		return strings.TrimSpace(string(pwd)), nil
	}

	newPwd, err := auth.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate new API password: %w", err)
	}
	if err := os.MkdirAll(keyFileDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config dir for key file: %w", err)
	}
	if err := os.WriteFile(keyFilePath, []byte(newPwd), 0o600); err != nil {
		return "", fmt.Errorf("failed to write new API password to file: %w", err)
	}
	logger.Info("Generated API server password", "path", keyFilePath)
	logger.Info("-------------------------------------")
	logger.Info("Your sio2pad API server password is:")
	logger.Info("-------------------------------------")
	logger.Info(newPwd)
	logger.Info("-------------------------------------")
	logger.Info("You can change this password at any time by editing the file")
	return newPwd, nil
}

// readKey returns the stored API password, or "" when none exists yet.
func readKey() string {
	dir, err := configpaths.DefaultConfigDir()
	if err != nil {
		return ""
	}
	b, err := os.ReadFile(filepath.Join(dir, keyFileName))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
