package configpaths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "sio2pad"

// PadConfigName is the base name of the pad configuration file.
const PadConfigName = "PAD"

// DefaultConfigDir returns the platform-specific configuration directory.
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("AppData"); appdata != "" {
			return filepath.Join(appdata, appName), nil
		}
		return "", errors.New("AppData not set")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".config", appName), nil
		}
		return "", errors.New("HOME not set")
	}
}

// DefaultNamedConfigPath returns the config file path for a base name and
// format inside DefaultConfigDir.
func DefaultNamedConfigPath(baseName, format string) (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, baseName+"."+extFor(format)), nil
}

// PadConfigPath resolves the pad config file. An explicit path wins, then
// the first existing PAD.{yaml,yml,toml,json} in the working directory and
// the config dir, then PAD.yaml in the config dir.
func PadConfigPath(userPath string) string {
	if userPath != "" {
		return userPath
	}
	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	cfgDir, err := DefaultConfigDir()
	if err == nil {
		dirs = append(dirs, cfgDir)
	}
	for _, dir := range dirs {
		for _, ext := range []string{"yaml", "yml", "toml", "json"} {
			p := filepath.Join(dir, PadConfigName+"."+ext)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	if cfgDir == "" {
		return PadConfigName + ".yaml"
	}
	return filepath.Join(cfgDir, PadConfigName+".yaml")
}

func extFor(format string) string {
	switch format {
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	}
	return "json"
}

// EnsureDir ensures the directory for a given file path exists.
func EnsureDir(filePath string) error {
	return os.MkdirAll(filepath.Dir(filePath), 0o755)
}

// ConfigCandidatePaths builds candidate paths for CLI config files per
// format. userPath, when set, comes first and is routed by extension.
func ConfigCandidatePaths(userPath string) (jsonPaths, yamlPaths, tomlPaths []string) {
	addAll := func(dir, base string) {
		jsonPaths = append(jsonPaths, filepath.Join(dir, base+".json"))
		yamlPaths = append(yamlPaths, filepath.Join(dir, base+".yaml"), filepath.Join(dir, base+".yml"))
		tomlPaths = append(tomlPaths, filepath.Join(dir, base+".toml"))
	}

	if userPath != "" {
		switch filepath.Ext(userPath) {
		case ".yaml", ".yml":
			yamlPaths = append(yamlPaths, userPath)
		case ".toml":
			tomlPaths = append(tomlPaths, userPath)
		default:
			jsonPaths = append(jsonPaths, userPath)
		}
	}

	if wd, err := os.Getwd(); err == nil {
		addAll(wd, appName)
	}
	if dir, err := DefaultConfigDir(); err == nil {
		addAll(dir, "config")
	}
	if runtime.GOOS != "windows" {
		addAll(filepath.Join("/etc", appName), "config")
	}
	return
}
