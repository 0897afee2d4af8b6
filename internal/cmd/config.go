package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/sio2pad/input"
	"github.com/Alia5/sio2pad/internal/config"
	"github.com/Alia5/sio2pad/internal/configpaths"
)

// Init writes a template for the serve flags or the pad config.
type Init struct {
	Target string `arg:"" name:"target" help:"What to generate: serve flags or the pad config" enum:"serve,pad"`
	Format string `help:"Output format" enum:"json,yaml,toml" default:"yaml"`
	Output string `help:"Destination file path (defaults to current directory)"`
	Force  bool   `help:"Overwrite if the file already exists"`
}

// Run builds the serve template by reflection of the command struct and its
// tags. The pad template is the default pad config.
func (c *Init) Run() error {
	format := normalizeFormat(c.Format)
	if format == "" {
		return fmt.Errorf("unsupported format: %s", c.Format)
	}

	dest := c.Output
	if dest == "" {
		base := "sio2pad"
		if c.Target == "pad" {
			base = configpaths.PadConfigName
		}
		dest = base + "." + format
	}
	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}

	var data []byte
	var err error
	switch c.Target {
	case "pad":
		data, err = config.Default().Encode(config.Format(format))
	case "serve":
		data, err = marshalTemplate(buildMapFromStruct(reflect.TypeOf(Serve{})), format)
	default:
		return errors.New("unknown target; expected 'serve' or 'pad'")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

func marshalTemplate(root map[string]any, format string) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(root, "", "  ")
	case "toml":
		return toml.Marshal(root)
	default:
		return yaml.Marshal(root)
	}
}

// PadConfig groups the pad config subcommands.
type PadConfig struct {
	Show PadShow `cmd:"" help:"Print the pad config and its key bindings"`
	Bind PadBind `cmd:"" help:"Bind a host key to a pad button"`
}

type PadFile struct {
	File string `help:"Pad config file (default: PAD.yaml in the working or config dir)" type:"path" env:"SIO2PAD_PAD_CONFIG"`
}

func (f PadFile) path() string { return configpaths.PadConfigPath(f.File) }

type PadShow struct {
	PadFile `embed:""`
}

func (s *PadShow) Run() error {
	return showPad(os.Stdout, s.path())
}

func showPad(w io.Writer, path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := cfg.Encode(config.FormatYAML)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "# %s\n%s", path, data)
	for port := range input.NumPorts {
		fmt.Fprintf(w, "\npad %d bindings:\n", port+1)
		for _, b := range cfg.BoundKeys(port) {
			fmt.Fprintf(w, "  %s\n", b)
		}
	}
	return nil
}

type PadBind struct {
	PadFile `embed:""`

	Port   int    `arg:"" help:"Pad port (1 or 2)"`
	Button string `arg:"" help:"Pad button, e.g. cross or l_up"`
	Key    string `arg:"" help:"Host key name, e.g. Return or x"`
}

func (b *PadBind) Run() error {
	return bindKey(b.path(), b.Port, b.Button, b.Key)
}

func bindKey(path string, port int, button, key string) error {
	if port < 1 || port > input.NumPorts {
		return fmt.Errorf("port must be 1 or 2, got %d", port)
	}
	k, err := input.ParseKey(button)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.SetKey(port-1, key, k); err != nil {
		return err
	}
	return cfg.Save(path)
}

func normalizeFormat(f string) string {
	switch strings.ToLower(f) {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return ""
	}
}

func lowerCamel(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = toLower(r[0])
	return string(r)
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

func buildMapFromStruct(t reflect.Type) map[string]any {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := map[string]any{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Tag.Get("kong") == "-" {
			continue
		}

		if _, ok := f.Tag.Lookup("embed"); ok {
			prefix := f.Tag.Get("prefix")
			name := strings.TrimSuffix(prefix, ".")
			sub := buildMapFromStruct(f.Type)
			if name != "" {
				out[name] = sub
			} else {
				for k, v := range sub {
					out[k] = v
				}
			}
			continue
		}

		key := lowerCamel(f.Name)
		def := f.Tag.Get("default")
		val := defaultValueForField(f.Type, def)
		if val != nil {
			out[key] = val
		}
	}
	return out
}

func defaultValueForField(t reflect.Type, def string) any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "time" && t.Name() == "Duration" {
		if def != "" {
			return def
		}
		return "0s"
	}
	switch t.Kind() {
	case reflect.String:
		return def // may be empty
	case reflect.Bool:
		if def == "" {
			return false
		}
		b, err := strconv.ParseBool(def)
		if err != nil {
			return false
		}
		return b
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if def == "" {
			return 0
		}
		n, err := strconv.ParseInt(def, 10, 64)
		if err != nil {
			return 0
		}
		return n
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if def == "" {
			return 0
		}
		n, err := strconv.ParseUint(def, 10, 64)
		if err != nil {
			return 0
		}
		return n
	case reflect.Float32, reflect.Float64:
		if def == "" {
			return 0
		}
		f, err := strconv.ParseFloat(def, 64)
		if err != nil {
			return 0
		}
		return f
	case reflect.Struct:
		return buildMapFromStruct(t)
	default:
		return nil
	}
}
