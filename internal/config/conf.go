package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	kYaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables before they are mapped
// onto config keys: TEXTHUFF_LOGGER_LEVEL becomes logger.level.
const EnvPrefix = "TEXTHUFF_"

// Defaults holds the value of every key the tool reads.
var Defaults = map[string]any{
	"level":             "balanced",
	"jobs":              0,
	"output.dir":        "",
	"output.suffix":     ".thz",
	"metrics.file":      "",
	"metrics.prefix":    "texthuff_",
	"logger.level":      "info",
	"logger.prettier":   true,
	"logger.timeformat": time.RFC3339,
}

type Conf struct {
	*koanf.Koanf
}

// Load layers, from lowest to highest priority: Defaults, the YAML file at
// path (skipped if path is empty), TEXTHUFF_ environment variables, and
// overrides.
func Load(path string, overrides map[string]any) (*Conf, error) {
	conf := &Conf{Koanf: koanf.New(".")}

	if err := conf.Load(confmap.Provider(Defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := conf.Load(file.Provider(path), kYaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := conf.Load(env.ProviderWithValue(EnvPrefix, ".", func(s string, v string) (string, interface{}) {
		key := strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", -1)
		return key, v
	}), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if len(overrides) != 0 {
		if err := conf.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("load overrides: %w", err)
		}
	}
	return conf, nil
}

func (c *Conf) Bool(path string, defaultValues ...bool) bool {
	if !c.Koanf.Exists(path) && len(defaultValues) > 0 {
		return defaultValues[0]
	}

	return c.Koanf.Bool(path)
}

func (c *Conf) String(path string, defaultValues ...string) string {
	if !c.Koanf.Exists(path) && len(defaultValues) > 0 {
		return defaultValues[0]
	}

	return c.Koanf.String(path)
}

func (c *Conf) Int(path string, defaultValues ...int) int {
	if !c.Koanf.Exists(path) && len(defaultValues) > 0 {
		return defaultValues[0]
	}

	return c.Koanf.Int(path)
}
