package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/apikit/logger"
)

// Options controls where Load looks for configuration.
type Options struct {
	// File is an explicit config file. When empty, "<name>.yml" and
	// "config.yml" are searched for in SearchPaths.
	File string
	// EnvFile is an explicit .env file. When empty, ".env" is searched for
	// in SearchPaths.
	EnvFile     string
	SearchPaths []string
	// EnvPrefix scopes overrides: with prefix "APIKIT", APIKIT_CLIENT_TIMEOUT
	// sets client.timeout.
	EnvPrefix string
}

// Option configures Load.
type Option func(*Options)

// WithFile sets an explicit config file.
func WithFile(path string) Option {
	return func(o *Options) { o.File = path }
}

// WithEnvFile sets an explicit .env file.
func WithEnvFile(path string) Option {
	return func(o *Options) { o.EnvFile = path }
}

// WithSearchPaths replaces the default search paths.
func WithSearchPaths(paths ...string) Option {
	return func(o *Options) { o.SearchPaths = paths }
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *Options) { o.EnvPrefix = strings.Trim(strings.ToUpper(prefix), "_") }
}

func defaultOptions() Options {
	return Options{SearchPaths: []string{".", "./config"}}
}

// Defaulter is implemented by config structs that fill in defaults.
type Defaulter interface {
	ApplyDefaults()
}

// Validatable is implemented by config structs that check themselves.
type Validatable interface {
	Validate() error
}

// Load reads a T for the named program, then applies defaults and validates
// it when T implements Defaulter and Validatable.
func Load[T any](name string, opts ...Option) (*T, error) {
	cfg := new(T)
	if err := LoadInto(name, cfg, opts...); err != nil {
		return nil, err
	}
	if d, ok := any(cfg).(Defaulter); ok {
		d.ApplyDefaults()
	}
	if v, ok := any(cfg).(Validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadInto decodes configuration into cfg, a pointer to a struct with
// mapstructure tags. Sources in increasing precedence: the config file, the
// .env file, the process environment. A missing file is not an error; a
// malformed one is.
func LoadInto(name string, cfg any, opts ...Option) error {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := logger.Get("config")

	if env := o.envFile(); env != "" {
		if err := godotenv.Load(env); err != nil {
			log.Warn("env file not loaded", logger.Fields("file", env, logger.FieldError, err.Error()))
		}
	}

	v := viper.New()
	if o.File != "" {
		v.SetConfigFile(o.File)
	} else {
		v.SetConfigName(name)
		v.SetConfigType("yaml")
		for _, p := range o.SearchPaths {
			v.AddConfigPath(p)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) && !stderrors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config %s: %w", name, err)
		}
		log.Debug("no config file", logger.Fields("name", name, "file", o.File))
	} else {
		log.Debug("config file loaded", logger.Fields("file", v.ConfigFileUsed()))
	}

	bindEnv(v, o.EnvPrefix, cfg)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config %s: %w", name, err)
	}
	return nil
}

// LoadYAML decodes an in-memory YAML document into cfg with the same rules
// as LoadInto. The environment is not consulted.
func LoadYAML(data []byte, cfg any) error {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

func (o Options) envFile() string {
	if o.EnvFile != "" {
		return o.EnvFile
	}
	for _, dir := range o.SearchPaths {
		p := filepath.Join(dir, ".env")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// bindEnv makes every key of the file and of cfg's struct layout
// overridable from the environment, "client.base_url" reading
// PREFIX_CLIENT_BASE_URL.
func bindEnv(v *viper.Viper, prefix string, cfg any) {
	if prefix != "" {
		v.SetEnvPrefix(prefix)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range structKeys(cfg) {
		_ = v.BindEnv(key)
	}
}

// structKeys lists the dotted mapstructure keys of cfg's fields.
func structKeys(cfg any) []string {
	var layout map[string]any
	if err := mapstructure.Decode(cfg, &layout); err != nil {
		return nil
	}
	var keys []string
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, val := range m {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if sub, ok := val.(map[string]any); ok && len(sub) > 0 {
				walk(key, sub)
				continue
			}
			keys = append(keys, key)
		}
	}
	walk("", layout)
	sort.Strings(keys)
	return keys
}
