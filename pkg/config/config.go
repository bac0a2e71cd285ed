package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

const (
	Prod = "prod"
	Dev  = "dev"
	Test = "test"
)

const (
	// DefaultBufferSize is the size of the untracked scratch buffer owned by
	// the resource wrapper.
	DefaultBufferSize = 1024
	// DefaultSequenceLen is the length of the demo integer sequence (values 1..N).
	DefaultSequenceLen = 99
)

type Config struct {
	Demo    Demo    `mapstructure:"demo" yaml:"demo"`
	ForceGC ForceGC `mapstructure:"force_gc" yaml:"force_gc"`
	Server  Server  `mapstructure:"server" yaml:"server"`
	Report  Report  `mapstructure:"report" yaml:"report"`
	Logs    Logs    `mapstructure:"logs" yaml:"logs"`
	K8S     K8S     `mapstructure:"k8s" yaml:"k8s"`
}

type Demo struct {
	// Dir is the working directory for the demo's temporary files.
	Dir         string `mapstructure:"dir" yaml:"dir"`
	BufferSize  int    `mapstructure:"buffer_size" yaml:"buffer_size"`
	SequenceLen int    `mapstructure:"sequence_len" yaml:"sequence_len"`
	// TempFile receives literal text before being deleted ("temp1.dat").
	TempFile string `mapstructure:"temp_file" yaml:"temp_file"`
	// ScratchFile is the handle owned by the resource wrapper ("temp.dat").
	ScratchFile string `mapstructure:"scratch_file" yaml:"scratch_file"`
	// IllustrateOpenHandle additionally runs the failing delete-before-release
	// flow so the caught I/O error is visible in the output.
	IllustrateOpenHandle bool `mapstructure:"illustrate_open_handle" yaml:"illustrate_open_handle"`
}

type ForceGC struct {
	Enabled           bool          `mapstructure:"enabled" yaml:"enabled"`
	GCInterval        time.Duration `mapstructure:"gc_interval" yaml:"gc_interval"`
	FreeOsMemInterval time.Duration `mapstructure:"free_os_mem_interval" yaml:"free_os_mem_interval"`
	// ForceRate limits how many demo-requested collection passes are admitted
	// per second; ForceBurst is the limiter burst.
	ForceRate  int `mapstructure:"force_rate" yaml:"force_rate"`
	ForceBurst int `mapstructure:"force_burst" yaml:"force_burst"`
}

type Server struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Name    string `mapstructure:"name" yaml:"name"`
	Port    string `mapstructure:"port" yaml:"port"`
}

type Report struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

type Logs struct {
	Level string `mapstructure:"level" yaml:"level"`
}

type K8S struct {
	Probe Probe `mapstructure:"probe" yaml:"probe"`
}

type Probe struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

const (
	configPath      = "config/config.yaml"
	configPathLocal = "config/config.local.yaml"
	configPathTest  = "config/config.test.yaml"
)

// PathFromEnv resolves the config file path from APP_ENV the same way the
// service environments do: prod (or unset) reads the checked-in file, dev the
// local override, test the test fixture.
func PathFromEnv() (string, error) {
	switch env := os.Getenv("APP_ENV"); env {
	case Prod, "":
		return configPath, nil
	case Dev:
		return configPathLocal, nil
	case Test:
		return configPathTest, nil
	default:
		return "", errors.New("unknown APP_ENV: '" + env + "'")
	}
}

// Load reads the YAML config at path and fills in defaults for anything the
// file leaves unset.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config %q: %w", path, err)
	}
	cfg.withDefaults()

	return cfg, nil
}

// Default returns a config with every field at its default value. Tests and
// the demos use it when no file is involved.
func Default() *Config {
	cfg := new(Config)
	cfg.withDefaults()
	return cfg
}

func (c *Config) withDefaults() {
	if c.Demo.Dir == "" {
		c.Demo.Dir = "."
	}
	if c.Demo.BufferSize <= 0 {
		c.Demo.BufferSize = DefaultBufferSize
	}
	if c.Demo.SequenceLen <= 0 {
		c.Demo.SequenceLen = DefaultSequenceLen
	}
	if c.Demo.TempFile == "" {
		c.Demo.TempFile = "temp1.dat"
	}
	if c.Demo.ScratchFile == "" {
		c.Demo.ScratchFile = "temp.dat"
	}
	if c.ForceGC.GCInterval <= 0 {
		c.ForceGC.GCInterval = 5 * time.Second
	}
	if c.ForceGC.FreeOsMemInterval <= 0 {
		c.ForceGC.FreeOsMemInterval = 30 * time.Second
	}
	if c.ForceGC.ForceRate <= 0 {
		c.ForceGC.ForceRate = 10
	}
	if c.ForceGC.ForceBurst <= 0 {
		c.ForceGC.ForceBurst = c.ForceGC.ForceRate
	}
	if c.Server.Name == "" {
		c.Server.Name = "memlab"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8020"
	}
	if c.Report.Path == "" {
		c.Report.Path = "observations.yaml"
	}
	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.K8S.Probe.Timeout <= 0 {
		c.K8S.Probe.Timeout = 5 * time.Second
	}
}
