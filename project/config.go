package project

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"

	"github.com/daveroberts0321/politecode/generator"
	"github.com/daveroberts0321/politecode/parser/grammar"
)

// ConfigFile is the name of the project configuration file.
const ConfigFile = "politecode.yaml"

type Config struct {
	Name       string       `yaml:"name"`
	SourceDirs []string     `yaml:"source_dirs"`
	OutputDir  string       `yaml:"output_dir"`
	Target     TargetConfig `yaml:"target"`
	Log        LogConfig    `yaml:"log"`
	Server     ServerConfig `yaml:"server"`
}

// TargetConfig selects the C# wrapping template. A nil Namespace means the
// default namespace; an empty one emits the class alone.
type TargetConfig struct {
	Namespace *string `yaml:"namespace"`
	Class     string  `yaml:"class"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type ServerConfig struct {
	Port      int     `yaml:"port"`
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig(name string) *Config {
	cfg := &Config{Name: name}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if len(c.SourceDirs) == 0 {
		c.SourceDirs = []string{"src"}
	}
	if c.OutputDir == "" {
		c.OutputDir = "generated"
	}
	if c.Target.Class == "" {
		c.Target.Class = generator.DefaultOptions().Class
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimit <= 0 {
		c.Server.RateLimit = 5
	}
	if c.Server.Burst <= 0 {
		c.Server.Burst = 10
	}
}

// LoadConfig reads dir/politecode.yaml. A missing file yields the defaults
// named after dir.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		abs, absErr := filepath.Abs(dir)
		if absErr != nil {
			abs = dir
		}
		return DefaultConfig(filepath.Base(abs)), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	cfg := &Config{}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Options returns the translation options of the project.
func (c *Config) Options() grammar.Options {
	opts := grammar.DefaultOptions()
	if c.Target.Namespace != nil {
		opts.Target.Namespace = *c.Target.Namespace
	}
	if c.Target.Class != "" {
		opts.Target.Class = c.Target.Class
	}
	return opts
}

// NewLogger builds the project logger from its log settings.
func NewLogger(cfg LogConfig) (*zap.SugaredLogger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", cfg.Level)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	log, err := zcfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return log.Sugar(), nil
}
