package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/spf13/viper"
)

type Engine struct {
	Socket    string `mapstructure:"socket" default:"unix:///run/user/1000/podman/podman.sock"`
	CacheName string `mapstructure:"cache_name" default:"conveyor-uv-cache"`
}

type Pipeline struct {
	PythonVersion  string `mapstructure:"python_version" default:"3.12"`
	MatrixVersions string `mapstructure:"matrix_versions" default:"3.10,3.11,3.12"`
	BaseImage      string `mapstructure:"base_image" default:"ghcr.io/astral-sh/uv:python%s-bookworm-slim"`
	WorkDir        string `mapstructure:"work_dir" default:"/app"`
	CachePath      string `mapstructure:"cache_path" default:"/root/.cache/uv"`
}

type Service struct {
	Port         int           `mapstructure:"port" default:"8000"`
	Alias        string        `mapstructure:"alias" default:"api"`
	Entrypoint   []string      `mapstructure:"entrypoint" default:"[\"python\",\"-m\",\"hello_world\"]"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout" default:"1s"`
}

type Configuration struct {
	Engine    Engine   `mapstructure:"engine"`
	Pipeline  Pipeline `mapstructure:"pipeline"`
	Service   Service  `mapstructure:"service"`
	LogLevel  string   `mapstructure:"log_level" default:"info"`
	LogFormat string   `mapstructure:"log_format" default:"text"`
}

// configKeys lists every settable key. Viper only resolves environment
// variables for keys it knows about, so each one is bound explicitly;
// AutomaticEnv alone leaves env-only keys invisible to Unmarshal.
var configKeys = []string{
	"engine.socket",
	"engine.cache_name",
	"pipeline.python_version",
	"pipeline.matrix_versions",
	"pipeline.base_image",
	"pipeline.work_dir",
	"pipeline.cache_path",
	"service.port",
	"service.alias",
	"service.entrypoint",
	"service.probe_timeout",
	"log_level",
	"log_format",
}

// Load reads the configuration from the given file (optional) and from
// CONVEYOR_* environment variables, applying defaults for anything unset.
func Load(configFile string) (*Configuration, error) {
	v := viper.New()
	v.SetEnvPrefix("CONVEYOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding environment for %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	cfg := &Configuration{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("applying configuration defaults: %w", err)
	}
	if cfg.Service.Port < 1 || cfg.Service.Port > 65535 {
		return nil, fmt.Errorf("service port %d is outside the valid range 1-65535", cfg.Service.Port)
	}
	return cfg, nil
}

// BaseImageRef resolves the base toolchain image for a runtime version.
func (p Pipeline) BaseImageRef(version string) string {
	return fmt.Sprintf(p.BaseImage, version)
}
