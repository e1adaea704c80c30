// Package config defines the configuration structure for conveyor.
//
// Configuration is organized into logical sections (Engine, Pipeline,
// Service) plus top-level logging settings. Defaults are applied with
// creasty/defaults and values are loaded with viper from an optional config
// file and CONVEYOR_* environment variables.
//
// # Engine Configuration
//
//	┌────────────┬──────────────────────────────────────────┬─────────────────────────────┐
//	│ Field      │ Default                                  │ Description                 │
//	├────────────┼──────────────────────────────────────────┼─────────────────────────────┤
//	│ Socket     │ unix:///run/user/1000/podman/podman.sock │ Podman API socket URI       │
//	│ CacheName  │ conveyor-uv-cache                        │ Dependency cache volume     │
//	└────────────┴──────────────────────────────────────────┴─────────────────────────────┘
//
// # Pipeline Configuration
//
//	┌────────────────┬─────────────────────────────────────────┬──────────────────────────────┐
//	│ Field          │ Default                                 │ Description                  │
//	├────────────────┼─────────────────────────────────────────┼──────────────────────────────┤
//	│ PythonVersion  │ 3.12                                    │ Default runtime version     │
//	│ MatrixVersions │ 3.10,3.11,3.12                          │ Comma-separated matrix list │
//	│ BaseImage      │ ghcr.io/astral-sh/uv:python%s-bookworm- │ Base toolchain image,       │
//	│                │ slim                                    │ %s = runtime version        │
//	│ WorkDir        │ /app                                    │ In-container source path    │
//	│ CachePath      │ /root/.cache/uv                         │ Cache mount point           │
//	└────────────────┴─────────────────────────────────────────┴──────────────────────────────┘
//
// # Service Configuration
//
//	┌──────────────┬────────────────────────┬───────────────────────────────┐
//	│ Field        │ Default                │ Description                   │
//	├──────────────┼────────────────────────┼───────────────────────────────┤
//	│ Port         │ 8000                   │ Exposed service port          │
//	│ Alias        │ api                    │ Network alias for bindings    │
//	│ Entrypoint   │ python -m hello_world  │ Service entry command         │
//	│ ProbeTimeout │ 1s                     │ Per-request probe timeout     │
//	└──────────────┴────────────────────────┴───────────────────────────────┘
//
// # Usage Example
//
//	cfg, err := config.Load("")
//	if err != nil { ... }
//	zap.S().Debugw("configuration loaded", "socket", cfg.Engine.Socket)
package config
