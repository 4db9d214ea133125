package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Sandbox   SandboxConfig   `koanf:"sandbox"`
	Log       LogConfig       `koanf:"log"`
	HTTP      HTTPConfig      `koanf:"http"`
	Router    RouterConfig    `koanf:"router"`
	Session   SessionConfig   `koanf:"session"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type SandboxConfig struct {
	// Root is the directory outside of which no file access is permitted.
	Root string `koanf:"root"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type HTTPConfig struct {
	Addr string `koanf:"addr"`
	// MaxBodyBytes bounds request bodies at the transport boundary.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

type RouterConfig struct {
	// CatalogPath and RulesPath are sandbox-relative document paths.
	CatalogPath string `koanf:"catalog_path"`
	RulesPath   string `koanf:"rules_path"`
}

type SessionConfig struct {
	Enabled bool   `koanf:"enabled"`
	DBPath  string `koanf:"db_path"`
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter"` // stdout, otlp, none
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

// Global k instance
var k = koanf.New(".")

func Load(path string) (*Config, error) {
	// Defaults
	k.Set("sandbox.root", ".")
	k.Set("log.level", "info")
	k.Set("log.format", "text")
	k.Set("http.addr", ":8080")
	k.Set("http.max_body_bytes", 1<<20)
	k.Set("router.catalog_path", "tool_definitions/q4.tools.yaml")
	k.Set("router.rules_path", "core/q4.router.yaml")
	k.Set("session.enabled", false)
	k.Set("session.db_path", "rolekit-sessions.db")
	k.Set("telemetry.exporter", "none")

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (ROLEKIT_SANDBOX_ROOT -> sandbox.root)
	if err := k.Load(env.Provider("ROLEKIT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "ROLEKIT_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
