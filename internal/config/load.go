package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix = "SYNTHGEN"
	appName   = "synthgen"
)

// Load reads configuration from a file, env vars, and defaults.
func Load(path string) (*Config, error) {
	vp := viper.New()
	vp.SetEnvPrefix(envPrefix)
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()

	setDefaults(vp)

	resolved := resolveConfigPath(path)
	if resolved != "" {
		vp.SetConfigFile(resolved)
		if err := vp.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := vp.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	expandEnv(&cfg)
	applyPostLoadDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no run could succeed with.
func (c *Config) Validate() error {
	switch c.Output.Compression {
	case "gzip", "zstd":
	default:
		return fmt.Errorf("output.compression must be gzip or zstd, got %q", c.Output.Compression)
	}
	switch c.Output.Backend {
	case "local", "s3":
	default:
		return fmt.Errorf("output.backend must be local or s3, got %q", c.Output.Backend)
	}
	if c.Generator.Path == "" {
		return fmt.Errorf("generator.path is required")
	}
	if c.Compressor.Path == "" {
		return fmt.Errorf("compressor.path is required")
	}
	return nil
}

func resolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	if envPath := os.Getenv(envPrefix + "_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		appName + ".yaml",
		appName + ".yml",
		appName + ".toml",
		appName + ".json",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}

	configDir, err := os.UserConfigDir()
	if err == nil {
		base := filepath.Join(configDir, appName)
		for _, c := range candidates {
			p := filepath.Join(base, c)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

func setDefaults(vp *viper.Viper) {
	vp.SetDefault("global.log_level", "info")
	vp.SetDefault("global.log_format", "json")
	vp.SetDefault("global.scratch_dir", "")
	vp.SetDefault("global.lock_dir", "")
	vp.SetDefault("global.operation_timeout", "10m")
	vp.SetDefault("generator.path", "./synthetic-pcp-generator")
	vp.SetDefault("generator.timeout", "60s")
	vp.SetDefault("compressor.path", "xz")
	vp.SetDefault("compressor.args", []string{})
	vp.SetDefault("compressor.suffix", ".xz")
	vp.SetDefault("compressor.timeout", "60s")
	vp.SetDefault("output.dir", ".")
	vp.SetDefault("output.compression", "gzip")
	vp.SetDefault("output.backend", "local")
	vp.SetDefault("output.prefix", "")
}

func applyPostLoadDefaults(cfg *Config) {
	if cfg.Global.OperationTimeout == 0 {
		cfg.Global.OperationTimeout = 10 * time.Minute
	}
	if cfg.Generator.Timeout == 0 {
		cfg.Generator.Timeout = 60 * time.Second
	}
	if cfg.Compressor.Timeout == 0 {
		cfg.Compressor.Timeout = 60 * time.Second
	}
	if cfg.Compressor.Suffix == "" {
		cfg.Compressor.Suffix = ".xz"
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "."
	}
	cfg.Output.Compression = strings.ToLower(cfg.Output.Compression)
	cfg.Output.Backend = strings.ToLower(cfg.Output.Backend)
}

func expandEnv(cfg *Config) {
	cfg.Generator.Path = os.ExpandEnv(cfg.Generator.Path)
	// viper lowercases map keys; environment variable names are upper case.
	env := make(map[string]string, len(cfg.Generator.Env))
	for k, v := range cfg.Generator.Env {
		env[strings.ToUpper(k)] = os.ExpandEnv(v)
	}
	cfg.Generator.Env = env
	cfg.Output.Dir = os.ExpandEnv(cfg.Output.Dir)
	cfg.Output.S3.AccessKey = os.ExpandEnv(cfg.Output.S3.AccessKey)
	cfg.Output.S3.SecretKey = os.ExpandEnv(cfg.Output.S3.SecretKey)
	cfg.Output.S3.SessionToken = os.ExpandEnv(cfg.Output.S3.SessionToken)
	for i := range cfg.Notifications.Webhooks {
		cfg.Notifications.Webhooks[i].URL = os.ExpandEnv(cfg.Notifications.Webhooks[i].URL)
	}
}
