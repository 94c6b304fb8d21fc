package config

import "time"

// Config is the root configuration schema.
type Config struct {
	Global        GlobalConfig        `mapstructure:"global"`
	Generator     GeneratorConfig     `mapstructure:"generator"`
	Compressor    CompressorConfig    `mapstructure:"compressor"`
	Output        OutputConfig        `mapstructure:"output"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
}

type GlobalConfig struct {
	LogLevel         string        `mapstructure:"log_level"`
	LogFormat        string        `mapstructure:"log_format"` // json or console
	ScratchDir       string        `mapstructure:"scratch_dir"`
	LockDir          string        `mapstructure:"lock_dir"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

// GeneratorConfig describes the external program that writes the raw
// time-series unit.
type GeneratorConfig struct {
	Path    string            `mapstructure:"path"`
	Timeout time.Duration     `mapstructure:"timeout"`
	Env     map[string]string `mapstructure:"env"`
}

type CompressorConfig struct {
	Path    string        `mapstructure:"path"`
	Args    []string      `mapstructure:"args"`
	Suffix  string        `mapstructure:"suffix"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type OutputConfig struct {
	Dir         string  `mapstructure:"dir"`
	Compression string  `mapstructure:"compression"` // gzip, zstd
	Backend     string  `mapstructure:"backend"`     // local, s3
	Prefix      string  `mapstructure:"prefix"`
	S3          S3Store `mapstructure:"s3"`
}

type S3Store struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKey       string `mapstructure:"access_key"`
	SecretKey       string `mapstructure:"secret_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	ForcePathStyle  bool   `mapstructure:"force_path_style"`
	SessionToken    string `mapstructure:"session_token"`
	TLSInsecureSkip bool   `mapstructure:"tls_insecure_skip"`
}

type NotificationsConfig struct {
	Webhooks []WebhookConfig `mapstructure:"webhooks"`
}

type WebhookConfig struct {
	Name    string            `mapstructure:"name"`
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}
