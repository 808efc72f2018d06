package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	LogLevel   string        `mapstructure:"log_level"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	WriteWait  time.Duration `mapstructure:"write_wait"`
	SendBuffer int           `mapstructure:"send_buffer"`
	Secret     string        `mapstructure:"secret"`

	ServerVersion      string `mapstructure:"server_version"`
	BackpressurePolicy string `mapstructure:"backpressure_policy"`

	UploadDir              string        `mapstructure:"upload_dir"`
	PublicUploadPrefix     string        `mapstructure:"public_upload_prefix"`
	MaxUploadBytes         int64         `mapstructure:"max_upload_bytes"`
	DefaultDisplayDuration time.Duration `mapstructure:"default_display_duration"`
	TypingTimeout          time.Duration `mapstructure:"typing_timeout"`

	Chat        ChatConfig        `mapstructure:"chat"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Transcoder  TranscoderConfig  `mapstructure:"transcoder"`
}

type ChatConfig struct {
	RateLimit     int           `mapstructure:"rate_limit"`
	RateInterval  time.Duration `mapstructure:"rate_interval"`
	MaxMessageLen int           `mapstructure:"max_message_len"`
}

type CredentialsConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	Import  string `mapstructure:"import"`
}

type TranscoderConfig struct {
	Kind       string `mapstructure:"kind"`
	FFmpegPath string `mapstructure:"ffmpeg_path"`
	CRF        int    `mapstructure:"crf"`
	CPUUsed    int    `mapstructure:"cpu_used"`
}

var (
	ErrInvalidPort     = errors.New("port must be between 1 and 65535")
	ErrInvalidLogLevel = errors.New("log level must be one of error, warn, info, debug")
	ErrInvalidBackend  = errors.New("credentials backend must be file or badger")
	ErrInvalidKind     = errors.New("transcoder kind must be ffmpeg or none")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 3000)
	v.SetDefault("log_level", "info")
	v.SetDefault("static_path", "./public")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("secret", "change-me")
	v.SetDefault("server_version", "1.0.0")
	v.SetDefault("backpressure_policy", "kick")

	v.SetDefault("upload_dir", "./uploads/images")
	v.SetDefault("public_upload_prefix", "/uploads/images")
	v.SetDefault("max_upload_bytes", 20<<20)
	v.SetDefault("default_display_duration", "5s")
	v.SetDefault("typing_timeout", "3s")

	v.SetDefault("chat.rate_limit", 10)
	v.SetDefault("chat.rate_interval", "5s")
	v.SetDefault("chat.max_message_len", 2000)

	v.SetDefault("credentials.backend", "file")
	v.SetDefault("credentials.path", "api_keys.json")
	v.SetDefault("credentials.import", "")

	v.SetDefault("transcoder.kind", "ffmpeg")
	v.SetDefault("transcoder.ffmpeg_path", "ffmpeg")
	v.SetDefault("transcoder.crf", 40)
	v.SetDefault("transcoder.cpu_used", 6)
}

// BindFlags registers the command-line overrides on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.IntP("port", "p", 3000, "port number")
	fs.StringP("log-level", "l", "info", "minimum log level (error, warn, info, debug)")
	fs.String("config-env", "", "config file suffix, config/config.<env>.yaml")
}

// Load reads config/config.<env>.yaml, then RELAY_* environment variables,
// then the flags in fs that were set explicitly. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// PORT is honoured unprefixed as well.
	_ = v.BindEnv("port", "RELAY_PORT", "PORT")

	env := os.Getenv("CONFIG_ENV")
	if fs != nil {
		if f := fs.Lookup("port"); f != nil {
			if err := v.BindPFlag("port", f); err != nil {
				return nil, err
			}
		}
		if f := fs.Lookup("log-level"); f != nil {
			if err := v.BindPFlag("log_level", f); err != nil {
				return nil, err
			}
		}
		if f := fs.Lookup("config-env"); f != nil && f.Changed {
			env = f.Value.String()
		}
	}
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	switch c.LogLevel {
	case "error", "warn", "info", "debug":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	switch c.Credentials.Backend {
	case "file", "badger":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Credentials.Backend)
	}
	switch c.Transcoder.Kind {
	case "ffmpeg", "none":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, c.Transcoder.Kind)
	}
	if c.DefaultDisplayDuration < 0 {
		return fmt.Errorf("default_display_duration must not be negative")
	}
	return nil
}
