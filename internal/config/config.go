package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "MEMORIA"

// Config holds all application configuration.
type Config struct {
	Game     GameConfig     `mapstructure:"game"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Store    StoreConfig    `mapstructure:"store"`
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Feedback FeedbackConfig `mapstructure:"feedback"`
}

// GameConfig controls new games.
type GameConfig struct {
	Difficulty   string        `mapstructure:"difficulty" validate:"required,oneof=easy medium hard"`
	ResolveDelay time.Duration `mapstructure:"resolve_delay" validate:"gte=0,lte=10s"`
	// Theme asks the LLM for a themed deck; empty uses the animal deck.
	Theme string `mapstructure:"theme" validate:"max=64"`
}

type ScoringConfig struct {
	Policy string `mapstructure:"policy" validate:"required,oneof=decayed decayed-penalty flat flat-penalty"`
}

type StoreConfig struct {
	// Path to the SQLite file; empty resolves via store.DefaultDBPath.
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=trace debug info warn error"`
	// File receives TUI logs; empty resolves via logging.DefaultLogPath.
	File string `mapstructure:"file"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required,hostname_port"`
}

type LLMConfig struct {
	Provider string `mapstructure:"provider" validate:"omitempty,oneof=anthropic openai gemini openrouter mock"`
	Model    string `mapstructure:"model"`
}

type FeedbackConfig struct {
	Sound bool `mapstructure:"sound"`
}

// LoadOptions controls where Load reads from.
type LoadOptions struct {
	// ConfigFile is an explicit YAML file. When set, it must exist.
	ConfigFile string
	// EnvFile is a dotenv file; defaults to ".env" in the working directory.
	EnvFile string
	// Flags maps config keys (e.g. "log.level") to command-line flags.
	// A flag overrides every other source only when it was set.
	Flags map[string]*pflag.Flag
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("game.difficulty", "easy")
	v.SetDefault("game.resolve_delay", "500ms")
	v.SetDefault("game.theme", "")
	v.SetDefault("scoring.policy", "decayed")
	v.SetDefault("store.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("feedback.sound", true)
}

// Default returns the configuration used when no source overrides anything.
func Default() *Config {
	return &Config{
		Game:     GameConfig{Difficulty: "easy", ResolveDelay: 500 * time.Millisecond},
		Scoring:  ScoringConfig{Policy: "decayed"},
		Log:      LogConfig{Level: "info"},
		Server:   ServerConfig{Addr: ":8080"},
		Feedback: FeedbackConfig{Sound: true},
	}
}

// Load resolves configuration from defaults, the config file, a dotenv
// file, MEMORIA_* environment variables and flags, in increasing priority.
func Load(opts LoadOptions) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := DefaultConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	for key, flag := range opts.Flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", flag.Name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Game.Difficulty = strings.ToLower(strings.TrimSpace(c.Game.Difficulty))
	c.Game.Theme = strings.TrimSpace(c.Game.Theme)
	c.Scoring.Policy = strings.ToLower(strings.TrimSpace(c.Scoring.Policy))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/memoria or ~/.config/memoria.
func DefaultConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "memoria"), nil
}

// loadEnvFile preloads a dotenv file without overriding variables that are
// already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
