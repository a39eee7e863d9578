// Package config loads settings from defaults, an optional YAML file, a .env
// file and BIRDQUIZ_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/birdquiz/birdquiz/internal/quiz"
	"github.com/birdquiz/birdquiz/internal/scoring"
)

// EnvPrefix prefixes every environment override, e.g. BIRDQUIZ_JWT_SECRET.
const EnvPrefix = "BIRDQUIZ"

// MinReleaseSecretLen is the shortest JWT secret accepted in release mode.
const MinReleaseSecretLen = 32

type Config struct {
	Mode      string          `mapstructure:"mode"` // "debug" or "release"
	DB        DBConfig        `mapstructure:"db"`
	Server    ServerConfig    `mapstructure:"server"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Quiz      QuizConfig      `mapstructure:"quiz"`
	Log       LogConfig       `mapstructure:"log"`
}

type DBConfig struct {
	// Path is the SQLite file. Empty means store.DefaultDBPath.
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// TTL returns the token lifetime.
func (c JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpireHours) * time.Hour
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type QuizConfig struct {
	QuestionCount int    `mapstructure:"question_count"`
	ScoringPolicy string `mapstructure:"scoring_policy"`
	Difficulty    string `mapstructure:"difficulty"`
	// Seed fixes the question sampler. 0 seeds from the clock.
	Seed       uint64        `mapstructure:"seed"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// Policy returns the validated scoring policy.
func (c QuizConfig) Policy() scoring.Policy {
	p, err := scoring.ParsePolicy(c.ScoringPolicy)
	if err != nil {
		return scoring.DefaultPolicy
	}
	return p
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "debug")
	v.SetDefault("db.path", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("rate_limit.requests_per_second", 5.0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("quiz.question_count", 10)
	v.SetDefault("quiz.scoring_policy", string(scoring.DefaultPolicy))
	v.SetDefault("quiz.difficulty", string(quiz.DifficultyMixed))
	v.SetDefault("quiz.seed", 0)
	v.SetDefault("quiz.session_ttl", 30*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
}

// Options selects the files Load reads. Empty fields use the defaults.
type Options struct {
	// ConfigFile is an explicit YAML file; it must exist when set.
	// Otherwise birdquiz.yaml is searched in the working directory and
	// $XDG_CONFIG_HOME/birdquiz.
	ConfigFile string

	// EnvFile is loaded into the process environment when present.
	// Defaults to ".env".
	EnvFile string
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("birdquiz")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "birdquiz"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if _, err := scoring.ParsePolicy(c.Quiz.ScoringPolicy); err != nil {
		errs = append(errs, fmt.Errorf("quiz.scoring_policy: %w", err))
	}
	if _, err := quiz.ParseDifficulty(c.Quiz.Difficulty); err != nil {
		errs = append(errs, fmt.Errorf("quiz.difficulty: %w", err))
	}
	if c.Quiz.QuestionCount <= 0 {
		errs = append(errs, fmt.Errorf("quiz.question_count must be positive, got %d", c.Quiz.QuestionCount))
	}
	if c.Mode == "release" && len(c.JWT.Secret) < MinReleaseSecretLen {
		errs = append(errs, fmt.Errorf("jwt.secret is too short (%d chars), must be at least %d in release mode",
			len(c.JWT.Secret), MinReleaseSecretLen))
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("rate_limit values must not be negative"))
	}
	return errors.Join(errs...)
}
