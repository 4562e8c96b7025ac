// Package config loads process configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port          string
	StoreDriver   string
	MongoURI      string
	MongoDatabase string

	JWTSecret    string
	UserTokenTTL time.Duration

	AllowedOrigins []string

	LogLevel  string
	LogFormat string

	TextbeltKey string
	Cloudinary  CloudinaryConfig

	// EnvFileLoaded is false when no .env file was found.
	EnvFileLoaded bool
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_PORT", "8080")
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "doctorcare")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRE", "30d")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("TEXTBELT_API_KEY", "")
	v.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	v.SetDefault("CLOUDINARY_API_KEY", "")
	v.SetDefault("CLOUDINARY_API_SECRET", "")
	v.SetDefault("CLOUDINARY_FOLDER", "doctorcare/doctors")
}

// Load reads .env (when present) and the environment.
func Load() (*Config, error) {
	loaded := godotenv.Load() == nil

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	cfg.EnvFileLoaded = loaded
	return cfg, nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:          strings.TrimSpace(v.GetString("API_PORT")),
		StoreDriver:   strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		MongoURI:      v.GetString("MONGO_URI"),
		MongoDatabase: v.GetString("MONGO_DATABASE"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFormat:     strings.ToLower(v.GetString("LOG_FORMAT")),
		TextbeltKey:   v.GetString("TEXTBELT_API_KEY"),
		Cloudinary: CloudinaryConfig{
			CloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
			APIKey:    v.GetString("CLOUDINARY_API_KEY"),
			APISecret: v.GetString("CLOUDINARY_API_SECRET"),
			Folder:    strings.Trim(v.GetString("CLOUDINARY_FOLDER"), "/"),
		},
	}

	for _, origin := range strings.Split(v.GetString("FRONTEND_URL"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	ttl, err := ParseTTL(v.GetString("JWT_EXPIRE"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRE: %w", err)
	}
	cfg.UserTokenTTL = ttl

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid API_PORT %q", c.Port)
	}
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return fmt.Errorf("MONGO_URI and MONGO_DATABASE are required for the mongo store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

// ParseTTL accepts Go durations ("12h") and whole days ("7d").
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("bad day count %q", s)
		}
		if int64(n) > math.MaxInt64/int64(24*time.Hour) {
			return 0, fmt.Errorf("day count %q out of range", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("non-positive duration %q", s)
	}
	return d, nil
}
