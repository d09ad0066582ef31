package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr               string
		Port               string
		MaxJobPayloadBytes int64
	}
	Database struct {
		Driver  string
		URI     string
		Name    string
		Path    string
		Timeout time.Duration
	}
	Auth struct {
		JWTSecret string
		TokenTTL  time.Duration
	}
	Storage struct {
		Bucket        string
		KeyPrefix     string
		Region        string
		Endpoint      string
		PublicBaseURL string
		MaxLogoBytes  int64
	}
	AWS struct {
		Profile string
	}
	Feedback struct {
		UTCOffsetMinutes int
	}
	Log struct {
		Level  string
		Format string
	}
	CORS struct {
		AllowOrigins []string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("JOBBY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:5000")
	v.SetDefault("server.port", "")
	v.SetDefault("server.maxjobpayloadbytes", 1<<20)
	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.uri", "")
	v.SetDefault("database.name", "jobby")
	v.SetDefault("database.path", "data/jobby.db")
	v.SetDefault("database.timeout", 10*time.Second)
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttl", 30*24*time.Hour)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "company-logos")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.publicbaseurl", "")
	v.SetDefault("storage.maxlogobytes", 2<<20)
	v.SetDefault("aws.profile", "")
	v.SetDefault("feedback.utcoffsetminutes", 330)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("cors.alloworigins", []string{"*"})

	// names used by the original deployment
	_ = v.BindEnv("database.uri", "JOBBY_DATABASE_URI", "MONGO_URI", "MONGODB_URI")
	_ = v.BindEnv("auth.jwtsecret", "JOBBY_AUTH_JWTSECRET", "JWT_SECRET")
	_ = v.BindEnv("server.port", "JOBBY_SERVER_PORT", "PORT")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	if port := strings.TrimSpace(cfg.Server.Port); port != "" {
		host, _, _ := strings.Cut(cfg.Server.Addr, ":")
		cfg.Server.Addr = host + ":" + port
	}

	return cfg, nil
}

// Validate reports every setting the server cannot start without.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("auth jwt secret is required"))
	}
	switch c.Database.Driver {
	case DriverMongo:
		if strings.TrimSpace(c.Database.URI) == "" {
			errs = append(errs, errors.New("database uri is required for the mongo driver"))
		}
		if strings.TrimSpace(c.Database.Name) == "" {
			errs = append(errs, errors.New("database name is required for the mongo driver"))
		}
	case DriverSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			errs = append(errs, errors.New("database path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.Database.Driver))
	}
	if c.Feedback.UTCOffsetMinutes < -12*60 || c.Feedback.UTCOffsetMinutes > 14*60 {
		errs = append(errs, fmt.Errorf("feedback utc offset %d minutes is out of range", c.Feedback.UTCOffsetMinutes))
	}
	return errors.Join(errs...)
}

// FeedbackLocation is the fixed zone feedback timestamps are rendered in.
func (c Config) FeedbackLocation() *time.Location {
	minutes := c.Feedback.UTCOffsetMinutes
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	name := fmt.Sprintf("UTC%s%02d:%02d", sign, minutes/60, minutes%60)
	return time.FixedZone(name, c.Feedback.UTCOffsetMinutes*60)
}

// loadDotEnv exports the variables of a .env file in the working directory.
// Variables already present in the environment win.
func loadDotEnv() {
	dot := viper.New()
	dot.SetConfigFile(".env")
	dot.SetConfigType("env")
	if err := dot.ReadInConfig(); err != nil {
		return
	}

	// viper lowercases keys; environment names are upper case by convention
	for _, key := range dot.AllKeys() {
		name := strings.ToUpper(key)
		if _, exists := os.LookupEnv(name); exists {
			continue
		}
		_ = os.Setenv(name, dot.GetString(key))
	}
}
