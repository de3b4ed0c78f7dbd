package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const envPrefix = "SW"

var (
	ErrMissingVariable = errors.New("required variable not specified or contains an empty string")
	ErrInvalidValue    = errors.New("invalid configuration value")
)

// requiredKeys must be present either in the environment or in the config file.
var requiredKeys = []string{
	"LOGIN_PAGE",
	"EMAIL",
	"PASSWORD",
	"PRODUCT_PAGE",
	"TELEGRAM_TOKEN",
	"TELEGRAM_CHAT_ID",
	"COMPANY_NAME",
}

type Config struct {
	Env          string // Env is the current environment: local, development, production.
	CompanyName  string
	StoragePath  string
	LogFile      string
	NotifyPolicy string
	Location     *time.Location
	// Excluded holds product titles that are never reported.
	Excluded []string

	Site    Site
	Tg      Telegram
	Poll    Poll
	Browser Browser
}

type Site struct {
	LoginURL     string
	CatalogURL   string
	Email        string
	Password     string
	MarkerCookie string // MarkerCookie is the name prefix of the logged-in cookie.
}

type Telegram struct {
	Token   string        // Token is an unique telegram bot token.
	ChatID  int64         // ChatID receives every alert.
	Timeout time.Duration // Timeout is a poller timeout duration.
}

type Poll struct {
	Interval      time.Duration
	MaxRecoveries int
}

type Browser struct {
	Headless         bool
	UserAgent        string
	LoginTimeout     time.Duration
	ChallengeTimeout time.Duration
	ElementTimeout   time.Duration
}

// MustLoad loads the configuration and panics if it is incomplete.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load reads the configuration from SW_* environment variables and, when
// SW_CONFIG_PATH is set, from a YAML file. Environment variables win.
func Load() (*Config, error) {
	vpr := viper.New()

	// Automatically binds environment variables to config keys
	vpr.SetEnvPrefix(envPrefix)
	vpr.AutomaticEnv()

	// optional args
	vpr.SetDefault("ENV", "production")
	vpr.SetDefault("TELEGRAM_TIMEOUT", "15s")
	vpr.SetDefault("POLL_INTERVAL", "60s")
	vpr.SetDefault("LOGIN_TIMEOUT", "10s")
	vpr.SetDefault("CHALLENGE_TIMEOUT", "3s")
	vpr.SetDefault("ELEMENT_TIMEOUT", "10s")
	vpr.SetDefault("MAX_RECOVERIES", 5)
	vpr.SetDefault("NOTIFY_POLICY", "always")
	vpr.SetDefault("STORAGE_PATH", "stock-watch.db")
	vpr.SetDefault("HEADLESS", true)
	vpr.SetDefault("TIMEZONE", "Local")
	vpr.SetDefault("MARKER_COOKIE", "wordpress_logged_in_")

	if path := vpr.GetString("CONFIG_PATH"); path != "" {
		vpr.SetConfigFile(path)
		if err := vpr.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var missing []string
	for _, key := range requiredKeys {
		if strings.TrimSpace(vpr.GetString(key)) == "" {
			missing = append(missing, envPrefix+"_"+key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingVariable, strings.Join(missing, ", "))
	}

	chatID, err := cast.ToInt64E(vpr.Get("TELEGRAM_CHAT_ID"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s_TELEGRAM_CHAT_ID: %w", ErrInvalidValue, envPrefix, err)
	}

	loc, err := time.LoadLocation(vpr.GetString("TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s_TIMEZONE: %w", ErrInvalidValue, envPrefix, err)
	}

	excluded, err := excludedProducts(vpr.Get("EXCLUDED_PRODUCTS"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s_EXCLUDED_PRODUCTS: %w", ErrInvalidValue, envPrefix, err)
	}

	return &Config{
		Env:          vpr.GetString("ENV"),
		CompanyName:  vpr.GetString("COMPANY_NAME"),
		StoragePath:  vpr.GetString("STORAGE_PATH"),
		LogFile:      vpr.GetString("LOG_FILE"),
		NotifyPolicy: vpr.GetString("NOTIFY_POLICY"),
		Location:     loc,
		Excluded:     excluded,
		Site: Site{
			LoginURL:     vpr.GetString("LOGIN_PAGE"),
			CatalogURL:   vpr.GetString("PRODUCT_PAGE"),
			Email:        vpr.GetString("EMAIL"),
			Password:     vpr.GetString("PASSWORD"),
			MarkerCookie: vpr.GetString("MARKER_COOKIE"),
		},
		Tg: Telegram{
			Token:   vpr.GetString("TELEGRAM_TOKEN"),
			ChatID:  chatID,
			Timeout: vpr.GetDuration("TELEGRAM_TIMEOUT"),
		},
		Poll: Poll{
			Interval:      vpr.GetDuration("POLL_INTERVAL"),
			MaxRecoveries: vpr.GetInt("MAX_RECOVERIES"),
		},
		Browser: Browser{
			Headless:         vpr.GetBool("HEADLESS"),
			UserAgent:        vpr.GetString("USER_AGENT"),
			LoginTimeout:     vpr.GetDuration("LOGIN_TIMEOUT"),
			ChallengeTimeout: vpr.GetDuration("CHALLENGE_TIMEOUT"),
			ElementTimeout:   vpr.GetDuration("ELEMENT_TIMEOUT"),
		},
	}, nil
}

// excludedProducts accepts a ";"-separated string (environment) or a list (YAML).
func excludedProducts(raw any) ([]string, error) {
	var titles []string
	switch value := raw.(type) {
	case nil:
		return nil, nil
	case string:
		titles = strings.Split(value, ";")
	default:
		list, err := cast.ToStringSliceE(value)
		if err != nil {
			return nil, err
		}
		titles = list
	}

	var excluded []string
	for _, title := range titles {
		if title = strings.TrimSpace(title); title != "" {
			excluded = append(excluded, title)
		}
	}

	return excluded, nil
}
