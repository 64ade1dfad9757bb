package config

import (
	"errors"
	"fmt"
	"mangabuff-tracker/internal/components/telemetry"
	"mangabuff-tracker/internal/notify"
	"mangabuff-tracker/internal/scrapers/mangabuff"
	"mangabuff-tracker/pkg/configutil"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvEmail    = "MANGABUFF_MAIL"
	EnvPassword = "MANGABUFF_PASSWORD"
)

type ClientConfig struct {
	BaseUrl string `json:"base_url"`
	// go duration strings, ex. "2s"
	RequestDelay     string `json:"request_delay"`
	Timeout          string `json:"timeout"`
	MaxPages         int    `json:"max_pages"`
	UserAgent        string `json:"user_agent"`
	BypassCloudflare bool   `json:"bypass_cloudflare"`
}

type QueryConfig struct {
	Text string `json:"text"`
	Want bool   `json:"want"`
	Rank string `json:"rank"`
}

type WatchConfig struct {
	// cron specs, ex. "0 9 * * *"
	Schedules []string    `json:"schedules"`
	Location  string      `json:"location"`
	Query     QueryConfig `json:"query"`
}

type NotifyConfig struct {
	// "stdout" or "email"
	Kind string            `json:"kind"`
	Smtp notify.SmtpConfig `json:"smtp"`
	To   []string          `json:"to"`
}

type Config struct {
	Email     string           `json:"email"`
	Password  string           `json:"password"`
	Client    ClientConfig     `json:"client"`
	Database  string           `json:"database"`
	Watch     WatchConfig      `json:"watch"`
	Notify    NotifyConfig     `json:"notify"`
	Telemetry telemetry.Config `json:"telemetry"`
}

const (
	DefaultDatabase = ".mbtracker/history.db"
	DefaultLocation = "Europe/Moscow"
)

// Load reads the config at path (see configutil.ReadConfig), a missing file is not
// an error. Credentials missing from the file are taken from the environment,
// after loading a .env file in the working directory if there is one.
func Load(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	err = godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if cfg.Email == "" {
		cfg.Email = os.Getenv(EnvEmail)
	}
	if cfg.Password == "" {
		cfg.Password = os.Getenv(EnvPassword)
	}

	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Watch.Location == "" {
		cfg.Watch.Location = DefaultLocation
	}
	if cfg.Notify.Kind == "" {
		cfg.Notify.Kind = "stdout"
	}
	return cfg, nil
}

func parseDuration(name, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", name)
	}
	return d, nil
}

// ClientOptions converts the client section, unset values fall back to the client's
// defaults.
func (c Config) ClientOptions() (mangabuff.ClientOptions, error) {
	delay, err := parseDuration("request_delay", c.Client.RequestDelay, mangabuff.DefaultRequestDelay)
	if err != nil {
		return mangabuff.ClientOptions{}, err
	}
	timeout, err := parseDuration("timeout", c.Client.Timeout, mangabuff.DefaultTimeout)
	if err != nil {
		return mangabuff.ClientOptions{}, err
	}
	return mangabuff.ClientOptions{
		BaseUrl:          c.Client.BaseUrl,
		RequestDelay:     delay,
		Timeout:          timeout,
		MaxPages:         c.Client.MaxPages,
		UserAgent:        c.Client.UserAgent,
		BypassCloudflare: c.Client.BypassCloudflare,
	}, nil
}

// Query converts a query section, the rank may be given in either case.
func (q QueryConfig) Query() (mangabuff.Query, error) {
	query := mangabuff.Query{Text: q.Text, Want: q.Want}
	if q.Rank != "" {
		rank, err := mangabuff.ParseRank(q.Rank)
		if err != nil {
			return mangabuff.Query{}, err
		}
		query.Rank = rank
	}
	return query, nil
}
