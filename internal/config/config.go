// Package config handles application configuration from the environment,
// an optional .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // zone names resolve in images without a zoneinfo database

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/randytsao24/routemix/internal/fare"
	"github.com/randytsao24/routemix/internal/models"
	"github.com/randytsao24/routemix/internal/planner"
	"github.com/randytsao24/routemix/internal/scenario"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	Env         string
	HTTPTimeout time.Duration

	AMapAPIKey  string
	AMapBaseURL string
	AMapCity    string

	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string

	AlertsFeedURL string
	StationsFile  string
	TimeZone      string

	Fares       fare.Table
	Planner     planner.Settings
	HubKeywords []string
}

var defaults = map[string]any{
	"PORT":                       "3000",
	"ENV":                        "development",
	"HTTP_TIMEOUT_SECONDS":       10,
	"AMAP_API_KEY":               "",
	"AMAP_BASE_URL":              "https://restapi.amap.com",
	"AMAP_CITY":                  "北京",
	"CACHE_TTL_SECONDS":          300,
	"REDIS_ADDR":                 "",
	"REDIS_PASSWORD":             "",
	"ALERTS_FEED_URL":            "",
	"STATIONS_FILE":              "data/stations.txt",
	"TIME_ZONE":                  "Asia/Shanghai",
	"CURRENCY_SYMBOL":            "¥",
	"FARE_BASE":                  13.0,
	"FARE_FREE_KM":               3.0,
	"FARE_PER_KM":                2.3,
	"FARE_PER_MINUTE":            0.5,
	"FARE_PEAK_MULTIPLIER":       1.3,
	"FARE_LATE_NIGHT_MULTIPLIER": 1.5,
	"TAXI_WAIT_MINUTES":          5.0,
	"HYBRID_STATION_LIMIT":       5,
	"BOTH_TAXI_STATION_LIMIT":    2,
	"MIN_TAXI_LEG_METERS":        2000.0,
	"MAX_HYBRID_CANDIDATES":      10,
	"TRANSIT_KEEP":               3,
	"MAX_RESULTS":                10,
	"PROVIDER_FANOUT":            4,
	"HUB_KEYWORDS":               strings.Join(scenario.DefaultHubKeywords, ","),
}

// Load reads configuration with sensible defaults. Values come from, in
// order of precedence: the environment, a .env file in the working
// directory, and the file named by CONFIG_FILE.
func Load() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	return &Config{
		Port:        v.GetString("PORT"),
		Env:         v.GetString("ENV"),
		HTTPTimeout: time.Duration(v.GetInt("HTTP_TIMEOUT_SECONDS")) * time.Second,

		AMapAPIKey:  v.GetString("AMAP_API_KEY"),
		AMapBaseURL: v.GetString("AMAP_BASE_URL"),
		AMapCity:    v.GetString("AMAP_CITY"),

		CacheTTL:      time.Duration(v.GetInt("CACHE_TTL_SECONDS")) * time.Second,
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),

		AlertsFeedURL: v.GetString("ALERTS_FEED_URL"),
		StationsFile:  v.GetString("STATIONS_FILE"),
		TimeZone:      v.GetString("TIME_ZONE"),

		Fares: fare.Table{
			BaseFare:      v.GetFloat64("FARE_BASE"),
			FreeKm:        v.GetFloat64("FARE_FREE_KM"),
			PerKmRate:     v.GetFloat64("FARE_PER_KM"),
			PerMinuteRate: v.GetFloat64("FARE_PER_MINUTE"),
			Multipliers: map[models.Scenario]float64{
				models.ScenarioPeak:      v.GetFloat64("FARE_PEAK_MULTIPLIER"),
				models.ScenarioLateNight: v.GetFloat64("FARE_LATE_NIGHT_MULTIPLIER"),
			},
		},
		Planner: planner.Settings{
			HybridStationLimit:   v.GetInt("HYBRID_STATION_LIMIT"),
			BothTaxiStationLimit: v.GetInt("BOTH_TAXI_STATION_LIMIT"),
			MinTaxiLegMeters:     v.GetFloat64("MIN_TAXI_LEG_METERS"),
			MaxHybridCandidates:  v.GetInt("MAX_HYBRID_CANDIDATES"),
			TransitKeep:          v.GetInt("TRANSIT_KEEP"),
			MaxResults:           v.GetInt("MAX_RESULTS"),
			TaxiWaitMinutes:      v.GetFloat64("TAXI_WAIT_MINUTES"),
			FanOut:               v.GetInt("PROVIDER_FANOUT"),
			Currency:             v.GetString("CURRENCY_SYMBOL"),
		},
		HubKeywords: splitList(v.GetString("HUB_KEYWORDS")),
	}, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// HasAMap returns true if a mapping-provider key is configured.
func (c *Config) HasAMap() bool {
	return c.AMapAPIKey != ""
}

// Location resolves the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT must be set"))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT_SECONDS must be positive"))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, errors.New("CACHE_TTL_SECONDS must not be negative"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("TIME_ZONE: %w", err))
	}

	f := c.Fares
	if f.BaseFare < 0 || f.FreeKm < 0 || f.PerKmRate < 0 || f.PerMinuteRate < 0 {
		errs = append(errs, errors.New("fare constants must not be negative"))
	}
	for sc, m := range f.Multipliers {
		if m <= 0 {
			errs = append(errs, fmt.Errorf("%s fare multiplier must be positive", sc))
		}
	}

	p := c.Planner
	limits := map[string]int{
		"HYBRID_STATION_LIMIT":    p.HybridStationLimit,
		"BOTH_TAXI_STATION_LIMIT": p.BothTaxiStationLimit,
		"MAX_HYBRID_CANDIDATES":   p.MaxHybridCandidates,
		"TRANSIT_KEEP":            p.TransitKeep,
		"MAX_RESULTS":             p.MaxResults,
		"PROVIDER_FANOUT":         p.FanOut,
	}
	for key, value := range limits {
		if value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", key))
		}
	}
	if p.MinTaxiLegMeters < 0 || p.TaxiWaitMinutes < 0 {
		errs = append(errs, errors.New("MIN_TAXI_LEG_METERS and TAXI_WAIT_MINUTES must not be negative"))
	}

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
