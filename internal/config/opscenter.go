package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// OpsConfig carries the operational thresholds consumed by the control
// center. Values are static configuration, never computed at runtime.
type OpsConfig struct {
	TimeZoneLabel         string         `mapstructure:"timeZoneLabel"`
	TimeZoneOffsetMinutes int            `mapstructure:"timeZoneOffsetMinutes"`
	FetchTimeoutSeconds   int            `mapstructure:"fetchTimeoutSeconds"`
	PendingPaymentsAlert  int            `mapstructure:"pendingPaymentsAlert"`
	ActiveBookingsAlert   int            `mapstructure:"activeBookingsAlert"`
	HeartbeatThresholds   map[string]int `mapstructure:"heartbeatThresholds"` // kind -> minutes
}

func (c OpsConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

func DefaultOpsConfig() OpsConfig {
	return OpsConfig{
		TimeZoneLabel:         "Asia/Kolkata",
		TimeZoneOffsetMinutes: 330,
		FetchTimeoutSeconds:   5,
		PendingPaymentsAlert:  10,
		ActiveBookingsAlert:   50,
		HeartbeatThresholds: map[string]int{
			"cron-retry":      30,
			"payment-webhook": 120,
		},
	}
}

type OpsConfigHolder struct {
	current atomic.Value // holds OpsConfig
}

func NewOpsConfigHolder() (*OpsConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("opscenter")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/voyatra/config") // Volume-mounted config
	v.AddConfigPath("/etc/voyatra")            // System config
	v.AddConfigPath(".")                       // Current directory (dev mode)

	v.SetEnvPrefix("VOYATRA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultOpsConfig()
	v.SetDefault("opscenter.timeZoneLabel", defaults.TimeZoneLabel)
	v.SetDefault("opscenter.timeZoneOffsetMinutes", defaults.TimeZoneOffsetMinutes)
	v.SetDefault("opscenter.fetchTimeoutSeconds", defaults.FetchTimeoutSeconds)
	v.SetDefault("opscenter.pendingPaymentsAlert", defaults.PendingPaymentsAlert)
	v.SetDefault("opscenter.activeBookingsAlert", defaults.ActiveBookingsAlert)
	v.SetDefault("opscenter.heartbeatThresholds", defaults.HeartbeatThresholds)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg OpsConfig
	if err := v.UnmarshalKey("opscenter", &cfg); err != nil {
		return nil, err
	}
	if err := validateOpsConfig(cfg); err != nil {
		return nil, err
	}

	holder := &OpsConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated OpsConfig
		if err := v.UnmarshalKey("opscenter", &updated); err != nil {
			log.Printf("[opscenter-config] reload failed: %v", err)
			return
		}
		if err := validateOpsConfig(updated); err != nil {
			log.Printf("[opscenter-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[opscenter-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *OpsConfigHolder) Get() OpsConfig {
	return h.current.Load().(OpsConfig)
}

// Store replaces the current config. Test hook; production swaps go
// through the file watcher.
func (h *OpsConfigHolder) Store(cfg OpsConfig) {
	h.current.Store(cfg)
}

func validateOpsConfig(cfg OpsConfig) error {
	if cfg.FetchTimeoutSeconds <= 0 {
		return errors.New("opscenter.fetchTimeoutSeconds must be positive")
	}
	if cfg.PendingPaymentsAlert < 0 || cfg.ActiveBookingsAlert < 0 {
		return errors.New("opscenter alert thresholds cannot be negative")
	}
	if len(cfg.HeartbeatThresholds) == 0 {
		return errors.New("opscenter.heartbeatThresholds cannot be empty")
	}
	for kind, minutes := range cfg.HeartbeatThresholds {
		if strings.TrimSpace(kind) == "" || minutes <= 0 {
			return errors.New("opscenter.heartbeatThresholds entries must name a kind and a positive minute count")
		}
	}
	// A zero offset with no label means the civil zone could not be
	// derived; the day window resolver then falls back to a UTC day.
	if cfg.TimeZoneOffsetMinutes < -14*60 || cfg.TimeZoneOffsetMinutes > 14*60 {
		return errors.New("opscenter.timeZoneOffsetMinutes out of range")
	}
	return nil
}
