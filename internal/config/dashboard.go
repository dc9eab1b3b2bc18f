package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// DashboardConfig tunes the dashboard read endpoints.
type DashboardConfig struct {
	RevenueWindowMonths int    `mapstructure:"revenueWindowMonths"`
	MaxWindowMonths     int    `mapstructure:"maxWindowMonths"`
	Currency            string `mapstructure:"currency"`
}

func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		RevenueWindowMonths: 6,
		MaxWindowMonths:     24,
		Currency:            "USD",
	}
}

type DashboardConfigHolder struct {
	current atomic.Value // holds DashboardConfig
}

// NewStaticDashboardConfigHolder returns a holder pinned to cfg.
func NewStaticDashboardConfigHolder(cfg DashboardConfig) *DashboardConfigHolder {
	holder := &DashboardConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewDashboardConfigHolder(log *zap.Logger) (*DashboardConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("dashboard.config")

	v := viper.New()

	v.SetConfigName("dashboard")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/clientbase")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CLIENTBASE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultDashboardConfig()
	v.SetDefault("dashboard.revenueWindowMonths", defaults.RevenueWindowMonths)
	v.SetDefault("dashboard.maxWindowMonths", defaults.MaxWindowMonths)
	v.SetDefault("dashboard.currency", defaults.Currency)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg DashboardConfig
	if err := v.UnmarshalKey("dashboard", &cfg); err != nil {
		return nil, err
	}
	if err := validateDashboardConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticDashboardConfigHolder(cfg)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated DashboardConfig
		if err := v.UnmarshalKey("dashboard", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validateDashboardConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *DashboardConfigHolder) Get() DashboardConfig {
	if h == nil {
		return DefaultDashboardConfig()
	}
	cfg, ok := h.current.Load().(DashboardConfig)
	if !ok {
		return DefaultDashboardConfig()
	}
	return cfg
}

func validateDashboardConfig(cfg DashboardConfig) error {
	if cfg.RevenueWindowMonths <= 0 {
		return errors.New("dashboard.revenueWindowMonths must be positive")
	}
	if cfg.MaxWindowMonths < cfg.RevenueWindowMonths {
		return errors.New("dashboard.maxWindowMonths cannot be smaller than revenueWindowMonths")
	}
	if strings.TrimSpace(cfg.Currency) == "" {
		return errors.New("dashboard.currency cannot be empty")
	}
	return nil
}
