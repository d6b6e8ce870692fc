package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Lock backend names accepted in configuration.
const (
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Lock struct {
		Backend     string `yaml:"backend"`
		TTLSeconds  int    `yaml:"ttl_seconds"`
		RetryMillis int    `yaml:"retry_millis"`
	} `yaml:"lock"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Booking struct {
		DefaultSlotMinutes    int `yaml:"default_slot_minutes"`
		RateLimitPerSecond    int `yaml:"rate_limit_per_second"`
		RateLimitBurst        int `yaml:"rate_limit_burst"`
		AdmissionTimeoutMills int `yaml:"admission_timeout_millis"`
	} `yaml:"booking"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/reservio.db"
	}
	if cfg.Lock.Backend == "" {
		cfg.Lock.Backend = LockBackendMemory
	}
	if cfg.Lock.Backend != LockBackendMemory && cfg.Lock.Backend != LockBackendRedis {
		return nil, fmt.Errorf("unknown lock backend %q", cfg.Lock.Backend)
	}
	if cfg.Lock.Backend == LockBackendRedis && cfg.Redis.Address == "" {
		return nil, fmt.Errorf("lock backend %q requires redis.address", cfg.Lock.Backend)
	}
	if cfg.Booking.DefaultSlotMinutes <= 0 {
		cfg.Booking.DefaultSlotMinutes = 60
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}
