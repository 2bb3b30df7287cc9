package config

import (
	"os"
	"time"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Server Server `yaml:"server"`
	Auth   Auth   `yaml:"auth"`
	Cache  Cache  `yaml:"cache"`
	Upload Upload `yaml:"upload"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Auth struct {
	Secret        string   `yaml:"secret"`
	TokenLifetime Duration `yaml:"tokenLifetime"`
}

// Duration accepts values like "30m" or "1h" in the config file.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Cache struct {
	// Backend selects "redis" (default) or "memcached".
	Backend string `yaml:"backend"`
	// EntityTTL is the backstop for single-entity views; they are also
	// invalidated precisely on every mutation.
	EntityTTL Duration `yaml:"entityTTL"`
	// ListTTL bounds staleness for list/search/history views whose key
	// space cannot be enumerated per mutation.
	ListTTL Duration `yaml:"listTTL"`
}

type Upload struct {
	Dir          string `yaml:"dir"`
	MaxSizeBytes int64  `yaml:"maxSizeBytes"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.Listen == "" {
		config.Server.Listen = ":8000"
	}
	if config.Cache.Backend == "" {
		config.Cache.Backend = "redis"
	}
	if config.Cache.EntityTTL == 0 {
		config.Cache.EntityTTL = Duration(time.Hour)
	}
	if config.Cache.ListTTL == 0 {
		config.Cache.ListTTL = Duration(5 * time.Minute)
	}
	if config.Auth.TokenLifetime == 0 {
		config.Auth.TokenLifetime = Duration(30 * time.Minute)
	}
	if config.Upload.Dir == "" {
		config.Upload.Dir = "uploads"
	}
	if config.Upload.MaxSizeBytes == 0 {
		config.Upload.MaxSizeBytes = 5 << 20
	}

	return config, nil
}
