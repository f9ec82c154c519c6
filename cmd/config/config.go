package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"dronefleet/internal/fleet/domain"

	"github.com/spf13/viper"
)

var loadConfigOnce sync.Once
var configInstance AppConfig

func LoadConfig() AppConfig {
	loadConfigOnce.Do(func() {
		viper.SetEnvPrefix("fleetctl")
		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.SetConfigName("fleetctl")
		viper.AddConfigPath("config")
		viper.AddConfigPath("/config")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "fleetctl"))
		}
		setDefaults()

		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				panic(fmt.Errorf("fatal error config file: %w", err))
			}
		}

		entities, err := parseEntityTypes(viper.GetStringMap("entities"))
		if err != nil {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}

		configInstance = AppConfig{
			General: GeneralConfig{
				LogLevel: viper.GetString("general.log_level"),
			},
			API: APIConfig{
				BaseURL: viper.GetString("api.base_url"),
				Timeout: viper.GetDuration("api.timeout"),
			},
			Session: SessionConfig{
				Backend: viper.GetString("session.backend"),
				DSN:     viper.GetString("session.dsn"),
			},
			Redis: RedisConfig{
				Addr:      viper.GetString("redis.addr"),
				Password:  viper.GetString("redis.password"),
				DB:        viper.GetInt("redis.db"),
				KeyPrefix: viper.GetString("redis.key_prefix"),
			},
			Cache: CacheConfig{
				ListTTL: viper.GetDuration("cache.list_ttl"),
			},
			Otel: OtelConfig{
				Endpoint: viper.GetString("otel.endpoint"),
			},
			Entities: entities,
		}
	})

	return configInstance
}

func setDefaults() {
	viper.SetDefault("general.log_level", "warn")
	viper.SetDefault("api.base_url", "http://localhost:3000/")
	viper.SetDefault("api.timeout", 10*time.Second)
	viper.SetDefault("session.backend", "sqlite")
	viper.SetDefault("session.dsn", defaultSessionFile())
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.key_prefix", "fleetctl:")
	viper.SetDefault("cache.list_ttl", 30*time.Second)
}

// defaultSessionFile keeps the login across invocations of the CLI.
func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "fleetctl-session.db")
	}
	return filepath.Join(dir, "fleetctl", "session.db")
}

// parseEntityTypes reads the optional "entities" section:
//
//	entities:
//	  drones:
//	    key: Drones
//	    api_path: /drones
//	    fields:
//	      - {name: name, label: Name, type: text}
//	      - {name: weight, label: Weight, type: number, required: false}
func parseEntityTypes(section map[string]any) ([]domain.EntityType, error) {
	keys := make([]string, 0, len(section))
	for key := range section {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	types := make([]domain.EntityType, 0, len(keys))
	for _, key := range keys {
		sub := viper.Sub("entities." + key)
		if sub == nil {
			return nil, fmt.Errorf("entity %q: expected a mapping", key)
		}

		var raw entityConfig
		if err := sub.Unmarshal(&raw); err != nil {
			return nil, fmt.Errorf("entity %q: %w", key, err)
		}

		entityType, err := raw.toEntityType(key)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", key, err)
		}
		types = append(types, entityType)
	}
	return types, nil
}

type entityConfig struct {
	// Key is the display key. viper lower-cases map keys, so it defaults to
	// the section name with its first letter upper-cased.
	Key     string        `mapstructure:"key"`
	APIPath string        `mapstructure:"api_path"`
	Fields  []fieldConfig `mapstructure:"fields"`
}

type fieldConfig struct {
	Name     string `mapstructure:"name"`
	Label    string `mapstructure:"label"`
	Type     string `mapstructure:"type"`
	Required *bool  `mapstructure:"required"`
}

func (c entityConfig) toEntityType(section string) (domain.EntityType, error) {
	key := c.Key
	if key == "" {
		key = strings.ToUpper(section[:1]) + section[1:]
	}
	apiPath := c.APIPath
	if apiPath == "" {
		apiPath = "/" + section
	}

	fields := make([]domain.FieldDefinition, 0, len(c.Fields))
	for _, f := range c.Fields {
		fieldType, err := domain.ParseFieldType(f.Type)
		if err != nil {
			return domain.EntityType{}, fmt.Errorf("field %q: %w", f.Name, err)
		}
		fields = append(fields, domain.NewFieldDefinition(f.Name, f.Label, fieldType, f.Required))
	}

	return domain.EntityType{
		Key:     domain.EntityKey(key),
		APIPath: apiPath,
		Fields:  fields,
	}, nil
}

type AppConfig struct {
	General  GeneralConfig
	API      APIConfig
	Session  SessionConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Otel     OtelConfig
	Entities []domain.EntityType
}

type GeneralConfig struct {
	LogLevel string
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	// Backend is one of memory, sqlite, postgres or redis
	Backend string
	DSN     string
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type CacheConfig struct {
	ListTTL time.Duration
}

type OtelConfig struct {
	// Endpoint of the OTLP collector. Telemetry export is off when empty.
	Endpoint string
}
