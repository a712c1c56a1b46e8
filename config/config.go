// Package config loads the character list configuration from a file,
// CHARLIST_* environment variables and built-in defaults, in that order of
// precedence from lowest to highest: defaults, file, environment.
package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jmgilman/go/errors"
	"github.com/spf13/viper"

	"github.com/goliatone/go-character-list/cache"
	"github.com/goliatone/go-character-list/characterlist"
	"github.com/goliatone/go-character-list/characters"
	"github.com/goliatone/go-character-list/imagestore"
	"github.com/goliatone/go-character-list/internal/logging"
	"github.com/goliatone/go-character-list/memorycache"
)

const (
	// EnvPrefix prefixes every environment override, e.g. CHARLIST_API_BASE_URL.
	EnvPrefix = "CHARLIST"
	// FileName is the config file name without extension.
	FileName = "charlist"
)

// ListConfig configures the list controller.
type ListConfig struct {
	PerPage        int           `mapstructure:"per_page"`
	SearchDebounce time.Duration `mapstructure:"search_debounce"`
}

// Config is the full configuration tree.
type Config struct {
	API       characters.Config  `mapstructure:"api"`
	Memory    memorycache.Config `mapstructure:"memory"`
	PageCache cache.Config       `mapstructure:"page_cache"`
	Store     imagestore.Config  `mapstructure:"store"`
	List      ListConfig         `mapstructure:"list"`
	Logging   logging.Config     `mapstructure:"logging"`
}

// Default returns a working configuration against the public API.
func Default() Config {
	return Config{
		API:       characters.DefaultConfig(),
		Memory:    memorycache.DefaultConfig(),
		PageCache: cache.DefaultConfig(),
		Store:     imagestore.DefaultConfig(),
		List: ListConfig{
			PerPage:        characterlist.DefaultPerPage,
			SearchDebounce: characterlist.DefaultSearchDebounce,
		},
		Logging: logging.Config{
			Level:      "info",
			Format:     "console",
			TimeFormat: time.RFC3339,
		},
	}
}

// Load reads path, or charlist.{yaml,toml,json} from the user config dir and
// the working directory when path is empty. A missing default file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, FileName))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, errors.WithContext(
				errors.Wrap(err, errors.CodeInvalidConfig, "failed to read config file"),
				"path", v.ConfigFileUsed(),
			)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.WithContext(
			errors.Wrap(err, errors.CodeInvalidConfig, "failed to parse configuration"),
			"path", v.ConfigFileUsed(),
		)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout", d.API.Timeout)

	v.SetDefault("memory.cost_limit", d.Memory.CostLimit)
	v.SetDefault("memory.count_limit", d.Memory.CountLimit)

	v.SetDefault("page_cache.capacity", d.PageCache.Capacity)
	v.SetDefault("page_cache.num_shards", d.PageCache.NumShards)
	v.SetDefault("page_cache.ttl", d.PageCache.TTL)
	v.SetDefault("page_cache.eviction_percentage", d.PageCache.EvictionPercentage)
	v.SetDefault("page_cache.eviction_interval", d.PageCache.EvictionInterval)
	v.SetDefault("page_cache.missing_record_storage", d.PageCache.MissingRecordStorage)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dsn", d.Store.DSN)

	v.SetDefault("list.per_page", d.List.PerPage)
	v.SetDefault("list.search_debounce", d.List.SearchDebounce)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.time_format", d.Logging.TimeFormat)
}

// Validate checks every section. Failures carry errors.CodeInvalidConfig.
func (c Config) Validate() error {
	err := validation.Errors{
		"api": validation.ValidateStruct(&c.API,
			validation.Field(&c.API.BaseURL, validation.Required, validation.By(absoluteURL)),
			validation.Field(&c.API.Timeout, validation.Required, validation.Min(time.Millisecond)),
		),
		"memory": validation.ValidateStruct(&c.Memory,
			validation.Field(&c.Memory.CostLimit, validation.Required, validation.Min(int64(1))),
			validation.Field(&c.Memory.CountLimit, validation.Required, validation.Min(1)),
		),
		"page_cache": c.PageCache.Validate(),
		"store": validation.ValidateStruct(&c.Store,
			validation.Field(&c.Store.Driver, validation.Required, validation.In(imagestore.DriverSQLite, imagestore.DriverPostgres)),
			validation.Field(&c.Store.DSN, validation.Required),
		),
		"list": validation.ValidateStruct(&c.List,
			validation.Field(&c.List.PerPage, validation.Required, validation.Min(1)),
			validation.Field(&c.List.SearchDebounce, validation.Min(time.Duration(0))),
		),
		"logging": validation.ValidateStruct(&c.Logging,
			validation.Field(&c.Logging.Format, validation.In("json", "console")),
		),
	}.Filter()

	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidConfig, "invalid configuration")
	}
	return nil
}

var errNotAbsoluteURL = validation.NewError("validation_absolute_url", "must be an absolute URL")

func absoluteURL(value interface{}) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errNotAbsoluteURL
	}
	return nil
}
