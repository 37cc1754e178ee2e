package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/emzola/librarian/internal/jsonlog"
	"github.com/emzola/librarian/internal/validator"
	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Decode reads the configuration file named by the -config flag, if any, and
// overlays environment variables and defaults.
func Decode() (Config, error) {
	var path string
	flag.StringVar(&path, "config", os.Getenv("CONFIG"), "path to a YAML configuration file")
	flag.Parse()
	return Load(path)
}

// Load builds a Config from the YAML file at path (skipped when empty), the
// environment and the declared defaults, then validates it.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, err
		}
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the application cannot run with.
func (c Config) Validate() error {
	v := validator.New()
	v.Check(c.Server.Port > 0 && c.Server.Port <= 65535, "server.port", "must be between 1 and 65535")
	v.Check(validator.In(c.Storage.Driver, DriverPostgres, DriverMemory), "storage.driver", "must be either postgres or memory")
	if c.Storage.Driver == DriverPostgres {
		v.Check(c.Database.DSN != "", "database.dsn", "must be provided")
	}
	v.Check(c.Pagination.PageSize > 0 && c.Pagination.PageSize <= 100, "pagination.page_size", "must be between 1 and 100")
	v.Check(c.Library.TokenTTL > 0, "library.token_ttl", "must be greater than zero")
	_, err := time.LoadLocation(c.Library.Timezone)
	v.Check(err == nil, "library.timezone", "must be a valid IANA time zone")
	_, err = jsonlog.ParseLevel(c.Log.Level)
	v.Check(err == nil, "log.level", "must be one of DEBUG, INFO, ERROR, FATAL, OFF")
	if c.Staff.Email != "" {
		v.Check(len(c.Staff.Password) >= 8, "staff.password", "must be at least 8 bytes long")
	}
	if c.Limiter.Enabled {
		v.Check(c.Limiter.RPS > 0, "limiter.rps", "must be greater than zero")
		v.Check(c.Limiter.Burst > 0, "limiter.burst", "must be greater than zero")
	}
	if v.Valid() {
		return nil
	}
	keys := make([]string, 0, len(v.Errors))
	for k := range v.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, k+" "+v.Errors[k])
	}
	return errors.New("config: " + strings.Join(msgs, "; "))
}
