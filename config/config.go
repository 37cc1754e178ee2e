package config

import (
	"time"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config defines the app configuration.
type Config struct {
	Server struct {
		Port int    `yaml:"port" env:"PORT" env-default:"4000"`
		Env  string `yaml:"env" env:"ENV" env-default:"development"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level" env:"LOGLEVEL" env-default:"INFO"`
	} `yaml:"log"`
	Storage struct {
		Driver string `yaml:"driver" env:"STORAGEDRIVER" env-default:"postgres"`
	} `yaml:"storage"`
	Database struct {
		DSN          string        `yaml:"dsn" env:"DSN"`
		MaxOpenConns int           `yaml:"max_open_conns" env:"MAXOPENCONNS" env-default:"25"`
		MaxIdleConns int           `yaml:"max_idle_conns" env:"MAXIDLECONNS" env-default:"25"`
		MaxIdleTime  time.Duration `yaml:"max_idle_time" env:"MAXIDLETIME" env-default:"15m"`
	} `yaml:"database"`
	SMTP struct {
		Host     string `yaml:"host" env:"SMTPHOST"`
		Port     int    `yaml:"port" env:"SMTPPORT" env-default:"25"`
		Username string `yaml:"username" env:"SMTPUSERNAME"`
		Password string `yaml:"password" env:"SMTPPASSWORD"`
		Sender   string `yaml:"sender" env:"SMTPSENDER" env-default:"Librarian <no-reply@librarian.local>"`
	} `yaml:"smtp"`
	S3 struct {
		AccessKeyID     string `yaml:"access_key_id" env:"ACCESSKEYID"`
		SecretAccessKey string `yaml:"secret_access_key" env:"SECRETACCESSKEY"`
		Region          string `yaml:"region" env:"REGION"`
		Bucket          string `yaml:"bucket" env:"BUCKET"`
	} `yaml:"s3"`
	Limiter struct {
		RPS     float64 `yaml:"rps" env:"RPS" env-default:"2"`
		Burst   int     `yaml:"burst" env:"BURST" env-default:"4"`
		Enabled bool    `yaml:"enabled" env:"LENABLED"`
	} `yaml:"limiter"`
	Cors struct {
		TrustedOrigins []string `yaml:"trusted_origins" env:"TRUSTEDORIGINS"`
	} `yaml:"cors"`
	Metrics struct {
		Enabled bool `yaml:"enabled" env:"MENABLED"`
	} `yaml:"metrics"`
	BasicAuth struct {
		Username string `yaml:"username" env:"USERNAME"`
		Password string `yaml:"password" env:"PASSWORD"`
	} `yaml:"basic_auth"`
	Pagination struct {
		PageSize int `yaml:"page_size" env:"PAGESIZE" env-default:"20"`
	} `yaml:"pagination"`
	Library struct {
		Timezone string        `yaml:"timezone" env:"TIMEZONE" env-default:"UTC"`
		TokenTTL time.Duration `yaml:"token_ttl" env:"TOKENTTL" env-default:"24h"`
	} `yaml:"library"`
	Staff struct {
		Name     string `yaml:"name" env:"STAFFNAME" env-default:"Librarian"`
		Email    string `yaml:"email" env:"STAFFEMAIL"`
		Password string `yaml:"password" env:"STAFFPASSWORD"`
	} `yaml:"staff"`
}

// Location returns the time zone the library's calendar days are counted in.
// Validate guarantees the zone name loads.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Library.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
