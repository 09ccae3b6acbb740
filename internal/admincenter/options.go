package admincenter

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Options contains the admin center configuration.
type Options struct {
	// Addr is the HTTP listen address.
	Addr string `json:"addr" mapstructure:"addr"`

	// Mode is the gin mode (debug, release, test).
	Mode string `json:"mode" mapstructure:"mode"`

	// JWTSecret signs and verifies bearer tokens.
	JWTSecret string `json:"jwt-secret" mapstructure:"jwt-secret"`

	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration `json:"token-ttl" mapstructure:"token-ttl"`

	// MySQLDSN selects the MySQL database. Empty falls back to SQLitePath.
	MySQLDSN string `json:"mysql-dsn" mapstructure:"mysql-dsn"`

	// SQLitePath is the embedded database file used when no MySQL DSN is
	// configured. ":memory:" keeps everything in process.
	SQLitePath string `json:"sqlite-path" mapstructure:"sqlite-path"`

	// RedisAddr enables the distributed policy watcher when non-empty.
	RedisAddr string `json:"redis-addr" mapstructure:"redis-addr"`

	// RedisPassword authenticates the watcher connection.
	RedisPassword string `json:"redis-password" mapstructure:"redis-password"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewOptions creates Options with default values.
func NewOptions() *Options {
	return &Options{
		Addr:            ":8080",
		Mode:            "release",
		TokenTTL:        24 * time.Hour,
		SQLitePath:      "admin-guard.db",
		ShutdownTimeout: 30 * time.Second,
	}
}

// AddFlags registers the option flags.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Addr, "addr", o.Addr, "HTTP listen address")
	fs.StringVar(&o.Mode, "mode", o.Mode, "gin mode: debug, release or test")
	fs.StringVar(&o.JWTSecret, "jwt-secret", o.JWTSecret, "secret used to sign bearer tokens")
	fs.DurationVar(&o.TokenTTL, "token-ttl", o.TokenTTL, "lifetime of issued tokens")
	fs.StringVar(&o.MySQLDSN, "mysql-dsn", o.MySQLDSN, "MySQL DSN; empty uses the embedded sqlite database")
	fs.StringVar(&o.SQLitePath, "sqlite-path", o.SQLitePath, "sqlite database path used without MySQL")
	fs.StringVar(&o.RedisAddr, "redis-addr", o.RedisAddr, "redis address for the policy watcher; empty disables it")
	fs.StringVar(&o.RedisPassword, "redis-password", o.RedisPassword, "redis password")
	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "graceful shutdown timeout")
}

// Load merges a config file and environment into the options. Flags bound
// on the command line keep precedence through viper.
func (o *Options) Load(configFile string, fs *pflag.FlagSet) error {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	v.SetEnvPrefix("ADMIN_GUARD")
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	if err := v.Unmarshal(o); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// Validate checks the options for fatal misconfiguration.
func (o *Options) Validate() error {
	if o.JWTSecret == "" {
		return fmt.Errorf("jwt-secret is required")
	}
	if o.MySQLDSN == "" && o.SQLitePath == "" {
		return fmt.Errorf("either mysql-dsn or sqlite-path must be set")
	}
	return nil
}
