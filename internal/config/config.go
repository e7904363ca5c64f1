package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the CLI needs at startup. Loaded once from
// defaults, an optional rangepull.yaml and RANGEPULL_* environment
// variables, then treated as immutable.
type Config struct {
	DataDir string        `mapstructure:"data_dir"`
	Auth    AuthConfig    `mapstructure:"auth"`
	API     APIConfig     `mapstructure:"api"`
	Browser BrowserConfig `mapstructure:"browser"`
}

type AuthConfig struct {
	TokenDir     string        `mapstructure:"token_dir"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	ClientID     string        `mapstructure:"client_id"`
	RedirectURI  string        `mapstructure:"redirect_uri"`
	AuthorizeURL string        `mapstructure:"authorize_url"`
	Scopes       []string      `mapstructure:"scopes"`
}

type APIConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type BrowserConfig struct {
	Headless     bool          `mapstructure:"headless"`
	LoginTimeout time.Duration `mapstructure:"login_timeout"`
	NavTimeout   time.Duration `mapstructure:"nav_timeout"`
}

// Load reads the configuration. A missing config file is fine; defaults
// plus environment variables are enough to run.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("rangepull")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "rangepull"))
		}
	}

	v.SetEnvPrefix("RANGEPULL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault("data_dir", "Data")

	v.SetDefault("auth.token_dir", filepath.Join(home, "tokens"))
	v.SetDefault("auth.token_ttl", 720*time.Hour)
	v.SetDefault("auth.client_id", "dr-web.4633fada-3b16-490f-8de7-2aa67158a1d6")
	v.SetDefault("auth.redirect_uri", "https://portal.trackmangolf.com/account/callback")
	v.SetDefault("auth.authorize_url", "https://login.trackmangolf.com/connect/authorize")
	v.SetDefault("auth.scopes", []string{
		"openid", "profile", "email", "offline_access",
		"https://auth.trackman.com/dr/cloud",
		"https://auth.trackman.com/authorization",
		"https://auth.trackman.com/proamevent",
	})

	v.SetDefault("api.endpoint", "https://api.trackmangolf.com/graphql")
	v.SetDefault("api.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36")
	v.SetDefault("api.timeout", 30*time.Second)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.login_timeout", 120*time.Second)
	v.SetDefault("browser.nav_timeout", 30*time.Second)
}
