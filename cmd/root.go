package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"rangepull/internal/api"
	"rangepull/internal/auth"
	"rangepull/internal/browser"
	"rangepull/internal/config"
	"rangepull/internal/tokencache"
)

var (
	cfgFile     string
	flagUser    string
	flagDataDir string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "rangepull",
	Short: "Download TrackMan range-practice sessions as CSV files",
	Long: `rangepull authenticates against the TrackMan golf service, lists your
range-practice activities, and saves per-shot measurement data as CSV
artifacts, one file per session and ball type, skipping anything
already on disk.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default rangepull.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "account username/email")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "export directory (default Data)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	return cfg, nil
}

// newClient wires the API client with its collaborators: token cache,
// browser authenticator and a session factory. Everything is passed by
// handle; there is no package-level state.
func newClient(cfg *config.Config) *api.Client {
	c := api.New(cfg.API.Endpoint, cfg.API.UserAgent, cfg.API.Timeout)
	c.Cache = tokencache.New(cfg.Auth.TokenDir, cfg.Auth.TokenTTL)
	c.Auth = &auth.Authenticator{
		ClientID:     cfg.Auth.ClientID,
		RedirectURI:  cfg.Auth.RedirectURI,
		AuthorizeURL: cfg.Auth.AuthorizeURL,
		Scopes:       cfg.Auth.Scopes,
		LoginTimeout: cfg.Browser.LoginTimeout,
	}
	c.NewSession = func() (browser.Session, error) {
		return browser.NewChromeSession(cfg.Browser.Headless, cfg.Browser.NavTimeout)
	}
	return c
}

// resolveUser picks the account to operate on: the --user flag if set,
// otherwise the sole cached user, otherwise empty.
func resolveUser(cache *tokencache.Cache) string {
	if flagUser != "" {
		return flagUser
	}
	names := cache.Usernames()
	if len(names) == 1 {
		return names[0]
	}
	if len(names) > 1 {
		fmt.Println("Multiple saved users; pick one with --user:")
		for _, n := range names {
			fmt.Printf("  %s\n", n)
		}
	}
	return ""
}
