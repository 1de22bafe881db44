package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/trustboard/internal/model"
)

// Version is the released version, set at build time
var Version = "v0.1.0"

var (
	cfgFile    string
	verbose    bool
	apiURL     string
	noColor    bool
	httpProxy  string
	httpsProxy string
)

// errReported marks a failure already shown to the user
var errReported = errors.New("failure already reported")

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "trustboard",
	Short: "Trustboard - health influencer trust leaderboard",
	Long: `Trustboard is a terminal client for the influencer trust backend.

It shows the trust leaderboard, drills into an influencer's claims and the
journals that verified, questioned or debunked them, and starts research
tasks that re-check an influencer's claims against scientific journals.

Trust scores are computed by the backend; this client only displays them.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command. Errors the user has already seen are
// reported through the exit code only.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of Trustboard.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "trustboard %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.trustboard/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "backend base URL (default: "+model.DefaultBaseURL+")")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	rootCmd.PersistentFlags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(viper.GetViper(), model.DefaultConfig())

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("output.no_color", rootCmd.PersistentFlags().Lookup("no-color"))
	_ = viper.BindPFlag("api.http_proxy", rootCmd.PersistentFlags().Lookup("http-proxy"))
	_ = viper.BindPFlag("api.https_proxy", rootCmd.PersistentFlags().Lookup("https-proxy"))

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".trustboard"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	bindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil && viper.GetBool("output.verbose") {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// bindEnv maps TRUSTBOARD_* variables onto config keys
// (TRUSTBOARD_API_BASE_URL, TRUSTBOARD_CACHE_STALE_TIME, ...)
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("TRUSTBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The short name wins over the dashboard's build-time variable
	_ = v.BindEnv("api.base_url", "TRUSTBOARD_API_URL", "NEXT_PUBLIC_API_URL")
}

// setDefaults registers every config key so env variables can override
// keys that appear in no config file
func setDefaults(v *viper.Viper, cfg *model.Config) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("api.user_agent", cfg.API.UserAgent)
	v.SetDefault("api.max_body_bytes", cfg.API.MaxBodyBytes)
	v.SetDefault("api.requests_per_second", cfg.API.RequestsPerSecond)
	v.SetDefault("api.burst", cfg.API.Burst)
	v.SetDefault("api.http_proxy", cfg.API.HTTPProxy)
	v.SetDefault("api.https_proxy", cfg.API.HTTPSProxy)
	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.stale_time", cfg.Cache.StaleTime)
	v.SetDefault("cache.gc_time", cfg.Cache.GCTime)
	v.SetDefault("cache.cleanup_interval", cfg.Cache.CleanupInterval)
	v.SetDefault("batch.workers", cfg.Batch.Workers)
	v.SetDefault("batch.verifies_per_second", cfg.Batch.VerifiesPerSecond)
	v.SetDefault("output.verbose", cfg.Output.Verbose)
	v.SetDefault("output.no_color", cfg.Output.NoColor)
}

// loadConfig resolves the effective configuration from v
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.API.BaseURL = strings.TrimSpace(cfg.API.BaseURL)
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = model.DefaultBaseURL
	}
	return cfg, nil
}
