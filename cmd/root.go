package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/zhubert/parley/internal/api"
	"github.com/zhubert/parley/internal/app"
	"github.com/zhubert/parley/internal/auth"
	"github.com/zhubert/parley/internal/config"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/store"
)

var (
	debugMode             bool
	quietMode             bool
	apiURLFlag            string
	tokenFlag             string
	version, commit, date string
)

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Terminal client for a conversational assistant",
	Long: `Parley is a terminal chat client for a conversational assistant service.
Conversations live on the service; parley lists them, opens one at a time,
and sends text or images to it.`,
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Reduce logging to info level only")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Conversation service base URL (overrides config and "+config.EnvAPIURL+")")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "Bearer token for this run (overrides the stored token and "+config.EnvToken+")")
}

func initConfig() {
	if quietMode {
		logger.SetDebug(false)
	} else if debugMode {
		logger.SetDebug(true)
	}
}

// Execute runs the root command
func Execute() error {
	// Set version dynamically
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
	return rootCmd.ExecuteContext(context.Background())
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("parley %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("parley %s\n", version)
}

// loadConfig loads the config and applies --api-url.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if apiURLFlag != "" {
		if err := cfg.OverrideAPIURL(apiURLFlag); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// resolveToken returns --token, or else the environment or stored token.
func resolveToken() (string, error) {
	if tokenFlag != "" {
		return tokenFlag, nil
	}
	return config.LoadToken()
}

// connect builds the service client from the config and token.
func connect() (*config.Config, *api.Client, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, "", err
	}
	token, err := resolveToken()
	if err != nil {
		return nil, nil, "", err
	}
	client, err := api.New(cfg.GetAPIURL(), token)
	if err != nil {
		return nil, nil, "", err
	}
	return cfg, client, token, nil
}

// identityOf reads a display label from token, warning on stderr when
// the token has expired.
func identityOf(token string) string {
	info, ok := auth.Inspect(token)
	if !ok {
		return ""
	}
	if info.Expired(time.Now()) {
		fmt.Fprintf(os.Stderr, "Warning: token expired at %s; run 'parley login' if requests fail\n", info.ExpiresAt.Format(time.RFC1123))
		logger.WithComponent("cmd").Warn("token expired", "expiresAt", info.ExpiresAt)
	}
	return info.Label()
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, client, token, err := connect()
	if err != nil {
		return err
	}
	return runProgram(cmd.Context(), cfg, client, identityOf(token))
}

// runProgram runs the TUI against s until the user quits.
func runProgram(ctx context.Context, cfg *config.Config, s store.Store, identity string) error {
	// Ensure logger is closed on exit
	defer logger.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.WithComponent("cmd").Info("starting", "version", version, "apiURL", cfg.GetAPIURL())
	m := app.New(cfg, s,
		app.WithContext(ctx),
		app.WithVersion(version),
		app.WithIdentity(identity),
	)
	p := tea.NewProgram(m)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}
