package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/corebank-dev/corebank/internal/cli/commands"
	"github.com/corebank-dev/corebank/internal/cli/config"
	"github.com/corebank-dev/corebank/internal/logger"
)

var version = "dev" // Will be set during build

// rootFlags are the persistent flags; set ones override the environment
type rootFlags struct {
	apiURL         string
	sessionBackend string
	sessionFile    string
	output         string
	logLevel       string
	timeout        time.Duration
}

// NewRootCmd builds the corebank command tree
func NewRootCmd() *cobra.Command {
	var flags rootFlags
	env := &commands.Env{}
	closeStore := func() error { return nil }

	rootCmd := &cobra.Command{
		Use:   "corebank",
		Short: "CoreBank - your accounts from the terminal",
		Long: `CoreBank CLI - view accounts, audit trails and transfer funds.

Sign in with 'corebank login'. The session is kept in the OS keychain
(or a local file with --session file) until it expires or you log out.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}

			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}

			log := logger.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

			store, closer, err := commands.OpenStore(cfg)
			if err != nil {
				return fmt.Errorf("failed to open session store: %w", err)
			}
			closeStore = closer

			*env = *commands.NewEnv(cfg, log, store)
			env.Timeout = flags.timeout
			env.Out = cmd.OutOrStdout()
			env.Err = cmd.ErrOrStderr()

			log.Debug().
				Str("api", cfg.APIBaseURL).
				Str("session", cfg.SessionBackend).
				Msg("Configuration loaded")
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.apiURL, "api-url", "", "API base URL (or set COREBANK_API_BASE_URL)")
	pf.StringVar(&flags.sessionBackend, "session", "", "Session storage: keyring, file or memory (or set COREBANK_SESSION_BACKEND)")
	pf.StringVar(&flags.sessionFile, "session-file", "", "Session file for --session file (or set COREBANK_SESSION_FILE)")
	pf.StringVarP(&flags.output, "output", "o", "", "Output format: table, json or yaml (or set COREBANK_OUTPUT)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (or set LOG_LEVEL)")
	pf.DurationVar(&flags.timeout, "timeout", 0, "Per-request timeout, e.g. 30s (default: none)")

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "corebank version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewLoginCmd(env))
	rootCmd.AddCommand(commands.NewRegisterCmd(env))
	rootCmd.AddCommand(commands.NewLogoutCmd(env))
	rootCmd.AddCommand(commands.NewWhoamiCmd(env))
	rootCmd.AddCommand(commands.NewAccountsCmd(env))
	rootCmd.AddCommand(commands.NewAccountCmd(env))
	rootCmd.AddCommand(commands.NewAuditCmd(env))
	rootCmd.AddCommand(commands.NewTransferCmd(env))

	// PostRun hooks are skipped when RunE fails, so release the store here
	for _, sub := range rootCmd.Commands() {
		if sub.RunE == nil {
			continue
		}
		runE := sub.RunE
		sub.RunE = func(cmd *cobra.Command, args []string) (err error) {
			defer func() {
				if closeErr := closeStore(); err == nil {
					err = closeErr
				}
			}()
			return runE(cmd, args)
		}
	}

	return rootCmd
}

func loadConfig(cmd *cobra.Command, flags rootFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	pf := cmd.Flags()
	if pf.Changed("api-url") {
		cfg.APIBaseURL = flags.apiURL
	}
	if pf.Changed("session") {
		cfg.SessionBackend = flags.sessionBackend
	}
	if pf.Changed("session-file") {
		cfg.SessionFile = flags.sessionFile
	}
	if pf.Changed("output") {
		cfg.Output = flags.output
	}
	if pf.Changed("log-level") {
		cfg.Logging.Level = flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute runs the root command
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
