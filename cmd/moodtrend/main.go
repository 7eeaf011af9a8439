package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	moodtrend "github.com/unowned-ai/moodtrend/pkg"
	"github.com/unowned-ai/moodtrend/pkg/config"
	pkgdb "github.com/unowned-ai/moodtrend/pkg/db"
	"github.com/unowned-ai/moodtrend/pkg/records"
	"github.com/unowned-ai/moodtrend/pkg/utils"

	"github.com/spf13/cobra"
)

var (
	dbPath      string
	backendFlag string
	walMode     bool
	syncMode    string
	configPath  string
	logMode     string
)

var rootCmd = &cobra.Command{
	Use:   "moodtrend",
	Short: "Mood check-ins, trend analysis and clinician alerts.",
	Long: `moodtrend records mood check-ins per subject, analyzes the recent trend
and raises alerts when a subject's mood is declining.`,
	Version:       fmt.Sprintf("v%s", moodtrend.Version),
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

var completionCmd = &cobra.Command{
	Use:   fmt.Sprintf("completion %s", strings.Join(completionShells, "|")),
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for moodtrend.

The command prints a completion script to stdout. You can source it in your shell
or install it to the appropriate location for your shell to enable completions permanently.

Examples:

  Bash (current shell):
    $ source <(moodtrend completion bash)

  Zsh:
    $ moodtrend completion zsh > "${fpath[1]}/_moodtrend"

  Fish:
    $ moodtrend completion fish | source

  PowerShell:
    PS> moodtrend completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of moodtrend",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), moodtrend.Version)
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the moodtrend database",
	Long:  `Provides commands for managing the moodtrend SQLite database, including schema upgrades.`,
}

var dbUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the moodtrend database schema to the latest version",
	Long: `Connects to the SQLite database (--db, or the platform default) and brings the
moodtrenddb component up to the current schema version. A missing database is
created and initialized with the latest schema.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.ResolvedBackend() != records.BackendSQLite {
			return errors.New("db upgrade only applies to the sqlite backend")
		}

		path, err := utils.ResolveAndEnsureDBPath(cfg.DBPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Attempting to upgrade moodtrenddb component in database at: %s (WAL: %t, Sync: %s)\n", path, cfg.WAL, cfg.Sync)

		dbConn, err := pkgdb.OpenDBConnection(path, cfg.WAL, cfg.Sync)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		return pkgdb.UpgradeDB(dbConn, path, pkgdb.TargetSchemaVersion)
	},
}

// loadConfig layers explicitly set flags over the config file and environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = dbPath
	}
	if flags.Changed("backend") {
		cfg.Backend = backendFlag
	}
	if flags.Changed("wal") {
		cfg.WAL = walMode
	}
	if flags.Changed("sync") {
		cfg.Sync = syncMode
	}
	if flags.Changed("log-mode") {
		cfg.LogMode = logMode
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func initCmd() {
	defaults := config.Default()
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite file path or postgres:// DSN (uses a system-specific default if not provided)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Storage backend: sqlite, postgres or memory (inferred from --db when empty)")
	rootCmd.PersistentFlags().BoolVar(&walMode, "wal", defaults.WAL, "Enable SQLite WAL (Write-Ahead Logging) mode")
	rootCmd.PersistentFlags().StringVar(&syncMode, "sync", defaults.Sync, "SQLite synchronous pragma (OFF, NORMAL, FULL, EXTRA)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", defaults.LogMode, "Log mode: dev, prod or quiet")

	dbCmd.AddCommand(dbUpgradeCmd)

	initSubjectsCmd()
	initMoodsCmd()
	initInsightsCmd()
	initAlertsCmd()
	initAppointmentsCmd()
	initReviewCmd()
	initReportCmd()
	initServeCmd()
	rootCmd.AddCommand(completionCmd, versionCmd, dbCmd, subjectsCmd, moodsCmd, insightsCmd, alertsCmd, appointmentsCmd, reviewCmd, reportCmd, mcpCmd, serveCmd)
}

func main() {
	initCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
