package main

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"github.com/brizzai/nylas-mail-backend/internal/auth"
	"github.com/brizzai/nylas-mail-backend/internal/config"
	"github.com/brizzai/nylas-mail-backend/internal/logger"
	"github.com/brizzai/nylas-mail-backend/internal/metrics"
	"github.com/brizzai/nylas-mail-backend/internal/nylas"
	"github.com/brizzai/nylas-mail-backend/internal/requester"
	"github.com/brizzai/nylas-mail-backend/internal/server"
	"github.com/brizzai/nylas-mail-backend/internal/users"
	"github.com/brizzai/nylas-mail-backend/internal/webhook"
)

func main() {
	Execute()
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nylas-mail-backend",
	Short: "Mailbox backend for the hosted authentication demo frontend",
	Long: `nylas-mail-backend connects mailboxes through hosted authentication,
keeps one access token per email address and serves the latest messages of
the connected mailbox to the frontend.`,
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Register the application and serve the HTTP API",
	RunE:  runServe,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with secrets redacted",
	RunE:  runConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Place version check in PreRun to ensure flags are parsed first
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(serveCmd, configCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if err := logger.InitLogger(&cfg.Logging); err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	app := fx.New(
		fx.Supply(cfg),
		fx.WithLogger(logger.FxLogger),
		metrics.Module,
		requester.Module,
		nylas.Module,
		users.Module,
		auth.Module,
		webhook.Module,
		server.Module,
		fx.Invoke(server.RegisterLifecycle),
	)
	app.Run()
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(cfg.Redacted())
	if err != nil {
		return err
	}
	pterm.Info.Println("Effective configuration")
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
