package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jrschumacher/fxa-oauth/internal/clierr"
	"github.com/jrschumacher/fxa-oauth/internal/config"
	"github.com/jrschumacher/fxa-oauth/internal/logger"
	"github.com/jrschumacher/fxa-oauth/internal/output"
	"github.com/jrschumacher/fxa-oauth/internal/prompt"
	"github.com/spf13/cobra"
)

var cli *app

var rootCmd = &cobra.Command{
	Use:   "fxa-oauth",
	Short: "Firefox Accounts OAuth CLI",
	Long: `fxa-oauth obtains OAuth access tokens for a Firefox Accounts user and
administers registered OAuth clients.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("env", "e", "", "server environment: prod, stage, stable or latest (default stable)")
	flags.StringP("user", "u", "", "account email")
	flags.String("url", "", "OAuth server URL (overrides --env)")
	flags.String("fxa", "", "identity server URL (overrides --env)")
	flags.Duration("timeout", 0, "deadline for network operations (default 30s)")
	flags.StringP("output", "o", "", "output format: table or json")
	flags.String("config", "", "config file")
	flags.BoolP("verbose", "v", false, "debug logging")
	flags.BoolP("quiet", "q", false, "only log warnings and errors")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// setup loads configuration and builds the shared command state.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel)
	logger.Debug("config loaded", "config", cfg.String())

	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}
	printer := output.NewPrinter(output.PrinterOptions{
		Out:    cmd.OutOrStdout(),
		Err:    cmd.ErrOrStderr(),
		Format: format,
		Quiet:  cfg.LogLevel == "WARN",
	})
	prompter := prompt.New()
	if in := cmd.InOrStdin(); in != os.Stdin {
		prompter = prompt.NewWithIO(in, cmd.ErrOrStderr())
	}
	cli = newApp(cfg, printer, prompter)
	return nil
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx)
}

func run(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	code := clierr.Handle(err)
	finishDebugLog(err)
	return code
}

// finishDebugLog writes the recorded log after a failure and removes a stale
// one after a success.
func finishDebugLog(err error) {
	path := "fxa-debug.log"
	if cli != nil && cli.cfg.DebugLog != "" {
		path = cli.cfg.DebugLog
	}

	if err == nil {
		if rmErr := logger.RemoveStale(path); rmErr != nil {
			logger.Warn("could not remove stale debug log", "path", path, "error", rmErr)
		}
		return
	}

	rec := logger.CurrentRecorder()
	if rec == nil {
		return
	}
	abs, werr := rec.WriteFile(path)
	if werr != nil {
		logger.Warn("could not write debug log", "path", path, "error", werr)
		return
	}
	logger.Error("debug log written", "path", abs)
}
