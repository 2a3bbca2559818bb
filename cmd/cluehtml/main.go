package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cluehtml/pkg/config"
	"cluehtml/pkg/state"
)

// initializeAppContext prepares application context before command execution
// but after command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.NArg() == 0 {
		// nothing to do, just return
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	cfg, err := config.LoadConfiguration(configFile)
	if err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if err := env.Prepare(cfg, cmd.Bool("debug")); err != nil {
		return ctx, err
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("runtime", runtime.Version()))
	if len(configFile) == 0 {
		env.Log.Debug("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}
	if er := env.Close(); er != nil {
		err = multierr.Append(err, fmt.Errorf("unable to release environment: %w", er))
	}
	return
}

// Errors from subcommands are regular errors, reported once either through
// the log or directly to stderr.
var errWasHandled bool

// this is called before appContext is destroyed, so we have a chance to
// properly log any error from subcommand
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := state.EnvFromContext(ctx)
	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

var sourceHelp = fmt.Sprintf(`%s
SOURCE:
    path to a local file, a file:, http(s) or data: URL, or "-" to read standard input
`, cli.CommandHelpTemplate)

func widthFlag() cli.Flag {
	return &cli.IntFlag{Name: "width", Aliases: []string{"w"}, Usage: "viewport width in `PIXELS` (default from configuration)"}
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            config.AppName,
		Usage:           "tokenizes, lays out and renders HTML",
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log at debug level"},
		},
		Commands: []*cli.Command{
			{
				Name:         "render",
				Usage:        "Lays out a page and writes it as PNG",
				OnUsageError: usageErrorHandler,
				Action:       renderPNG,
				Flags: []cli.Flag{
					widthFlag(),
					&cli.IntFlag{Name: "height", Usage: "minimum image height in `PIXELS`"},
				},
				ArgsUsage:          "SOURCE DESTINATION",
				CustomHelpTemplate: sourceHelp,
			},
			{
				Name:         "tokens",
				Usage:        "Prints the token stream of a page",
				OnUsageError: usageErrorHandler,
				Action:       printTokens,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "chunk", Usage: "feed the tokenizer `N` characters at a time (0 - all at once)"},
				},
				ArgsUsage:          "SOURCE",
				CustomHelpTemplate: sourceHelp,
			},
			{
				Name:         "boxes",
				Usage:        "Prints the laid out box tree of a page",
				OnUsageError: usageErrorHandler,
				Action:       printBoxes,
				Flags: []cli.Flag{
					widthFlag(),
					&cli.BoolFlag{Name: "color", Usage: "colorize output even when not on a terminal"},
				},
				ArgsUsage:          "SOURCE",
				CustomHelpTemplate: sourceHelp,
			},
			{
				Name:         "text",
				Usage:        "Paints a page as text",
				OnUsageError: usageErrorHandler,
				Action:       printText,
				Flags: []cli.Flag{
					widthFlag(),
					&cli.IntFlag{Name: "cell-width", Value: 7, Usage: "`PIXELS` per text column"},
					&cli.IntFlag{Name: "cell-height", Value: 14, Usage: "`PIXELS` per text row"},
				},
				ArgsUsage:          "SOURCE",
				CustomHelpTemplate: sourceHelp,
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
			},
		},
	}

	var err error
	// NOTE: os.Exit is called at the end of main to set exit code, make sure
	// there are no other deffered functions after that
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}
