package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/parkerfly38/shulpick/internal/app"
	"github.com/parkerfly38/shulpick/internal/fixtures"
	"github.com/parkerfly38/shulpick/internal/ui"
)

var errAborted = errors.New("aborted")

type rootFlags struct {
	config   string
	prefs    string
	api      string
	logFile  string
	logLevel string
	poll     time.Duration
}

func (f *rootFlags) options() app.Options {
	return app.Options{
		ConfigPath: f.config,
		PrefsPath:  f.prefs,
		APIBase:    f.api,
		LogFile:    f.logFile,
		LogLevel:   f.logLevel,
		PollEvery:  f.poll,
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	var flags rootFlags
	root := &cobra.Command{
		Use:           "shulpick",
		Short:         "Search and pick congregation records from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.config, "config", "", "config file (default ~/.config/shulpick/config.toml)")
	pf.StringVar(&flags.prefs, "prefs", "", "preferences file (default ~/.config/shulpick/prefs.toml)")
	pf.StringVar(&flags.api, "api", "", "backend base URL, overrides api_base and SHULPICK_API_BASE")
	pf.StringVar(&flags.logFile, "log-file", "", "log file (default ~/.local/state/shulpick/shulpick.log)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.DurationVar(&flags.poll, "poll", 0, "backend health probe interval (default 5s)")

	root.AddCommand(
		newPickCommand(&flags, out),
		newFormCommand(&flags, out),
		newLookupCommand(&flags, out),
		newFixturesCommand(),
	)
	return root
}

func parseKinds(args []string) ([]ui.FieldKind, error) {
	kinds := make([]ui.FieldKind, 0, len(args))
	for _, a := range args {
		k, err := ui.ParseFieldKind(a)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func newPickCommand(flags *rootFlags, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:       "pick [member|tier|search]",
		Short:     "Open one picker and print the chosen id",
		Long:      "Open one picker and print the chosen id. Without an argument the last picker used is opened.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"member", "tier", "search"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseKinds(args)
			if err != nil {
				return err
			}
			opts := flags.options()
			opts.Fields = kinds
			opts.Single = true
			res, err := app.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if !res.Submitted || len(res.Selections) == 0 {
				return errAborted
			}
			_, err = fmt.Fprintln(out, res.Selections[0].ID)
			return err
		},
	}
}

func newFormCommand(flags *rootFlags, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "form [field...]",
		Short: "Open a form of pickers and print field=id lines on submit",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseKinds(args)
			if err != nil {
				return err
			}
			opts := flags.options()
			opts.Fields = kinds
			res, err := app.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if !res.Submitted {
				return errAborted
			}
			for _, sel := range res.Selections {
				if _, err := fmt.Fprintf(out, "%s=%s\n", sel.Field, sel.ID); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newLookupCommand(flags *rootFlags, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:     "lookup <member|tier|search> <query>",
		Short:   "Run one search and print a table",
		Example: "  shulpick lookup member cohen\n  shulpick lookup search katz family",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := ui.ParseFieldKind(args[0])
			if err != nil {
				return err
			}
			return app.Lookup(cmd.Context(), flags.options(), kind, strings.Join(args[1:], " "), out)
		},
	}
}

func newFixturesCommand() *cobra.Command {
	var (
		listen    string
		dataPath  string
		latency   time.Duration
		jitter    time.Duration
		failEvery int
	)
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Serve a sample congregation over the search API for development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := fixtures.LoadDataset(dataPath)
			if err != nil {
				return err
			}
			logger := pslog.LoggerFromEnv(context.Background(),
				pslog.WithEnvPrefix("SHULPICK_LOG_"),
				pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeStructured, MinLevel: pslog.InfoLevel}),
				pslog.WithEnvWriter(os.Stderr),
			).With("app", "shulpick", "component", "fixtures")

			srv := fixtures.New(fixtures.Options{
				Data:      ds,
				Latency:   latency,
				Jitter:    jitter,
				FailEvery: failEvery,
				Logger:    logger,
			})
			return srv.ListenAndServe(cmd.Context(), listen)
		},
	}
	f := cmd.Flags()
	f.StringVar(&listen, "listen", "127.0.0.1:8080", "address to listen on")
	f.StringVar(&dataPath, "data", "", "dataset JSON file (default: built-in sample)")
	f.DurationVar(&latency, "latency", 0, "delay added to every search answer")
	f.DurationVar(&jitter, "jitter", 0, "random extra delay up to this much")
	f.IntVar(&failEvery, "fail-every", 0, "answer every nth search with 500")
	return cmd
}
