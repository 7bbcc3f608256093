package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dusk-indust/structmerge/internal/config"
	"github.com/dusk-indust/structmerge/internal/parse"
)

// version is set by goreleaser at build time.
var version = "dev"

// errConflicts is returned by commands whose result still holds conflicts.
// It maps to exit status 1 without an error message.
var errConflicts = errors.New("merge has conflicts")

var rootCmd = &cobra.Command{
	Use:           "structmerge",
	Short:         "Structured three-way merge of source files and directories",
	Long:          "structmerge parses each version of a file into a syntax tree, matches the trees and merges them node by node.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(dirsCmd)
	rootCmd.AddCommand(nwayCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "config file (default: structmerge.yml or structmerge.toml in the working directory)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("color", "", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Float64("likelihood", 0, "unordered merge threshold in [0,1]")
}

// main runs the root command. The exit status is 0 for a clean result, 1 if
// conflicts remain and 2 on errors.
func main() {
	rootCmd.Version = version
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errConflicts):
		return 1
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
}

// env is the state shared by all subcommands: the effective config, the
// logger and whether stdout gets colors.
type env struct {
	cfg   *config.Config
	log   *slog.Logger
	color bool
}

// setup loads the config and applies the global flag overrides.
func setup(cmd *cobra.Command) (*env, error) {
	flags := cmd.Root().PersistentFlags()

	path, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	var cfg *config.Config
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return nil, err
	}

	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("color") {
		cfg.Color, _ = flags.GetString("color")
	}
	if flags.Changed("likelihood") {
		cfg.Likelihood, _ = flags.GetFloat64("likelihood")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	on := cfg.ColorEnabled(isTerminal(os.Stdout))
	color.NoColor = !on
	return &env{cfg: cfg, log: log, color: on}, nil
}

// newParser returns a tree-sitter parser honoring the config's
// semi-structured setting.
func (e *env) newParser() *parse.TreeSitterParser {
	return parse.NewTreeSitterParser(parse.WithSemiStructured(e.cfg.SemiStructured))
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
