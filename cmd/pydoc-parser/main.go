package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Sriram-PR/pydoc-parser/pkg/config"
	plog "github.com/Sriram-PR/pydoc-parser/pkg/log"
	"github.com/Sriram-PR/pydoc-parser/pkg/orchestrate"
	"github.com/Sriram-PR/pydoc-parser/pkg/output"
	"github.com/Sriram-PR/pydoc-parser/pkg/progress"
	"github.com/Sriram-PR/pydoc-parser/pkg/utils"
)

const version = "1.0.0"

// globalOptions are the flags shared by every command
type globalOptions struct {
	configPath string
	envFile    string
	logLevel   string
}

// runOptions are the flags of a mode run
type runOptions struct {
	globalOptions
	mode       string
	clearCache bool
	output     string
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute builds the command tree, runs it with args and returns the process exit code
func execute(args []string, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{}
	}
	exitCode := 0
	root := newRootCmd(args, stdout, stderr, &exitCode)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		return 1
	}
	return exitCode
}

// argv is the command line handed to cobra, logged by each run
func newRootCmd(argv []string, stdout, stderr io.Writer, exitCode *int) *cobra.Command {
	var opts runOptions

	root := &cobra.Command{
		Use:   "pydoc-parser <mode>",
		Short: "Parse docs.python.org and peps.python.org",
		Long: `Parse the Python documentation and PEP index.

Modes:
  whats-new        List every "What's New" article with its title and editors
  latest-versions  List documentation versions and their status
  download         Download the A4 PDF documentation archive
  pep              Count PEPs by the status stated on each PEP page`,
		Args:          cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:     orchestrate.ModeNames(),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.mode = args[0]
			*exitCode = doRun(cmd.Context(), opts, argv, stdout, stderr)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to YAML config file (optional)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Path to .env file with PYDOC_PARSER_* overrides")
	root.PersistentFlags().StringVar(&opts.logLevel, "loglevel", "info", "Log level (debug, info, warn, error)")
	root.Flags().BoolVarP(&opts.clearCache, "clear-cache", "c", false, "Clear the response cache before running")
	root.Flags().StringVarP(&opts.output, "output", "o", "", "Output mode (pretty, file, chart); default prints one line per record")

	root.AddCommand(newMcpCmd(&opts.globalOptions, stderr, exitCode))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "pydoc-parser %s\n", version)
		},
	})
	return root
}

// loadConfig loads and validates configuration. Warnings are returned for logging.
func loadConfig(opts globalOptions) (*config.AppConfig, []string, error) {
	cfg, err := config.Load(opts.configPath, opts.envFile)
	if err != nil {
		return nil, nil, err
	}
	warnings, err := cfg.Validate()
	if err != nil {
		return nil, warnings, err
	}
	return cfg, warnings, nil
}

// newLogger builds the console + rotating file logger for cfg
func newLogger(cfg *config.AppConfig, level string, console io.Writer) (*logrus.Logger, io.Closer, error) {
	return plog.New(plog.Options{
		Level:      level,
		Console:    console,
		Dir:        cfg.LogPath(),
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
}

// doRun is the testable implementation of a mode run
func doRun(ctx context.Context, opts runOptions, argv []string, stdout, stderr io.Writer) int {
	if ctx == nil {
		ctx = context.Background()
	}

	mode, err := orchestrate.ParseMode(opts.mode)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	outMode, err := output.ParseMode(opts.output)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	cfg, warnings, err := loadConfig(opts.globalOptions)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	logger, closer, err := newLogger(cfg, opts.logLevel, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closer.Close()

	log := logger.WithField("component", "main")
	for _, w := range warnings {
		log.Warn(w)
	}
	log.Info("Parser started")
	log.WithFields(logrus.Fields{
		"args":        strings.Join(argv, " "),
		"mode":        string(mode),
		"clear_cache": opts.clearCache,
		"output":      string(outMode),
	}).Info("Command-line arguments")

	svc, err := orchestrate.NewService(cfg, progress.NewSpinner(stderr), logrus.NewEntry(logger))
	if err != nil {
		log.Errorf("Setup failed: %v", err)
		return 1
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := svc.Run(ctx, mode, opts.clearCache)
	if err != nil {
		log.WithField("category", utils.CategorizeError(err)).Errorf("Run failed: %v", err)
		return 1
	}

	if result.NoResult {
		log.Warn("No result, nothing to output")
	} else if result.Results != nil {
		ctrl := output.NewController(stdout, cfg.ResultsPath(), logrus.NewEntry(logger))
		if _, err := ctrl.Render(string(mode), outMode, result.Results); err != nil {
			log.Errorf("Output failed: %v", err)
			return 1
		}
	}

	log.Info("Parser finished")
	return 0
}
