package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/OpenTraceLab/validate-tagger/internal/logging"
	"github.com/OpenTraceLab/validate-tagger/internal/version"
	"github.com/OpenTraceLab/validate-tagger/pkg/config"
	"github.com/OpenTraceLab/validate-tagger/pkg/taggerscript"
	"github.com/OpenTraceLab/validate-tagger/pkg/validator"
)

type options struct {
	verbose      bool
	configFile   string
	functions    []string
	allowUnknown bool
}

// Run executes validate_tagger with args and returns the process exit code.
// The outcome is printed on stdout, diagnostics and flag errors on stderr.
func Run(stdout, stderr io.Writer, args []string) int {
	return runWithFs(afero.NewOsFs(), stdout, stderr, args)
}

func runWithFs(fs afero.Fs, stdout, stderr io.Writer, args []string) int {
	exitCode := 0
	rootCmd := newRootCmd(fs, &exitCode)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.InitDefaultHelpFlag()
	rootCmd.InitDefaultVersionFlag()
	rootCmd.SetArgs(separateScriptPath(rootCmd.Flags(), args))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return exitCode
}

func newRootCmd(fs afero.Fs, exitCode *int) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "validate_tagger <script.pts>",
		Short: "Check the syntax of a TaggerScript file",
		Long: `Check that a file contains a syntactically valid TaggerScript, the
scripting language MusicBrainz Picard uses for tag and file naming scripts.

The result is printed on standard output. The exit status is 0 for a valid
script and 1 otherwise.

Examples:
  validate_tagger rename.pts                          # Check a script
  validate_tagger --function my_plugin:1:2 rename.pts # Accept a plugin function
  validate_tagger -c tagger.hcl -v rename.pts         # Load functions from a config file`,
		Version:       version.Version().String(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := runValidate(cmd, fs, opts, args)
			*exitCode = code
			return err
		},
	}

	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"log diagnostics on stderr")
	rootCmd.Flags().StringVarP(&opts.configFile, "config", "c", "",
		"HCL file declaring extra functions")
	rootCmd.Flags().StringArrayVar(&opts.functions, "function", nil,
		"accept an extra function, as name[:min[:max]] (repeatable)")
	rootCmd.Flags().BoolVar(&opts.allowUnknown, "allow-unknown-functions", false,
		"accept calls to functions that are not registered")

	return rootCmd
}

func runValidate(cmd *cobra.Command, fs afero.Fs, opts *options, args []string) (int, error) {
	logger := logging.New(cmd.ErrOrStderr(), opts.verbose)
	defer logger.Sync()

	if len(args) == 0 {
		outcome := validator.UsageOutcome()
		return outcome.ExitCode(), outcome.Report(cmd.OutOrStdout())
	}
	if len(args) > 1 {
		logger.Warn("extra arguments ignored", zap.Strings("args", args[1:]))
	}

	parser, err := buildParser(fs, opts, logger)
	if err != nil {
		return 1, err
	}

	v, err := validator.New(
		validator.WithFs(fs),
		validator.WithParser(parser),
		validator.WithLogger(logger),
	)
	if err != nil {
		return 1, err
	}

	outcome := v.Validate(args[0])
	logger.Debug("validation finished",
		zap.String("path", args[0]),
		zap.Stringer("outcome", outcome.Kind),
	)
	return outcome.ExitCode(), outcome.Report(cmd.OutOrStdout())
}

// buildParser assembles the function registry from the defaults, the
// config file and the --function flags, in that order.
func buildParser(fs afero.Fs, opts *options, logger *zap.Logger) (*taggerscript.Parser, error) {
	reg := taggerscript.DefaultRegistry()
	allowUnknown := opts.allowUnknown

	if opts.configFile != "" {
		cfg, err := config.Load(fs, opts.configFile)
		if err != nil {
			return nil, err
		}
		if err := cfg.Apply(reg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", opts.configFile, err)
		}
		allowUnknown = allowUnknown || cfg.AllowUnknownFunctions
		logger.Debug("loaded config",
			zap.String("file", opts.configFile),
			zap.Int("functions", len(cfg.Functions)),
		)
	}

	for _, spec := range opts.functions {
		name, arity, err := taggerscript.ParseFunctionSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("--function: %w", err)
		}
		if err := reg.Register(name, arity.Min, arity.Max); err != nil {
			return nil, fmt.Errorf("invalid --function %q: %w", spec, err)
		}
	}

	parser, err := taggerscript.NewParser(
		taggerscript.WithRegistry(reg),
		taggerscript.WithUnknownFunctions(allowUnknown),
	)
	if err != nil {
		return nil, err
	}

	logger.Debug("function registry ready",
		zap.Int("functions", parser.Registry().Len()),
		zap.Bool("allow_unknown", allowUnknown),
	)
	return parser, nil
}
