package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"onefile/pkg/logging"
	"onefile/pkg/manifest"
	"onefile/pkg/onefile"
	"onefile/pkg/tokens"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	// Input
	manifestPath string
	includePaths []string

	// Filtering
	excludePaths  []string
	extensions    []string
	maxDepth      int
	skipGitignore bool
	maxFiles      int
	largerThan    int64
	smallerThan   int64
	newerThan     string
	olderThan     string
	showHidden    bool
	includeBinary bool
	includeSum    bool
	withDeps      bool

	// Output
	outputFile      string
	toStdout        bool
	headPath        string
	separator       string
	tableOfContents bool
	includeMetadata bool

	// Processing
	workers int

	// Info mode
	infoMode   bool
	noTokens   bool
	tokenModel string

	debugMode bool

	logger *zap.Logger
)

// Layouts accepted by the date-bound flags.
var dateLayouts = []string{"2006-01-02 15:04:05", "2006-01-02"}

var rootCmd = &cobra.Command{
	Use:   "onefile",
	Short: "Flatten a Go project into a single file",
	Long: `Onefile walks a Go project, filters its files by extension, size,
modification time and gitignore rules, and concatenates their contents into a
single output stream. Mainly intended to pipe source code into an LLM.`,
	SilenceUsage: true,
	RunE:         runRoot,
}

// Execute runs the root command with the logger built in main.
func Execute(l *zap.Logger) error {
	logger = l
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Input
	rootCmd.Flags().StringVarP(&manifestPath, "manifest-path", "p", "./go.mod", "Path to the project's go.mod file")
	viper.BindPFlag("manifest_path", rootCmd.Flags().Lookup("manifest-path"))
	rootCmd.Flags().StringSliceVarP(&includePaths, "include", "i", nil, "Extra file or directory paths to include")
	viper.BindPFlag("include", rootCmd.Flags().Lookup("include"))

	// Filtering
	rootCmd.Flags().StringSliceVarP(&excludePaths, "exclude", "e", nil, "Paths to exclude from the output")
	viper.BindPFlag("exclude", rootCmd.Flags().Lookup("exclude"))
	rootCmd.Flags().StringSliceVarP(&extensions, "extension", "E", []string{"go"}, "Only include files with these extensions (empty includes all)")
	viper.BindPFlag("extension", rootCmd.Flags().Lookup("extension"))
	rootCmd.Flags().IntVar(&maxDepth, "depth", 0, "Maximum directory depth to search (root files are depth 0)")
	rootCmd.Flags().BoolVar(&skipGitignore, "skip-gitignore", true, "Skip files matched by .gitignore rules")
	viper.BindPFlag("skip_gitignore", rootCmd.Flags().Lookup("skip-gitignore"))
	rootCmd.Flags().IntVar(&maxFiles, "max-files", 0, "Maximum number of files to include")
	rootCmd.Flags().Int64Var(&largerThan, "larger-than", 0, "Exclude files smaller than this size in bytes")
	rootCmd.Flags().Int64Var(&smallerThan, "smaller-than", 0, "Exclude files larger than this size in bytes")
	rootCmd.Flags().StringVar(&newerThan, "newer-than", "", `Exclude files modified before this datetime ("YYYY-MM-DD HH:MM:SS")`)
	rootCmd.Flags().StringVar(&olderThan, "older-than", "", `Exclude files modified after this datetime ("YYYY-MM-DD HH:MM:SS")`)
	rootCmd.Flags().BoolVarP(&showHidden, "hidden", "H", false, "Include hidden files and directories")
	rootCmd.Flags().BoolVar(&includeBinary, "include-binary", false, "Include files with binary content")
	rootCmd.Flags().BoolVar(&includeSum, "include-sum", false, "Include the go.sum file in the output")
	rootCmd.Flags().BoolVarP(&withDeps, "dependencies", "d", false, "Include local dependencies resolved from go.mod replace directives")

	// Output
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "./onefile.txt", "Path of the combined output file")
	viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	rootCmd.Flags().BoolVar(&toStdout, "stdout", false, "Write to stdout instead of a file")
	rootCmd.Flags().StringVar(&headPath, "head", "", "File whose contents are prepended to the output")
	rootCmd.Flags().StringVar(&separator, "separator", "//", "Prefix of the per-file header line")
	viper.BindPFlag("separator", rootCmd.Flags().Lookup("separator"))
	rootCmd.Flags().BoolVar(&tableOfContents, "table-of-contents", false, "Include a table of contents at the top of the output")
	rootCmd.Flags().BoolVar(&includeMetadata, "include-metadata", true, "Include project metadata at the top of the output")

	// Processing
	rootCmd.Flags().IntVarP(&workers, "workers", "t", 0, "Worker goroutines for reading files (0 for auto)")
	viper.BindPFlag("workers", rootCmd.Flags().Lookup("workers"))

	// Info mode
	rootCmd.Flags().BoolVarP(&infoMode, "info", "I", false, "Print a summary instead of writing output")
	rootCmd.Flags().BoolVar(&noTokens, "no-tokens", false, "Skip token counting in the info summary")
	rootCmd.Flags().StringVar(&tokenModel, "model", tokens.DefaultModel, "Model whose tokenizer is used for the info summary")
	viper.BindPFlag("model", rootCmd.Flags().Lookup("model"))

	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	viper.SetDefault("extension", []string{"go"})
	viper.SetDefault("separator", "//")
	viper.SetDefault("skip_gitignore", true)
	viper.SetDefault("workers", 0)
	viper.SetDefault("model", tokens.DefaultModel)
}

// initConfig reads the config file and ONEFILE_* environment variables.
func initConfig() {
	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "onefile"))
	}
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	viper.SetEnvPrefix("ONEFILE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func runRoot(cmd *cobra.Command, _ []string) error {
	if debugMode {
		if l, err := logging.Setup(true, "onefile", ""); err == nil {
			logger = l
		}
	}

	args, err := buildArguments(cmd)
	if err != nil {
		return err
	}

	metadata, err := resolveManifest(args)
	if err != nil {
		return err
	}

	result, err := onefile.Run(args, logger)
	if err != nil {
		return err
	}

	if infoMode {
		printInfo(result)
		return nil
	}

	if result.Summary.Accepted == 0 {
		fmt.Fprintln(os.Stderr, "No files found to include")
		return nil
	}

	var head []byte
	if args.Head != "" {
		head, err = os.ReadFile(args.Head)
		if err != nil {
			return fmt.Errorf("failed to read head file: %w", err)
		}
	}

	if err := writeResult(args, result, head, metadata); err != nil {
		return err
	}

	if result.Summary.Failed > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d file(s) could not be read and were replaced by placeholders\n", result.Summary.Failed)
	}
	return nil
}

// buildArguments assembles the core configuration from flags, viper values
// and parsed bound strings. Optional bounds become pointers only when their
// flag was actually set, so "unset" stays distinguishable from zero.
func buildArguments(cmd *cobra.Command) (*onefile.Arguments, error) {
	args := &onefile.Arguments{
		ManifestPath:    viper.GetString("manifest_path"),
		Include:         includePaths,
		Exclude:         excludePaths,
		Extensions:      extensions,
		ShowHidden:      showHidden,
		SkipGitignore:   viper.GetBool("skip_gitignore"),
		IncludeBinary:   includeBinary,
		IncludeSum:      includeSum,
		Workers:         viper.GetInt("workers"),
		Output:          viper.GetString("output"),
		Stdout:          toStdout,
		Head:            headPath,
		Separator:       viper.GetString("separator"),
		TableOfContents: tableOfContents,
		IncludeMetadata: includeMetadata,
	}

	// Slice-valued keys are read from viper only when the flag was left at
	// its default, so a config-file list does not swallow flag values.
	if !cmd.Flags().Changed("extension") {
		args.Extensions = viper.GetStringSlice("extension")
	}
	if !cmd.Flags().Changed("exclude") {
		args.Exclude = viper.GetStringSlice("exclude")
	}
	if !cmd.Flags().Changed("include") {
		args.Include = viper.GetStringSlice("include")
	}

	if cmd.Flags().Changed("depth") {
		d := maxDepth
		args.MaxDepth = &d
	}
	if cmd.Flags().Changed("max-files") {
		n := maxFiles
		args.MaxFiles = &n
	}
	if cmd.Flags().Changed("larger-than") {
		v := largerThan
		args.LargerThan = &v
	}
	if cmd.Flags().Changed("smaller-than") {
		v := smallerThan
		args.SmallerThan = &v
	}

	if newerThan != "" {
		t, err := parseDate(newerThan)
		if err != nil {
			return nil, err
		}
		args.NewerThan = &t
	}
	if olderThan != "" {
		t, err := parseDate(olderThan)
		if err != nil {
			return nil, err
		}
		args.OlderThan = &t
	}

	return args, nil
}

// parseDate accepts a full datetime or a bare date.
func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected %q or %q", value, dateLayouts[0], dateLayouts[1])
}

// resolveManifest parses go.mod for the metadata block, workspace members and
// local dependency roots. A missing manifest is fatal only when a feature
// that needs it was requested.
func resolveManifest(args *onefile.Arguments) (string, error) {
	m, err := manifest.Load(afero.NewOsFs(), args.ManifestPath)
	if err != nil {
		if args.IncludeMetadata || withDeps {
			return "", fmt.Errorf("cannot resolve manifest: %w", err)
		}
		logger.Warn("manifest not readable, continuing without it", zap.Error(err))
		return "", nil
	}

	members, err := m.WorkspaceMembers()
	if err != nil {
		logger.Warn("failed to resolve workspace members", zap.Error(err))
	}
	args.Include = append(args.Include, members...)

	if withDeps {
		args.DependencyRoots = m.DependencyRoots()
		logger.Info("including local dependencies", zap.Strings("roots", args.DependencyRoots))
	}

	if args.IncludeMetadata {
		return m.MetadataBlock(), nil
	}
	return "", nil
}

func writeResult(args *onefile.Arguments, result *onefile.Result, head []byte, metadata string) error {
	if args.Stdout {
		return onefile.WriteOutput(os.Stdout, args, result.Files, head, metadata)
	}

	out, err := os.Create(args.Output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if err := onefile.WriteOutput(out, args, result.Files, head, metadata); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Output written to %s\n", args.Output)
	return nil
}

// printInfo reports run statistics on stderr without writing any output,
// mirroring what the summary reporter of a pipeline would consume.
func printInfo(result *onefile.Result) {
	s := result.Summary
	fmt.Fprintf(os.Stderr, "Found %d files (%d discovered, %d unreadable)\n", s.Accepted, s.Discovered, s.Failed)
	fmt.Fprintf(os.Stderr, "Total lines of code: %d\n", s.TotalLines)
	fmt.Fprintf(os.Stderr, "Total size: %s\n", humanize.Bytes(uint64(s.TotalBytes)))

	if !noTokens {
		counter, err := tokens.NewCounter(viper.GetString("model"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Token counting unavailable: %v\n", err)
		} else {
			docs := make([][]byte, 0, len(result.Files))
			for _, fc := range result.Files {
				if fc.Err == nil {
					docs = append(docs, fc.Content)
				}
			}
			fmt.Fprintf(os.Stderr, "Total tokens: %s\n", humanize.Comma(counter.CountAll(docs, workers)))
		}
	}

	fmt.Fprintf(os.Stderr, "Time elapsed: %s\n", s.Elapsed.Round(time.Millisecond))
}
