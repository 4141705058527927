package commands

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jarweave/jarweave/internal/cache"
	"github.com/jarweave/jarweave/internal/cli/config"
	"github.com/jarweave/jarweave/internal/transform"
)

var (
	transformMetadata string
	transformVersion  string
	transformOutput   string
	transformNoCache  bool
	transformVerbose  bool
)

// NewTransformCommand creates the transform command
func NewTransformCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transform <input.jar>",
		Short: "Rewrite an API JAR with parameter-name metadata",
		Long: `Run the parameter-name transform on a resolved API archive.

When the input file is the platform API JAR for the configured version, every
public-API class file is rewritten with MethodParameters attributes and the
whole archive is expanded into the output directory. Any other input is
passed through as a single unmodified output.

Results are cached by (input content, version, metadata content); a repeated
invocation with an unchanged key reuses the cached output directory.`,
		Example: `  # Transform using jarweave.yml for version and metadata
  jarweave transform libs/platform-api-8.4.jar

  # Override parameters on the command line
  jarweave transform platform-api-8.4.jar --api-version 8.4 --metadata meta/platform-metadata-8.4.jar

  # Bypass the transform cache
  jarweave transform platform-api-8.4.jar --no-cache -o build/out`,
		Args: cobra.ExactArgs(1),
		RunE: runTransform,
	}

	cmd.Flags().StringVarP(&transformMetadata, "metadata", "m", "", "Path to the platform metadata archive")
	cmd.Flags().StringVar(&transformVersion, "api-version", "", "Platform version the API JAR is qualified with")
	cmd.Flags().StringVarP(&transformOutput, "output", "o", "", "Output directory for uncached runs (default: build/transformed)")
	cmd.Flags().BoolVar(&transformNoCache, "no-cache", false, "Run the transform without the cache")
	cmd.Flags().BoolVarP(&transformVerbose, "verbose", "v", false, "Show per-entry rewrite logging")

	return cmd
}

func runTransform(cmd *cobra.Command, args []string) error {
	startTime := time.Now()
	inputPath := args[0]

	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgCyan)
	warningColor := color.New(color.FgYellow)

	// Load config
	cfg, err := config.Load()
	if err != nil {
		if transformVerbose {
			warningColor.Printf("Warning: %v\n", err)
		}
	}

	params := resolveParams(cfg)
	logger, err := newLogger(transformVerbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tf, err := transform.New(params, logger)
	if err != nil {
		return err
	}

	if !tf.AppliesTo(inputPath) && transformVerbose {
		infoColor.Printf("Input is not %s; passing through unmodified\n", tf.ArchiveName())
	}

	var outputDir string
	if transformNoCache || (cfg != nil && cfg.Cache.Disabled) {
		outputDir = resolveOutputDir(cfg)
		if err := tf.Apply(inputPath, outputDir); err != nil {
			return err
		}
	} else {
		outputDir, err = runCached(cfg, tf, inputPath, logger)
		if err != nil {
			return err
		}
	}

	elapsed := time.Since(startTime)
	successColor.Printf("✓ Transform complete in %.2fs\n", elapsed.Seconds())
	infoColor.Printf("  Output: %s\n", outputDir)

	return nil
}

func runCached(cfg *config.Config, tf *transform.Transform, inputPath string, logger *zap.Logger) (string, error) {
	cacheDir := ""
	if cfg != nil {
		cacheDir = cfg.Cache.Dir
	}
	if cacheDir == "" {
		cacheDir = ".jarweave/transforms"
	}

	store, err := cache.NewStore(cacheDir, logger)
	if err != nil {
		return "", err
	}

	inputHash, err := cache.HashFile(inputPath)
	if err != nil {
		return "", err
	}
	metadataHash, err := cache.HashFile(tf.Params().MetadataPath)
	if err != nil {
		return "", err
	}

	key := cache.Key{
		InputHash:    inputHash,
		Version:      tf.Params().Version,
		MetadataHash: metadataHash,
	}
	return store.GetOrCompute(key, func(outputDir string) error {
		return tf.Apply(inputPath, outputDir)
	})
}

func resolveParams(cfg *config.Config) transform.Params {
	params := transform.Params{
		Version:      transformVersion,
		MetadataPath: transformMetadata,
	}
	if cfg != nil {
		if params.Version == "" {
			params.Version = cfg.Platform.Version
		}
		if params.MetadataPath == "" {
			params.MetadataPath = cfg.Platform.Metadata
		}
	}
	return params
}

func resolveOutputDir(cfg *config.Config) string {
	if transformOutput != "" {
		return transformOutput
	}
	if cfg != nil && cfg.Output.Dir != "" {
		return cfg.Output.Dir
	}
	return "build/transformed"
}

// newLogger builds the CLI logger: development output when verbose, silent
// otherwise. Matches how the transform pipeline expects to be driven.
func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
